package compiled

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/env"
	"github.com/hydromatic/morel-sub000/internal/types"
)

func TestValueStatementStreamsBindingAndPrints(t *testing.T) {
	xPat := &core.IdPat{Name: "x"}
	xPat.Typ = types.Int
	stmt := &ValueStatement{
		Pattern: xPat,
		Decl:    &core.Lit{Node: core.Node{Typ: types.Int}, Kind: core.IntLit, Value: 41},
		Typ:     types.Int,
		Eval_: func(e *env.Env, decl core.Expr) (interface{}, error) {
			return 41, nil
		},
	}

	var out bytes.Buffer
	ch := make(chan env.Binding, 4)
	err := stmt.Eval(nil, &out, ch)
	require.NoError(t, err)
	close(ch)

	var bindings []env.Binding
	for b := range ch {
		bindings = append(bindings, b)
	}
	require.Len(t, bindings, 1)
	require.Equal(t, "x", bindings[0].Name)
	require.Equal(t, 41, bindings[0].Value)
	require.Contains(t, out.String(), "val x = 41")
}

func TestValueStatementErrorsWithoutEvalFunc(t *testing.T) {
	xPat := &core.IdPat{Name: "x"}
	stmt := &ValueStatement{Pattern: xPat, Typ: types.Int}
	var out bytes.Buffer
	ch := make(chan env.Binding, 1)
	err := stmt.Eval(nil, &out, ch)
	require.Error(t, err)
}

func TestExprStatementPrintsItBinding(t *testing.T) {
	stmt := &ExprStatement{
		Decl: &core.Lit{Node: core.Node{Typ: types.Bool}, Kind: core.BoolLit, Value: true},
		Typ:  types.Bool,
		Eval_: func(e *env.Env, decl core.Expr) (interface{}, error) {
			return true, nil
		},
	}
	var out bytes.Buffer
	err := stmt.Eval(nil, &out, nil)
	require.NoError(t, err)
	require.Contains(t, out.String(), "val it = true")
}

func TestTupleStatementDestructuresMatchingArity(t *testing.T) {
	aPat := &core.IdPat{Name: "a"}
	aPat.Typ = types.Int
	bPat := &core.IdPat{Name: "b"}
	bPat.Typ = types.Int
	tuplePat := &core.TuplePattern{Elements: []core.Pattern{aPat, bPat}}

	bindings := bindingsFor(tuplePat, types.TupleOf(types.Int, types.Int), []interface{}{1, 2})
	require.Len(t, bindings, 2)
	require.Equal(t, "a", bindings[0].Name)
	require.Equal(t, 1, bindings[0].Value)
	require.Equal(t, "b", bindings[1].Name)
	require.Equal(t, 2, bindings[1].Value)
}
