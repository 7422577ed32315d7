package typemap

import (
	"testing"

	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/types"
)

func TestMapTypeMap_GetTypeOpt(t *testing.T) {
	tm := NewMapTypeMap()
	node := &ast.Ident{Name: "x"}
	if _, ok := tm.GetTypeOpt(node); ok {
		t.Fatal("expected no type recorded yet")
	}
	tm.Set(node, types.Int)
	got, ok := tm.GetTypeOpt(node)
	if !ok || !got.Equals(types.Int) {
		t.Fatalf("expected int, got %v ok=%v", got, ok)
	}
	if !tm.HasType(node) {
		t.Fatal("expected HasType true")
	}
}

func TestMapTypeMap_TypeFieldNames(t *testing.T) {
	tm := NewMapTypeMap()
	node := &ast.Record{}
	tm.Set(node, types.RecordOf(map[string]types.Type{"b": types.Int, "a": types.Int}))
	names, ok := tm.TypeFieldNames(node)
	if !ok {
		t.Fatal("expected field names for record type")
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected sorted [a b], got %v", names)
	}
}

func TestMapTypeMap_TypeIsVariable(t *testing.T) {
	tm := NewMapTypeMap()
	node := &ast.Ident{Name: "x"}
	tm.Set(node, types.NewTypeVar())
	if !tm.TypeIsVariable(node) {
		t.Fatal("expected type variable to be detected")
	}
}
