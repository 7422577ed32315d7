package ast

// FromSource is one named source of a `from` query: `pattern in expr`, or
// (IsPoint) a point scan `pattern = expr`, equivalent per §4.5 to
// `scan pattern in [expr]`.
type FromSource struct {
	Pattern Pat
	Expr    Expr
	IsPoint bool
}

// Step is one step of a query pipeline.
type Step interface {
	Node
	stepNode()
}

// ScanStep is `p in e` with an optional `where cond` fused onto the scan
// (an absent Cond means `true`, per §4.6).
type ScanStep struct {
	base
	Pattern Pat
	Expr    Expr
	Cond    Expr // nil means true
}

func (*ScanStep) stepNode() {}

// WhereStep is a `where e` filter.
type WhereStep struct {
	base
	Cond Expr
}

func (*WhereStep) stepNode() {}

// YieldStep is a `yield e` projection.
type YieldStep struct {
	base
	Value Expr
}

func (*YieldStep) stepNode() {}

// OrderKey is one `expr [asc|desc]` key of an `order` step.
type OrderKey struct {
	Expr       Expr
	Descending bool
}

// OrderStep is `order k1, k2, ...`.
type OrderStep struct {
	base
	Keys []OrderKey
}

func (*OrderStep) stepNode() {}

// GroupStep is `group k1 = e1, ... compute agg1 = f1 e1', ...`; Computes may
// be empty (a bare `group` with no aggregates).
type GroupStep struct {
	base
	Keys     []RecordField // group key bindings (name = expr)
	Computes []RecordField // aggregate bindings (name = aggregating expr)
}

func (*GroupStep) stepNode() {}

// ComputeStep is a standalone `compute agg = f e` used by `compute`-style
// queries (desugars to Relational.only, §4.5).
type ComputeStep struct {
	base
	Name  string
	Value Expr
}

func (*ComputeStep) stepNode() {}

// DistinctStep is `distinct`.
type DistinctStep struct{ base }

func (*DistinctStep) stepNode() {}

// SkipStep is `skip n`.
type SkipStep struct {
	base
	Count Expr
}

func (*SkipStep) stepNode() {}

// TakeStep is `take n`.
type TakeStep struct {
	base
	Count Expr
}

func (*TakeStep) stepNode() {}

// RequireStep is `require e`; synthesized by the resolver as `where not e`
// when translating a surface `forall ... require e` (§4.5), but may also
// appear directly in the surface syntax of a `from`.
type RequireStep struct {
	base
	Cond Expr
}

func (*RequireStep) stepNode() {}

// ThroughStep is `through p in f`: finalize the current query, apply f to
// it, and begin a new `scan p in result` (§4.5).
type ThroughStep struct {
	base
	Pattern Pat
	Func    Expr
}

func (*ThroughStep) stepNode() {}

// FromExpr is the full query pipeline: an initial (possibly empty) sequence
// of named sources, an ordered list of steps, and a final yield. Into, if
// non-nil, means the query ends in `into f` (§4.5): the whole `from` becomes
// `apply(f, from-body)` with Into as f and Yield ignored.
type FromExpr struct {
	base
	Sources []FromSource
	Steps   []Step
	Yield   Expr // nil means yield the tuple/record of current bindings
	Into    Expr // nil unless the query ends in `into f`
}

func (*FromExpr) exprNode() {}

// ExistsExpr is `exists q`; desugars to `Relational.nonEmpty (from-body)`.
type ExistsExpr struct {
	base
	Query *FromExpr
}

func (*ExistsExpr) exprNode() {}

// ForallExpr is `forall q require e`; desugars to
// `Relational.empty (from-body where not e)`.
type ForallExpr struct {
	base
	Query   *FromExpr
	Require Expr
}

func (*ForallExpr) exprNode() {}
