package errors

// Error code constants, organized by the phase that detects them.
// PAR/MOD/LDR/DSG belong to out-of-scope phases (parser, module system,
// loader, desugaring of surface syntax the upstream parser already
// handles) and are not reproduced here — only the five families this
// compilation core itself can raise.
const (
	// TYP0xx — type-representation invariant violations.
	TYP001 = "TYP001" // unknown named type or structure
	TYP002 = "TYP002" // duplicate datatype or constructor name

	// CAT0xx — built-in catalog invariants.
	CAT001 = "CAT001" // duplicate ml-name
	CAT002 = "CAT002" // duplicate alias
	CAT003 = "CAT003" // reverse() called on a non-comparison operator

	// RSV0xx — resolver.
	RSV001 = "RSV001" // unknown identifier
	RSV002 = "RSV002" // type mismatch at use site
	RSV003 = "RSV003" // malformed through/into step

	// ANA0xx — analyzer / exhaustiveness.
	ANA001 = "ANA001" // non-exhaustive match under $list/$bool

	// GEN0xx — generator synthesizer.
	GEN001 = "GEN001" // non-invertible constraint
	GEN002 = "GEN002" // cache consistency violation (internal invariant)
)

// ErrorInfo describes one error code's phase and a short human summary.
type ErrorInfo struct {
	Code        string
	Phase       string
	Description string
}

// Registry maps every code above to its ErrorInfo.
var Registry = map[string]ErrorInfo{
	TYP001: {TYP001, "types", "Unknown named type or structure"},
	TYP002: {TYP002, "types", "Duplicate datatype or constructor name"},

	CAT001: {CAT001, "catalog", "Duplicate built-in ml-name"},
	CAT002: {CAT002, "catalog", "Duplicate built-in alias"},
	CAT003: {CAT003, "catalog", "reverse() on a non-comparison operator"},

	RSV001: {RSV001, "resolve", "Unknown identifier"},
	RSV002: {RSV002, "resolve", "Type mismatch at use site"},
	RSV003: {RSV003, "resolve", "Malformed through/into step"},

	ANA001: {ANA001, "analyze", "Non-exhaustive match"},

	GEN001: {GEN001, "generate", "Non-invertible constraint"},
	GEN002: {GEN002, "generate", "Generator cache consistency violation"},
}

// GetErrorInfo returns information about an error code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := Registry[code]
	return info, ok
}

// PhaseOf returns the phase name a code belongs to, matching the Phase
// string a Report built for that code should carry.
func PhaseOf(code string) (string, bool) {
	info, ok := Registry[code]
	if !ok {
		return "", false
	}
	return info.Phase, true
}
