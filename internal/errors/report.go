// Package errors provides the structured compile-error type this module's
// phases report through: every compile error is a (message, position)
// pair, preserved from AST through Core, with error construction the only
// side-effecting operation during resolution.
package errors

import (
	"encoding/json"
	"errors"

	"github.com/hydromatic/morel-sub000/internal/ast"
)

// Report is the canonical structured error this module's phases produce.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// Fix is a suggested remediation, with a confidence the caller may use
// to decide whether to surface it.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// ReportError wraps a Report as an error so it survives errors.As()
// unwrapping through ordinary Go error-handling call chains.
type ReportError struct {
	Rep *Report
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps r as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders r deterministically: struct fields keep their declared
// order and Data's map keys are sorted alphabetically by encoding/json,
// so two reports built from the same inputs always serialize identically.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New builds a Report for one of this module's phases (§7): phase is one
// of "resolve", "generate", "analyze", "types", "catalog", matching the
// component that detected the problem.
func New(code, phase, message string, span *ast.Span) *Report {
	return &Report{
		Schema:  "corec.error/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    span,
		Data:    map[string]any{},
	}
}

// WithData attaches structured context (e.g. the offending identifier,
// the constraint that failed to invert) and returns r for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// WithFix attaches a suggested remediation and returns r for chaining.
func (r *Report) WithFix(suggestion string, confidence float64) *Report {
	r.Fix = &Fix{Suggestion: suggestion, Confidence: confidence}
	return r
}
