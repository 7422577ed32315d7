package errors

import "testing"

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		code  string
		phase string
	}{
		{TYP001, "types"},
		{TYP002, "types"},
		{CAT001, "catalog"},
		{CAT002, "catalog"},
		{CAT003, "catalog"},
		{RSV001, "resolve"},
		{RSV002, "resolve"},
		{RSV003, "resolve"},
		{ANA001, "analyze"},
		{GEN001, "generate"},
		{GEN002, "generate"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			info, ok := GetErrorInfo(tt.code)
			if !ok {
				t.Fatalf("code %s not found in registry", tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("phase for %s: got %s, want %s", tt.code, info.Phase, tt.phase)
			}
			if info.Description == "" {
				t.Errorf("empty description for %s", tt.code)
			}
		})
	}
}

func TestPhaseOfUnknownCode(t *testing.T) {
	if _, ok := PhaseOf("NOPE999"); ok {
		t.Errorf("expected unknown code to report not-found")
	}
}

func TestEveryCodeUniqueWithinRegistry(t *testing.T) {
	seen := map[string]bool{}
	for code, info := range Registry {
		if info.Code != code {
			t.Errorf("registry key %s does not match info.Code %s", code, info.Code)
		}
		if seen[code] {
			t.Errorf("duplicate code %s", code)
		}
		seen[code] = true
	}
}
