package types

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCompareFieldNames_NumericBeforeLexicographic(t *testing.T) {
	names := []string{"b", "10", "a", "2", "1"}
	got := SortedFieldNames(names)
	want := []string{"1", "2", "10", "a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SortedFieldNames mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareFieldNames_TotalOrder(t *testing.T) {
	labels := []string{"1", "2", "10", "a", "b", "01", "field", ""}
	for _, a := range labels {
		for _, b := range labels {
			if a == b {
				if CompareFieldNames(a, b) != 0 {
					t.Fatalf("CompareFieldNames(%q,%q) expected 0", a, b)
				}
				continue
			}
			ab := CompareFieldNames(a, b)
			ba := CompareFieldNames(b, a)
			if (ab < 0) == (ba < 0) || (ab > 0) == (ba > 0) {
				t.Fatalf("CompareFieldNames(%q,%q)=%d not antisymmetric with (%q,%q)=%d", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestRecordType_CanonicalOrderIndependentOfInsertion(t *testing.T) {
	r1 := RecordOf(map[string]Type{"b": Int, "a": Int, "2": Int})
	r2 := RecordOf(map[string]Type{"2": Int, "a": Int, "b": Int})
	if diff := cmp.Diff(r1.OrderedFields(), r2.OrderedFields()); diff != "" {
		t.Fatalf("field order depends on map insertion order: %s", diff)
	}
	if !r1.Equals(r2) {
		t.Fatalf("records with identical fields should be Equal regardless of construction order")
	}
}

func TestTupleOf_RequiresAtLeastTwoElements(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for tuple arity < 2")
		}
	}()
	TupleOf(Int)
}

func TestProgressiveRecordType_DiscoverCachesAndExpands(t *testing.T) {
	calls := 0
	pr := NewProgressiveRecordType(func(name string) Type {
		calls++
		return String
	})
	a := pr.Discover("name")
	b := pr.Discover("name")
	if calls != 1 {
		t.Fatalf("expected discovery callback to run once, ran %d times", calls)
	}
	if !cmp.Equal(a, b, cmpopts.EquateComparable()) {
		t.Fatalf("repeated Discover of same field should return the cached type")
	}
}

func TestForallType_ApplyArityMismatch(t *testing.T) {
	scheme := ForallOf(1, func(vars []Type) Type { return FnType(vars[0], vars[0]) })
	if _, err := Apply(scheme, []Type{Int, Int}); err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestForallType_StringUsesUniversalQuantifierGlyph(t *testing.T) {
	scheme := ForallOf(1, func(vars []Type) Type { return FnType(vars[0], vars[0]) })
	s := scheme.String()
	if !strings.Contains(s, "∀") {
		t.Fatalf("expected scheme string to contain ∀, got %q", s)
	}
}

func TestDataType_ConstructorLookup(t *testing.T) {
	dt := &DataType{
		Name: "option_like",
		Constructors: []Constructor{
			{Name: "None"},
			{Name: "Some", Payload: Int},
		},
	}
	c, ok := dt.Constructor("Some")
	if !ok || !c.Payload.Equals(Int) {
		t.Fatalf("expected Some constructor with int payload, got %+v ok=%v", c, ok)
	}
	if _, ok := dt.Constructor("Missing"); ok {
		t.Fatal("expected Missing constructor to be absent")
	}
}
