package ledger

import "testing"

func TestNewReferenceFormat(t *testing.T) {
	ref := NewReference()
	if !ReferencePattern.MatchString(ref) {
		t.Fatalf("reference %q does not match %s", ref, ReferencePattern)
	}
	if ref[:2] != "TP" {
		t.Fatalf("expected TP prefix, got %q", ref)
	}
}

func TestNewReferenceUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		ref := NewReference()
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = struct{}{}
	}
}
