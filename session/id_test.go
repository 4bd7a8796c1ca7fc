package session

import "testing"

func TestIDStringRoundTrip(t *testing.T) {
	id := testID(t)

	parsed, err := ParseID(id.String())
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	if parsed != id {
		t.Fatalf("expected %v, got %v", id, parsed)
	}
}

func TestParseIDRejectsBadInput(t *testing.T) {
	if _, err := ParseID("not base64url!!"); err == nil {
		t.Fatal("expected error for invalid encoding")
	}
	if _, err := ParseID("c2hvcnQ"); err == nil {
		t.Fatal("expected error for wrong size")
	}
}

func TestUUIDSourceProducesDistinctIDs(t *testing.T) {
	src := UUIDSource{}
	seen := map[ID]bool{}

	for i := 0; i < 64; i++ {
		id, err := src.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %v", id)
		}
		seen[id] = true
	}
}
