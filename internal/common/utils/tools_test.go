package utils

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 12 {
			t.Fatalf("expect 12-digit id, got %q", id)
		}
		for _, r := range id {
			if !strings.ContainsRune(AlphaNum, r) {
				t.Fatalf("unexpected rune %q in id %q", r, id)
			}
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Fatal("ids are not random")
	}
}

func TestNewReqID(t *testing.T) {
	a := NewReqID()
	b := NewReqID()
	if a == b {
		t.Fatalf("req ids should differ, got %q twice", a)
	}
}
