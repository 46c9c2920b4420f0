package main

import (
	"testing"

	"github.com/vovakirdan/tui-cave/internal/core"
)

func TestParsePresses(t *testing.T) {
	got, err := parsePresses([]string{"3:down", "5-7:right", "6:jump+fire"})
	if err != nil {
		t.Fatalf("parsePresses() failed: %v", err)
	}

	want := map[int]core.Key{
		3: core.KeyDown,
		5: core.KeyRight,
		6: core.KeyRight | core.KeyJump | core.KeyFire,
		7: core.KeyRight,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d: %v", len(got), len(want), got)
	}
	for f, k := range want {
		if got[f] != k {
			t.Errorf("frame %d: got %v, want %v", f, got[f], k)
		}
	}
}

func TestParsePressesErrors(t *testing.T) {
	tests := []string{
		"down",
		"x:down",
		"5-3:left",
		"-1:left",
		"4:kick",
		"4:",
	}
	for _, press := range tests {
		if _, err := parsePresses([]string{press}); err == nil {
			t.Errorf("parsePresses(%q) should fail", press)
		}
	}
}
