package game

import (
	"testing"
)

func TestFlagBankSetGet(t *testing.T) {
	b := NewFlagBank(8000)

	if b.Len() != 8000 {
		t.Fatalf("Len() = %d, expected 8000", b.Len())
	}
	for _, i := range []int{0, 63, 64, 5, 7999} {
		if b.Get(i) {
			t.Errorf("flag %d should start clear", i)
		}
		b.Set(i, true)
		if !b.Get(i) {
			t.Errorf("flag %d should be set", i)
		}
	}
	if b.Count() != 5 {
		t.Errorf("Count() = %d, expected 5", b.Count())
	}

	b.Set(63, false)
	if b.Get(63) {
		t.Error("flag 63 should be clear after Set(false)")
	}
	if !b.Get(64) {
		t.Error("clearing flag 63 must not touch flag 64")
	}
}

func TestFlagBankSetIndices(t *testing.T) {
	b := NewFlagBank(200)
	for _, i := range []int{130, 3, 64} {
		b.Set(i, true)
	}
	got := b.SetIndices()
	want := []int{3, 64, 130}
	if len(got) != len(want) {
		t.Fatalf("SetIndices() = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SetIndices()[%d] = %d, expected %d", i, got[i], want[i])
		}
	}
}

func TestFlagBankOutOfRangePanics(t *testing.T) {
	b := NewFlagBank(8000)
	for _, i := range []int{-1, 8000, 100000} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Get(%d) should panic", i)
				}
			}()
			b.Get(i)
		}()
		if b.InRange(i) {
			t.Errorf("InRange(%d) should be false", i)
		}
	}
}

func TestFlagBankBinaryRoundTrip(t *testing.T) {
	b := NewFlagBank(8000)
	b.Set(1, true)
	b.Set(4000, true)

	data, err := b.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	restored := NewFlagBank(8000)
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() failed: %v", err)
	}
	if !restored.Get(1) || !restored.Get(4000) || restored.Count() != 2 {
		t.Errorf("restored bank has %v", restored.SetIndices())
	}

	if err := NewFlagBank(9000).UnmarshalBinary(data); err == nil {
		t.Error("capacity mismatch should fail")
	}
	if err := restored.UnmarshalBinary(data[:10]); err == nil {
		t.Error("truncated data should fail")
	}
}

func TestFlagBankReset(t *testing.T) {
	b := NewFlagBank(100)
	b.Set(10, true)
	b.Reset()
	if b.Count() != 0 {
		t.Errorf("Count() after Reset = %d", b.Count())
	}
}
