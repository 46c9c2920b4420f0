package game

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// FlagBank is a fixed-capacity bitset of persistent game flags.
// Indices outside [0, Len) are programming errors and panic;
// callers that take indices from content must check InRange first.
type FlagBank struct {
	words []uint64
	n     int
}

// NewFlagBank creates a cleared bank of n flags.
func NewFlagBank(n int) *FlagBank {
	if n < 0 {
		n = 0
	}
	return &FlagBank{
		words: make([]uint64, (n+63)/64),
		n:     n,
	}
}

// Len returns the bank capacity.
func (b *FlagBank) Len() int {
	return b.n
}

// InRange reports whether i addresses a flag in the bank.
func (b *FlagBank) InRange(i int) bool {
	return i >= 0 && i < b.n
}

func (b *FlagBank) check(i int) {
	if !b.InRange(i) {
		panic(fmt.Sprintf("game: flag index %d out of range [0, %d)", i, b.n))
	}
}

// Get returns the value of flag i.
func (b *FlagBank) Get(i int) bool {
	b.check(i)
	return b.words[i/64]&(1<<(uint(i)%64)) != 0
}

// Set sets flag i to v.
func (b *FlagBank) Set(i int, v bool) {
	b.check(i)
	mask := uint64(1) << (uint(i) % 64)
	if v {
		b.words[i/64] |= mask
	} else {
		b.words[i/64] &^= mask
	}
}

// Count returns the number of set flags.
func (b *FlagBank) Count() int {
	total := 0
	for _, w := range b.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// SetIndices returns the indices of all set flags in ascending order.
func (b *FlagBank) SetIndices() []int {
	var out []int
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, wi*64+tz)
			w &= w - 1
		}
	}
	return out
}

// Reset clears every flag.
func (b *FlagBank) Reset() {
	clear(b.words)
}

// MarshalBinary encodes the bank as a u32 capacity followed by
// little-endian 64-bit words.
func (b *FlagBank) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4+8*len(b.words))
	binary.LittleEndian.PutUint32(out, uint32(b.n))
	for i, w := range b.words {
		binary.LittleEndian.PutUint64(out[4+8*i:], w)
	}
	return out, nil
}

// UnmarshalBinary restores a bank produced by MarshalBinary.
// The encoded capacity must match the receiver's capacity.
func (b *FlagBank) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("game: flag bank data too short (%d bytes)", len(data))
	}
	n := int(binary.LittleEndian.Uint32(data))
	if n != b.n {
		return fmt.Errorf("game: flag bank capacity mismatch: have %d, data has %d", b.n, n)
	}
	want := 4 + 8*len(b.words)
	if len(data) != want {
		return fmt.Errorf("game: flag bank data is %d bytes, expected %d", len(data), want)
	}
	for i := range b.words {
		b.words[i] = binary.LittleEndian.Uint64(data[4+8*i:])
	}
	return nil
}
