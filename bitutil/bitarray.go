// Package bitutil holds the bit containers shared by the QR encoder and
// decoder.
package bitutil

import "strings"

// BitArray is a growable sequence of bits stored in 32-bit words, least
// significant bit first within each word.
type BitArray struct {
	words []uint32
	size  int
}

// NewBitArray returns an array of size cleared bits.
func NewBitArray(size int) *BitArray {
	if size < 0 {
		size = 0
	}
	return &BitArray{words: make([]uint32, (size+31)/32), size: size}
}

// Size returns the number of bits held.
func (a *BitArray) Size() int { return a.size }

// SizeInBytes returns the number of bytes needed to hold the bits.
func (a *BitArray) SizeInBytes() int { return (a.size + 7) / 8 }

// Get reports whether bit i is set.
func (a *BitArray) Get(i int) bool {
	return a.words[i>>5]&(1<<uint(i&31)) != 0
}

// Set sets bit i.
func (a *BitArray) Set(i int) {
	a.words[i>>5] |= 1 << uint(i&31)
}

func (a *BitArray) grow(n int) {
	need := (a.size + n + 31) / 32
	if need <= len(a.words) {
		return
	}
	words := make([]uint32, need+need/2)
	copy(words, a.words)
	a.words = words
}

// AppendBit appends one bit.
func (a *BitArray) AppendBit(bit bool) {
	a.grow(1)
	if bit {
		a.Set(a.size)
	}
	a.size++
}

// AppendBits appends the numBits least significant bits of value, most
// significant first.
func (a *BitArray) AppendBits(value uint32, numBits int) {
	if numBits < 0 || numBits > 32 {
		panic("bitutil: AppendBits takes 0 to 32 bits")
	}
	a.grow(numBits)
	for n := numBits - 1; n >= 0; n-- {
		a.AppendBit(value&(1<<uint(n)) != 0)
	}
}

// AppendBitArray appends all bits of other.
func (a *BitArray) AppendBitArray(other *BitArray) {
	a.grow(other.size)
	for i := 0; i < other.size; i++ {
		a.AppendBit(other.Get(i))
	}
}

// ToBytes packs numBytes bytes starting at bitOffset into dst[offset:],
// most significant bit first.
func (a *BitArray) ToBytes(bitOffset int, dst []byte, offset, numBytes int) {
	for i := 0; i < numBytes; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			if a.Get(bitOffset) {
				b |= 1 << uint(7-j)
			}
			bitOffset++
		}
		dst[offset+i] = b
	}
}

// Bytes returns the bits packed into bytes, padding the last byte with zeros.
func (a *BitArray) Bytes() []byte {
	out := make([]byte, a.SizeInBytes())
	for i := 0; i < a.size; i++ {
		if a.Get(i) {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// String renders the bits as 'X' and '.' grouped by byte.
func (a *BitArray) String() string {
	var sb strings.Builder
	for i := 0; i < a.size; i++ {
		if i%8 == 0 {
			sb.WriteByte(' ')
		}
		if a.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
