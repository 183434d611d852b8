package reedsolomon

import "sync"

// Encoder computes error correction codewords. Generator polynomials are
// built on demand and cached per degree.
type Encoder struct {
	field *Field

	mu         sync.Mutex
	generators map[int][]int
}

// NewEncoder creates an Encoder over field.
func NewEncoder(field *Field) *Encoder {
	return &Encoder{field: field, generators: make(map[int][]int)}
}

// generator returns the monic polynomial prod(x - alpha^(i+base)) for
// i in [0, degree), highest degree first.
func (e *Encoder) generator(degree int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if g, ok := e.generators[degree]; ok {
		return g
	}
	g := []int{1}
	for i := 0; i < degree; i++ {
		root := e.field.Exp(i + e.field.base)
		next := make([]int, len(g)+1)
		for j, c := range g {
			next[j] ^= c
			next[j+1] ^= e.field.Mul(c, root)
		}
		g = next
	}
	e.generators[degree] = g
	return g
}

// Encode returns the ecLen codewords to append after data.
func (e *Encoder) Encode(data []byte, ecLen int) []byte {
	if ecLen <= 0 {
		panic("reedsolomon: no error correction bytes")
	}
	if len(data) == 0 {
		panic("reedsolomon: no data bytes provided")
	}
	g := e.generator(ecLen)
	rem := make([]int, ecLen)
	for _, d := range data {
		factor := int(d) ^ rem[0]
		copy(rem, rem[1:])
		rem[ecLen-1] = 0
		if factor == 0 {
			continue
		}
		for i := range rem {
			rem[i] ^= e.field.Mul(g[i+1], factor)
		}
	}
	out := make([]byte, ecLen)
	for i, r := range rem {
		out[i] = byte(r)
	}
	return out
}
