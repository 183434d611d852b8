// Package reedsolomon implements the Reed-Solomon code used by QR symbols.
package reedsolomon

// Field is GF(256) built from a primitive polynomial. Elements are bytes
// held in ints so intermediate products do not need conversions.
type Field struct {
	exp  [512]int
	log  [256]int
	base int
}

// QRField is x^8 + x^4 + x^3 + x^2 + 1 with generator base 0.
var QRField = NewField(0x011D, 0)

// NewField builds the exponent and logarithm tables for primitive.
func NewField(primitive, base int) *Field {
	f := &Field{base: base}
	x := 1
	for i := 0; i < 255; i++ {
		f.exp[i] = x
		f.log[x] = i
		x <<= 1
		if x&0x100 != 0 {
			x ^= primitive
		}
	}
	// The doubled table lets Mul skip the modulo.
	for i := 255; i < len(f.exp); i++ {
		f.exp[i] = f.exp[i-255]
	}
	return f
}

// Base is the power of alpha of the generator polynomial's first root.
func (f *Field) Base() int { return f.base }

// Exp returns alpha^a for any integer a.
func (f *Field) Exp(a int) int {
	a %= 255
	if a < 0 {
		a += 255
	}
	return f.exp[a]
}

// Log returns the discrete logarithm of a. It panics on zero.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log of zero")
	}
	return f.log[a]
}

// Mul multiplies two field elements.
func (f *Field) Mul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

// Inv returns the multiplicative inverse of a. It panics on zero.
func (f *Field) Inv(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse of zero")
	}
	return f.exp[255-f.log[a]]
}

// evalHigh evaluates a polynomial whose coefficients run from the highest
// degree down, as codewords are laid out.
func (f *Field) evalHigh(coeffs []byte, x int) int {
	s := 0
	for _, c := range coeffs {
		s = f.Mul(s, x) ^ int(c)
	}
	return s
}

// evalLow evaluates a polynomial stored lowest degree first.
func (f *Field) evalLow(coeffs []int, x int) int {
	s := 0
	for i := len(coeffs) - 1; i >= 0; i-- {
		s = f.Mul(s, x) ^ coeffs[i]
	}
	return s
}
