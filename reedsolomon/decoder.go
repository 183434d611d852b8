package reedsolomon

import "errors"

// ErrUncorrectable is returned when a block holds more errors than its
// error correction codewords can repair.
var ErrUncorrectable = errors.New("reedsolomon: too many errors")

// Decoder corrects codeword blocks in place.
type Decoder struct {
	field *Field
}

// NewDecoder creates a Decoder over field.
func NewDecoder(field *Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received, whose last ecLen bytes are error correction
// codewords. It returns the number of corrected bytes.
func (d *Decoder) Decode(received []byte, ecLen int) (int, error) {
	f := d.field
	syndromes := make([]int, ecLen)
	clean := true
	for i := range syndromes {
		syndromes[i] = f.evalHigh(received, f.Exp(i+f.base))
		if syndromes[i] != 0 {
			clean = false
		}
	}
	if clean {
		return 0, nil
	}

	locator := d.locator(syndromes)
	numErrors := len(locator) - 1
	if numErrors == 0 || 2*numErrors > ecLen {
		return 0, ErrUncorrectable
	}

	// evaluator = syndromes * locator mod x^ecLen
	evaluator := make([]int, ecLen)
	for i, s := range syndromes {
		if s == 0 {
			continue
		}
		for j, l := range locator {
			if i+j >= ecLen {
				break
			}
			evaluator[i+j] ^= f.Mul(s, l)
		}
	}

	// Formal derivative: only odd powers survive in characteristic 2.
	derivative := make([]int, len(locator)-1)
	for i := 1; i < len(locator); i += 2 {
		derivative[i-1] = locator[i]
	}

	n := len(received)
	type fix struct{ pos, magnitude int }
	fixes := make([]fix, 0, numErrors)
	for pos := 0; pos < n; pos++ {
		power := n - 1 - pos
		xInv := f.Exp(-power)
		if f.evalLow(locator, xInv) != 0 {
			continue
		}
		denom := f.evalLow(derivative, xInv)
		if denom == 0 {
			return 0, ErrUncorrectable
		}
		m := f.Mul(f.evalLow(evaluator, xInv), f.Inv(denom))
		m = f.Mul(m, f.Exp(power*(1-f.base)))
		fixes = append(fixes, fix{pos, m})
	}
	if len(fixes) != numErrors {
		return 0, ErrUncorrectable
	}
	for _, fx := range fixes {
		received[fx.pos] ^= byte(fx.magnitude)
	}
	return numErrors, nil
}

// locator runs Berlekamp-Massey and returns the error locator polynomial,
// lowest degree first, trimmed to its degree.
func (d *Decoder) locator(syndromes []int) []int {
	f := d.field
	c := []int{1}
	b := []int{1}
	l, m, last := 0, 1, 1
	for n := range syndromes {
		delta := syndromes[n]
		for i := 1; i <= l && i < len(c); i++ {
			delta ^= f.Mul(c[i], syndromes[n-i])
		}
		if delta == 0 {
			m++
			continue
		}
		t := append([]int(nil), c...)
		coef := f.Mul(delta, f.Inv(last))
		if need := len(b) + m; len(c) < need {
			c = append(c, make([]int, need-len(c))...)
		}
		for i, v := range b {
			c[i+m] ^= f.Mul(coef, v)
		}
		if 2*l <= n {
			l = n + 1 - l
			b = t
			last = delta
			m = 1
		} else {
			m++
		}
	}
	for len(c) > l+1 {
		if c[len(c)-1] != 0 {
			break
		}
		c = c[:len(c)-1]
	}
	if len(c) != l+1 {
		// Non-zero terms above the degree mean the syndromes are inconsistent.
		return []int{1}
	}
	return c
}
