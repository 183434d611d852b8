package decoder

import (
	"fmt"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
	"github.com/ericlevine/qrstudio/mask"
)

// parser reads format, version and codewords from a sampled symbol.
// With mirror set, the symbol is read transposed.
type parser struct {
	bits    *bitutil.BitMatrix
	version *Version
	format  *FormatInfo
	mirror  bool
}

func newParser(bits *bitutil.BitMatrix) (*parser, error) {
	dim := bits.Height()
	if dim < 21 || dim&0x03 != 1 || bits.Width() != dim {
		return nil, fmt.Errorf("%w: %dx%d symbol", qrstudio.ErrFormat, bits.Width(), dim)
	}
	return &parser{bits: bits}, nil
}

func (p *parser) copyBit(i, j, acc int) int {
	bit := p.bits.Get(i, j)
	if p.mirror {
		bit = p.bits.Get(j, i)
	}
	acc <<= 1
	if bit {
		acc |= 1
	}
	return acc
}

func (p *parser) readFormat() (FormatInfo, error) {
	if p.format != nil {
		return *p.format, nil
	}
	// Around the top-left finder.
	w1 := 0
	for i := 0; i < 6; i++ {
		w1 = p.copyBit(i, 8, w1)
	}
	w1 = p.copyBit(7, 8, w1)
	w1 = p.copyBit(8, 8, w1)
	w1 = p.copyBit(8, 7, w1)
	for j := 5; j >= 0; j-- {
		w1 = p.copyBit(8, j, w1)
	}
	// Split between the top-right and bottom-left finders.
	dim := p.bits.Height()
	w2 := 0
	for j := dim - 1; j >= dim-7; j-- {
		w2 = p.copyBit(8, j, w2)
	}
	for i := dim - 8; i < dim; i++ {
		w2 = p.copyBit(i, 8, w2)
	}
	fi, ok := decodeFormatBits(w1, w2)
	if !ok {
		return FormatInfo{}, fmt.Errorf("%w: unreadable format information", qrstudio.ErrFormat)
	}
	p.format = &fi
	return fi, nil
}

func (p *parser) readVersion() (*Version, error) {
	if p.version != nil {
		return p.version, nil
	}
	dim := p.bits.Height()
	if n := (dim - 17) / 4; n <= 6 {
		return VersionFor(n)
	}
	// Top-right block is 3 wide by 6 tall.
	word := 0
	for j := 5; j >= 0; j-- {
		for i := dim - 9; i >= dim-11; i-- {
			word = p.copyBit(i, j, word)
		}
	}
	if v := decodeVersionBits(word); v != nil && v.Dimension() == dim {
		p.version = v
		return v, nil
	}
	// Bottom-left block is 6 wide by 3 tall.
	word = 0
	for i := 5; i >= 0; i-- {
		for j := dim - 9; j >= dim-11; j-- {
			word = p.copyBit(i, j, word)
		}
	}
	if v := decodeVersionBits(word); v != nil && v.Dimension() == dim {
		p.version = v
		return v, nil
	}
	return nil, fmt.Errorf("%w: unreadable version information", qrstudio.ErrFormat)
}

// unmask flips every data module toggled by the format's mask. Applying
// it twice restores the matrix.
func (p *parser) unmask() {
	if p.format == nil {
		return
	}
	dim := p.bits.Height()
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if mask.Toggles(p.format.Mask, i, j) {
				p.bits.Flip(j, i)
			}
		}
	}
}

// readCodewords walks the two-column zigzag from the bottom-right corner,
// skipping the vertical timing column.
func (p *parser) readCodewords() ([]byte, error) {
	if _, err := p.readFormat(); err != nil {
		return nil, err
	}
	v, err := p.readVersion()
	if err != nil {
		return nil, err
	}
	p.unmask()
	fn := v.FunctionPattern()

	dim := p.bits.Height()
	out := make([]byte, 0, v.TotalCodewords)
	cur, n := 0, 0
	up := true
	for j := dim - 1; j > 0; j -= 2 {
		if j == 6 {
			j--
		}
		for count := 0; count < dim; count++ {
			i := count
			if up {
				i = dim - 1 - count
			}
			for col := 0; col < 2; col++ {
				if fn.Get(j-col, i) {
					continue
				}
				cur <<= 1
				if p.bits.Get(j-col, i) {
					cur |= 1
				}
				if n++; n == 8 {
					out = append(out, byte(cur))
					cur, n = 0, 0
				}
			}
		}
		up = !up
	}
	if len(out) != v.TotalCodewords {
		return nil, fmt.Errorf("%w: read %d of %d codewords", qrstudio.ErrFormat, len(out), v.TotalCodewords)
	}
	return out, nil
}

// transpose mirrors the matrix about its main diagonal.
func (p *parser) transpose() {
	dim := p.bits.Width()
	for x := 0; x < dim; x++ {
		for y := x + 1; y < dim; y++ {
			if p.bits.Get(x, y) != p.bits.Get(y, x) {
				p.bits.Flip(y, x)
				p.bits.Flip(x, y)
			}
		}
	}
}
