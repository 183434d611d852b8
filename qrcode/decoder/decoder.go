// Package decoder turns a sampled QR module matrix back into text.
package decoder

import (
	"errors"
	"fmt"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
	"github.com/ericlevine/qrstudio/reedsolomon"
)

// Decoder decodes sampled symbols. It is safe for concurrent use.
type Decoder struct {
	rs *reedsolomon.Decoder
}

// New returns a Decoder over the QR Reed-Solomon field.
func New() *Decoder {
	return &Decoder{rs: reedsolomon.NewDecoder(reedsolomon.QRField)}
}

// Decode reads bits, one bit per module with set meaning dark. bits is
// modified during decoding. A symbol that fails to decode is retried
// transposed, as produced by a mirrored camera.
func (d *Decoder) Decode(bits *bitutil.BitMatrix) (*Result, error) {
	p, err := newParser(bits)
	if err != nil {
		return nil, err
	}
	res, err := d.decode(p)
	if err == nil {
		return res, nil
	}

	// Restore the masked matrix before reading it mirrored.
	p.unmask()
	p.version, p.format, p.mirror = nil, nil, true
	if _, verr := p.readVersion(); verr != nil {
		return nil, err
	}
	if _, ferr := p.readFormat(); ferr != nil {
		return nil, err
	}
	p.transpose()
	res, merr := d.decode(p)
	if merr != nil {
		return nil, err
	}
	res.Mirrored = true
	return res, nil
}

func (d *Decoder) decode(p *parser) (*Result, error) {
	v, err := p.readVersion()
	if err != nil {
		return nil, err
	}
	fi, err := p.readFormat()
	if err != nil {
		return nil, err
	}
	raw, err := p.readCodewords()
	if err != nil {
		return nil, err
	}

	blocks := splitBlocks(raw, v, fi.Level)
	data := make([]byte, 0, v.Blocks(fi.Level).TotalData())
	corrected := 0
	for _, b := range blocks {
		n, err := d.rs.Decode(b.codewords, len(b.codewords)-b.numData)
		if errors.Is(err, reedsolomon.ErrUncorrectable) {
			return nil, fmt.Errorf("%w: %v", qrstudio.ErrChecksum, err)
		} else if err != nil {
			return nil, err
		}
		corrected += n
		data = append(data, b.codewords[:b.numData]...)
	}

	res, err := decodeBitStream(data, v, fi.Level)
	if err != nil {
		return nil, err
	}
	res.Mask = fi.Mask
	res.ErrorsCorrected = corrected
	return res, nil
}
