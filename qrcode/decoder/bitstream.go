package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
	"github.com/ericlevine/qrstudio/charset"
)

const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

const gb2312Subset = 1

// Result is the content of a decoded symbol.
type Result struct {
	Text string
	// Raw holds the corrected data codewords.
	Raw          []byte
	ByteSegments [][]byte
	Level        qrstudio.ECLevel
	Mask         int
	Version      int
	// ErrorsCorrected counts codewords repaired by Reed-Solomon.
	ErrorsCorrected int
	// StructuredAppendSequence and StructuredAppendParity are -1 unless the
	// symbol is part of a structured append set.
	StructuredAppendSequence int
	StructuredAppendParity   int
	// Mirrored reports that the symbol only decoded when read transposed.
	Mirrored bool
}

func errFormat(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{qrstudio.ErrFormat}, args...)...)
}

// decodeBitStream parses the segments of the corrected data codewords.
func decodeBitStream(data []byte, v *Version, level qrstudio.ECLevel) (*Result, error) {
	bs := bitutil.NewBitSource(data)
	res := &Result{
		Raw:                      data,
		Level:                    level,
		Version:                  v.Number,
		StructuredAppendSequence: -1,
		StructuredAppendParity:   -1,
	}
	var (
		text strings.Builder
		eci  *charset.ECI
		fnc1 bool
	)
	for {
		mode := ModeTerminator
		if bs.Available() >= 4 {
			b, _ := bs.ReadBits(4)
			m, err := modeForBits(b)
			if err != nil {
				return nil, err
			}
			mode = m
		}
		switch mode {
		case ModeTerminator:
			res.Text = text.String()
			return res, nil
		case ModeFNC1FirstPosition, ModeFNC1Second:
			fnc1 = true
		case ModeStructuredAppend:
			if bs.Available() < 16 {
				return nil, errFormat("truncated structured append header")
			}
			res.StructuredAppendSequence, _ = bs.ReadBits(8)
			res.StructuredAppendParity, _ = bs.ReadBits(8)
		case ModeECI:
			value, err := readECI(bs)
			if err != nil {
				return nil, err
			}
			if eci, err = charset.ByValue(value); err != nil {
				return nil, errFormat("eci %d", value)
			}
		case ModeHanzi:
			subset, err := bs.ReadBits(4)
			if err != nil {
				return nil, errFormat("truncated hanzi header")
			}
			count, err := bs.ReadBits(mode.CountBits(v.Number))
			if err != nil {
				return nil, errFormat("truncated hanzi count")
			}
			if subset == gb2312Subset {
				if err := decodeDoubleByte(bs, &text, count, hanziPair, charset.GB18030); err != nil {
					return nil, err
				}
			}
		default:
			count, err := bs.ReadBits(mode.CountBits(v.Number))
			if err != nil {
				return nil, errFormat("truncated %s count", mode)
			}
			switch mode {
			case ModeNumeric:
				err = decodeNumeric(bs, &text, count)
			case ModeAlphanumeric:
				err = decodeAlphanumeric(bs, &text, count, fnc1)
			case ModeByte:
				var seg []byte
				seg, err = decodeByte(bs, &text, count, eci)
				res.ByteSegments = append(res.ByteSegments, seg)
			case ModeKanji:
				err = decodeDoubleByte(bs, &text, count, kanjiPair, charset.ShiftJIS)
			}
			if err != nil {
				return nil, err
			}
		}
	}
}

func decodeNumeric(bs *bitutil.BitSource, out *strings.Builder, count int) error {
	for ; count >= 3; count -= 3 {
		v, err := bs.ReadBits(10)
		if err != nil || v >= 1000 {
			return errFormat("bad numeric triple")
		}
		fmt.Fprintf(out, "%03d", v)
	}
	switch count {
	case 2:
		v, err := bs.ReadBits(7)
		if err != nil || v >= 100 {
			return errFormat("bad numeric pair")
		}
		fmt.Fprintf(out, "%02d", v)
	case 1:
		v, err := bs.ReadBits(4)
		if err != nil || v >= 10 {
			return errFormat("bad numeric digit")
		}
		out.WriteString(strconv.Itoa(v))
	}
	return nil
}

func alnum(v int) (byte, error) {
	if v >= len(alphanumericChars) {
		return 0, errFormat("alphanumeric value %d", v)
	}
	return alphanumericChars[v], nil
}

func decodeAlphanumeric(bs *bitutil.BitSource, out *strings.Builder, count int, fnc1 bool) error {
	var seg []byte
	for ; count > 1; count -= 2 {
		v, err := bs.ReadBits(11)
		if err != nil {
			return errFormat("truncated alphanumeric pair")
		}
		c1, err := alnum(v / 45)
		if err != nil {
			return err
		}
		c2, err := alnum(v % 45)
		if err != nil {
			return err
		}
		seg = append(seg, c1, c2)
	}
	if count == 1 {
		v, err := bs.ReadBits(6)
		if err != nil {
			return errFormat("truncated alphanumeric char")
		}
		c, err := alnum(v)
		if err != nil {
			return err
		}
		seg = append(seg, c)
	}
	if fnc1 {
		// In FNC1 mode "%" is the group separator and "%%" a literal percent.
		s := strings.ReplaceAll(string(seg), "%%", "\x00")
		s = strings.ReplaceAll(s, "%", "\x1d")
		seg = []byte(strings.ReplaceAll(s, "\x00", "%"))
	}
	out.Write(seg)
	return nil
}

func decodeByte(bs *bitutil.BitSource, out *strings.Builder, count int, eci *charset.ECI) ([]byte, error) {
	if 8*count > bs.Available() {
		return nil, errFormat("byte segment of %d overruns data", count)
	}
	seg := make([]byte, count)
	for i := range seg {
		v, _ := bs.ReadBits(8)
		seg[i] = byte(v)
	}
	if eci == nil {
		eci = charset.Guess(seg)
	}
	out.WriteString(charset.Decode(seg, eci))
	return seg, nil
}

// kanjiPair and hanziPair expand a 13-bit value into its two-byte code.
func kanjiPair(v int) int {
	a := (v/0xC0)<<8 | v%0xC0
	if a < 0x1F00 {
		return a + 0x8140
	}
	return a + 0xC140
}

func hanziPair(v int) int {
	a := (v/0x60)<<8 | v%0x60
	if a < 0xA00 {
		return a + 0xA1A1
	}
	return a + 0xA6A1
}

func decodeDoubleByte(bs *bitutil.BitSource, out *strings.Builder, count int, pair func(int) int, cs *charset.ECI) error {
	if 13*count > bs.Available() {
		return errFormat("double-byte segment of %d overruns data", count)
	}
	buf := make([]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		v, _ := bs.ReadBits(13)
		p := pair(v)
		buf = append(buf, byte(p>>8), byte(p))
	}
	out.WriteString(charset.Decode(buf, cs))
	return nil
}

func readECI(bs *bitutil.BitSource) (int, error) {
	first, err := bs.ReadBits(8)
	if err != nil {
		return 0, errFormat("truncated eci")
	}
	switch {
	case first&0x80 == 0:
		return first, nil
	case first&0xC0 == 0x80:
		second, err := bs.ReadBits(8)
		if err != nil {
			return 0, errFormat("truncated eci")
		}
		return (first&0x3F)<<8 | second, nil
	case first&0xE0 == 0xC0:
		rest, err := bs.ReadBits(16)
		if err != nil {
			return 0, errFormat("truncated eci")
		}
		return (first&0x1F)<<16 | rest, nil
	}
	return 0, errFormat("eci designator %#x", first)
}
