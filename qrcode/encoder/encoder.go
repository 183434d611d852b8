// Package encoder builds QR symbols: segment encoding, version selection,
// Reed-Solomon error correction, module placement and mask selection.
package encoder

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
	"github.com/ericlevine/qrstudio/charset"
	"github.com/ericlevine/qrstudio/qrcode/decoder"
	"github.com/ericlevine/qrstudio/reedsolomon"
)

var rs = reedsolomon.NewEncoder(reedsolomon.QRField)

// Symbol is an encoded QR code.
type Symbol struct {
	Version *decoder.Version
	Level   qrstudio.ECLevel
	Mode    decoder.Mode
	// ECI is set when the byte segment is preceded by a character set
	// designator.
	ECI  *charset.ECI
	Mask int

	grid *grid
}

// Size returns the side of the symbol in modules.
func (s *Symbol) Size() int { return s.grid.size }

// Dark reports whether the module at column x, row y is dark.
func (s *Symbol) Dark(x, y int) bool { return s.grid.get(x, y) == 1 }

// Matrix returns the modules as an immutable matrix.
func (s *Symbol) Matrix() *qrstudio.ModuleMatrix {
	cells := make([]bool, len(s.grid.cells))
	for i, c := range s.grid.cells {
		cells[i] = c == 1
	}
	m, err := qrstudio.NewModuleMatrix(s.grid.size, cells)
	if err != nil {
		// Every version yields an odd side of at least 21.
		panic(err)
	}
	return m
}

// Bits returns the modules as a bit matrix, set meaning dark.
func (s *Symbol) Bits() *bitutil.BitMatrix {
	bm := bitutil.NewBitMatrix(s.grid.size)
	for y := 0; y < s.grid.size; y++ {
		for x := 0; x < s.grid.size; x++ {
			if s.Dark(x, y) {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

func (s *Symbol) String() string {
	var sb strings.Builder
	for y := 0; y < s.grid.size; y++ {
		for x := 0; x < s.grid.size; x++ {
			if s.Dark(x, y) {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Encode encodes content at level. An automatic mask picks the pattern
// with the lowest penalty score.
func Encode(content string, level qrstudio.ECLevel, mask qrstudio.MaskPattern) (*Symbol, error) {
	if content == "" {
		return nil, qrstudio.ErrEmpty
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: level %d", qrstudio.ErrInvalidOptions, int(level))
	}
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("qrcode/encoder: content is not valid UTF-8")
	}

	mode := chooseMode(content)
	header := bitutil.NewBitArray(0)
	data := bitutil.NewBitArray(0)
	var eci *charset.ECI
	count := len(content)

	switch mode {
	case decoder.ModeNumeric:
		appendNumeric(content, data)
	case decoder.ModeAlphanumeric:
		appendAlphanumeric(content, data)
	default:
		raw, err := charset.Encode(content, charset.ISO8859_1)
		if err != nil {
			eci = charset.UTF8
			raw = []byte(content)
			header.AppendBits(uint32(decoder.ModeECI), 4)
			header.AppendBits(uint32(eci.Value), 8)
		}
		count = len(raw)
		for _, b := range raw {
			data.AppendBits(uint32(b), 8)
		}
	}
	header.AppendBits(uint32(mode), 4)

	version, err := chooseVersion(mode, header.Size(), count, data.Size(), level)
	if err != nil {
		return nil, err
	}
	header.AppendBits(uint32(count), mode.CountBits(version.Number))
	header.AppendBitArray(data)

	blocks := version.Blocks(level)
	if err := terminate(header, blocks.TotalData()); err != nil {
		return nil, err
	}
	final := interleave(header, blocks)

	sym := &Symbol{Version: version, Level: level, Mode: mode, ECI: eci, grid: newGrid(version.Dimension())}
	if m, ok := mask.Index(); ok {
		sym.Mask = m
	} else {
		sym.Mask = chooseMask(final, level, version, sym.grid)
	}
	build(final, level, version, sym.Mask, sym.grid)
	return sym, nil
}

var alphanumericCodes = func() [128]int8 {
	var t [128]int8
	for i := range t {
		t[i] = -1
	}
	for i, c := range "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:" {
		t[c] = int8(i)
	}
	return t
}()

func alphanumericCode(r rune) int {
	if r < 0 || r >= 128 {
		return -1
	}
	return int(alphanumericCodes[r])
}

func chooseMode(content string) decoder.Mode {
	numeric := true
	for _, r := range content {
		if r >= '0' && r <= '9' {
			continue
		}
		numeric = false
		if alphanumericCode(r) < 0 {
			return decoder.ModeByte
		}
	}
	if numeric {
		return decoder.ModeNumeric
	}
	return decoder.ModeAlphanumeric
}

func appendNumeric(content string, bits *bitutil.BitArray) {
	for i := 0; i < len(content); i += 3 {
		chunk := content[i:min(i+3, len(content))]
		v := 0
		for _, c := range chunk {
			v = v*10 + int(c-'0')
		}
		bits.AppendBits(uint32(v), []int{0, 4, 7, 10}[len(chunk)])
	}
}

func appendAlphanumeric(content string, bits *bitutil.BitArray) {
	for i := 0; i < len(content); i += 2 {
		c1 := alphanumericCode(rune(content[i]))
		if i+1 < len(content) {
			bits.AppendBits(uint32(c1*45+alphanumericCode(rune(content[i+1]))), 11)
		} else {
			bits.AppendBits(uint32(c1), 6)
		}
	}
}

func chooseVersion(mode decoder.Mode, headerBits, count, dataBits int, level qrstudio.ECLevel) (*decoder.Version, error) {
	for n := 1; n <= 40; n++ {
		v, _ := decoder.VersionFor(n)
		width := mode.CountBits(n)
		if count >= 1<<width {
			continue
		}
		if headerBits+width+dataBits <= v.Blocks(level).TotalData()*8 {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %d data bits at level %v", qrstudio.ErrTooBig, headerBits+dataBits, level)
}

// terminate appends up to four terminator bits, pads to a byte boundary
// and fills the remaining capacity with alternating pad codewords.
func terminate(bits *bitutil.BitArray, numDataBytes int) error {
	capacity := numDataBytes * 8
	if bits.Size() > capacity {
		return fmt.Errorf("%w: %d bits exceed %d", qrstudio.ErrTooBig, bits.Size(), capacity)
	}
	for i := 0; i < 4 && bits.Size() < capacity; i++ {
		bits.AppendBit(false)
	}
	for bits.Size()%8 != 0 {
		bits.AppendBit(false)
	}
	for i := 0; bits.SizeInBytes() < numDataBytes; i++ {
		bits.AppendBits([2]uint32{0xEC, 0x11}[i%2], 8)
	}
	return nil
}

// interleave splits the data codewords into blocks, computes their error
// correction codewords and deals both out column by column.
func interleave(bits *bitutil.BitArray, layout decoder.Blocks) *bitutil.BitArray {
	var data, ec [][]byte
	off := 0
	for _, g := range layout.Groups {
		for i := 0; i < g.Count; i++ {
			d := make([]byte, g.DataCodewords)
			bits.ToBytes(8*off, d, 0, len(d))
			off += len(d)
			data = append(data, d)
			ec = append(ec, rs.Encode(d, layout.ECPerBlock))
		}
	}
	out := bitutil.NewBitArray(0)
	deal := func(blocks [][]byte) {
		longest := 0
		for _, b := range blocks {
			longest = max(longest, len(b))
		}
		for i := 0; i < longest; i++ {
			for _, b := range blocks {
				if i < len(b) {
					out.AppendBits(uint32(b[i]), 8)
				}
			}
		}
	}
	deal(data)
	deal(ec)
	return out
}
