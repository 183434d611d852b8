package decoder

import (
	"fmt"
	"math/bits"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/bitutil"
)

// Group is a run of blocks sharing the same data codeword count.
type Group struct {
	Count         int
	DataCodewords int
}

// Blocks describes how the codewords of one error correction level are
// split into Reed-Solomon blocks.
type Blocks struct {
	ECPerBlock int
	Groups     []Group
}

// NumBlocks returns the number of blocks in all groups.
func (b Blocks) NumBlocks() int {
	n := 0
	for _, g := range b.Groups {
		n += g.Count
	}
	return n
}

// TotalEC returns the number of error correction codewords.
func (b Blocks) TotalEC() int { return b.ECPerBlock * b.NumBlocks() }

// TotalData returns the number of data codewords.
func (b Blocks) TotalData() int {
	n := 0
	for _, g := range b.Groups {
		n += g.Count * g.DataCodewords
	}
	return n
}

// Version is a QR symbol version, 1 through 40.
type Version struct {
	Number int
	// Alignment holds the row and column centres of alignment patterns.
	Alignment []int
	// TotalCodewords counts data and error correction codewords.
	TotalCodewords int

	blocks [4]Blocks
}

// Dimension returns the side of the symbol in modules.
func (v *Version) Dimension() int { return 17 + 4*v.Number }

// Blocks returns the block layout for level.
func (v *Version) Blocks(level qrstudio.ECLevel) Blocks { return v.blocks[level] }

// FunctionPattern marks every module that does not carry data: finder
// patterns with separators and format areas, alignment patterns, timing
// patterns and, from version 7, version information.
func (v *Version) FunctionPattern() *bitutil.BitMatrix {
	dim := v.Dimension()
	m := bitutil.NewBitMatrix(dim)
	m.SetRegion(0, 0, 9, 9)
	m.SetRegion(dim-8, 0, 8, 9)
	m.SetRegion(0, dim-8, 9, 8)

	last := len(v.Alignment) - 1
	for i, cy := range v.Alignment {
		for j, cx := range v.Alignment {
			// Skip the three centres that overlap finder patterns.
			if (i == 0 && (j == 0 || j == last)) || (i == last && j == 0) {
				continue
			}
			m.SetRegion(cx-2, cy-2, 5, 5)
		}
	}

	m.SetRegion(6, 9, 1, dim-17)
	m.SetRegion(9, 6, dim-17, 1)

	if v.Number > 6 {
		m.SetRegion(dim-11, 0, 3, 6)
		m.SetRegion(0, dim-11, 6, 3)
	}
	return m
}

// VersionFor returns version number.
func VersionFor(number int) (*Version, error) {
	if number < 1 || number > len(versions) {
		return nil, fmt.Errorf("%w: version %d", qrstudio.ErrFormat, number)
	}
	return &versions[number-1], nil
}

// VersionForDimension returns the version whose symbol is dim modules wide.
func VersionForDimension(dim int) (*Version, error) {
	if dim%4 != 1 {
		return nil, fmt.Errorf("%w: dimension %d", qrstudio.ErrFormat, dim)
	}
	return VersionFor((dim - 17) / 4)
}

// VersionBits returns the 18-bit version information word written into
// symbols of version 7 and above.
func VersionBits(number int) int {
	return number<<12 | bch(number, versionInfoPoly)
}

// decodeVersionBits returns the version whose information word is within
// three bits of word.
func decodeVersionBits(word int) *Version {
	best, bestDiff := 0, 4
	for n := 7; n <= len(versions); n++ {
		d := bits.OnesCount(uint(word ^ VersionBits(n)))
		if d == 0 {
			return &versions[n-1]
		}
		if d < bestDiff {
			best, bestDiff = n, d
		}
	}
	if best == 0 {
		return nil
	}
	return &versions[best-1]
}

// alignmentCentres spaces the alignment patterns evenly between column 6
// and the far edge, rounding the step up to an even number.
func alignmentCentres(number int) []int {
	if number == 1 {
		return nil
	}
	n := number/7 + 2
	step := (number*4 + n*2 + 1) / (n*2 - 2) * 2
	if number == 32 {
		step = 26
	}
	c := make([]int, n)
	c[0] = 6
	for i, pos := n-1, number*4+10; i >= 1; i, pos = i-1, pos-step {
		c[i] = pos
	}
	return c
}

// blockTable lists, per version and for levels L, M, Q and H, the error
// correction codewords per block followed by the block count and data
// codewords of the first and second group.
var blockTable = [40][4][5]int{
	{{7, 1, 19, 0, 0}, {10, 1, 16, 0, 0}, {13, 1, 13, 0, 0}, {17, 1, 9, 0, 0}},
	{{10, 1, 34, 0, 0}, {16, 1, 28, 0, 0}, {22, 1, 22, 0, 0}, {28, 1, 16, 0, 0}},
	{{15, 1, 55, 0, 0}, {26, 1, 44, 0, 0}, {18, 2, 17, 0, 0}, {22, 2, 13, 0, 0}},
	{{20, 1, 80, 0, 0}, {18, 2, 32, 0, 0}, {26, 2, 24, 0, 0}, {16, 4, 9, 0, 0}},
	{{26, 1, 108, 0, 0}, {24, 2, 43, 0, 0}, {18, 2, 15, 2, 16}, {22, 2, 11, 2, 12}},
	{{18, 2, 68, 0, 0}, {16, 4, 27, 0, 0}, {24, 4, 19, 0, 0}, {28, 4, 15, 0, 0}},
	{{20, 2, 78, 0, 0}, {18, 4, 31, 0, 0}, {18, 2, 14, 4, 15}, {26, 4, 13, 1, 14}},
	{{24, 2, 97, 0, 0}, {22, 2, 38, 2, 39}, {22, 4, 18, 2, 19}, {26, 4, 14, 2, 15}},
	{{30, 2, 116, 0, 0}, {22, 3, 36, 2, 37}, {20, 4, 16, 4, 17}, {24, 4, 12, 4, 13}},
	{{18, 2, 68, 2, 69}, {26, 4, 43, 1, 44}, {24, 6, 19, 2, 20}, {28, 6, 15, 2, 16}},
	{{20, 4, 81, 0, 0}, {30, 1, 50, 4, 51}, {28, 4, 22, 4, 23}, {24, 3, 12, 8, 13}},
	{{24, 2, 92, 2, 93}, {22, 6, 36, 2, 37}, {26, 4, 20, 6, 21}, {28, 7, 14, 4, 15}},
	{{26, 4, 107, 0, 0}, {22, 8, 37, 1, 38}, {24, 8, 20, 4, 21}, {22, 12, 11, 4, 12}},
	{{30, 3, 115, 1, 116}, {24, 4, 40, 5, 41}, {20, 11, 16, 5, 17}, {24, 11, 12, 5, 13}},
	{{22, 5, 87, 1, 88}, {24, 5, 41, 5, 42}, {30, 5, 24, 7, 25}, {24, 11, 12, 7, 13}},
	{{24, 5, 98, 1, 99}, {28, 7, 45, 3, 46}, {24, 15, 19, 2, 20}, {30, 3, 15, 13, 16}},
	{{28, 1, 107, 5, 108}, {28, 10, 46, 1, 47}, {28, 1, 22, 15, 23}, {28, 2, 14, 17, 15}},
	{{30, 5, 120, 1, 121}, {26, 9, 43, 4, 44}, {28, 17, 22, 1, 23}, {28, 2, 14, 19, 15}},
	{{28, 3, 113, 4, 114}, {26, 3, 44, 11, 45}, {26, 17, 21, 4, 22}, {26, 9, 13, 16, 14}},
	{{28, 3, 107, 5, 108}, {26, 3, 41, 13, 42}, {30, 15, 24, 5, 25}, {28, 15, 15, 10, 16}},
	{{28, 4, 116, 4, 117}, {26, 17, 42, 0, 0}, {28, 17, 22, 6, 23}, {30, 19, 16, 6, 17}},
	{{28, 2, 111, 7, 112}, {28, 17, 46, 0, 0}, {30, 7, 24, 16, 25}, {24, 34, 13, 0, 0}},
	{{30, 4, 121, 5, 122}, {28, 4, 47, 14, 48}, {30, 11, 24, 14, 25}, {30, 16, 15, 14, 16}},
	{{30, 6, 117, 4, 118}, {28, 6, 45, 14, 46}, {30, 11, 24, 16, 25}, {30, 30, 16, 2, 17}},
	{{26, 8, 106, 4, 107}, {28, 8, 47, 13, 48}, {30, 7, 24, 22, 25}, {30, 22, 15, 13, 16}},
	{{28, 10, 114, 2, 115}, {28, 19, 46, 4, 47}, {28, 28, 22, 6, 23}, {30, 33, 16, 4, 17}},
	{{30, 8, 122, 4, 123}, {28, 22, 45, 3, 46}, {30, 8, 23, 26, 24}, {30, 12, 15, 28, 16}},
	{{30, 3, 117, 10, 118}, {28, 3, 45, 23, 46}, {30, 4, 24, 31, 25}, {30, 11, 15, 31, 16}},
	{{30, 7, 116, 7, 117}, {28, 21, 45, 7, 46}, {30, 1, 23, 37, 24}, {30, 19, 15, 26, 16}},
	{{30, 5, 115, 10, 116}, {28, 19, 47, 10, 48}, {30, 15, 24, 25, 25}, {30, 23, 15, 25, 16}},
	{{30, 13, 115, 3, 116}, {28, 2, 46, 29, 47}, {30, 42, 24, 1, 25}, {30, 23, 15, 28, 16}},
	{{30, 17, 115, 0, 0}, {28, 10, 46, 23, 47}, {30, 10, 24, 35, 25}, {30, 19, 15, 35, 16}},
	{{30, 17, 115, 1, 116}, {28, 14, 46, 21, 47}, {30, 29, 24, 19, 25}, {30, 11, 15, 46, 16}},
	{{30, 13, 115, 6, 116}, {28, 14, 46, 23, 47}, {30, 44, 24, 7, 25}, {30, 59, 16, 1, 17}},
	{{30, 12, 121, 7, 122}, {28, 12, 47, 26, 48}, {30, 39, 24, 14, 25}, {30, 22, 15, 41, 16}},
	{{30, 6, 121, 14, 122}, {28, 6, 47, 34, 48}, {30, 46, 24, 10, 25}, {30, 2, 15, 64, 16}},
	{{30, 17, 122, 4, 123}, {28, 29, 46, 14, 47}, {30, 49, 24, 10, 25}, {30, 24, 15, 46, 16}},
	{{30, 4, 122, 18, 123}, {28, 13, 46, 32, 47}, {30, 48, 24, 14, 25}, {30, 42, 15, 32, 16}},
	{{30, 20, 117, 4, 118}, {28, 40, 47, 7, 48}, {30, 43, 24, 22, 25}, {30, 10, 15, 67, 16}},
	{{30, 19, 118, 6, 119}, {28, 18, 47, 31, 48}, {30, 34, 24, 34, 25}, {30, 20, 15, 61, 16}},
}

var versions = func() [40]Version {
	var vs [40]Version
	for i, row := range blockTable {
		v := Version{Number: i + 1, Alignment: alignmentCentres(i + 1)}
		for level, r := range row {
			b := Blocks{ECPerBlock: r[0], Groups: []Group{{r[1], r[2]}}}
			if r[3] > 0 {
				b.Groups = append(b.Groups, Group{r[3], r[4]})
			}
			v.blocks[level] = b
		}
		v.TotalCodewords = v.blocks[0].TotalData() + v.blocks[0].TotalEC()
		vs[i] = v
	}
	return vs
}()
