package decoder

import (
	"math/bits"

	"github.com/ericlevine/qrstudio"
)

const (
	formatInfoPoly  = 0x537
	formatInfoMask  = 0x5412
	versionInfoPoly = 0x1F25
)

// levelBits is the two-bit format code of each level, indexed L, M, Q, H.
var levelBits = [4]int{0x01, 0x00, 0x03, 0x02}

// LevelBits returns the two bits written for level in the format word.
func LevelBits(level qrstudio.ECLevel) int { return levelBits[level] }

func levelForBits(b int) qrstudio.ECLevel {
	for l, v := range levelBits {
		if v == b {
			return qrstudio.ECLevel(l)
		}
	}
	return qrstudio.ECLevelM
}

// FormatInfo is the error correction level and mask pattern of a symbol.
type FormatInfo struct {
	Level qrstudio.ECLevel
	Mask  int
}

// FormatBits returns the masked 15-bit format word for level and mask.
func FormatBits(level qrstudio.ECLevel, mask int) int {
	data := LevelBits(level)<<3 | mask
	return (data<<10 | bch(data, formatInfoPoly)) ^ formatInfoMask
}

// decodeFormatBits matches the two format word copies against all 32
// valid words and accepts the closest within three bits.
func decodeFormatBits(word1, word2 int) (FormatInfo, bool) {
	best, bestDiff := -1, 4
	for data := 0; data < 32; data++ {
		target := (data<<10 | bch(data, formatInfoPoly)) ^ formatInfoMask
		for _, w := range [2]int{word1, word2} {
			if d := bits.OnesCount(uint(w ^ target)); d < bestDiff {
				best, bestDiff = data, d
			}
		}
		if bestDiff == 0 {
			break
		}
	}
	if best < 0 {
		return FormatInfo{}, false
	}
	return FormatInfo{Level: levelForBits(best >> 3), Mask: best & 0x07}, true
}

// bch returns the remainder of value * x^(deg poly) divided by poly.
func bch(value, poly int) int {
	msb := bits.Len(uint(poly))
	value <<= msb - 1
	for bits.Len(uint(value)) >= msb {
		value ^= poly << (bits.Len(uint(value)) - msb)
	}
	return value
}
