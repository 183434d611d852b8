package decoder

import (
	"fmt"

	"github.com/ericlevine/qrstudio"
)

// Mode is the four-bit indicator that starts each segment.
type Mode int

const (
	ModeTerminator        Mode = 0x0
	ModeNumeric           Mode = 0x1
	ModeAlphanumeric      Mode = 0x2
	ModeStructuredAppend  Mode = 0x3
	ModeByte              Mode = 0x4
	ModeFNC1FirstPosition Mode = 0x5
	ModeECI               Mode = 0x7
	ModeKanji             Mode = 0x8
	ModeFNC1Second        Mode = 0x9
	ModeHanzi             Mode = 0xD
)

func (m Mode) String() string {
	switch m {
	case ModeTerminator:
		return "terminator"
	case ModeNumeric:
		return "numeric"
	case ModeAlphanumeric:
		return "alphanumeric"
	case ModeStructuredAppend:
		return "structured-append"
	case ModeByte:
		return "byte"
	case ModeFNC1FirstPosition, ModeFNC1Second:
		return "fnc1"
	case ModeECI:
		return "eci"
	case ModeKanji:
		return "kanji"
	case ModeHanzi:
		return "hanzi"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func modeForBits(b int) (Mode, error) {
	switch m := Mode(b); m {
	case ModeTerminator, ModeNumeric, ModeAlphanumeric, ModeStructuredAppend, ModeByte,
		ModeFNC1FirstPosition, ModeECI, ModeKanji, ModeFNC1Second, ModeHanzi:
		return m, nil
	}
	return 0, fmt.Errorf("%w: mode %#x", qrstudio.ErrFormat, b)
}

// CountBits returns the width of the character count field for m in
// symbols of version number.
func (m Mode) CountBits(number int) int {
	var widths [3]int
	switch m {
	case ModeNumeric:
		widths = [3]int{10, 12, 14}
	case ModeAlphanumeric:
		widths = [3]int{9, 11, 13}
	case ModeByte:
		widths = [3]int{8, 16, 16}
	case ModeKanji, ModeHanzi:
		widths = [3]int{8, 10, 12}
	default:
		return 0
	}
	switch {
	case number <= 9:
		return widths[0]
	case number <= 26:
		return widths[1]
	}
	return widths[2]
}
