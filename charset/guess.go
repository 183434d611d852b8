package charset

import "unicode/utf8"

// Guess picks the most plausible character set for a byte segment that
// carries no ECI. Plain ASCII and valid multi-byte UTF-8 come out as
// UTF-8. Bytes confined to the Latin-1 printable ranges come out as
// ISO-8859-1. Runs of Shift_JIS double-byte characters win over both.
func Guess(data []byte) *ECI {
	if len(data) >= 2 && ((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE)) {
		return UTF16BE
	}
	high := false
	for _, b := range data {
		if b >= 0x80 {
			high = true
			break
		}
	}
	if !high || utf8.Valid(data) {
		return UTF8
	}
	if sjisRun(data) >= 2 {
		return ShiftJIS
	}
	for _, b := range data {
		if b >= 0x80 && b < 0xA0 {
			if sjisRun(data) > 0 {
				return ShiftJIS
			}
			break
		}
	}
	return ISO8859_1
}

// sjisRun returns the longest run of well-formed Shift_JIS double-byte
// characters, or -1 when data is not valid Shift_JIS at all.
func sjisRun(data []byte) int {
	longest, run := 0, 0
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b < 0x80:
			run = 0
		case b >= 0xA1 && b <= 0xDF:
			// Half-width katakana.
			run = 0
		case (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xEF):
			if i+1 >= len(data) {
				return -1
			}
			t := data[i+1]
			if t < 0x40 || t == 0x7F || t > 0xFC {
				return -1
			}
			i++
			run++
			longest = max(longest, run)
		default:
			return -1
		}
	}
	return longest
}
