// Package charset maps QR Extended Channel Interpretation (ECI) values to
// text encodings and guesses the encoding of undeclared byte segments.
package charset

import (
	"errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownECI indicates an ECI value outside the supported character sets.
var ErrUnknownECI = errors.New("charset: unknown ECI value")

// ECI is a character set designator. Value is the assignment written in
// the symbol.
type ECI struct {
	Value    int
	Name     string
	Encoding encoding.Encoding
}

// Character sets written or read by the QR codec.
var (
	CP437      = &ECI{0, "IBM437", charmap.CodePage437}
	ISO8859_1  = &ECI{3, "ISO-8859-1", charmap.ISO8859_1}
	ISO8859_2  = &ECI{4, "ISO-8859-2", charmap.ISO8859_2}
	ISO8859_3  = &ECI{5, "ISO-8859-3", charmap.ISO8859_3}
	ISO8859_4  = &ECI{6, "ISO-8859-4", charmap.ISO8859_4}
	ISO8859_5  = &ECI{7, "ISO-8859-5", charmap.ISO8859_5}
	ISO8859_6  = &ECI{8, "ISO-8859-6", charmap.ISO8859_6}
	ISO8859_7  = &ECI{9, "ISO-8859-7", charmap.ISO8859_7}
	ISO8859_8  = &ECI{10, "ISO-8859-8", charmap.ISO8859_8}
	ISO8859_9  = &ECI{11, "ISO-8859-9", charmap.ISO8859_9}
	ISO8859_10 = &ECI{12, "ISO-8859-10", charmap.ISO8859_10}
	ISO8859_13 = &ECI{15, "ISO-8859-13", charmap.ISO8859_13}
	ISO8859_14 = &ECI{16, "ISO-8859-14", charmap.ISO8859_14}
	ISO8859_15 = &ECI{17, "ISO-8859-15", charmap.ISO8859_15}
	ISO8859_16 = &ECI{18, "ISO-8859-16", charmap.ISO8859_16}
	ShiftJIS   = &ECI{20, "Shift_JIS", japanese.ShiftJIS}
	CP1250     = &ECI{21, "windows-1250", charmap.Windows1250}
	CP1251     = &ECI{22, "windows-1251", charmap.Windows1251}
	CP1252     = &ECI{23, "windows-1252", charmap.Windows1252}
	CP1256     = &ECI{24, "windows-1256", charmap.Windows1256}
	UTF16BE    = &ECI{25, "UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	UTF8       = &ECI{26, "UTF-8", unicode.UTF8}
	ASCII      = &ECI{27, "US-ASCII", unicode.UTF8}
	Big5       = &ECI{28, "Big5", traditionalchinese.Big5}
	GB18030    = &ECI{29, "GB18030", simplifiedchinese.GB18030}
	EUCKR      = &ECI{30, "EUC-KR", korean.EUCKR}
)

var byValue = func() map[int]*ECI {
	m := map[int]*ECI{2: CP437, 1: ISO8859_1, 170: ASCII}
	for _, e := range []*ECI{
		CP437, ISO8859_1, ISO8859_2, ISO8859_3, ISO8859_4, ISO8859_5,
		ISO8859_6, ISO8859_7, ISO8859_8, ISO8859_9, ISO8859_10, ISO8859_13,
		ISO8859_14, ISO8859_15, ISO8859_16, ShiftJIS, CP1250, CP1251, CP1252,
		CP1256, UTF16BE, UTF8, ASCII, Big5, GB18030, EUCKR,
	} {
		m[e.Value] = e
	}
	return m
}()

// ByValue returns the character set assigned to value.
func ByValue(value int) (*ECI, error) {
	if e, ok := byValue[value]; ok {
		return e, nil
	}
	return nil, ErrUnknownECI
}

// Decode converts data from e to a UTF-8 string. Bytes that e cannot
// decode are passed through unchanged.
func Decode(data []byte, e *ECI) string {
	out, err := e.Encoding.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// Encode converts s to e. It fails if s holds a rune e cannot represent.
func Encode(s string, e *ECI) ([]byte, error) {
	return e.Encoding.NewEncoder().Bytes([]byte(s))
}
