package encoder

import (
	"errors"
	"strings"
	"testing"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/charset"
	"github.com/ericlevine/qrstudio/qrcode/decoder"
)

func TestChooseMode(t *testing.T) {
	tests := []struct {
		content string
		want    decoder.Mode
	}{
		{"0123456789", decoder.ModeNumeric},
		{"HELLO WORLD", decoder.ModeAlphanumeric},
		{"A1 $%*+-./:", decoder.ModeAlphanumeric},
		{"hello", decoder.ModeByte},
		{"café", decoder.ModeByte},
	}
	for _, tt := range tests {
		if got := chooseMode(tt.content); got != tt.want {
			t.Errorf("chooseMode(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	_, err := Encode("", qrstudio.ECLevelM, qrstudio.AutoMask)
	if !errors.Is(err, qrstudio.ErrEmpty) {
		t.Fatalf("error = %v, want ErrEmpty", err)
	}
}

func TestEncodeTooBig(t *testing.T) {
	_, err := Encode(strings.Repeat("a", 1274), qrstudio.ECLevelH, qrstudio.AutoMask)
	if !errors.Is(err, qrstudio.ErrTooBig) {
		t.Fatalf("error = %v, want ErrTooBig", err)
	}
	sym, err := Encode(strings.Repeat("a", 1273), qrstudio.ECLevelH, qrstudio.AutoMask)
	if err != nil {
		t.Fatalf("1273 bytes at H: %v", err)
	}
	if sym.Version.Number != 40 {
		t.Errorf("version = %d, want 40", sym.Version.Number)
	}
	if _, err := Encode(strings.Repeat("7", 7090), qrstudio.ECLevelL, qrstudio.AutoMask); !errors.Is(err, qrstudio.ErrTooBig) {
		t.Errorf("7090 digits at L: %v", err)
	}
}

func TestEncodeVersionSelection(t *testing.T) {
	sym, err := Encode("HELLO WORLD", qrstudio.ECLevelQ, qrstudio.AutoMask)
	if err != nil {
		t.Fatal(err)
	}
	if sym.Version.Number != 1 || sym.Size() != 21 {
		t.Errorf("version %d size %d, want 1 and 21", sym.Version.Number, sym.Size())
	}
	if sym.Mode != decoder.ModeAlphanumeric {
		t.Errorf("mode = %v", sym.Mode)
	}
	if sym.Mask < 0 || sym.Mask > 7 {
		t.Errorf("mask = %d", sym.Mask)
	}
}

func TestEncodeExplicitMask(t *testing.T) {
	for m := 0; m < qrstudio.NumMaskPatterns; m++ {
		sym, err := Encode("hello", qrstudio.ECLevelM, qrstudio.Mask(m))
		if err != nil {
			t.Fatal(err)
		}
		if sym.Mask != m {
			t.Errorf("mask = %d, want %d", sym.Mask, m)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := Encode("hello", qrstudio.ECLevelM, qrstudio.AutoMask)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode("hello", qrstudio.ECLevelM, qrstudio.AutoMask)
	if err != nil {
		t.Fatal(err)
	}
	if a.Mask != b.Mask || !a.Matrix().Equal(b.Matrix()) {
		t.Error("encoding the same input twice differs")
	}
}

func TestEncodeCharacterSets(t *testing.T) {
	sym, err := Encode("café", qrstudio.ECLevelM, qrstudio.AutoMask)
	if err != nil {
		t.Fatal(err)
	}
	if sym.ECI != nil {
		t.Errorf("Latin-1 text got ECI %v", sym.ECI.Name)
	}
	sym, err = Encode("日本語", qrstudio.ECLevelM, qrstudio.AutoMask)
	if err != nil {
		t.Fatal(err)
	}
	if sym.ECI != charset.UTF8 {
		t.Errorf("non Latin-1 text ECI = %v, want UTF-8", sym.ECI)
	}
}

func TestFunctionPatterns(t *testing.T) {
	sym, err := Encode("https://example.com/a/longer/path?to=force&a=version+7+symbol&pad=xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", qrstudio.ECLevelH, qrstudio.AutoMask)
	if err != nil {
		t.Fatal(err)
	}
	if sym.Version.Number < 7 {
		t.Fatalf("version = %d, want at least 7", sym.Version.Number)
	}
	n := sym.Size()
	// Finder corners are dark, separators light.
	for _, c := range [][2]int{{0, 0}, {n - 1, 0}, {0, n - 1}, {3, 3}, {n - 4, 3}, {3, n - 4}} {
		if !sym.Dark(c[0], c[1]) {
			t.Errorf("module %v should be dark", c)
		}
	}
	for _, c := range [][2]int{{7, 0}, {n - 8, 0}, {0, n - 8}, {1, 1}} {
		if sym.Dark(c[0], c[1]) {
			t.Errorf("module %v should be light", c)
		}
	}
	if !sym.Dark(8, n-8) {
		t.Error("dark module missing")
	}
	for i := 8; i < n-8; i++ {
		if sym.Dark(i, 6) != (i%2 == 0) || sym.Dark(6, i) != (i%2 == 0) {
			t.Fatalf("timing pattern broken at %d", i)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	contents := []string{
		"hello",
		"HELLO WORLD",
		"0123456789012345",
		"café crème",
		"日本語のテキスト",
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20),
	}
	dec := decoder.New()
	for _, content := range contents {
		for _, level := range qrstudio.ECLevels {
			for _, m := range []qrstudio.MaskPattern{qrstudio.AutoMask, qrstudio.Mask(0), qrstudio.Mask(5)} {
				sym, err := Encode(content, level, m)
				if err != nil {
					t.Fatalf("Encode(%.20q, %v, %v): %v", content, level, m, err)
				}
				res, err := dec.Decode(sym.Bits())
				if err != nil {
					t.Fatalf("Decode(%.20q, %v, %v): %v", content, level, m, err)
				}
				if res.Text != content {
					t.Errorf("round trip %.20q at %v: got %.20q", content, level, res.Text)
				}
				if res.Level != level || res.Mask != sym.Mask || res.Version != sym.Version.Number {
					t.Errorf("%.20q: decoded %v/%d/v%d, encoded %v/%d/v%d",
						content, res.Level, res.Mask, res.Version, level, sym.Mask, sym.Version.Number)
				}
			}
		}
	}
}

func TestDecodeCorrectsDamage(t *testing.T) {
	sym, err := Encode("error correction survives damage", qrstudio.ECLevelH, qrstudio.Mask(3))
	if err != nil {
		t.Fatal(err)
	}
	bits := sym.Bits()
	// Flip a handful of modules in the data area, away from function patterns.
	for _, c := range [][2]int{{12, 12}, {13, 14}, {15, 11}, {11, 16}} {
		bits.Flip(c[0], c[1])
	}
	res, err := decoder.New().Decode(bits)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "error correction survives damage" {
		t.Errorf("text = %q", res.Text)
	}
	if res.ErrorsCorrected == 0 {
		t.Error("expected corrected codewords")
	}
}

func TestDecodeTransposed(t *testing.T) {
	sym, err := Encode("mirror me", qrstudio.ECLevelM, qrstudio.AutoMask)
	if err != nil {
		t.Fatal(err)
	}
	bits := sym.Bits()
	n := bits.Width()
	for x := 0; x < n; x++ {
		for y := x + 1; y < n; y++ {
			if bits.Get(x, y) != bits.Get(y, x) {
				bits.Flip(x, y)
				bits.Flip(y, x)
			}
		}
	}
	res, err := decoder.New().Decode(bits)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "mirror me" || !res.Mirrored {
		t.Errorf("text %q mirrored %v", res.Text, res.Mirrored)
	}
}
