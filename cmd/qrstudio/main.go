// Command qrstudio generates QR codes, scans them from pictures and lists
// the mask previews.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/export"
	"github.com/ericlevine/qrstudio/internal/config"
	"github.com/ericlevine/qrstudio/mask"
	"github.com/ericlevine/qrstudio/options"
	"github.com/ericlevine/qrstudio/overlay"
	"github.com/ericlevine/qrstudio/qrcode"
	"github.com/ericlevine/qrstudio/scan"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: qrstudio <command> [flags] [args]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  encode  write a QR code for text as PNG or SVG\n")
	fmt.Fprintf(os.Stderr, "  scan    decode QR codes in image files\n")
	fmt.Fprintf(os.Stderr, "  masks   print or write the mask preview glyphs\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "scan":
		err = runScan(os.Args[2:])
	case "masks":
		err = runMasks(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "qrstudio: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file and installs its logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	qrstudio.SetLogger(logger)
	return cfg, nil
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file")
	ecl := fs.String("ecl", "", "error correction level: L, M, Q or H")
	maskFlag := fs.String("mask", "", "mask 0-7 or auto")
	scale := fs.Int("scale", 0, "pixels per module")
	opaque := fs.String("opaque", "", "white background: true or false")
	margin := fs.String("margin", "", "include the quiet zone: true or false")
	format := fs.String("format", "png", "output format: png or svg")
	out := fs.String("o", "", "output file, - for stdout (default <export dir>/qr-code.<format>)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qrstudio encode [flags] <text>|-\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	text, err := readText(fs.Args())
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	opts, err := cfg.EncodeOptions()
	if err != nil {
		return err
	}
	ctrl := options.New(qrcode.NewEncoder(), nil)
	if err := ctrl.SetOptions(opts); err != nil {
		return err
	}
	if *ecl != "" {
		level, err := qrstudio.ParseECLevel(*ecl)
		if err != nil {
			return err
		}
		if err := ctrl.SetECLevel(level); err != nil {
			return err
		}
	}
	if *maskFlag != "" {
		m, err := qrstudio.ParseMask(*maskFlag)
		if err != nil {
			return err
		}
		if err := ctrl.SetMask(m); err != nil {
			return err
		}
	}
	if *scale != 0 {
		if err := ctrl.SetPixelScale(*scale); err != nil {
			return err
		}
	}
	if err := boolFlag(*opaque, ctrl.SetOpaque); err != nil {
		return err
	}
	if err := boolFlag(*margin, ctrl.SetMargin); err != nil {
		return err
	}
	ctrl.SetText(text)

	res := ctrl.Result()
	if !res.OK() {
		if msg := options.Message(res); msg != "" {
			return fmt.Errorf("%s (%v)", msg, res.Err)
		}
		return res.Err
	}

	ctx := context.Background()
	blob, err := export.New(qrcode.NewEncoder()).Render(ctx, f, ctrl.Text(), ctrl.Options())
	if err != nil {
		return err
	}
	var sink export.Sink
	switch *out {
	case "-":
		sink = export.WriterSink{W: os.Stdout}
	case "":
		sink = export.DirSink{Dir: cfg.Export.Dir}
		*out = filepath.Join(cfg.Export.Dir, blob.Filename)
	default:
		sink = export.FileSink{Path: *out}
	}
	if err := sink.Save(ctx, blob); err != nil {
		return err
	}

	maskNote := ""
	if _, ok := ctrl.ActualMaskUsed(res); ok {
		maskNote = " (in use)"
	}
	if *out != "-" {
		fmt.Fprintf(os.Stderr, "wrote %s: %dx%d modules, level %s, mask %d%s\n",
			*out, res.Matrix.Size(), res.Matrix.Size(), ctrl.Options().ECLevel, res.Mask, maskNote)
	}
	return nil
}

func boolFlag(v string, set func(bool)) error {
	if v == "" {
		return nil
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		set(true)
	case "false", "0", "no", "off":
		set(false)
	default:
		return fmt.Errorf("invalid boolean %q", v)
	}
	return nil
}

func readText(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file")
	verbose := fs.Bool("v", false, "print corners, outline and link")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qrstudio scan [flags] <image-file> [image-file...]\n\n")
		fmt.Fprintf(os.Stderr, "Decode unrotated QR codes in PNG, JPEG, GIF, BMP, TIFF or WebP files.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	failed := 0
	scanner := qrcode.NewScanner()
	for _, path := range fs.Args() {
		st, ov, err := scanFile(scanner, cfg, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", path, err)
			failed++
			continue
		}
		if st.Kind != scan.Found {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, st.Status())
			failed++
			continue
		}
		if fs.NArg() > 1 {
			fmt.Printf("%s: ", path)
		}
		fmt.Println(st.Result.Text)
		if *verbose {
			for i, c := range st.Result.Corners {
				fmt.Printf("  corner %d: %g,%g\n", i, c.X, c.Y)
			}
			fmt.Printf("  outline: %s\n", ov.Outline)
			if link, ok := scan.LinkTarget(st.Result.Text); ok {
				fmt.Printf("  link: %s\n", link)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files had no result", failed, fs.NArg())
	}
	return nil
}

// scanFile recovers from panics that decoders may raise on malformed input,
// converting them to errors.
func scanFile(scanner *qrcode.Scanner, cfg *config.Config, path string) (st scan.State, ov overlay.Overlay, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	f, err := os.Open(path)
	if err != nil {
		return st, ov, err
	}
	defer f.Close()
	img, _, err := scan.DecodeImage(f, cfg.Scan.MaxPixels)
	if err != nil {
		return st, ov, err
	}
	sess := scan.New(scanner, nil, scan.Config{PreferredCamera: cfg.Scan.PreferredCamera})
	st = sess.ScanImage(context.Background(), img)
	return st, sess.Overlay(), nil
}

func runMasks(args []string) error {
	fs := flag.NewFlagSet("masks", flag.ExitOnError)
	dir := fs.String("dir", "", "write mask-<n>.svg files into this directory")
	cell := fs.Int("png", 0, "also write mask-<n>.png with this many pixels per cell")
	fs.Parse(args)

	for _, g := range mask.Glyphs() {
		if *dir == "" {
			fmt.Printf("%d %s\n", g.Mask, g.Path)
			continue
		}
		base := filepath.Join(*dir, fmt.Sprintf("mask-%d", g.Mask))
		if err := os.WriteFile(base+".svg", []byte(g.SVG()), 0o644); err != nil {
			return err
		}
		if *cell > 0 {
			if err := writeGlyphPNG(g, *cell, base+".png"); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeGlyphPNG(g mask.Glyph, cell int, path string) error {
	img, err := mask.Rasterize(g, cell)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
