// Package config handles configuration loading and validation for the
// qrstudio binaries.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ericlevine/qrstudio"
)

// Config holds the complete configuration.
type Config struct {
	// Encode holds the default encode options.
	Encode EncodeConfig `toml:"encode" json:"encode" yaml:"encode"`

	// Export holds the default export options.
	Export ExportConfig `toml:"export" json:"export" yaml:"export"`

	// Scan configures scanner sessions.
	Scan ScanConfig `toml:"scan" json:"scan" yaml:"scan"`

	// Server configures qrstudiod.
	Server ServerConfig `toml:"server" json:"server" yaml:"server"`

	// Log configures the binaries' slog handler.
	Log LogConfig `toml:"log" json:"log" yaml:"log"`
}

// EncodeConfig holds matrix options.
type EncodeConfig struct {
	// ECLevel is one of L, M, Q or H.
	ECLevel string `toml:"ec_level" json:"ec_level" yaml:"ec_level"`

	// Mask is "auto" or a mask index 0-7.
	Mask string `toml:"mask" json:"mask" yaml:"mask"`
}

// ExportConfig holds artifact options.
type ExportConfig struct {
	PixelScale int  `toml:"pixel_scale" json:"pixel_scale" yaml:"pixel_scale"`
	Opaque     bool `toml:"opaque" json:"opaque" yaml:"opaque"`
	Margin     bool `toml:"margin" json:"margin" yaml:"margin"`

	// Dir receives downloads from the CLI.
	Dir string `toml:"dir" json:"dir" yaml:"dir"`
}

// ScanConfig holds scanner session options.
type ScanConfig struct {
	// PreferredCamera is "user", "environment" or a device ID.
	PreferredCamera string `toml:"preferred_camera" json:"preferred_camera" yaml:"preferred_camera"`

	// MaxPixels bounds the declared size of decoded still pictures.
	MaxPixels int `toml:"max_pixels" json:"max_pixels" yaml:"max_pixels"`
}

// ServerConfig holds HTTP options.
type ServerConfig struct {
	Listen string `toml:"listen" json:"listen" yaml:"listen"`

	// MaxUploadBytes bounds scan request bodies.
	MaxUploadBytes int64 `toml:"max_upload_bytes" json:"max_upload_bytes" yaml:"max_upload_bytes"`

	// PairTTLSec expires idle pairing sessions. Zero disables expiry.
	PairTTLSec int `toml:"pair_ttl_sec" json:"pair_ttl_sec" yaml:"pair_ttl_sec"`
}

// LogConfig holds logging options.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Encode: EncodeConfig{
			ECLevel: "M",
			Mask:    "auto",
		},
		Export: ExportConfig{
			PixelScale: 10,
			Opaque:     true,
			Margin:     true,
			Dir:        ".",
		},
		Scan: ScanConfig{
			PreferredCamera: "environment",
			MaxPixels:       20_000_000,
		},
		Server: ServerConfig{
			Listen:         ":8080",
			MaxUploadBytes: 10 << 20,
			PairTTLSec:     3600,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// ApplyEnvOverrides applies environment variable overrides. Variables are
// prefixed with QRSTUDIO_. Unparsable numbers and booleans are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("QRSTUDIO_EC_LEVEL"); v != "" {
		c.Encode.ECLevel = v
	}
	if v := os.Getenv("QRSTUDIO_MASK"); v != "" {
		c.Encode.Mask = v
	}
	if v := os.Getenv("QRSTUDIO_PIXEL_SCALE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Export.PixelScale = n
		}
	}
	if v := os.Getenv("QRSTUDIO_OPAQUE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Export.Opaque = b
		}
	}
	if v := os.Getenv("QRSTUDIO_MARGIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Export.Margin = b
		}
	}
	if v := os.Getenv("QRSTUDIO_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv("QRSTUDIO_CAMERA"); v != "" {
		c.Scan.PreferredCamera = v
	}
	if v := os.Getenv("QRSTUDIO_SCAN_MAX_PIXELS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scan.MaxPixels = n
		}
	}
	if v := os.Getenv("QRSTUDIO_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("QRSTUDIO_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("QRSTUDIO_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("QRSTUDIO_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EncodeOptions converts the encode and export sections.
func (c *Config) EncodeOptions() (qrstudio.EncodeOptions, error) {
	level, err := qrstudio.ParseECLevel(c.Encode.ECLevel)
	if err != nil {
		return qrstudio.EncodeOptions{}, err
	}
	mask, err := qrstudio.ParseMask(c.Encode.Mask)
	if err != nil {
		return qrstudio.EncodeOptions{}, err
	}
	opts := qrstudio.EncodeOptions{
		ECLevel:    level,
		Mask:       mask,
		PixelScale: c.Export.PixelScale,
		Opaque:     c.Export.Opaque,
		Margin:     c.Export.Margin,
	}
	return opts, opts.Validate()
}

// level parses the log level.
func (l LogConfig) level() (slog.Level, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.ToLower(l.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return lv, nil
}

// NewLogger builds the logger described by l writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lv, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lv}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log format %q", l.Format)
}
