package config

import (
	"fmt"
	"strings"

	"github.com/ericlevine/qrstudio"
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is every invalid field of a configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig returns ValidationErrors listing every problem, or nil.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := qrstudio.ParseECLevel(c.Encode.ECLevel); err != nil {
		add("encode.ec_level", "must be one of L, M, Q, H (got %q)", c.Encode.ECLevel)
	}
	if _, err := qrstudio.ParseMask(c.Encode.Mask); err != nil {
		add("encode.mask", "must be auto or 0-7 (got %q)", c.Encode.Mask)
	}
	if c.Export.PixelScale < 1 {
		add("export.pixel_scale", "must be at least 1 (got %d)", c.Export.PixelScale)
	}
	if c.Scan.PreferredCamera == "" {
		add("scan.preferred_camera", "must not be empty")
	}
	if c.Scan.MaxPixels <= 0 {
		add("scan.max_pixels", "must be positive (got %d)", c.Scan.MaxPixels)
	}
	if c.Server.Listen == "" {
		add("server.listen", "must not be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		add("server.max_upload_bytes", "must be positive (got %d)", c.Server.MaxUploadBytes)
	}
	if c.Server.PairTTLSec < 0 {
		add("server.pair_ttl_sec", "must not be negative (got %d)", c.Server.PairTTLSec)
	}
	if _, err := c.Log.level(); err != nil {
		add("log.level", "must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		add("log.format", "must be text or json (got %q)", c.Log.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
