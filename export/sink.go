package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink delivers a blob to the user, as a download or a clipboard write.
type Sink interface {
	Save(ctx context.Context, b *Blob) error
}

// DirSink writes blobs into Dir under their suggested names.
type DirSink struct {
	Dir string
}

// Save implements Sink.
func (s DirSink) Save(ctx context.Context, b *Blob) error {
	return FileSink{Path: filepath.Join(s.Dir, b.Filename)}.Save(ctx, b)
}

// FileSink writes blobs to a fixed path.
type FileSink struct {
	Path string
}

// Save implements Sink.
func (s FileSink) Save(ctx context.Context, b *Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, b.Data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", s.Path, err)
	}
	return nil
}

// WriterSink copies blobs to W.
type WriterSink struct {
	W io.Writer
}

// Save implements Sink.
func (s WriterSink) Save(ctx context.Context, b *Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.W.Write(b.Data)
	return err
}
