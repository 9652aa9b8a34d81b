package output

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jakopako/pomgen/internal/codegen"
)

// FileWriter represents a writer that writes to a directory
type FileWriter struct {
	*WriterConfig
	logger *slog.Logger
}

// NewFileWriter returns a new FileWriter
func NewFileWriter(wc *WriterConfig) (*FileWriter, error) {
	if wc.FileDir == "" {
		return nil, errors.New("filedir needs to be specified for the FileWriter")
	}

	if err := os.MkdirAll(wc.FileDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", wc.FileDir, err)
	}

	return &FileWriter{
		WriterConfig: wc,
		logger:       slog.With(slog.String("writer", string(FILE_WRITER_TYPE))),
	}, nil
}

func (w *FileWriter) path(rel string) (string, error) {
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("refusing to write outside of %s: %s", w.FileDir, rel)
	}
	return filepath.Join(w.FileDir, rel), nil
}

func (w *FileWriter) Write(files []codegen.File) error {
	for _, f := range files {
		p, err := w.path(f.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
		if err := os.WriteFile(p, f.Content, 0644); err != nil {
			return fmt.Errorf("error while writing file %s: %w", p, err)
		}
		w.logger.Info(fmt.Sprintf("wrote file %s", p))
	}
	return nil
}

func (w *FileWriter) Clean(patterns []string) error {
	removed := 0
	for _, pattern := range patterns {
		p, err := w.path(pattern)
		if err != nil {
			return err
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			removed++
		}
	}
	w.logger.Info(fmt.Sprintf("removed %d previously generated files from %s", removed, w.FileDir))
	return nil
}
