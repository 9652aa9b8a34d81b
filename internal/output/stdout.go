package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jakopako/pomgen/internal/codegen"
)

// StdoutWriter represents a writer that writes to stdout
type StdoutWriter struct {
	out    io.Writer
	logger *slog.Logger
}

// NewStdoutWriter returns a new StdoutWriter
func NewStdoutWriter(wc *WriterConfig) *StdoutWriter {
	return &StdoutWriter{
		out:    os.Stdout,
		logger: slog.With(slog.String("writer", string(STDOUT_WRITER_TYPE))),
	}
}

// Write prints every file preceded by a header line with its path.
func (w *StdoutWriter) Write(files []codegen.File) error {
	for _, f := range files {
		if _, err := fmt.Fprintf(w.out, "// ==> %s\n%s\n", f.Path, f.Content); err != nil {
			return err
		}
	}
	return nil
}

// Clean is a no-op, there is nothing to remove on stdout.
func (w *StdoutWriter) Clean([]string) error {
	w.logger.Debug("nothing to clean on stdout")
	return nil
}
