// Package output provides the interface and configuration and implementation for writers
package output

import (
	"fmt"

	"github.com/jakopako/pomgen/internal/codegen"
)

// Writer defines the interface for all writers that are responsible
// for writing the generated files to a specific output.
type Writer interface {
	Write(files []codegen.File) error
	// Clean removes files written by an earlier run. patterns are glob
	// patterns relative to the output.
	Clean(patterns []string) error
}

// WriterConfig defines the necessary paramters to make a new writer
// which is responsible for writing the generated files to a specific output
// eg. stdout.
type WriterConfig struct {
	Type    WriterType `yaml:"type" env:"POMGEN_WRITER_TYPE" env-default:"file"`
	FileDir string     `yaml:"filedir" env:"POMGEN_WRITER_FILEDIR" env-default:"output"`
}

// WriterType encapsulates the type of a writer
// See below constants for possible types
type WriterType string

const (
	STDOUT_WRITER_TYPE WriterType = "stdout"
	FILE_WRITER_TYPE   WriterType = "file"
)

// NewWriter returns a new writer depending on the writer type
func NewWriter(wc *WriterConfig) (Writer, error) {
	switch wc.Type {
	case STDOUT_WRITER_TYPE:
		return NewStdoutWriter(wc), nil
	case FILE_WRITER_TYPE:
		return NewFileWriter(wc)
	default:
		return nil, fmt.Errorf("writer of type '%s' not implemented", wc.Type)
	}
}
