package codegen

import (
	"fmt"

	"github.com/jakopako/pomgen/internal/types"
)

// A Format renders a plan into files of a specific test framework.
type Format interface {
	Render(p *Plan) ([]File, error)
	// Patterns returns glob patterns matching every file the format
	// may generate, relative to the output directory.
	Patterns() []string
}

// CodegenConfig defines which format the generated files are written in.
type CodegenConfig struct {
	Format FormatType `yaml:"format" env:"POMGEN_CODEGEN_FORMAT" env-default:"cypress"`
	// Package is the Go package name of files in the chromedp format.
	Package string `yaml:"package" env-default:"pages"`
}

// FormatType encapsulates the type of an output format
// See below constants for possible types
type FormatType string

const (
	CYPRESS_FORMAT_TYPE  FormatType = "cypress"
	CHROMEDP_FORMAT_TYPE FormatType = "chromedp"
)

// NewFormat returns a new format depending on the format type
func NewFormat(cc *CodegenConfig) (Format, error) {
	switch cc.Format {
	case "", CYPRESS_FORMAT_TYPE:
		return &CypressFormat{}, nil
	case CHROMEDP_FORMAT_TYPE:
		return NewChromedpFormat(cc.Package)
	default:
		return nil, fmt.Errorf("format of type '%s' not implemented", cc.Format)
	}
}

// Generate builds the plan for actions and renders it with f.
func Generate(f Format, actions []types.Action, label string) ([]File, error) {
	return f.Render(Build(actions, label))
}
