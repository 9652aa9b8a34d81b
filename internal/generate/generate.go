// Package generate provides the generation pipeline: it reads a session
// artifact, consolidates its action log, renders locator table and
// replay scripts and writes them out.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jakopako/pomgen/internal/artifact"
	"github.com/jakopako/pomgen/internal/codegen"
	"github.com/jakopako/pomgen/internal/consolidate"
	"github.com/jakopako/pomgen/internal/log"
	"github.com/jakopako/pomgen/internal/output"
	"github.com/jakopako/pomgen/internal/types"
)

// A ReviewFunc gets to see the consolidated actions before code is
// generated and returns the ones to keep.
type ReviewFunc func(actions []types.Action) ([]types.Action, error)

// Pipeline turns action logs into generated files.
type Pipeline struct {
	format     codegen.Format
	writer     output.Writer
	archiveDir string
	clean      bool
	review     ReviewFunc
}

type Option func(*Pipeline)

// WithArchiveDir makes ProcessFile move consumed artifacts to dir.
func WithArchiveDir(dir string) Option {
	return func(p *Pipeline) { p.archiveDir = dir }
}

// WithClean removes previously generated files before writing.
func WithClean(clean bool) Option {
	return func(p *Pipeline) { p.clean = clean }
}

func WithReview(r ReviewFunc) Option {
	return func(p *Pipeline) { p.review = r }
}

func NewPipeline(format codegen.Format, writer output.Writer, opts ...Option) *Pipeline {
	p := &Pipeline{format: format, writer: writer}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewPipelineFromConfig creates the format and the writer described by
// the configuration and wires them into a Pipeline.
func NewPipelineFromConfig(wc *output.WriterConfig, cc *codegen.CodegenConfig, opts ...Option) (*Pipeline, error) {
	format, err := codegen.NewFormat(cc)
	if err != nil {
		return nil, err
	}
	writer, err := output.NewWriter(wc)
	if err != nil {
		return nil, err
	}
	return NewPipeline(format, writer, opts...), nil
}

// Generate consolidates actions, renders them and writes the result.
// label names the generated units, see codegen.BuildUnits.
func (p *Pipeline) Generate(ctx context.Context, actions []types.Action, label string) ([]codegen.File, error) {
	logger := log.LoggerFromContext(ctx)
	consolidated := consolidate.Consolidate(actions)
	logger.Debug(fmt.Sprintf("consolidated %d actions into %d", len(actions), len(consolidated)))

	if p.review != nil {
		var err error
		if consolidated, err = p.review(consolidated); err != nil {
			return nil, err
		}
	}

	files, err := codegen.Generate(p.format, consolidated, label)
	if err != nil {
		return nil, err
	}
	if p.clean {
		if err := p.writer.Clean(p.format.Patterns()); err != nil {
			return nil, err
		}
	}
	if err := p.writer.Write(files); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("generated %d files from %d actions", len(files), len(consolidated)))
	return files, nil
}

// ProcessFile runs the pipeline on the artifact at path and archives
// the artifact afterwards. An invalid artifact is reported without
// writing anything and stays where it is.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) error {
	logger := log.LoggerFromContext(ctx).With(slog.String("artifact", filepath.Base(path)))
	ctx = log.ContextWithLogger(ctx, logger)

	e, err := artifact.ReadFile(path)
	if err != nil {
		logger.Error(fmt.Sprintf("error processing %s: %v", path, err))
		return err
	}
	logger.Info(fmt.Sprintf("parsing %d actions recorded on %d pages", len(e.Actions), len(e.VisitedPages)))

	if _, err := p.Generate(ctx, e.Actions, e.TestName); err != nil {
		logger.Error(fmt.Sprintf("error generating code for %s: %v", path, err))
		return err
	}

	if p.archiveDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.archiveDir, err)
	}
	archivePath := filepath.Join(p.archiveDir, filepath.Base(path))
	if err := moveFile(path, archivePath); err != nil {
		logger.Error(fmt.Sprintf("failed to archive %s: %v", path, err))
		return err
	}
	logger.Info(fmt.Sprintf("moved artifact to %s", archivePath))
	return nil
}

// moveFile moves src to dst using os.Rename. If rename fails because
// src and dst are on different devices it falls back to copy + remove.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) || errno != syscall.EXDEV {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return err
	}
	return os.Remove(src)
}
