// Package artifact reads and writes session export artifacts, the json
// files handed over from the recorder to the generation pipeline.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jakopako/pomgen/internal/types"
)

// DefaultPrefix and Extension make up the names of artifacts
// written to the drop location.
const (
	DefaultPrefix = "recordedActions"
	Extension     = ".json"
)

// ErrInvalidArtifact is wrapped by every error returned from Parse.
var ErrInvalidArtifact = errors.New("invalid session artifact")

type rawExport struct {
	Actions      json.RawMessage `json:"actions"`
	VisitedPages []string        `json:"visitedPages"`
	TestName     string          `json:"testName"`
}

// Parse decodes and validates an artifact. The actions field has to
// be present and has to be an array. Actions without a sequence number
// (exports of older recorders) are numbered by their position.
func Parse(data []byte) (*types.Export, error) {
	var raw rawExport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	trimmed := bytes.TrimSpace(raw.Actions)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: actions needs to be an array", ErrInvalidArtifact)
	}
	var actions []types.Action
	if err := json.Unmarshal(trimmed, &actions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	sequenced := false
	for i, a := range actions {
		if !a.Kind.Valid() {
			return nil, fmt.Errorf("%w: action %d has unknown type '%s'", ErrInvalidArtifact, i, a.Kind)
		}
		if a.Locator == "" {
			return nil, fmt.Errorf("%w: action %d has an empty xpath", ErrInvalidArtifact, i)
		}
		if a.Sequence != 0 {
			sequenced = true
		}
	}
	if !sequenced {
		for i := range actions {
			actions[i].Sequence = i + 1
		}
	} else {
		seen := map[int]bool{}
		for i, a := range actions {
			if seen[a.Sequence] {
				return nil, fmt.Errorf("%w: action %d reuses sequence number %d", ErrInvalidArtifact, i, a.Sequence)
			}
			seen[a.Sequence] = true
		}
	}

	if raw.VisitedPages == nil {
		raw.VisitedPages = []string{}
	}
	return &types.Export{
		Actions:      actions,
		VisitedPages: raw.VisitedPages,
		TestName:     raw.TestName,
	}, nil
}

// ReadFile reads and parses the artifact at path.
func ReadFile(path string) (*types.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return Parse(data)
}

// Filename returns the name of an artifact written at t.
func Filename(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s-%d%s", prefix, t.UnixMilli(), Extension)
}

// Matches reports whether the file at path looks like an artifact
// with the given prefix and extension.
func Matches(path, prefix, ext string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ext)
}

// Write stores e in dir and returns the path of the new file. The
// file is written under a temporary name first and renamed once
// complete, so a watcher never picks up a partial artifact.
func Write(dir, prefix string, e *types.Export) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	// the recorder emits urls and xpaths, no need to escape html
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(e); err != nil {
		return "", err
	}

	finalPath := filepath.Join(dir, Filename(prefix, time.Now()))
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, buffer.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write temp: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	return finalPath, nil
}

// Exporter writes artifacts to a fixed drop location.
type Exporter struct {
	Dir    string
	Prefix string
}

func (x *Exporter) Export(e *types.Export) (string, error) {
	return Write(x.Dir, x.Prefix, e)
}
