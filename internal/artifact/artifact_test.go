package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jakopako/pomgen/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `{"actions": [{"type": "click", "xpath": "//a", "name": "xpathA", "sequence": 1}], "visitedPages": ["https://x"], "testName": "login"}`, false},
		{"empty actions", `{"actions": []}`, false},
		{"actions missing", `{"visitedPages": []}`, true},
		{"actions is an object", `{"actions": {"type": "click"}}`, true},
		{"actions is a string", `{"actions": "[]"}`, true},
		{"actions is null", `{"actions": null}`, true},
		{"not json", `actions: []`, true},
		{"top level array", `[{"type": "click"}]`, true},
		{"unknown kind", `{"actions": [{"type": "hover", "xpath": "//a"}]}`, true},
		{"empty xpath", `{"actions": [{"type": "click", "xpath": ""}]}`, true},
		{"duplicate sequence", `{"actions": [{"type": "click", "xpath": "//a", "sequence": 3}, {"type": "click", "xpath": "//b", "sequence": 3}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidArtifact), "error should wrap ErrInvalidArtifact: %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, e.Actions)
			assert.NotNil(t, e.VisitedPages)
		})
	}
}

func TestParseAssignsSequences(t *testing.T) {
	e, err := Parse([]byte(`{"actions": [
		{"type": "click", "xpath": "//a", "name": "a"},
		{"type": "input", "xpath": "//input", "name": "b", "value": "x"}
	]}`))
	require.NoError(t, err)
	require.Len(t, e.Actions, 2)
	assert.Equal(t, 1, e.Actions[0].Sequence)
	assert.Equal(t, 2, e.Actions[1].Sequence)
	assert.Equal(t, "x", e.Actions[1].Value)
}

func TestWriteAndRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drop")
	e := &types.Export{
		Actions: []types.Action{
			{Kind: types.ActionKindClick, Locator: `//a[normalize-space(.)="<Home>"]`, Name: "xpathHome", PageURL: "https://example.com/?a=1&b=2", Sequence: 1},
		},
		VisitedPages: []string{"https://example.com/?a=1&b=2"},
		TestName:     "smoke test",
	}

	path, err := Write(dir, "", e)
	require.NoError(t, err)
	assert.True(t, Matches(path, DefaultPrefix, Extension))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Home>", "html characters are kept as is")
	assert.Contains(t, string(data), "a=1&b=2")

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file is left behind")
}

func TestFilename(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "recordedActions-1700000000123.json", Filename("", ts))
	assert.Equal(t, "custom-1700000000123.json", Filename("custom", ts))
}

func TestMatches(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/tmp/recordedActions-1.json", true},
		{"recordedActions.json", true},
		{"/tmp/recordedActions-1.json.tmp", false},
		{"/tmp/other-1.json", false},
		{"/tmp/recordedActions-1.txt", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.path, DefaultPrefix, Extension); got != tt.expected {
			t.Errorf("Matches(%q) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArtifact))
	assert.True(t, strings.Contains(err.Error(), "nope.json"))
}
