// Package fetch provides fetchers that load the html of a page, either
// as served or as rendered by a browser.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jakopako/pomgen/internal/log"
)

// A Fetcher allows to fetch the content of a web page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	// Cancel releases resources held by the fetcher.
	Cancel()
}

// FetcherType encapsulates the type of a fetcher
// See below constants for possible types
type FetcherType string

const (
	STATIC_FETCHER_TYPE  FetcherType = "static"
	DYNAMIC_FETCHER_TYPE FetcherType = "dynamic"
	MOCK_FETCHER_TYPE    FetcherType = "mock"
)

// MockPage is a page served by the MockFetcher.
type MockPage struct {
	Url     string `yaml:"url"`
	Content string `yaml:"content"`
}

// FetcherConfig holds the fetcher section of the configuration.
type FetcherConfig struct {
	Type           FetcherType `yaml:"type" env:"POMGEN_FETCHER_TYPE" env-default:"static"`
	UserAgent      string      `yaml:"user_agent" env-default:"pomgen"`
	PageLoadWaitMS int         `yaml:"page_load_wait_ms"`
	// DebugDir is where fetched pages are dumped to in debug mode.
	DebugDir  string     `yaml:"debug_dir"`
	MockPages []MockPage `yaml:"mock_pages,omitempty"`
}

// NewFetcher returns a new fetcher depending on the fetcher type
func NewFetcher(fc *FetcherConfig) (Fetcher, error) {
	switch fc.Type {
	case "", STATIC_FETCHER_TYPE:
		return NewStaticFetcher(fc), nil
	case DYNAMIC_FETCHER_TYPE:
		return NewDynamicFetcher(fc), nil
	case MOCK_FETCHER_TYPE:
		return NewMockFetcher(fc), nil
	default:
		return nil, fmt.Errorf("fetcher of type '%s' not implemented", fc.Type)
	}
}

// writeHTMLToFile dumps a fetched page for debugging.
func writeHTMLToFile(ctx context.Context, urlStr, content, dir string) {
	logger := log.LoggerFromContext(ctx)
	if dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			logger.Warn(fmt.Sprintf("failed to create debug directory: %v", err))
			return
		}
	}
	host := "page"
	if u, err := url.Parse(urlStr); err == nil && u.Host != "" {
		host = u.Host
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.html", host, uuid.NewString()[:8]))
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		logger.Warn(fmt.Sprintf("failed to write html to file: %v", err))
		return
	}
	logger.Debug("wrote html to file", slog.String("file", filename))
}
