package fetch

import (
	"context"
	"errors"

	"github.com/jakopako/pomgen/internal/log"
)

// MockFetcher serves the pages configured in FetcherConfig.MockPages.
type MockFetcher struct {
	*FetcherConfig
	pagesMap map[string]string
}

func NewMockFetcher(fc *FetcherConfig) *MockFetcher {
	mf := &MockFetcher{
		FetcherConfig: fc,
		pagesMap:      map[string]string{},
	}
	for _, p := range fc.MockPages {
		mf.pagesMap[p.Url] = p.Content
	}
	return mf
}

func (m *MockFetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	if p, ok := m.pagesMap[urlStr]; ok {
		if log.Debug {
			writeHTMLToFile(ctx, urlStr, p, m.DebugDir)
		}
		return p, nil
	}

	return "", errors.New("page not found")
}

// To comply with the Fetcher interface
func (m *MockFetcher) Cancel() {}
