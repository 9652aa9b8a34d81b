package naming

import (
	"context"

	"github.com/jakopako/pomgen/internal/types"
)

// Request describes an element whose name should be enriched.
type Request struct {
	Locator string `json:"xpath"`
	Tag     string `json:"tag"`
	Context string `json:"context"` // text surrounding the element
}

// A NameEnricher proposes a better name for a single element. An empty
// name or an error means the heuristic name is kept.
type NameEnricher interface {
	EnrichName(ctx context.Context, req Request) (string, error)
}

// A BatchEnricher proposes better names for a list of recorded actions.
// It returns actions of the same shape; an error means the original
// names are kept.
type BatchEnricher interface {
	EnrichNames(ctx context.Context, actions []types.Action) ([]types.Action, error)
}

// NoopEnricher never proposes anything.
type NoopEnricher struct{}

func (NoopEnricher) EnrichName(context.Context, Request) (string, error) {
	return "", nil
}

func (NoopEnricher) EnrichNames(_ context.Context, actions []types.Action) ([]types.Action, error) {
	return actions, nil
}
