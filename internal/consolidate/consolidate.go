// Package consolidate collapses runs of input actions on the same
// field into their final value.
package consolidate

import (
	"slices"

	"github.com/jakopako/pomgen/internal/types"
)

type runKey struct {
	locator string
	name    string
	pageURL string
}

func keyOf(a types.Action) runKey {
	return runKey{locator: a.Locator, name: a.Name, pageURL: a.PageURL}
}

// Consolidate returns actions ordered by sequence with every run of
// consecutive input actions on the same field replaced by the last
// action of that run. Any other action ends a run, including a click
// on an unrelated element. A run takes the place of its last action.
// The input slice is not modified.
func Consolidate(actions []types.Action) []types.Action {
	sorted := slices.Clone(actions)
	slices.SortStableFunc(sorted, func(a, b types.Action) int {
		return a.Sequence - b.Sequence
	})

	result := make([]types.Action, 0, len(sorted))
	var (
		pending   types.Action
		inRun     bool
		pendingID runKey
	)
	flush := func() {
		if inRun {
			result = append(result, pending)
			inRun = false
		}
	}

	for _, a := range sorted {
		if a.Kind != types.ActionKindInput {
			flush()
			result = append(result, a)
			continue
		}
		if inRun && keyOf(a) != pendingID {
			flush()
		}
		pending, pendingID, inRun = a, keyOf(a), true
	}
	flush()
	return result
}
