package naming

import (
	"github.com/agnivade/levenshtein"
	"github.com/jakopako/pomgen/internal/types"
)

// MergeNames applies the names proposed for the first limit actions
// back onto actions and returns the result as a new slice. Proposals
// are matched by position as long as the locator is unchanged, else by
// the closest locator among the enriched actions, since remote services
// sometimes slightly rewrite the locators they echo back. Proposals that
// can't be matched or that sanitize to an empty name are ignored.
// Actions beyond limit keep their names.
func MergeNames(actions, proposed []types.Action, limit int) []types.Action {
	merged := make([]types.Action, len(actions))
	copy(merged, actions)
	if limit <= 0 || limit > len(merged) {
		limit = len(merged)
	}
	for i, p := range proposed {
		name := Sanitize(p.Name)
		if name == "" {
			continue
		}
		j := i
		if j >= limit || merged[j].Locator != p.Locator {
			j = closestLocator(merged[:limit], p.Locator)
		}
		if j < 0 {
			continue
		}
		merged[j].Name = name
	}
	return merged
}

// closestLocator returns the index of the action whose locator is
// closest to loc, or -1 if none is close enough. A match needs to be
// within a quarter of the locator's length.
func closestLocator(actions []types.Action, loc string) int {
	if loc == "" {
		return -1
	}
	best, bestDist := -1, len(loc)/4+1
	for i, a := range actions {
		d := levenshtein.ComputeDistance(a.Locator, loc)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
