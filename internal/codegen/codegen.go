// Package codegen turns a consolidated action log into a locator table
// and one replay script per visited page, rendered in a pluggable
// output format.
package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jakopako/pomgen/internal/naming"
	"github.com/jakopako/pomgen/internal/types"
)

// Entry is a single identifier to locator mapping.
type Entry struct {
	Identifier string
	Locator    string
}

// LocatorTable maps unique identifiers to locators, in the order the
// identifiers were first seen.
type LocatorTable struct {
	Entries []Entry
	index   map[string]int
}

// Lookup returns the locator of identifier id.
func (t *LocatorTable) Lookup(id string) (string, bool) {
	i, found := t.index[id]
	if !found {
		return "", false
	}
	return t.Entries[i].Locator, true
}

func (t *LocatorTable) Len() int {
	return len(t.Entries)
}

// BuildTable applies the uniqueness rule to the names of actions and
// returns the resulting table together with the identifier of every
// action. The identifiers are index aligned with actions. If an
// identifier is already in the table, the first locator is kept.
func BuildTable(actions []types.Action) (*LocatorTable, []string) {
	t := &LocatorTable{index: map[string]int{}}
	ids := make([]string, len(actions))
	u := naming.NewUniquer()
	for i, a := range actions {
		base := naming.Sanitize(a.Name)
		if base == "" {
			base = naming.GeneratedPrefix
		}
		id := u.Identifier(base)
		ids[i] = id
		if _, found := t.index[id]; found {
			continue
		}
		t.index[id] = len(t.Entries)
		t.Entries = append(t.Entries, Entry{Identifier: id, Locator: a.Locator})
	}
	return t, ids
}

// Step is one replayable action together with the identifier of its
// element in the locator table.
type Step struct {
	Kind       types.ActionKind
	Identifier string
	Value      string
}

// Unit is the replay script of one page.
type Unit struct {
	Name    string
	PageURL string
	// Title is the human readable description of the unit.
	Title string
	Steps []Step
}

// Plan is everything a Format needs to render the generated files.
type Plan struct {
	Table *LocatorTable
	Units []Unit
}

var whitespace = regexp.MustCompile(`\s+`)

// unitName returns the name of the i-th (0-based) of n units.
func unitName(label string, i, n int) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Sprintf("Page%d", i+1)
	}
	name := whitespace.ReplaceAllString(label, "_")
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if n > 1 {
		name = fmt.Sprintf("%s_%d", name, i+1)
	}
	return name
}

// BuildUnits groups actions by page url. Groups are ordered by their
// first action and keep the order of their actions. Actions without a
// page url end up in the types.UnknownPage group.
func BuildUnits(actions []types.Action, ids []string, label string) []Unit {
	var order []string
	groups := map[string][]Step{}
	for i, a := range actions {
		url := a.PageURL
		if url == "" {
			url = types.UnknownPage
		}
		if _, found := groups[url]; !found {
			order = append(order, url)
		}
		groups[url] = append(groups[url], Step{Kind: a.Kind, Identifier: ids[i], Value: a.Value})
	}

	units := make([]Unit, 0, len(order))
	for i, url := range order {
		title := strings.TrimSpace(label)
		if title == "" {
			title = fmt.Sprintf("Recorded Test for %s", url)
		}
		units = append(units, Unit{
			Name:    unitName(label, i, len(order)),
			PageURL: url,
			Title:   title,
			Steps:   groups[url],
		})
	}
	return units
}

// Build creates the plan for an already consolidated action log.
func Build(actions []types.Action, label string) *Plan {
	table, ids := BuildTable(actions)
	return &Plan{
		Table: table,
		Units: BuildUnits(actions, ids, label),
	}
}

// File is a generated file. Path is relative to the output directory.
type File struct {
	Path    string
	Content []byte
}
