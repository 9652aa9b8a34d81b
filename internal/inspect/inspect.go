// Package inspect previews the locators and names pomgen would
// synthesize for the interactive elements of a page and renders action
// logs as tables.
package inspect

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/locator"
	"github.com/jakopako/pomgen/internal/naming"
	"github.com/jakopako/pomgen/internal/types"
	"github.com/jakopako/pomgen/internal/utils"
	"github.com/olekukonko/tablewriter"
)

// DefaultSelector matches the elements a user typically interacts with.
const DefaultSelector = `button, a[href], input, select, textarea, [role="button"]`

// A Candidate is an element together with what would be recorded for it.
type Candidate struct {
	Tag        string
	Text       string
	Locator    string
	Kind       locator.Kind
	Identifier string
	Source     naming.Source
	// Matches is the number of elements the locator resolves to on the
	// page. Anything but 1 means the recorded test would be ambiguous.
	Matches int
}

// Ambiguous reports whether the locator doesn't single out the element.
func (c Candidate) Ambiguous() bool {
	return c.Matches != 1
}

// Inspect synthesizes locators and identifiers for all elements of doc
// matching the css selector.
func Inspect(doc *dom.Document, selector string) ([]Candidate, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	u := naming.NewUniquer()
	cands := []Candidate{}
	for _, e := range doc.Find(selector) {
		lr := locator.SynthesizeResult(e)
		if lr.Locator == "" {
			continue
		}
		nr := naming.SynthesizeResult(e)
		base := naming.Sanitize(nr.Name)
		if base == "" {
			base = naming.GeneratedPrefix
		}
		matches, err := locator.Resolve(doc.Root(), lr.Locator)
		if err != nil {
			return nil, err
		}
		cands = append(cands, Candidate{
			Tag:        e.Tag(),
			Text:       e.Text(),
			Locator:    lr.Locator,
			Kind:       lr.Kind,
			Identifier: u.Identifier(base),
			Source:     nr.Source,
			Matches:    len(matches),
		})
	}
	return cands, nil
}

// WriteCandidates renders cands as a table.
func WriteCandidates(w io.Writer, cands []Candidate) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Tag", "Text", "Identifier", "Source", "Strategy", "Locator", "Matches")
	ambiguous := 0
	for i, c := range cands {
		if c.Ambiguous() {
			ambiguous++
		}
		row := []string{
			strconv.Itoa(i + 1),
			c.Tag,
			utils.ShortenString(c.Text, 30),
			c.Identifier,
			string(c.Source),
			string(c.Kind),
			utils.ShortenString(c.Locator, 70),
			strconv.Itoa(c.Matches),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	table.Footer("", "", "", "", "", "", "ambiguous", strconv.Itoa(ambiguous))
	return table.Render()
}

// WriteActions renders an action log as a table.
func WriteActions(w io.Writer, actions []types.Action) error {
	table := tablewriter.NewWriter(w)
	table.Header("Seq", "Type", "Name", "Value", "Page", "Locator")
	for _, a := range actions {
		row := []string{
			strconv.Itoa(a.Sequence),
			string(a.Kind),
			a.Name,
			utils.ShortenString(a.Value, 20),
			utils.ShortenString(a.PageURL, 40),
			utils.ShortenString(a.Locator, 60),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	table.Footer("", "", "", "", "total", fmt.Sprintf("%d actions", len(actions)))
	return table.Render()
}
