// Package locator synthesizes durable XPath locators for html elements
// and resolves them back against a document.
//
// Synthesis runs a fixed chain of strategies, most stable first, and the
// first strategy that produces a locator wins:
//
//	text      //button[normalize-space(.)="Sign in"]
//	attribute //input[@placeholder="Email"], //*[@id="email"]
//	anchor    a short labelled element next to the target
//	position  /html[1]/body[1]/div[2]/button[1]
//
// The positional path is the last resort since it breaks as soon as the
// page structure changes.
package locator

import (
	"fmt"
	"strings"

	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/utils"
)

// Kind identifies the strategy that produced a locator.
type Kind string

const (
	KindText       Kind = "text"
	KindAttribute  Kind = "attribute"
	KindAnchor     Kind = "anchor"
	KindPositional Kind = "positional"
)

const (
	// MaxTextLen is the exclusive upper bound on the length of text
	// that is embedded into a locator.
	MaxTextLen = 50
	// anchorDepth is the number of ancestor levels searched for an anchor.
	anchorDepth = 2
)

// attributes that are stable enough to locate an element by, in priority order.
var stableAttrs = []string{"placeholder", "aria-label", "title", "id"}

// anchorTags are the tags considered when looking for a labelled neighbour.
var anchorTags = map[string]bool{
	"a":      true,
	"button": true,
	"span":   true,
	"label":  true,
	"div":    true,
}

// A Strategy produces a locator for an element or reports that it can't.
type Strategy struct {
	Kind   Kind
	Locate func(e dom.Element) (string, bool)
}

// Chain is the ordered list of strategies used by Synthesize.
var Chain = []Strategy{
	{Kind: KindText, Locate: ByText},
	{Kind: KindAttribute, Locate: ByAttribute},
	{Kind: KindAnchor, Locate: ByAnchor},
	{Kind: KindPositional, Locate: ByPosition},
}

// Result is a synthesized locator together with the strategy that produced it.
type Result struct {
	Kind    Kind
	Locator string
}

// Synthesize returns a locator for e. It returns an empty string only
// if e is not a valid element.
func Synthesize(e dom.Element) string {
	return SynthesizeResult(e).Locator
}

// SynthesizeResult is like Synthesize but also reports which strategy fired.
func SynthesizeResult(e dom.Element) Result {
	if !e.Valid() {
		return Result{}
	}
	for _, s := range Chain {
		if loc, ok := s.Locate(e); ok {
			return Result{Kind: s.Kind, Locator: loc}
		}
	}
	return Result{}
}

// ByText locates e by its tag and its whitespace-normalized text.
func ByText(e dom.Element) (string, bool) {
	text := e.Text()
	if text == "" || utils.RuneLen(text) >= MaxTextLen {
		return "", false
	}
	return textLocator(e.Tag(), text), true
}

// ByAttribute locates e by the first stable attribute it carries.
// An id is unique per document so the tag is dropped in that case.
func ByAttribute(e dom.Element) (string, bool) {
	for _, attr := range stableAttrs {
		v := e.Attr(attr)
		if v == "" {
			continue
		}
		if attr == "id" {
			return fmt.Sprintf("//*[@id=%s]", Literal(v)), true
		}
		return fmt.Sprintf("//%s[@%s=%s]", e.Tag(), attr, Literal(v)), true
	}
	return "", false
}

// ByAnchor looks for a short labelled element among the children of
// e's parent and grandparent and locates that one instead. Icon-only
// controls are frequently placed right next to such a label.
func ByAnchor(e dom.Element) (string, bool) {
	current := e
	for i := 0; i < anchorDepth; i++ {
		current = current.Parent()
		if !current.Valid() {
			return "", false
		}
		for _, child := range current.Children() {
			if !anchorTags[child.Tag()] {
				continue
			}
			text := child.Text()
			if text != "" && utils.RuneLen(text) < MaxTextLen {
				return textLocator(child.Tag(), text), true
			}
		}
	}
	return "", false
}

// ByPosition builds the absolute path from the root element to e where
// each step carries the position among siblings with the same tag.
func ByPosition(e dom.Element) (string, bool) {
	if !e.Valid() {
		return "", false
	}
	var steps []string
	for c := e; c.Valid(); c = c.Parent() {
		steps = append(steps, fmt.Sprintf("%s[%d]", c.Tag(), c.Position()))
	}
	var sb strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(steps[i])
	}
	return sb.String(), true
}

func textLocator(tag, text string) string {
	return fmt.Sprintf("//%s[normalize-space(.)=%s]", tag, Literal(text))
}

// Literal quotes s as an XPath string literal. XPath 1.0 has no escape
// sequences so strings containing both quote characters are built with concat().
func Literal(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	args := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			args = append(args, `'"'`)
		}
		if p != "" {
			args = append(args, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}
