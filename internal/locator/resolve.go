package locator

import (
	"errors"
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/jakopako/pomgen/internal/dom"
	"golang.org/x/net/html"
)

// ErrNoElement is returned when a locator doesn't match any element.
var ErrNoElement = errors.New("no element matches locator")

// Resolve evaluates locator against the tree rooted at root and returns
// all matching elements in document order.
func Resolve(root *html.Node, locator string) ([]dom.Element, error) {
	nodes, err := htmlquery.QueryAll(root, locator)
	if err != nil {
		return nil, fmt.Errorf("invalid locator %s: %w", locator, err)
	}
	elems := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		if e := dom.Wrap(n); e.Valid() {
			elems = append(elems, e)
		}
	}
	return elems, nil
}

// ResolveFirst returns the first element matching locator.
func ResolveFirst(root *html.Node, locator string) (dom.Element, error) {
	elems, err := Resolve(root, locator)
	if err != nil {
		return dom.Element{}, err
	}
	if len(elems) == 0 {
		return dom.Element{}, fmt.Errorf("%w: %s", ErrNoElement, locator)
	}
	return elems[0], nil
}
