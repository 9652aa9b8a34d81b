// Package dom provides a read-only view of the elements of an html
// document. It is the element model both synthesis engines work on.
package dom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jakopako/pomgen/internal/utils"
	"golang.org/x/net/html"
)

// Document is a parsed html page.
type Document struct {
	doc *goquery.Document
}

// Parse reads an html document from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// ParseString is like Parse but reads from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.doc.Get(0)
}

// Find returns all elements matching the css selector, in document order.
func (d *Document) Find(selector string) []Element {
	var elems []Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, Wrap(s.Get(0)))
	})
	return elems
}

// First returns the first element matching the css selector.
func (d *Document) First(selector string) (Element, bool) {
	s := d.doc.Find(selector).First()
	if s.Length() == 0 {
		return Element{}, false
	}
	return Wrap(s.Get(0)), true
}

// Element is an html element node. The zero value is not a valid element.
type Element struct {
	node *html.Node
}

// Wrap returns the Element for n. If n is not an element node the
// returned Element is invalid.
func Wrap(n *html.Node) Element {
	if n == nil || n.Type != html.ElementNode {
		return Element{}
	}
	return Element{node: n}
}

func (e Element) Valid() bool {
	return e.node != nil
}

func (e Element) Node() *html.Node {
	return e.node
}

// Tag returns the lowercase tag name.
func (e Element) Tag() string {
	if e.node == nil {
		return ""
	}
	return strings.ToLower(e.node.Data)
}

// Attr returns the trimmed value of the attribute with the given key
// or an empty string if it is not present.
func (e Element) Attr(key string) string {
	if e.node == nil {
		return ""
	}
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// Parent returns the parent element. It is invalid for the root element.
func (e Element) Parent() Element {
	if e.node == nil {
		return Element{}
	}
	return Wrap(e.node.Parent)
}

// Children returns the element children of e.
func (e Element) Children() []Element {
	if e.node == nil {
		return nil
	}
	var children []Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, Element{node: c})
		}
	}
	return children
}

// Position returns the 1-based index of e among its preceding element
// siblings that share its tag name.
func (e Element) Position() int {
	if e.node == nil {
		return 0
	}
	pos := 1
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && strings.EqualFold(s.Data, e.node.Data) {
			pos++
		}
	}
	return pos
}

// Closest returns e itself or its nearest ancestor with the given tag.
func (e Element) Closest(tag string) Element {
	for c := e; c.Valid(); c = c.Parent() {
		if c.Tag() == tag {
			return c
		}
	}
	return Element{}
}

// skipText lists elements whose content never shows up as text.
var skipText = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Text returns the visible text of e and its descendants with
// whitespace normalized.
func (e Element) Text() string {
	if e.node == nil {
		return ""
	}
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		case html.ElementNode:
			if skipText[strings.ToLower(n.Data)] {
				return
			}
			if strings.EqualFold(n.Data, "br") {
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(e.node)
	return utils.NormalizeSpace(sb.String())
}

// document returns a goquery document rooted at the top of e's tree.
func (e Element) document() *goquery.Document {
	root := e.node
	for root.Parent != nil {
		root = root.Parent
	}
	return goquery.NewDocumentFromNode(root)
}

// LabelText returns the text of the label associated with e, either
// through a label whose for attribute references e's id or through an
// enclosing label element.
func (e Element) LabelText() string {
	if e.node == nil {
		return ""
	}
	if id := e.Attr("id"); id != "" {
		label := e.document().Find("label").FilterFunction(func(_ int, s *goquery.Selection) bool {
			f, _ := s.Attr("for")
			return strings.TrimSpace(f) == id
		}).First()
		if label.Length() > 0 {
			if text := Wrap(label.Get(0)).Text(); text != "" {
				return text
			}
		}
	}
	if label := e.Closest("label"); label.Valid() {
		return label.Text()
	}
	return ""
}

// ContextText returns the text surrounding e: the text of the closest
// form, else the closest section, else the parent, cut after limit
// characters.
func (e Element) ContextText(limit int) string {
	if e.node == nil {
		return ""
	}
	container := e.Closest("form")
	if !container.Valid() {
		container = e.Closest("section")
	}
	if !container.Valid() {
		container = e.Parent()
	}
	if !container.Valid() {
		return ""
	}
	return utils.Truncate(container.Text(), limit)
}

// OuterHTML renders e back to html. Mostly useful for logging.
func (e Element) OuterHTML() string {
	if e.node == nil {
		return ""
	}
	s, err := goquery.OuterHtml(goquery.NewDocumentFromNode(e.node).Selection)
	if err != nil {
		return ""
	}
	return s
}
