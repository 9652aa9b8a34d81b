package dom

import (
	"strings"
	"testing"
)

const testPage = `<html><head><title>t</title><script>var x = 1;</script></head>
<body>
  <form id="login">
    <label for="email">E-Mail address</label>
    <input id="email" type="text" placeholder="Email">
    <label>Password <input id="pw" type="password"></label>
    <button type="submit">  Sign
      in </button>
  </form>
  <section><p>first</p><p>second</p><div>x</div><p>third</p></section>
  <div><span>plain</span><style>.a{}</style></div>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("unexpected error parsing html: %v", err)
	}
	return doc
}

func mustFirst(t *testing.T, doc *Document, selector string) Element {
	t.Helper()
	e, ok := doc.First(selector)
	if !ok {
		t.Fatalf("no element found for selector %q", selector)
	}
	return e
}

func TestElementText(t *testing.T) {
	doc := mustParse(t, testPage)
	tests := []struct {
		selector string
		expected string
	}{
		{"button", "Sign in"},
		{"input#email", ""},
		{"section", "first second x third"},
		{"body > div", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got := mustFirst(t, doc, tt.selector).Text()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestElementPosition(t *testing.T) {
	doc := mustParse(t, testPage)
	ps := doc.Find("section > p")
	if len(ps) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(ps))
	}
	for i, p := range ps {
		if p.Position() != i+1 {
			t.Errorf("paragraph %d: expected position %d, got %d", i, i+1, p.Position())
		}
	}
	if div := mustFirst(t, doc, "section > div"); div.Position() != 1 {
		t.Errorf("expected div position 1, got %d", div.Position())
	}
}

func TestElementLabelText(t *testing.T) {
	doc := mustParse(t, testPage)
	tests := []struct {
		name     string
		selector string
		expected string
	}{
		{"label referencing id", "#email", "E-Mail address"},
		{"enclosing label", "#pw", "Password"},
		{"no label", "button", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustFirst(t, doc, tt.selector).LabelText()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestElementContextText(t *testing.T) {
	doc := mustParse(t, testPage)

	button := mustFirst(t, doc, "button")
	if got := button.ContextText(1000); got != "E-Mail address Password Sign in" {
		t.Errorf("unexpected form context %q", got)
	}
	if got := button.ContextText(6); got != "E-Mail" {
		t.Errorf("expected truncated context, got %q", got)
	}

	span := mustFirst(t, doc, "span")
	if got := span.ContextText(1000); got != "plain" {
		t.Errorf("expected parent context, got %q", got)
	}
}

func TestElementNavigation(t *testing.T) {
	doc := mustParse(t, testPage)
	input := mustFirst(t, doc, "#email")

	if input.Tag() != "input" {
		t.Errorf("expected tag input, got %s", input.Tag())
	}
	if input.Attr("placeholder") != "Email" {
		t.Errorf("expected placeholder Email, got %q", input.Attr("placeholder"))
	}
	if input.Attr("missing") != "" {
		t.Errorf("expected empty value for missing attribute")
	}
	if form := input.Closest("form"); !form.Valid() || form.Attr("id") != "login" {
		t.Errorf("expected closest form #login")
	}
	if input.Closest("table").Valid() {
		t.Errorf("expected no closest table")
	}
	if input.Parent().Tag() != "form" {
		t.Errorf("expected parent form, got %s", input.Parent().Tag())
	}
	if n := len(input.Parent().Children()); n != 4 {
		t.Errorf("expected 4 form children, got %d", n)
	}
	if !strings.HasPrefix(input.OuterHTML(), "<input") {
		t.Errorf("unexpected outer html %q", input.OuterHTML())
	}

	var invalid Element
	if invalid.Valid() || invalid.Tag() != "" || invalid.Text() != "" || invalid.Parent().Valid() {
		t.Errorf("zero element should be invalid and empty")
	}
}
