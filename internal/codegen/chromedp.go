package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"text/template"

	"github.com/jakopako/pomgen/internal/naming"
	"github.com/jakopako/pomgen/internal/types"
)

const chromedpLocatorsPath = "locators.go"

var chromedpFuncs = template.FuncMap{
	"quote":   strconv.Quote,
	"ident":   goIdent,
	"isClick": func(k types.ActionKind) bool { return k == types.ActionKindClick },
}

var chromedpLocators = template.Must(template.New("locators").Funcs(chromedpFuncs).Parse(
	`// Code generated by pomgen. DO NOT EDIT.

package {{.Package}}

// XPath locators of the recorded elements.
const (
{{- range .Table.Entries}}
	{{ident .Identifier}} = {{quote .Locator}}
{{- end}}
)
`))

var chromedpTest = template.Must(template.New("test").Funcs(chromedpFuncs).Parse(
	`// Code generated by pomgen. DO NOT EDIT.

package {{.Package}}

import (
	"context"
	"testing"

	"github.com/chromedp/chromedp"
)

// {{.Func}} replays the actions recorded on {{.Unit.PageURL}}.
func {{.Func}}(t *testing.T) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate({{quote .Unit.PageURL}}),
{{- range .Unit.Steps}}
{{- if isClick .Kind}}
		chromedp.Click({{ident .Identifier}}, chromedp.BySearch),
{{- else}}
		chromedp.SetValue({{ident .Identifier}}, {{quote .Value}}, chromedp.BySearch),
{{- end}}
{{- end}}
	)
	if err != nil {
		t.Fatal(err)
	}
}
`))

// ChromedpFormat renders the locator table as a Go const block and
// every unit as a Go test replaying the actions with chromedp.
type ChromedpFormat struct {
	Package string
}

func NewChromedpFormat(pkg string) (*ChromedpFormat, error) {
	if pkg == "" {
		pkg = "pages"
	}
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("'%s' is not a valid package name", pkg)
	}
	return &ChromedpFormat{Package: pkg}, nil
}

func (c *ChromedpFormat) Render(p *Plan) ([]File, error) {
	files := make([]File, 0, len(p.Units)+1)

	content, err := c.execute(chromedpLocators, map[string]any{
		"Package": c.Package,
		"Table":   p.Table,
	})
	if err != nil {
		return nil, err
	}
	files = append(files, File{Path: chromedpLocatorsPath, Content: content})

	for _, u := range p.Units {
		content, err := c.execute(chromedpTest, map[string]any{
			"Package": c.Package,
			"Func":    "Test" + naming.PascalCase(u.Name),
			"Unit":    u,
		})
		if err != nil {
			return nil, err
		}
		files = append(files, File{
			Path:    strings.ToLower(u.Name) + "_test.go",
			Content: content,
		})
	}
	return files, nil
}

func (c *ChromedpFormat) Patterns() []string {
	return []string{chromedpLocatorsPath, "*_test.go"}
}

func (c *ChromedpFormat) execute(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated invalid go code for %s: %w", t.Name(), err)
	}
	return src, nil
}

// goIdent makes sure id doesn't clash with a Go keyword.
func goIdent(id string) string {
	if token.IsKeyword(id) {
		return id + "_"
	}
	return id
}
