package codegen

import (
	"bytes"
	"path"
	"strings"
	"text/template"

	"github.com/jakopako/pomgen/internal/types"
)

const (
	cypressPageObjectsPath = "pageObjects/PageObjects.js"
	cypressTestDir         = "tests"
)

var cypressFuncs = template.FuncMap{
	"jsTemplate": jsTemplateLiteral,
	"jsString":   jsStringLiteral,
	"isClick":    func(k types.ActionKind) bool { return k == types.ActionKindClick },
}

var cypressPageObjects = template.Must(template.New("pageObjects").Funcs(cypressFuncs).Parse(
	`export default class PageObjects {
{{- range .Entries}}
  static {{.Identifier}} = {{jsTemplate .Locator}};
{{- end}}
}
`))

var cypressTest = template.Must(template.New("test").Funcs(cypressFuncs).Parse(
	`import PageObjects from '../pageObjects/PageObjects';

describe({{jsString .Title}}, () => {
  it({{jsString (print "should replay user actions on " .PageURL)}}, () => {
    cy.visit({{jsString .PageURL}});
{{- range .Steps}}
{{- if isClick .Kind}}
    cy.xpath(PageObjects.{{.Identifier}}).click();
{{- else if .Value}}
    cy.xpath(PageObjects.{{.Identifier}}).clear().type({{jsString .Value}});
{{- else}}
    cy.xpath(PageObjects.{{.Identifier}}).clear();
{{- end}}
{{- end}}
  });
});
`))

// CypressFormat renders a PageObjects class holding the locator table
// and one Cypress test file per unit. Locators are looked up with the
// cypress-xpath plugin.
type CypressFormat struct{}

func (CypressFormat) Render(p *Plan) ([]File, error) {
	files := make([]File, 0, len(p.Units)+1)

	var buf bytes.Buffer
	if err := cypressPageObjects.Execute(&buf, p.Table); err != nil {
		return nil, err
	}
	files = append(files, File{Path: cypressPageObjectsPath, Content: bytes.Clone(buf.Bytes())})

	for _, u := range p.Units {
		buf.Reset()
		if err := cypressTest.Execute(&buf, u); err != nil {
			return nil, err
		}
		files = append(files, File{
			Path:    path.Join(cypressTestDir, u.Name+".cy.js"),
			Content: bytes.Clone(buf.Bytes()),
		})
	}
	return files, nil
}

func (CypressFormat) Patterns() []string {
	return []string{cypressPageObjectsPath, path.Join(cypressTestDir, "*.cy.js")}
}

var templateLiteralEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)

// jsTemplateLiteral quotes s as a javascript template literal.
func jsTemplateLiteral(s string) string {
	return "`" + templateLiteralEscaper.Replace(s) + "`"
}

var stringLiteralEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// jsStringLiteral quotes s as a single quoted javascript string.
func jsStringLiteral(s string) string {
	return "'" + stringLiteralEscaper.Replace(s) + "'"
}
