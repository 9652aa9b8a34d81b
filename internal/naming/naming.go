// Package naming derives readable identifiers for recorded elements.
//
// Names come from a waterfall of element properties (visible text,
// placeholder, aria-label, title, associated label, id/name) and are
// turned into PascalCase identifiers prefixed with "xpath". Identifiers
// built from the last-resort fallback are prefixed with "xpathGenerated"
// so they stand out in generated code.
package naming

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/utils"
)

const (
	Prefix          = "xpath"
	GeneratedPrefix = Prefix + "Generated"
	ButtonSuffix    = "Button"
	InputSuffix     = "Input"

	// maxTextLen is the exclusive upper bound on visible text used as name source.
	maxTextLen = 100
	tokenLen   = 6
)

// Source identifies the element property a name was derived from.
type Source string

const (
	SourceText        Source = "text"
	SourcePlaceholder Source = "placeholder"
	SourceAriaLabel   Source = "aria-label"
	SourceTitle       Source = "title"
	SourceLabel       Source = "label"
	SourceFallback    Source = "fallback"
)

type rule struct {
	source Source
	name   func(e dom.Element) string
}

// the name waterfall, the first rule returning a non empty name wins
var rules = []rule{
	{SourceText, func(e dom.Element) string {
		text := e.Text()
		if utils.RuneLen(text) >= maxTextLen {
			return ""
		}
		return withSuffix(text, ButtonSuffix, e.Tag() == "button")
	}},
	{SourcePlaceholder, func(e dom.Element) string {
		return withSuffix(e.Attr("placeholder"), InputSuffix, true)
	}},
	{SourceAriaLabel, func(e dom.Element) string {
		return withSuffix(e.Attr("aria-label"), "", false)
	}},
	{SourceTitle, func(e dom.Element) string {
		return withSuffix(e.Attr("title"), "", false)
	}},
	{SourceLabel, func(e dom.Element) string {
		return withSuffix(e.LabelText(), InputSuffix, e.Tag() == "input")
	}},
}

// Token returns the random short token used when an element has
// nothing to derive a name from. It is a variable so tests can pin it.
var Token = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLen]
}

// Result is a synthesized raw name together with its source.
type Result struct {
	Source Source
	Name   string
}

// Synthesize returns the raw (unsanitized) name for e.
func Synthesize(e dom.Element) string {
	return SynthesizeResult(e).Name
}

// SynthesizeResult is like Synthesize but also reports the name's source.
func SynthesizeResult(e dom.Element) Result {
	for _, r := range rules {
		if n := r.name(e); n != "" {
			return Result{Source: r.source, Name: n}
		}
	}
	fallback := e.Attr("id")
	if PascalCase(fallback) == "" {
		fallback = e.Attr("name")
	}
	if PascalCase(fallback) == "" {
		fallback = Token()
	}
	return Result{Source: SourceFallback, Name: GeneratedPrefix + PascalCase(fallback)}
}

// Name returns the sanitized identifier for e.
func Name(e dom.Element) string {
	return Sanitize(Synthesize(e))
}

func withSuffix(s, suffix string, addSuffix bool) string {
	p := PascalCase(s)
	if p == "" {
		return ""
	}
	if addSuffix {
		p += suffix
	}
	return Prefix + p
}

// PascalCase treats every run of characters other than ASCII letters
// and digits as a word separator and capitalizes the first letter of
// each word. The rest of each word is left as is.
func PascalCase(s string) string {
	var sb strings.Builder
	upper := true
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Sanitize turns name into a valid bare identifier: whitespace and
// anything other than ASCII letters, digits and underscores is removed
// and a leading digit gets an underscore prefix.
func Sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r == '_' || (r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			sb.WriteRune(r)
		}
	}
	s := sb.String()
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}
