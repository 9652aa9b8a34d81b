package inspect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/locator"
	"github.com/jakopako/pomgen/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<nav><a href="/home">Home</a><a href="/about">About</a></nav>
<form>
  <input type="text" placeholder="Email">
  <button type="submit">Sign in</button>
</form>
<ul>
  <li><a href="/a">More</a></li>
  <li><a href="/b">More</a></li>
</ul>
<p>not interactive</p>
</body></html>`

func TestInspect(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	cands, err := Inspect(doc, "")
	require.NoError(t, err)
	require.Len(t, cands, 6)

	assert.Equal(t, "a", cands[0].Tag)
	assert.Equal(t, locator.KindText, cands[0].Kind)
	assert.False(t, cands[0].Ambiguous())

	assert.Equal(t, "input", cands[2].Tag)
	assert.Equal(t, locator.KindAttribute, cands[2].Kind)
	assert.Equal(t, `//input[@placeholder="Email"]`, cands[2].Locator)

	assert.Equal(t, "button", cands[3].Tag)
	assert.Equal(t, 1, cands[3].Matches)

	// the two "More" links share a text locator
	assert.Equal(t, cands[4].Locator, cands[5].Locator)
	assert.Equal(t, 2, cands[4].Matches)
	assert.True(t, cands[4].Ambiguous())
	assert.Equal(t, cands[4].Identifier+"_1", cands[5].Identifier)

	identifiers := map[string]bool{}
	for _, c := range cands {
		assert.False(t, identifiers[c.Identifier], "identifier %s is unique", c.Identifier)
		identifiers[c.Identifier] = true
	}
}

func TestInspectSelector(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	cands, err := Inspect(doc, "form *")
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "input", cands[0].Tag)
	assert.Equal(t, "button", cands[1].Tag)
}

func TestWriteCandidates(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCandidates(&buf, []Candidate{
		{Tag: "button", Text: "Sign in", Locator: `//button[normalize-space(.)="Sign in"]`, Kind: locator.KindText, Identifier: "xpathSignInButton", Matches: 1},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "xpathSignInButton")
	assert.Contains(t, out, "Sign in")
}

func TestWriteActions(t *testing.T) {
	var buf bytes.Buffer
	err := WriteActions(&buf, []types.Action{
		{Kind: types.ActionKindClick, Locator: "//a", Name: "xpathHome", PageURL: "https://example.com", Sequence: 1},
		{Kind: types.ActionKindInput, Locator: "//input", Name: "xpathEmailInput", Value: "me@example.com", PageURL: "https://example.com", Sequence: 2},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "xpathHome")
	assert.Contains(t, out, "me@example.com")
	assert.Contains(t, strings.ToLower(out), "2 actions")
}
