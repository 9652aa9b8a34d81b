package codegen

import (
	"strings"
	"testing"

	"github.com/jakopako/pomgen/internal/types"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	loginPage = "https://example.com/login"
	homePage  = "https://example.com/"
)

func scenario() []types.Action {
	return []types.Action{
		{Kind: types.ActionKindClick, Locator: `//button[normalize-space(.)="Sign in"]`, Name: "xpathSignInButton", PageURL: loginPage, Sequence: 1},
		{Kind: types.ActionKindInput, Locator: `//input[@placeholder="Email"]`, Name: "xpathEmailInput", Value: "it's me", PageURL: loginPage, Sequence: 2},
		{Kind: types.ActionKindClick, Locator: `//a[normalize-space(.)="Home"]`, Name: "xpathHome", PageURL: homePage, Sequence: 3},
		{Kind: types.ActionKindClick, Locator: `//a[normalize-space(.)="Home"]`, Name: "xpathHome", PageURL: homePage, Sequence: 4},
		{Kind: types.ActionKindClick, Locator: `//a[@title="Home"]`, Name: "xpathHome", Sequence: 5},
		{Kind: types.ActionKindInput, Locator: "//input[@placeholder=\"`${x}\"]", Name: "xpathSearchInput", Sequence: 6},
	}
}

func TestBuildTable(t *testing.T) {
	table, ids := BuildTable(scenario())

	assert.Equal(t, []string{"xpathSignInButton", "xpathEmailInput", "xpathHome", "xpathHome_1", "xpathHome_2", "xpathSearchInput"}, ids)
	require.Equal(t, 6, table.Len())

	loc, found := table.Lookup("xpathHome_1")
	assert.True(t, found)
	assert.Equal(t, `//a[normalize-space(.)="Home"]`, loc)

	loc, found = table.Lookup("xpathHome_2")
	assert.True(t, found)
	assert.Equal(t, `//a[@title="Home"]`, loc)

	_, found = table.Lookup("xpathHome_3")
	assert.False(t, found)
}

func TestBuildTableCollisions(t *testing.T) {
	actions := []types.Action{
		{Kind: types.ActionKindClick, Locator: "//a[1]", Name: "link"},
		{Kind: types.ActionKindClick, Locator: "//a[2]", Name: "link"},
		{Kind: types.ActionKindClick, Locator: "//a[3]", Name: "link"},
		{Kind: types.ActionKindClick, Locator: "//a[4]", Name: "link_1"},
		{Kind: types.ActionKindClick, Locator: "//a[5]", Name: "not valid!"},
		{Kind: types.ActionKindClick, Locator: "//a[6]", Name: ""},
	}
	table, ids := BuildTable(actions)

	assert.Equal(t, []string{"link", "link_1", "link_2", "link_1", "notvalid", "xpathGenerated"}, ids)
	// the second link_1 is dropped, the table keeps the first locator
	assert.Equal(t, len(actions)-1, table.Len())
	loc, found := table.Lookup("link_1")
	assert.True(t, found)
	assert.Equal(t, "//a[2]", loc)
	for _, e := range table.Entries {
		assert.NotEmpty(t, e.Identifier)
		assert.NotEmpty(t, e.Locator)
	}
}

func TestBuildUnits(t *testing.T) {
	actions := scenario()
	_, ids := BuildTable(actions)

	t.Run("grouped by page in first seen order", func(t *testing.T) {
		units := BuildUnits(actions, ids, "")
		require.Len(t, units, 3)

		assert.Equal(t, "Page1", units[0].Name)
		assert.Equal(t, loginPage, units[0].PageURL)
		assert.Len(t, units[0].Steps, 2)

		assert.Equal(t, "Page2", units[1].Name)
		assert.Equal(t, homePage, units[1].PageURL)

		assert.Equal(t, "Page3", units[2].Name)
		assert.Equal(t, types.UnknownPage, units[2].PageURL)
		assert.Equal(t, "Recorded Test for unknown", units[2].Title)
	})

	t.Run("label names the units", func(t *testing.T) {
		units := BuildUnits(actions, ids, " login  flow ")
		require.Len(t, units, 3)
		assert.Equal(t, "login_flow_1", units[0].Name)
		assert.Equal(t, "login_flow_3", units[2].Name)
		assert.Equal(t, "login  flow", units[0].Title)
	})

	t.Run("single unit keeps the label", func(t *testing.T) {
		units := BuildUnits(actions[:2], ids[:2], "login flow")
		require.Len(t, units, 1)
		assert.Equal(t, "login_flow", units[0].Name)
	})

	t.Run("path separators are replaced", func(t *testing.T) {
		units := BuildUnits(actions[:1], ids[:1], "a/b")
		assert.Equal(t, "a_b", units[0].Name)
	})
}

func TestTwoPagesTwoUnits(t *testing.T) {
	actions := []types.Action{
		{Kind: types.ActionKindClick, Locator: "//a", Name: "a", PageURL: "p1", Sequence: 1},
		{Kind: types.ActionKindClick, Locator: "//b", Name: "b", PageURL: "p2", Sequence: 2},
		{Kind: types.ActionKindClick, Locator: "//c", Name: "c", PageURL: "p1", Sequence: 3},
	}
	plan := Build(actions, "")
	require.Len(t, plan.Units, 2)
	assert.Equal(t, []Step{
		{Kind: types.ActionKindClick, Identifier: "a"},
		{Kind: types.ActionKindClick, Identifier: "c"},
	}, plan.Units[0].Steps)
	assert.Equal(t, []Step{
		{Kind: types.ActionKindClick, Identifier: "b"},
	}, plan.Units[1].Steps)
}

func TestCypressFormat(t *testing.T) {
	files, err := Generate(&CypressFormat{}, scenario(), "")
	require.NoError(t, err)
	require.Len(t, files, 4)

	assert.Equal(t, "pageObjects/PageObjects.js", files[0].Path)
	assert.Equal(t, "tests/Page1.cy.js", files[1].Path)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, f := range files {
		g.Assert(t, "cypress_"+strings.ReplaceAll(f.Path, "/", "_"), f.Content)
	}
}

func TestChromedpFormat(t *testing.T) {
	f, err := NewChromedpFormat("e2e")
	require.NoError(t, err)

	actions := append(scenario(), types.Action{
		Kind: types.ActionKindClick, Locator: "//button", Name: "func", PageURL: homePage, Sequence: 7,
	})
	files, err := Generate(f, actions, "smoke test")
	require.NoError(t, err)
	require.Len(t, files, 4)

	assert.Equal(t, "locators.go", files[0].Path)
	locators := string(files[0].Content)
	assert.Contains(t, locators, "package e2e")
	assert.Contains(t, locators, "xpathHome_1")
	assert.Contains(t, locators, "\"//input[@placeholder=\\\"`${x}\\\"]\"")
	assert.Contains(t, locators, "func_ ", "keywords are not used as identifiers")

	assert.Equal(t, "smoke_test_1_test.go", files[1].Path)
	test := string(files[1].Content)
	assert.Contains(t, test, "func TestSmokeTest1(t *testing.T) {")
	assert.Contains(t, test, `chromedp.Navigate("https://example.com/login"),`)
	assert.Contains(t, test, "chromedp.Click(xpathSignInButton, chromedp.BySearch),")
	assert.Contains(t, test, `chromedp.SetValue(xpathEmailInput, "it's me", chromedp.BySearch),`)

	assert.Contains(t, string(files[2].Content), "chromedp.Click(func_, chromedp.BySearch),")
}

func TestNewFormat(t *testing.T) {
	f, err := NewFormat(&CodegenConfig{})
	require.NoError(t, err)
	assert.IsType(t, &CypressFormat{}, f)

	f, err = NewFormat(&CodegenConfig{Format: CHROMEDP_FORMAT_TYPE})
	require.NoError(t, err)
	assert.Equal(t, "pages", f.(*ChromedpFormat).Package)

	_, err = NewFormat(&CodegenConfig{Format: CHROMEDP_FORMAT_TYPE, Package: "not-valid"})
	assert.Error(t, err)

	_, err = NewFormat(&CodegenConfig{Format: "playwright"})
	assert.Error(t, err)
}

func TestJSLiterals(t *testing.T) {
	assert.Equal(t, "`a\\`b\\${c}\\\\`", jsTemplateLiteral("a`b${c}\\"))
	assert.Equal(t, `'it\'s\n\\'`, jsStringLiteral("it's\n\\"))
}
