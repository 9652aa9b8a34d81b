package browser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `<html><head></head><body>
<form>
  <input type="text" placeholder="Email">
  <input type="password" placeholder="Password">
  <button type="submit">Sign in</button>
</form>
</body></html>`

type call struct {
	method string
	tag    string
	attr   string
	value  string
	url    string
}

type fakeTarget struct {
	calls []call
}

func (f *fakeTarget) Load(_ context.Context, pageURL string) {
	f.calls = append(f.calls, call{method: "load", url: pageURL})
}

func (f *fakeTarget) Navigate(_ context.Context, pageURL string) {
	f.calls = append(f.calls, call{method: "navigate", url: pageURL})
}

func (f *fakeTarget) Click(_ context.Context, el dom.Element, pageURL string) error {
	f.calls = append(f.calls, call{method: "click", tag: el.Tag(), url: pageURL})
	return nil
}

func (f *fakeTarget) Input(_ context.Context, el dom.Element, value, pageURL string) error {
	f.calls = append(f.calls, call{method: "input", tag: el.Tag(), attr: el.Attr("placeholder"), value: value, url: pageURL})
	return nil
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected call
	}{
		{
			name:     "load",
			event:    Event{Type: LOAD_EVENT_TYPE, URL: "https://example.com/login"},
			expected: call{method: "load", url: "https://example.com/login"},
		},
		{
			name:     "navigate",
			event:    Event{Type: NAVIGATE_EVENT_TYPE, URL: "https://example.com/#/home"},
			expected: call{method: "navigate", url: "https://example.com/#/home"},
		},
		{
			name:     "click",
			event:    Event{Type: CLICK_EVENT_TYPE, Path: "/html[1]/body[1]/form[1]/button[1]", URL: "https://example.com/login", HTML: snapshot},
			expected: call{method: "click", tag: "button", url: "https://example.com/login"},
		},
		{
			name:     "input",
			event:    Event{Type: INPUT_EVENT_TYPE, Path: "/html[1]/body[1]/form[1]/input[2]", Value: "secret", URL: "https://example.com/login", HTML: snapshot},
			expected: call{method: "input", tag: "input", attr: "Password", value: "secret", url: "https://example.com/login"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeTarget{}
			require.NoError(t, HandleEvent(context.Background(), f, tt.event))
			require.Len(t, f.calls, 1)
			assert.Equal(t, tt.expected, f.calls[0])
		})
	}
}

func TestHandleEventErrors(t *testing.T) {
	f := &fakeTarget{}
	ctx := context.Background()

	err := HandleEvent(ctx, f, Event{Type: CLICK_EVENT_TYPE, Path: "/html[1]/body[1]/nav[1]", HTML: snapshot})
	assert.True(t, errors.Is(err, locator.ErrNoElement))

	assert.Error(t, HandleEvent(ctx, f, Event{Type: CLICK_EVENT_TYPE, HTML: snapshot}))
	assert.Error(t, HandleEvent(ctx, f, Event{Type: "scroll"}))
	assert.Empty(t, f.calls)
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent(`{"type":"input","path":"/html[1]","value":"x","url":"https://example.com","html":"<html></html>"}`)
	require.NoError(t, err)
	assert.Equal(t, Event{Type: INPUT_EVENT_TYPE, Path: "/html[1]", Value: "x", URL: "https://example.com", HTML: "<html></html>"}, ev)

	_, err = ParseEvent("not json")
	assert.Error(t, err)
}

func TestSessionHandleForwardsEvents(t *testing.T) {
	f := &fakeTarget{}
	s := NewSession(&BrowserConfig{}, f)
	s.handle(context.Background(), `{"type":"load","url":"https://example.com"}`)
	s.handle(context.Background(), `{"type":"click","path":"/html[1]/body[1]/form[1]/button[1]","url":"https://example.com","html":`+jsonString(snapshot)+`}`)
	s.handle(context.Background(), `garbage`)
	require.Len(t, f.calls, 2)
	assert.Equal(t, "load", f.calls[0].method)
	assert.Equal(t, "click", f.calls[1].method)
}

func TestCaptureScript(t *testing.T) {
	assert.Contains(t, captureScript, "window."+bindingName+"(JSON.stringify(ev))")
	for _, typ := range []EventType{LOAD_EVENT_TYPE, NAVIGATE_EVENT_TYPE, CLICK_EVENT_TYPE, INPUT_EVENT_TYPE} {
		assert.True(t, strings.Contains(captureScript, "type: '"+string(typ)+"'"), typ)
	}
}

func TestAllocatorOptions(t *testing.T) {
	s := NewSession(&BrowserConfig{}, &fakeTarget{})
	base := len(s.allocatorOptions())
	s = NewSession(&BrowserConfig{UserAgent: "ua", ExecPath: "/usr/bin/chromium"}, &fakeTarget{})
	assert.Equal(t, base+2, len(s.allocatorOptions()))
}

func jsonString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
