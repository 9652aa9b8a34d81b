package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/locator"
)

// EventType is the type of an event reported by the capture script.
type EventType string

const (
	LOAD_EVENT_TYPE     EventType = "load"
	NAVIGATE_EVENT_TYPE EventType = "navigate"
	CLICK_EVENT_TYPE    EventType = "click"
	INPUT_EVENT_TYPE    EventType = "input"
)

// An Event is what the capture script sends for every user interaction
// and page transition. For clicks and inputs Path is the positional
// path of the target element in HTML, a snapshot of the document taken
// when the event fired.
type Event struct {
	Type  EventType `json:"type"`
	Path  string    `json:"path"`
	Value string    `json:"value"`
	URL   string    `json:"url"`
	HTML  string    `json:"html"`
}

// A Target receives the interactions observed in the browser. It is
// implemented by *recording.Recorder.
type Target interface {
	Load(ctx context.Context, pageURL string)
	Navigate(ctx context.Context, pageURL string)
	Click(ctx context.Context, el dom.Element, pageURL string) error
	Input(ctx context.Context, el dom.Element, value, pageURL string) error
}

// ParseEvent decodes a payload sent by the capture script.
func ParseEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("failed to decode event: %w", err)
	}
	return ev, nil
}

// HandleEvent forwards ev to t. The target element of clicks and inputs
// is looked up in the snapshot that came with the event.
func HandleEvent(ctx context.Context, t Target, ev Event) error {
	switch ev.Type {
	case LOAD_EVENT_TYPE:
		t.Load(ctx, ev.URL)
		return nil
	case NAVIGATE_EVENT_TYPE:
		t.Navigate(ctx, ev.URL)
		return nil
	case CLICK_EVENT_TYPE, INPUT_EVENT_TYPE:
		el, err := target(ev)
		if err != nil {
			return err
		}
		if ev.Type == CLICK_EVENT_TYPE {
			return t.Click(ctx, el, ev.URL)
		}
		return t.Input(ctx, el, ev.Value, ev.URL)
	default:
		return fmt.Errorf("event of type '%s' not implemented", ev.Type)
	}
}

func target(ev Event) (dom.Element, error) {
	if ev.Path == "" {
		return dom.Element{}, fmt.Errorf("%s event without a target", ev.Type)
	}
	doc, err := dom.ParseString(ev.HTML)
	if err != nil {
		return dom.Element{}, fmt.Errorf("failed to parse page snapshot: %w", err)
	}
	return locator.ResolveFirst(doc.Root(), ev.Path)
}
