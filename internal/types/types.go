// Package types defines shared types used across the application.
package types

// ActionKind is the kind of a recorded user interaction
type ActionKind string

const (
	ActionKindClick ActionKind = "click"
	ActionKindInput ActionKind = "input"
)

// Valid reports whether k is one of the known action kinds.
func (k ActionKind) Valid() bool {
	return k == ActionKindClick || k == ActionKindInput
}

// Action represents a single user interaction with a webpage.
// The json field names are kept compatible with exports written
// by the browser extension (type, xpath, name, value, pageUrl).
type Action struct {
	Kind     ActionKind `json:"type" yaml:"type"`
	Locator  string     `json:"xpath" yaml:"xpath"`
	Name     string     `json:"name" yaml:"name"`
	Value    string     `json:"value,omitempty" yaml:"value,omitempty"` // only set for input actions
	PageURL  string     `json:"pageUrl,omitempty" yaml:"pageUrl,omitempty"`
	Sequence int        `json:"sequence" yaml:"sequence"`
}

// Session is an in-progress recording.
type Session struct {
	ID           string
	Actions      []Action
	VisitedPages []string
}

// Export is the portable form of a finished session. It is what gets
// written to the drop location and picked up by the watcher.
type Export struct {
	Actions      []Action `json:"actions"`
	VisitedPages []string `json:"visitedPages"`
	TestName     string   `json:"testName,omitempty"`
}

// UnknownPage is the page url used for actions that don't carry one.
const UnknownPage = "unknown"
