package renderer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status classifies the outcome of an element lookup.
type Status int

const (
	Absent Status = iota // no matching element, or an empty value
	Found
	Failed // the renderer returned an error
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Failed:
		return "failed"
	default:
		return "absent"
	}
}

// Lookup is the typed result of reading text or an attribute from the page.
type Lookup struct {
	Value  string
	Status Status
	Err    error
}

// FoundValue wraps v as a successful lookup, or [Absent] when v is empty.
func FoundValue(v string) Lookup {
	if v == "" {
		return Lookup{Status: Absent}
	}
	return Lookup{Value: v, Status: Found}
}

// Failure wraps a renderer error.
func Failure(err error) Lookup {
	return Lookup{Status: Failed, Err: err}
}

// Ok reports whether a value was found.
func (l Lookup) Ok() bool { return l.Status == Found }

// Page is one navigable tab. Every lookup is optional: absence is reported, not raised.
type Page interface {
	Goto(url string, timeout time.Duration) error
	Reload(timeout time.Duration) error
	Content() (string, error)

	Count(selector string) (int, error)
	Attribute(selector string, nth int, name string) Lookup
	Text(selector string, nth int) Lookup
	// Evaluate runs script in the page. A function expression receives arg.
	Evaluate(script string, arg any) (any, error)

	WaitVisible(selector string, timeout time.Duration) error
	WaitHidden(selector string, timeout time.Duration) error
	Click(selector string, timeout time.Duration) error
	Press(key string) error
	Wheel(dx, dy float64) error
	Wait(d time.Duration)
	BringToFront() error

	Close() error
}

// Browser hands out pages. Closing the browser releases every page it opened.
type Browser interface {
	// NewPage opens the main page context used for the playlist.
	NewPage() (Page, error)
	// Isolated opens a page in a fresh context, for one-off detail fetches.
	Isolated() (Page, error)
	Close() error
}

// Decode converts the structured result of [Page.Evaluate] into out.
func Decode(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode evaluation result: %w", err)
	}
	return nil
}

// CountOr returns the element count for selector, or 0 when the lookup fails.
func CountOr(p Page, selector string) int {
	n, err := p.Count(selector)
	if err != nil {
		return 0
	}
	return n
}
