package testing

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/tracklift/internal/renderer"
)

// FakePage is a scriptable [renderer.Page]. Unset hooks behave like an empty page.
//
// Every call is appended to Calls as "method:arg" so tests can assert ordering.
type FakePage struct {
	mu sync.Mutex

	HTML    string
	GotoErr error

	// Visible holds selectors that WaitVisible and Click succeed on.
	Visible map[string]bool
	// Hidden holds selectors that WaitHidden succeeds on once clicked.
	Hidden map[string]bool
	// Counts returns the element count for a selector.
	Counts func(selector string) (int, error)
	// Attrs answers Attribute lookups.
	Attrs func(selector string, nth int, name string) renderer.Lookup
	// Texts returns a text lookup.
	Texts func(selector string, nth int) renderer.Lookup
	// Eval answers [renderer.Page.Evaluate].
	Eval func(script string, arg any) (any, error)

	Calls  []string
	Waited time.Duration
	Closed bool
}

func (p *FakePage) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, fmt.Sprintf(format, args...))
}

// Called counts recorded calls starting with prefix.
func (p *FakePage) Called(prefix string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (p *FakePage) Goto(url string, timeout time.Duration) error {
	p.record("goto:%s", url)
	return p.GotoErr
}

func (p *FakePage) Reload(timeout time.Duration) error {
	p.record("reload")
	return nil
}

func (p *FakePage) Content() (string, error) {
	p.record("content")
	return p.HTML, nil
}

func (p *FakePage) Count(selector string) (int, error) {
	p.record("count:%s", selector)
	if p.Counts == nil {
		return 0, nil
	}
	return p.Counts(selector)
}

func (p *FakePage) Attribute(selector string, nth int, name string) renderer.Lookup {
	p.record("attr:%s", selector)
	if p.Attrs == nil {
		return renderer.Lookup{Status: renderer.Absent}
	}
	return p.Attrs(selector, nth, name)
}

func (p *FakePage) Text(selector string, nth int) renderer.Lookup {
	p.record("text:%s", selector)
	if p.Texts == nil {
		return renderer.Lookup{Status: renderer.Absent}
	}
	return p.Texts(selector, nth)
}

func (p *FakePage) Evaluate(script string, arg any) (any, error) {
	p.record("eval")
	if p.Eval == nil {
		return nil, nil
	}
	return p.Eval(script, arg)
}

func (p *FakePage) WaitVisible(selector string, timeout time.Duration) error {
	p.record("visible:%s", selector)
	if p.Visible[selector] {
		return nil
	}
	return errors.New("timeout waiting for visible")
}

func (p *FakePage) WaitHidden(selector string, timeout time.Duration) error {
	p.record("hidden:%s", selector)
	if p.Hidden[selector] {
		return nil
	}
	return errors.New("timeout waiting for hidden")
}

func (p *FakePage) Click(selector string, timeout time.Duration) error {
	p.record("click:%s", selector)
	if p.Visible[selector] {
		return nil
	}
	return errors.New("element not clickable")
}

func (p *FakePage) Press(key string) error {
	p.record("press:%s", key)
	return nil
}

func (p *FakePage) Wheel(dx, dy float64) error {
	p.record("wheel:%.0f", dy)
	return nil
}

func (p *FakePage) Wait(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Waited += d
}

func (p *FakePage) BringToFront() error {
	p.record("front")
	return nil
}

func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// FakeBrowser serves Main from NewPage and a fresh page per Isolated call whose
// content comes from Details keyed by URL. URLs in DetailErrs fail navigation.
type FakeBrowser struct {
	Main       *FakePage
	Details    map[string]string
	DetailErrs map[string]error
	NewPageErr error

	Opened []*FakePage
	Closed bool
}

func (b *FakeBrowser) NewPage() (renderer.Page, error) {
	if b.NewPageErr != nil {
		return nil, b.NewPageErr
	}
	return b.Main, nil
}

func (b *FakeBrowser) Isolated() (renderer.Page, error) {
	page := &detailPage{FakePage: &FakePage{}, browser: b}
	b.Opened = append(b.Opened, page.FakePage)
	return page, nil
}

func (b *FakeBrowser) Close() error {
	b.Closed = true
	return nil
}

// AllClosed reports whether every isolated page was closed.
func (b *FakeBrowser) AllClosed() bool {
	for _, p := range b.Opened {
		if !p.Closed {
			return false
		}
	}
	return true
}

type detailPage struct {
	*FakePage
	browser *FakeBrowser
}

func (d *detailPage) Goto(url string, timeout time.Duration) error {
	d.record("goto:%s", url)
	if err := d.browser.DetailErrs[url]; err != nil {
		return err
	}
	d.HTML = d.browser.Details[url]
	return nil
}
