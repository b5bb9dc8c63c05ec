package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/renderer"
)

const (
	focusTimeout    = 2 * time.Second
	focusPause      = 500 * time.Millisecond
	keyboardPause   = 300 * time.Millisecond
	defaultStep     = 400
	defaultSettle   = 1500 * time.Millisecond
	defaultStagnant = 3
)

// findContainersJS lists scrollable elements with a selector that addresses each one.
const findContainersJS = `() => {
	const found = [];
	document.querySelectorAll('*').forEach((el) => {
		if (el.scrollHeight <= el.clientHeight) return;
		const style = window.getComputedStyle(el);
		const scrolls = (v) => v === 'scroll' || v === 'auto';
		if (!scrolls(style.overflowY) && !scrolls(style.overflow)) return;
		const cls = typeof el.className === 'string' ? el.className : '';
		let selector = el.tagName.toLowerCase();
		if (el.id) selector += '#' + CSS.escape(el.id);
		cls.split(/\s+/).filter(Boolean).forEach((c) => { selector += '.' + CSS.escape(c); });
		found.push({ className: cls, selector });
	});
	return found;
}`

// scrollContainerJS scrolls the element and reports whether its offset changed.
const scrollContainerJS = `({ selector, step }) => {
	const el = document.querySelector(selector);
	if (!el) return false;
	const before = el.scrollTop;
	el.scrollTop = before + step;
	return el.scrollTop !== before;
}`

const scrollWindowJS = `(step) => {
	const before = window.pageYOffset;
	window.scrollBy(0, step);
	return window.pageYOffset !== before;
}`

// ScrollOptions tunes a [Scroller].
type ScrollOptions struct {
	Step        int
	Settle      time.Duration
	MaxStagnant int
}

// ScrollResult summarizes one convergence session.
type ScrollResult struct {
	Count      int
	Iterations int
	Container  string
}

type containerCandidate struct {
	ClassName string `json:"className"`
	Selector  string `json:"selector"`
}

// scrollStrategy reports whether it moved the viewport.
type scrollStrategy struct {
	name   string
	scroll func() (bool, error)
}

// Scroller drives a lazily rendered list until its item count stops growing.
type Scroller struct {
	page      renderer.Page
	opts      ScrollOptions
	logger    *log.Logger
	container string
}

// NewScroller fills unset options with defaults.
func NewScroller(page renderer.Page, opts ScrollOptions, logger *log.Logger) *Scroller {
	if opts.Step <= 0 {
		opts.Step = defaultStep
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	if opts.MaxStagnant < 1 {
		opts.MaxStagnant = defaultStagnant
	}
	return &Scroller{page: page, opts: opts, logger: logger}
}

// Converge scrolls until the larger of the two track-count signals stops growing.
//
// Each iteration tries the scroll strategies in order and stops at the first that
// reports movement. Cancellation ends the session with the count observed so far.
func (s *Scroller) Converge(ctx context.Context) (ScrollResult, error) {
	s.focus()
	s.container = s.detectContainer()
	if s.container != "" {
		s.logger.Debug("using scroll container", "selector", s.container)
	}

	state := NewExtractionState(s.opts.MaxStagnant)
	result := ScrollResult{Container: s.container}

	for !state.Converged() {
		if err := ctx.Err(); err != nil {
			result.Count = state.LoadedCount
			return result, err
		}
		result.Iterations++

		before := s.count()
		used := s.scrollOnce()
		s.page.Wait(s.opts.Settle)
		after := s.count()

		if state.Observe(after) {
			s.logger.Debug("tracks loaded", "before", before, "after", after, "via", used)
		} else {
			s.logger.Debug("no new tracks", "count", after, "attempt", state.StagnantAttempts, "max", state.MaxStagnantAttempts, "via", used)
		}
	}

	result.Count = state.LoadedCount
	s.logger.Info("scrolling converged", "tracks", result.Count, "iterations", result.Iterations)
	return result, nil
}

// count is the larger of the metadata-tag and rendered-row counts.
func (s *Scroller) count() int {
	return max(renderer.CountOr(s.page, trackMetaSelector), renderer.CountOr(s.page, rowCountSelector))
}

func (s *Scroller) focus() {
	if err := s.page.Click("body", focusTimeout); err != nil {
		s.logger.Debug("could not focus page body", "err", err)
	}
	s.page.Wait(focusPause)
}

func (s *Scroller) detectContainer() string {
	raw, err := s.page.Evaluate(findContainersJS, nil)
	if err != nil {
		s.logger.Debug("scroll container scan failed", "err", err)
		return ""
	}

	var candidates []containerCandidate
	if err := renderer.Decode(raw, &candidates); err != nil {
		s.logger.Debug("scroll container scan unreadable", "err", err)
		return ""
	}
	return pickContainer(candidates)
}

// pickContainer prefers the first candidate whose class names suggest the main list.
func pickContainer(candidates []containerCandidate) string {
	for _, c := range candidates {
		cls := strings.ToLower(c.ClassName)
		for _, kw := range containerKeywords {
			if strings.Contains(cls, kw) {
				return c.Selector
			}
		}
	}
	if len(candidates) > 0 {
		return candidates[0].Selector
	}
	return ""
}

func (s *Scroller) strategies() []scrollStrategy {
	return []scrollStrategy{
		{name: "container", scroll: s.scrollContainer},
		{name: "window", scroll: s.scrollWindow},
		{name: "keyboard", scroll: s.pressPageDown},
		{name: "wheel", scroll: s.wheel},
	}
}

// scrollOnce returns the name of the strategy that moved the viewport, or "".
func (s *Scroller) scrollOnce() string {
	for _, strategy := range s.strategies() {
		moved, err := strategy.scroll()
		if err != nil {
			s.logger.Debug("scroll strategy failed", "strategy", strategy.name, "err", err)
			continue
		}
		if moved {
			return strategy.name
		}
	}
	return ""
}

func (s *Scroller) scrollContainer() (bool, error) {
	if s.container == "" {
		return false, nil
	}
	moved, err := s.page.Evaluate(scrollContainerJS, map[string]any{"selector": s.container, "step": s.opts.Step})
	if err != nil {
		return false, err
	}
	ok, _ := moved.(bool)
	return ok, nil
}

func (s *Scroller) scrollWindow() (bool, error) {
	moved, err := s.page.Evaluate(scrollWindowJS, s.opts.Step)
	if err != nil {
		return false, err
	}
	ok, _ := moved.(bool)
	return ok, nil
}

// pressPageDown cannot observe its effect; a delivered key counts as movement.
func (s *Scroller) pressPageDown() (bool, error) {
	if err := s.page.Press("PageDown"); err != nil {
		return false, err
	}
	s.page.Wait(keyboardPause)
	return true, nil
}

func (s *Scroller) wheel() (bool, error) {
	if err := s.page.Wheel(0, float64(s.opts.Step)); err != nil {
		return false, err
	}
	return true, nil
}
