package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/renderer"
	"github.com/desertthunder/tracklift/internal/shared"
)

const (
	consentRetries = 2
	pageSettle     = 3 * time.Second
	pageLoadWait   = 15 * time.Second
)

// Options configures a [Scraper].
type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
	FetchDelay        time.Duration
	Scroll            ScrollOptions
}

// OptionsFromConfig maps the [scraper] config table onto scraper options.
func OptionsFromConfig(cfg shared.ScraperConfig) Options {
	return Options{
		Headless:          cfg.Headless,
		NavigationTimeout: cfg.NavigationTimeout(),
		FetchDelay:        cfg.FetchDelay(),
		Scroll: ScrollOptions{
			Step:        cfg.ScrollStep,
			Settle:      cfg.SettleDelay(),
			MaxStagnant: cfg.MaxStagnantAttempts,
		},
	}
}

// Result is one completed extraction.
type Result struct {
	Records    []models.TrackRecord
	Strategy   string
	Validation models.ValidationResult
}

// Scraper extracts a playlist from a [renderer.Browser].
type Scraper struct {
	browser  renderer.Browser
	opts     Options
	logger   *log.Logger
	dismiss  func(renderer.Page, *log.Logger) bool
	progress ProgressFunc
}

// New creates a scraper that dismisses consent banners with [renderer.DismissConsent].
func New(browser renderer.Browser, opts Options, logger *log.Logger) *Scraper {
	return &Scraper{browser: browser, opts: opts, logger: logger, dismiss: renderer.DismissConsent}
}

// OnProgress registers a callback for per-track progress of the metadata strategy.
func (s *Scraper) OnProgress(fn ProgressFunc) { s.progress = fn }

// Run loads playlistURL and extracts its tracks in playlist order.
//
// Navigation errors are logged and extraction is still attempted: the page may
// have rendered enough. When nothing is extracted the navigation error is
// attached to the returned [shared.ErrNoTracks].
func (s *Scraper) Run(ctx context.Context, playlistURL string) (*Result, error) {
	base, err := url.Parse(playlistURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: playlist URL must be absolute: %q", shared.ErrInvalidInput, playlistURL)
	}

	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBrowserLaunch, err)
	}
	defer page.Close()

	s.logger.Info("loading playlist", "url", playlistURL)
	navErr := page.Goto(playlistURL, s.opts.NavigationTimeout)
	if navErr != nil {
		s.logger.Warn("navigation did not complete, continuing", "err", navErr)
	}

	s.prepare(page)

	validator := NewValidator(page, s.logger, s.dismiss)
	expected, reliable := validator.ExpectedTotal(ctx)
	s.logger.Info("initial track counts",
		"meta", renderer.CountOr(page, trackMetaSelector),
		"rows", renderer.CountOr(page, rowCountSelector))

	extractor := NewExtractor(s.logger,
		&DOMStrategy{Base: base, Scroll: s.opts.Scroll, Dismiss: s.dismiss, Logger: s.logger},
		&MetadataStrategy{
			Browser:  s.browser,
			Scroll:   s.opts.Scroll,
			Timeout:  s.opts.NavigationTimeout,
			Delay:    s.opts.FetchDelay,
			Progress: s.progress,
			Logger:   s.logger,
		},
	)

	out, strategy, err := extractor.Extract(ctx, page)
	if err != nil {
		if navErr != nil {
			return nil, fmt.Errorf("%w (navigation: %v)", err, navErr)
		}
		return nil, err
	}

	validation := Compare(expected, reliable, out.Converged)
	switch validation.Verdict() {
	case models.VerdictPass:
		s.logger.Info("validation passed", "result", validation.String())
	case models.VerdictFail:
		s.logger.Warn("validation failed", "result", validation.String())
	default:
		s.logger.Warn("validation skipped", "result", validation.String())
	}

	return &Result{Records: out.Records, Strategy: strategy, Validation: validation}, nil
}

// prepare dismisses consent and waits for the playlist to render.
func (s *Scraper) prepare(page renderer.Page) {
	for attempt := 1; attempt <= consentRetries; attempt++ {
		if s.dismiss(page, s.logger) {
			break
		}
		s.logger.Debug("no consent banner dismissed", "attempt", attempt)
	}

	page.Wait(pageSettle)
	if err := page.WaitVisible(pageLoadedSelector, pageLoadWait); err != nil {
		s.logger.Warn("playlist content did not appear", "err", err)
	}
	if !s.opts.Headless {
		if err := page.BringToFront(); err != nil {
			s.logger.Debug("could not bring page to front", "err", err)
		}
	}
}
