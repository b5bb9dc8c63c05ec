package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/renderer"
	"github.com/desertthunder/tracklift/internal/shared"
)

const (
	rootTimeout     = 10 * time.Second
	postScrollPause = 2 * time.Second
	trackPageSettle = time.Second
)

// Extraction is what a strategy produced: its records and the count its scroller converged on.
type Extraction struct {
	Records   []models.TrackRecord
	Converged int
}

// Strategy is one way of turning the loaded playlist page into records.
//
// A strategy that cannot apply returns an error or zero records; the
// [Extractor] then moves to the next one.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, page renderer.Page) (Extraction, error)
}

// ProgressFunc reports per-item progress for long strategies.
type ProgressFunc func(done, total int)

// Extractor evaluates strategies in order; the first yielding records wins.
type Extractor struct {
	strategies []Strategy
	logger     *log.Logger
}

func NewExtractor(logger *log.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract returns the winning extraction and strategy name, or [shared.ErrNoTracks].
func (e *Extractor) Extract(ctx context.Context, page renderer.Page) (Extraction, string, error) {
	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			return Extraction{}, "", err
		}

		e.logger.Info("extracting tracks", "strategy", s.Name())
		out, err := s.Extract(ctx, page)
		switch {
		case err != nil && ctx.Err() != nil:
			return Extraction{}, "", ctx.Err()
		case err != nil:
			e.logger.Warn("extraction strategy failed", "strategy", s.Name(), "err", err)
		case len(out.Records) == 0:
			e.logger.Warn("extraction strategy found no tracks", "strategy", s.Name())
		default:
			e.logger.Info("extracted tracks", "strategy", s.Name(), "count", len(out.Records))
			return out, s.Name(), nil
		}
	}
	return Extraction{}, "", fmt.Errorf("%w: %d strategies tried", shared.ErrNoTracks, len(e.strategies))
}

// DOMStrategy scrolls the rendered tracklist to convergence and parses its rows.
type DOMStrategy struct {
	Base    *url.URL
	Scroll  ScrollOptions
	Dismiss func(renderer.Page, *log.Logger) bool
	Logger  *log.Logger
}

func (d *DOMStrategy) Name() string { return "dom" }

func (d *DOMStrategy) Extract(ctx context.Context, page renderer.Page) (Extraction, error) {
	if err := page.WaitVisible(tracklistSelector, rootTimeout); err != nil {
		return Extraction{}, fmt.Errorf("tracklist container not found: %w", err)
	}
	if d.Dismiss != nil {
		d.Dismiss(page, d.Logger)
	}

	scrolled, err := NewScroller(page, d.Scroll, d.Logger).Converge(ctx)
	if err != nil {
		return Extraction{}, err
	}
	page.Wait(postScrollPause)

	html, err := page.Content()
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to snapshot page: %w", err)
	}
	records, rowSelector, err := ParseTracklist(html, d.Base)
	if err != nil {
		return Extraction{}, err
	}

	d.Logger.Debug("parsed tracklist rows", "selector", rowSelector, "records", len(records))
	return Extraction{Records: records, Converged: scrolled.Count}, nil
}

// MetadataStrategy collects track URLs from metadata tags and reads each track page
// in an isolated context.
type MetadataStrategy struct {
	Browser  renderer.Browser
	Scroll   ScrollOptions
	Timeout  time.Duration
	Delay    time.Duration
	Progress ProgressFunc
	Logger   *log.Logger
}

func (m *MetadataStrategy) Name() string { return "metadata" }

// Extract skips tracks whose page fails to load or lacks a title.
func (m *MetadataStrategy) Extract(ctx context.Context, page renderer.Page) (Extraction, error) {
	scrolled, err := NewScroller(page, m.Scroll, m.Logger).Converge(ctx)
	if err != nil {
		return Extraction{}, err
	}

	html, err := page.Content()
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to snapshot page: %w", err)
	}
	urls, err := TrackURLs(html)
	if err != nil {
		return Extraction{}, err
	}
	m.Logger.Info("found track URLs", "count", len(urls))

	records := make([]models.TrackRecord, 0, len(urls))
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return Extraction{Records: records, Converged: scrolled.Count}, err
		}
		if i > 0 {
			page.Wait(m.Delay)
		}

		record, err := m.fetch(u, len(records)+1)
		if err != nil {
			m.Logger.Warn("skipping track", "url", u, "err", err)
		} else {
			records = append(records, record)
		}
		if m.Progress != nil {
			m.Progress(i+1, len(urls))
		}
	}
	return Extraction{Records: records, Converged: scrolled.Count}, nil
}

var errNoTitle = errors.New("track page has no title")

func (m *MetadataStrategy) fetch(trackURL string, ordinal int) (models.TrackRecord, error) {
	page, err := m.Browser.Isolated()
	if err != nil {
		return models.TrackRecord{}, err
	}
	defer page.Close()

	if err := page.Goto(trackURL, m.Timeout); err != nil {
		return models.TrackRecord{}, err
	}
	page.Wait(trackPageSettle)

	html, err := page.Content()
	if err != nil {
		return models.TrackRecord{}, err
	}
	record, ok := ParseTrackPage(html, trackURL, ordinal)
	if !ok {
		return models.TrackRecord{}, errNoTitle
	}
	return record, nil
}
