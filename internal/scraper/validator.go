package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/renderer"
)

const (
	defaultCountAttempts = 3
	absentBackoff        = 2 * time.Second
	failureBackoff       = 3 * time.Second
	reloadSettle         = 5 * time.Second
	reloadTimeout        = 30 * time.Second
)

// Validator reads the track total the playlist page advertises about itself.
type Validator struct {
	page     renderer.Page
	logger   *log.Logger
	attempts int
	// dismiss runs after each reload; consent banners come back with the page.
	dismiss func(renderer.Page, *log.Logger) bool
}

// NewValidator builds a validator that re-dismisses consent with dismiss after reloads.
// A nil dismiss skips that step.
func NewValidator(page renderer.Page, logger *log.Logger, dismiss func(renderer.Page, *log.Logger) bool) *Validator {
	return &Validator{page: page, logger: logger, attempts: defaultCountAttempts, dismiss: dismiss}
}

// ExpectedTotal reads the song-count metadata tag with bounded retries.
//
// An absent tag is waited on with a growing backoff; a renderer failure or an
// unparseable value reloads the page before the next attempt. reliable is false
// when every attempt failed, in which case the total must not be used.
func (v *Validator) ExpectedTotal(ctx context.Context) (total int, reliable bool) {
	for attempt := 1; attempt <= v.attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		lookup := v.page.Attribute(songCountSelector, 0, "content")
		if lookup.Ok() {
			n, err := strconv.Atoi(strings.TrimSpace(lookup.Value))
			if err == nil && n >= 0 {
				v.logger.Info("playlist advertises track count", "expected", n, "attempt", attempt)
				return n, true
			}
			lookup = renderer.Failure(fmt.Errorf("unparseable song count %q", lookup.Value))
		}

		last := attempt == v.attempts
		switch lookup.Status {
		case renderer.Absent:
			v.logger.Info("song count meta tag not found", "attempt", attempt, "of", v.attempts)
			if !last {
				v.page.Wait(absentBackoff * time.Duration(attempt))
			}
		case renderer.Failed:
			v.logger.Warn("song count lookup failed", "attempt", attempt, "of", v.attempts, "err", lookup.Err)
			if !last {
				v.recover(attempt)
			}
		}
	}

	v.logger.Warn("could not determine expected track count, skipping validation")
	return 0, false
}

func (v *Validator) recover(attempt int) {
	v.page.Wait(failureBackoff + absentBackoff*time.Duration(attempt-1))
	if err := v.page.Reload(reloadTimeout); err != nil {
		v.logger.Warn("page reload failed", "err", err)
		return
	}
	v.page.Wait(reloadSettle)
	if v.dismiss != nil {
		v.dismiss(v.page, v.logger)
	}
}

// Compare builds the validation outcome for a converged extraction.
func Compare(expected int, reliable bool, observed int) models.ValidationResult {
	return models.ValidationResult{ExpectedTotal: expected, ObservedTotal: observed, IsReliable: reliable}
}
