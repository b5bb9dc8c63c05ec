package renderer

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// ConsentSelectors are tried in order; the first visible match is clicked.
var ConsentSelectors = []string{
	`button[id*="onetrust-accept"]`,
	`button[data-testid="cookie-accept-all"]`,
	`button:has-text("Accept All")`,
	`button:has-text("Accept all cookies")`,
	`button:has-text("Accept")`,
	`#onetrust-accept-btn-handler`,
	`.onetrust-close-btn-handler`,
	`button[aria-label*="Accept"]`,
}

// ModalSelectors are dialog containers swept for a close control when no consent button matched.
var ModalSelectors = []string{
	`[role="dialog"]`,
	`.modal`,
	`[data-testid="modal"]`,
	`.overlay`,
}

const (
	consentSettle    = 3 * time.Second
	consentVisible   = 2 * time.Second
	consentClick     = 5 * time.Second
	consentPostClick = 2 * time.Second
	consentHidden    = 5 * time.Second
	modalPause       = time.Second
)

// DismissConsent clicks the first visible cookie-consent button and reports whether one was found.
//
// When none match it presses Escape and clicks any close control inside a known
// dialog container, then returns false. Nothing here is fatal.
func DismissConsent(p Page, logger *log.Logger) bool {
	p.Wait(consentSettle)

	for _, sel := range ConsentSelectors {
		if err := p.WaitVisible(sel, consentVisible); err != nil {
			continue
		}

		logger.Info("found cookie banner", "selector", sel)
		if err := p.Click(sel, consentClick); err != nil {
			logger.Warn("failed to click consent button", "selector", sel, "err", err)
			continue
		}
		p.Wait(consentPostClick)

		if err := p.WaitHidden(sel, consentHidden); err != nil {
			logger.Warn("cookie banner may still be visible", "selector", sel)
		} else {
			logger.Debug("cookie banner dismissed", "selector", sel)
		}
		return true
	}

	sweepModals(p, logger)
	return false
}

func sweepModals(p Page, logger *log.Logger) {
	if err := p.Press("Escape"); err != nil {
		logger.Debug("escape keypress failed", "err", err)
		return
	}
	p.Wait(modalPause)

	for _, sel := range ModalSelectors {
		if CountOr(p, sel) == 0 {
			continue
		}
		logger.Info("found modal overlay", "selector", sel)

		closer := closeControl(sel)
		if CountOr(p, closer) == 0 {
			continue
		}
		if err := p.Click(closer, consentClick); err != nil {
			logger.Warn("failed to close modal", "selector", sel, "err", err)
			continue
		}
		p.Wait(modalPause)
	}
}

// closeControl builds the selector for a close button inside container.
func closeControl(container string) string {
	return fmt.Sprintf(`%[1]s button:has-text("Close"), %[1]s button[aria-label*="close"], %[1]s .close`, container)
}
