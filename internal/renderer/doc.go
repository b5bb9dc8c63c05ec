// Package renderer wraps a scriptable browser page behind the small surface the
// extraction pipeline needs: navigation with a timeout, element lookups that
// report absence instead of failing, in-page evaluation, and input dispatch.
//
// The production implementation drives Chromium through playwright-go. Tests use
// the fakes in internal/testing.
package renderer
