// Package scraper extracts the ordered track listing of a client-rendered playlist page.
//
// # Pipeline
//
// [Scraper.Run] navigates a [renderer.Page] to the playlist, dismisses cookie
// consent, reads the advertised track total ([Validator]), then hands the page to
// an [Extractor]: an ordered chain of [Strategy] values where the first to yield
// at least one record wins.
//
//   - [DOMStrategy] converges the lazily rendered tracklist with a [Scroller] and
//     parses the rows out of an HTML snapshot with goquery.
//   - [MetadataStrategy] converges again, collects the per-track URLs from
//     meta tags and opens each track page in an isolated context.
//
// # Convergence
//
// [ExtractionState] carries the stagnation bookkeeping: an iteration without
// growth adds one attempt, growth removes two (floored at zero), and the scroller
// stops once attempts reach the configured maximum.
//
// # Validation
//
// The advertised total is compared with the converged count only when it could
// be read; the outcome is logged and never changes the extracted records.
package scraper
