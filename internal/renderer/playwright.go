package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tracklift/internal/shared"
	"github.com/playwright-community/playwright-go"
)

// DefaultUserAgent is sent by the main page context.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var launchArgs = []string{
	"--disable-web-security",
	"--disable-blink-features=AutomationControlled",
}

// LaunchOptions configures the Chromium instance.
type LaunchOptions struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
}

// DefaultLaunchOptions returns a 1920x1080 headless session.
func DefaultLaunchOptions() LaunchOptions {
	return LaunchOptions{Headless: true, UserAgent: DefaultUserAgent, Width: 1920, Height: 1080}
}

// Install downloads the playwright driver and Chromium.
func Install() error {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("%w: failed to install playwright: %v", shared.ErrBrowserLaunch, err)
	}
	return nil
}

// PlaywrightBrowser implements [Browser] on a playwright-driven Chromium.
type PlaywrightBrowser struct {
	ctx     context.Context
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    LaunchOptions
}

// Launch starts the playwright driver and a Chromium process.
//
// The caller must Close the returned browser; that also stops the driver.
// Page waits return early once ctx is done.
func Launch(ctx context.Context, opts LaunchOptions) (*PlaywrightBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBrowserLaunch, err)
	}

	args := append([]string{}, launchArgs...)
	if !opts.Headless {
		args = append(args, "--start-maximized")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("%w: %v", shared.ErrBrowserLaunch, err)
	}

	return &PlaywrightBrowser{ctx: ctx, pw: pw, browser: browser, opts: opts}, nil
}

// NewPage opens the main context with the configured viewport and user agent.
func (b *PlaywrightBrowser) NewPage() (Page, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if b.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(b.opts.UserAgent)
	}
	if b.opts.Width > 0 && b.opts.Height > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: b.opts.Width, Height: b.opts.Height}
	}
	return b.open(ctxOpts)
}

// Isolated opens a page in a fresh default context.
func (b *PlaywrightBrowser) Isolated() (Page, error) {
	return b.open(playwright.BrowserNewContextOptions{})
}

func (b *PlaywrightBrowser) open(ctxOpts playwright.BrowserNewContextOptions) (Page, error) {
	bctx, err := b.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &playwrightPage{ctx: b.ctx, page: page, bctx: bctx}, nil
}

// Close shuts down Chromium and the driver.
func (b *PlaywrightBrowser) Close() error {
	berr := b.browser.Close()
	perr := b.pw.Stop()
	if berr != nil {
		return fmt.Errorf("failed to close browser: %w", berr)
	}
	if perr != nil {
		return fmt.Errorf("failed to stop playwright: %w", perr)
	}
	return nil
}

type playwrightPage struct {
	ctx  context.Context
	page playwright.Page
	bctx playwright.BrowserContext
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{Timeout: millis(timeout)}); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrNavigation, url, err)
	}
	return nil
}

func (p *playwrightPage) Reload(timeout time.Duration) error {
	if _, err := p.page.Reload(playwright.PageReloadOptions{Timeout: millis(timeout)}); err != nil {
		return fmt.Errorf("%w: reload: %v", shared.ErrNavigation, err)
	}
	return nil
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Count(selector string) (int, error) {
	return p.page.Locator(selector).Count()
}

func (p *playwrightPage) nth(selector string, nth int) (playwright.Locator, Lookup, bool) {
	loc := p.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		return nil, Failure(err), false
	}
	if nth >= n {
		return nil, Lookup{Status: Absent}, false
	}
	return loc.Nth(nth), Lookup{}, true
}

func (p *playwrightPage) Attribute(selector string, nth int, name string) Lookup {
	loc, miss, ok := p.nth(selector, nth)
	if !ok {
		return miss
	}
	v, err := loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(10000)})
	if err != nil {
		return Failure(err)
	}
	return FoundValue(v)
}

func (p *playwrightPage) Text(selector string, nth int) Lookup {
	loc, miss, ok := p.nth(selector, nth)
	if !ok {
		return miss
	}
	v, err := loc.TextContent()
	if err != nil {
		return Failure(err)
	}
	return FoundValue(v)
}

func (p *playwrightPage) Evaluate(script string, arg any) (any, error) {
	if arg == nil {
		return p.page.Evaluate(script)
	}
	return p.page.Evaluate(script, arg)
}

func (p *playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
}

func (p *playwrightPage) WaitHidden(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: millis(timeout),
	})
}

func (p *playwrightPage) Click(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{Timeout: millis(timeout)})
}

func (p *playwrightPage) Press(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *playwrightPage) Wheel(dx, dy float64) error {
	return p.page.Mouse().Wheel(dx, dy)
}

func (p *playwrightPage) Wait(d time.Duration) {
	sleep(p.ctx, d)
}

// sleep pauses for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (p *playwrightPage) BringToFront() error {
	return p.page.BringToFront()
}

// Close closes the page and its context.
func (p *playwrightPage) Close() error {
	perr := p.page.Close()
	cerr := p.bctx.Close()
	if perr != nil {
		return perr
	}
	return cerr
}
