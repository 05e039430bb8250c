// Package session owns the live browser and exposes the operations the rest
// of the pipeline needs: navigation, scoped element search, clicking with a
// script fallback, and keyboard input. Components borrow the session for the
// duration of one call; element handles are snapshots plus a unique selector,
// never live DOM node references.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/browser"
)

// Session wraps a chromedp browser context for one run.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// New starts a browser, injects the given cookies, and installs the
// automation-masking script. The session lives until Close.
func New(parent context.Context, headless bool, cookies []*network.Cookie, timeout time.Duration) (*Session, error) {
	opts := browser.Options(headless)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, timeout)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{timeoutCancel, browserCancel, allocCancel},
	}

	if err := chromedp.Run(browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.Evaluate(`void 0`, nil).Do(ctx) // force browser start
		}),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if err := s.installMask(); err != nil {
		s.Close()
		return nil, err
	}

	if len(cookies) > 0 {
		if err := s.injectCookies(cookies); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to inject cookies: %w", err)
		}
	}

	return s, nil
}

// Close tears the browser down. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// installMask registers the fingerprint-masking script to run in every new
// document before any page script executes.
func (s *Session) installMask() error {
	return chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(browser.MaskScript).Do(ctx)
			return err
		}),
	)
}

// injectCookies sets cookies in the browser context before navigation
func (s *Session) injectCookies(cookies []*network.Cookie) error {
	return chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range cookies {
				err := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithSecure(c.Secure).
					WithHTTPOnly(c.HTTPOnly).
					WithSameSite(c.SameSite).
					Do(ctx)
				if err != nil {
					return err
				}
			}
			return nil
		}),
	)
}

// Navigate loads a URL.
func (s *Session) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Location returns the current page URL.
func (s *Session) Location() (string, error) {
	var url string
	if err := chromedp.Run(s.ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// WaitVisible blocks until the selector is visible or the timeout elapses.
func (s *Session) WaitVisible(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("timed out waiting for %s: %w", sel, err)
	}
	return nil
}

// Evaluate runs a JS expression and optionally decodes the result into out.
func (s *Session) Evaluate(expr string, out any) error {
	if out == nil {
		return chromedp.Run(s.ctx, chromedp.Evaluate(expr, nil))
	}
	return chromedp.Run(s.ctx, chromedp.Evaluate(expr, out))
}

// ScrollBy scrolls the window by the given pixel amount.
func (s *Session) ScrollBy(pixels int) error {
	return s.Evaluate(fmt.Sprintf(`window.scrollBy(0, %d)`, pixels), nil)
}

// ScrollToBottom scrolls to the bottom of the page, triggering lazy loading.
func (s *Session) ScrollToBottom() error {
	return s.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil)
}
