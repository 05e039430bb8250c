package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Element is a snapshot of a DOM element at the moment of a Find call. The
// Handle is a unique attribute value stamped onto the node, so the element can
// be re-resolved later with Selector even when its position in the page has
// changed. Snapshot fields may go stale; interactions always resolve fresh.
type Element struct {
	Handle    string  `json:"handle"`
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	AriaLabel string  `json:"ariaLabel"`
	Class     string  `json:"class"`
	Height    float64 `json:"height"`
	Visible   bool    `json:"visible"`
	Enabled   bool    `json:"enabled"`
}

// Selector returns a CSS selector uniquely identifying the element.
func (e Element) Selector() string {
	return fmt.Sprintf(`[data-lcb=%q]`, e.Handle)
}

// findScript stamps each match of a selector with a unique data-lcb attribute
// and returns a snapshot of every match. Scope narrows the search to the
// subtree under the first match of the scope selector.
const findScript = `
(function(scopeSel, sel) {
	var root = document;
	if (scopeSel) {
		root = document.querySelector(scopeSel);
		if (!root) return [];
	}
	if (window.__lcbSeq === undefined) window.__lcbSeq = 0;
	var out = [];
	var nodes = root.querySelectorAll(sel);
	for (var i = 0; i < nodes.length; i++) {
		var el = nodes[i];
		if (!el.getAttribute('data-lcb')) {
			el.setAttribute('data-lcb', 'h' + (++window.__lcbSeq));
		}
		var style = window.getComputedStyle(el);
		var rect = el.getBoundingClientRect();
		var visible = style.display !== 'none' &&
			style.visibility !== 'hidden' &&
			rect.width > 0 && rect.height > 0;
		var enabled = !el.disabled &&
			el.getAttribute('aria-disabled') !== 'true';
		out.push({
			handle: el.getAttribute('data-lcb'),
			id: el.id || '',
			text: (el.innerText || '').trim(),
			ariaLabel: el.getAttribute('aria-label') || '',
			class: el.className && el.className.baseVal !== undefined ?
				el.className.baseVal : (el.className || ''),
			height: rect.height,
			visible: visible,
			enabled: enabled,
		});
	}
	return out;
})(%q, %q)
`

// Find returns a snapshot of every element matching sel. When scope is
// non-empty the search is limited to the first element matching scope; a
// missing scope yields no matches rather than an error.
func (s *Session) Find(scope, sel string) ([]Element, error) {
	var out []Element
	expr := fmt.Sprintf(findScript, scope, sel)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", sel, err)
	}
	return out, nil
}

// Click clicks the element, falling back to a script-dispatched click when the
// native click is intercepted or the element is outside the viewport.
func (s *Session) Click(el Element) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	err := chromedp.Run(ctx, chromedp.Click(el.Selector(), chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
		return err
	}
	jsErr := s.Evaluate(fmt.Sprintf(
		`(function(){var el=document.querySelector(%q);if(!el)return false;el.click();return true})()`,
		el.Selector()), nil)
	if jsErr != nil {
		return fmt.Errorf("click failed on %s: %w", el.Selector(), err)
	}
	return nil
}

// ScrollIntoView centers the element in the viewport.
func (s *Session) ScrollIntoView(el Element) error {
	return s.Evaluate(fmt.Sprintf(
		`(function(){var el=document.querySelector(%q);if(el)el.scrollIntoView({block:'center'})})()`,
		el.Selector()), nil)
}

// Focus moves keyboard focus to the element.
func (s *Session) Focus(el Element) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Focus(el.Selector(), chromedp.ByQuery))
}

// SendKeys types text into the element.
func (s *Session) SendKeys(el Element, text string) error {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	return chromedp.Run(ctx, chromedp.SendKeys(el.Selector(), text, chromedp.ByQuery))
}

// Clear empties the element, falling back to a script reset for rich-text
// editors that ignore the input-clear protocol.
func (s *Session) Clear(el Element) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	err := chromedp.Run(ctx, chromedp.Clear(el.Selector(), chromedp.ByQuery))
	if err == nil {
		return nil
	}
	return s.Evaluate(fmt.Sprintf(
		`(function(){var el=document.querySelector(%q);if(!el)return;el.textContent='';
			el.dispatchEvent(new Event('input',{bubbles:true}))})()`,
		el.Selector()), nil)
}

// Text re-reads the element's current text content.
func (s *Session) Text(el Element) (string, error) {
	var text string
	err := s.Evaluate(fmt.Sprintf(
		`(function(){var el=document.querySelector(%q);return el?(el.innerText||'').trim():''})()`,
		el.Selector()), &text)
	return strings.TrimSpace(text), err
}

// Blur drops keyboard focus from the element.
func (s *Session) Blur(el Element) error {
	return s.Evaluate(fmt.Sprintf(
		`(function(){var el=document.querySelector(%q);if(el)el.blur()})()`,
		el.Selector()), nil)
}

// PressEnter sends the Enter key to the element.
func (s *Session) PressEnter(el Element) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Focus(el.Selector(), chromedp.ByQuery),
		chromedp.KeyEvent(kb.Enter),
	)
}

// PressEscape sends the Escape key to the page body, dismissing any open
// overlay or composer.
func (s *Session) PressEscape() error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	return chromedp.Run(ctx, chromedp.KeyEvent(kb.Escape))
}
