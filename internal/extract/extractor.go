// Package extract pulls the body text out of a feed post, expanding
// truncated posts first and applying configured length limits.
package extract

import (
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/locator"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
)

// UI is the browser behavior the extractor needs.
type UI interface {
	Find(scope, sel string) ([]session.Element, error)
	ScrollIntoView(el session.Element) error
	Click(el session.Element) error
}

// contentSelectors locate the post body, most specific first. Content under
// 20 characters is treated as chrome text, not the body.
var contentSelectors = []string{
	".fie-impression-container div[class*='biSBAHR'] > div > div",
	".fie-impression-container .break-words",
	".feed-shared-update-v2__description",
	".feed-shared-update-v2__description-wrapper",
	"[data-test-id='main-feed-activity-card'] .break-words",
	".update-components-text",
}

const minSubstantialContent = 20

// ContentRecord is the outcome of extracting one post, shaped to match the
// content results file.
type ContentRecord struct {
	Identifier      string    `json:"ember_id"`
	AuthorName      string    `json:"author_name"`
	Content         string    `json:"content"`
	ContentLength   int       `json:"content_length"`
	HasReadMore     bool      `json:"has_read_more"`
	ContentExpanded bool      `json:"content_expanded"`
	SelectorsUsed   []string  `json:"selectors_used,omitempty"`
	Errors          []string  `json:"errors,omitempty"`
	Truncated       bool      `json:"content_truncated,omitempty"`
	OriginalLength  int       `json:"original_length,omitempty"`
	Skipped         bool      `json:"skipped,omitempty"`
	SkipReason      string    `json:"skip_reason,omitempty"`
	CommentPosted   bool      `json:"comment_posted,omitempty"`
	CommentText     string    `json:"comment_text,omitempty"`
	CommentError    string    `json:"comment_error,omitempty"`
	CommentSkipped  string    `json:"comment_skipped,omitempty"`
	ExtractedAt     time.Time `json:"extraction_time"`
}

// LengthPolicy bounds extracted content.
type LengthPolicy struct {
	SkipShort bool
	MinLength int
	MaxLength int
}

// Apply enforces the policy on a record that already has content. Short posts
// are marked skipped; long posts are truncated with a trailing ellipsis and
// keep their original length for the audit trail. Lengths count runes so
// Vietnamese text is never cut mid character.
func (p LengthPolicy) Apply(rec *ContentRecord) {
	if rec.Content == "" {
		return
	}
	runes := []rune(rec.Content)
	if p.SkipShort && len(runes) < p.MinLength {
		rec.Skipped = true
		rec.SkipReason = fmt.Sprintf("content %d chars below minimum %d", len(runes), p.MinLength)
		return
	}
	if p.MaxLength > 0 && len(runes) > p.MaxLength {
		rec.OriginalLength = len(runes)
		rec.Content = string(runes[:p.MaxLength]) + "..."
		rec.Truncated = true
		rec.ContentLength = p.MaxLength
		log.Printf("truncated content from %d to %d chars", len(runes), p.MaxLength)
	}
}

// Extractor reads post bodies from the live page.
type Extractor struct {
	ui          UI
	autoExpand  bool
	expandDelay time.Duration
	policy      LengthPolicy

	Pause func(time.Duration)
}

func New(ui UI, autoExpand bool, expandDelay time.Duration, policy LengthPolicy) *Extractor {
	return &Extractor{
		ui:          ui,
		autoExpand:  autoExpand,
		expandDelay: expandDelay,
		policy:      policy,
		Pause:       time.Sleep,
	}
}

// Extract reads the body of the post with the given ember id. Errors during
// expansion are recorded but never abort extraction; a post with no
// extractable body returns a record with empty content and an error note.
func (e *Extractor) Extract(emberID, authorName string) (ContentRecord, error) {
	rec := ContentRecord{
		Identifier:  emberID,
		AuthorName:  authorName,
		ExtractedAt: time.Now(),
	}
	scope := "#" + emberID

	containers, err := e.ui.Find("", scope)
	if err != nil {
		return rec, err
	}
	if len(containers) == 0 {
		return rec, fmt.Errorf("post %s: %w", emberID, locator.ErrNotFound)
	}
	if err := e.ui.ScrollIntoView(containers[0]); err != nil {
		return rec, err
	}

	e.expand(scope, &rec)

	for _, sel := range contentSelectors {
		els, err := e.ui.Find(scope, sel)
		if err != nil {
			return rec, err
		}
		for _, el := range els {
			if utf8.RuneCountInString(el.Text) > minSubstantialContent {
				rec.Content = el.Text
				rec.ContentLength = utf8.RuneCountInString(el.Text)
				rec.SelectorsUsed = append(rec.SelectorsUsed, sel)
				break
			}
		}
		if rec.Content != "" {
			break
		}
	}

	if rec.Content == "" {
		rec.Errors = append(rec.Errors, "no content found with any selector")
		log.Printf("no content extracted for %s", emberID)
		return rec, nil
	}

	log.Printf("extracted %d chars from %s", rec.ContentLength, emberID)
	e.policy.Apply(&rec)
	return rec, nil
}

// expand clicks the post's read-more control when present.
func (e *Extractor) expand(scope string, rec *ContentRecord) {
	if !e.autoExpand {
		return
	}
	button, err := locator.Locate(e.ui, scope, locator.RoleExpandButton)
	if errors.Is(err, locator.ErrNotFound) {
		return
	}
	if err != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("read-more lookup failed: %v", err))
		return
	}
	rec.HasReadMore = true

	if err := e.ui.ScrollIntoView(button); err == nil {
		e.Pause(300 * time.Millisecond)
	}
	if err := e.ui.Click(button); err != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("failed to click read-more: %v", err))
		return
	}
	rec.ContentExpanded = true
	e.Pause(e.expandDelay)
}
