// Package comment drives a single comment submission: open the composer,
// type the text, submit, verify. Every attempt produces a record whether or
// not it succeeds, and a failed attempt always tries to restore the page to a
// neutral state before returning.
package comment

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/locator"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
)

// UI is the browser behavior the submitter needs. *session.Session satisfies
// it; tests substitute a fake.
type UI interface {
	Find(scope, sel string) ([]session.Element, error)
	ScrollIntoView(el session.Element) error
	Click(el session.Element) error
	Focus(el session.Element) error
	Blur(el session.Element) error
	Clear(el session.Element) error
	SendKeys(el session.Element, text string) error
	Text(el session.Element) (string, error)
	PressEnter(el session.Element) error
	PressEscape() error
}

// Step names recorded on an attempt, in order of progress.
const (
	StepPostFound      = "post_found"
	StepComposerOpened = "composer_opened"
	StepTextEntered    = "text_entered"
	StepSubmitClicked  = "submit_clicked"
	StepVerified       = "verified"
)

// AttemptRecord captures one submission attempt.
type AttemptRecord struct {
	Identifier      string    `json:"ember_id"`
	CommentText     string    `json:"comment_text"`
	Timestamp       time.Time `json:"timestamp"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
	StepsCompleted  []string  `json:"steps_completed"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// SessionResults aggregates attempts over one run.
type SessionResults struct {
	StartedAt  time.Time       `json:"session_timestamp"`
	Attempts   int             `json:"total_attempts"`
	Successful int             `json:"successful_comments"`
	Failed     int             `json:"failed_comments"`
	Comments   []AttemptRecord `json:"comments"`
}

// Submitter posts comments onto feed posts.
type Submitter struct {
	ui          UI
	scrollDelay time.Duration
	rng         *rand.Rand

	Results SessionResults
	Pause   func(time.Duration)
}

func NewSubmitter(ui UI, scrollDelay time.Duration) *Submitter {
	return &Submitter{
		ui:          ui,
		scrollDelay: scrollDelay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		Results:     SessionResults{StartedAt: time.Now()},
		Pause:       time.Sleep,
	}
}

// Post submits a comment on the post with the given ember id. The returned
// record is always complete: on failure it carries the error and every step
// that did finish.
func (s *Submitter) Post(emberID, text string) AttemptRecord {
	start := time.Now()
	rec := AttemptRecord{
		Identifier:  emberID,
		CommentText: text,
		Timestamp:   start,
	}
	s.Results.Attempts++

	err := s.run(emberID, text, &rec)
	rec.DurationSeconds = time.Since(start).Seconds()

	if err != nil {
		rec.Error = err.Error()
		s.Results.Failed++
		log.Printf("comment on %s failed: %v", emberID, err)
		s.recover()
	} else {
		rec.Success = true
		s.Results.Successful++
		log.Printf("comment posted on %s", emberID)
	}

	s.Results.Comments = append(s.Results.Comments, rec)
	return rec
}

func (s *Submitter) run(emberID, text string, rec *AttemptRecord) error {
	s.cleanup()

	if _, err := s.findPost(emberID); err != nil {
		return err
	}
	rec.StepsCompleted = append(rec.StepsCompleted, StepPostFound)
	scope := "#" + emberID

	button, err := locator.Locate(s.ui, scope, locator.RoleCommentButton)
	if err != nil {
		return fmt.Errorf("comment button: %w", err)
	}
	if err := s.ui.ScrollIntoView(button); err != nil {
		return err
	}
	s.Pause(s.scrollDelay)
	if err := s.ui.Click(button); err != nil {
		return fmt.Errorf("failed to open composer: %w", err)
	}
	s.Pause(2 * time.Second)

	editor, err := s.locateScopedThenGlobal(scope, locator.RoleTextEditor)
	if err != nil {
		return fmt.Errorf("text editor: %w", err)
	}
	rec.StepsCompleted = append(rec.StepsCompleted, StepComposerOpened)

	if err := s.typeComment(editor, text); err != nil {
		return fmt.Errorf("failed to type comment: %w", err)
	}
	rec.StepsCompleted = append(rec.StepsCompleted, StepTextEntered)

	if err := s.submit(scope, editor); err != nil {
		return err
	}
	s.Pause(2 * time.Second)
	rec.StepsCompleted = append(rec.StepsCompleted, StepSubmitClicked)

	s.verify(emberID)
	rec.StepsCompleted = append(rec.StepsCompleted, StepVerified)
	return nil
}

// findPost resolves the post container, trying the ember id directly and
// then data-id references pointing at it.
func (s *Submitter) findPost(emberID string) (session.Element, error) {
	els, err := s.ui.Find("", "#"+emberID)
	if err != nil {
		return session.Element{}, err
	}
	for _, el := range els {
		if el.Visible {
			return el, nil
		}
	}

	els, err = s.ui.Find("", fmt.Sprintf(`[data-id*='%s']`, emberID))
	if err != nil {
		return session.Element{}, err
	}
	for _, el := range els {
		if el.Visible {
			return el, nil
		}
	}
	return session.Element{}, fmt.Errorf("post %s: %w", emberID, locator.ErrNotFound)
}

// submit clicks the submit control, or sends Enter to the editor when no
// control exists anywhere on the page.
func (s *Submitter) submit(scope string, editor session.Element) error {
	button, err := s.locateScopedThenGlobal(scope, locator.RoleSubmitButton)
	if errors.Is(err, locator.ErrNotFound) {
		log.Printf("no submit control found, sending Enter to editor")
		if err := s.ui.PressEnter(editor); err != nil {
			return fmt.Errorf("failed to submit with Enter: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("submit button: %w", err)
	}

	if err := s.ui.ScrollIntoView(button); err != nil {
		return err
	}
	s.Pause(500 * time.Millisecond)
	if err := s.ui.Click(button); err != nil {
		return fmt.Errorf("failed to click submit: %w", err)
	}
	return nil
}

func (s *Submitter) locateScopedThenGlobal(scope string, role locator.Role) (session.Element, error) {
	el, err := locator.Locate(s.ui, scope, role)
	if errors.Is(err, locator.ErrNotFound) {
		return locator.Locate(s.ui, "", role)
	}
	return el, err
}

// typeComment focuses the editor, clears leftovers, and types character by
// character with human-shaped pauses.
func (s *Submitter) typeComment(editor session.Element, text string) error {
	if err := s.ui.Click(editor); err != nil {
		if err := s.ui.Focus(editor); err != nil {
			return err
		}
	}
	s.Pause(500 * time.Millisecond)

	if err := s.ui.Clear(editor); err != nil {
		return err
	}
	s.Pause(500 * time.Millisecond)

	for i, r := range []rune(text) {
		if err := s.ui.SendKeys(editor, string(r)); err != nil {
			return err
		}
		s.Pause(KeystrokeDelay(i, s.rng))
	}
	s.Pause(300 * time.Millisecond)
	return nil
}

// cleanup dismisses any composer left open by an earlier attempt so tactics
// scoped to this post don't land in a stale one.
func (s *Submitter) cleanup() {
	if err := s.ui.PressEscape(); err == nil {
		s.Pause(500 * time.Millisecond)
	}
	editors, err := s.ui.Find("", ".ql-editor")
	if err != nil {
		return
	}
	for _, ed := range editors {
		if ed.Visible {
			_ = s.ui.Blur(ed)
		}
	}
}

// verify checks that the composer emptied or disappeared after submission.
// The outcome is logged only; an inconclusive check never fails the attempt.
func (s *Submitter) verify(emberID string) {
	editors, err := s.ui.Find("", ".ql-editor")
	if err != nil {
		log.Printf("verification for %s inconclusive: %v", emberID, err)
		return
	}
	for _, ed := range editors {
		if !ed.Visible {
			continue
		}
		text, err := s.ui.Text(ed)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			log.Printf("verification for %s inconclusive: composer still has text", emberID)
			return
		}
	}
	log.Printf("comment on %s verified: composer empty", emberID)
}

// recover presses Escape so a half-open composer doesn't poison later
// attempts. Failures here are swallowed.
func (s *Submitter) recover() {
	_ = s.ui.PressEscape()
	s.Pause(time.Second)
}
