package comment

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
)

// fakeUI models a post whose composer opens on the first click. Individual
// operations can be forced to fail to exercise each stage of an attempt.
type fakeUI struct {
	emberID string

	composerOpen bool
	typed        strings.Builder
	escapes      int
	enters       int
	cleared      bool

	clickErr    error
	sendKeysErr error
	noEditor    bool
	noSubmit    bool
	missingPost bool
}

func (f *fakeUI) Find(scope, sel string) ([]session.Element, error) {
	switch {
	case sel == "#"+f.emberID && scope == "":
		if f.missingPost {
			return nil, nil
		}
		return []session.Element{{Handle: "post", ID: f.emberID, Visible: true, Enabled: true, Height: 300}}, nil

	case sel == `button[id^='feed-shared-social-action-bar-comment-']`:
		return []session.Element{{Handle: "btn", Visible: true, Enabled: true}}, nil

	case strings.Contains(sel, "ql-editor") || strings.Contains(sel, "contenteditable"):
		if !f.composerOpen || f.noEditor {
			return nil, nil
		}
		text := f.typed.String()
		if f.cleared && f.typed.Len() == 0 {
			text = ""
		}
		return []session.Element{{Handle: "editor", Text: text, Visible: true, Enabled: true, Height: 40}}, nil

	case sel == `button[id^='ember']`:
		if !f.composerOpen || f.noSubmit {
			return nil, nil
		}
		return []session.Element{{Handle: "submit", Text: "Comment", Visible: true, Enabled: true}}, nil
	}
	return nil, nil
}

func (f *fakeUI) ScrollIntoView(el session.Element) error { return nil }

func (f *fakeUI) Click(el session.Element) error {
	if f.clickErr != nil && el.Handle == "btn" {
		return f.clickErr
	}
	if el.Handle == "btn" {
		f.composerOpen = true
	}
	if el.Handle == "submit" {
		f.typed.Reset()
	}
	return nil
}

func (f *fakeUI) Focus(el session.Element) error { return nil }
func (f *fakeUI) Blur(el session.Element) error  { return nil }

func (f *fakeUI) Clear(el session.Element) error {
	f.cleared = true
	f.typed.Reset()
	return nil
}

func (f *fakeUI) SendKeys(el session.Element, text string) error {
	if f.sendKeysErr != nil {
		return f.sendKeysErr
	}
	f.typed.WriteString(text)
	return nil
}

func (f *fakeUI) Text(el session.Element) (string, error) {
	return f.typed.String(), nil
}

func (f *fakeUI) PressEnter(el session.Element) error {
	f.enters++
	return nil
}

func (f *fakeUI) PressEscape() error {
	f.escapes++
	return nil
}

func newSubmitter(ui UI) *Submitter {
	s := NewSubmitter(ui, 0)
	s.Pause = func(time.Duration) {}
	return s
}

func TestPostHappyPath(t *testing.T) {
	ui := &fakeUI{emberID: "ember42"}
	s := newSubmitter(ui)

	rec := s.Post("ember42", "Great insight, thanks for sharing!")

	assert.True(t, rec.Success)
	assert.Empty(t, rec.Error)
	assert.Equal(t, []string{
		StepPostFound, StepComposerOpened, StepTextEntered,
		StepSubmitClicked, StepVerified,
	}, rec.StepsCompleted)
	assert.Equal(t, 1, s.Results.Successful)
	assert.Equal(t, 0, s.Results.Failed)
}

func TestPostMissingPost(t *testing.T) {
	ui := &fakeUI{emberID: "ember42", missingPost: true}
	s := newSubmitter(ui)

	rec := s.Post("ember42", "hello")

	assert.False(t, rec.Success)
	assert.Contains(t, rec.Error, "ember42")
	assert.Empty(t, rec.StepsCompleted)
	assert.Equal(t, 1, s.Results.Failed)
}

func TestPostComposerFailsToOpen(t *testing.T) {
	ui := &fakeUI{emberID: "ember42", clickErr: errors.New("click intercepted")}
	s := newSubmitter(ui)

	rec := s.Post("ember42", "hello")

	assert.False(t, rec.Success)
	assert.Contains(t, rec.Error, "failed to open composer")
	assert.Equal(t, []string{StepPostFound}, rec.StepsCompleted)
}

func TestPostEditorNeverAppears(t *testing.T) {
	ui := &fakeUI{emberID: "ember42", noEditor: true}
	s := newSubmitter(ui)

	rec := s.Post("ember42", "hello")

	assert.False(t, rec.Success)
	assert.Contains(t, rec.Error, "text editor")
	assert.Equal(t, []string{StepPostFound}, rec.StepsCompleted)
}

func TestPostTypingFailure(t *testing.T) {
	ui := &fakeUI{emberID: "ember42", sendKeysErr: errors.New("node detached")}
	s := newSubmitter(ui)

	rec := s.Post("ember42", "hello")

	assert.False(t, rec.Success)
	assert.Contains(t, rec.Error, "failed to type comment")
	assert.Equal(t, []string{StepPostFound, StepComposerOpened}, rec.StepsCompleted)
}

func TestPostFallsBackToEnterWhenNoSubmit(t *testing.T) {
	ui := &fakeUI{emberID: "ember42", noSubmit: true}
	s := newSubmitter(ui)

	rec := s.Post("ember42", "hello")

	assert.True(t, rec.Success)
	assert.Equal(t, 1, ui.enters)
	assert.Equal(t, []string{
		StepPostFound, StepComposerOpened, StepTextEntered,
		StepSubmitClicked, StepVerified,
	}, rec.StepsCompleted)
}

func TestPostTypesFullText(t *testing.T) {
	ui := &fakeUI{emberID: "ember42", noSubmit: true}
	s := newSubmitter(ui)

	s.Post("ember42", "două words")
	assert.Equal(t, "două words", ui.typed.String())
	assert.True(t, ui.cleared, "editor should be cleared before typing")
}

func TestFailureTriggersEscapeRecovery(t *testing.T) {
	ui := &fakeUI{emberID: "ember42", missingPost: true}
	s := newSubmitter(ui)

	s.Post("ember42", "hello")
	// one escape during pre-attempt cleanup, one during recovery
	assert.Equal(t, 2, ui.escapes)
}

func TestResultsAccumulateAcrossAttempts(t *testing.T) {
	ui := &fakeUI{emberID: "ember42"}
	s := newSubmitter(ui)

	s.Post("ember42", "first")
	ui.missingPost = true
	s.Post("ember42", "second")

	assert.Equal(t, 2, s.Results.Attempts)
	assert.Equal(t, 1, s.Results.Successful)
	assert.Equal(t, 1, s.Results.Failed)
	require.Len(t, s.Results.Comments, 2)
	assert.True(t, s.Results.Comments[0].Success)
	assert.False(t, s.Results.Comments[1].Success)
}

func TestKeystrokeDelayRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		d := KeystrokeDelay(i, rng)
		if i%15 == 0 {
			assert.GreaterOrEqual(t, d, 50*time.Millisecond)
			assert.Less(t, d, 80*time.Millisecond)
		} else {
			assert.GreaterOrEqual(t, d, 10*time.Millisecond)
			assert.Less(t, d, 25*time.Millisecond)
		}
	}
}
