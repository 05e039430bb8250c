package extract

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/locator"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
)

type fakeUI struct {
	results  map[string][]session.Element
	clicked  []string
	clickErr error
}

func key(scope, sel string) string { return scope + "|" + sel }

func (f *fakeUI) Find(scope, sel string) ([]session.Element, error) {
	return f.results[key(scope, sel)], nil
}

func (f *fakeUI) ScrollIntoView(el session.Element) error { return nil }

func (f *fakeUI) Click(el session.Element) error {
	f.clicked = append(f.clicked, el.Handle)
	return f.clickErr
}

func newFakeUI(emberID, body string) *fakeUI {
	f := &fakeUI{results: map[string][]session.Element{}}
	f.results[key("", "#"+emberID)] = []session.Element{
		{Handle: "c1", ID: emberID, Visible: true, Enabled: true, Height: 300},
	}
	if body != "" {
		f.results[key("#"+emberID, ".fie-impression-container .break-words")] = []session.Element{
			{Handle: "body", Text: body, Visible: true, Height: 80},
		}
	}
	return f
}

func newExtractor(ui UI, policy LengthPolicy) *Extractor {
	e := New(ui, true, 0, policy)
	e.Pause = func(time.Duration) {}
	return e
}

func TestExtractFindsBodyViaFallbackSelector(t *testing.T) {
	body := "A substantial post body well above the noise threshold."
	e := newExtractor(newFakeUI("ember1", body), LengthPolicy{})

	rec, err := e.Extract("ember1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, body, rec.Content)
	assert.Equal(t, len(body), rec.ContentLength)
	assert.Equal(t, []string{".fie-impression-container .break-words"}, rec.SelectorsUsed)
	assert.Equal(t, "Alice", rec.AuthorName)
}

func TestExtractIgnoresInsubstantialText(t *testing.T) {
	f := newFakeUI("ember1", "")
	f.results[key("#ember1", ".update-components-text")] = []session.Element{
		{Handle: "short", Text: "Like · Reply", Visible: true},
	}
	e := newExtractor(f, LengthPolicy{})

	rec, err := e.Extract("ember1", "Alice")
	require.NoError(t, err)
	assert.Empty(t, rec.Content)
	assert.Contains(t, rec.Errors, "no content found with any selector")
}

func TestExtractMissingPost(t *testing.T) {
	e := newExtractor(&fakeUI{results: map[string][]session.Element{}}, LengthPolicy{})

	_, err := e.Extract("ember404", "Alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, locator.ErrNotFound))
}

func TestExtractExpandsReadMore(t *testing.T) {
	f := newFakeUI("ember1", "The full expanded body of the post, now visible.")
	f.results[key("#ember1", `button[aria-label*='more' i]`)] = []session.Element{
		{Handle: "rm", Text: "…see more", Visible: true, Enabled: true, Height: 20},
	}
	e := newExtractor(f, LengthPolicy{})

	rec, err := e.Extract("ember1", "Alice")
	require.NoError(t, err)
	assert.True(t, rec.HasReadMore)
	assert.True(t, rec.ContentExpanded)
	assert.Equal(t, []string{"rm"}, f.clicked)
}

func TestExtractExpandFailureIsRecordedNotFatal(t *testing.T) {
	f := newFakeUI("ember1", "Body text that still extracts after a failed expansion.")
	f.results[key("#ember1", `button[aria-label*='more' i]`)] = []session.Element{
		{Handle: "rm", Text: "…see more", Visible: true, Enabled: true, Height: 20},
	}
	f.clickErr = errors.New("click intercepted")
	e := newExtractor(f, LengthPolicy{})

	rec, err := e.Extract("ember1", "Alice")
	require.NoError(t, err)
	assert.True(t, rec.HasReadMore)
	assert.False(t, rec.ContentExpanded)
	require.Len(t, rec.Errors, 1)
	assert.Contains(t, rec.Errors[0], "failed to click read-more")
	assert.NotEmpty(t, rec.Content)
}

func TestLengthPolicySkipsShortPosts(t *testing.T) {
	rec := ContentRecord{Content: "ten chars!", ContentLength: 10}
	LengthPolicy{SkipShort: true, MinLength: 50, MaxLength: 5000}.Apply(&rec)

	assert.True(t, rec.Skipped)
	assert.Contains(t, rec.SkipReason, "below minimum 50")
	assert.Equal(t, "ten chars!", rec.Content)
}

func TestLengthPolicyTruncatesLongPosts(t *testing.T) {
	long := strings.Repeat("x", 6000)
	rec := ContentRecord{Content: long, ContentLength: 6000}
	LengthPolicy{SkipShort: true, MinLength: 50, MaxLength: 5000}.Apply(&rec)

	assert.False(t, rec.Skipped)
	assert.True(t, rec.Truncated)
	assert.Equal(t, 6000, rec.OriginalLength)
	assert.Equal(t, 5000, rec.ContentLength)
	assert.Len(t, rec.Content, 5003)
	assert.True(t, strings.HasSuffix(rec.Content, "..."))
}

func TestLengthPolicyTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("đẹp quá ", 100) // 800 runes, well over 800 bytes
	rec := ContentRecord{Content: long, ContentLength: 800}
	LengthPolicy{SkipShort: true, MinLength: 50, MaxLength: 501}.Apply(&rec)

	assert.True(t, rec.Truncated)
	assert.Equal(t, 800, rec.OriginalLength)
	assert.Equal(t, 501, rec.ContentLength)
	assert.True(t, utf8.ValidString(rec.Content))
	assert.Equal(t, 504, utf8.RuneCountInString(rec.Content))
	assert.True(t, strings.HasSuffix(rec.Content, "..."))
}

func TestLengthPolicyMinLengthCountsRunes(t *testing.T) {
	rec := ContentRecord{Content: strings.Repeat("ế", 60), ContentLength: 60}
	LengthPolicy{SkipShort: true, MinLength: 50, MaxLength: 5000}.Apply(&rec)

	assert.False(t, rec.Skipped)
	assert.False(t, rec.Truncated)
}

func TestLengthPolicyLeavesMidRangeAlone(t *testing.T) {
	body := strings.Repeat("y", 100)
	rec := ContentRecord{Content: body, ContentLength: 100}
	LengthPolicy{SkipShort: true, MinLength: 50, MaxLength: 5000}.Apply(&rec)

	assert.False(t, rec.Skipped)
	assert.False(t, rec.Truncated)
	assert.Equal(t, body, rec.Content)
}
