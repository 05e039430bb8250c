package feed

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/locator"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
)

// Browser is the subset of session behavior the scanner needs.
type Browser interface {
	Find(scope, sel string) ([]session.Element, error)
	ScrollIntoView(el session.Element) error
	Text(el session.Element) (string, error)
	ScrollToBottom() error
}

// minPostHeight is the rendered-height fallback for recognizing a post
// container when no author block is present.
const minPostHeight = 100

// timeSelectors locate the relative-timestamp element inside a post.
var timeSelectors = []string{
	".feed-shared-actor__sub-description",
	".feed-shared-actor__sub-description-link",
	"[data-control-name='actor_sub_description']",
}

// Scanner walks the feed and produces a ScanSession.
type Scanner struct {
	browser      Browser
	scrollPasses int
	maxPosts     int
	maxAgeDays   int

	// Pause is replaceable so tests run without real delays.
	Pause func(time.Duration)
}

// NewScanner builds a scanner. scrollPasses controls how many times the feed
// is scrolled to the bottom before enumeration; maxPosts of zero means
// unlimited; maxAgeDays of zero disables the age filter.
func NewScanner(b Browser, scrollPasses, maxPosts, maxAgeDays int) *Scanner {
	return &Scanner{
		browser:      b,
		scrollPasses: scrollPasses,
		maxPosts:     maxPosts,
		maxAgeDays:   maxAgeDays,
		Pause:        time.Sleep,
	}
}

// Scan scrolls the feed, enumerates post containers, and classifies each one.
// A post container is an ember-id element holding an author block; nested
// ember elements sharing the same id are collapsed first-seen.
func (s *Scanner) Scan() (*ScanSession, error) {
	log.Println("starting feed scan")

	for i := 0; i < s.scrollPasses; i++ {
		if err := s.browser.ScrollToBottom(); err != nil {
			return nil, fmt.Errorf("scroll pass %d failed: %w", i+1, err)
		}
		s.Pause(2 * time.Second)
	}

	embers, err := s.browser.Find("", `[id^='ember']`)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate ember elements: %w", err)
	}
	log.Printf("found %d ember elements", len(embers))

	scan := &ScanSession{
		ID:            uuid.NewString(),
		Timestamp:     time.Now(),
		EmberElements: len(embers),
	}

	seen := make(map[string]struct{})
	for _, el := range embers {
		if el.ID == "" {
			continue
		}
		if _, dup := seen[el.ID]; dup {
			continue
		}
		scope := "#" + el.ID

		// A post container either holds an author block or is at least
		// post-sized; most ember elements are small chrome fragments.
		actors, err := s.browser.Find(scope, ".update-components-actor__title")
		if err != nil {
			return nil, err
		}
		if len(actors) == 0 && el.Height <= minPostHeight {
			continue
		}
		seen[el.ID] = struct{}{}

		if s.maxPosts > 0 && len(scan.Posts) >= s.maxPosts {
			log.Printf("post limit %d reached, stopping enumeration", s.maxPosts)
			break
		}

		post, err := s.inspect(el, scope)
		if err != nil {
			log.Printf("skipping container %s: %v", el.ID, err)
			continue
		}
		scan.Posts = append(scan.Posts, post)
		log.Printf("%s post: %s (%s)", post.Category, post.AuthorName, post.Identifier)
	}

	scan.Summarize()
	log.Printf("scan complete: %d posts, %d normal, %d sponsored, %d vietnamese",
		scan.Summary.TotalPostsProcessed, scan.Summary.NormalCount,
		scan.Summary.SponsoredCount, scan.Summary.VietnameseCount)
	return scan, nil
}

func (s *Scanner) inspect(el session.Element, scope string) (PostRecord, error) {
	if err := s.browser.ScrollIntoView(el); err != nil {
		return PostRecord{}, err
	}
	s.Pause(500 * time.Millisecond)

	text, err := s.browser.Text(el)
	if err != nil {
		return PostRecord{}, err
	}

	if s.maxAgeDays > 0 && s.tooOld(scope) {
		return PostRecord{}, errors.New("post older than age limit")
	}

	post := PostRecord{
		Identifier: el.ID,
		Sponsored:  IsSponsored(text),
		Vietnamese: IsVietnamese(text),
		Category:   Classify(text),
	}

	author, err := locator.Locate(s.browser, scope, locator.RoleAuthorName)
	switch {
	case err == nil:
		post.AuthorName = strings.TrimSpace(author.Text)
	case errors.Is(err, locator.ErrNotFound):
		// keep the post, author stays empty
	default:
		return PostRecord{}, err
	}
	return post, nil
}

// tooOld reads the post's relative timestamp and applies the age limit.
// Missing or unparseable timestamps keep the post.
func (s *Scanner) tooOld(scope string) bool {
	for _, sel := range timeSelectors {
		els, err := s.browser.Find(scope, sel)
		if err != nil || len(els) == 0 {
			continue
		}
		if els[0].Text != "" {
			return TooOld(els[0].Text, s.maxAgeDays)
		}
	}
	return false
}
