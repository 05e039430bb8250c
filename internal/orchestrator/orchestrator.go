// Package orchestrator runs the two-stage pipeline: scan the feed and
// classify posts, then extract content, generate comments, and submit them
// under the configured rate limits.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/comment"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/config"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/extract"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/feed"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/generate"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/store"
)

const feedURL = "https://www.linkedin.com/feed/"

// historyWindow is how long a successful comment on an author blocks further
// comments on them.
const historyWindow = 7 * 24 * time.Hour

// Navigator is the page-level browser behavior the pipeline needs.
type Navigator interface {
	Navigate(url string) error
	WaitVisible(sel string, timeout time.Duration) error
}

// Scanner produces a scan of the feed.
type Scanner interface {
	Scan() (*feed.ScanSession, error)
}

// Extractor reads one post's content.
type Extractor interface {
	Extract(emberID, authorName string) (extract.ContentRecord, error)
}

// Submitter posts one comment.
type Submitter interface {
	Post(emberID, text string) comment.AttemptRecord
}

// Generator produces comment text for a batch of posts. Failed generations
// come back with the error and a fallback comment instead of cancelling the
// batch.
type Generator interface {
	CommentBatch(ctx context.Context, reqs []generate.Request) []generate.Result
}

// History records outcomes across sessions. It may be nil, in which case
// cross-session dedupe is skipped.
type History interface {
	SaveScan(*feed.ScanSession) error
	SaveAttempt(authorName string, rec comment.AttemptRecord) error
	CommentedRecently(authorName string, window time.Duration) (bool, error)
}

// ContentResults is the Stage 2 output file shape.
type ContentResults struct {
	Timestamp      time.Time               `json:"extraction_timestamp"`
	TotalProcessed int                     `json:"total_posts_processed"`
	WithContent    int                     `json:"posts_with_content"`
	WithReadMore   int                     `json:"posts_with_read_more"`
	Expanded       int                     `json:"expansion_successful"`
	Records        []extract.ContentRecord `json:"content_data"`
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	cfg       *config.Config
	nav       Navigator
	scanner   Scanner
	extractor Extractor
	submitter Submitter
	generator Generator
	history   History

	rng *rand.Rand

	Pause func(time.Duration)
}

func New(cfg *config.Config, nav Navigator, scanner Scanner, extractor Extractor,
	submitter Submitter, generator Generator, history History) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		nav:       nav,
		scanner:   scanner,
		extractor: extractor,
		submitter: submitter,
		generator: generator,
		history:   history,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		Pause:     time.Sleep,
	}
}

// Run executes Stage 1 and, if configured, Stage 2.
func (o *Orchestrator) Run(ctx context.Context) error {
	scan, err := o.RunScan(ctx)
	if err != nil {
		return err
	}

	if o.cfg.Output.SkipStage2 {
		log.Println("stage 2 disabled, stopping after scan")
		return nil
	}
	if !o.cfg.Output.AutoStartStage2 {
		log.Println("auto-start for stage 2 disabled, stopping after scan")
		return nil
	}

	return o.RunComments(ctx, scan)
}

// RunScan performs Stage 1: navigate to the feed, scan it, persist the
// results, and prune duplicate authors.
func (o *Orchestrator) RunScan(ctx context.Context) (*feed.ScanSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := o.nav.Navigate(feedURL); err != nil {
		return nil, err
	}
	if err := o.nav.WaitVisible("main", 30*time.Second); err != nil {
		return nil, fmt.Errorf("feed did not load: %w", err)
	}

	scan, err := o.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("feed scan failed: %w", err)
	}

	if o.history != nil {
		if err := o.history.SaveScan(scan); err != nil {
			log.Printf("failed to record scan in history: %v", err)
		}
	}

	scanPath := o.outputPath(o.cfg.Output.ScanFile)
	if err := store.WriteJSON(scanPath, scan); err != nil {
		return nil, err
	}
	log.Printf("scan results saved to %s", scanPath)

	cleaned, report := feed.Dedupe(scan.Posts, o.cfg.Cleanup.Strategy)
	if report.DuplicatesRemoved > 0 {
		scan.Posts = cleaned
		scan.Summarize()
		scan.CleanupApplied = true
		scan.CleanupInfo = report
		if err := store.BackupAndWriteJSON(scanPath, scan); err != nil {
			return nil, err
		}
		log.Printf("cleaned scan saved, original backed up")
	}

	return scan, nil
}

// RunComments performs Stage 2 over the scanned posts: filter, extract each
// candidate, pre-generate the comments in one concurrent batch, then submit
// them one at a time under the session limits. Only the generation step runs
// concurrently; everything touching the page stays sequential.
func (o *Orchestrator) RunComments(ctx context.Context, scan *feed.ScanSession) error {
	candidates := o.filter(scan.Posts)
	if max := o.cfg.Content.MaxPosts; max > 0 && len(candidates) > max {
		candidates = candidates[:max]
		log.Printf("limited to %d posts", max)
	}
	if len(candidates) == 0 {
		log.Println("no posts remaining after filters")
		return nil
	}

	results := ContentResults{Timestamp: time.Now(), TotalProcessed: len(candidates)}
	attempts := comment.SessionResults{StartedAt: time.Now()}

	o.extractAll(ctx, candidates, &results, &attempts)

	reqs, eligible := o.commentTargets(&results)
	if len(reqs) > 0 {
		generated := o.generator.CommentBatch(ctx, reqs)
		o.submitAll(ctx, generated, eligible, &results, &attempts)
	}

	o.saveResults(&results, &attempts)
	log.Printf("stage 2 complete: %d posts processed, %d with content, %d comments posted (%d attempts)",
		len(results.Records), results.WithContent, attempts.Successful, attempts.Attempts)
	return nil
}

// extractAll runs the sequential extraction pass, appending one record per
// candidate (error records included) and saving incrementally at the
// configured cadence.
func (o *Orchestrator) extractAll(ctx context.Context, candidates []feed.PostRecord,
	results *ContentResults, attempts *comment.SessionResults) {
	for i, post := range candidates {
		if err := ctx.Err(); err != nil {
			log.Println("run cancelled, saving partial results")
			break
		}
		log.Printf("processing post %d/%d by %s (%s)",
			i+1, len(candidates), post.AuthorName, post.Identifier)

		rec, err := o.extractWithRetries(post)
		if err != nil {
			rec = extract.ContentRecord{
				Identifier:  post.Identifier,
				AuthorName:  post.AuthorName,
				Errors:      []string{err.Error()},
				ExtractedAt: time.Now(),
			}
			results.Records = append(results.Records, rec)
			o.maybeSaveIncremental(results, attempts)
			if !o.cfg.Comment.ContinueOnError {
				log.Printf("stopping after extraction failure on %s", post.Identifier)
				break
			}
			continue
		}

		if rec.Content != "" {
			results.WithContent++
		}
		if rec.HasReadMore {
			results.WithReadMore++
		}
		if rec.ContentExpanded {
			results.Expanded++
		}
		if rec.Skipped {
			log.Printf("skipping %s: %s", post.Identifier, rec.SkipReason)
		}

		results.Records = append(results.Records, rec)
		o.maybeSaveIncremental(results, attempts)

		if i < len(candidates)-1 {
			o.Pause(secondsToDuration(o.cfg.Content.DelayBetweenPosts))
		}
	}
}

// commentTargets picks the records that get a comment and builds the
// generation batch for them, annotating the rest with the reason they were
// passed over. The per-session limit is enforced later, at submission time,
// so failed submissions don't consume the budget.
func (o *Orchestrator) commentTargets(results *ContentResults) ([]generate.Request, []int) {
	if !o.cfg.Comment.AutoComment {
		return nil, nil
	}
	var reqs []generate.Request
	var eligible []int
	for i := range results.Records {
		rec := &results.Records[i]
		if rec.Skipped {
			continue
		}
		if rec.Content == "" {
			rec.CommentSkipped = "no content"
			continue
		}
		if len(rec.Errors) > 0 && !o.cfg.Comment.CommentOnExtractionErrors {
			rec.CommentSkipped = "extraction errors"
			continue
		}
		reqs = append(reqs, generate.Request{
			Identifier: rec.Identifier,
			AuthorName: rec.AuthorName,
			Content:    rec.Content,
		})
		eligible = append(eligible, i)
	}
	return reqs, eligible
}

// submitAll posts the pre-generated comments sequentially. One failed
// submission never aborts the rest: the failure lands in the record and the
// loop moves on to the next post.
func (o *Orchestrator) submitAll(ctx context.Context, generated []generate.Result, eligible []int,
	results *ContentResults, attempts *comment.SessionResults) {
	commentsPosted := 0
	for n, idx := range eligible {
		if err := ctx.Err(); err != nil {
			log.Println("run cancelled before remaining comments")
			break
		}
		rec := &results.Records[idx]
		if commentsPosted >= o.cfg.Comment.MaxPerSession {
			rec.CommentSkipped = "max comments reached"
			continue
		}

		res := generated[n]
		if res.Err != nil {
			log.Printf("comment generation for %s failed, using fallback: %v", rec.Identifier, res.Err)
		}
		o.Pause(secondsToDuration(o.cfg.Comment.DelayAfterExtraction))

		attempt := o.submitter.Post(rec.Identifier, res.Comment)
		rec.CommentPosted = attempt.Success
		rec.CommentText = res.Comment
		if !attempt.Success {
			rec.CommentError = attempt.Error
		}

		attempts.Attempts++
		if attempt.Success {
			attempts.Successful++
			commentsPosted++
			log.Printf("comments posted this session: %d/%d",
				commentsPosted, o.cfg.Comment.MaxPerSession)
		} else {
			attempts.Failed++
		}
		attempts.Comments = append(attempts.Comments, attempt)

		if o.history != nil {
			if err := o.history.SaveAttempt(rec.AuthorName, attempt); err != nil {
				log.Printf("failed to record attempt in history: %v", err)
			}
		}

		if commentsPosted < o.cfg.Comment.MaxPerSession && n < len(eligible)-1 {
			o.waitBetweenComments()
		}
	}
}

func (o *Orchestrator) maybeSaveIncremental(results *ContentResults, attempts *comment.SessionResults) {
	if o.cfg.Content.SaveIncrementally && o.cfg.Content.SaveEvery > 0 &&
		len(results.Records)%o.cfg.Content.SaveEvery == 0 {
		o.saveResults(results, attempts)
	}
}

// filter applies the configured author and category filters once, before any
// extraction starts.
func (o *Orchestrator) filter(posts []feed.PostRecord) []feed.PostRecord {
	var kept []feed.PostRecord
	for _, post := range posts {
		if len(o.cfg.Filters.OnlyAuthors) > 0 && !contains(o.cfg.Filters.OnlyAuthors, post.AuthorName) {
			log.Printf("skipping %s: not in only_authors", post.AuthorName)
			continue
		}
		if contains(o.cfg.Filters.SkipAuthors, post.AuthorName) {
			log.Printf("skipping %s: in skip_authors", post.AuthorName)
			continue
		}
		if post.Sponsored && !o.cfg.Filters.IncludeSponsored {
			log.Printf("skipping sponsored post by %s", post.AuthorName)
			continue
		}
		if post.Vietnamese && o.cfg.Filters.SkipVietnamese {
			log.Printf("skipping Vietnamese post by %s", post.AuthorName)
			continue
		}
		if o.history != nil && post.AuthorName != "" {
			recent, err := o.history.CommentedRecently(post.AuthorName, historyWindow)
			if err != nil {
				log.Printf("history lookup for %s failed: %v", post.AuthorName, err)
			} else if recent {
				log.Printf("skipping %s: commented recently", post.AuthorName)
				continue
			}
		}
		kept = append(kept, post)
	}
	return kept
}

// extractWithRetries restarts extraction from scratch on failure, up to the
// configured retry budget.
func (o *Orchestrator) extractWithRetries(post feed.PostRecord) (extract.ContentRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= o.cfg.Comment.RetriesPerPost; attempt++ {
		if attempt > 0 {
			log.Printf("retrying %s (%d/%d)", post.Identifier, attempt, o.cfg.Comment.RetriesPerPost)
			o.Pause(2 * time.Second)
		}
		rec, err := o.extractor.Extract(post.Identifier, post.AuthorName)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return extract.ContentRecord{}, fmt.Errorf("extraction failed after retries: %w", lastErr)
}

// waitBetweenComments sleeps a random interval inside the configured window.
func (o *Orchestrator) waitBetweenComments() {
	min, max := o.cfg.Comment.MinWait, o.cfg.Comment.MaxWait
	if max < min {
		max = min
	}
	wait := min
	if max > min {
		wait += o.rng.Intn(max - min + 1)
	}
	log.Printf("waiting %d seconds before next comment", wait)
	o.Pause(time.Duration(wait) * time.Second)
}

func (o *Orchestrator) saveResults(results *ContentResults, attempts *comment.SessionResults) {
	contentPath := o.outputPath(o.cfg.Output.ContentFile)
	if err := store.WriteJSON(contentPath, results); err != nil {
		log.Printf("failed to save content results: %v", err)
	}
	if attempts.Attempts > 0 {
		attemptsPath := o.outputPath(o.cfg.Output.AttemptsFile)
		if err := store.WriteJSON(attemptsPath, attempts); err != nil {
			log.Printf("failed to save comment attempts: %v", err)
		}
	}
}

func (o *Orchestrator) outputPath(name string) string {
	if o.cfg.Output.Dir == "" {
		return name
	}
	return filepath.Join(o.cfg.Output.Dir, name)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
