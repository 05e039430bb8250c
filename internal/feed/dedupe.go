package feed

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/config"
)

// RemovedPost records one post dropped during cleanup.
type RemovedPost struct {
	Identifier string `json:"ember_id"`
	AuthorName string `json:"author_name"`
	Sponsored  bool   `json:"is_sponsored"`
	Reason     string `json:"reason"`
}

// CleanupReport summarizes one cleanup run.
type CleanupReport struct {
	Timestamp         time.Time     `json:"cleanup_timestamp"`
	OriginalPostCount int           `json:"original_post_count"`
	FinalPostCount    int           `json:"final_post_count"`
	AuthorsProcessed  int           `json:"authors_processed"`
	DuplicatesRemoved int           `json:"duplicates_removed"`
	Strategy          string        `json:"cleanup_strategy"`
	RemovedPosts      []RemovedPost `json:"removed_posts"`
}

// Dedupe removes duplicate posts from the same author according to strategy
// and returns the surviving posts with an audit report. Posts without an
// author name are not grouped and always survive. An unknown strategy falls
// back to keep-first-occurrence. Relative order of survivors follows the
// input.
func Dedupe(posts []PostRecord, strategy string) ([]PostRecord, *CleanupReport) {
	report := &CleanupReport{
		Timestamp:         time.Now(),
		OriginalPostCount: len(posts),
		Strategy:          strategy,
	}

	byAuthor := make(map[string][]PostRecord)
	var order []string
	for _, p := range posts {
		if p.AuthorName == "" {
			continue
		}
		if _, seen := byAuthor[p.AuthorName]; !seen {
			order = append(order, p.AuthorName)
		}
		byAuthor[p.AuthorName] = append(byAuthor[p.AuthorName], p)
	}
	report.AuthorsProcessed = len(byAuthor)

	keptByID := make(map[string]struct{})
	for _, author := range order {
		group := byAuthor[author]
		if len(group) == 1 {
			keptByID[group[0].Identifier] = struct{}{}
			continue
		}
		kept, ok := pickSurvivor(group, strategy)
		if ok {
			keptByID[kept.Identifier] = struct{}{}
		}
		for _, p := range group {
			if ok && p.Identifier == kept.Identifier {
				continue
			}
			report.RemovedPosts = append(report.RemovedPosts, RemovedPost{
				Identifier: p.Identifier,
				AuthorName: p.AuthorName,
				Sponsored:  p.Sponsored,
				Reason:     "duplicate_author_" + strategy,
			})
			report.DuplicatesRemoved++
		}
	}

	var cleaned []PostRecord
	for _, p := range posts {
		if _, ok := keptByID[p.Identifier]; ok || p.AuthorName == "" {
			cleaned = append(cleaned, p)
		}
	}
	report.FinalPostCount = len(cleaned)

	log.Printf("cleanup (%s): %d posts in, %d out, %d removed",
		strategy, report.OriginalPostCount, report.FinalPostCount, report.DuplicatesRemoved)
	return cleaned, report
}

func pickSurvivor(group []PostRecord, strategy string) (PostRecord, bool) {
	switch strategy {
	case config.KeepFirstNormal:
		for _, p := range group {
			if !p.Sponsored {
				return p, true
			}
		}
		return group[0], true

	case config.KeepNormalOnly:
		for _, p := range group {
			if !p.Sponsored {
				return p, true
			}
		}
		return PostRecord{}, false

	case config.KeepHighestIdentifier:
		best := group[0]
		for _, p := range group[1:] {
			if emberNumber(p.Identifier) > emberNumber(best.Identifier) {
				best = p
			}
		}
		return best, true

	default: // keep-first-occurrence and anything unrecognized
		return group[0], true
	}
}

// emberNumber extracts the numeric suffix of an ember id. Non-numeric ids
// sort lowest.
func emberNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "ember"))
	if err != nil {
		return 0
	}
	return n
}
