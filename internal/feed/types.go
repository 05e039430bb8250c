// Package feed discovers posts in the LinkedIn feed, classifies them, and
// prunes duplicate authors from scan results.
package feed

import "time"

// Category labels a post. Sponsored takes priority over Vietnamese, which
// takes priority over Normal.
type Category string

const (
	CategoryNormal     Category = "normal"
	CategorySponsored  Category = "sponsored"
	CategoryVietnamese Category = "vietnamese"
)

// PostRecord is one discovered post. The Identifier is the container's ember
// DOM id, stable for the lifetime of the page.
type PostRecord struct {
	Identifier   string   `json:"ember_id"`
	AuthorName   string   `json:"author_name"`
	Sponsored    bool     `json:"is_sponsored"`
	Vietnamese   bool     `json:"is_vietnamese"`
	SelectorUsed string   `json:"selector_used,omitempty"`
	Category     Category `json:"post_type"`
}

// ScanSummary aggregates counts for one scan.
type ScanSummary struct {
	TotalEmberElements   int `json:"total_ember_elements"`
	TotalPostsProcessed  int `json:"total_posts_processed"`
	TotalPostsWithAuthor int `json:"total_posts_with_authors"`
	NormalCount          int `json:"normal_posts_count"`
	SponsoredCount       int `json:"sponsored_posts_count"`
	VietnameseCount      int `json:"vietnamese_posts_count"`
	UniqueAuthors        int `json:"unique_authors_count"`
}

// ScanSession is the full result of one feed scan, shaped to match the
// on-disk scan file.
type ScanSession struct {
	ID              string         `json:"scan_id"`
	Timestamp       time.Time      `json:"scan_timestamp"`
	EmberElements   int            `json:"ember_elements_found"`
	Posts           []PostRecord   `json:"posts_data"`
	NormalPosts     []PostRecord   `json:"normal_posts"`
	SponsoredPosts  []PostRecord   `json:"sponsored_posts"`
	VietnamesePosts []PostRecord   `json:"vietnamese_posts"`
	Summary         ScanSummary    `json:"scan_summary"`
	CleanupApplied  bool           `json:"cleanup_applied,omitempty"`
	CleanupInfo     *CleanupReport `json:"cleanup_info,omitempty"`
}

// Summarize recomputes the summary and per-category slices from Posts.
func (s *ScanSession) Summarize() {
	s.NormalPosts = s.NormalPosts[:0]
	s.SponsoredPosts = s.SponsoredPosts[:0]
	s.VietnamesePosts = s.VietnamesePosts[:0]

	authors := make(map[string]struct{})
	withAuthor := 0
	for _, p := range s.Posts {
		switch p.Category {
		case CategorySponsored:
			s.SponsoredPosts = append(s.SponsoredPosts, p)
		case CategoryVietnamese:
			s.VietnamesePosts = append(s.VietnamesePosts, p)
		default:
			s.NormalPosts = append(s.NormalPosts, p)
		}
		if p.AuthorName != "" {
			authors[p.AuthorName] = struct{}{}
			withAuthor++
		}
	}

	s.Summary = ScanSummary{
		TotalEmberElements:   s.EmberElements,
		TotalPostsProcessed:  len(s.Posts),
		TotalPostsWithAuthor: withAuthor,
		NormalCount:          len(s.NormalPosts),
		SponsoredCount:       len(s.SponsoredPosts),
		VietnameseCount:      len(s.VietnamesePosts),
		UniqueAuthors:        len(authors),
	}
}
