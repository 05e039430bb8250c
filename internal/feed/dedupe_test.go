package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/config"
)

func post(id, author string, sponsored bool) PostRecord {
	cat := CategoryNormal
	if sponsored {
		cat = CategorySponsored
	}
	return PostRecord{Identifier: id, AuthorName: author, Sponsored: sponsored, Category: cat}
}

func TestDedupeKeepFirstNormal(t *testing.T) {
	posts := []PostRecord{
		post("ember1", "Alice", true),
		post("ember2", "Alice", false),
		post("ember3", "Alice", false),
	}

	cleaned, report := Dedupe(posts, config.KeepFirstNormal)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "ember2", cleaned[0].Identifier)
	assert.Equal(t, 2, report.DuplicatesRemoved)
}

func TestDedupeKeepFirstNormalAllSponsored(t *testing.T) {
	posts := []PostRecord{
		post("ember1", "Alice", true),
		post("ember2", "Alice", true),
	}

	cleaned, _ := Dedupe(posts, config.KeepFirstNormal)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "ember1", cleaned[0].Identifier)
}

func TestDedupeKeepNormalOnlyDropsAllSponsoredGroup(t *testing.T) {
	posts := []PostRecord{
		post("ember1", "Alice", true),
		post("ember2", "Alice", true),
		post("ember3", "Bob", false),
	}

	cleaned, report := Dedupe(posts, config.KeepNormalOnly)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "Bob", cleaned[0].AuthorName)
	assert.Equal(t, 2, report.DuplicatesRemoved)
}

func TestDedupeKeepHighestIdentifier(t *testing.T) {
	posts := []PostRecord{
		post("ember12", "Alice", false),
		post("ember7", "Alice", false),
		post("ember45", "Alice", true),
	}

	cleaned, _ := Dedupe(posts, config.KeepHighestIdentifier)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "ember45", cleaned[0].Identifier)
}

func TestDedupeNonNumericIdentifierSortsLowest(t *testing.T) {
	posts := []PostRecord{
		post("emberXY", "Alice", false),
		post("ember3", "Alice", false),
	}

	cleaned, _ := Dedupe(posts, config.KeepHighestIdentifier)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "ember3", cleaned[0].Identifier)
}

func TestDedupeUniqueAuthorsUntouched(t *testing.T) {
	posts := []PostRecord{
		post("ember1", "Alice", false),
		post("ember2", "Bob", true),
		post("ember3", "Carol", false),
	}

	cleaned, report := Dedupe(posts, config.KeepFirstOccurrence)
	assert.Equal(t, posts, cleaned)
	assert.Equal(t, 0, report.DuplicatesRemoved)
	assert.Equal(t, 3, report.AuthorsProcessed)
}

func TestDedupeAnonymousPostsSurvive(t *testing.T) {
	posts := []PostRecord{
		post("ember1", "", false),
		post("ember2", "Alice", false),
		post("ember3", "Alice", false),
		post("ember4", "", false),
	}

	cleaned, report := Dedupe(posts, config.KeepFirstOccurrence)
	require.Len(t, cleaned, 3)
	assert.Equal(t, "ember1", cleaned[0].Identifier)
	assert.Equal(t, "ember2", cleaned[1].Identifier)
	assert.Equal(t, "ember4", cleaned[2].Identifier)
	assert.Equal(t, 1, report.AuthorsProcessed)
}

func TestDedupeAuditRecordsReason(t *testing.T) {
	posts := []PostRecord{
		post("ember1", "Alice", false),
		post("ember2", "Alice", true),
	}

	_, report := Dedupe(posts, config.KeepFirstNormal)
	require.Len(t, report.RemovedPosts, 1)
	removed := report.RemovedPosts[0]
	assert.Equal(t, "ember2", removed.Identifier)
	assert.True(t, removed.Sponsored)
	assert.Equal(t, "duplicate_author_keep-first-normal", removed.Reason)
}

func TestDedupeUnknownStrategyKeepsFirst(t *testing.T) {
	posts := []PostRecord{
		post("ember1", "Alice", true),
		post("ember2", "Alice", false),
	}

	cleaned, _ := Dedupe(posts, "bogus")
	require.Len(t, cleaned, 1)
	assert.Equal(t, "ember1", cleaned[0].Identifier)
}
