package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsWarningFree(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())
}

func TestValidateWarnsWithoutMutating(t *testing.T) {
	cfg := Default()
	cfg.Content.MaxPosts = -5
	cfg.Cleanup.Strategy = "keep-the-best-one"

	warnings := cfg.Validate()

	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "content.max_posts")
	assert.Contains(t, warnings[1], "cleanup.strategy")
	assert.Equal(t, -5, cfg.Content.MaxPosts)
	assert.Equal(t, "keep-the-best-one", cfg.Cleanup.Strategy)
}

func TestNormalizeClampsToFallbacks(t *testing.T) {
	cfg := Default()
	cfg.Content.MaxPosts = -5
	cfg.Cleanup.Strategy = "keep-the-best-one"

	cfg.normalize()

	assert.Equal(t, 0, cfg.Content.MaxPosts)
	assert.Equal(t, KeepFirstNormal, cfg.Cleanup.Strategy)
	assert.Empty(t, cfg.Validate())
}

func TestValidateWaitBoundsWarning(t *testing.T) {
	cfg := Default()
	cfg.Comment.MinWait = 90
	cfg.Comment.MaxWait = 60

	warnings := cfg.Validate()

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "min_wait")
}

func TestValidateConflictingAuthorFilters(t *testing.T) {
	cfg := Default()
	cfg.Filters.OnlyAuthors = []string{"Alice Nguyen", "Bob Tran"}
	cfg.Filters.SkipAuthors = []string{"Bob Tran"}

	warnings := cfg.Validate()

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Bob Tran")
}

func TestDataDirHonorsOverride(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "/tmp/licbot-test"

	dir, err := cfg.DataDir()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/licbot-test", dir)
}
