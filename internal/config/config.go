package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Generation provider names
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Author-duplicate cleanup strategy names
const (
	KeepFirstNormal       = "keep-first-normal"
	KeepFirstOccurrence   = "keep-first-occurrence"
	KeepNormalOnly        = "keep-normal-only"
	KeepHighestIdentifier = "keep-highest-identifier"
)

// Config holds all application configuration. It is constructed once at
// process start and passed explicitly to every component that needs it.
type Config struct {
	Version    int              `toml:"version"`
	Browser    BrowserConfig    `toml:"browser"`
	Scan       ScanConfig       `toml:"scan"`
	Content    ContentConfig    `toml:"content"`
	Filters    FilterConfig     `toml:"filters"`
	Comment    CommentConfig    `toml:"comment"`
	Generation GenerationConfig `toml:"generation"`
	Cleanup    CleanupConfig    `toml:"cleanup"`
	Output     OutputConfig     `toml:"output"`
	Schedule   ScheduleConfig   `toml:"schedule"`
}

type BrowserConfig struct {
	Headless bool `toml:"headless"`
}

type ScanConfig struct {
	// ScrollPasses is how many times to scroll to the bottom of the feed
	// before enumerating, so lazy-loaded posts have rendered.
	ScrollPasses int `toml:"scroll_passes"`
	// MaxPosts caps how many posts a scan keeps (0 = keep all found).
	MaxPosts int `toml:"max_posts"`
	// MaxPostAgeDays skips posts older than this many days.
	MaxPostAgeDays int `toml:"max_post_age_days"`
}

type ContentConfig struct {
	AutoExpand bool `toml:"auto_expand"`
	SkipShort  bool `toml:"skip_short"`
	MinLength  int  `toml:"min_length"`
	MaxLength  int  `toml:"max_length"`
	// MaxPosts caps how many posts stage 2 extracts content from (0 = no limit).
	MaxPosts int `toml:"max_posts"`
	// Timing, in seconds. The original interface renders asynchronously, so
	// each interaction needs a settle delay before the next.
	DelayBetweenPosts float64 `toml:"delay_between_posts"`
	DelayAfterExpand  float64 `toml:"delay_after_expand"`
	ScrollDelay       float64 `toml:"scroll_delay"`
	// Incremental persistence: save partial results every SaveEvery posts.
	SaveIncrementally bool `toml:"save_incrementally"`
	SaveEvery         int  `toml:"save_every"`
}

type FilterConfig struct {
	// OnlyAuthors is an allow-list of author names (empty = all authors).
	OnlyAuthors []string `toml:"only_authors"`
	// SkipAuthors is a deny-list of author names.
	SkipAuthors []string `toml:"skip_authors"`
	// IncludeSponsored extracts content from sponsored posts too.
	IncludeSponsored bool `toml:"include_sponsored"`
	// SkipVietnamese drops posts the language heuristic flags.
	SkipVietnamese bool `toml:"skip_vietnamese"`
}

type CommentConfig struct {
	// AutoComment posts a generated comment right after each extraction.
	AutoComment bool `toml:"auto_comment"`
	// MaxPerSession caps comments posted in one run.
	MaxPerSession int `toml:"max_per_session"`
	// MinWait/MaxWait bound the randomized pause after a successful comment,
	// in seconds.
	MinWait int `toml:"min_wait"`
	MaxWait int `toml:"max_wait"`
	// DelayAfterExtraction is the pause between extracting a post's content
	// and opening its composer, in seconds.
	DelayAfterExtraction float64 `toml:"delay_after_extraction"`
	// RetriesPerPost is how many times to restart a failed attempt before
	// recording a terminal error and moving on.
	RetriesPerPost int `toml:"retries_per_post"`
	// ContinueOnError keeps the batch going past a terminal failure.
	ContinueOnError bool `toml:"continue_on_error"`
	// CommentOnExtractionErrors allows commenting even when extraction
	// recorded soft errors.
	CommentOnExtractionErrors bool `toml:"comment_on_extraction_errors"`
}

type GenerationConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	// Prompt is the template for comment generation. {author_name} and
	// {post_content} are substituted.
	Prompt string `toml:"prompt"`
}

type CleanupConfig struct {
	// Strategy picks which post survives when one author has several.
	Strategy string `toml:"strategy"`
}

type OutputConfig struct {
	// Dir is where the JSON snapshots and the history database live.
	// Empty means the platform data dir.
	Dir             string `toml:"dir"`
	ScanFile        string `toml:"scan_file"`
	ContentFile     string `toml:"content_file"`
	AttemptsFile    string `toml:"attempts_file"`
	AutoStartStage2 bool   `toml:"auto_start_stage2"`
	SkipStage2      bool   `toml:"skip_stage2"`
}

type ScheduleConfig struct {
	Enabled bool `toml:"enabled"`
	// Spec is a cron expression, e.g. "0 */4 * * *".
	Spec     string `toml:"spec"`
	Timezone string `toml:"timezone"`
}

const defaultPrompt = `Generate a professional LinkedIn comment for this post.

Post by {author_name}:
{post_content}

Guidelines:
- Be engaging and add value to the conversation
- Keep it under 100 words
- Be authentic and conversational, not overly formal
- If it's an achievement, congratulate them
- If it's a question, provide helpful insights
- If it's an article/share, add a thoughtful perspective
- Don't use too many emojis (max 1-2 if appropriate)
- Don't be generic - reference specific points from the post

Generate only the comment text, nothing else.`

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Browser: BrowserConfig{
			Headless: false, // headless sessions trip detection more often
		},
		Scan: ScanConfig{
			ScrollPasses:   3,
			MaxPosts:       0,
			MaxPostAgeDays: 3,
		},
		Content: ContentConfig{
			AutoExpand:        true,
			SkipShort:         true,
			MinLength:         50,
			MaxLength:         5000,
			MaxPosts:          10,
			DelayBetweenPosts: 1.5,
			DelayAfterExpand:  2.0,
			ScrollDelay:       1.0,
			SaveIncrementally: true,
			SaveEvery:         5,
		},
		Filters: FilterConfig{
			IncludeSponsored: false,
			SkipVietnamese:   true,
		},
		Comment: CommentConfig{
			AutoComment:          true,
			MaxPerSession:        1,
			MinWait:              30,
			MaxWait:              60,
			DelayAfterExtraction: 2.0,
			RetriesPerPost:       2,
			ContinueOnError:      true,
		},
		Generation: GenerationConfig{
			Provider: ProviderOpenAI,
			Model:    "gpt-4.1-mini",
			Prompt:   defaultPrompt,
		},
		Cleanup: CleanupConfig{
			Strategy: KeepFirstNormal,
		},
		Output: OutputConfig{
			ScanFile:     "linkedin_scan.json",
			ContentFile:  "linkedin_content.json",
			AttemptsFile: "linkedin_comment_attempts.json",
		},
		Schedule: ScheduleConfig{
			Enabled:  false,
			Spec:     "0 */4 * * *",
			Timezone: "Local",
		},
	}
}

// normalize clamps out-of-range values to their documented fallbacks. Load
// applies it once after decoding so the config never changes afterwards.
func (c *Config) normalize() {
	if c.Content.MaxPosts < 0 {
		c.Content.MaxPosts = 0
	}
	switch c.Cleanup.Strategy {
	case KeepFirstNormal, KeepFirstOccurrence, KeepNormalOnly, KeepHighestIdentifier:
	default:
		c.Cleanup.Strategy = KeepFirstNormal
	}
}

// Validate returns human-readable warnings for settings that are legal but
// likely mistakes. It never modifies the config.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Content.MaxPosts < 0 {
		warnings = append(warnings, "content.max_posts cannot be negative; treating as 0 (no limit)")
	}
	if c.Content.MinLength < 10 {
		warnings = append(warnings, "content.min_length is very low; consider at least 20 characters")
	}
	if c.Content.DelayBetweenPosts < 0.5 {
		warnings = append(warnings, "content.delay_between_posts is very low; this may trigger rate limiting")
	}
	if c.Content.MaxPosts > 100 && !c.Content.SaveIncrementally {
		warnings = append(warnings, "processing many posts without incremental saving risks losing work on a crash")
	}
	if c.Comment.MinWait > c.Comment.MaxWait {
		warnings = append(warnings, "comment.min_wait exceeds comment.max_wait; the larger value wins")
	}
	if len(c.Filters.OnlyAuthors) > 0 && len(c.Filters.SkipAuthors) > 0 {
		skip := make(map[string]bool, len(c.Filters.SkipAuthors))
		for _, a := range c.Filters.SkipAuthors {
			skip[a] = true
		}
		for _, a := range c.Filters.OnlyAuthors {
			if skip[a] {
				warnings = append(warnings, fmt.Sprintf("author %q appears in both only_authors and skip_authors", a))
			}
		}
	}
	switch c.Cleanup.Strategy {
	case KeepFirstNormal, KeepFirstOccurrence, KeepNormalOnly, KeepHighestIdentifier:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown cleanup.strategy %q; falling back to %s", c.Cleanup.Strategy, KeepFirstNormal))
	}

	return warnings
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "licbot"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "licbot"), nil
}

// DataDir returns where results and the history database are written,
// honoring output.dir when set.
func (c *Config) DataDir() (string, error) {
	if c.Output.Dir != "" {
		return c.Output.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "licbot"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from disk. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	cfg.normalize()

	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
