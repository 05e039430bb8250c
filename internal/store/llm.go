package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/config"
)

// Exchange is one comment-generation call, kept on disk so prompts can be
// audited and tuned after a run. Failed calls are recorded too, with the
// error alongside whatever the provider returned.
type Exchange struct {
	Timestamp  time.Time `json:"timestamp"`
	Provider   string    `json:"provider"` // e.g. "openai"
	Model      string    `json:"model"`
	EmberID    string    `json:"ember_id,omitempty"`
	AuthorName string    `json:"author_name,omitempty"`
	System     string    `json:"system_prompt"`
	Prompt     string    `json:"user_prompt"`
	Response   string    `json:"response"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// ExchangeDir returns the directory where generation exchanges are kept.
func ExchangeDir() (string, error) {
	cacheDir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "exchanges"), nil
}

// SaveExchange writes the exchange to its own file, named by provider and
// timestamp, and returns the path. Dashes instead of colons in the timestamp
// for filesystem compatibility.
func SaveExchange(ex Exchange) (string, error) {
	dir, err := ExchangeDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	ts := ex.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	name := fmt.Sprintf("%s_%s.json", ex.Provider, ts.Format("2006-01-02T15-04-05.000"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
