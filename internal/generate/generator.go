// Package generate turns extracted post content into comment text through an
// LLM provider.
package generate

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/config"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/generate/providers"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/store"
)

// Provider defines the interface for LLM providers
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Request asks for one comment.
type Request struct {
	Identifier string
	AuthorName string
	Content    string
}

// Result carries the generated comment, or the error and a fallback comment
// when generation failed.
type Result struct {
	Identifier string
	AuthorName string
	Comment    string
	Fallback   bool
	Err        error
}

// Generator handles LLM-based comment generation
type Generator struct {
	provider Provider
	template string

	// providerName and model identify the backing API in the on-disk
	// exchange audit. Empty providerName disables auditing.
	providerName string
	model        string
}

// New creates a generator with the provider named in the config
func New(cfg config.GenerationConfig) (*Generator, error) {
	var provider Provider

	switch cfg.Provider {
	case config.ProviderAnthropic:
		provider = providers.NewAnthropicProvider(cfg.APIKey, cfg.Model)
	case config.ProviderOpenAI:
		provider = providers.NewOpenAIProvider(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}

	return &Generator{
		provider:     provider,
		template:     cfg.Prompt,
		providerName: cfg.Provider,
		model:        cfg.Model,
	}, nil
}

// NewWithProvider builds a generator around an existing provider, without
// exchange auditing.
func NewWithProvider(p Provider, template string) *Generator {
	return &Generator{provider: p, template: template}
}

// Comment generates one comment for a post.
func (g *Generator) Comment(ctx context.Context, authorName, content string) (string, error) {
	return g.generate(ctx, Request{AuthorName: authorName, Content: content})
}

func (g *Generator) generate(ctx context.Context, req Request) (string, error) {
	prompt := BuildPrompt(g.template, req.AuthorName, req.Content)

	start := time.Now()
	raw, err := g.provider.Generate(ctx, systemPrompt, prompt)
	g.audit(req, prompt, raw, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to generate comment: %w", err)
	}

	comment := CleanComment(raw)
	if comment == "" {
		return "", fmt.Errorf("provider returned empty comment")
	}
	return comment, nil
}

// audit records the exchange, tagged with the post it was generated for, so
// prompts can be reviewed after a run.
func (g *Generator) audit(req Request, prompt, response string, took time.Duration, genErr error) {
	if g.providerName == "" {
		return
	}
	ex := store.Exchange{
		Timestamp:  time.Now(),
		Provider:   g.providerName,
		Model:      g.model,
		EmberID:    req.Identifier,
		AuthorName: req.AuthorName,
		System:     systemPrompt,
		Prompt:     prompt,
		Response:   response,
		DurationMS: took.Milliseconds(),
	}
	if genErr != nil {
		ex.Error = genErr.Error()
	}
	if path, err := store.SaveExchange(ex); err != nil {
		log.Printf("failed to record LLM exchange: %v", err)
	} else {
		log.Printf("LLM exchange recorded to %s", path)
	}
}

// CommentBatch generates comments for several posts concurrently. A failed
// generation doesn't cancel the rest: its result carries the error and the
// generic fallback comment.
func (g *Generator) CommentBatch(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for i, req := range reqs {
		eg.Go(func() error {
			comment, err := g.generate(ctx, req)
			res := Result{
				Identifier: req.Identifier,
				AuthorName: req.AuthorName,
				Comment:    comment,
			}
			if err != nil {
				res.Err = err
				res.Comment = Fallback(req.AuthorName)
				res.Fallback = true
			}
			results[i] = res
			return nil
		})
	}

	_ = eg.Wait() // goroutines never return errors, failures land in results
	return results
}
