package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const cleanerSystemPrompt = `You extract product identities from noisy listing titles.
Given a raw title, reply with only the brand and model of the product,
at most five words, no prices, no platform names, no commentary.`

// Cleaner rewrites raw visual-match titles into short product names using a
// chat model. It augments, never replaces, the deterministic sanitizer: its
// output is still sanitized downstream, and any failure here is non-fatal.
type Cleaner struct {
	client *openai.Client
	model  string
	debug  bool
}

// NewCleaner creates a new LLM title cleaner
func NewCleaner(apiKey, model string) *Cleaner {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Cleaner{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// SetDebug enables verbose logging
func (c *Cleaner) SetDebug(debug bool) {
	c.debug = debug
}

// Clean asks the model for a brand+model rewrite of the raw title, retrying
// once on transient failure.
func (c *Cleaner) Clean(ctx context.Context, rawTitle string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: cleanerSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: rawTitle,
				},
			},
			Temperature: 0,
		})
		cancel()

		if err != nil {
			lastErr = err
			if c.debug {
				log.Printf("[LLM] Cleanup attempt %d failed: %v", attempt, err)
			}
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion response")
			continue
		}

		cleaned := strings.TrimSpace(resp.Choices[0].Message.Content)
		// Keep only the first line; chat models occasionally elaborate.
		if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
			cleaned = strings.TrimSpace(cleaned[:idx])
		}
		if cleaned == "" {
			lastErr = fmt.Errorf("blank cleanup result")
			continue
		}

		if c.debug {
			log.Printf("[LLM] Cleaned %q -> %q", rawTitle, cleaned)
		}
		return cleaned, nil
	}

	return "", fmt.Errorf("title cleanup failed: %w", lastErr)
}
