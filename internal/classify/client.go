// Package classify turns raw receipt OCR text into structured expense data
// using an external language model, with strict fallback rules so a malformed
// or partial model response never fails a receipt upload.
package classify

import (
	"context"
	"time"
)

// Client is the contract for LLM providers. Implementations return the
// model's raw text response; all tolerant parsing happens in the pipeline.
//
// Clients are constructed explicitly and injected into the pipeline — there
// is no package-level client instance.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for constructing an LLM client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}
