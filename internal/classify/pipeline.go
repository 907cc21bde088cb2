package classify

import (
	"context"
	"log/slog"

	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/prompt"
)

// Pipeline orchestrates OCR text -> prompt -> LLM call -> parsed receipt.
//
// The pipeline has no failure path visible to callers: every error condition
// degrades to an empty result, because a receipt upload should not hard-fail
// merely because classification is degraded. It performs no retries; the
// caller owns any retry policy around it.
type Pipeline struct {
	client  Client
	prompts *prompt.Builder
	logger  *slog.Logger
}

// NewPipeline creates a classification pipeline with an injected LLM client.
func NewPipeline(client Client, prompts *prompt.Builder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		client:  client,
		prompts: prompts,
		logger:  logger,
	}
}

// Classify turns raw OCR text into a structured receipt candidate. The user
// context (custom categories and ranked learned preferences) is optional;
// without it classification degrades to the default catalogue.
func (p *Pipeline) Classify(ctx context.Context, ocrText string, userCtx *prompt.UserContext) model.ParsedReceiptData {
	request, err := p.prompts.BuildReceiptRequest(userCtx, ocrText)
	if err != nil {
		// Template execution failing is a programming error, but even then
		// the upload must not fail.
		p.logger.Error("failed to build classification request", "error", err)
		return model.EmptyParsedReceiptData()
	}

	content, err := p.client.Complete(ctx, request)
	if err != nil {
		p.logger.Warn("classification call failed, returning empty result", "error", err)
		return model.EmptyParsedReceiptData()
	}

	result := parseReceiptResponse(content, p.logger)

	p.logger.Info("receipt classified",
		"store_name", result.StoreName,
		"category", string(result.Category),
		"currency", string(result.Currency),
		"items", len(result.Items),
		"needs_review", result.NeedsReview())

	return result
}
