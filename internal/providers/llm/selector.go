package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
	"github.com/harshilgor/prompt-to-3d/internal/infra"
)

// Generator is the single capability the selector iterates over: one
// generation attempt against one named model.
type Generator interface {
	Generate(ctx context.Context, model string, req GenerateRequest) (string, error)
}

// Selector tries an ordered list of candidate models until one returns text.
// The order is fixed by the caller; attempts are sequential, never racing, and
// each runs under its own timeout so a hung candidate cannot stall the chain.
type Selector struct {
	generator      Generator
	models         []string
	attemptTimeout time.Duration
	logger         infra.Logger
}

// Attempt records the outcome of one candidate model.
type Attempt struct {
	Model string
	Err   error
}

// NewSelector builds a selector over the given candidate order.
func NewSelector(generator Generator, models []string, attemptTimeout time.Duration, logger infra.Logger) *Selector {
	if attemptTimeout <= 0 {
		attemptTimeout = 90 * time.Second
	}
	return &Selector{
		generator:      generator,
		models:         models,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Models returns the configured candidate order.
func (s *Selector) Models() []string {
	return s.models
}

// Select returns the first successful raw response together with the model
// that produced it. When every candidate fails the error wraps
// domain.ErrGenerationExhausted and carries the last underlying cause.
func (s *Selector) Select(ctx context.Context, req GenerateRequest) (text string, model string, err error) {
	if len(s.models) == 0 {
		return "", "", fmt.Errorf("no candidate models configured: %w", domain.ErrGenerationExhausted)
	}
	var lastErr error
	for _, candidate := range s.models {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		raw, attemptErr := s.generator.Generate(attemptCtx, candidate, req)
		cancel()
		if attemptErr == nil {
			s.logger.Info().Str("model", candidate).Msg("llm: generation succeeded")
			return raw, candidate, nil
		}
		lastErr = attemptErr
		s.logger.Warn().Err(attemptErr).Str("model", candidate).Msg("llm: generation attempt failed")
		if ctx.Err() != nil {
			break
		}
	}
	return "", "", fmt.Errorf("all %d candidate models failed, last: %v: %w", len(s.models), lastErr, domain.ErrGenerationExhausted)
}
