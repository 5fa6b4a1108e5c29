// Package dispatch turns generation requests into prompts and obtains
// generated text through a bounded-retry remote call. The Dispatcher is
// an explicit decorator over llm.ContentGenerator: it holds the base
// generator and calls it directly, never by rewriting methods at runtime.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"chainforge/internal/llm"

	"go.uber.org/zap"
)

// Request describes one outbound generation call. Constructed per call,
// not reused.
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64

	// MaxRetries bounds retry attempts after the first; total attempts
	// never exceed MaxRetries+1.
	MaxRetries int

	// RetryDelay is the base backoff delay; attempt n waits
	// RetryDelay * 2^(n-1) before retrying.
	RetryDelay time.Duration

	// ExtractCode returns only fenced code-block contents when the
	// response contains any; otherwise the raw text is returned.
	ExtractCode bool

	// Window, when non-nil, is a caller-owned rolling conversation
	// window prepended to the prompt and updated with the exchange.
	Window *ConversationWindow
}

// RetriesExhaustedError reports that the retry budget ran out. It wraps
// the last underlying error.
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("dispatch: retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }

// GenerationError reports a failed generation request with the stage it
// failed in.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("dispatch: generation failed during %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Dispatcher sends prompts to a base ContentGenerator with bounded retry
// and exponential backoff.
type Dispatcher struct {
	gen    llm.ContentGenerator
	logger *zap.Logger

	// sleep is swapped out in tests to record backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher wraps gen with retry dispatch. logger may be nil.
func NewDispatcher(gen llm.ContentGenerator, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{gen: gen, logger: logger, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Dispatch performs the call described by req, retrying transport and
// empty-response failures with exponential backoff. On success the
// returned text is the model output verbatim, or the extracted code
// blocks when req.ExtractCode is set.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if req.Window != nil {
		prompt = req.Window.Render(req.Prompt)
	}

	opts := llm.CallOptions{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= req.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := req.RetryDelay << (attempt - 1)
			d.logger.Debug("backing off before retry",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			if err := d.sleep(ctx, delay); err != nil {
				return "", &GenerationError{Stage: "backoff", Err: err}
			}
		}

		attempts++
		text, err := d.gen.Generate(ctx, prompt, opts)
		if err == nil {
			if req.ExtractCode {
				text = ExtractCode(text)
			}
			if req.Window != nil {
				req.Window.AddExchange(req.Prompt, text)
			}
			d.logger.Debug("generation succeeded",
				zap.Int("attempts", attempts),
				zap.Int("bytes", len(text)))
			return text, nil
		}

		lastErr = err
		d.logger.Warn("generation attempt failed",
			zap.Int("attempt", attempts),
			zap.Error(err))
	}

	return "", &RetriesExhaustedError{Attempts: attempts, Err: lastErr}
}
