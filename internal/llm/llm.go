// Package llm provides text-generation clients behind a common
// ContentGenerator interface. Clients perform a single attempt per call;
// retry policy belongs to the dispatch layer that wraps them.
package llm

import (
	"context"
	"fmt"
)

// CallOptions carries per-call generation parameters. Zero values mean
// "use the client's default".
type CallOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// ContentGenerator is the single external text-generation operation the
// rest of the system depends on.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string, opts CallOptions) (string, error)
}

// TransportError reports a network-level or protocol-level failure: the
// call never produced a usable response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResponseError reports a call that succeeded at the transport level
// but returned no usable content.
type EmptyResponseError struct {
	Model string
}

func (e *EmptyResponseError) Error() string {
	if e.Model == "" {
		return "llm: empty response from model"
	}
	return fmt.Sprintf("llm: empty response from model %s", e.Model)
}
