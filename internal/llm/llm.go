package llm

import (
	"context"
	"errors"
	"fmt"
)

// Completer abstracts chat-completion providers behind the proxy.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single-prompt completion request.
type Request struct {
	Prompt   string
	JSONMode bool
}

// ErrInvalidResponse is returned when the provider answered 2xx without a
// usable first choice.
var ErrInvalidResponse = errors.New("invalid response structure")

// UpstreamError is a transport failure or non-2xx reply from the provider.
// Status is zero when no HTTP response was received.
type UpstreamError struct {
	Status  int
	Message string
	Details any
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Message)
	}
	return fmt.Sprintf("upstream http status %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
