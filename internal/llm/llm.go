// Package llm wraps the remote language-model backends behind a single
// request/response call that reports failure as a value.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 60 * time.Second

var (
	// ErrMissingCredential is returned when a backend needs an API key and
	// none was configured.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrUnavailable covers network failures, non-success responses and
	// malformed payloads.
	ErrUnavailable = errors.New("remote model unavailable")
	// ErrTimeout is returned when a call exceeds its deadline.
	ErrTimeout = errors.New("remote model timed out")
	// ErrDegenerate marks a reply that carries an error marker instead of
	// content.
	ErrDegenerate = errors.New("degenerate remote output")
	// ErrEmptyResponse is returned by backends when the service answered
	// without any candidate text.
	ErrEmptyResponse = errors.New("no response generated")
)

// Model is a remote text-generation service.
type Model interface {
	Query(ctx context.Context, prompt string, maxTokens int) (string, error)
	Name() string
}

// Result is the outcome of one remote call: either Text or a non-nil Err
// that wraps one of ErrUnavailable, ErrTimeout or ErrDegenerate.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the call produced usable text.
func (r Result) OK() bool { return r.Err == nil }

// Outcome returns a short label for metrics and logs.
func (r Result) Outcome() string {
	switch {
	case r.Err == nil:
		return "ok"
	case errors.Is(r.Err, ErrTimeout):
		return "timeout"
	case errors.Is(r.Err, ErrDegenerate):
		return "degenerate"
	default:
		return "unavailable"
	}
}

// errorMarker matches the text some proxies and older clients return in
// place of an error status.
var errorMarker = regexp.MustCompile(`^\s*(?:Error(?: querying [\w .-]+)?:|No response generated\s*$)`)

// IsErrorText reports whether text is an error message rather than content.
func IsErrorText(text string) bool {
	return errorMarker.MatchString(text)
}

// Call sends prompt to m with a deadline of timeout (no deadline if timeout
// is zero). It never panics and never returns a bare error: every failure is
// folded into the Result.
func Call(ctx context.Context, m Model, prompt string, maxTokens int, timeout time.Duration) (res Result) {
	if m == nil {
		return Result{Err: fmt.Errorf("%w: no model configured", ErrUnavailable)}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("%w: %s panicked: %v", ErrUnavailable, m.Name(), r)}
		}
	}()

	text, err := m.Query(ctx, prompt, maxTokens)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (err != nil && ctx.Err() == context.DeadlineExceeded):
		return Result{Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	case err != nil:
		return Result{Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	case IsErrorText(text):
		return Result{Err: fmt.Errorf("%w: %s", ErrDegenerate, firstLine(text))}
	}
	return Result{Text: strings.TrimSpace(text)}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Offline is a Model that always fails, forcing every feature onto its
// local fallback.
type Offline struct{}

// Query implements Model.
func (Offline) Query(context.Context, string, int) (string, error) {
	return "", errors.New("offline mode")
}

// Name implements Model.
func (Offline) Name() string { return "offline" }
