package intent

import (
	"context"

	"github.com/mdombrov-33/go-promptguard/detector"
)

// Guard screens utterances for prompt-injection patterns. A flag is
// advisory: callers log it and carry on, the parse result is unaffected.
type Guard struct {
	detect func(ctx context.Context, text string) bool
}

// NewGuard returns a Guard using pattern and statistical detectors only,
// no LLM judge.
func NewGuard() *Guard {
	d := detector.New(
		detector.WithThreshold(0.7),
		detector.WithAllDetectors(),
		detector.WithMaxInputLength(4000),
	)
	return &Guard{detect: func(ctx context.Context, text string) bool {
		return !d.Detect(ctx, text).Safe
	}}
}

// Suspicious reports whether text looks like an injection attempt.
// A nil Guard never flags.
func (g *Guard) Suspicious(ctx context.Context, text string) bool {
	if g == nil || g.detect == nil || text == "" {
		return false
	}
	return g.detect(ctx, text)
}

// GuardFunc wraps an arbitrary detector, e.g. a stub in tests.
func GuardFunc(detect func(ctx context.Context, text string) bool) *Guard {
	return &Guard{detect: detect}
}
