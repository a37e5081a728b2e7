// Package credential picks the per-account integration token for a request.
//
// Sources are checked in a fixed order and the first non-empty value wins:
//
//  1. URL query parameter "token"
//  2. X-AI-Organiser-Token header
//  3. Authorization: Bearer <token>
//  4. process-wide fallback (env var or token file)
//
// A nil *Sources means the call did not arrive over HTTP; only the fallback
// is consulted then.
package credential

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Request-scoped source names.
const (
	QueryParam = "token"
	HeaderName = "X-AI-Organiser-Token"
)

// Tier identifies which source supplied a credential. Lower tiers are
// checked first.
type Tier int

const (
	TierNone Tier = iota
	TierQuery
	TierHeader
	TierBearer
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierQuery:
		return "query"
	case TierHeader:
		return "header"
	case TierBearer:
		return "bearer"
	case TierFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Sources holds the raw credential-bearing values of one inbound request.
type Sources struct {
	Query         string
	Header        string
	Authorization string
}

// FromRequest captures the credential sources of r. Returns nil for a nil request.
func FromRequest(r *http.Request) *Sources {
	if r == nil {
		return nil
	}
	return &Sources{
		Query:         r.URL.Query().Get(QueryParam),
		Header:        r.Header.Get(HeaderName),
		Authorization: r.Header.Get("Authorization"),
	}
}

// Fallback supplies the process-wide secret used when a request carries none.
type Fallback interface {
	Secret() string
}

// StaticSecret is a fixed fallback secret, typically read from the environment.
type StaticSecret string

// Secret returns the trimmed secret.
func (s StaticSecret) Secret() string { return strings.TrimSpace(string(s)) }

// Chain tries each fallback in order and returns the first non-empty secret.
type Chain []Fallback

// Secret returns the first non-empty secret in the chain.
func (c Chain) Secret() string {
	for _, fb := range c {
		if fb == nil {
			continue
		}
		if s := strings.TrimSpace(fb.Secret()); s != "" {
			return s
		}
	}
	return ""
}

// Resolved is a selected credential. Its String and LogValue never expose
// the secret.
type Resolved struct {
	Secret string
	Tier   Tier
}

func (r Resolved) String() string { return "credential(" + r.Tier.String() + ")" }

// LogValue implements slog.LogValuer.
func (r Resolved) LogValue() slog.Value { return slog.StringValue(r.Tier.String()) }

// Resolve returns the first non-empty credential from src, then fb.
// The bool is false when no source yields a value.
func Resolve(src *Sources, fb Fallback) (Resolved, bool) {
	if src != nil {
		if v := strings.TrimSpace(src.Query); v != "" {
			return Resolved{Secret: v, Tier: TierQuery}, true
		}
		if v := strings.TrimSpace(src.Header); v != "" {
			return Resolved{Secret: v, Tier: TierHeader}, true
		}
		if v := BearerToken(src.Authorization); v != "" {
			return Resolved{Secret: v, Tier: TierBearer}, true
		}
	}
	if fb != nil {
		if v := strings.TrimSpace(fb.Secret()); v != "" {
			return Resolved{Secret: v, Tier: TierFallback}, true
		}
	}
	return Resolved{}, false
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively; an empty token yields "".
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Resolver wraps Resolve with a fixed fallback and records which tier
// supplied each credential.
type Resolver struct {
	fallback Fallback
	logger   *slog.Logger
}

// NewResolver returns a Resolver. fallback may be nil.
func NewResolver(fallback Fallback, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{fallback: fallback, logger: logger}
}

// Resolve picks a credential for src.
func (r *Resolver) Resolve(ctx context.Context, src *Sources) (Resolved, bool) {
	res, ok := Resolve(src, r.fallback)
	if !ok {
		r.logger.InfoContext(ctx, "no credential found", "http", src != nil)
		return res, false
	}
	r.logger.DebugContext(ctx, "credential resolved", "tier", res.Tier.String())
	return res, true
}
