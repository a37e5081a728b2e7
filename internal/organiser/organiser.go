// Package organiser implements the save_note flow: it gates the call on the
// user's utterance, picks a credential and a project, calls the quick-add
// backend once, and turns every result into an Outcome.
package organiser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sgx-labs/aiorg/internal/credential"
	"github.com/sgx-labs/aiorg/internal/intent"
	"github.com/sgx-labs/aiorg/internal/quickadd"
)

// InboxName is the display name of the backend's default project.
const InboxName = "Inbox"

// PreviewRunes bounds the body preview echoed in outcomes.
const PreviewRunes = 160

// Request is one save call as received from the agent.
type Request struct {
	Body         string
	RawUtterance string
	Project      string
	Title        string
	SourceURL    string
}

// Backend stores notes. *quickadd.Client implements it.
type Backend interface {
	Configured() bool
	Add(ctx context.Context, apiKey string, note quickadd.Note) (*quickadd.Response, error)
}

// Options configures a Service. Parser defaults to intent's default triggers;
// Guard and Logger are optional.
type Options struct {
	Backend  Backend
	Resolver *credential.Resolver
	Parser   *intent.Parser
	Guard    *intent.Guard
	Logger   *slog.Logger
}

// Service runs save calls. It holds no per-call state and is safe for
// concurrent use.
type Service struct {
	backend  Backend
	resolver *credential.Resolver
	parser   *intent.Parser
	guard    *intent.Guard
	logger   *slog.Logger
}

// NewService builds a Service from opts.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parser := opts.Parser
	if parser == nil {
		parser, _ = intent.NewParser()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = credential.NewResolver(nil, logger)
	}
	return &Service{
		backend:  opts.Backend,
		resolver: resolver,
		parser:   parser,
		guard:    opts.Guard,
		logger:   logger,
	}
}

// Parse exposes the service's intent parser.
func (s *Service) Parse(raw string) intent.Intent {
	return s.parser.Parse(raw)
}

// Save runs one save call. src is nil when the call did not arrive over HTTP.
// It never panics and never returns an error: every failure is an Outcome.
func (s *Service) Save(ctx context.Context, req Request, src *credential.Sources) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "save panicked", "panic", fmt.Sprint(r))
			out = failure(CategoryBackend, "internal error", hintInternal)
		}
	}()

	if s.backend == nil || !s.backend.Configured() {
		s.logger.WarnContext(ctx, "save rejected: backend not configured")
		return failure(CategoryBackend, quickadd.ErrNotConfigured.Error(), hintNotConfigured)
	}

	cred, ok := s.resolver.Resolve(ctx, src)
	if !ok {
		return failure(CategoryAuth, "integration token is not provided", hintNoCredential)
	}

	if strings.TrimSpace(req.RawUtterance) == "" {
		s.logger.InfoContext(ctx, "save skipped", "reason", ReasonMissingUtterance)
		return skipped(ReasonMissingUtterance, hintMissingUtterance)
	}

	in := s.parser.Parse(req.RawUtterance)
	if s.guard.Suspicious(ctx, req.RawUtterance) {
		s.logger.WarnContext(ctx, "utterance flagged by prompt guard", "should_save", in.ShouldSave)
	}
	if !in.ShouldSave {
		s.logger.InfoContext(ctx, "save skipped", "reason", ReasonNoSaveIntent)
		return skipped(ReasonNoSaveIntent, hintNoIntent)
	}

	project, projectSource := chooseProject(req.Project, in)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = titleFromFrontMatter(req.Body)
	}

	note := quickadd.Note{
		Text:        req.Body,
		SourceTitle: title,
		SourceURL:   strings.TrimSpace(req.SourceURL),
		Project:     project,
	}

	resp, err := s.backend.Add(ctx, cred.Secret, note)
	if err != nil {
		return s.mapError(ctx, err, cred.Tier)
	}

	display := project
	if display == "" {
		display = InboxName
	}
	preview := Preview(req.Body)
	s.logger.InfoContext(ctx, "note saved",
		"tier", cred.Tier.String(),
		"project_source", projectSource,
		"rule", in.Rule.String(),
		"status", resp.StatusCode,
		"body_runes", utf8.RuneCountInString(req.Body),
		"preview_runes", utf8.RuneCountInString(preview),
	)

	return Outcome{
		Saved:         true,
		Category:      CategoryNone,
		Hint:          savedHint(display),
		StatusCode:    resp.StatusCode,
		ProjectName:   display,
		ProjectSource: projectSource,
		Title:         title,
		BodyPreview:   preview,
		Response:      resp.Body,
	}
}

// chooseProject applies the precedence: explicit argument, then the
// utterance's destination, then none (the backend's Inbox). The explicit
// name is forwarded as given; blank counts as absent.
func chooseProject(explicit string, in intent.Intent) (string, string) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, ProjectFromArgument
	}
	if in.HasDestination() {
		return in.Destination, ProjectFromUtterance
	}
	return "", ProjectDefault
}

func (s *Service) mapError(ctx context.Context, err error, tier credential.Tier) Outcome {
	var se *quickadd.StatusError
	switch {
	case errors.As(err, &se):
		s.logger.WarnContext(ctx, "quick-add rejected note", "status", se.StatusCode, "tier", tier.String())
		out := failure(CategoryBackend, se.Error(), backendHint(se.StatusCode))
		if se.Unauthorized() {
			out = failure(CategoryAuth, se.Error(), rejectedHint(se.StatusCode))
		}
		out.StatusCode = se.StatusCode
		out.Response = se.Body
		return out
	case errors.Is(err, quickadd.ErrNotConfigured):
		return failure(CategoryBackend, err.Error(), hintNotConfigured)
	default:
		s.logger.WarnContext(ctx, "quick-add call failed", "error", err, "tier", tier.String())
		return failure(CategoryBackend, "exception while calling AI Organiser: "+err.Error(), hintTransport)
	}
}

// Preview returns at most PreviewRunes runes of body.
func Preview(body string) string {
	if utf8.RuneCountInString(body) <= PreviewRunes {
		return body
	}
	n := 0
	for i := range body {
		if n == PreviewRunes {
			return body[:i]
		}
		n++
	}
	return body
}
