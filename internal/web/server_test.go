package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sgx-labs/aiorg/internal/config"
	"github.com/sgx-labs/aiorg/internal/credential"
	"github.com/sgx-labs/aiorg/internal/organiser"
	"github.com/sgx-labs/aiorg/internal/quickadd"
)

type stubBackend struct {
	calls int
	key   string
	note  quickadd.Note
}

func (b *stubBackend) Configured() bool { return true }

func (b *stubBackend) Add(ctx context.Context, apiKey string, note quickadd.Note) (*quickadd.Response, error) {
	b.calls++
	b.key = apiKey
	b.note = note
	return &quickadd.Response{StatusCode: 200, Body: map[string]any{"ok": true}}, nil
}

func newTestHandler(t *testing.T, cfg *config.Config, b *stubBackend, fallback string) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := organiser.NewService(organiser.Options{
		Backend:  b,
		Resolver: credential.NewResolver(credential.StaticSecret(fallback), logger),
		Logger:   logger,
	})
	return NewHandler(cfg, svc, logger, "vtest"), &logs
}

func TestHealth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend.AnonKey = "anon"
	h, _ := newTestHandler(t, cfg, &stubBackend{}, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "ok" || payload["version"] != "vtest" || payload["backend_configured"] != true {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestMetadata_DerivedResource(t *testing.T) {
	h, _ := newTestHandler(t, config.DefaultConfig(), &stubBackend{}, "")

	req := httptest.NewRequest(http.MethodGet, MetadataPath, nil)
	req.Host = "organiser.example"
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var md resourceMetadata
	if err := json.NewDecoder(rr.Body).Decode(&md); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if md.Resource != "https://organiser.example" {
		t.Errorf("resource = %q", md.Resource)
	}
	if len(md.AuthorizationServers) != 1 || md.AuthorizationServers[0] != config.DefaultAuthServer {
		t.Errorf("authorization_servers = %v", md.AuthorizationServers)
	}
	if len(md.ScopesSupported) != 1 || md.ScopesSupported[0] != "notes:write" {
		t.Errorf("scopes_supported = %v", md.ScopesSupported)
	}
	if md.ResourceDocumentation != config.DefaultDocsURL {
		t.Errorf("resource_documentation = %q", md.ResourceDocumentation)
	}
}

func TestMetadata_PublicURLWins(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.PublicURL = "https://mcp.example.org"
	h, _ := newTestHandler(t, cfg, &stubBackend{}, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, MetadataPath, nil))
	if !strings.Contains(rr.Body.String(), `"resource":"https://mcp.example.org"`) {
		t.Errorf("expected configured public url, got %s", rr.Body.String())
	}
}

func TestMetadata_RejectsPost(t *testing.T) {
	h, _ := newTestHandler(t, config.DefaultConfig(), &stubBackend{}, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, MetadataPath, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestUnknownPath404(t *testing.T) {
	h, _ := newTestHandler(t, config.DefaultConfig(), &stubBackend{}, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestAccessLog_OmitsQueryString(t *testing.T) {
	h, logs := newTestHandler(t, config.DefaultConfig(), &stubBackend{}, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz?token=super-secret", nil))

	out := logs.String()
	if !strings.Contains(out, "http.request") || !strings.Contains(out, "path=/healthz") {
		t.Errorf("expected access log line, got %s", out)
	}
	if strings.Contains(out, "super-secret") {
		t.Error("access log leaked the query string")
	}
}

func connectHTTP(t *testing.T, endpoint string, client *http.Client) *mcp.ClientSession {
	t.Helper()
	c := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := c.Connect(context.Background(), &mcp.StreamableClientTransport{
		Endpoint:   endpoint,
		HTTPClient: client,
	}, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	headers http.Header
	base    http.RoundTripper
}

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range h.headers {
		r.Header[k] = v
	}
	return h.base.RoundTrip(r)
}

func TestMCPEndpoint_QueryTokenReachesBackend(t *testing.T) {
	b := &stubBackend{}
	h, logs := newTestHandler(t, config.DefaultConfig(), b, "env-token")
	ts := httptest.NewServer(h)
	defer ts.Close()

	cs := connectHTTP(t, ts.URL+"/mcp?token=query-token", ts.Client())
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "ai_organiser_save",
		Arguments: map[string]any{
			"body":          "note body",
			"raw_utterance": "save this",
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, `"saved": true`) {
		t.Fatalf("expected saved, got %s", text)
	}
	if b.key != "query-token" {
		t.Errorf("expected query token to win over fallback, got %q", b.key)
	}
	if strings.Contains(logs.String(), "query-token") {
		t.Error("logs leaked the query token")
	}
}

func TestMCPEndpoint_HeaderTokenPerRequest(t *testing.T) {
	b := &stubBackend{}
	h, _ := newTestHandler(t, config.DefaultConfig(), b, "")
	ts := httptest.NewServer(h)
	defer ts.Close()

	client := &http.Client{Transport: headerTransport{
		headers: http.Header{"X-Ai-Organiser-Token": []string{"header-token"}},
		base:    http.DefaultTransport,
	}}
	cs := connectHTTP(t, ts.URL+"/mcp", client)
	if _, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "ai_organiser_save",
		Arguments: map[string]any{"body": "x", "raw_utterance": "сохрани это"},
	}); err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if b.key != "header-token" {
		t.Errorf("expected header token, got %q", b.key)
	}

	// A second client without credentials must not inherit the first one's.
	cs2 := connectHTTP(t, ts.URL+"/mcp", ts.Client())
	res, err := cs2.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "ai_organiser_save",
		Arguments: map[string]any{"body": "x", "raw_utterance": "сохрани это"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if text := res.Content[0].(*mcp.TextContent).Text; !strings.Contains(text, "auth_error") {
		t.Errorf("expected auth_error without credentials, got %s", text)
	}
	if b.calls != 1 {
		t.Errorf("expected one backend call, got %d", b.calls)
	}
}

func TestServeListener_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "ok") })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	done := make(chan error, 1)
	go func() { done <- serveListener(ctx, ln, h, logger) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_BadAddress(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := Serve(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), logger); err == nil {
		t.Error("expected listen error")
	}
}
