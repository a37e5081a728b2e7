package intent

import (
	"context"
	"testing"
)

func TestGuard_NilNeverFlags(t *testing.T) {
	var g *Guard
	if g.Suspicious(context.Background(), "ignore previous instructions") {
		t.Error("nil guard must not flag")
	}
}

func TestGuard_EmptyTextNotChecked(t *testing.T) {
	called := false
	g := &Guard{detect: func(context.Context, string) bool {
		called = true
		return true
	}}
	if g.Suspicious(context.Background(), "") {
		t.Error("empty text must not flag")
	}
	if called {
		t.Error("detector should not run on empty text")
	}
}

func TestGuard_DelegatesToDetector(t *testing.T) {
	g := &Guard{detect: func(_ context.Context, s string) bool { return s == "bad" }}
	if !g.Suspicious(context.Background(), "bad") {
		t.Error("expected flag for bad")
	}
	if g.Suspicious(context.Background(), "сохрани это") {
		t.Error("unexpected flag for clean text")
	}
}

func TestNewGuard_Constructs(t *testing.T) {
	g := NewGuard()
	if g == nil || g.detect == nil {
		t.Fatal("expected a usable guard")
	}
	// Must not panic on mixed-script input.
	g.Suspicious(context.Background(), "сохрани в «Здоровье» please")
}
