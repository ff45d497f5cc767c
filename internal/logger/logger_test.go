package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize_HashesSessionID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromCore(core)

	l.Warn("degenerate item", "session_id", "abc-123", "question_id", "q1", "api_token", "s3cr3t")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()

	sid, _ := fields["session_id"].(string)
	if !strings.HasPrefix(sid, "hash:") || strings.Contains(sid, "abc-123") {
		t.Errorf("session_id = %q, want hashed value", sid)
	}
	if fields["question_id"] != "q1" {
		t.Errorf("question_id = %v, want q1", fields["question_id"])
	}
	if fields["api_token"] != "[REDACTED]" {
		t.Errorf("api_token = %v, want [REDACTED]", fields["api_token"])
	}
}

func TestSanitize_StableHash(t *testing.T) {
	a := hashValue("session-1")
	b := hashValue("session-1")
	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if hashValue("session-2") == a {
		t.Error("different ids hashed to the same value")
	}
	if hashValue("") != "" {
		t.Error("empty value should stay empty")
	}
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewFromCore(core).With("component", "session")

	l.Debug("dropped")
	l.Info("kept")

	if logs.Len() != 1 {
		t.Fatalf("got %d entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["component"]; got != "session" {
		t.Errorf("component = %v, want session", got)
	}
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "off"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.Info("hello")
	}

	if _, err := NewWithOptions(Options{Mode: "dev", Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
