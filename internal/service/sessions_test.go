package service

import (
	"context"
	"testing"
	"time"
)

func TestSessions_Get(t *testing.T) {
	sessions := NewSessions(newFakeMachine(10), acceptingProvider(), &mockJournal{}, &mockLogger{}, time.Hour)

	a := sessions.Get("a")
	if a != sessions.Get("a") {
		t.Error("Expected the same service for the same session id")
	}
	b := sessions.Get("b")
	if a == b {
		t.Error("Expected different services for different session ids")
	}
	if sessions.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", sessions.Len())
	}

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !a.View().Connected {
		t.Error("Expected session a to be connected")
	}
	if b.View().Connected {
		t.Error("Connecting one session must not connect another")
	}
}

func TestSessions_EvictsIdle(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(newFakeMachine(10), acceptingProvider(), &mockJournal{}, &mockLogger{}, 24*time.Hour)
	sessions.now = func() time.Time { return clock }

	idle := sessions.Get("idle")
	active := sessions.Get("active")

	clock = clock.Add(20 * time.Hour)
	sessions.Get("active")

	clock = clock.Add(10 * time.Hour)
	sessions.Get("new")

	if sessions.Len() != 2 {
		t.Fatalf("Expected 2 sessions after eviction, got %d", sessions.Len())
	}
	if sessions.Get("active") != active {
		t.Error("Expected the recently used session to survive")
	}
	if sessions.Get("idle") == idle {
		t.Error("Expected the idle session to be replaced by a fresh one")
	}
}

func TestSessions_NoIdleLimit(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(newFakeMachine(10), acceptingProvider(), &mockJournal{}, &mockLogger{}, 0)
	sessions.now = func() time.Time { return clock }

	sessions.Get("a")
	clock = clock.Add(1000 * time.Hour)
	sessions.Get("b")

	if sessions.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", sessions.Len())
	}
}
