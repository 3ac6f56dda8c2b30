package services

import (
	"context"
	"testing"
	"time"

	"github.com/vnkhanh/feedback-server/models"
)

func TestStartSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.module(t, "alice")

	sess := f.startSession(t, "alice", m.ID)
	if !sess.IsActive || sess.EndTime != nil {
		t.Fatalf("new session not active: %+v", sess)
	}
	if len(sess.JoinCode) != 6 {
		t.Fatalf("join code %q, want 6 chars", sess.JoinCode)
	}
	if !sess.StartTime.Equal(f.clock.Now()) {
		t.Fatalf("start time = %v", sess.StartTime)
	}

	_, err := f.sessions.Start(ctx, "alice", m.ID)
	expectCode(t, err, ErrorConflict)

	_, err = f.sessions.Start(ctx, "mallory", m.ID)
	expectCode(t, err, ErrorForbidden)

	_, err = f.sessions.Start(ctx, "alice", 9999)
	expectCode(t, err, ErrorNotFound)
}

func TestActiveSessionIndexBlocksSecondActiveRow(t *testing.T) {
	f := newFixture(t)
	m := f.module(t, "alice")
	f.startSession(t, "alice", m.ID)

	dup := models.Session{ModuleID: m.ID, StartTime: time.Now(), JoinCode: "ZZZZZZ", IsActive: true}
	err := f.db.Create(&dup).Error
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestStartRetriesOnJoinCodeCollision(t *testing.T) {
	f := newFixture(t)
	f.sessions.newCode = codeSequence("AAAAAA", "AAAAAA", "BBBBBB")

	first := f.startSession(t, "alice", f.module(t, "alice").ID)
	if first.JoinCode != "AAAAAA" {
		t.Fatalf("first code = %q", first.JoinCode)
	}

	second := f.startSession(t, "alice", f.module(t, "alice").ID)
	if second.JoinCode != "BBBBBB" {
		t.Fatalf("second code = %q, want BBBBBB", second.JoinCode)
	}
}

func TestStartGivesUpAfterAttempts(t *testing.T) {
	f := newFixture(t)
	f.sessions.newCode = codeSequence("AAAAAA")

	f.startSession(t, "alice", f.module(t, "alice").ID)

	other := f.module(t, "alice")
	_, err := f.sessions.Start(context.Background(), "alice", other.ID)
	if err == nil {
		t.Fatal("expected error when every code collides")
	}
	if _, ok := AsServiceError(err); ok {
		t.Fatalf("expected internal error, got %v", err)
	}
	if n := f.count(t, &models.Session{}); n != 1 {
		t.Fatalf("sessions = %d, want 1", n)
	}
}

func TestEndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.module(t, "alice")
	sess := f.startSession(t, "alice", m.ID)

	_, err := f.sessions.End(ctx, "mallory", sess.ID)
	expectCode(t, err, ErrorForbidden)

	f.clock.Advance(45 * time.Minute)
	ended, err := f.sessions.End(ctx, "alice", sess.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if ended.IsActive || ended.EndTime == nil || !ended.EndTime.Equal(f.clock.Now()) {
		t.Fatalf("session not ended: %+v", ended)
	}

	var stored models.Session
	if err := f.db.First(&stored, sess.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.IsActive || stored.EndTime == nil {
		t.Fatalf("stored session still active: %+v", stored)
	}

	_, err = f.sessions.End(ctx, "alice", sess.ID)
	expectCode(t, err, ErrorConflict)

	_, err = f.sessions.ResolveActive(ctx, sess.JoinCode)
	expectCode(t, err, ErrorNotFound)

	_, err = f.sessions.End(ctx, "alice", 4242)
	expectCode(t, err, ErrorNotFound)

	// The module can host a new session once the old one ended.
	f.startSession(t, "alice", m.ID)
}

func TestResolveActiveNormalizesCode(t *testing.T) {
	f := newFixture(t)
	f.sessions.newCode = codeSequence("ABC123")
	sess := f.startSession(t, "alice", f.module(t, "alice").ID)

	got, err := f.sessions.ResolveActive(context.Background(), "  abc123 ")
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if got.ID != sess.ID {
		t.Fatalf("resolved session %d, want %d", got.ID, sess.ID)
	}

	_, err = f.sessions.ResolveActive(context.Background(), "")
	expectCode(t, err, ErrorNotFound)
}

func TestListForModule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.module(t, "alice")

	first := f.startSession(t, "alice", m.ID)
	if _, err := f.sessions.End(ctx, "alice", first.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	f.clock.Advance(time.Hour)
	second := f.startSession(t, "alice", m.ID)

	sessions, err := f.sessions.ListForModule(ctx, "alice", m.ID)
	if err != nil {
		t.Fatalf("ListForModule: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != second.ID {
		t.Fatalf("unexpected order: %+v", sessions)
	}

	_, err = f.sessions.ListForModule(ctx, "mallory", m.ID)
	expectCode(t, err, ErrorForbidden)
}

func TestEndExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := f.startSession(t, "alice", f.module(t, "alice").ID)
	f.clock.Advance(3 * time.Hour)
	fresh := f.startSession(t, "alice", f.module(t, "alice").ID)
	f.clock.Advance(30 * time.Minute)

	n, err := f.sessions.EndExpired(ctx, 2*time.Hour)
	if err != nil {
		t.Fatalf("EndExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("ended %d sessions, want 1", n)
	}

	if _, err := f.sessions.ResolveActive(ctx, old.JoinCode); !HasCode(err, ErrorNotFound) {
		t.Fatalf("old session still resolvable: %v", err)
	}
	if _, err := f.sessions.ResolveActive(ctx, fresh.JoinCode); err != nil {
		t.Fatalf("fresh session ended: %v", err)
	}
}
