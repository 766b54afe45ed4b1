package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-only-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestSessionService_Start_UsesTokenExpiry(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, 24*time.Hour, zerolog.Nop())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	exp := now.Add(2 * time.Hour)
	sess, err := svc.Start(context.Background(), signedToken(t, exp), []byte(`{"role":"coach"}`))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if sess.ID == "" {
		t.Fatalf("expected session id")
	}
	if !sess.ExpiresAt.Equal(exp.Truncate(time.Second)) {
		t.Fatalf("expected expiry %v, got %v", exp, sess.ExpiresAt)
	}
	if got := store.ttls[sess.ID]; got != 2*time.Hour {
		t.Fatalf("expected ttl 2h, got %v", got)
	}
}

func TestSessionService_Start_OpaqueTokenFallsBackToTTL(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, 3*time.Hour, zerolog.Nop())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sess, err := svc.Start(context.Background(), "opaque-token", nil)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !sess.ExpiresAt.Equal(now.Add(3 * time.Hour)) {
		t.Fatalf("expected ttl expiry, got %v", sess.ExpiresAt)
	}
}

func TestSessionService_Start_RejectsExpiredToken(t *testing.T) {
	svc := NewSessionService(newMemSessionStore(), time.Hour, zerolog.Nop())
	_, err := svc.Start(context.Background(), signedToken(t, time.Now().Add(-time.Minute)), nil)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSessionService_Start_MissingToken(t *testing.T) {
	svc := NewSessionService(newMemSessionStore(), time.Hour, zerolog.Nop())
	if _, err := svc.Start(context.Background(), "", nil); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestSessionService_Resolve_DropsExpired(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, time.Hour, zerolog.Nop())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sess, err := svc.Start(context.Background(), "opaque", nil)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), sess.ID); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := svc.Resolve(context.Background(), sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, ok := store.sessions[sess.ID]; ok {
		t.Fatalf("expected expired session to be deleted")
	}
}

func TestSessionService_RememberAndEnd(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, time.Hour, zerolog.Nop())
	ctx := context.Background()

	sess, _ := svc.Start(ctx, "opaque", []byte(`{"status":"pending"}`))
	if err := svc.Remember(ctx, sess.ID, []byte(`{"status":"active"}`)); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}
	got, _ := svc.Resolve(ctx, sess.ID)
	if string(got.User) != `{"status":"active"}` {
		t.Fatalf("expected refreshed user, got %s", got.User)
	}

	if err := svc.End(ctx, sess.ID); err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if _, err := svc.Resolve(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
}
