package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

type stubBackend struct {
	registerFn  func(ctx context.Context, in ports.RegisterUserInput) (*ports.RegistrationResult, error)
	profileFn   func(ctx context.Context, token string, role domain.Role, in ports.ProfileInput) (map[string]any, error)
	loginFn     func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	meFn        func(ctx context.Context, token string) (*domain.User, map[string]any, error)
	dashboardFn func(ctx context.Context, token string, role domain.Role) (map[string]any, error)

	mu            sync.Mutex
	profileCalls  int
	dashboardHits int
}

func (s *stubBackend) RegisterUser(ctx context.Context, in ports.RegisterUserInput) (*ports.RegistrationResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubBackend) AttachRoleProfile(ctx context.Context, token string, role domain.Role, in ports.ProfileInput) (map[string]any, error) {
	s.mu.Lock()
	s.profileCalls++
	s.mu.Unlock()
	return s.profileFn(ctx, token, role, in)
}

func (s *stubBackend) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubBackend) Me(ctx context.Context, token string) (*domain.User, map[string]any, error) {
	return s.meFn(ctx, token)
}

func (s *stubBackend) Dashboard(ctx context.Context, token string, role domain.Role) (map[string]any, error) {
	s.mu.Lock()
	s.dashboardHits++
	s.mu.Unlock()
	return s.dashboardFn(ctx, token, role)
}

func (s *stubBackend) Forward(context.Context, ports.ForwardRequest) (*ports.ForwardResponse, error) {
	return nil, nil
}

func (s *stubBackend) Ping(context.Context) error { return nil }

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	ttls     map[string]time.Duration
	saveErr  error
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*domain.Session{}, ttls: map[string]time.Duration{}}
}

func (m *memSessionStore) Save(_ context.Context, s *domain.Session, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.sessions[s.ID] = &clone
	m.ttls[s.ID] = ttl
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *memSessionStore) UpdateUser(_ context.Context, id string, user json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.User = user
	return nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type recordingSink struct {
	mu      sync.Mutex
	records []domain.IncompleteProfile
}

func (r *recordingSink) Enqueue(rec domain.IncompleteProfile) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}
