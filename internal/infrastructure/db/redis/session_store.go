package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

const (
	fieldToken     = "userToken"
	fieldUser      = "user"
	fieldExpiresAt = "expires_at"
)

// SessionStore keeps sessions in Redis hashes that expire with the session.
// Key format: session:<id>
type SessionStore struct {
	client *redis.Client
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	key := s.key(sess.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, sessionFields(sess))
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return sessionFromFields(id, fields)
}

// UpdateUser rewrites only the cached user, leaving the key's TTL alone.
func (s *SessionStore) UpdateUser(ctx context.Context, id string, user json.RawMessage) error {
	key := s.key(id)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("update session user: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return s.client.HSet(ctx, key, fieldUser, string(user)).Err()
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}

func sessionFields(sess *domain.Session) map[string]any {
	return map[string]any{
		fieldToken:     sess.Token,
		fieldUser:      string(sess.User),
		fieldExpiresAt: strconv.FormatInt(sess.ExpiresAt.Unix(), 10),
	}
}

func sessionFromFields(id string, fields map[string]string) (*domain.Session, error) {
	token := fields[fieldToken]
	if token == "" {
		return nil, errors.New("session record has no token")
	}
	sess := &domain.Session{ID: id, Token: token}
	if u := fields[fieldUser]; u != "" {
		sess.User = json.RawMessage(u)
	}
	if raw := fields[fieldExpiresAt]; raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("session expiry %q: %w", raw, err)
		}
		sess.ExpiresAt = time.Unix(secs, 0).UTC()
	}
	return sess, nil
}
