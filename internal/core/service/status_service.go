package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/metrics"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

type StatusService struct {
	backend  ports.BackendClient
	interval time.Duration
	logger   zerolog.Logger
}

func NewStatusService(backend ports.BackendClient, interval time.Duration, logger zerolog.Logger) *StatusService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatusService{backend: backend, interval: interval, logger: logger}
}

func (s *StatusService) Current(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	user, _, err := s.backend.Me(ctx, token)
	if err != nil {
		return nil, unauthorizedOr(err)
	}
	metrics.StatusPollsTotal.WithLabelValues(string(user.Status)).Inc()
	return user, nil
}

// Watch emits the current user, then re-polls on a fixed interval for as long
// as the account stays pending. It returns nil once the status changes or ctx
// is done. Transient backend failures are skipped; a 401 stops the watch.
func (s *StatusService) Watch(ctx context.Context, token string, emit func(*domain.User) error) error {
	user, err := s.Current(ctx, token)
	if err != nil {
		return err
	}
	if err := emit(user); err != nil {
		return err
	}
	if user.Status != domain.StatusPending {
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			next, err := s.Current(ctx, token)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if errors.Is(err, domain.ErrUnauthorized) {
					return err
				}
				s.logger.Warn().Err(err).Msg("status poll failed")
				continue
			}
			if err := emit(next); err != nil {
				return err
			}
			if next.Status != domain.StatusPending {
				return nil
			}
		}
	}
}
