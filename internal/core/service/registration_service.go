package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/metrics"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

// baseFields go to the JSON register call; everything else belongs to the role profile.
var baseFields = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"mobile":   {},
	"role":     {},
}

// RegistrationService registers the base account and then, for roles that
// have one, attaches the role profile with the token the first call issued.
type RegistrationService struct {
	backend ports.BackendClient
	audit   ports.IncompleteProfileSink
	now     func() time.Time
	logger  zerolog.Logger
}

func NewRegistrationService(backend ports.BackendClient, audit ports.IncompleteProfileSink, logger zerolog.Logger) *RegistrationService {
	return &RegistrationService{backend: backend, audit: audit, now: time.Now, logger: logger}
}

func (s *RegistrationService) Register(ctx context.Context, in ports.RegistrationInput) (*ports.RegistrationOutput, error) {
	role := string(in.Role)

	name := strings.TrimSpace(firstValue(in.Fields, "name"))
	email := domain.NormalizeEmail(firstValue(in.Fields, "email"))
	password := firstValue(in.Fields, "password")
	rawMobile := firstValue(in.Fields, "mobile")
	if name == "" || email == "" || password == "" || strings.TrimSpace(rawMobile) == "" {
		metrics.RegistrationsTotal.WithLabelValues(role, "invalid").Inc()
		return nil, domain.ErrMissingFields
	}

	mobile, err := domain.NormalizeMobile(rawMobile)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(role, "invalid").Inc()
		return nil, err
	}

	res, err := s.backend.RegisterUser(ctx, ports.RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Mobile:   mobile,
		Role:     in.Role,
	})
	if err != nil {
		outcome := "rejected"
		if errors.Is(err, domain.ErrBackendUnreachable) {
			outcome = "unreachable"
		}
		metrics.RegistrationsTotal.WithLabelValues(role, outcome).Inc()
		return nil, err
	}

	out := &ports.RegistrationOutput{Status: res.Status, Payload: res.Payload, Token: res.Token}
	if !in.Role.HasProfile() {
		metrics.RegistrationsTotal.WithLabelValues(role, "registered").Inc()
		return out, nil
	}

	base := domain.IncompleteProfile{Email: email, Mobile: mobile, Role: in.Role}

	if res.Token == "" {
		s.logger.Warn().Str("email", domain.MaskEmail(email)).Str("role", role).Msg("registration issued no token, profile skipped")
		base.Stage = domain.StageProfileNoToken
		base.Reason = "backend issued no token"
		s.incomplete(out, base, "no session token was issued")
		return out, nil
	}

	profile, err := s.backend.AttachRoleProfile(ctx, res.Token, in.Role, ports.ProfileInput{
		Fields: profileFields(in.Fields),
		Files:  in.Files,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("email", domain.MaskEmail(email)).Str("role", role).Msg("role profile not attached")
		base.Stage, base.BackendStatus = profileStage(err)
		base.Reason = err.Error()
		s.incomplete(out, base, reasonText(err))
		return out, nil
	}

	out.Payload = withKey(out.Payload, in.Role.ProfileKey(), profileData(profile))
	out.ProfileAttached = true
	metrics.RegistrationsTotal.WithLabelValues(role, "profile_attached").Inc()
	return out, nil
}

// incomplete reports a profile step that did not happen: the base payload
// gains a warning and the account is queued for follow-up.
func (s *RegistrationService) incomplete(out *ports.RegistrationOutput, rec domain.IncompleteProfile, reason string) {
	metrics.RegistrationsTotal.WithLabelValues(string(rec.Role), "profile_failed").Inc()
	out.Payload = withKey(out.Payload, "warning",
		fmt.Sprintf("Account created, but the %s profile could not be saved: %s. Please complete your profile after logging in.", rec.Role, reason))
	rec.RecordedAt = s.now().UTC()
	if s.audit != nil {
		s.audit.Enqueue(rec)
	}
}

func profileStage(err error) (string, int) {
	if be, ok := domain.AsBackendError(err); ok {
		return domain.StageProfileRejected, be.Status
	}
	if errors.Is(err, domain.ErrMalformedBackendReply) {
		return domain.StageProfileMalformed, 0
	}
	if errors.Is(err, domain.ErrBackendUnreachable) {
		return domain.StageProfileUnreachable, 0
	}
	return domain.StageProfileRejected, 0
}

func reasonText(err error) string {
	if be, ok := domain.AsBackendError(err); ok {
		return be.Message
	}
	if errors.Is(err, domain.ErrMalformedBackendReply) {
		return domain.ErrMalformedBackendReply.Error()
	}
	return domain.ErrBackendUnreachable.Error()
}

func profileFields(fields map[string][]string) map[string][]string {
	out := make(map[string][]string, len(fields))
	for k, v := range fields {
		if _, base := baseFields[k]; base {
			continue
		}
		out[k] = v
	}
	return out
}

// profileData unwraps the {data: ...} envelope when the backend used one.
func profileData(payload map[string]any) any {
	if data, ok := payload["data"]; ok && data != nil {
		return data
	}
	return payload
}

// withKey returns a copy of payload with key set, leaving the original intact.
func withKey(payload map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out[key] = value
	return out
}

func firstValue(fields map[string][]string, key string) string {
	if v := fields[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
