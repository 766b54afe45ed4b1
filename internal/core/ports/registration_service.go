package ports

import (
	"context"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

// RegistrationInput carries a registration form as received by the website.
// Fields holds every submitted value, base fields included.
type RegistrationInput struct {
	Role   domain.Role
	Fields map[string][]string
	Files  []FileUpload
}

// RegistrationOutput is returned to the browser unchanged apart from the
// merged role profile or the warning.
type RegistrationOutput struct {
	Status  int
	Payload map[string]any
	Token   string
	// ProfileAttached is false when the role profile step was skipped or failed.
	ProfileAttached bool
}

type RegistrationService interface {
	Register(ctx context.Context, in RegistrationInput) (*RegistrationOutput, error)
}

// IncompleteProfileSink accepts records of partial registrations for later follow-up.
type IncompleteProfileSink interface {
	Enqueue(rec domain.IncompleteProfile)
}

// IncompleteProfileRepository persists partial registrations.
type IncompleteProfileRepository interface {
	Record(ctx context.Context, rec *domain.IncompleteProfile) error
}
