package ports

import (
	"context"
	"io"
	"net/http"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

// RegisterUserInput is the JSON body of the base registration call.
type RegisterUserInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Mobile   string      `json:"mobile"`
	Role     domain.Role `json:"role"`
}

// RegistrationResult is a successful base registration as the backend sent it.
type RegistrationResult struct {
	Status  int
	Payload map[string]any
	// Token is empty when the backend did not issue one.
	Token string
}

// FileUpload is an uploaded file already read into memory.
type FileUpload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// ProfileInput is the multipart body of the role profile call.
type ProfileInput struct {
	Fields map[string][]string
	Files  []FileUpload
}

// LoginResult is a successful login.
type LoginResult struct {
	Status  int
	Token   string
	User    *domain.User
	Payload map[string]any
}

// ForwardRequest is an authenticated call passed through to the backend as-is.
type ForwardRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Token       string
	ContentType string
	Body        io.Reader
}

// ForwardResponse is the backend's untouched reply to a ForwardRequest.
type ForwardResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// BackendClient is the website's only view of the backend REST API.
//
// Every method except Forward returns a *domain.BackendError for non-2xx replies
// and an error wrapping domain.ErrBackendUnreachable for transport failures.
type BackendClient interface {
	RegisterUser(ctx context.Context, in RegisterUserInput) (*RegistrationResult, error)
	AttachRoleProfile(ctx context.Context, token string, role domain.Role, in ProfileInput) (map[string]any, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, token string) (*domain.User, map[string]any, error)
	Dashboard(ctx context.Context, token string, role domain.Role) (map[string]any, error)
	Forward(ctx context.Context, req ForwardRequest) (*ForwardResponse, error)
	Ping(ctx context.Context) error
}
