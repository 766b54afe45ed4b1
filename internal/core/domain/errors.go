package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingFields         = errors.New("missing required fields")
	ErrInvalidMobile         = errors.New("mobile number must have exactly 10 digits")
	ErrFormParseTimeout      = errors.New("form parsing timed out")
	ErrMissingToken          = errors.New("missing session token")
	ErrUnauthorized          = errors.New("session expired, please log in again")
	ErrSessionNotFound       = errors.New("session not found")
	ErrAccountNotActive      = errors.New("account is not active")
	ErrRoleMismatch          = errors.New("account role does not match")
	ErrUnknownRole           = errors.New("unknown role")
	ErrUnknownEndpointGroup  = errors.New("unknown endpoint group")
	ErrBackendUnreachable    = errors.New("could not reach server")
	ErrMalformedBackendReply = errors.New("unexpected response from server")
)

// BackendError is a non-2xx reply from the backend API. Message is the
// backend's own message when one could be extracted, otherwise the raw body text.
type BackendError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
	Payload    map[string]any
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// Unauthorized reports whether the backend rejected the bearer token.
func (e *BackendError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// RateLimited reports whether the backend throttled the call.
func (e *BackendError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// AsBackendError unwraps err into a *BackendError when it is one.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsUnauthorized reports whether err means the session token is no longer usable.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	be, ok := AsBackendError(err)
	return ok && be.Unauthorized()
}

// RateLimitMessage builds the user-facing message for a throttled request.
func RateLimitMessage(retryAfter time.Duration) string {
	secs := int(retryAfter.Round(time.Second).Seconds())
	if secs <= 0 {
		return "Too many requests. Please try again later."
	}
	return fmt.Sprintf("Too many requests. Please try again in %d seconds.", secs)
}

// ParseRetryAfter reads a Retry-After header in either delta-seconds or
// HTTP-date form. Unparseable or past values yield zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// AccountStatusError carries the status that blocked dashboard access.
type AccountStatusError struct {
	Status Status
}

func (e *AccountStatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAccountNotActive, e.Status)
}

func (e *AccountStatusError) Unwrap() error { return ErrAccountNotActive }
