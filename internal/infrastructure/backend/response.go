package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

// reply is a fully read backend response. The body is read once as text and
// only then parsed, so error paths never consume the stream twice.
type reply struct {
	status  int
	header  http.Header
	raw     []byte
	payload map[string]any
	// isJSON is false when the body was not a JSON object; payload then holds
	// the raw text under "message".
	isJSON bool
}

func newReply(resp *http.Response, raw []byte) *reply {
	r := &reply{status: resp.StatusCode, header: resp.Header, raw: raw}
	r.payload, r.isJSON = decodePayload(raw)
	return r
}

func (r *reply) ok() bool {
	return r.status >= 200 && r.status < 300
}

// err converts a non-2xx reply into a *domain.BackendError.
func (r *reply) err() error {
	if r.ok() {
		return nil
	}
	be := &domain.BackendError{
		Status:     r.status,
		Payload:    r.payload,
		RetryAfter: domain.ParseRetryAfter(r.header.Get("Retry-After"), time.Now()),
	}
	if r.status == http.StatusTooManyRequests {
		be.Message = domain.RateLimitMessage(be.RetryAfter)
	} else {
		be.Message = messageOf(r.payload, r.status)
	}
	return be
}

// object returns the JSON payload of a successful reply, or an error when the
// reply failed or was not JSON.
func (r *reply) object(endpoint string) (map[string]any, error) {
	if err := r.err(); err != nil {
		return nil, err
	}
	if !r.isJSON {
		return nil, fmt.Errorf("%s: %w", endpoint, domain.ErrMalformedBackendReply)
	}
	return r.payload, nil
}

func decodePayload(raw []byte) (map[string]any, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}, true
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil || payload == nil {
		return map[string]any{"message": string(trimmed)}, false
	}
	return payload, true
}

// messageOf extracts the backend's human message from the usual envelopes:
// {message}, {error: "..."}, {error: {message}}.
func messageOf(payload map[string]any, status int) string {
	if msg, ok := payload["message"].(string); ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	switch e := payload["error"].(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// tokenOf finds the bearer token in {token} or {data: {token}}.
func tokenOf(payload map[string]any) string {
	if tok, ok := payload["token"].(string); ok && tok != "" {
		return tok
	}
	if data, ok := payload["data"].(map[string]any); ok {
		if tok, ok := data["token"].(string); ok {
			return tok
		}
	}
	return ""
}

// userOf finds the user record in {user}, {data: {user}} or {data}.
func userOf(payload map[string]any) (*domain.User, bool) {
	candidates := []any{payload["user"]}
	if data, ok := payload["data"].(map[string]any); ok {
		candidates = append(candidates, data["user"], data)
	}
	candidates = append(candidates, payload)

	for _, c := range candidates {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if u, ok := decodeUser(m); ok {
			return u, true
		}
	}
	return nil, false
}

func decodeUser(m map[string]any) (*domain.User, bool) {
	if _, hasRole := m["role"]; !hasRole {
		return nil, false
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, false
	}
	var u struct {
		domain.User
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, false
	}
	if u.ID == "" {
		u.ID = u.MongoID
	}
	return &u.User, true
}
