package domain

import "time"

// Stages at which a role profile could fail to attach.
const (
	StageProfileRejected    = "profile_rejected"
	StageProfileUnreachable = "profile_unreachable"
	StageProfileMalformed   = "profile_malformed"
	StageProfileNoToken     = "profile_no_token"
)

// IncompleteProfile records a base account that exists without its role profile
// because the second registration call failed.
type IncompleteProfile struct {
	Email         string    `json:"email" bson:"email"`
	Mobile        string    `json:"mobile" bson:"mobile"`
	Role          Role      `json:"role" bson:"role"`
	Stage         string    `json:"stage" bson:"stage"`
	Reason        string    `json:"reason" bson:"reason"`
	BackendStatus int       `json:"backend_status,omitempty" bson:"backend_status,omitempty"`
	RecordedAt    time.Time `json:"recorded_at" bson:"recorded_at"`
}
