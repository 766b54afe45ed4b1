package domain

// Role selects which dashboard and which profile schema applies to an account.
type Role string

const (
	RolePlayer   Role = "user"
	RoleCoach    Role = "coach"
	RoleSeller   Role = "seller"
	RoleDelivery Role = "delivery"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the marketplace roles an account can register with.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleCoach, RoleSeller, RoleDelivery:
		return true
	}
	return false
}

// HasProfile reports whether accounts of this role carry a role profile that is
// attached after base registration.
func (r Role) HasProfile() bool {
	return r == RoleCoach || r == RoleSeller || r == RoleDelivery
}

// ProfileKey is the response field the attached role profile is merged under.
func (r Role) ProfileKey() string {
	switch r {
	case RoleCoach:
		return "coachProfile"
	case RoleSeller:
		return "storeProfile"
	case RoleDelivery:
		return "deliveryProfile"
	}
	return ""
}

// RoleFromPath maps the public URL segment (player, coach, store, delivery) to a Role.
func RoleFromPath(segment string) (Role, error) {
	switch segment {
	case "player":
		return RolePlayer, nil
	case "coach":
		return RoleCoach, nil
	case "store":
		return RoleSeller, nil
	case "delivery":
		return RoleDelivery, nil
	}
	return "", ErrUnknownRole
}

// Status is the backend-owned approval state of an account.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusRejected  Status = "rejected"
)

// User is the backend's user record as seen by the website. It is never mutated here.
type User struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
}
