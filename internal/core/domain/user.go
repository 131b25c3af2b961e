package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a closed enum of account roles. Authorization decisions switch
// exhaustively over this type instead of comparing claim strings at call
// sites.
type Role string

const (
	RoleClient    Role = "client"
	RolePerformer Role = "performer"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a role claim string onto the closed enum. Unknown claims
// are rejected rather than defaulted.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleClient, RolePerformer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// User is an account known to the identity layer. Exactly one role per
// account; vetting approval promotes a client to performer.
type User struct {
	ID           uuid.UUID
	Username     string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
