package auth

import (
	"github.com/google/uuid"

	"performer-marketplace/internal/core/domain"
)

// Identity is the resolved caller: an opaque user id plus a role claim
// parsed onto the closed domain.Role enum. The zero value means "no
// resolvable identity".
type Identity struct {
	UserID uuid.UUID
	Role   domain.Role
}

// IsZero reports whether no identity was resolved for the request.
func (id Identity) IsZero() bool {
	return id.UserID == uuid.Nil || id.Role == ""
}
