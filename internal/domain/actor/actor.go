package actor

import "github.com/google/uuid"

// Actor identifies the authenticated caller of a command.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role.AtLeast(RoleAdmin)
}
