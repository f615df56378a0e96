package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
	RoleStaff     Role = "staff"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanValidateTickets reports whether the user may admit attendees at the door.
func (u User) CanValidateTickets() bool {
	return u.Role == RoleStaff || u.Role == RoleOrganizer
}
