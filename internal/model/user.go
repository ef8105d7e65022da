package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles. Only employees may submit purchase
// requests and only approvers may decide them.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleApprover Role = "approver"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleApprover
}

// User represents the central user entity for logic and database structure.
// Users are immutable after creation; there is no update or delete path.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
