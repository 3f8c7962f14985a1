package domain

import "time"

// Role enumerates account privilege levels.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// User is the domain model for every account: submitters, division
// administrators and super-admins share one table, distinguished by Role.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	Division          Division
	NotificationEmail *string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ContactEmail returns the address notifications should be delivered to.
func (u *User) ContactEmail() string {
	if u.NotificationEmail != nil && *u.NotificationEmail != "" {
		return *u.NotificationEmail
	}
	return u.Email
}
