package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusPending  UserStatus = "pending"
	UserStatusInactive UserStatus = "inactive"
)

// User mirrors the backend's user resource. The backend owns the record;
// clients only hold the copy returned by login and /auth/me.
type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Role       Role       `json:"role"`
	Department string     `json:"department"`
	Status     UserStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	Avatar     *string    `json:"avatar,omitempty"`
}

// UserPatch is a partial update applied locally after a profile edit.
// Nil fields are left untouched.
type UserPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	Department *string
	Avatar     *string
}

func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	return u
}
