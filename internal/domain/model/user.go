package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Public drops the password hash before the user leaves the service layer.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.HashedPassword = ""
	return &out
}
