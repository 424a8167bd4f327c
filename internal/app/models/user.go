package models

import (
	"strings"
	"time"
)

// School is the tenant every other record is scoped to.
type School struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id"`
	SchoolID  int64     `json:"school_id" db:"school_id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	UserType  UserType  `json:"user_type" db:"user_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Teacher is a staff member of exactly one school; one per user.
type Teacher struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	SchoolID  int64     `json:"school_id" db:"school_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
