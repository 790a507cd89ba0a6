package models

import "time"

// User is a registered bank customer. The password hash never leaves the
// server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
