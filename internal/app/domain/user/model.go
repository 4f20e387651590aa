package user

import "time"

// User is an account holder. The password hash never leaves the service;
// it is excluded from every serialized form.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
