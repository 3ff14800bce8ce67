package domain

import "time"

// User is an account record. Identity fields are immutable after
// registration except for the password hash; deletion cascades to the
// user's refresh tokens at the schema level.
type User struct {
	ID           string
	Name         string
	Email        string // unique
	PasswordHash string // argon2id encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
