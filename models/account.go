package models

import "time"

// Account models a registered profile able to own list snapshots.
// PasswordHash is a bcrypt digest; the plaintext secret is never stored.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
