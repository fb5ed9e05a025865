// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered chat participant. ID is the identity used by the
// presence registry and the message store.
type User struct {
	ID           string    `json:"_id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	ProfilePic   string    `json:"profilePic"`
	CreatedAt    time.Time `json:"createdAt"`
}
