// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username is the external key: it is unique, case-sensitive and becomes part
// of the export file name. ID is an internal xid so storage rows never depend
// on the user-chosen string.
//
// PasswordHash holds the bcrypt output, never the plaintext. The json tag
// is "-" so a User can't leak it through an encoder by accident.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
