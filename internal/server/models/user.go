// Package models defines the server-side entities persisted by the
// repositories and the enriched views returned to the HTTP boundary.
package models

import "time"

// User is a registered account. PasswordHash holds an encoded argon2id
// hash and is never serialised to clients.
type User struct {
	ID                 int64
	UserName           string
	Email              string
	PasswordHash       string
	SubscribedThemeIDs []int64
	CreatedAt          time.Time
}

// Principal is the verified caller identity carried by an access token.
// Subject is the username or email the account was matched on at login.
type Principal struct {
	Subject string
}
