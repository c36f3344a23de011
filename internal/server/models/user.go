// Package models holds the database row shapes shared by repositories and
// services. Wire representations live in package dto.
package models

// User is an account. Sync timestamps are unix milliseconds and nil until
// the first successful sync of the corresponding collection.
type User struct {
	ID                      int64
	Email                   string
	PasswordHash            string
	Nickname                *string
	FavouritesSyncTimestamp *int64
	HistorySyncTimestamp    *int64
}
