// Package common contains shared constants and sentinel errors used across
// mangasync components.
package common

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// MaxListLimit caps the page size of catalog listings.
const MaxListLimit = 1000
