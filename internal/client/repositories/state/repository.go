// Package state keeps the client's session between runs: the bearer token,
// the signed-in email and the last watermark seen per package kind.
package state

import "context"

// Keys used by the client.
const (
	KeyToken               = "token"
	KeyEmail               = "email"
	KeyFavouritesWatermark = "favourites_timestamp"
	KeyHistoryWatermark    = "history_timestamp"
)

// Repository is a string key/value store. Get reports ok=false for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
