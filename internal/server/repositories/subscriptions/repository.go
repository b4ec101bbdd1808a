// Package subscriptions stores the account to theme relation.
package subscriptions

import "context"

// Repository treats each account's subscriptions as a set: Add and Remove
// are idempotent.
type Repository interface {
	Add(ctx context.Context, userID, themeID int64) error
	Remove(ctx context.Context, userID, themeID int64) error
	ThemeIDs(ctx context.Context, userID int64) ([]int64, error)
}
