package storage

import (
	"context"
	"fmt"
)

// LocalUserID is the user seeded by the initial migration. Requests without a
// tailnet identity and the import CLI act as this user.
const LocalUserID = 1

// UserIDForLogin finds or creates a user by Tailscale login name and returns
// its ID. Updates last_seen and display_name on each call.
func (db *DB) UserIDForLogin(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}
