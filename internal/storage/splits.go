package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meltforce/liftlog/internal/models"
)

// SaveSplit stores the user's split, replacing any previous one.
func (db *DB) SaveSplit(ctx context.Context, userID int, text string, split models.ParsedSplit) (*models.SavedSplit, error) {
	split.Normalize()
	body, err := json.Marshal(split)
	if err != nil {
		return nil, fmt.Errorf("encoding split: %w", err)
	}

	saved := &models.SavedSplit{Text: text, Split: split}
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO splits (user_id, source_text, split)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
			SET source_text = EXCLUDED.source_text, split = EXCLUDED.split, updated_at = NOW()
		 RETURNING updated_at`,
		userID, text, body).Scan(&saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving split: %w", err)
	}
	return saved, nil
}

// GetSplit returns the user's saved split or ErrNotFound.
func (db *DB) GetSplit(ctx context.Context, userID int) (*models.SavedSplit, error) {
	var (
		saved models.SavedSplit
		body  []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT source_text, split, updated_at FROM splits WHERE user_id = $1`,
		userID).Scan(&saved.Text, &body, &saved.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying split: %w", err)
	}
	if err := json.Unmarshal(body, &saved.Split); err != nil {
		return nil, fmt.Errorf("decoding split: %w", err)
	}
	saved.Split.Normalize()
	return &saved, nil
}
