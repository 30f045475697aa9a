package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var allTables = []string{
	"meal_feedback",
	"meal_modifications",
	"actual_meals",
	"planned_meals",
	"meal_plans",
	"user_preferences",
	"user_restrictions",
	"user_goals",
	"users",
}

// ClearAll wipes every table. Maintenance-tool use only.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, table := range allTables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// ClearUser deletes every row belonging to the user, children first.
func (s *Store) ClearUser(ctx context.Context, userID string) error {
	for _, table := range allTables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to clear %s for user %s: %w", table, userID, err)
		}
	}
	return nil
}

// FindUserIDByEmail resolves an email to a user id, empty when unknown.
func (s *Store) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	var userID string
	err := s.db.GetContext(ctx, &userID, `SELECT user_id FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
