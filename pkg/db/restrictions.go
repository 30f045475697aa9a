package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddRestriction appends a dietary restriction for the user.
func (s *Store) AddRestriction(ctx context.Context, userID, restrictionType, restriction, severity string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_restrictions (restriction_id, user_id, restriction_type, restriction, severity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, userID, restrictionType, restriction, severity, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert restriction: %w", err)
	}
	return id, nil
}

// GetRestrictions returns the user's restrictions in insertion order.
func (s *Store) GetRestrictions(ctx context.Context, userID string) ([]Restriction, error) {
	restrictions := []Restriction{}
	err := s.db.SelectContext(ctx, &restrictions, `
		SELECT * FROM user_restrictions WHERE user_id = ? ORDER BY rowid ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return restrictions, nil
}
