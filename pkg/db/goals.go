package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateGoal inserts a goal row. Goals are never replaced: a user may hold
// several active goals at once and readers see them in creation order.
func (s *Store) CreateGoal(ctx context.Context, goal Goal) (string, error) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	goal.CreatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO user_goals (goal_id, user_id, goal_type, target_weight, target_timeline_weeks, daily_calories, protein_g, carbs_g, fats_g, is_active, created_at)
		VALUES (:goal_id, :user_id, :goal_type, :target_weight, :target_timeline_weeks, :daily_calories, :protein_g, :carbs_g, :fats_g, :is_active, :created_at)
	`, goal)
	if err != nil {
		return "", fmt.Errorf("failed to insert goal: %w", err)
	}
	return goal.ID, nil
}

// GetActiveGoals returns the user's active goals ordered by creation time.
func (s *Store) GetActiveGoals(ctx context.Context, userID string) ([]Goal, error) {
	goals := []Goal{}
	err := s.db.SelectContext(ctx, &goals, `
		SELECT * FROM user_goals
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at ASC, rowid ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return goals, nil
}
