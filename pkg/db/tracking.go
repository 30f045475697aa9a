package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogActualMeal appends a consumed-meal record. The log is append-only.
func (s *Store) LogActualMeal(ctx context.Context, meal ActualMeal) (string, error) {
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.Timestamp.IsZero() {
		meal.Timestamp = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO actual_meals (meal_id, user_id, plan_id, planned_meal_id, day_of_week, meal_type, food_description, calories, protein_g, carbs_g, fats_g, is_planned, logged_by_agent, timestamp)
		VALUES (:meal_id, :user_id, :plan_id, :planned_meal_id, :day_of_week, :meal_type, :food_description, :calories, :protein_g, :carbs_g, :fats_g, :is_planned, :logged_by_agent, :timestamp)
	`, meal)
	if err != nil {
		return "", fmt.Errorf("failed to insert actual meal: %w", err)
	}
	return meal.ID, nil
}

// LogModification appends a plan-modification record.
func (s *Store) LogModification(ctx context.Context, mod Modification) (string, error) {
	if mod.ID == "" {
		mod.ID = uuid.NewString()
	}
	if mod.Timestamp.IsZero() {
		mod.Timestamp = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO meal_modifications (modification_id, user_id, plan_id, day_of_week, modification_type, original_calories, new_calories, reason, adjusted_by_agent, timestamp)
		VALUES (:modification_id, :user_id, :plan_id, :day_of_week, :modification_type, :original_calories, :new_calories, :reason, :adjusted_by_agent, :timestamp)
	`, mod)
	if err != nil {
		return "", fmt.Errorf("failed to insert modification: %w", err)
	}
	return mod.ID, nil
}

// SaveMealFeedback appends a meal rating record.
func (s *Store) SaveMealFeedback(ctx context.Context, feedback MealFeedback) (string, error) {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO meal_feedback (feedback_id, user_id, meal_id, food_description, rating, feedback_text, cuisine, created_at)
		VALUES (:feedback_id, :user_id, :meal_id, :food_description, :rating, :feedback_text, :cuisine, :created_at)
	`, feedback)
	if err != nil {
		return "", fmt.Errorf("failed to insert meal feedback: %w", err)
	}
	return feedback.ID, nil
}
