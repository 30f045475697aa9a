package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type preferencesRow struct {
	ID                 string    `db:"preference_id"`
	UserID             string    `db:"user_id"`
	DietType           string    `db:"diet_type"`
	CuisinePreferences string    `db:"cuisine_preferences"`
	MealsPerDay        int       `db:"meals_per_day"`
	CookingTimeMax     *int      `db:"cooking_time_max"`
	BudgetWeekly       *float64  `db:"budget_weekly"`
	MealComplexity     string    `db:"meal_complexity"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// CreatePreferences inserts the user's meal preferences. Cuisine list is
// stored as a JSON text blob.
func (s *Store) CreatePreferences(ctx context.Context, prefs Preferences) (string, error) {
	if prefs.ID == "" {
		prefs.ID = uuid.NewString()
	}
	cuisines := prefs.CuisinePreferences
	if cuisines == nil {
		cuisines = []string{}
	}
	encoded, err := json.Marshal(cuisines)
	if err != nil {
		return "", fmt.Errorf("failed to encode cuisine preferences: %w", err)
	}
	now := time.Now().UTC()

	row := preferencesRow{
		ID:                 prefs.ID,
		UserID:             prefs.UserID,
		DietType:           prefs.DietType,
		CuisinePreferences: string(encoded),
		MealsPerDay:        prefs.MealsPerDay,
		CookingTimeMax:     prefs.CookingTimeMax,
		BudgetWeekly:       prefs.BudgetWeekly,
		MealComplexity:     prefs.MealComplexity,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO user_preferences (preference_id, user_id, diet_type, cuisine_preferences, meals_per_day, cooking_time_max, budget_weekly, meal_complexity, created_at, updated_at)
		VALUES (:preference_id, :user_id, :diet_type, :cuisine_preferences, :meals_per_day, :cooking_time_max, :budget_weekly, :meal_complexity, :created_at, :updated_at)
	`, row)
	if err != nil {
		return "", fmt.Errorf("failed to insert preferences: %w", err)
	}
	return prefs.ID, nil
}

// GetPreferences returns the user's preferences or nil when none are stored.
func (s *Store) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	var row preferencesRow
	err := s.db.GetContext(ctx, &row, `
		SELECT * FROM user_preferences WHERE user_id = ? ORDER BY rowid DESC LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cuisines []string
	if row.CuisinePreferences != "" {
		if err := json.Unmarshal([]byte(row.CuisinePreferences), &cuisines); err != nil {
			return nil, fmt.Errorf("failed to decode cuisine preferences: %w", err)
		}
	}

	return &Preferences{
		ID:                 row.ID,
		UserID:             row.UserID,
		DietType:           row.DietType,
		CuisinePreferences: cuisines,
		MealsPerDay:        row.MealsPerDay,
		CookingTimeMax:     row.CookingTimeMax,
		BudgetWeekly:       row.BudgetWeekly,
		MealComplexity:     row.MealComplexity,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}
