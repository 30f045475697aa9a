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

type plannedMealRow struct {
	ID          string    `db:"meal_id"`
	PlanID      string    `db:"plan_id"`
	UserID      string    `db:"user_id"`
	DayOfWeek   string    `db:"day_of_week"`
	MealType    string    `db:"meal_type"`
	RecipeName  *string   `db:"recipe_name"`
	Calories    *int      `db:"calories"`
	ProteinG    *float64  `db:"protein_g"`
	CarbsG      *float64  `db:"carbs_g"`
	FatsG       *float64  `db:"fats_g"`
	PrepTimeMin *int      `db:"prep_time_min"`
	Ingredients string    `db:"ingredients"`
	IsCompleted bool      `db:"is_completed"`
	CreatedAt   time.Time `db:"created_at"`
}

// CreateMealPlan inserts an empty active plan and returns its id.
func (s *Store) CreateMealPlan(ctx context.Context, userID, weekStartDate, createdByAgent string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meal_plans (plan_id, user_id, week_start_date, status, created_by_agent, created_at)
		VALUES (?, ?, ?, 'active', ?, ?)
	`, id, userID, weekStartDate, createdByAgent, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return id, nil
}

// AddPlannedMeal appends one meal slot to a plan.
func (s *Store) AddPlannedMeal(ctx context.Context, planID, userID string, meal PlannedMeal) (string, error) {
	id := uuid.NewString()
	ingredients := meal.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return "", fmt.Errorf("failed to encode ingredients: %w", err)
	}

	row := plannedMealRow{
		ID:          id,
		PlanID:      planID,
		UserID:      userID,
		DayOfWeek:   meal.DayOfWeek,
		MealType:    meal.MealType,
		RecipeName:  meal.RecipeName,
		Calories:    meal.Calories,
		ProteinG:    meal.ProteinG,
		CarbsG:      meal.CarbsG,
		FatsG:       meal.FatsG,
		PrepTimeMin: meal.PrepTimeMin,
		Ingredients: string(encoded),
		IsCompleted: false,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO planned_meals (meal_id, plan_id, user_id, day_of_week, meal_type, recipe_name, calories, protein_g, carbs_g, fats_g, prep_time_min, ingredients, is_completed, created_at)
		VALUES (:meal_id, :plan_id, :user_id, :day_of_week, :meal_type, :recipe_name, :calories, :protein_g, :carbs_g, :fats_g, :prep_time_min, :ingredients, :is_completed, :created_at)
	`, row)
	if err != nil {
		return "", fmt.Errorf("failed to insert planned meal: %w", err)
	}
	return id, nil
}

// GetMealPlan returns the plan with its meals in canonical week order
// (Monday through Sunday, breakfast, lunch, dinner, snack), or nil when the
// id is unknown.
func (s *Store) GetMealPlan(ctx context.Context, planID string) (*MealPlan, error) {
	var plan MealPlan
	err := s.db.GetContext(ctx, &plan, `SELECT * FROM meal_plans WHERE plan_id = ?`, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows := []plannedMealRow{}
	err = s.db.SelectContext(ctx, &rows, `
		SELECT * FROM planned_meals
		WHERE plan_id = ?
		ORDER BY
			CASE day_of_week
				WHEN 'monday' THEN 1
				WHEN 'tuesday' THEN 2
				WHEN 'wednesday' THEN 3
				WHEN 'thursday' THEN 4
				WHEN 'friday' THEN 5
				WHEN 'saturday' THEN 6
				WHEN 'sunday' THEN 7
				ELSE 8
			END,
			CASE meal_type
				WHEN 'breakfast' THEN 1
				WHEN 'lunch' THEN 2
				WHEN 'dinner' THEN 3
				WHEN 'snack' THEN 4
				ELSE 5
			END
	`, planID)
	if err != nil {
		return nil, err
	}

	plan.Meals = make([]PlannedMeal, 0, len(rows))
	for _, row := range rows {
		var ingredients []string
		if row.Ingredients != "" {
			if err := json.Unmarshal([]byte(row.Ingredients), &ingredients); err != nil {
				return nil, fmt.Errorf("failed to decode ingredients for meal %s: %w", row.ID, err)
			}
		}
		plan.Meals = append(plan.Meals, PlannedMeal{
			ID:          row.ID,
			PlanID:      row.PlanID,
			UserID:      row.UserID,
			DayOfWeek:   row.DayOfWeek,
			MealType:    row.MealType,
			RecipeName:  row.RecipeName,
			Calories:    row.Calories,
			ProteinG:    row.ProteinG,
			CarbsG:      row.CarbsG,
			FatsG:       row.FatsG,
			PrepTimeMin: row.PrepTimeMin,
			Ingredients: ingredients,
			IsCompleted: row.IsCompleted,
			CreatedAt:   row.CreatedAt,
		})
	}
	return &plan, nil
}

// GetActiveMealPlan returns the most recently created active plan for the
// user, or nil when there is none.
func (s *Store) GetActiveMealPlan(ctx context.Context, userID string) (*MealPlan, error) {
	var planID string
	err := s.db.GetContext(ctx, &planID, `
		SELECT plan_id FROM meal_plans
		WHERE user_id = ? AND status = 'active'
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetMealPlan(ctx, planID)
}
