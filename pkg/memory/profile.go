package memory

import (
	"context"
	"fmt"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
)

type GoalInput struct {
	GoalType            string   `json:"goal_type"`
	TargetWeight        *float64 `json:"target_weight,omitempty"`
	TargetTimelineWeeks *int     `json:"target_timeline_weeks,omitempty"`
	DailyCalories       int      `json:"daily_calories"`
	ProteinG            int      `json:"protein_g"`
	CarbsG              int      `json:"carbs_g"`
	FatsG               int      `json:"fats_g"`
}

type PreferencesInput struct {
	DietType           string   `json:"diet_type"`
	CuisinePreferences []string `json:"cuisine_preferences"`
	MealsPerDay        int      `json:"meals_per_day"`
	CookingTimeMax     *int     `json:"cooking_time_max,omitempty"`
	BudgetWeekly       *float64 `json:"budget_weekly,omitempty"`
	MealComplexity     string   `json:"meal_complexity"`
}

type ProfileInput struct {
	Name          string  `json:"name"`
	Email         *string `json:"email,omitempty"`
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`
	HeightCm      float64 `json:"height"`
	WeightKg      float64 `json:"weight"`
	Country       *string `json:"country,omitempty"`
	Ethnicity     *string `json:"ethnicity,omitempty"`
	ActivityLevel string  `json:"activity_level"`

	Goal                  *GoalInput        `json:"goal,omitempty"`
	Allergies             []string          `json:"allergies"`
	MedicalConditions     []string          `json:"medical_conditions"`
	ReligiousRestrictions []string          `json:"religious_restrictions"`
	Preferences           *PreferencesInput `json:"preferences,omitempty"`
	FoodLikes             []string          `json:"food_likes"`
	FoodDislikes          []string          `json:"food_dislikes"`
}

// Severity assigned per restriction origin. Allergies can be dangerous,
// medical and religious restrictions must still never be violated.
const (
	SeverityCritical  = "critical"
	SeverityImportant = "important"
)

// CreateUserProfile writes a complete profile across both stores: user row,
// optional goal, restrictions, optional preferences, then semantic
// like/dislike statements. Errors from either store abort and surface.
func (m *Memory) CreateUserProfile(ctx context.Context, input ProfileInput) (string, error) {
	userID, err := m.sql.CreateUser(ctx, db.User{
		Name:          input.Name,
		Email:         input.Email,
		Age:           input.Age,
		Sex:           input.Sex,
		HeightCm:      input.HeightCm,
		WeightKg:      input.WeightKg,
		Country:       input.Country,
		Ethnicity:     input.Ethnicity,
		ActivityLevel: input.ActivityLevel,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	if input.Goal != nil {
		_, err := m.sql.CreateGoal(ctx, db.Goal{
			UserID:        userID,
			GoalType:      input.Goal.GoalType,
			TargetWeight:  input.Goal.TargetWeight,
			TargetWeeks:   input.Goal.TargetTimelineWeeks,
			DailyCalories: input.Goal.DailyCalories,
			ProteinG:      input.Goal.ProteinG,
			CarbsG:        input.Goal.CarbsG,
			FatsG:         input.Goal.FatsG,
			IsActive:      true,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create goal: %w", err)
		}
	}

	restrictionGroups := []struct {
		restrictionType string
		severity        string
		values          []string
	}{
		{"allergy", SeverityCritical, input.Allergies},
		{"medical", SeverityImportant, input.MedicalConditions},
		{"religious", SeverityImportant, input.ReligiousRestrictions},
	}
	for _, group := range restrictionGroups {
		for _, value := range group.values {
			if _, err := m.sql.AddRestriction(ctx, userID, group.restrictionType, value, group.severity); err != nil {
				return "", fmt.Errorf("failed to add %s restriction: %w", group.restrictionType, err)
			}
		}
	}

	if input.Preferences != nil {
		prefs := *input.Preferences
		if prefs.MealsPerDay == 0 {
			prefs.MealsPerDay = 3
		}
		if prefs.MealComplexity == "" {
			prefs.MealComplexity = "moderate"
		}
		_, err := m.sql.CreatePreferences(ctx, db.Preferences{
			UserID:             userID,
			DietType:           prefs.DietType,
			CuisinePreferences: prefs.CuisinePreferences,
			MealsPerDay:        prefs.MealsPerDay,
			CookingTimeMax:     prefs.CookingTimeMax,
			BudgetWeekly:       prefs.BudgetWeekly,
			MealComplexity:     prefs.MealComplexity,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create preferences: %w", err)
		}
	}

	for _, like := range input.FoodLikes {
		if _, err := m.vector.AddPreference(ctx, userID, like, "like", "strong"); err != nil {
			return "", fmt.Errorf("failed to add food like: %w", err)
		}
	}
	for _, dislike := range input.FoodDislikes {
		if _, err := m.vector.AddPreference(ctx, userID, dislike, "dislike", "strong"); err != nil {
			return "", fmt.Errorf("failed to add food dislike: %w", err)
		}
	}

	m.logger.Info("Created user profile", "user_id", userID)
	return userID, nil
}

// GetUser returns the user row, nil when unknown.
func (m *Memory) GetUser(ctx context.Context, userID string) (*db.User, error) {
	return m.sql.GetUser(ctx, userID)
}

// UpdateUser applies a partial-field patch to the user row.
func (m *Memory) UpdateUser(ctx context.Context, userID string, updates map[string]any) error {
	return m.sql.UpdateUser(ctx, userID, updates)
}
