package memory

import (
	"context"
	"fmt"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
)

// CreateMealPlan persists a generated plan: one plan row, one row per meal,
// then a semantic conversation record summarizing the plan so later
// searches can surface it.
func (m *Memory) CreateMealPlan(ctx context.Context, userID, weekStartDate string, meals []db.PlannedMeal, createdByAgent string) (string, error) {
	planID, err := m.sql.CreateMealPlan(ctx, userID, weekStartDate, createdByAgent)
	if err != nil {
		return "", fmt.Errorf("failed to create meal plan: %w", err)
	}

	for i, meal := range meals {
		if _, err := m.sql.AddPlannedMeal(ctx, planID, userID, meal); err != nil {
			return "", fmt.Errorf("failed to add meal %d to plan %s: %w", i, planID, err)
		}
	}

	summary := fmt.Sprintf("Created a meal plan for week starting %s with %d meals", weekStartDate, len(meals))
	if _, err := m.vector.AddConversation(ctx, userID, createdByAgent, "assistant", summary, planID); err != nil {
		return "", fmt.Errorf("failed to record plan summary: %w", err)
	}

	m.logger.Info("Created meal plan", "plan_id", planID, "user_id", userID, "meals", len(meals))
	return planID, nil
}

// GetMealPlan returns the plan with meals in canonical week order, nil when
// the id is unknown.
func (m *Memory) GetMealPlan(ctx context.Context, planID string) (*db.MealPlan, error) {
	return m.sql.GetMealPlan(ctx, planID)
}

// GetActiveMealPlan returns the user's most recent active plan, nil when
// there is none.
func (m *Memory) GetActiveMealPlan(ctx context.Context, userID string) (*db.MealPlan, error) {
	return m.sql.GetActiveMealPlan(ctx, userID)
}
