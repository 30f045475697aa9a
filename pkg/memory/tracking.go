package memory

import (
	"context"
	"fmt"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
)

// LogActualMeal records a consumed meal in both stores. The structured
// append must succeed; if the semantic append then fails, the receipt still
// carries the structured record id alongside the semantic error.
func (m *Memory) LogActualMeal(ctx context.Context, meal db.ActualMeal) (WriteReceipt, error) {
	recordID, err := m.sql.LogActualMeal(ctx, meal)
	if err != nil {
		return WriteReceipt{}, fmt.Errorf("failed to log meal: %w", err)
	}
	receipt := WriteReceipt{RecordID: recordID}

	note := fmt.Sprintf("Ate: %s", meal.FoodDescription)
	if meal.Calories != nil {
		note = fmt.Sprintf("Ate: %s (%d cal)", meal.FoodDescription, *meal.Calories)
	}
	semanticID, err := m.vector.AddConversation(ctx, meal.UserID, meal.LoggedByAgent, "user", note, "")
	if err != nil {
		receipt.SemanticErr = err
		m.logger.Warn("Meal logged but semantic record failed", "record_id", recordID, "error", err)
		return receipt, fmt.Errorf("meal logged but semantic record failed: %w", err)
	}
	receipt.SemanticID = semanticID
	return receipt, nil
}

// ModifyMealPlan appends a plan-modification record in both stores.
func (m *Memory) ModifyMealPlan(ctx context.Context, mod db.Modification) (WriteReceipt, error) {
	recordID, err := m.sql.LogModification(ctx, mod)
	if err != nil {
		return WriteReceipt{}, fmt.Errorf("failed to log modification: %w", err)
	}
	receipt := WriteReceipt{RecordID: recordID}

	note := fmt.Sprintf("Modified meal plan: %s", mod.Reason)
	semanticID, err := m.vector.AddConversation(ctx, mod.UserID, mod.AdjustedByAgent, "assistant", note, "")
	if err != nil {
		receipt.SemanticErr = err
		m.logger.Warn("Modification logged but semantic record failed", "record_id", recordID, "error", err)
		return receipt, fmt.Errorf("modification logged but semantic record failed: %w", err)
	}
	receipt.SemanticID = semanticID
	return receipt, nil
}

// SaveMealFeedback records a meal rating in both stores so future plans can
// lean toward foods the user liked.
func (m *Memory) SaveMealFeedback(ctx context.Context, feedback db.MealFeedback) (WriteReceipt, error) {
	recordID, err := m.sql.SaveMealFeedback(ctx, feedback)
	if err != nil {
		return WriteReceipt{}, fmt.Errorf("failed to save feedback: %w", err)
	}
	receipt := WriteReceipt{RecordID: recordID}

	mealID := ""
	if feedback.MealID != nil {
		mealID = *feedback.MealID
	}
	cuisine := ""
	if feedback.Cuisine != nil {
		cuisine = *feedback.Cuisine
	}
	semanticID, err := m.vector.AddFoodFeedback(ctx, feedback.UserID, mealID, feedback.FoodDescription, feedback.Rating, feedback.FeedbackText, cuisine)
	if err != nil {
		receipt.SemanticErr = err
		m.logger.Warn("Feedback saved but semantic record failed", "record_id", recordID, "error", err)
		return receipt, fmt.Errorf("feedback saved but semantic record failed: %w", err)
	}
	receipt.SemanticID = semanticID
	return receipt, nil
}
