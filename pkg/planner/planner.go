// Package planner orchestrates profile creation and meal-plan generation:
// macro computation, prompt assembly, one bounded generation call, and
// persistence of the decoded plan through the memory facade.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/memory"
)

const agentName = "nutrition_planner"

type Planner struct {
	logger    *log.Logger
	memory    *memory.Memory
	generator *Generator
}

func New(logger *log.Logger, mem *memory.Memory, generator *Generator) *Planner {
	return &Planner{
		logger:    logger,
		memory:    mem,
		generator: generator,
	}
}

type PlanResult struct {
	UserID string       `json:"user_id"`
	PlanID string       `json:"plan_id"`
	Macros Macros       `json:"macros"`
	Plan   *db.MealPlan `json:"meal_plan"`
}

// CreateProfileAndPlan runs the full onboarding flow: compute macros, fill
// them into the goal, persist the profile, assemble context, generate a
// plan, persist it, and read it back in canonical order. A generation
// failure surfaces before any plan row is written.
func (p *Planner) CreateProfileAndPlan(ctx context.Context, input memory.ProfileInput) (*PlanResult, error) {
	goalType := "maintain"
	if input.Goal != nil {
		goalType = input.Goal.GoalType
	}
	macros := ComputeMacros(Biometrics{
		Age:           input.Age,
		Sex:           input.Sex,
		HeightCm:      input.HeightCm,
		WeightKg:      input.WeightKg,
		ActivityLevel: input.ActivityLevel,
	}, goalType)

	if input.Goal != nil {
		input.Goal.DailyCalories = macros.DailyCalories
		input.Goal.ProteinG = macros.ProteinG
		input.Goal.CarbsG = macros.CarbsG
		input.Goal.FatsG = macros.FatsG
	}

	userID, err := p.memory.CreateUserProfile(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	userContext, err := p.memory.GetUserContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble user context: %w", err)
	}

	meals, err := p.generator.GenerateMealPlan(ctx, userContext, macros)
	if err != nil {
		return nil, err
	}

	weekStart := time.Now().UTC().Format("2006-01-02")
	planID, err := p.memory.CreateMealPlan(ctx, userID, weekStart, meals, agentName)
	if err != nil {
		return nil, fmt.Errorf("failed to persist meal plan: %w", err)
	}

	plan, err := p.memory.GetMealPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back meal plan: %w", err)
	}

	p.logger.Info("Created profile and plan", "user_id", userID, "plan_id", planID)
	return &PlanResult{
		UserID: userID,
		PlanID: planID,
		Macros: macros,
		Plan:   plan,
	}, nil
}
