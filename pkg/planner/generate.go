package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/memory"
)

// ErrGenerationUnavailable marks transport or parse failures of the
// generation call. Callers match it with errors.Is and show a "generation
// unavailable" message; the flow is never retried automatically.
var ErrGenerationUnavailable = errors.New("meal plan generation unavailable")

// CompletionService is the slice of the AI service the generator needs.
type CompletionService interface {
	Completion(ctx context.Context, prompt string, model string, maxTokens int64) (string, error)
}

type Generator struct {
	logger      *log.Logger
	completions CompletionService
	model       string
	maxTokens   int64
}

func NewGenerator(logger *log.Logger, completions CompletionService, model string) *Generator {
	return &Generator{
		logger:      logger,
		completions: completions,
		model:       model,
		maxTokens:   4096,
	}
}

// GenerateMealPlan issues one bounded completion call and decodes the
// returned (possibly fenced) JSON array of meals.
func (g *Generator) GenerateMealPlan(ctx context.Context, userContext *memory.UserContext, macros Macros) ([]db.PlannedMeal, error) {
	prompt := buildPrompt(userContext, macros)

	content, err := g.completions.Completion(ctx, prompt, g.model, g.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: completion call failed: %v", ErrGenerationUnavailable, err)
	}

	meals, err := parseMeals(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	return meals, nil
}

// parseMeals strips optional markdown fencing and decodes the meal array.
func parseMeals(content string) ([]db.PlannedMeal, error) {
	var meals []db.PlannedMeal
	if err := json.Unmarshal([]byte(stripFences(content)), &meals); err != nil {
		return nil, fmt.Errorf("response is not a JSON meal array: %w", err)
	}
	return meals, nil
}

// stripFences extracts the payload from a markdown code fence: a labeled
// json fence first, then any fence, then the raw text.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)

	if start := strings.Index(trimmed, "```json"); start >= 0 {
		rest := trimmed[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if start := strings.Index(trimmed, "```"); start >= 0 {
		rest := trimmed[start+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return trimmed
}

func buildPrompt(userContext *memory.UserContext, macros Macros) string {
	var b strings.Builder
	user := userContext.User

	b.WriteString("You are a nutrition planner. Create a 7-day meal plan for this user.\n\n")
	fmt.Fprintf(&b, "User: %d year old %s, %.0f cm, %.0f kg, activity level %s.\n",
		user.Age, user.Sex, user.HeightCm, user.WeightKg, user.ActivityLevel)
	fmt.Fprintf(&b, "Daily targets: %d calories, %dg protein, %dg carbs, %dg fat.\n",
		macros.DailyCalories, macros.ProteinG, macros.CarbsG, macros.FatsG)

	var critical, important []string
	for _, r := range userContext.Restrictions {
		switch r.Severity {
		case memory.SeverityCritical:
			critical = append(critical, r.Value)
		case memory.SeverityImportant:
			important = append(important, r.Value)
		}
	}
	if len(critical) > 0 {
		fmt.Fprintf(&b, "NEVER include these (allergies, dangerous): %s.\n", strings.Join(critical, ", "))
	}
	if len(important) > 0 {
		fmt.Fprintf(&b, "Must avoid (medical or religious restrictions): %s.\n", strings.Join(important, ", "))
	}

	mealsPerDay := 3
	if prefs := userContext.Preferences; prefs != nil {
		if prefs.MealsPerDay > 0 {
			mealsPerDay = prefs.MealsPerDay
		}
		if prefs.DietType != "" {
			fmt.Fprintf(&b, "Diet type: %s.\n", prefs.DietType)
		}
		if len(prefs.CuisinePreferences) > 0 {
			fmt.Fprintf(&b, "Preferred cuisines: %s.\n", strings.Join(prefs.CuisinePreferences, ", "))
		}
		if prefs.CookingTimeMax != nil {
			fmt.Fprintf(&b, "Max cooking time per meal: %d minutes.\n", *prefs.CookingTimeMax)
		}
		if prefs.BudgetWeekly != nil {
			fmt.Fprintf(&b, "Weekly budget: %.0f.\n", *prefs.BudgetWeekly)
		}
		if prefs.MealComplexity != "" {
			fmt.Fprintf(&b, "Meal complexity: %s.\n", prefs.MealComplexity)
		}
	}

	var likes, dislikes []string
	for _, doc := range userContext.SemanticPreferences {
		switch doc.Metadata["type"] {
		case "like":
			likes = append(likes, doc.Content)
		case "dislike":
			dislikes = append(dislikes, doc.Content)
		}
	}
	if len(likes) > 0 {
		fmt.Fprintf(&b, "Foods the user likes: %s.\n", strings.Join(likes, ", "))
	}
	if len(dislikes) > 0 {
		fmt.Fprintf(&b, "Foods the user dislikes: %s.\n", strings.Join(dislikes, ", "))
	}

	fmt.Fprintf(&b, "\nPlan %d meals per day for monday through sunday.\n", mealsPerDay)
	b.WriteString(`Respond with ONLY a JSON array, no prose. Each element:
{"day_of_week": "monday", "meal_type": "breakfast", "recipe_name": "...", "calories": 500, "protein_g": 30.0, "carbs_g": 50.0, "fats_g": 15.0, "prep_time_min": 20, "ingredients": ["...", "..."]}
Use lowercase day names and meal types breakfast, lunch, dinner, snack.`)

	return b.String()
}
