package planner

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/memory"
)

type stubCompletions struct {
	content string
	err     error
	prompt  string
}

func (s *stubCompletions) Completion(ctx context.Context, prompt string, model string, maxTokens int64) (string, error) {
	s.prompt = prompt
	return s.content, s.err
}

const mealArrayJSON = `[
	{"day_of_week": "monday", "meal_type": "breakfast", "recipe_name": "Oatmeal with berries", "calories": 420, "protein_g": 18.0, "carbs_g": 60.0, "fats_g": 12.0, "prep_time_min": 10, "ingredients": ["oats", "blueberries", "milk"]},
	{"day_of_week": "monday", "meal_type": "lunch", "recipe_name": "Chicken salad", "ingredients": ["chicken breast", "lettuce"]}
]`

func testUserContext() *memory.UserContext {
	return &memory.UserContext{
		User: &db.User{
			Age:           30,
			Sex:           "male",
			HeightCm:      175,
			WeightKg:      80,
			ActivityLevel: "moderately_active",
		},
		Restrictions: []db.Restriction{
			{Type: "allergy", Value: "peanuts", Severity: memory.SeverityCritical},
			{Type: "medical", Value: "hypertension", Severity: memory.SeverityImportant},
		},
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"labeled json fence", "```json\n[1, 2]\n```", "[1, 2]"},
		{"labeled fence with prose around it", "Here is the plan:\n```json\n[1]\n```\nEnjoy!", "[1]"},
		{"plain fence", "```\n[3]\n```", "[3]"},
		{"no fence", "  [4]  ", "[4]"},
		{"unterminated fence falls back to raw", "```json [5]", "```json [5]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripFences(tc.input))
		})
	}
}

func TestGenerateMealPlanDecodesFencedResponse(t *testing.T) {
	stub := &stubCompletions{content: "```json\n" + mealArrayJSON + "\n```"}
	generator := NewGenerator(log.New(io.Discard), stub, "test-model")

	meals, err := generator.GenerateMealPlan(context.Background(), testUserContext(), Macros{DailyCalories: 2210, ProteinG: 221, CarbsG: 165, FatsG: 73})
	require.NoError(t, err)
	require.Len(t, meals, 2)

	first := meals[0]
	assert.Equal(t, "monday", first.DayOfWeek)
	assert.Equal(t, "breakfast", first.MealType)
	require.NotNil(t, first.RecipeName)
	assert.Equal(t, "Oatmeal with berries", *first.RecipeName)
	require.NotNil(t, first.Calories)
	assert.Equal(t, 420, *first.Calories)
	assert.Equal(t, []string{"oats", "blueberries", "milk"}, first.Ingredients)

	// Fields the generator omitted stay nil.
	second := meals[1]
	assert.Nil(t, second.Calories)
	assert.Nil(t, second.PrepTimeMin)
}

func TestGenerateMealPlanPromptCarriesConstraints(t *testing.T) {
	stub := &stubCompletions{content: mealArrayJSON}
	generator := NewGenerator(log.New(io.Discard), stub, "test-model")

	_, err := generator.GenerateMealPlan(context.Background(), testUserContext(), Macros{DailyCalories: 2210, ProteinG: 221, CarbsG: 165, FatsG: 73})
	require.NoError(t, err)

	assert.Contains(t, stub.prompt, "peanuts")
	assert.Contains(t, stub.prompt, "hypertension")
	assert.Contains(t, stub.prompt, "2210 calories")
	assert.Contains(t, stub.prompt, "JSON array")
}

func TestGenerateMealPlanNonJSONIsGenerationUnavailable(t *testing.T) {
	stub := &stubCompletions{content: "Sorry, I cannot help with that."}
	generator := NewGenerator(log.New(io.Discard), stub, "test-model")

	_, err := generator.GenerateMealPlan(context.Background(), testUserContext(), Macros{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateMealPlanTransportErrorIsGenerationUnavailable(t *testing.T) {
	stub := &stubCompletions{err: errors.New("connection reset")}
	generator := NewGenerator(log.New(io.Discard), stub, "test-model")

	_, err := generator.GenerateMealPlan(context.Background(), testUserContext(), Macros{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
}
