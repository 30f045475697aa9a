package db

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(log.New(io.Discard), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTestUser(t *testing.T, store *Store) string {
	t.Helper()
	userID, err := store.CreateUser(context.Background(), User{
		Name:          "Alex",
		Age:           30,
		Sex:           "male",
		HeightCm:      175,
		WeightKg:      80,
		ActivityLevel: "moderately_active",
	})
	require.NoError(t, err)
	return userID
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	user, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Alex", user.Name)
	assert.Equal(t, 30, user.Age)
	assert.Nil(t, user.Email)

	missing, err := store.GetUser(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateUserPartialPatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	require.NoError(t, store.UpdateUser(ctx, userID, map[string]any{"weight": 78.5, "activity_level": "very_active"}))

	user, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 78.5, user.WeightKg)
	assert.Equal(t, "very_active", user.ActivityLevel)
	assert.Equal(t, "Alex", user.Name)

	assert.Error(t, store.UpdateUser(ctx, userID, map[string]any{"user_id": "sneaky"}))
	assert.Error(t, store.UpdateUser(ctx, "nope", map[string]any{"weight": 70.0}))
}

func TestGoalsKeepCreationOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	_, err := store.CreateGoal(ctx, Goal{UserID: userID, GoalType: "lose_weight", DailyCalories: 2210, ProteinG: 221, CarbsG: 165, FatsG: 73, IsActive: true})
	require.NoError(t, err)
	_, err = store.CreateGoal(ctx, Goal{UserID: userID, GoalType: "gain_muscle", DailyCalories: 3000, ProteinG: 225, CarbsG: 300, FatsG: 100, IsActive: true})
	require.NoError(t, err)
	_, err = store.CreateGoal(ctx, Goal{UserID: userID, GoalType: "bulk", IsActive: false})
	require.NoError(t, err)

	goals, err := store.GetActiveGoals(ctx, userID)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "lose_weight", goals[0].GoalType)
	assert.Equal(t, "gain_muscle", goals[1].GoalType)
}

func TestRestrictionsInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	_, err := store.AddRestriction(ctx, userID, "allergy", "peanuts", "critical")
	require.NoError(t, err)
	_, err = store.AddRestriction(ctx, userID, "medical", "hypertension", "important")
	require.NoError(t, err)

	restrictions, err := store.GetRestrictions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, restrictions, 2)
	assert.Equal(t, "peanuts", restrictions[0].Value)
	assert.Equal(t, "critical", restrictions[0].Severity)
	assert.Equal(t, "hypertension", restrictions[1].Value)
	assert.Equal(t, "important", restrictions[1].Severity)
}

func TestPreferencesJSONRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	maxTime := 30
	_, err := store.CreatePreferences(ctx, Preferences{
		UserID:             userID,
		DietType:           "omnivore",
		CuisinePreferences: []string{"thai", "italian"},
		MealsPerDay:        3,
		CookingTimeMax:     &maxTime,
		MealComplexity:     "moderate",
	})
	require.NoError(t, err)

	prefs, err := store.GetPreferences(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, []string{"thai", "italian"}, prefs.CuisinePreferences)
	require.NotNil(t, prefs.CookingTimeMax)
	assert.Equal(t, 30, *prefs.CookingTimeMax)
	assert.Nil(t, prefs.BudgetWeekly)

	none, err := store.GetPreferences(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func strPtr(s string) *string { return &s }

func TestMealPlanCanonicalOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	planID, err := store.CreateMealPlan(ctx, userID, "2026-08-24", "nutrition_planner")
	require.NoError(t, err)

	// Inserted deliberately out of order.
	meals := []PlannedMeal{
		{DayOfWeek: "friday", MealType: "dinner", RecipeName: strPtr("Salmon"), Ingredients: []string{"salmon", "rice"}},
		{DayOfWeek: "monday", MealType: "lunch", RecipeName: strPtr("Salad")},
		{DayOfWeek: "monday", MealType: "breakfast", RecipeName: strPtr("Oatmeal"), Ingredients: []string{"oats"}},
		{DayOfWeek: "wednesday", MealType: "snack", RecipeName: strPtr("Apple")},
	}
	for _, meal := range meals {
		_, err := store.AddPlannedMeal(ctx, planID, userID, meal)
		require.NoError(t, err)
	}

	plan, err := store.GetMealPlan(ctx, planID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.Len(t, plan.Meals, 4)

	var order []string
	for _, meal := range plan.Meals {
		order = append(order, meal.DayOfWeek+"/"+meal.MealType)
	}
	assert.Equal(t, []string{"monday/breakfast", "monday/lunch", "wednesday/snack", "friday/dinner"}, order)
	assert.Equal(t, []string{"oats"}, plan.Meals[0].Ingredients)
	assert.Nil(t, plan.Meals[1].Calories)
}

func TestGetMealPlanUnknownIDIsNil(t *testing.T) {
	store := newTestStore(t)

	plan, err := store.GetMealPlan(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestGetActiveMealPlanPicksNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	first, err := store.CreateMealPlan(ctx, userID, "2026-08-17", "nutrition_planner")
	require.NoError(t, err)
	second, err := store.CreateMealPlan(ctx, userID, "2026-08-24", "nutrition_planner")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	active, err := store.GetActiveMealPlan(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second, active.ID)

	none, err := store.GetActiveMealPlan(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTrackingAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store)

	calories := 650
	mealID, err := store.LogActualMeal(ctx, ActualMeal{
		UserID:          userID,
		DayOfWeek:       "monday",
		MealType:        "lunch",
		FoodDescription: "burrito bowl",
		Calories:        &calories,
		IsPlanned:       false,
		LoggedByAgent:   "tracker",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, mealID)

	original, updated := 650, 500
	modID, err := store.LogModification(ctx, Modification{
		UserID:           userID,
		DayOfWeek:        "monday",
		ModificationType: "swap",
		OriginalCalories: &original,
		NewCalories:      &updated,
		Reason:           "lighter dinner after a big lunch",
		AdjustedByAgent:  "tracker",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, modID)

	feedbackID, err := store.SaveMealFeedback(ctx, MealFeedback{
		UserID:          userID,
		FoodDescription: "burrito bowl",
		Rating:          5,
		FeedbackText:    "would eat again",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, feedbackID)
}

func TestClearUserRemovesOnlyThatUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	first := createTestUser(t, store)
	second := createTestUser(t, store)

	_, err := store.CreateGoal(ctx, Goal{UserID: first, GoalType: "cut", IsActive: true})
	require.NoError(t, err)
	_, err = store.CreateGoal(ctx, Goal{UserID: second, GoalType: "bulk", IsActive: true})
	require.NoError(t, err)

	require.NoError(t, store.ClearUser(ctx, first))

	gone, err := store.GetUser(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := store.GetActiveGoals(ctx, second)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestFindUserIDByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	email := "alex@example.com"
	userID, err := store.CreateUser(ctx, User{Name: "Alex", Email: &email})
	require.NoError(t, err)

	found, err := store.FindUserIDByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, userID, found)

	missing, err := store.FindUserIDByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
