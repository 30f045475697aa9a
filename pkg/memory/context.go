package memory

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/vectordb"
)

// UserContext is the cross-store read used to assemble a planning prompt.
// Missing optional parts come back as empty containers, never as errors.
type UserContext struct {
	User                *db.User            `json:"user"`
	Goals               []db.Goal           `json:"goals"`
	Restrictions        []db.Restriction    `json:"restrictions"`
	Preferences         *db.Preferences     `json:"preferences,omitempty"`
	SemanticPreferences []vectordb.Document `json:"semantic_preferences"`
	RecentConversations []vectordb.Document `json:"recent_conversations"`
	FoodFeedback        []vectordb.Document `json:"food_feedback"`
}

// FoodPreferencesContext narrows the semantic side to foods relevant to a
// query: liked (rating >= 4) and disliked (rating <= 2) foods plus the
// user's stated preferences, likes and dislikes together.
type FoodPreferencesContext struct {
	LikedFoods    []vectordb.Document `json:"liked_foods"`
	DislikedFoods []vectordb.Document `json:"disliked_foods"`
	Preferences   []vectordb.Document `json:"preferences"`
}

// GetUserContext assembles everything known about the user from both
// stores. The user row must exist; all other parts are optional.
func (m *Memory) GetUserContext(ctx context.Context, userID string) (*UserContext, error) {
	user, err := m.sql.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	goals, err := m.sql.GetActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	restrictions, err := m.sql.GetRestrictions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load restrictions: %w", err)
	}
	preferences, err := m.sql.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	semanticPrefs, err := m.vector.GetAllPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load semantic preferences: %w", err)
	}
	conversations, err := m.vector.GetRecentConversations(ctx, userID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent conversations: %w", err)
	}
	feedback, err := m.vector.GetAllFeedback(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load food feedback: %w", err)
	}

	return &UserContext{
		User:                user,
		Goals:               goals,
		Restrictions:        restrictions,
		Preferences:         preferences,
		SemanticPreferences: semanticPrefs,
		RecentConversations: conversations,
		FoodFeedback:        feedback,
	}, nil
}

// GetFoodPreferencesContext runs the semantic-side food reads for a query.
func (m *Memory) GetFoodPreferencesContext(ctx context.Context, userID, query string) (*FoodPreferencesContext, error) {
	liked, err := m.vector.SearchLikedFoods(ctx, userID, query, 4, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to search liked foods: %w", err)
	}
	disliked, err := m.vector.SearchDislikedFoods(ctx, userID, query, 2, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to search disliked foods: %w", err)
	}
	preferences, err := m.vector.SearchPreferences(ctx, userID, query, "", 10)
	if err != nil {
		return nil, fmt.Errorf("failed to search preferences: %w", err)
	}

	return &FoodPreferencesContext{
		LikedFoods:    liked,
		DislikedFoods: disliked,
		Preferences:   preferences,
	}, nil
}

// GetSafetyRestrictions returns the restriction values that must never be
// violated (critical and important severities), in insertion order.
func (m *Memory) GetSafetyRestrictions(ctx context.Context, userID string) ([]string, error) {
	restrictions, err := m.sql.GetRestrictions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load restrictions: %w", err)
	}
	return lo.FilterMap(restrictions, func(r db.Restriction, _ int) (string, bool) {
		return r.Value, r.Severity == SeverityCritical || r.Severity == SeverityImportant
	}), nil
}

// DailyMacros returns the macro targets from the user's earliest active
// goal, nil when the user has no active goal.
func (m *Memory) DailyMacros(ctx context.Context, userID string) (*GoalInput, error) {
	goals, err := m.sql.GetActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	if len(goals) == 0 {
		return nil, nil
	}
	goal := goals[0]
	return &GoalInput{
		GoalType:            goal.GoalType,
		TargetWeight:        goal.TargetWeight,
		TargetTimelineWeeks: goal.TargetWeeks,
		DailyCalories:       goal.DailyCalories,
		ProteinG:            goal.ProteinG,
		CarbsG:              goal.CarbsG,
		FatsG:               goal.FatsG,
	}, nil
}

// SaveConversation appends one message to the semantic conversation log.
func (m *Memory) SaveConversation(ctx context.Context, userID, agentName, role, message, sessionID string) (string, error) {
	return m.vector.AddConversation(ctx, userID, agentName, role, message, sessionID)
}

// SearchConversationContext returns past messages similar to the query.
func (m *Memory) SearchConversationContext(ctx context.Context, userID, query string, nResults int, agentName string) ([]vectordb.Document, error) {
	return m.vector.SearchConversations(ctx, userID, query, nResults, agentName)
}
