package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/nutrigenie-ai/nutrigenie/pkg/memory"
	"github.com/nutrigenie-ai/nutrigenie/pkg/planner"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// createUserRequest mirrors the onboarding form. Required fields are
// pointers so absence is distinguishable from zero values.
type createUserRequest struct {
	Name          *string  `json:"name"`
	Email         *string  `json:"email"`
	Age           *int     `json:"age"`
	Sex           *string  `json:"sex"`
	Height        *float64 `json:"height"`
	Weight        *float64 `json:"weight"`
	Country       *string  `json:"country"`
	Ethnicity     *string  `json:"ethnicity"`
	ActivityLevel *string  `json:"activity_level"`
	GoalType      *string  `json:"goal_type"`

	TargetWeight        *float64 `json:"target_weight"`
	TargetTimelineWeeks *int     `json:"target_timeline_weeks"`

	Allergies             []string `json:"allergies"`
	MedicalConditions     []string `json:"medical_conditions"`
	ReligiousRestrictions []string `json:"religious_restrictions"`

	DietType           string   `json:"diet_type"`
	CuisinePreferences []string `json:"cuisine_preferences"`
	MealsPerDay        int      `json:"meals_per_day"`
	CookingTimeMax     *int     `json:"cooking_time_max"`
	BudgetWeekly       *float64 `json:"budget_weekly"`
	MealComplexity     string   `json:"meal_complexity"`

	FoodLikes    []string `json:"food_likes"`
	FoodDislikes []string `json:"food_dislikes"`
}

func (req *createUserRequest) missingFields() []string {
	var missing []string
	if req.Name == nil || *req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Age == nil {
		missing = append(missing, "age")
	}
	if req.Sex == nil || *req.Sex == "" {
		missing = append(missing, "sex")
	}
	if req.Height == nil {
		missing = append(missing, "height")
	}
	if req.Weight == nil {
		missing = append(missing, "weight")
	}
	if req.ActivityLevel == nil || *req.ActivityLevel == "" {
		missing = append(missing, "activity_level")
	}
	if req.GoalType == nil || *req.GoalType == "" {
		missing = append(missing, "goal_type")
	}
	return missing
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body", "validation_error")
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		s.writeError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "), "validation_error")
		return
	}

	input := memory.ProfileInput{
		Name:          *req.Name,
		Email:         req.Email,
		Age:           *req.Age,
		Sex:           *req.Sex,
		HeightCm:      *req.Height,
		WeightKg:      *req.Weight,
		Country:       req.Country,
		Ethnicity:     req.Ethnicity,
		ActivityLevel: *req.ActivityLevel,
		Goal: &memory.GoalInput{
			GoalType:            *req.GoalType,
			TargetWeight:        req.TargetWeight,
			TargetTimelineWeeks: req.TargetTimelineWeeks,
		},
		Allergies:             req.Allergies,
		MedicalConditions:     req.MedicalConditions,
		ReligiousRestrictions: req.ReligiousRestrictions,
		Preferences: &memory.PreferencesInput{
			DietType:           req.DietType,
			CuisinePreferences: req.CuisinePreferences,
			MealsPerDay:        req.MealsPerDay,
			CookingTimeMax:     req.CookingTimeMax,
			BudgetWeekly:       req.BudgetWeekly,
			MealComplexity:     req.MealComplexity,
		},
		FoodLikes:    req.FoodLikes,
		FoodDislikes: req.FoodDislikes,
	}

	result, err := s.plans.CreateProfileAndPlan(r.Context(), input)
	if err != nil {
		if errors.Is(err, planner.ErrGenerationUnavailable) {
			s.logger.Error("Meal plan generation unavailable", "error", err)
			s.writeError(w, http.StatusBadGateway, err.Error(), "generation_unavailable")
			return
		}
		s.logger.Error("Failed to create user", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error(), "storage_error")
		return
	}

	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := s.memory.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), "storage_error")
		return
	}
	if user == nil {
		s.writeError(w, http.StatusNotFound, "User not found", "")
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetMealPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	plan, err := s.memory.GetMealPlan(r.Context(), planID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), "storage_error")
		return
	}
	if plan == nil {
		s.writeError(w, http.StatusNotFound, "Meal plan not found", "")
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleActivePlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	plan, err := s.memory.GetActiveMealPlan(r.Context(), userID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), "storage_error")
		return
	}
	if plan == nil {
		s.writeError(w, http.StatusNotFound, "No active meal plan", "")
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

type resolveProductsRequest struct {
	TopN int `json:"top_n"`
}

func (s *Server) handleResolveProducts(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	plan, err := s.memory.GetMealPlan(r.Context(), planID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), "storage_error")
		return
	}
	if plan == nil {
		s.writeError(w, http.StatusNotFound, "Meal plan not found", "")
		return
	}

	req := resolveProductsRequest{TopN: 3}
	if r.Body != nil {
		// Body is optional; decode errors fall back to the default.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.TopN <= 0 {
		req.TopN = 3
	}

	session, err := s.ensureSession(r.Context())
	if err != nil {
		s.logger.Error("Catalog handshake failed", "error", err)
		s.writeError(w, http.StatusBadGateway, "Product catalog unavailable", "catalog_unavailable")
		return
	}

	suggestions := s.catalog.ResolvePlan(r.Context(), session, plan, req.TopN)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"plan_id":     planID,
		"suggestions": suggestions,
	})
}
