package db

import "time"

type User struct {
	ID            string    `db:"user_id"        json:"user_id"`
	Name          string    `db:"name"           json:"name"`
	Email         *string   `db:"email"          json:"email,omitempty"`
	Age           int       `db:"age"            json:"age"`
	Sex           string    `db:"sex"            json:"sex"`
	HeightCm      float64   `db:"height"         json:"height"`
	WeightKg      float64   `db:"weight"         json:"weight"`
	Country       *string   `db:"country"        json:"country,omitempty"`
	Ethnicity     *string   `db:"ethnicity"      json:"ethnicity,omitempty"`
	ActivityLevel string    `db:"activity_level" json:"activity_level"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}

type Goal struct {
	ID            string    `db:"goal_id"               json:"goal_id"`
	UserID        string    `db:"user_id"               json:"user_id"`
	GoalType      string    `db:"goal_type"             json:"goal_type"`
	TargetWeight  *float64  `db:"target_weight"         json:"target_weight,omitempty"`
	TargetWeeks   *int      `db:"target_timeline_weeks" json:"target_timeline_weeks,omitempty"`
	DailyCalories int       `db:"daily_calories"        json:"daily_calories"`
	ProteinG      int       `db:"protein_g"             json:"protein_g"`
	CarbsG        int       `db:"carbs_g"               json:"carbs_g"`
	FatsG         int       `db:"fats_g"                json:"fats_g"`
	IsActive      bool      `db:"is_active"             json:"is_active"`
	CreatedAt     time.Time `db:"created_at"            json:"created_at"`
}

type Restriction struct {
	ID        string    `db:"restriction_id"   json:"restriction_id"`
	UserID    string    `db:"user_id"          json:"user_id"`
	Type      string    `db:"restriction_type" json:"restriction_type"`
	Value     string    `db:"restriction"      json:"restriction"`
	Severity  string    `db:"severity"         json:"severity"`
	CreatedAt time.Time `db:"created_at"       json:"created_at"`
}

type Preferences struct {
	ID                 string    `json:"preference_id"`
	UserID             string    `json:"user_id"`
	DietType           string    `json:"diet_type"`
	CuisinePreferences []string  `json:"cuisine_preferences"`
	MealsPerDay        int       `json:"meals_per_day"`
	CookingTimeMax     *int      `json:"cooking_time_max,omitempty"`
	BudgetWeekly       *float64  `json:"budget_weekly,omitempty"`
	MealComplexity     string    `json:"meal_complexity"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type MealPlan struct {
	ID             string        `db:"plan_id"          json:"plan_id"`
	UserID         string        `db:"user_id"          json:"user_id"`
	WeekStartDate  string        `db:"week_start_date"  json:"week_start_date"`
	Status         string        `db:"status"           json:"status"`
	TotalCost      *float64      `db:"total_cost"       json:"total_cost,omitempty"`
	CreatedByAgent string        `db:"created_by_agent" json:"created_by_agent"`
	CreatedAt      time.Time     `db:"created_at"       json:"created_at"`
	Meals          []PlannedMeal `db:"-"                json:"meals"`
}

// PlannedMeal doubles as the decode target for generated plan JSON, so the
// nutrition fields are pointers: keys the generator omitted stay NULL in
// storage instead of collapsing to zero.
type PlannedMeal struct {
	ID          string    `json:"meal_id,omitempty"`
	PlanID      string    `json:"plan_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	DayOfWeek   string    `json:"day_of_week"`
	MealType    string    `json:"meal_type"`
	RecipeName  *string   `json:"recipe_name"`
	Calories    *int      `json:"calories"`
	ProteinG    *float64  `json:"protein_g"`
	CarbsG      *float64  `json:"carbs_g"`
	FatsG       *float64  `json:"fats_g"`
	PrepTimeMin *int      `json:"prep_time_min"`
	Ingredients []string  `json:"ingredients"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

type ActualMeal struct {
	ID              string    `db:"meal_id"          json:"meal_id"`
	UserID          string    `db:"user_id"          json:"user_id"`
	PlanID          *string   `db:"plan_id"          json:"plan_id,omitempty"`
	PlannedMealID   *string   `db:"planned_meal_id"  json:"planned_meal_id,omitempty"`
	DayOfWeek       string    `db:"day_of_week"      json:"day_of_week"`
	MealType        string    `db:"meal_type"        json:"meal_type"`
	FoodDescription string    `db:"food_description" json:"food_description"`
	Calories        *int      `db:"calories"         json:"calories,omitempty"`
	ProteinG        *float64  `db:"protein_g"        json:"protein_g,omitempty"`
	CarbsG          *float64  `db:"carbs_g"          json:"carbs_g,omitempty"`
	FatsG           *float64  `db:"fats_g"           json:"fats_g,omitempty"`
	IsPlanned       bool      `db:"is_planned"       json:"is_planned"`
	LoggedByAgent   string    `db:"logged_by_agent"  json:"logged_by_agent"`
	Timestamp       time.Time `db:"timestamp"        json:"timestamp"`
}

type Modification struct {
	ID               string    `db:"modification_id"   json:"modification_id"`
	UserID           string    `db:"user_id"           json:"user_id"`
	PlanID           *string   `db:"plan_id"           json:"plan_id,omitempty"`
	DayOfWeek        string    `db:"day_of_week"       json:"day_of_week"`
	ModificationType string    `db:"modification_type" json:"modification_type"`
	OriginalCalories *int      `db:"original_calories" json:"original_calories,omitempty"`
	NewCalories      *int      `db:"new_calories"      json:"new_calories,omitempty"`
	Reason           string    `db:"reason"            json:"reason"`
	AdjustedByAgent  string    `db:"adjusted_by_agent" json:"adjusted_by_agent"`
	Timestamp        time.Time `db:"timestamp"         json:"timestamp"`
}

type MealFeedback struct {
	ID              string    `db:"feedback_id"      json:"feedback_id"`
	UserID          string    `db:"user_id"          json:"user_id"`
	MealID          *string   `db:"meal_id"          json:"meal_id,omitempty"`
	FoodDescription string    `db:"food_description" json:"food_description"`
	Rating          int       `db:"rating"           json:"rating"`
	FeedbackText    string    `db:"feedback_text"    json:"feedback_text"`
	Cuisine         *string   `db:"cuisine"          json:"cuisine,omitempty"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
}
