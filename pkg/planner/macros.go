package planner

// Biometrics is the input to the macro computation.
type Biometrics struct {
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`
	HeightCm      float64 `json:"height"`
	WeightKg      float64 `json:"weight"`
	ActivityLevel string  `json:"activity_level"`
}

// Macros are daily targets: calories plus protein/carb/fat grams.
type Macros struct {
	DailyCalories int `json:"daily_calories"`
	ProteinG      int `json:"protein_g"`
	CarbsG        int `json:"carbs_g"`
	FatsG         int `json:"fats_g"`
}

var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extremely_active":  1.9,
}

const defaultActivityMultiplier = 1.55

type goalAdjustment struct {
	calorieOffset float64
	proteinRatio  float64
	carbsRatio    float64
	fatRatio      float64
}

var goalAdjustments = map[string]goalAdjustment{
	"lose_weight": {-500, 0.40, 0.30, 0.30},
	"gain_muscle": {+300, 0.30, 0.40, 0.30},
	"bulk":        {+500, 0.25, 0.45, 0.30},
	"cut":         {-300, 0.40, 0.30, 0.30},
	"maintain":    {0, 0.30, 0.40, 0.30},
}

var defaultGoalAdjustment = goalAdjustments["maintain"]

// ComputeMacros derives daily calorie and macro-gram targets. Pure and
// total: unrecognized activity levels and goal types fall back to defaults.
//
// BMR per Mifflin-St Jeor (+5 for male, -161 otherwise), TDEE = BMR times
// the activity multiplier, daily calories = TDEE plus the goal offset, and
// grams from the goal's macro ratios at 4 kcal/g (protein, carbs) and
// 9 kcal/g (fat). All integer conversions truncate.
func ComputeMacros(bio Biometrics, goalType string) Macros {
	bmr := 10*bio.WeightKg + 6.25*bio.HeightCm - 5*float64(bio.Age)
	if bio.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	multiplier, ok := activityMultipliers[bio.ActivityLevel]
	if !ok {
		multiplier = defaultActivityMultiplier
	}
	tdee := bmr * multiplier

	adjustment, ok := goalAdjustments[goalType]
	if !ok {
		adjustment = defaultGoalAdjustment
	}
	daily := int(tdee + adjustment.calorieOffset)

	return Macros{
		DailyCalories: daily,
		ProteinG:      int(float64(daily) * adjustment.proteinRatio / 4),
		CarbsG:        int(float64(daily) * adjustment.carbsRatio / 4),
		FatsG:         int(float64(daily) * adjustment.fatRatio / 9),
	}
}
