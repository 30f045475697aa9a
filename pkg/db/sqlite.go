package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite connection behind the structured half of the
// memory layer.
//
// 1. The creation method creates the tables if they do not exist.
// 2. Convenience methods for querying data.
// 3. Convenience methods for inserting and updating data.
type Store struct {
	db     *sqlx.DB
	logger *log.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	age INTEGER,
	sex TEXT,
	height REAL,
	weight REAL,
	country TEXT,
	ethnicity TEXT,
	activity_level TEXT,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_goals (
	goal_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	goal_type TEXT,
	target_weight REAL,
	target_timeline_weeks INTEGER,
	daily_calories INTEGER,
	protein_g INTEGER,
	carbs_g INTEGER,
	fats_g INTEGER,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);
CREATE INDEX IF NOT EXISTS idx_user_goals_user_id ON user_goals(user_id);

CREATE TABLE IF NOT EXISTS user_restrictions (
	restriction_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	restriction_type TEXT,
	restriction TEXT,
	severity TEXT,
	created_at TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);
CREATE INDEX IF NOT EXISTS idx_user_restrictions_user_id ON user_restrictions(user_id);

CREATE TABLE IF NOT EXISTS user_preferences (
	preference_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	diet_type TEXT,
	cuisine_preferences TEXT,
	meals_per_day INTEGER,
	cooking_time_max INTEGER,
	budget_weekly REAL,
	meal_complexity TEXT,
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);
CREATE INDEX IF NOT EXISTS idx_user_preferences_user_id ON user_preferences(user_id);

CREATE TABLE IF NOT EXISTS meal_plans (
	plan_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	week_start_date TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	total_cost REAL,
	created_by_agent TEXT,
	created_at TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);
CREATE INDEX IF NOT EXISTS idx_meal_plans_user_id ON meal_plans(user_id);

CREATE TABLE IF NOT EXISTS planned_meals (
	meal_id TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	day_of_week TEXT,
	meal_type TEXT,
	recipe_name TEXT,
	calories INTEGER,
	protein_g REAL,
	carbs_g REAL,
	fats_g REAL,
	prep_time_min INTEGER,
	ingredients TEXT,
	is_completed BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP,
	FOREIGN KEY (plan_id) REFERENCES meal_plans(plan_id)
);
CREATE INDEX IF NOT EXISTS idx_planned_meals_plan_id ON planned_meals(plan_id);

CREATE TABLE IF NOT EXISTS actual_meals (
	meal_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	plan_id TEXT,
	planned_meal_id TEXT,
	day_of_week TEXT,
	meal_type TEXT,
	food_description TEXT,
	calories INTEGER,
	protein_g REAL,
	carbs_g REAL,
	fats_g REAL,
	is_planned BOOLEAN NOT NULL DEFAULT 0,
	logged_by_agent TEXT,
	timestamp TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_actual_meals_user_id ON actual_meals(user_id);

CREATE TABLE IF NOT EXISTS meal_modifications (
	modification_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	plan_id TEXT,
	day_of_week TEXT,
	modification_type TEXT,
	original_calories INTEGER,
	new_calories INTEGER,
	reason TEXT,
	adjusted_by_agent TEXT,
	timestamp TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_meal_modifications_user_id ON meal_modifications(user_id);

CREATE TABLE IF NOT EXISTS meal_feedback (
	feedback_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	meal_id TEXT,
	food_description TEXT,
	rating INTEGER,
	feedback_text TEXT,
	cuisine TEXT,
	created_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_meal_feedback_user_id ON meal_feedback(user_id);
`

// NewStore creates a new SQLite-backed store.
func NewStore(logger *log.Logger, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// Enable WAL mode for better concurrency and performance
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
