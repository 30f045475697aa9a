package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateUser inserts a user row and returns its id.
func (s *Store) CreateUser(ctx context.Context, user User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (user_id, name, email, age, sex, height, weight, country, ethnicity, activity_level, created_at, updated_at)
		VALUES (:user_id, :name, :email, :age, :sex, :height, :weight, :country, :ethnicity, :activity_level, :created_at, :updated_at)
	`, user)
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return user.ID, nil
}

// GetUser returns the user or nil when the id is unknown.
func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

var userColumns = map[string]bool{
	"name":           true,
	"email":          true,
	"age":            true,
	"sex":            true,
	"height":         true,
	"weight":         true,
	"country":        true,
	"ethnicity":      true,
	"activity_level": true,
}

// UpdateUser applies a partial-field patch. Unknown columns are rejected.
func (s *Store) UpdateUser(ctx context.Context, userID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+2)
	for column, value := range updates {
		if !userColumns[column] {
			return fmt.Errorf("unknown user column %q", column)
		}
		setClauses = append(setClauses, column+" = ?")
		args = append(args, value)
	}
	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC(), userID)

	query := "UPDATE users SET " + strings.Join(setClauses, ", ") + " WHERE user_id = ?"
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}
