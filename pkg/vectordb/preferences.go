package vectordb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// AddPreference appends one semantic preference statement, e.g.
// "loves spicy thai curry" with type "like" and strength "strong".
func (s *Store) AddPreference(ctx context.Context, userID, text, preferenceType, strength string) (string, error) {
	id := fmt.Sprintf("pref_%s_%s", userID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	err := s.preferences.AddDocument(ctx, chromem.Document{
		ID:      id,
		Content: text,
		Metadata: map[string]string{
			"user_id":   userID,
			"type":      preferenceType,
			"strength":  strength,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to add preference: %w", err)
	}
	return id, nil
}

// SearchPreferences returns the user's preference statements most similar
// to the query, optionally narrowed by type ("like" or "dislike").
func (s *Store) SearchPreferences(ctx context.Context, userID, query, preferenceType string, nResults int) ([]Document, error) {
	where := map[string]string{"user_id": userID}
	if preferenceType != "" {
		where["type"] = preferenceType
	}
	return s.query(ctx, s.preferences, query, nResults, where)
}

// GetAllPreferences returns every preference document for the user.
func (s *Store) GetAllPreferences(ctx context.Context, userID string) ([]Document, error) {
	return s.all(ctx, s.preferences, map[string]string{"user_id": userID})
}
