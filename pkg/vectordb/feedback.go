package vectordb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// AddFoodFeedback appends one rated-food document. The rating rides along
// as string metadata since chromem metadata is flat strings.
func (s *Store) AddFoodFeedback(ctx context.Context, userID, mealID, foodDescription string, rating int, feedbackText, cuisine string) (string, error) {
	id := fmt.Sprintf("food_%s_%s", userID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	content := foodDescription
	if feedbackText != "" {
		content = foodDescription + ". " + feedbackText
	}

	metadata := map[string]string{
		"user_id":   userID,
		"rating":    strconv.Itoa(rating),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if mealID != "" {
		metadata["meal_id"] = mealID
	}
	if cuisine != "" {
		metadata["cuisine"] = cuisine
	}

	err := s.feedback.AddDocument(ctx, chromem.Document{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to add food feedback: %w", err)
	}
	return id, nil
}

// SearchLikedFoods returns foods the user rated at or above minRating,
// most similar first. chromem metadata filters are equality-only, so the
// rating bound is applied after the similarity search.
func (s *Store) SearchLikedFoods(ctx context.Context, userID, query string, minRating, nResults int) ([]Document, error) {
	return s.searchByRating(ctx, userID, query, nResults, func(rating int) bool {
		return rating >= minRating
	})
}

// SearchDislikedFoods returns foods the user rated at or below maxRating.
func (s *Store) SearchDislikedFoods(ctx context.Context, userID, query string, maxRating, nResults int) ([]Document, error) {
	return s.searchByRating(ctx, userID, query, nResults, func(rating int) bool {
		return rating <= maxRating
	})
}

func (s *Store) searchByRating(ctx context.Context, userID, query string, nResults int, keep func(int) bool) ([]Document, error) {
	count := s.feedback.Count()
	if count == 0 {
		return []Document{}, nil
	}
	docs, err := s.query(ctx, s.feedback, query, count, map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}

	filtered := make([]Document, 0, len(docs))
	for _, doc := range docs {
		rating, err := strconv.Atoi(doc.Metadata["rating"])
		if err != nil {
			continue
		}
		if keep(rating) {
			filtered = append(filtered, doc)
		}
		if len(filtered) == nResults {
			break
		}
	}
	return filtered, nil
}

// GetAllFeedback returns every feedback document for the user.
func (s *Store) GetAllFeedback(ctx context.Context, userID string) ([]Document, error) {
	return s.all(ctx, s.feedback, map[string]string{"user_id": userID})
}
