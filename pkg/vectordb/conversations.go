package vectordb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// AddConversation appends one conversation message for the user.
func (s *Store) AddConversation(ctx context.Context, userID, agentName, role, message, sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = "default"
	}
	id := fmt.Sprintf("conv_%s_%s", userID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	err := s.conversations.AddDocument(ctx, chromem.Document{
		ID:      id,
		Content: message,
		Metadata: map[string]string{
			"user_id":    userID,
			"agent":      agentName,
			"role":       role,
			"session_id": sessionID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to add conversation: %w", err)
	}
	return id, nil
}

// SearchConversations returns the user's messages most similar to the query,
// optionally narrowed to one agent.
func (s *Store) SearchConversations(ctx context.Context, userID, query string, nResults int, agentName string) ([]Document, error) {
	where := map[string]string{"user_id": userID}
	if agentName != "" {
		where["agent"] = agentName
	}
	return s.query(ctx, s.conversations, query, nResults, where)
}

// GetRecentConversations returns the user's latest messages, newest first.
func (s *Store) GetRecentConversations(ctx context.Context, userID string, nResults int) ([]Document, error) {
	docs, err := s.all(ctx, s.conversations, map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}
	sortByTimestampDesc(docs)
	if len(docs) > nResults {
		docs = docs[:nResults]
	}
	return docs, nil
}
