package vectordb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	chromem "github.com/philippgille/chromem-go"
)

const (
	collectionConversations = "conversations"
	collectionFoodFeedback  = "food_feedback"
	collectionPreferences   = "preferences"
)

// Store wraps an embedded chromem-go database behind the semantic half of
// the memory layer. Three collections, each document holding free text plus
// flat string metadata keyed by user_id.
type Store struct {
	db     *chromem.DB
	logger *log.Logger

	conversations *chromem.Collection
	feedback      *chromem.Collection
	preferences   *chromem.Collection
}

type Document struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float32           `json:"similarity"`
}

// NewStore opens (or creates) a persistent store at path.
func NewStore(logger *log.Logger, path string, embed chromem.EmbeddingFunc) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}
	return newStore(logger, db, embed)
}

// NewInMemoryStore creates a store that is not persisted. Used by tests and
// by the maintenance CLI dry runs.
func NewInMemoryStore(logger *log.Logger, embed chromem.EmbeddingFunc) (*Store, error) {
	return newStore(logger, chromem.NewDB(), embed)
}

func newStore(logger *log.Logger, db *chromem.DB, embed chromem.EmbeddingFunc) (*Store, error) {
	conversations, err := db.GetOrCreateCollection(collectionConversations, map[string]string{"description": "Conversation history between users and agents"}, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversations collection: %w", err)
	}
	feedback, err := db.GetOrCreateCollection(collectionFoodFeedback, map[string]string{"description": "User feedback on foods and meals"}, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create food_feedback collection: %w", err)
	}
	preferences, err := db.GetOrCreateCollection(collectionPreferences, map[string]string{"description": "Semantic food likes and dislikes"}, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create preferences collection: %w", err)
	}

	return &Store{
		db:            db,
		logger:        logger,
		conversations: conversations,
		feedback:      feedback,
		preferences:   preferences,
	}, nil
}

// query runs a similarity search against one collection. chromem rejects
// nResults larger than the collection size, so the requested count is
// clamped first and walked down if the library still refuses.
func (s *Store) query(ctx context.Context, col *chromem.Collection, queryText string, nResults int, where map[string]string) ([]Document, error) {
	count := col.Count()
	if count == 0 || nResults <= 0 {
		return []Document{}, nil
	}
	if nResults > count {
		nResults = count
	}

	var results []chromem.Result
	for n := nResults; n >= 1; n-- {
		var err error
		results, err = col.Query(ctx, queryText, n, where, nil)
		if err == nil {
			break
		}
		if strings.Contains(err.Error(), "nResults must be") && n > 1 {
			continue
		}
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, result := range results {
		docs = append(docs, Document{
			ID:         result.ID,
			Content:    result.Content,
			Metadata:   result.Metadata,
			Similarity: result.Similarity,
		})
	}
	return docs, nil
}

// all returns every document in a collection matching the filter. chromem
// has no listing API, so this is a similarity query clamped to the
// collection size.
func (s *Store) all(ctx context.Context, col *chromem.Collection, where map[string]string) ([]Document, error) {
	count := col.Count()
	if count == 0 {
		return []Document{}, nil
	}
	return s.query(ctx, col, "all records", count, where)
}

func sortByTimestampDesc(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Metadata["timestamp"] > docs[j].Metadata["timestamp"]
	})
}

// DeleteUserData removes every document belonging to the user from all
// three collections.
func (s *Store) DeleteUserData(ctx context.Context, userID string) error {
	where := map[string]string{"user_id": userID}
	for name, col := range map[string]*chromem.Collection{
		collectionConversations: s.conversations,
		collectionFoodFeedback:  s.feedback,
		collectionPreferences:   s.preferences,
	} {
		if col.Count() == 0 {
			continue
		}
		if err := col.Delete(ctx, where, nil); err != nil {
			return fmt.Errorf("failed to delete %s documents: %w", name, err)
		}
	}
	return nil
}
