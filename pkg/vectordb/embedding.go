package vectordb

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// Embedder is the slice of the AI service the store needs.
type Embedder interface {
	Embedding(ctx context.Context, input string, model string) ([]float64, error)
}

// OpenAIEmbedding adapts the AI service's embedding call to chromem's
// embedding function signature.
func OpenAIEmbedding(embedder Embedder, model string) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vector, err := embedder.Embedding(ctx, text, model)
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		result := make([]float32, len(vector))
		for i, v := range vector {
			result[i] = float32(v)
		}
		return result, nil
	}
}
