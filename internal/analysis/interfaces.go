package analysis

import (
	"context"

	"github.com/mentionforge/brand-analyzer/internal/models"
)

// Searcher runs one social search query
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.Mention, error)
}

// Generator is the language model. GenerateJSON asks for a JSON-shaped
// response but gives no guarantee about its content.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Pinner uploads content to content-addressed storage and returns its hash
type Pinner interface {
	Configured() bool
	PinJSON(ctx context.Context, content interface{}, metadata map[string]string) (string, error)
}
