package sources

import (
	"context"

	"github.com/mentionforge/brand-analyzer/internal/models"
)

// Source interface defines the contract for social search sources
type Source interface {
	GetName() string
	IsEnabled() bool
	Search(ctx context.Context, query string, maxResults int) ([]models.Mention, error)
}

// Ensure TwitterSource implements Source
var _ Source = (*TwitterSource)(nil)
