// Package comments persists article comments.
package comments

import (
	"context"

	"github.com/dmitrijs2005/mdd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID int64) ([]*models.Comment, error)
}
