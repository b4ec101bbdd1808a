// Package articles persists articles. Articles are written once and never
// updated in place.
package articles

import (
	"context"

	"github.com/dmitrijs2005/mdd/internal/server/models"
)

type Repository interface {
	// Create stores article and fills in its ID and CreatedAt.
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	// ListByTheme returns the theme's articles in storage order.
	ListByTheme(ctx context.Context, themeID int64) ([]*models.Article, error)
}
