// Package themes reads the theme catalogue.
package themes

import (
	"context"

	"github.com/dmitrijs2005/mdd/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Theme, error)
	GetByID(ctx context.Context, id int64) (*models.Theme, error)
}
