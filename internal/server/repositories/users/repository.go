package users

import (
	"context"

	"github.com/dmitrijs2005/mdd/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrorNotFound when no
// row matches; writes that hit a unique constraint return
// *common.ConflictError naming the field.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, userName, email string) (*models.User, error)
}
