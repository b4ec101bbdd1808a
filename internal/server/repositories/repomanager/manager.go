package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/articles"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/comments"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/themes"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, so services decide the transactional scope.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
	Themes(db dbx.DBTX) themes.Repository
	Articles(db dbx.DBTX) articles.Repository
	Comments(db dbx.DBTX) comments.Repository
}
