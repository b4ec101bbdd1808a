package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts the pair unless it already exists. A theme or user that does
// not exist yields common.ErrorNotFound.
func (r *PostgresRepository) Add(ctx context.Context, userID, themeID int64) error {
	query :=
		`INSERT INTO user_themes (user_id, theme_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, theme_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, themeID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, themeID int64) error {
	query := `DELETE FROM user_themes WHERE user_id = $1 AND theme_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, themeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ThemeIDs lists the user's subscriptions in the order they were made.
func (r *PostgresRepository) ThemeIDs(ctx context.Context, userID int64) ([]int64, error) {
	query :=
		`SELECT theme_id FROM user_themes
		 WHERE user_id = $1
		 ORDER BY created_at, theme_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}
