package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectArticles = `
	SELECT a.id, a.title, a.content, a.user_id, a.theme_id, a.created_at,
	       COALESCE(array_agg(c.id ORDER BY c.id) FILTER (WHERE c.id IS NOT NULL), '{}') AS comment_ids
	FROM articles a
	LEFT JOIN comments c ON c.article_id = a.id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	query :=
		`INSERT INTO articles (title, content, user_id, theme_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		article.Title, article.Content, article.AuthorID, article.ThemeID).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	article.CommentIDs = []int64{}
	return article, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	query := selectArticles + `
	WHERE a.id = $1
	GROUP BY a.id`

	a, err := scanArticle(pgtype.NewMap(), r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) ListByTheme(ctx context.Context, themeID int64) ([]*models.Article, error) {
	query := selectArticles + `
	WHERE a.theme_id = $1
	GROUP BY a.id
	ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, themeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	result := []*models.Article{}
	for rows.Next() {
		a, err := scanArticle(m, rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(m *pgtype.Map, s scanner) (*models.Article, error) {
	a := &models.Article{}
	var commentIDs []int64
	if err := s.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.ThemeID, &a.CreatedAt, m.SQLScanner(&commentIDs)); err != nil {
		return nil, err
	}
	if commentIDs == nil {
		commentIDs = []int64{}
	}
	a.CommentIDs = commentIDs
	return a, nil
}
