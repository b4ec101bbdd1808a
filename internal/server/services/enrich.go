package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/themes"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/users"
)

// enricher resolves author names and theme titles, caching each lookup for
// the lifetime of one call. A referenced row that is missing is a data
// integrity fault.
type enricher struct {
	users  users.Repository
	themes themes.Repository

	names  map[int64]string
	titles map[int64]string
}

func newEnricher(u users.Repository, t themes.Repository) *enricher {
	return &enricher{users: u, themes: t, names: map[int64]string{}, titles: map[int64]string{}}
}

func (e *enricher) authorName(ctx context.Context, id int64) (string, error) {
	if name, ok := e.names[id]; ok {
		return name, nil
	}
	u, err := e.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: account %d not found", common.ErrIntegrity, id)
		}
		return "", err
	}
	e.names[id] = u.UserName
	return u.UserName, nil
}

func (e *enricher) themeTitle(ctx context.Context, id int64) (string, error) {
	if title, ok := e.titles[id]; ok {
		return title, nil
	}
	t, err := e.themes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: theme %d not found", common.ErrIntegrity, id)
		}
		return "", err
	}
	e.titles[id] = t.Title
	return t.Title, nil
}

func (e *enricher) article(ctx context.Context, a *models.Article) (*models.ArticleView, error) {
	name, err := e.authorName(ctx, a.AuthorID)
	if err != nil {
		return nil, err
	}
	title, err := e.themeTitle(ctx, a.ThemeID)
	if err != nil {
		return nil, err
	}
	return &models.ArticleView{Article: *a, AuthorName: name, ThemeTitle: title}, nil
}

func (e *enricher) comment(ctx context.Context, c *models.Comment) (*models.CommentView, error) {
	name, err := e.authorName(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	return &models.CommentView{Comment: *c, AuthorName: name}, nil
}
