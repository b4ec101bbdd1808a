package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/repomanager"
)

// FeedOrder optionally sorts the feed. The zero value keeps storage order:
// subscribed themes in subscription order, articles by id within a theme.
type FeedOrder struct {
	Field string // "", "created_at" or "title"
	Desc  bool
}

// ParseFeedOrder validates the sort and direction query values.
func ParseFeedOrder(sort, direction string) (FeedOrder, error) {
	v := &common.ValidationError{}
	var o FeedOrder

	switch sort = strings.ToLower(strings.TrimSpace(sort)); sort {
	case "", "created_at", "title":
		o.Field = sort
	default:
		v.Add("sort", "must be one of created_at, title")
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
	case "desc":
		o.Desc = true
	default:
		v.Add("direction", "must be asc or desc")
	}

	if err := v.Err(); err != nil {
		return FeedOrder{}, err
	}
	return o, nil
}

type ArticleInput struct {
	Title   string
	Content string
	ThemeID int64
}

// ArticleService builds the subscription feed and creates articles.
type ArticleService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewArticleService(store dbx.Store, m repomanager.RepositoryManager, logger logging.Logger) *ArticleService {
	return &ArticleService{store: store, repomanager: m, logger: logger.With("module", "article_service")}
}

// Feed returns the enriched articles of every theme the caller subscribes
// to. No subscriptions yields an empty, non-nil feed.
func (s *ArticleService) Feed(ctx context.Context, p models.Principal, order FeedOrder) ([]*models.ArticleView, error) {
	conn := s.store.Conn()

	u, err := resolvePrincipal(ctx, s.repomanager.Users(conn), p)
	if err != nil {
		return nil, err
	}

	themeIDs, err := s.repomanager.Subscriptions(conn).ThemeIDs(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}

	feed, err := s.FeedForThemes(ctx, themeIDs)
	if err != nil {
		return nil, err
	}

	sortFeed(feed, order)
	return feed, nil
}

// FeedForThemes concatenates the articles of each theme in themeIDs order,
// each theme's articles in storage order, and enriches every article with
// its author's name and theme's title. A missing author or theme fails the
// whole call with common.ErrIntegrity.
func (s *ArticleService) FeedForThemes(ctx context.Context, themeIDs []int64) ([]*models.ArticleView, error) {
	conn := s.store.Conn()
	articles := s.repomanager.Articles(conn)
	e := newEnricher(s.repomanager.Users(conn), s.repomanager.Themes(conn))

	feed := []*models.ArticleView{}
	for _, themeID := range themeIDs {
		list, err := articles.ListByTheme(ctx, themeID)
		if err != nil {
			return nil, fmt.Errorf("list articles of theme %d: %w", themeID, err)
		}
		for _, a := range list {
			view, err := e.article(ctx, a)
			if err != nil {
				if errors.Is(err, common.ErrIntegrity) {
					s.logger.Error(ctx, "feed integrity fault", "article_id", a.ID, "error", err)
				}
				return nil, err
			}
			feed = append(feed, view)
		}
	}
	return feed, nil
}

// Create stores a new article by the caller. The author and theme are
// checked inside the same transaction as the insert, so a missing theme
// (common.ErrorNotFound) leaves nothing behind.
func (s *ArticleService) Create(ctx context.Context, p models.Principal, in ArticleInput) (*models.ArticleView, error) {
	v := &common.ValidationError{}
	check(v, articleRules(in.Title, in.Content)...)
	if in.ThemeID <= 0 {
		v.Add("themeId", msgPositiveTheme)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var view *models.ArticleView
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		author, err := resolvePrincipal(ctx, s.repomanager.Users(tx), p)
		if err != nil {
			return err
		}

		theme, err := s.repomanager.Themes(tx).GetByID(ctx, in.ThemeID)
		if err != nil {
			return err
		}

		a, err := s.repomanager.Articles(tx).Create(ctx, &models.Article{
			Title:    in.Title,
			Content:  in.Content,
			AuthorID: author.ID,
			ThemeID:  theme.ID,
		})
		if err != nil {
			return fmt.Errorf("error creating article: %w", err)
		}

		view = &models.ArticleView{Article: *a, AuthorName: author.UserName, ThemeTitle: theme.Title}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "article created", "article_id", view.ID, "theme_id", view.ThemeID, "user_id", view.AuthorID)
	return view, nil
}

// Get returns one enriched article.
func (s *ArticleService) Get(ctx context.Context, id int64) (*models.ArticleView, error) {
	conn := s.store.Conn()

	a, err := s.repomanager.Articles(conn).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newEnricher(s.repomanager.Users(conn), s.repomanager.Themes(conn)).article(ctx, a)
}

func sortFeed(feed []*models.ArticleView, o FeedOrder) {
	var less func(a, b *models.ArticleView) int
	switch o.Field {
	case "created_at":
		less = func(a, b *models.ArticleView) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "title":
		less = func(a, b *models.ArticleView) int { return cmp.Compare(a.Title, b.Title) }
	default:
		return
	}

	slices.SortStableFunc(feed, func(a, b *models.ArticleView) int {
		if o.Desc {
			return less(b, a)
		}
		return less(a, b)
	})
}
