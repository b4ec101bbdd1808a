package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/repomanager"
)

type CommentService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCommentService(store dbx.Store, m repomanager.RepositoryManager, logger logging.Logger) *CommentService {
	return &CommentService{store: store, repomanager: m, logger: logger.With("module", "comment_service")}
}

// List returns an article's comments oldest first, each with its author's
// name. An unknown article is common.ErrorNotFound.
func (s *CommentService) List(ctx context.Context, articleID int64) ([]*models.CommentView, error) {
	conn := s.store.Conn()

	if _, err := s.repomanager.Articles(conn).GetByID(ctx, articleID); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Comments(conn).ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	e := newEnricher(s.repomanager.Users(conn), s.repomanager.Themes(conn))
	out := make([]*models.CommentView, 0, len(list))
	for _, c := range list {
		view, err := e.comment(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// Create adds a comment by the caller to an existing article.
func (s *CommentService) Create(ctx context.Context, p models.Principal, articleID int64, content string) (*models.CommentView, error) {
	v := &common.ValidationError{}
	check(v, commentRules(content))
	if err := v.Err(); err != nil {
		return nil, err
	}

	var view *models.CommentView
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		author, err := resolvePrincipal(ctx, s.repomanager.Users(tx), p)
		if err != nil {
			return err
		}

		if _, err := s.repomanager.Articles(tx).GetByID(ctx, articleID); err != nil {
			return err
		}

		c, err := s.repomanager.Comments(tx).Create(ctx, &models.Comment{
			Content:   content,
			UserID:    author.ID,
			ArticleID: articleID,
		})
		if err != nil {
			return fmt.Errorf("error creating comment: %w", err)
		}

		view = &models.CommentView{Comment: *c, AuthorName: author.UserName}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "comment created", "comment_id", view.ID, "article_id", articleID)
	return view, nil
}
