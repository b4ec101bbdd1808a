package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/repomanager"
)

// SubscriptionService edits the caller's own theme subscriptions. There is
// no way to name another account.
type SubscriptionService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSubscriptionService(store dbx.Store, m repomanager.RepositoryManager, logger logging.Logger) *SubscriptionService {
	return &SubscriptionService{store: store, repomanager: m, logger: logger.With("module", "subscription_service")}
}

// Subscribe adds themeID to the caller's subscriptions. The theme must
// exist (common.ErrorNotFound otherwise); subscribing twice is a no-op.
func (s *SubscriptionService) Subscribe(ctx context.Context, p models.Principal, themeID int64) (*models.User, error) {
	conn := s.store.Conn()

	u, err := resolvePrincipal(ctx, s.repomanager.Users(conn), p)
	if err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Themes(conn).GetByID(ctx, themeID); err != nil {
		return nil, err
	}

	subs := s.repomanager.Subscriptions(conn)
	if err := subs.Add(ctx, u.ID, themeID); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "subscribed", "user_id", u.ID, "theme_id", themeID)

	return s.view(ctx, conn, u)
}

// Unsubscribe removes themeID from the caller's subscriptions. Removing a
// theme the caller is not subscribed to is a no-op.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, p models.Principal, themeID int64) (*models.User, error) {
	conn := s.store.Conn()

	u, err := resolvePrincipal(ctx, s.repomanager.Users(conn), p)
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Subscriptions(conn).Remove(ctx, u.ID, themeID); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "unsubscribed", "user_id", u.ID, "theme_id", themeID)

	return s.view(ctx, conn, u)
}

func (s *SubscriptionService) view(ctx context.Context, conn dbx.DBTX, u *models.User) (*models.User, error) {
	ids, err := s.repomanager.Subscriptions(conn).ThemeIDs(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	u.SubscribedThemeIDs = ids
	u.PasswordHash = ""
	return u, nil
}
