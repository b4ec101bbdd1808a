package services

import (
	"context"

	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/repomanager"
)

type ThemeService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
}

func NewThemeService(store dbx.Store, m repomanager.RepositoryManager) *ThemeService {
	return &ThemeService{store: store, repomanager: m}
}

func (s *ThemeService) List(ctx context.Context) ([]*models.Theme, error) {
	return s.repomanager.Themes(s.store.Conn()).List(ctx)
}
