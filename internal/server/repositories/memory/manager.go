// Package memory is an in-process RepositoryManager. It keeps the same
// contracts as the PostgreSQL repositories, including unique usernames and
// emails, and backs the "memory" DSN and service tests.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/articles"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/comments"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/themes"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/users"
)

// DefaultThemes mirrors the seed migration.
var DefaultThemes = []models.Theme{
	{Title: "Go", Description: "The Go programming language: idioms, tooling and releases."},
	{Title: "JavaScript", Description: "Browsers, Node.js and the wider JavaScript ecosystem."},
	{Title: "DevOps", Description: "Continuous delivery, infrastructure as code and operations."},
	{Title: "Databases", Description: "Relational and non-relational storage, query tuning and schema design."},
	{Title: "Security", Description: "Application security, authentication and threat modelling."},
}

type subscription struct {
	userID, themeID int64
}

type state struct {
	mu sync.RWMutex

	users    []*models.User
	themes   []*models.Theme
	articles []*models.Article
	comments []*models.Comment
	subs     []subscription

	nextUserID, nextThemeID, nextArticleID, nextCommentID int64

	now func() time.Time
}

// Manager hands out repositories sharing one state. The DBTX arguments are
// ignored.
type Manager struct {
	s *state
}

// NewManager returns an empty store seeded with themes.
func NewManager(themes ...models.Theme) *Manager {
	s := &state{now: time.Now}
	for _, t := range themes {
		s.nextThemeID++
		s.themes = append(s.themes, &models.Theme{ID: s.nextThemeID, Title: t.Title, Description: t.Description})
	}
	return &Manager{s: s}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Users(dbx.DBTX) users.Repository                 { return &userRepo{m.s} }
func (m *Manager) Subscriptions(dbx.DBTX) subscriptions.Repository { return &subscriptionRepo{m.s} }
func (m *Manager) Themes(dbx.DBTX) themes.Repository               { return &themeRepo{m.s} }
func (m *Manager) Articles(dbx.DBTX) articles.Repository           { return &articleRepo{m.s} }
func (m *Manager) Comments(dbx.DBTX) comments.Repository           { return &commentRepo{m.s} }

// Store satisfies dbx.Store. RunInTx serialises the callback against other
// transactions but does not roll back on error.
type Store struct {
	mu sync.Mutex
}

func NewStore() *Store { return &Store{} }

func (s *Store) Conn() dbx.DBTX { return nil }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, nil)
}
