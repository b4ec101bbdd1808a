package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/mdd/internal/cryptox"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/auth"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/articles"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/memory"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Sup3r!secret"

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

func newBufferLogger() (logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return logging.NewSlogLogger(slog.New(h)), &buf
}

func testHasher() *cryptox.Argon2idHasher {
	return cryptox.NewArgon2idHasher(cryptox.Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32})
}

// fakeRepoManager serves in-memory repositories unless an override is set.
type fakeRepoManager struct {
	*memory.Manager

	users    users.Repository
	subs     subscriptions.Repository
	articles articles.Repository
}

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	if f.users != nil {
		return f.users
	}
	return f.Manager.Users(db)
}

func (f *fakeRepoManager) Subscriptions(db dbx.DBTX) subscriptions.Repository {
	if f.subs != nil {
		return f.subs
	}
	return f.Manager.Subscriptions(db)
}

func (f *fakeRepoManager) Articles(db dbx.DBTX) articles.Repository {
	if f.articles != nil {
		return f.articles
	}
	return f.Manager.Articles(db)
}

type env struct {
	rm       *fakeRepoManager
	store    dbx.Store
	tokens   *auth.TokenManager
	users    *UserService
	subs     *SubscriptionService
	articles *ArticleService
	themes   *ThemeService
	comments *CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, memory.NewStore(), nopLogger{})
}

func newEnvWith(t *testing.T, store dbx.Store, logger logging.Logger) *env {
	t.Helper()
	rm := &fakeRepoManager{Manager: memory.NewManager(memory.DefaultThemes...)}
	tokens := auth.NewTokenManager([]byte("test-secret"), "self", time.Hour)
	return &env{
		rm:       rm,
		store:    store,
		tokens:   tokens,
		users:    NewUserService(store, rm, testHasher(), tokens, logger),
		subs:     NewSubscriptionService(store, rm, logger),
		articles: NewArticleService(store, rm, logger),
		themes:   NewThemeService(store, rm),
		comments: NewCommentService(store, rm, logger),
	}
}

func (e *env) register(t *testing.T, userName, email string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{UserName: userName, Email: email, Password: strongPassword})
	require.NoError(t, err)
	return u
}
