package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/articles"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(feed []*models.ArticleView) []string {
	out := make([]string, 0, len(feed))
	for _, a := range feed {
		out = append(out, a.Title)
	}
	return out
}

func (e *env) post(t *testing.T, author string, themeID int64, title string) *models.ArticleView {
	t.Helper()
	a, err := e.articles.Create(context.Background(), models.Principal{Subject: author}, ArticleInput{Title: title, Content: "body of " + title, ThemeID: themeID})
	require.NoError(t, err)
	return a
}

func TestFeed_EmptyWithoutSubscriptions(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "a@x.com")
	e.post(t, "alice", 1, "ignored")

	feed, err := e.articles.Feed(context.Background(), models.Principal{Subject: "alice"}, FeedOrder{})
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestFeed_SubscriptionOrderThenStorageOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice", "a@x.com")
	e.register(t, "bobby", "b@x.com")
	alice := models.Principal{Subject: "alice"}

	e.post(t, "alice", 1, "go-1")
	e.post(t, "bobby", 2, "js-1")
	e.post(t, "bobby", 1, "go-2")
	e.post(t, "alice", 3, "ops-1")

	_, err := e.subs.Subscribe(ctx, alice, 2)
	require.NoError(t, err)
	_, err = e.subs.Subscribe(ctx, alice, 1)
	require.NoError(t, err)

	feed, err := e.articles.Feed(ctx, alice, FeedOrder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"js-1", "go-1", "go-2"}, titles(feed))

	assert.Equal(t, "bobby", feed[0].AuthorName)
	assert.Equal(t, "JavaScript", feed[0].ThemeTitle)
	assert.Equal(t, "alice", feed[1].AuthorName)
	assert.Equal(t, "Go", feed[1].ThemeTitle)

	sorted, err := e.articles.Feed(ctx, alice, FeedOrder{Field: "title", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"js-1", "go-2", "go-1"}, titles(sorted))
}

func TestFeedForThemes_IntegrityFault(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "a@x.com")
	e.post(t, "alice", 1, "orphan")
	e.rm.users = vanishedUsers{Repository: e.rm.Manager.Users(nil)}

	_, err := e.articles.FeedForThemes(context.Background(), []int64{1})
	assert.ErrorIs(t, err, common.ErrIntegrity)
}

// vanishedUsers loses every account once it has been stored.
type vanishedUsers struct {
	users.Repository
}

func (vanishedUsers) GetByID(context.Context, int64) (*models.User, error) {
	return nil, common.ErrorNotFound
}

type failingArticles struct {
	articles.Repository
}

func (failingArticles) ListByTheme(context.Context, int64) ([]*models.Article, error) {
	return nil, errBoom
}

func TestFeedForThemes_StorageError(t *testing.T) {
	e := newEnv(t)
	e.rm.articles = failingArticles{Repository: e.rm.Manager.Articles(nil)}

	_, err := e.articles.FeedForThemes(context.Background(), []int64{1})
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, common.ErrIntegrity)
}

func TestCreateArticle(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "a@x.com")

	a := e.post(t, "a@x.com", 2, "hello")
	assert.NotZero(t, a.ID)
	assert.Equal(t, u.ID, a.AuthorID)
	assert.Equal(t, int64(2), a.ThemeID)
	assert.Equal(t, "alice", a.AuthorName)
	assert.Equal(t, "JavaScript", a.ThemeTitle)
	assert.Equal(t, []int64{}, a.CommentIDs)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := e.articles.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, "alice", got.AuthorName)
}

func TestCreateArticle_Validation(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "a@x.com")

	_, err := e.articles.Create(context.Background(), models.Principal{Subject: "alice"}, ArticleInput{Title: " ", Content: "", ThemeID: 0})

	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Field] = f.Message
	}
	assert.Equal(t, map[string]string{"title": msgBlank, "content": msgBlank, "themeId": msgPositiveTheme}, got)
}

func TestCreateArticle_UnknownTheme(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "a@x.com")

	_, err := e.articles.Create(context.Background(), models.Principal{Subject: "alice"}, ArticleInput{Title: "t", Content: "c", ThemeID: 42})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreateArticle_RunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := newEnvWith(t, dbx.NewSQLStore(db), nopLogger{})
	mock.ExpectBegin()
	mock.ExpectCommit()
	e.register(t, "alice", "a@x.com")
	e.post(t, "alice", 1, "committed")

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = e.articles.Create(context.Background(), models.Principal{Subject: "alice"}, ArticleInput{Title: "t", Content: "c", ThemeID: 42})
	require.ErrorIs(t, err, common.ErrorNotFound)

	feed, err := e.articles.FeedForThemes(context.Background(), []int64{1, 42})
	require.NoError(t, err)
	assert.Equal(t, []string{"committed"}, titles(feed))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticle_NotFound(t *testing.T) {
	_, err := newEnv(t).articles.Get(context.Background(), 7)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestParseFeedOrder(t *testing.T) {
	tests := []struct {
		sort, direction string
		want            FeedOrder
		wantErr         bool
	}{
		{want: FeedOrder{}},
		{sort: "created_at", want: FeedOrder{Field: "created_at"}},
		{sort: "Title", direction: "DESC", want: FeedOrder{Field: "title", Desc: true}},
		{sort: "title", direction: "asc", want: FeedOrder{Field: "title"}},
		{sort: "author", wantErr: true},
		{direction: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.sort+"/"+tt.direction, func(t *testing.T) {
			got, err := ParseFeedOrder(tt.sort, tt.direction)
			if tt.wantErr {
				var ve *common.ValidationError
				assert.True(t, errors.As(err, &ve))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortFeed_CreatedAt(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	view := func(title string, offset time.Duration) *models.ArticleView {
		return &models.ArticleView{Article: models.Article{Title: title, CreatedAt: base.Add(offset)}}
	}
	feed := []*models.ArticleView{view("b", time.Hour), view("a", 0), view("c", 2*time.Hour)}

	sortFeed(feed, FeedOrder{Field: "created_at", Desc: true})
	assert.Equal(t, []string{"c", "b", "a"}, titles(feed))

	sortFeed(feed, FeedOrder{Field: "created_at"})
	assert.Equal(t, []string{"a", "b", "c"}, titles(feed))

	sortFeed(feed, FeedOrder{})
	assert.Equal(t, []string{"a", "b", "c"}, titles(feed))
}
