package memory

import (
	"context"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/server/models"
)

type userRepo struct{ s *state }

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkUnique(0, user.UserName, user.Email); err != nil {
		return nil, err
	}

	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now()

	stored := *user
	stored.SubscribedThemeIDs = nil
	r.s.users = append(r.s.users, &stored)
	return user, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepo) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.UserName == userName })
}

func (r *userRepo) UpdateProfile(_ context.Context, id int64, userName, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u := r.s.user(id)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	if err := r.s.checkUnique(id, userName, email); err != nil {
		return nil, err
	}

	u.UserName = userName
	u.Email = email
	out := *u
	return &out, nil
}

func (r *userRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

// checkUnique mirrors the users_username_key and users_email_key
// constraints. skipID excludes the row being updated.
func (s *state) checkUnique(skipID int64, userName, email string) error {
	for _, u := range s.users {
		if u.ID == skipID {
			continue
		}
		if u.UserName == userName {
			return &common.ConflictError{Field: "username"}
		}
		if u.Email == email {
			return &common.ConflictError{Field: "email"}
		}
	}
	return nil
}

func (s *state) user(id int64) *models.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *state) theme(id int64) *models.Theme {
	for _, t := range s.themes {
		if t.ID == id {
			return t
		}
	}
	return nil
}

type subscriptionRepo struct{ s *state }

func (r *subscriptionRepo) Add(_ context.Context, userID, themeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.user(userID) == nil || r.s.theme(themeID) == nil {
		return common.ErrorNotFound
	}
	for _, sub := range r.s.subs {
		if sub.userID == userID && sub.themeID == themeID {
			return nil
		}
	}
	r.s.subs = append(r.s.subs, subscription{userID: userID, themeID: themeID})
	return nil
}

func (r *subscriptionRepo) Remove(_ context.Context, userID, themeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.subs[:0]
	for _, sub := range r.s.subs {
		if sub.userID != userID || sub.themeID != themeID {
			kept = append(kept, sub)
		}
	}
	r.s.subs = kept
	return nil
}

func (r *subscriptionRepo) ThemeIDs(_ context.Context, userID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []int64{}
	for _, sub := range r.s.subs {
		if sub.userID == userID {
			ids = append(ids, sub.themeID)
		}
	}
	return ids, nil
}

type themeRepo struct{ s *state }

func (r *themeRepo) List(context.Context) ([]*models.Theme, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Theme, 0, len(r.s.themes))
	for _, t := range r.s.themes {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *themeRepo) GetByID(_ context.Context, id int64) (*models.Theme, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t := r.s.theme(id)
	if t == nil {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

type articleRepo struct{ s *state }

func (r *articleRepo) Create(_ context.Context, article *models.Article) (*models.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.user(article.AuthorID) == nil || r.s.theme(article.ThemeID) == nil {
		return nil, common.ErrorNotFound
	}

	r.s.nextArticleID++
	article.ID = r.s.nextArticleID
	article.CreatedAt = r.s.now()
	article.CommentIDs = []int64{}

	stored := *article
	stored.CommentIDs = nil
	r.s.articles = append(r.s.articles, &stored)
	return article, nil
}

func (r *articleRepo) GetByID(_ context.Context, id int64) (*models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.articles {
		if a.ID == id {
			return r.s.withComments(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *articleRepo) ListByTheme(_ context.Context, themeID int64) ([]*models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Article{}
	for _, a := range r.s.articles {
		if a.ThemeID == themeID {
			out = append(out, r.s.withComments(a))
		}
	}
	return out, nil
}

func (s *state) withComments(a *models.Article) *models.Article {
	out := *a
	out.CommentIDs = []int64{}
	for _, c := range s.comments {
		if c.ArticleID == a.ID {
			out.CommentIDs = append(out.CommentIDs, c.ID)
		}
	}
	return &out
}

type commentRepo struct{ s *state }

func (r *commentRepo) Create(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.user(comment.UserID) == nil {
		return nil, common.ErrorNotFound
	}
	found := false
	for _, a := range r.s.articles {
		if a.ID == comment.ArticleID {
			found = true
			break
		}
	}
	if !found {
		return nil, common.ErrorNotFound
	}

	r.s.nextCommentID++
	comment.ID = r.s.nextCommentID
	comment.CreatedAt = r.s.now()

	stored := *comment
	r.s.comments = append(r.s.comments, &stored)
	return comment, nil
}

func (r *commentRepo) ListByArticle(_ context.Context, articleID int64) ([]*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Comment{}
	for _, c := range r.s.comments {
		if c.ArticleID == articleID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}
