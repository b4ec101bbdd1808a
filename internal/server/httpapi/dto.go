package httpapi

import (
	"time"

	"github.com/dmitrijs2005/mdd/internal/server/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// loginRequest also accepts the older usernameOrEmail key.
type loginRequest struct {
	Identifier      string `json:"identifier"`
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userResponse struct {
	ID                 int64   `json:"id"`
	Username           string  `json:"username"`
	Email              string  `json:"email"`
	SubscribedThemeIDs []int64 `json:"subscribedThemeIds"`
	Token              string  `json:"token,omitempty"`
}

func newUserResponse(u *models.User) userResponse {
	ids := u.SubscribedThemeIDs
	if ids == nil {
		ids = []int64{}
	}
	return userResponse{ID: u.ID, Username: u.UserName, Email: u.Email, SubscribedThemeIDs: ids}
}

type themeResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type articleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	ThemeID int64  `json:"themeId"`
}

type articleResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	UserID     int64     `json:"userId"`
	Username   string    `json:"username"`
	ThemeID    int64     `json:"themeId"`
	ThemeTitle string    `json:"themeTitle"`
	CommentIDs []int64   `json:"commentIds"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newArticleResponse(a *models.ArticleView) articleResponse {
	ids := a.CommentIDs
	if ids == nil {
		ids = []int64{}
	}
	return articleResponse{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		UserID:     a.AuthorID,
		Username:   a.AuthorName,
		ThemeID:    a.ThemeID,
		ThemeTitle: a.ThemeTitle,
		CommentIDs: ids,
		CreatedAt:  a.CreatedAt,
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	ArticleID int64     `json:"articleId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCommentResponse(c *models.CommentView) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Content:   c.Content,
		ArticleID: c.ArticleID,
		UserID:    c.UserID,
		Username:  c.AuthorName,
		CreatedAt: c.CreatedAt,
	}
}
