package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/server/services"
	"github.com/gin-gonic/gin"
)

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		v := &common.ValidationError{}
		v.Add(name, "must be a positive integer")
		return 0, v
	}
	return id, nil
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errInvalidBody)
		return
	}

	u, err := h.Accounts.Register(c.Request.Context(), services.RegisterInput{
		UserName: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{ID: u.ID, Username: u.UserName, Email: u.Email})
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errInvalidBody)
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.UsernameOrEmail
	}

	token, err := h.Accounts.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *handler) profile(c *gin.Context) {
	u, err := h.Accounts.Profile(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(u))
}

func (h *handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errInvalidBody)
		return
	}

	res, err := h.Accounts.UpdateProfile(c.Request.Context(), principal(c), services.ProfileInput{
		UserName: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	out := newUserResponse(res.User)
	out.Token = res.Token
	c.JSON(http.StatusOK, out)
}

func (h *handler) subscribe(c *gin.Context) {
	themeID, err := pathID(c, "themeId")
	if err != nil {
		h.fail(c, err)
		return
	}

	u, err := h.Subscriptions.Subscribe(c.Request.Context(), principal(c), themeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(u))
}

func (h *handler) unsubscribe(c *gin.Context) {
	themeID, err := pathID(c, "themeId")
	if err != nil {
		h.fail(c, err)
		return
	}

	u, err := h.Subscriptions.Unsubscribe(c.Request.Context(), principal(c), themeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(u))
}

func (h *handler) listThemes(c *gin.Context) {
	list, err := h.Themes.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]themeResponse, 0, len(list))
	for _, t := range list {
		out = append(out, themeResponse{ID: t.ID, Title: t.Title, Description: t.Description})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) feed(c *gin.Context) {
	order, err := services.ParseFeedOrder(c.Query("sort"), c.Query("direction"))
	if err != nil {
		h.fail(c, err)
		return
	}

	feed, err := h.Articles.Feed(c.Request.Context(), principal(c), order)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]articleResponse, 0, len(feed))
	for _, a := range feed {
		out = append(out, newArticleResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) createArticle(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errInvalidBody)
		return
	}

	a, err := h.Articles.Create(c.Request.Context(), principal(c), services.ArticleInput{
		Title:   req.Title,
		Content: req.Content,
		ThemeID: req.ThemeID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newArticleResponse(a))
}

func (h *handler) getArticle(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	a, err := h.Articles.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newArticleResponse(a))
}

func (h *handler) listComments(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	list, err := h.Comments.List(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]commentResponse, 0, len(list))
	for _, cm := range list {
		out = append(out, newCommentResponse(cm))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) createComment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errInvalidBody)
		return
	}

	cm, err := h.Comments.Create(c.Request.Context(), principal(c), id, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(cm))
}
