package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/ratelimit"
	"github.com/dmitrijs2005/mdd/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (string, error)
	Profile(ctx context.Context, p models.Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.Principal, in services.ProfileInput) (*services.ProfileUpdate, error)
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, p models.Principal, themeID int64) (*models.User, error)
	Unsubscribe(ctx context.Context, p models.Principal, themeID int64) (*models.User, error)
}

type ArticleService interface {
	Feed(ctx context.Context, p models.Principal, order services.FeedOrder) ([]*models.ArticleView, error)
	Create(ctx context.Context, p models.Principal, in services.ArticleInput) (*models.ArticleView, error)
	Get(ctx context.Context, id int64) (*models.ArticleView, error)
}

type ThemeService interface {
	List(ctx context.Context) ([]*models.Theme, error)
}

type CommentService interface {
	List(ctx context.Context, articleID int64) ([]*models.CommentView, error)
	Create(ctx context.Context, p models.Principal, articleID int64, content string) (*models.CommentView, error)
}

// TokenVerifier turns a bearer token into the caller's principal.
type TokenVerifier interface {
	Verify(token string) (models.Principal, error)
}

// Pinger reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps is everything the router dispatches to. Limiter defaults to
// ratelimit.Unlimited and Pinger may be nil.
type Deps struct {
	Accounts      AccountService
	Subscriptions SubscriptionService
	Articles      ArticleService
	Themes        ThemeService
	Comments      CommentService
	Tokens        TokenVerifier
	Limiter       ratelimit.Limiter
	Pinger        Pinger
	Logger        logging.Logger
	AllowedOrigin string
}

type handler struct {
	Deps
	logger logging.Logger
}

// NewRouter builds the gin engine with every route of the public API.
func NewRouter(d Deps) *gin.Engine {
	if d.Limiter == nil {
		d.Limiter = ratelimit.Unlimited{}
	}
	h := &handler{Deps: d, logger: d.Logger.With("module", "http")}

	r := gin.New()
	r.Use(
		h.requestID(),
		h.requestLogger(),
		gin.CustomRecovery(h.recovery),
		allowOrigin(d.AllowedOrigin),
	)

	r.GET("/healthz", h.health)

	authGroup := r.Group("/auth", h.rateLimit())
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)

	r.GET("/themes", h.listThemes)

	protected := r.Group("/", h.requireAuth())

	protected.GET("/me", h.profile)
	protected.PUT("/me", h.updateProfile)
	protected.POST("/me/themes/:themeId", h.subscribe)
	protected.DELETE("/me/themes/:themeId", h.unsubscribe)

	protected.GET("/articles", h.feed)
	protected.POST("/articles", h.createArticle)
	protected.GET("/articles/:id", h.getArticle)
	protected.GET("/articles/:id/comments", h.listComments)
	protected.POST("/articles/:id/comments", h.createComment)

	return r
}

func (h *handler) health(c *gin.Context) {
	if h.Pinger != nil {
		if err := h.Pinger.PingContext(c.Request.Context()); err != nil {
			h.logger.Error(c.Request.Context(), "health check failed", "error", err)
			c.String(http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}

func (h *handler) recovery(c *gin.Context, recovered any) {
	h.logger.Error(c.Request.Context(), "panic while serving request", "panic", recovered, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
