package http

import (
	"log/slog"

	"github.com/geocoder89/blogapi/internal/config"
	"github.com/geocoder89/blogapi/internal/http/handlers"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Stores is what the handlers need from persistence; postgres and memory
// repos both satisfy it.
type Stores struct {
	Users    handlers.UserStore
	Posts    handlers.PostStore
	Comments handlers.CommentStore
}

type Deps struct {
	Stores

	JWT TokenService

	// AuthLimiter guards /auth; WriteLimiter guards content creation.
	AuthLimiter  middlewares.Limiter
	WriteLimiter middlewares.Limiter

	Checks []handlers.ReadyCheck
	Prom   *observability.Prom
}

// TokenService issues and verifies access tokens.
type TokenService interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(deps.Checks...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Prom != nil {
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	authMW := middlewares.NewAuthMiddleware(deps.JWT, deps.Users)
	requireAuth := authMW.RequireAuth()
	optionalAuth := authMW.OptionalAuth()

	authLimit := middlewares.RateLimit(deps.AuthLimiter, middlewares.KeyByIP)
	writeLimit := middlewares.RateLimit(deps.WriteLimiter, middlewares.KeyByUserOrIP)

	// Wire up handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT, deps.Prom)
	postsHandler := handlers.NewPostsHandler(deps.Posts, deps.Prom)
	commentsHandler := handlers.NewCommentsHandler(deps.Comments, deps.Posts, deps.Prom)

	authGroup := r.Group("/auth")
	authGroup.POST("/signup", authLimit, authHandler.SignUp)
	authGroup.POST("/login", authLimit, authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	posts := r.Group("/posts")
	posts.GET("", optionalAuth, postsHandler.ListPosts)
	posts.GET("/filtered", optionalAuth, postsHandler.SearchPosts)
	posts.GET("/user/:id", optionalAuth, postsHandler.ListUserPosts)
	posts.GET("/:id", optionalAuth, postsHandler.GetPost)
	posts.POST("", requireAuth, writeLimit, postsHandler.CreatePost)
	posts.PUT("/:id", requireAuth, postsHandler.UpdatePost)
	posts.DELETE("/:id", requireAuth, postsHandler.DeletePost)

	// comments
	posts.GET("/:id/comments", optionalAuth, commentsHandler.ListComments)
	posts.POST("/:id/comments", requireAuth, writeLimit, commentsHandler.CreateComment)
	posts.PUT("/comments/:id", requireAuth, commentsHandler.UpdateComment)
	posts.DELETE("/comments/:id", requireAuth, commentsHandler.DeleteComment)

	return r
}
