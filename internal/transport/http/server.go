package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/auth"
	"github.com/Steve1314/ChatBackend/internal/config"
	"github.com/Steve1314/ChatBackend/internal/core"
	"github.com/Steve1314/ChatBackend/internal/events"
	"github.com/Steve1314/ChatBackend/internal/store"
)

// ServerDeps carries everything the router needs.
type ServerDeps struct {
	Store       store.Store
	Gateway     *core.Gateway
	AuthService *auth.Service
	OTPService  *auth.OTPService
	Publisher   *events.Publisher
	RateLimiter *RateLimiter
}

// NewServer builds the HTTP server with all REST routes and the
// WebSocket event channel mounted.
func NewServer(deps ServerDeps, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(deps.Gateway, logger)))

	authHandlers := NewAuthHandlers(deps.AuthService, deps.OTPService, logger)
	userHandlers := NewUserHandlers(deps.Store, deps.Gateway, logger)
	chatHandlers := NewChatHandlers(deps.Store, deps.Gateway, deps.Publisher, logger)
	contactHandlers := NewContactHandlers(deps.Store, logger)
	mediaHandlers := NewMediaHandlers(deps.Store, cfg.UploadDir, logger)
	notificationHandlers := NewNotificationHandlers(deps.Store, deps.Publisher, logger)
	callHandlers := NewCallHandlers(deps.Store, deps.Gateway, deps.Publisher, logger)

	requireAuth := AuthMiddleware(deps.AuthService, logger)

	authGroup := router.Group("/auth", deps.RateLimiter.Middleware())
	{
		authGroup.POST("/register", authHandlers.Register)
		authGroup.POST("/login", authHandlers.Login)
		authGroup.GET("/me", requireAuth, authHandlers.Me)
		authGroup.POST("/otp/request", authHandlers.RequestOTP)
		authGroup.POST("/otp/verify", authHandlers.VerifyOTP)
	}

	users := router.Group("/users", requireAuth)
	{
		users.GET("/online", userHandlers.Online)
		users.PUT("/me", userHandlers.UpdateProfile)
		users.POST("/activity", userHandlers.UpdateActivity)
		users.GET("/:id", userHandlers.GetUser)
	}

	chats := router.Group("/chats", requireAuth)
	{
		chats.POST("", chatHandlers.CreateChat)
		chats.GET("", chatHandlers.ListChats)
		chats.GET("/:id", chatHandlers.GetChat)
		chats.GET("/:id/messages", chatHandlers.ListMessages)
		chats.POST("/:id/messages", chatHandlers.SendMessage)
	}

	router.DELETE("/messages/:id", requireAuth, chatHandlers.DeleteMessage)
	router.POST("/contacts/sync", requireAuth, contactHandlers.Sync)

	media := router.Group("/media", requireAuth)
	{
		media.POST("/upload", mediaHandlers.Upload)
		media.GET("/:filename", mediaHandlers.Serve)
	}

	notifications := router.Group("/notifications", requireAuth)
	{
		notifications.POST("", notificationHandlers.Create)
		notifications.GET("", notificationHandlers.List)
	}

	calls := router.Group("/calls", requireAuth)
	{
		calls.POST("", callHandlers.Initiate)
		calls.GET("/chat/:chatId", callHandlers.History)
		calls.GET("/:id", callHandlers.Get)
		calls.POST("/:id/accept", callHandlers.Accept)
		calls.POST("/:id/reject", callHandlers.Reject)
		calls.POST("/:id/end", callHandlers.End)
		calls.DELETE("/:id", callHandlers.Delete)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
