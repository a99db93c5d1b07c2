package api

import (
	"net/http"

	appauth "chatgate/internal/application/auth"
	appchat "chatgate/internal/application/chat"
	"chatgate/internal/config"
	"chatgate/internal/infrastructure/websession"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"     // swagger embed files
	ginSwagger "github.com/swaggo/gin-swagger" // gin-swagger middleware

	_ "chatgate/docs" // swagger docs
)

// Handler handles HTTP requests for the chat gateway
type Handler struct {
	authCfg     *config.AuthConfig
	authService *appauth.Service
	chatService *appchat.Service
	tokenCodec  appauth.TokenCodec
	webSessions websession.Store
}

// NewHandler creates a new API handler
func NewHandler(authCfg *config.AuthConfig, authService *appauth.Service, chatService *appchat.Service, webSessions websession.Store) *Handler {
	return &Handler{
		authCfg:     authCfg,
		authService: authService,
		chatService: chatService,
		tokenCodec:  appauth.TokenCodec{Secret: authCfg.SessionSecret, TenantID: authCfg.TenantID},
		webSessions: webSessions,
	}
}

// RegisterRoutes registers all routes. The gate middleware is installed on
// the engine by the caller before this runs, so every route below is
// protected unless its path is in the public set.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/login", h.LoginRedirect)

	auth := r.Group("/api/auth")
	{
		auth.GET("/login", h.Login)
		auth.GET("/callback", h.Callback)
	}

	sessions := r.Group("/api/sessions")
	{
		sessions.GET("", h.ListSessions)
		sessions.POST("", h.CreateSession)
		sessions.PATCH("/:sessionId", h.UpdateSession)
	}

	r.GET("/chat", h.ChatPage)
	r.GET("/ws/chat", h.HandleChatWebSocket)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Health godoc
//
//	@Summary		Health check
//	@Description	Liveness probe, always public
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/healthz [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
