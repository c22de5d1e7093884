package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackboxbots/bbb-assistant/internal/audit"
	"github.com/blackboxbots/bbb-assistant/internal/common"
	"github.com/blackboxbots/bbb-assistant/internal/config"
	"github.com/blackboxbots/bbb-assistant/internal/httpapi/handlers"
	"github.com/blackboxbots/bbb-assistant/internal/httpapi/middleware"
	"github.com/blackboxbots/bbb-assistant/internal/identity"
	"github.com/blackboxbots/bbb-assistant/internal/transcript"
)

func NewRouter(cfg config.Config, ids *identity.Service, chats *transcript.Manager, pub *audit.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(cfg, ids, chats, pub)

	r.GET("/ping", h.Ping)

	// Gate entry: session bootstrap and email capture are reachable without a
	// token; everything conversational is behind the gate.
	r.POST("/session", h.CreateSession)
	r.POST("/email", h.CaptureEmail)

	gated := r.Group("/")
	gated.Use(middleware.AuthRequired(cfg.JWTSecret))
	gated.POST("/logout", h.Logout)
	gated.POST("/chat/messages", h.SubmitMessage)
	gated.GET("/chat/transcript", h.Transcript)
	gated.POST("/chat/reset", h.ResetChat)
	gated.GET("/chat/notices", h.Notices)

	return r
}
