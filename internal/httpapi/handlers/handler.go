package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/blackboxbots/bbb-assistant/internal/audit"
	"github.com/blackboxbots/bbb-assistant/internal/config"
	"github.com/blackboxbots/bbb-assistant/internal/email"
	"github.com/blackboxbots/bbb-assistant/internal/httpapi/middleware"
	"github.com/blackboxbots/bbb-assistant/internal/identity"
	"github.com/blackboxbots/bbb-assistant/internal/transcript"
)

type Handler struct {
	Cfg         config.Config
	Identity    *identity.Service
	Chats       *transcript.Manager
	SMTPSetting email.SMTPConfig
	Audit       *audit.Publisher
}

func NewHandler(cfg config.Config, ids *identity.Service, chats *transcript.Manager, pub *audit.Publisher) *Handler {
	return &Handler{
		Cfg:      cfg,
		Identity: ids,
		Chats:    chats,
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		Audit: pub,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}

func sessionIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.SessionIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
