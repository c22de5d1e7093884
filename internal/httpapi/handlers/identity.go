package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blackboxbots/bbb-assistant/internal/audit"
	"github.com/blackboxbots/bbb-assistant/internal/auth"
	"github.com/blackboxbots/bbb-assistant/internal/common"
	"github.com/blackboxbots/bbb-assistant/internal/email"
	"github.com/blackboxbots/bbb-assistant/internal/gateway"
	"github.com/blackboxbots/bbb-assistant/internal/identity"
)

const gateTokenTTL = 24 * time.Hour

type sessionReq struct {
	SessionID string `json:"session_id"`
}

// CreateSession restores a known session or mints a new one. This is the
// first call a fresh client makes; it never requires the gate token.
func (h *Handler) CreateSession(c *gin.Context) {
	var req sessionReq
	_ = c.ShouldBindJSON(&req) // allow empty {}

	id, err := h.Identity.GetOrCreateSessionID(c.Request.Context(), req.SessionID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "failed to create session")
		return
	}

	ident, err := h.Identity.Get(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "failed to load identity")
		return
	}

	common.OK(c, gin.H{
		"session_id":    ident.SessionID,
		"authenticated": ident.IsAuthenticated(),
		"email":         ident.Email,
	})
}

type captureEmailReq struct {
	SessionID string `json:"session_id" binding:"required"`
	Email     string `json:"email" binding:"required"`
}

// CaptureEmail runs the gate: validate, log remotely, persist, then hand out
// the token that unlocks the chat routes.
func (h *Handler) CaptureEmail(c *gin.Context) {
	var req captureEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "email and session_id required")
		return
	}

	err := h.Identity.SetEmail(c.Request.Context(), req.SessionID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidEmail):
			common.Fail(c, http.StatusBadRequest, 10002, "invalid email address")
		case errors.Is(err, identity.ErrSessionNotFound):
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
		case errors.Is(err, gateway.ErrNotConfigured):
			common.Fail(c, http.StatusInternalServerError, 20002, "logging endpoint is not configured")
		default:
			if kind, ok := gateway.KindOf(err); ok && kind == gateway.KindRemoteRejected {
				// The remote's own message, when it sent one, is worth showing
				// on the capture form.
				var ge *gateway.Error
				errors.As(err, &ge)
				common.Fail(c, http.StatusBadGateway, 50201, ge.Detail)
				return
			}
			log.Printf("capture email session=%s failed: %v", req.SessionID, err)
			common.Fail(c, http.StatusBadGateway, 50202, "failed to log email, please try again")
		}
		return
	}

	token, err := auth.SignSession(req.SessionID, h.Cfg.JWTSecret, gateTokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	if h.SMTPSetting.Enabled() {
		go func(to string) {
			subject := "Welcome to BBB Assistant"
			body := "Hello,\n\n" +
				"Thanks for joining BBB Assistant. Your chat is ready.\n\n" +
				"If you did not request access, you can ignore this message.\n\n" +
				"Best regards,\n" +
				"BBB Assistant\n"
			if err := email.SendText(h.SMTPSetting, to, subject, body); err != nil {
				log.Printf("welcome mail to=%s failed: %v", to, err)
			}
		}(req.Email)
	}

	h.publishAudit(audit.Event{
		Kind:      audit.KindEmailCapture,
		SessionID: req.SessionID,
		Email:     req.Email,
		Timestamp: time.Now().UTC(),
	})

	common.OK(c, gin.H{
		"session_id": req.SessionID,
		"email":      req.Email,
		"token":      token,
	})
}

// Logout drops the email and the in-memory transcript; the session token
// itself survives for the next visit.
func (h *Handler) Logout(c *gin.Context) {
	sid, ok := sessionIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.Identity.Logout(c.Request.Context(), sid); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20004, "failed to logout")
		return
	}
	h.Chats.Drop(sid)

	common.OK(c, gin.H{"session_id": sid})
}

// publishAudit is fire and forget: the sink must never block or fail a user
// action.
func (h *Handler) publishAudit(ev audit.Event) {
	if h.Audit == nil {
		return
	}
	go func() {
		if err := h.Audit.Publish(context.Background(), ev); err != nil {
			log.Printf("audit publish kind=%s session=%s failed: %v", ev.Kind, ev.SessionID, err)
		}
	}()
}
