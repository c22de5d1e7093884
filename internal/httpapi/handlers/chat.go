package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blackboxbots/bbb-assistant/internal/audit"
	"github.com/blackboxbots/bbb-assistant/internal/common"
	"github.com/blackboxbots/bbb-assistant/internal/transcript"
)

type submitReq struct {
	Message string `json:"message" binding:"required"`
}

// SubmitMessage runs one conversation turn. While a turn is in flight any
// further submit is a 409 no-op: nothing appended, no second request issued.
func (h *Handler) SubmitMessage(c *gin.Context) {
	sid, ok := sessionIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "message is required")
		return
	}

	ident, err := h.Identity.Get(c.Request.Context(), sid)
	if err != nil {
		common.Fail(c, http.StatusNotFound, 40401, "session not found")
		return
	}

	engine := h.Chats.Engine(sid)
	reply, err := engine.Submit(c.Request.Context(), req.Message, ident.Email)
	if err != nil {
		switch {
		case errors.Is(err, transcript.ErrBlankMessage):
			common.Fail(c, http.StatusBadRequest, 10003, "message must not be blank")
		case errors.Is(err, transcript.ErrBusy):
			common.Fail(c, http.StatusConflict, 40901, "a message is already in flight")
		case errors.Is(err, transcript.ErrSuperseded):
			common.Fail(c, http.StatusConflict, 40902, "conversation was reset")
		case errors.Is(err, transcript.ErrNotConfigured):
			common.Fail(c, http.StatusInternalServerError, 20006, "chat endpoint is not configured")
		default:
			common.Fail(c, http.StatusInternalServerError, 20005, "failed to submit message")
		}
		return
	}

	h.publishAudit(audit.Event{
		Kind:      audit.KindChatTurn,
		SessionID: sid,
		Email:     ident.Email,
		Message:   req.Message,
		Timestamp: time.Now().UTC(),
	})

	common.OK(c, gin.H{
		"session_id": sid,
		"reply":      reply,
	})
}

// Transcript returns the ordered snapshot plus the awaiting flag, which is
// the whole read-only surface the presentation layer needs.
func (h *Handler) Transcript(c *gin.Context) {
	sid, ok := sessionIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	engine := h.Chats.Engine(sid)
	common.OK(c, gin.H{
		"session_id": sid,
		"messages":   engine.Snapshot(),
		"awaiting":   engine.Awaiting(),
	})
}

// ResetChat is the new-chat action: empty transcript, idle state,
// unconditionally. A reply still in flight will be discarded when it lands.
func (h *Handler) ResetChat(c *gin.Context) {
	sid, ok := sessionIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	h.Chats.Engine(sid).Reset()
	common.OK(c, gin.H{"session_id": sid})
}

// Notices streams transient notifications (the toast channel) over SSE.
func (h *Handler) Notices(c *gin.Context) {
	sid, ok := sessionIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	engine := h.Chats.Engine(sid)
	notices := engine.Notices()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case n, okk := <-notices:
			if !okk {
				return false
			}
			c.SSEvent("notice", n)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
