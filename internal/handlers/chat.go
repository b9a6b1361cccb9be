package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scoutlabs/venturescout-backend/internal/data/cache"
	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	discovery "github.com/scoutlabs/venturescout-backend/internal/modules/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/modules/discovery/steps"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/ctxutil"
	"github.com/scoutlabs/venturescout-backend/internal/platform/apierr"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type ChatHandler struct {
	log  *logger.Logger
	uc   discovery.Usecases
	wall cache.WallCache
}

func NewChatHandler(log *logger.Logger, uc discovery.Usecases, wall cache.WallCache) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), uc: uc, wall: wall}
}

type chatRequest struct {
	Messages  []types.Turn `json:"messages"`
	SessionID string       `json:"session_id"`
}

// Chat streams the assistant's reply for one turn as raw text. Structuring
// and persistence happen after the stream ends; errors after the first byte
// can only terminate the stream, never change the status code.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages required"})
		return
	}

	var sessionID uuid.UUID
	if req.SessionID != "" {
		var err error
		if sessionID, err = uuid.Parse(req.SessionID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
			return
		}
	}

	userID, _ := ctxutil.UserID(c.Request.Context())

	started := false
	stream := steps.StreamerFunc(func(delta string) {
		if !started {
			started = true
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
		}
		if _, err := c.Writer.WriteString(delta); err != nil {
			return
		}
		c.Writer.Flush()
	})

	out, err := h.uc.Respond(c.Request.Context(), discovery.RespondInput{
		UserID:    userID,
		SessionID: sessionID,
		Messages:  req.Messages,
		Stream:    stream,
	})
	if err != nil {
		if started {
			// The client already holds a partial turn; nothing left to do but
			// cut the connection so it sees the break.
			h.log.Error("stream broke after first byte", "error", err)
			c.Abort()
			return
		}
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && apiErr.Status != 0 {
			c.JSON(apiErr.Status, gin.H{"error": apiErr.Code})
			return
		}
		h.log.Error("chat turn failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process chat request"})
		return
	}

	if out.Session != nil {
		// Cached wall listings predate the session persisted on this turn.
		h.wall.Invalidate(c.Request.Context())
	}

	h.log.Info("chat turn complete",
		"phase", string(out.Phase),
		"model", out.Model,
		"persisted_session", out.Session != nil,
		"documents", len(out.Documents))
}
