package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scoutlabs/venturescout-backend/internal/data/cache"
	"github.com/scoutlabs/venturescout-backend/internal/data/repos"
	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	discovery "github.com/scoutlabs/venturescout-backend/internal/modules/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/modules/discovery/steps"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/ctxutil"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type SessionHandler struct {
	log       *logger.Logger
	uc        discovery.Usecases
	sessions  repos.SessionRepo
	documents repos.DocumentRepo
	wall      cache.WallCache
}

func NewSessionHandler(log *logger.Logger, uc discovery.Usecases, sessions repos.SessionRepo, documents repos.DocumentRepo, wall cache.WallCache) *SessionHandler {
	return &SessionHandler{
		log:       log.With("handler", "SessionHandler"),
		uc:        uc,
		sessions:  sessions,
		documents: documents,
		wall:      wall,
	}
}

type createSessionRequest struct {
	Messages        []types.Turn       `json:"messages"`
	Intro           string             `json:"intro"`
	ProblemTags     []string           `json:"problemTags"`
	Suggestions     []types.Suggestion `json:"suggestions"`
	SelectionPrompt string             `json:"selectionPrompt"`
}

// Create persists an already-structured suggestion set. This is the
// client-driven path; the chat handler persists the same shape server-side
// when it can.
func (h *SessionHandler) Create(c *gin.Context) {
	userID, ok := ctxutil.UserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Suggestions) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly 3 suggestions required"})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages required"})
		return
	}

	transcript, err := steps.NormalizeTranscript(req.Messages)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed transcript"})
		return
	}

	out, err := h.uc.SaveSession(c.Request.Context(), discovery.SaveSessionInput{
		UserID:     userID,
		Transcript: transcript,
		Set: &types.SuggestionSet{
			Intro:           req.Intro,
			ProblemTags:     req.ProblemTags,
			Suggestions:     req.Suggestions,
			SelectionPrompt: req.SelectionPrompt,
		},
	})
	if err != nil {
		h.log.Error("failed to create session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	h.wall.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, out.Session)
}

// List serves the wall: recent sessions, optionally filtered by tag.
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := ctxutil.UserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return
	}

	tag := c.Query("tag")
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	cacheKey := fmt.Sprintf("%s|%s|%d", userID, tag, limit)
	if rows, ok := h.wall.Get(c.Request.Context(), cacheKey); ok {
		c.JSON(http.StatusOK, gin.H{"sessions": rows})
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	var (
		rows []*types.DiscoverySession
		err  error
	)
	if tag != "" {
		rows, err = h.sessions.SearchByTag(dbc, userID, tag, limit)
	} else {
		rows, err = h.sessions.ListRecent(dbc, userID, limit)
	}
	if err != nil {
		h.log.Error("failed to list sessions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}

	h.wall.Set(c.Request.Context(), cacheKey, rows)
	c.JSON(http.StatusOK, gin.H{"sessions": rows})
}

// Get returns one session with its solutions and documents.
func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := ctxutil.UserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	sess, err := h.sessions.GetByID(dbc, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.log.Error("failed to load session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	if sess.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	docs, err := h.documents.ListBySession(dbc, sessionID)
	if err != nil {
		h.log.Error("failed to load documents", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess, "documents": docs})
}

type selectSolutionRequest struct {
	Position           int    `json:"position"`
	PRDContent         string `json:"prd_content"`
	LandingPageContent string `json:"landing_page_content"`
}

// Select marks the chosen solution and attaches any documents the client
// extracted from the stream.
func (h *SessionHandler) Select(c *gin.Context) {
	userID, ok := ctxutil.UserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var req selectSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Position < 1 || req.Position > 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position must be 1, 2 or 3"})
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	sess, err := h.sessions.GetByID(dbc, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.log.Error("failed to load session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to select solution"})
		return
	}
	if sess.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	selected, err := h.uc.SelectSolution(c.Request.Context(), discovery.SelectSolutionInput{
		SessionID: sessionID,
		Position:  req.Position,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "solution not found"})
			return
		}
		h.log.Error("failed to select solution", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to select solution"})
		return
	}

	attached, err := h.uc.AttachDocuments(c.Request.Context(), discovery.AttachDocumentsInput{
		SessionID:   sessionID,
		SolutionID:  selected.Solution.ID,
		PRD:         req.PRDContent,
		LandingPage: req.LandingPageContent,
	})
	if err != nil {
		h.log.Error("failed to attach documents", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"solution": selected.Solution, "documents": attached.Documents})
}
