package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scoutlabs/venturescout-backend/internal/data/cache"
	"github.com/scoutlabs/venturescout-backend/internal/data/repos"
	"github.com/scoutlabs/venturescout-backend/internal/data/repos/testutil"
	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
)

func sessionRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	return sessionRouterWithDB(t, db, userID), db
}

func sessionRouterWithDB(t *testing.T, db *gorm.DB, userID uuid.UUID) *gin.Engine {
	t.Helper()
	log := testutil.Logger(t)

	h := NewSessionHandler(
		log,
		testUsecases(t, db, &scriptedAI{reply: "unused"}),
		repos.NewSessionRepo(db, log),
		repos.NewDocumentRepo(db, log),
		cache.NoopWallCache{},
	)

	r := gin.New()
	grp := r.Group("/api/sessions", identityFor(userID))
	grp.POST("", h.Create)
	grp.GET("", h.List)
	grp.GET("/:id", h.Get)
	grp.POST("/:id/select", h.Select)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createSessionBody(t *testing.T) gin.H {
	t.Helper()
	var suggestions []map[string]interface{}
	for _, title := range []string{"FleetBoard", "RouteAudit", "LoadMatch"} {
		suggestions = append(suggestions, suggestionEntry(title))
	}
	return gin.H{
		"messages": []types.Turn{
			{Speaker: types.SpeakerUser, Text: "I run a logistics consultancy"},
		},
		"intro":           "Three directions.",
		"problemTags":     []string{"Logistics", "Freight", "Dispatch"},
		"suggestions":     suggestions,
		"selectionPrompt": "Pick one.",
	}
}

func TestSessionCreateAndGet(t *testing.T) {
	userID := uuid.New()
	r, _ := sessionRouter(t, userID)

	rec := doJSON(t, r, http.MethodPost, "/api/sessions", createSessionBody(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d body %s", rec.Code, rec.Body.String())
	}
	var created types.DiscoverySession
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created session: %v", err)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/sessions/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status: got %d", rec.Code)
	}
	var got struct {
		Session types.DiscoverySession `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal get: %v", err)
	}
	if len(got.Session.Solutions) != 3 {
		t.Fatalf("solutions: got %d want 3", len(got.Session.Solutions))
	}
}

func TestSessionCreateRequiresThreeSuggestions(t *testing.T) {
	r, _ := sessionRouter(t, uuid.New())

	body := createSessionBody(t)
	body["suggestions"] = body["suggestions"].([]map[string]interface{})[:2]
	rec := doJSON(t, r, http.MethodPost, "/api/sessions", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestSessionListAndTagSearch(t *testing.T) {
	userID := uuid.New()
	r, _ := sessionRouter(t, userID)

	rec := doJSON(t, r, http.MethodPost, "/api/sessions", createSessionBody(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/sessions?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: got %d", rec.Code)
	}
	var listed struct {
		Sessions []types.DiscoverySession `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listed.Sessions) != 1 {
		t.Fatalf("listed: got %d want 1", len(listed.Sessions))
	}

	rec = doJSON(t, r, http.MethodGet, "/api/sessions?tag=freight", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status: got %d", rec.Code)
	}
	listed.Sessions = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal search: %v", err)
	}
	if len(listed.Sessions) != 1 {
		t.Fatalf("tag search: got %d want 1", len(listed.Sessions))
	}

	rec = doJSON(t, r, http.MethodGet, "/api/sessions?tag=unrelated", nil)
	listed.Sessions = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal miss: %v", err)
	}
	if len(listed.Sessions) != 0 {
		t.Fatalf("miss search: got %d want 0", len(listed.Sessions))
	}
}

func TestSessionSelectAttachesDocuments(t *testing.T) {
	userID := uuid.New()
	r, db := sessionRouter(t, userID)

	rec := doJSON(t, r, http.MethodPost, "/api/sessions", createSessionBody(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d", rec.Code)
	}
	var created types.DiscoverySession
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}

	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/sessions/%s/select", created.ID), gin.H{
		"position":             2,
		"prd_content":          "# PRD",
		"landing_page_content": "# Landing",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("select status: got %d body %s", rec.Code, rec.Body.String())
	}

	var selectedCount, docCount int64
	if err := db.Model(&types.Solution{}).Where("session_id = ? AND is_selected = ?", created.ID, true).Count(&selectedCount).Error; err != nil || selectedCount != 1 {
		t.Fatalf("selected solutions: count=%d err=%v", selectedCount, err)
	}
	if err := db.Model(&types.GeneratedDocument{}).Where("session_id = ?", created.ID).Count(&docCount).Error; err != nil || docCount != 2 {
		t.Fatalf("documents: count=%d err=%v", docCount, err)
	}
}

func TestSessionForeignAccessIsNotFound(t *testing.T) {
	owner := uuid.New()
	r, dbOfRouter := sessionRouter(t, owner)

	rec := doJSON(t, r, http.MethodPost, "/api/sessions", createSessionBody(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d", rec.Code)
	}
	var created types.DiscoverySession
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}

	// Same database, different caller.
	foreign := sessionRouterWithDB(t, dbOfRouter, uuid.New())
	rec = doJSON(t, foreign, http.MethodGet, "/api/sessions/"+created.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get status: got %d want 404", rec.Code)
	}
}
