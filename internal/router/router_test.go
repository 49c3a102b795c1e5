package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dormdigest/internal/service"
	"dormdigest/internal/testutil"
)

type apiFixture struct {
	engine *gin.Engine
	users  *service.UserService
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := zap.NewNop()
	users := service.NewUserService(db, log)
	engine := InitRouter(Deps{
		DB:             db,
		Log:            log,
		Users:          users,
		Clubs:          service.NewClubService(db, log),
		Events:         service.NewEventService(db, log, service.EventServiceConfig{}),
		Sessions:       service.NewSessionService(db, log, service.SessionServiceConfig{}),
		SessionMaxAge:  time.Hour,
		FeedDomain:     "example.edu",
		DisableMetrics: true,
	})
	return &apiFixture{engine: engine, users: users}
}

func (a *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *apiFixture) login(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/session", "", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.SessionID
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	w := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionRequired(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodGet, "/api/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/api/events", "nonsense", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not_found", decodeCode(t, w))
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()

	_, err := a.users.GrantAdmin(ctx, "root@mit.edu")
	require.NoError(t, err)
	adminTok := a.login(t, "root@mit.edu")
	userTok := a.login(t, "a@mit.edu")

	w := a.do(t, http.MethodPost, "/api/clubs", userTok, map[string]string{"name": "Chess Club", "abbrev": "CC"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, "/api/clubs", adminTok, map[string]string{"name": "Chess Club", "abbrev": "CC"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var club struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &club))

	w = a.do(t, http.MethodPost, "/api/clubs", adminTok, map[string]string{"name": "Chess Club"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decodeCode(t, w))

	w = a.do(t, http.MethodPost, "/api/events", userTok, map[string]any{
		"club_id":    club.ID,
		"title":      "Blitz Night",
		"start_date": "2024-03-08",
		"start_time": "19:00",
		"tags":       []int{1},
		"desc":       strings.Repeat("x", 150),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	eventPath := fmt.Sprintf("/api/events/%d", created.ID)

	// pending events are hidden from plain users
	w = a.do(t, http.MethodGet, eventPath, userTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(t, http.MethodGet, "/api/events?approved=false", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, eventPath+"/approve", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "authorization", decodeCode(t, w))

	w = a.do(t, http.MethodPost, eventPath+"/approve", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/events", userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		List []struct {
			ID        uint64  `json:"id"`
			Desc      string  `json:"desc"`
			StartDate *string `json:"start_date"`
			StartTime *string `json:"start_time"`
		} `json:"list"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.List, 1)
	assert.Equal(t, strings.Repeat("x", 100)+"...", list.List[0].Desc)
	assert.Equal(t, "2024-03-08", *list.List[0].StartDate)
	assert.Equal(t, "19:00:00Z", *list.List[0].StartTime)

	w = a.do(t, http.MethodGet, eventPath+"/serialized", userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Blitz Night"`)

	w = a.do(t, http.MethodGet, "/api/events/feed.ics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf("UID:event-%d@example.edu", created.ID))

	w = a.do(t, http.MethodDelete, eventPath, userTok, nil)
	require.Equal(t, http.StatusOK, w.Code, "submitter may delete")
	w = a.do(t, http.MethodGet, eventPath, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "a@mit.edu")

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"bad id", http.MethodGet, "/api/events/abc", nil, http.StatusBadRequest, "validation"},
		{"missing event", http.MethodGet, "/api/events/77", nil, http.StatusNotFound, "not_found"},
		{"missing club reference", http.MethodPost, "/api/events", map[string]any{"title": "x", "club_id": 77}, http.StatusUnprocessableEntity, "reference"},
		{"bad date", http.MethodPost, "/api/events", map[string]any{"title": "x", "start_date": "someday"}, http.StatusBadRequest, "validation"},
		{"title too long", http.MethodPost, "/api/events", map[string]any{"title": strings.Repeat("t", 300)}, http.StatusBadRequest, "validation"},
		{"non-admin privilege change", http.MethodPut, "/api/users/1/privilege", map[string]any{"user_privilege": 1}, http.StatusForbidden, "authorization"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, tt.method, tt.path, tok, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, decodeCode(t, w))
		})
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	a := newAPI(t)
	tok := a.login(t, "a@mit.edu")

	w := a.do(t, http.MethodGet, "/api/users/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"a@mit.edu"`)

	w = a.do(t, http.MethodDelete, "/api/session", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/users/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClubMembershipOverHTTP(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()

	_, err := a.users.GrantAdmin(ctx, "root@mit.edu")
	require.NoError(t, err)
	adminTok := a.login(t, "root@mit.edu")
	userTok := a.login(t, "a@mit.edu")

	w := a.do(t, http.MethodGet, "/api/users/me", userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))

	w = a.do(t, http.MethodPost, "/api/clubs", adminTok, map[string]string{"name": "Go Club"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var club struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &club))
	clubPath := fmt.Sprintf("/api/clubs/%d", club.ID)

	w = a.do(t, http.MethodGet, clubPath, userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Go Club"`)

	// plain users cannot add members
	w = a.do(t, http.MethodPost, clubPath+"/members", userTok, map[string]any{"user_id": me.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, clubPath+"/members", adminTok, map[string]any{"user_id": me.ID, "member_privilege": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, clubPath+"/members", userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"user_id":%d`, me.ID))

	w = a.do(t, http.MethodGet, "/api/users/me/clubs", userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"club_id":%d`, club.ID))

	w = a.do(t, http.MethodDelete, clubPath+"/members", userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(t, http.MethodDelete, clubPath+"/members", userTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodGet, "/api/clubs/999", userTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
