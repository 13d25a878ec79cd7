package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabtrack/internal/api/middleware"
	"collabtrack/internal/pkg/config"
	"collabtrack/internal/pkg/database"
)

type envelope struct {
	Code    int             `json:"code"`
	Reason  string          `json:"reason"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	db, err := database.OpenTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "collabtrack", Mode: gin.TestMode, RequestTimeout: 5},
		Auth: config.AuthConfig{
			JWT:   config.JWTConfig{Secret: "router-test", Issuer: "collabtrack", AccessTokenExpire: 3600, RefreshTokenExpire: 7200},
			Local: config.LocalConfig{Enabled: true, AllowRegistration: true},
		},
	}
	return &testServer{t: t, engine: Setup(cfg, db, limiter)}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// signup 注册并登录, 返回用户ID和访问Token
func (s *testServer) signup(username, role string) (int64, string) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"role":     role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var user struct {
		ID int64 `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &user))

	w, env = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(s.t, login.AccessToken)
	return user.ID, login.AccessToken
}

func (s *testServer) projectTitles(token string) []string {
	s.t.Helper()
	w, env := s.do(http.MethodGet, "/api/v1/projects", token, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var projects []struct {
		Title string `json:"title"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &projects))
	titles := make([]string, 0, len(projects))
	for _, p := range projects {
		titles = append(titles, p.Title)
	}
	return titles
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAPIRoutesUseVersionPrefix(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "x@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "x@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/projects", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectVisibilityFollowsMembership(t *testing.T) {
	s := newTestServer(t, nil)
	_, alice := s.signup("alice", "admin")
	bobID, bob := s.signup("bob", "team_member")
	_, carol := s.signup("carol", "team_member")

	w, env := s.do(http.MethodPost, "/api/v1/workspaces", alice, gin.H{"name": "Eng"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ws struct {
		ID         int64  `json:"id"`
		MemberRole string `json:"member_role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ws))
	assert.Equal(t, "admin", ws.MemberRole)

	w, env = s.do(http.MethodPost, "/api/v1/projects", alice, gin.H{
		"title":        "API Revamp",
		"workspace_id": ws.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Project struct {
			ID int64 `json:"id"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	projectPath := fmt.Sprintf("/api/v1/projects/%d", created.Project.ID)

	assert.Empty(t, s.projectTitles(bob))

	w, _ = s.do(http.MethodPost, projectPath+"/members", alice, gin.H{"user_id": bobID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// 重复添加视为成功
	w, env = s.do(http.MethodPost, projectPath+"/members", alice, gin.H{"user_id": bobID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User is already a member", env.Message)

	assert.Equal(t, []string{"API Revamp"}, s.projectTitles(bob))
	w, _ = s.do(http.MethodGet, projectPath, bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, projectPath, carol, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/members/%d", projectPath, bobID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, s.projectTitles(bob))
	w, _ = s.do(http.MethodGet, projectPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/projects/99999", carol, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceSoleAdminProtected(t *testing.T) {
	s := newTestServer(t, nil)
	aliceID, alice := s.signup("alice", "admin")

	w, env := s.do(http.MethodPost, "/api/v1/workspaces", alice, gin.H{"name": "Design Ops"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ws struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ws))

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/workspaces/%d/members/%d", ws.ID, aliceID), alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/workspaces/%d/members", ws.ID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &members))
	assert.Len(t, members, 1)
}

func TestCreateProjectValidation(t *testing.T) {
	s := newTestServer(t, nil)
	_, alice := s.signup("alice", "admin")
	_, bob := s.signup("bob", "team_member")

	w, _ := s.do(http.MethodPost, "/api/v1/projects", bob, gin.H{"title": "X", "workspace_id": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/projects", alice, gin.H{"workspace_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/projects", alice, gin.H{"title": "X", "workspace_id": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRoutesThrottled(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(0.001, 1))

	w, _ := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "x@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "x@example.com", "password": "nope"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
