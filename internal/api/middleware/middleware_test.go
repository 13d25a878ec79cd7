package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/pkg/config"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIdentities struct {
	tokens map[string]auth.Identity
}

func (f *fakeIdentities) Resolve(_ context.Context, token string) (auth.Identity, *model.User, error) {
	if token == "" {
		return auth.Identity{}, nil, pkgErrors.ErrUnauthenticated
	}
	id, ok := f.tokens[token]
	if !ok {
		return auth.Identity{}, nil, pkgErrors.ErrInvalidToken
	}
	return id, &model.User{Username: id.Username}, nil
}

func TestAuthMiddleware(t *testing.T) {
	ids := &fakeIdentities{tokens: map[string]auth.Identity{
		"good": {ID: 7, Username: "bob", Role: auth.RoleTeamMember},
	}}

	r := gin.New()
	r.GET("/me", AuthMiddleware(ids), func(c *gin.Context) {
		id, ok := GetIdentity(c)
		require.True(t, ok)
		user, ok := GetUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id.ID, "username": user.Username})
	})

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Token good", http.StatusUnauthorized},
		{"Bearer ", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer good", http.StatusOK},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if c.header != "" {
			req.Header.Set(constants.HeaderAuthorization, c.header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, c.want, w.Code, "header=%q", c.header)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(constants.HeaderRequestID), 36)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, limiter.Size())

	now := time.Now()
	limiter.now = func() time.Time { return now.Add(time.Hour) }
	assert.Equal(t, 1, limiter.Cleanup(10*time.Minute))
	assert.Zero(t, limiter.Size())
}

func TestTimeoutMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TimeoutMiddleware(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowOrigins: []string{"https://app.example.com"}}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
