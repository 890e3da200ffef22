package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contactbook/api/config"
	"github.com/contactbook/api/internal/constants"
	"github.com/contactbook/api/internal/model"
	"github.com/contactbook/api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type nullCache struct{}

func (nullCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (nullCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

type singleUserGetter struct {
	user *model.User
}

func (s singleUserGetter) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newAuthTestRig(t *testing.T, user *model.User) (*service.TokenService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenService(&config.Config{
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTTL:       time.Minute,
			RefreshTTL:      time.Hour,
			ConfirmationTTL: time.Hour,
		},
	})
	sessions := service.NewSessionCache(nullCache{}, singleUserGetter{user: user}, time.Minute)
	authMw := NewAuthMiddleware(tokens, sessions)

	router := gin.New()
	router.GET("/protected", authMw.RequireAuth(), func(c *gin.Context) {
		email := c.GetString(constants.GinKeyUserEmail)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})

	return tokens, router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func assertUnauthorized(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, constants.MsgUnauthorized, body["message"])
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	user := &model.User{Username: "alice", Email: "alice@example.com", Confirmed: true}
	user.ID = 7
	tokens, router := newAuthTestRig(t, user)

	access, err := tokens.IssueAccessToken("alice@example.com")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestRequireAuthRejections(t *testing.T) {
	user := &model.User{Username: "alice", Email: "alice@example.com", Confirmed: true}
	user.ID = 7
	tokens, router := newAuthTestRig(t, user)

	refresh, err := tokens.IssueRefreshToken("alice@example.com")
	require.NoError(t, err)
	access, err := tokens.IssueAccessToken("alice@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + access},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"refresh token on access route", "Bearer " + refresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertUnauthorized(t, doRequest(router, tt.header))
		})
	}
}

func TestRequireAuthUnknownUser(t *testing.T) {
	tokens, router := newAuthTestRig(t, nil)

	access, err := tokens.IssueAccessToken("ghost@example.com")
	require.NoError(t, err)

	assertUnauthorized(t, doRequest(router, "Bearer "+access))
}
