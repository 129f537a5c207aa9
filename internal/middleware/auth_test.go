package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})
	return r
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	cfg := &config.Config{JWT: config.JWT{Secret: "s3cret", ExpiryHours: 1}}
	router := newProtectedRouter(cfg)

	signed, err := token.Generate(cfg, 7, "asha")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	cfg := &config.Config{JWT: config.JWT{Secret: "s3cret", ExpiryHours: 1}}
	router := newProtectedRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	cfg := &config.Config{JWT: config.JWT{Secret: "s3cret", ExpiryHours: 1}}
	router := newProtectedRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsForgedToken(t *testing.T) {
	cfg := &config.Config{JWT: config.JWT{Secret: "s3cret", ExpiryHours: 1}}
	router := newProtectedRouter(cfg)

	forged, err := token.Generate(&config.Config{JWT: config.JWT{Secret: "other", ExpiryHours: 1}}, 7, "asha")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
