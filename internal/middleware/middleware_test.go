package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticVerifier struct {
	secret string
}

func (v staticVerifier) VerifyWebhookToken(token string) bool {
	return token == v.secret
}

func newAuthedRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.POST("/skill", WebhookAuth(staticVerifier{secret: "s3cret"}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestWebhookAuthMissingToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/skill", nil)
	newAuthedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "인증 토큰 없음")
}

func TestWebhookAuthWrongToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/skill", nil)
	req.Header.Set("X-HDMeal-Token", "wrong")
	newAuthedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "미승인 토큰")
}

func TestWebhookAuthHeaderToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/skill", nil)
	req.Header.Set("X-HDMeal-Token", "s3cret")
	newAuthedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookAuthQueryToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/skill?token=s3cret", nil)
	newAuthedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 8)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}
