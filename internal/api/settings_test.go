package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/testhelpers"
)

func newSettingsTestServer(t *testing.T) (*gin.Engine, *service.TokenService, *service.PreferenceStore) {
	t.Helper()
	tokens := service.NewTokenService("test-secret", "hook-token")
	store := service.NewPreferenceStore(testhelpers.SetupTestDB(t))

	engine := gin.New()
	NewSettingsHandler(store, tokens, zap.NewNop()).RegisterRoutes(engine.Group("/"))
	return engine, tokens, store
}

func settingsToken(t *testing.T, tokens *service.TokenService, scopes ...string) string {
	t.Helper()
	token, err := tokens.IssueToken("UserSettings", "KT-user", scopes, "req123")
	require.NoError(t, err)
	return token
}

func doSettings(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestSettingsRequiresToken(t *testing.T) {
	engine, _, _ := newSettingsTestServer(t)

	w := doSettings(engine, http.MethodGet, "/user/settings", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "인증 토큰 없음")
}

func TestSettingsRejectsBadToken(t *testing.T) {
	engine, _, _ := newSettingsTestServer(t)

	w := doSettings(engine, http.MethodGet, "/user/settings?token=garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettingsRejectsMissingScope(t *testing.T) {
	engine, tokens, _ := newSettingsTestServer(t)
	token := settingsToken(t, tokens, service.ScopeGetUserInfo)

	w := doSettings(engine, http.MethodPost, "/user/settings?token="+token, `{"grade":2,"class":7}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	engine, tokens, _ := newSettingsTestServer(t)
	token := settingsToken(t, tokens,
		service.ScopeGetUserInfo, service.ScopeManageUserInfo)

	w := doSettings(engine, http.MethodPost, "/user/settings?token="+token,
		`{"grade":2,"class":7,"allergy_display_mode":"codes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "저장되었습니다.")

	w = doSettings(engine, http.MethodGet, "/user/settings?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"grade":2`)
	assert.Contains(t, w.Body.String(), `"class":7`)
	assert.Contains(t, w.Body.String(), `"allergy_display_mode":"codes"`)
	assert.Contains(t, w.Body.String(), `"registered":true`)
}

func TestSettingsGetUnregistered(t *testing.T) {
	engine, tokens, _ := newSettingsTestServer(t)
	token := settingsToken(t, tokens, service.ScopeGetUserInfo)

	w := doSettings(engine, http.MethodGet, "/user/settings?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"registered":false`)
}

func TestSettingsPostValidation(t *testing.T) {
	engine, tokens, _ := newSettingsTestServer(t)
	token := settingsToken(t, tokens, service.ScopeManageUserInfo)

	w := doSettings(engine, http.MethodPost, "/user/settings?token="+token, `{"grade":0,"class":7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doSettings(engine, http.MethodPost, "/user/settings?token="+token,
		`{"grade":2,"class":7,"allergy_display_mode":"everything"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsDelete(t *testing.T) {
	engine, tokens, store := newSettingsTestServer(t)
	token := settingsToken(t, tokens, service.ScopeManageUserInfo)

	w := doSettings(engine, http.MethodDelete, "/user/settings?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "삭제할 정보가 없습니다.")

	_, err := store.Upsert(context.Background(), "KT-user", 2, 7)
	require.NoError(t, err)

	w = doSettings(engine, http.MethodDelete, "/user/settings?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "삭제되었습니다.")
}

func TestUsageDataScopes(t *testing.T) {
	engine, tokens, _ := newSettingsTestServer(t)

	readToken := settingsToken(t, tokens, service.ScopeGetUsageData)
	w := doSettings(engine, http.MethodGet, "/user/usage-data?token="+readToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doSettings(engine, http.MethodDelete, "/user/usage-data?token="+readToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	deleteToken := settingsToken(t, tokens, service.ScopeDeleteUsageData)
	w = doSettings(engine, http.MethodDelete, "/user/usage-data?token="+deleteToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
