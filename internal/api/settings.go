package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/models"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

// PreferenceManager is the slice of the preference store the settings
// surface needs.
type PreferenceManager interface {
	Get(ctx context.Context, userKey string) (*models.UserPreference, error)
	Upsert(ctx context.Context, userKey string, grade, classNumber int) (service.UpsertOutcome, error)
	SetAllergyDisplayMode(ctx context.Context, userKey string, mode models.AllergyDisplayMode) error
	AllergyDisplayMode(ctx context.Context, userKey string) (models.AllergyDisplayMode, error)
	Delete(ctx context.Context, userKey string) (service.DeleteOutcome, error)
}

// TokenValidator validates settings-portal tokens.
type TokenValidator interface {
	ValidateToken(token string) (*service.TokenClaims, error)
}

// SettingsHandler backs the self-service settings page. The user reaches
// the page through a short-lived link the bot issues in chat; every call
// carries that JWT and is authorized per claim scope.
type SettingsHandler struct {
	store  PreferenceManager
	tokens TokenValidator
	logger *zap.Logger
}

func NewSettingsHandler(store PreferenceManager, tokens TokenValidator, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	user := router.Group("/user")
	{
		user.GET("/settings", h.GetSettings)
		user.POST("/settings", h.PostSettings)
		user.DELETE("/settings", h.DeleteSettings)
		user.GET("/usage-data", h.GetUsageData)
		user.DELETE("/usage-data", h.DeleteUsageData)
	}
}

// authorize validates the portal token and checks the required scope.
// The token travels in the token query parameter, matching the link
// format the bot hands out.
func (h *SettingsHandler) authorize(c *gin.Context, scope string) (*service.TokenClaims, bool) {
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("X-HDMeal-Token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "인증 토큰 없음"})
		return nil, false
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "토큰이 올바르지 않거나 만료되었습니다."})
		return nil, false
	}
	if !claims.HasScope(scope) {
		c.JSON(http.StatusForbidden, gin.H{"message": "권한이 없습니다."})
		return nil, false
	}
	return claims, true
}

type settingsResponse struct {
	Grade              int                       `json:"grade"`
	ClassNumber        int                       `json:"class"`
	AllergyDisplayMode models.AllergyDisplayMode `json:"allergy_display_mode"`
	Registered         bool                      `json:"registered"`
}

// GetSettings handles GET /user/settings.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	claims, ok := h.authorize(c, service.ScopeGetUserInfo)
	if !ok {
		return
	}

	pref, err := h.store.Get(c.Request.Context(), claims.UserKey)
	if err != nil {
		h.storeError(c, err)
		return
	}
	mode, err := h.store.AllergyDisplayMode(c.Request.Context(), claims.UserKey)
	if err != nil {
		h.storeError(c, err)
		return
	}

	resp := settingsResponse{AllergyDisplayMode: mode}
	if pref != nil {
		resp.Grade = pref.Grade
		resp.ClassNumber = pref.ClassNumber
		resp.Registered = true
	}
	c.JSON(http.StatusOK, resp)
}

type settingsRequest struct {
	Grade              int                       `json:"grade"`
	ClassNumber        int                       `json:"class"`
	AllergyDisplayMode models.AllergyDisplayMode `json:"allergy_display_mode"`
}

// PostSettings handles POST /user/settings.
func (h *SettingsHandler) PostSettings(c *gin.Context) {
	claims, ok := h.authorize(c, service.ScopeManageUserInfo)
	if !ok {
		return
	}

	var body settingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request Body is Not JSON Format"})
		return
	}
	if body.Grade < 1 || body.ClassNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "올바른 학년/반 정보를 입력해 주세요."})
		return
	}
	switch body.AllergyDisplayMode {
	case "", models.AllergyDisplayNone, models.AllergyDisplayFullText, models.AllergyDisplayCodes:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "올바르지 않은 알레르기 표시 설정입니다."})
		return
	}

	outcome, err := h.store.Upsert(c.Request.Context(), claims.UserKey, body.Grade, body.ClassNumber)
	if err != nil {
		h.storeError(c, err)
		return
	}
	if body.AllergyDisplayMode != "" {
		if err := h.store.SetAllergyDisplayMode(c.Request.Context(), claims.UserKey, body.AllergyDisplayMode); err != nil {
			h.storeError(c, err)
			return
		}
	}

	h.logger.Info("settings saved",
		zap.String("request_id", claims.RequestID),
		zap.String("user", claims.UserKey),
		zap.String("outcome", string(outcome)))
	c.JSON(http.StatusOK, gin.H{"message": "저장되었습니다."})
}

// DeleteSettings handles DELETE /user/settings.
func (h *SettingsHandler) DeleteSettings(c *gin.Context) {
	claims, ok := h.authorize(c, service.ScopeManageUserInfo)
	if !ok {
		return
	}
	h.deleteRecord(c, claims)
}

// GetUsageData handles GET /user/usage-data. It returns everything the
// service holds about the user, which is the single preference record.
func (h *SettingsHandler) GetUsageData(c *gin.Context) {
	claims, ok := h.authorize(c, service.ScopeGetUsageData)
	if !ok {
		return
	}

	pref, err := h.store.Get(c.Request.Context(), claims.UserKey)
	if err != nil {
		h.storeError(c, err)
		return
	}
	mode, err := h.store.AllergyDisplayMode(c.Request.Context(), claims.UserKey)
	if err != nil {
		h.storeError(c, err)
		return
	}

	data := gin.H{
		"user_key":             claims.UserKey,
		"allergy_display_mode": mode,
	}
	if pref != nil {
		data["preference"] = pref
	}
	c.JSON(http.StatusOK, data)
}

// DeleteUsageData handles DELETE /user/usage-data.
func (h *SettingsHandler) DeleteUsageData(c *gin.Context) {
	claims, ok := h.authorize(c, service.ScopeDeleteUsageData)
	if !ok {
		return
	}
	h.deleteRecord(c, claims)
}

func (h *SettingsHandler) deleteRecord(c *gin.Context, claims *service.TokenClaims) {
	outcome, err := h.store.Delete(c.Request.Context(), claims.UserKey)
	if err != nil {
		h.storeError(c, err)
		return
	}
	if outcome == service.OutcomeNotFound {
		c.JSON(http.StatusOK, gin.H{"message": "삭제할 정보가 없습니다."})
		return
	}
	h.logger.Info("user data deleted",
		zap.String("request_id", claims.RequestID),
		zap.String("user", claims.UserKey))
	c.JSON(http.StatusOK, gin.H{"message": "삭제되었습니다."})
}

func (h *SettingsHandler) storeError(c *gin.Context, err error) {
	h.logger.Error("preference store failure", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "서버 오류가 발생했습니다."})
}
