package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

// MenuPublisher pushes the daily menu to external channels.
type MenuPublisher interface {
	PushNotification(ctx context.Context, title, linkURL string) error
	PublishToFacebook(ctx context.Context) error
}

// PublishHandler exposes the scheduled publishing endpoints. A cron
// job calls these every school-day morning.
type PublishHandler struct {
	publisher MenuPublisher
	logger    *zap.Logger
}

func NewPublishHandler(publisher MenuPublisher, logger *zap.Logger) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		logger:    logger,
	}
}

func (h *PublishHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/notify", h.Notify)
	router.POST("/facebook/page", h.FacebookPage)
}

type notifyRequest struct {
	Title string `json:"Title"`
	URL   string `json:"URL"`
}

// Notify handles POST /notify.
func (h *PublishHandler) Notify(c *gin.Context) {
	var body notifyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request Body is Not JSON Format"})
		return
	}
	if body.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing Value: 'Title' Required"})
		return
	}
	if body.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing Value: 'URL' Required"})
		return
	}

	err := h.publisher.PushNotification(c.Request.Context(), body.Title, body.URL)
	switch {
	case errors.Is(err, service.ErrWeekend):
		c.JSON(http.StatusOK, gin.H{"message": "알림미발송(주말)"})
	case errors.Is(err, service.ErrNoMeal):
		c.JSON(http.StatusOK, gin.H{"message": "알림미발송(정보없음)"})
	case err != nil:
		h.logger.Error("push notification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "발송실패"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "성공"})
	}
}

// FacebookPage handles POST /facebook/page.
func (h *PublishHandler) FacebookPage(c *gin.Context) {
	err := h.publisher.PublishToFacebook(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrWeekend):
		c.JSON(http.StatusOK, gin.H{"message": "게시안함(주말)"})
	case errors.Is(err, service.ErrNoMeal):
		c.JSON(http.StatusOK, gin.H{"message": "게시안함(정보없음)"})
	case err != nil:
		h.logger.Error("facebook publish failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "게시실패"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "성공"})
	}
}
