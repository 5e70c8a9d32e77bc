package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/chat"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/middleware"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

// ChatRouter dispatches a normalized chat request to the domain handlers.
type ChatRouter interface {
	Handle(ctx context.Context, req chat.Request) chat.Response
}

// KakaoHandler adapts the Kakao i Open Builder skill API to the chat
// router. Kakao posts the matched intent name and action parameters;
// date-typed parameters arrive as JSON strings that need a second
// decode.
type KakaoHandler struct {
	router ChatRouter
	logger *zap.Logger
}

func NewKakaoHandler(router ChatRouter, logger *zap.Logger) *KakaoHandler {
	return &KakaoHandler{
		router: router,
		logger: logger,
	}
}

func (h *KakaoHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/skill", h.Skill)
}

type kakaoSkillRequest struct {
	UserRequest struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Utterance string `json:"utterance"`
	} `json:"userRequest"`
	Intent struct {
		Name string `json:"name"`
	} `json:"intent"`
	Action struct {
		Params map[string]string `json:"params"`
	} `json:"action"`
}

type kakaoDateParam struct {
	Date string `json:"date"`
}

type kakaoDatePeriodParam struct {
	From kakaoDateParam `json:"from"`
	To   kakaoDateParam `json:"to"`
}

// Skill handles POST /skill.
func (h *KakaoHandler) Skill(c *gin.Context) {
	reqID := middleware.GetRequestID(c)

	var body kakaoSkillRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request Body is Not JSON Format"})
		return
	}
	if body.UserRequest.User.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing Value: 'id' Required"})
		return
	}
	if body.Intent.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing Value: 'name' Required"})
		return
	}

	params, err := parseKakaoParams(body.Action.Params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed JSON in request body"})
		return
	}

	userKey := service.HashUserID("KT-", body.UserRequest.User.ID)
	intent := chat.ParseIntent(body.Intent.Name)
	h.logger.Info("skill request",
		zap.String("request_id", reqID),
		zap.String("user", userKey),
		zap.String("intent", intent.String()),
		zap.String("utterance", body.UserRequest.Utterance),
		zap.String("platform", "Kakao i"))

	resp := h.router.Handle(c.Request.Context(), chat.Request{
		Platform:  chat.PlatformKakao,
		UserKey:   userKey,
		Intent:    intent,
		Params:    params,
		RequestID: reqID,
	})

	c.JSON(http.StatusOK, renderKakao(resp))
}

func parseKakaoParams(raw map[string]string) (chat.Params, error) {
	var params chat.Params
	params.Grade = raw["grade"]
	params.Class = raw["class"]

	if v, ok := raw["date_period"]; ok {
		var period kakaoDatePeriodParam
		if err := json.Unmarshal([]byte(v), &period); err != nil {
			return params, err
		}
		start, err := time.Parse("2006-01-02", period.From.Date)
		if err != nil {
			return params, err
		}
		end, err := time.Parse("2006-01-02", period.To.Date)
		if err != nil {
			return params, err
		}
		params.Range = &chat.DateRange{Start: start, End: end}
		return params, nil
	}

	if v, ok := raw["date"]; ok {
		var date kakaoDateParam
		if err := json.Unmarshal([]byte(v), &date); err != nil {
			return params, err
		}
		// Unparseable dates fall through as nil so handlers can ask the
		// user to rephrase rather than failing the request.
		if t, err := time.Parse("2006-01-02", date.Date); err == nil {
			params.Date = &t
		}
	}
	return params, nil
}

// renderKakao converts the neutral response into the Kakao skill v2.0
// template schema.
func renderKakao(resp chat.Response) gin.H {
	outputs := make([]gin.H, 0, len(resp.Outputs))
	for _, out := range resp.Outputs {
		if out.Card == nil {
			outputs = append(outputs, gin.H{"simpleText": gin.H{"text": out.Text}})
			continue
		}
		card := gin.H{
			"title":       out.Card.Title,
			"description": out.Card.Body,
		}
		if out.Card.ImageURL != "" {
			card["thumbnail"] = gin.H{"imageUrl": out.Card.ImageURL}
		}
		if len(out.Card.Buttons) > 0 {
			buttons := make([]gin.H, 0, len(out.Card.Buttons))
			for _, btn := range out.Card.Buttons {
				switch btn.Type {
				case chat.ButtonWeb:
					buttons = append(buttons, gin.H{
						"action":     "webLink",
						"label":      btn.Title,
						"webLinkUrl": btn.URL,
					})
				case chat.ButtonMessage:
					postback := btn.Postback
					if postback == "" {
						postback = btn.Title
					}
					buttons = append(buttons, gin.H{
						"action":      "message",
						"label":       btn.Title,
						"messageText": postback,
					})
				}
			}
			card["buttons"] = buttons
		}
		outputs = append(outputs, gin.H{"basicCard": card})
	}
	return gin.H{
		"version":  "2.0",
		"template": gin.H{"outputs": outputs},
	}
}
