package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/chat"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/middleware"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

// DialogflowHandler adapts the Dialogflow fulfillment webhook to the
// chat router. The same endpoint serves Facebook Messenger, Telegram,
// LINE and Google Assistant; the sender id lives in a different spot of
// the originalDetectIntentRequest payload for each.
type DialogflowHandler struct {
	router ChatRouter
	logger *zap.Logger
}

func NewDialogflowHandler(router ChatRouter, logger *zap.Logger) *DialogflowHandler {
	return &DialogflowHandler{
		router: router,
		logger: logger,
	}
}

func (h *DialogflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/fulfillment", h.Fulfillment)
}

type dialogflowRequest struct {
	QueryResult struct {
		Intent struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
		Parameters map[string]any `json:"parameters"`
		QueryText  string         `json:"queryText"`
	} `json:"queryResult"`
	OriginalDetectIntentRequest struct {
		Payload struct {
			Data struct {
				Sender struct {
					ID string `json:"id"`
				} `json:"sender"` // Facebook Messenger
				From struct {
					ID json.Number `json:"id"`
				} `json:"from"` // Telegram
				Source struct {
					UserID string `json:"userId"`
				} `json:"source"` // LINE
			} `json:"data"`
		} `json:"payload"`
	} `json:"originalDetectIntentRequest"`
}

// Fulfillment handles POST /fulfillment.
func (h *DialogflowHandler) Fulfillment(c *gin.Context) {
	reqID := middleware.GetRequestID(c)

	var body dialogflowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request Body is Not JSON Format"})
		return
	}
	if body.QueryResult.Intent.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing Value: 'displayName' Required"})
		return
	}

	userKey := h.senderKey(&body, reqID)
	params := parseDialogflowParams(body.QueryResult.Parameters)
	intent := chat.ParseIntent(body.QueryResult.Intent.DisplayName)
	h.logger.Info("fulfillment request",
		zap.String("request_id", reqID),
		zap.String("user", userKey),
		zap.String("intent", intent.String()),
		zap.String("utterance", body.QueryResult.QueryText),
		zap.String("platform", "Dialogflow"))

	resp := h.router.Handle(c.Request.Context(), chat.Request{
		Platform:  chat.PlatformDialogflow,
		UserKey:   userKey,
		Intent:    intent,
		Params:    params,
		RequestID: reqID,
	})

	c.JSON(http.StatusOK, renderDialogflow(resp))
}

// senderKey extracts the raw sender id from the messenger payload,
// hashed with the messenger prefix. Requests with no recognizable
// sender get an anonymous key tied to the request id.
func (h *DialogflowHandler) senderKey(body *dialogflowRequest, reqID string) string {
	data := &body.OriginalDetectIntentRequest.Payload.Data
	if data.Sender.ID != "" {
		return service.HashUserID("FB-", data.Sender.ID)
	}
	if data.From.ID != "" {
		return service.HashUserID("TG-", data.From.ID.String())
	}
	if data.Source.UserID != "" {
		return service.HashUserID("LN-", data.Source.UserID)
	}
	return "ANON-" + reqID
}

// parseDialogflowParams normalizes the loosely-typed parameter map.
// Dialogflow sends dates as RFC 3339 strings, date periods as
// {startDate, endDate} objects, and numbers as float64.
func parseDialogflowParams(raw map[string]any) chat.Params {
	var params chat.Params
	params.Grade = paramString(raw["grade"])
	params.Class = paramString(raw["class"])

	switch v := raw["date"].(type) {
	case string:
		if t, ok := parseDatePrefix(v); ok {
			params.Date = &t
		}
	case map[string]any:
		start, okStart := parseDatePrefix(paramString(v["startDate"]))
		end, okEnd := parseDatePrefix(paramString(v["endDate"]))
		if okStart && okEnd {
			params.Range = &chat.DateRange{Start: start, End: end}
		}
	}
	return params
}

// parseDatePrefix parses the date part of an RFC 3339 timestamp.
func parseDatePrefix(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func paramString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// renderDialogflow converts the neutral response into fulfillment
// messages, appending an Actions on Google simple response when the
// handler produced a voice summary.
func renderDialogflow(resp chat.Response) gin.H {
	outputs := make([]gin.H, 0, len(resp.Outputs)+1)
	for _, out := range resp.Outputs {
		if out.Card == nil {
			outputs = append(outputs, gin.H{"text": gin.H{"text": []string{out.Text}}})
			continue
		}
		card := gin.H{
			"title":    out.Card.Title,
			"subtitle": out.Card.Body,
		}
		if out.Card.ImageURL != "" {
			card["thumbnail"] = gin.H{"imageUrl": out.Card.ImageURL}
		}
		if len(out.Card.Buttons) > 0 {
			buttons := make([]gin.H, 0, len(out.Card.Buttons))
			for _, btn := range out.Card.Buttons {
				switch btn.Type {
				case chat.ButtonWeb:
					buttons = append(buttons, gin.H{"text": btn.Title, "postback": btn.URL})
				case chat.ButtonMessage:
					postback := btn.Postback
					if postback == "" {
						postback = btn.Title
					}
					buttons = append(buttons, gin.H{"text": btn.Title, "postback": postback})
				}
			}
			card["buttons"] = buttons
		}
		outputs = append(outputs, gin.H{"card": card})
	}
	if resp.Voice != "" {
		outputs = append(outputs, gin.H{
			"platform": "ACTIONS_ON_GOOGLE",
			"simpleResponses": gin.H{
				"simpleResponses": []gin.H{
					{"textToSpeech": resp.Voice},
				},
			},
		})
	}
	return gin.H{"fulfillmentMessages": outputs}
}
