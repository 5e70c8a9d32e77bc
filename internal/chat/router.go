package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/models"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

// UserStore is the preference storage the handlers consume.
type UserStore interface {
	Get(ctx context.Context, userKey string) (*models.UserPreference, error)
	Upsert(ctx context.Context, userKey string, grade, classNumber int) (service.UpsertOutcome, error)
	AllergyDisplayMode(ctx context.Context, userKey string) (models.AllergyDisplayMode, error)
}

// TokenIssuer issues the signed settings-portal tokens.
type TokenIssuer interface {
	IssueToken(purpose, userKey string, scopes []string, requestID string) (string, error)
}

// Config carries the handler-facing configuration values.
type Config struct {
	SchoolName      string
	SettingsBaseURL string
	BriefingTimeout time.Duration
}

// Router dispatches a normalized request to the handler for its intent.
type Router struct {
	store  UserStore
	source mealdata.Source
	tokens TokenIssuer
	logger *zap.Logger
	cfg    Config

	now func() time.Time
}

func NewRouter(store UserStore, source mealdata.Source, tokens TokenIssuer, logger *zap.Logger, cfg Config) *Router {
	if cfg.BriefingTimeout <= 0 {
		cfg.BriefingTimeout = 10 * time.Second
	}
	return &Router{
		store:  store,
		source: source,
		tokens: tokens,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

const (
	msgInvalidRequest = "잘못된 요청입니다.\n요청 ID: "
	msgUnknownError   = "알 수 없는 오류가 발생했습니다.\n요청 ID: "
)

// Handle dispatches the request. This is the fault boundary: a panic in any
// handler is recovered here, logged with the request id, and converted to the
// canned unknown-error message.
func (r *Router) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panic",
				zap.String("request_id", req.RequestID),
				zap.String("intent", req.Intent.String()),
				zap.Any("panic", rec),
				zap.Stack("stack"))
			resp = textResponse(msgUnknownError + req.RequestID)
		}
	}()

	switch req.Intent {
	case IntentBriefing:
		return r.briefing(ctx, req)
	case IntentMeal:
		return r.meal(ctx, req)
	case IntentTimetable:
		return r.timetable(ctx, req)
	case IntentSchedule:
		return r.schedule(ctx, req)
	case IntentWaterTemperature:
		return r.waterTemperature(ctx, req)
	case IntentUserSettings:
		return r.userSettings(req)
	case IntentModifyUserInfo:
		return r.modifyUserInfo(ctx, req)
	default:
		return textResponse(msgInvalidRequest + req.RequestID)
	}
}

func (r *Router) unknownError(req Request, err error, handler string) Response {
	r.logger.Error("unhandled handler error",
		zap.String("request_id", req.RequestID),
		zap.String("handler", handler),
		zap.Error(err))
	return textResponse(msgUnknownError + req.RequestID)
}

func (r *Router) waterTemperature(ctx context.Context, req Request) Response {
	wtemp, err := r.source.WaterTemperature(ctx)
	if err != nil {
		if isConnectivity(err) {
			return textResponse("수온 서버에 연결하지 못했습니다.\n요청 ID: " + req.RequestID)
		}
		return r.unknownError(req, err, "watertemperature")
	}
	return textResponse(wtemp)
}
