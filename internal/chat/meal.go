package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/models"
)

// allergyNames maps NEIS allergy codes (1-based) to Korean labels.
var allergyNames = [...]string{
	"",
	"난류",
	"우유",
	"메밀",
	"땅콩",
	"대두",
	"밀",
	"고등어",
	"게",
	"새우",
	"돼지고기",
	"복숭아",
	"토마토",
	"아황산류",
	"호두",
	"닭고기",
	"쇠고기",
	"오징어",
	"조개류",
}

func isConnectivity(err error) bool {
	return errors.Is(err, mealdata.ErrUnreachable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

func (r *Router) meal(ctx context.Context, req Request) Response {
	if req.Params.Range != nil {
		return textResponse("정확한 날짜를 입력해주세요.\n현재 식단조회에서는 여러날짜 조회를 지원하지 않습니다.")
	}
	if req.Params.Date == nil {
		return textResponse("언제의 급식을 조회하시겠어요?")
	}
	date := *req.Params.Date
	if isWeekend(date) {
		return textResponse("급식을 실시하지 않습니다. (주말)")
	}

	record, err := r.source.Meal(ctx, date)
	if err != nil {
		if isConnectivity(err) {
			return textResponse("급식 서버에 연결하지 못했습니다.\n요청 ID: " + req.RequestID)
		}
		return r.unknownError(req, err, "meal")
	}

	if record.HasMenu() {
		mode, err := r.store.AllergyDisplayMode(ctx, req.UserKey)
		if err != nil {
			r.logger.Warn("failed to load allergy display mode",
				zap.String("request_id", req.RequestID), zap.Error(err))
			mode = models.AllergyDisplayNone
		}
		menus := formatDishes(record.Menu, mode)
		return textResponse(fmt.Sprintf("%s:\n%s\n\n열량: %s kcal",
			record.Date, strings.Join(menus, "\n"), record.Kcal))
	}

	if record.Message == mealdata.NoDataMessage {
		// A closure or holiday often explains the missing menu.
		cal, err := r.source.Schedule(ctx, date)
		if err != nil {
			if isConnectivity(err) {
				return textResponse("급식 서버에 연결하지 못했습니다.\n요청 ID: " + req.RequestID)
			}
			return r.unknownError(req, err, "meal")
		}
		if cal != "" {
			return textResponse(fmt.Sprintf("급식을 실시하지 않습니다. (%s)", cal))
		}
	}

	return textResponse(record.Message)
}

// formatDishes renders dish names per the user's allergy display mode.
func formatDishes(menu []mealdata.Dish, mode models.AllergyDisplayMode) []string {
	menus := make([]string, 0, len(menu))
	for _, dish := range menu {
		if len(dish.Allergens) == 0 || mode == models.AllergyDisplayNone {
			menus = append(menus, dish.Name)
			continue
		}
		labels := make([]string, 0, len(dish.Allergens))
		for _, code := range dish.Allergens {
			switch {
			case mode == models.AllergyDisplayFullText && code > 0 && code < len(allergyNames):
				labels = append(labels, allergyNames[code])
			default:
				labels = append(labels, strconv.Itoa(code))
			}
		}
		menus = append(menus, fmt.Sprintf("%s(%s)", dish.Name, strings.Join(labels, ", ")))
	}
	return menus
}
