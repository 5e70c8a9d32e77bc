package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
)

// briefingSections collects the per-section results of the fan-out. Each
// goroutine writes exactly one section, so no locking is needed. The fields
// are pre-filled with the unknown-error apologies: a section that fails in a
// way its own error handling doesn't cover still leaves presentable text.
type briefingSections struct {
	header    string
	calendar  string
	weather   string
	meal      string
	mealVoice string
	timetable string
}

const retryLater = "\n나중에 다시 시도해 보세요."

func (r *Router) briefing(ctx context.Context, req Request) Response {
	now := r.now()
	date, dayLabel := now, "오늘"
	if now.Hour() >= 17 {
		date, dayLabel = now.AddDate(0, 0, 1), "내일"
	}
	r.logger.Info("briefing request",
		zap.String("request_id", req.RequestID),
		zap.String("date", date.Format("2006-01-02")))

	greeting := fmt.Sprintf("안녕하세요, %s 급식입니다.\n", r.cfg.SchoolName)

	if isWeekend(date) {
		msg := fmt.Sprintf("%s은 주말 입니다.", dayLabel)
		return Response{Outputs: []Output{Text(msg)}, Voice: greeting + msg}
	}

	s := briefingSections{
		header:    "알 수 없는 오류로 헤더를 불러올 수 없었습니다." + retryLater,
		calendar:  "알 수 없는 오류로 학사일정을 불러올 수 없었습니다." + retryLater,
		weather:   "알 수 없는 오류로 날씨를 불러올 수 없었습니다." + retryLater,
		meal:      "알 수 없는 오류로 식단을 불러올 수 없었습니다." + retryLater,
		mealVoice: "알 수 없는 오류로 식단을 불러올 수 없었습니다." + retryLater,
		timetable: "알 수 없는 오류로 시간표를 불러올 수 없었습니다." + retryLater,
	}

	// Bounded wait: a section that misses the deadline reports its apology
	// without holding up the others forever.
	ctx, cancel := context.WithTimeout(ctx, r.cfg.BriefingTimeout)
	defer cancel()

	g := new(errgroup.Group)
	g.Go(func() error {
		s.header = fmt.Sprintf("%s은 %s(%s) 입니다.",
			dayLabel, date.Format("2006-01-02"), weekdayKo(date))
		return nil
	})
	g.Go(func() error {
		r.briefingCalendar(ctx, req, date, dayLabel, &s)
		return nil
	})
	g.Go(func() error {
		r.briefingWeather(ctx, req, dayLabel, &s)
		return nil
	})
	g.Go(func() error {
		r.briefingMeal(ctx, req, date, dayLabel, &s)
		return nil
	})
	g.Go(func() error {
		r.briefingTimetable(ctx, req, date, dayLabel, &s)
		return nil
	})
	_ = g.Wait()

	return Response{
		Outputs: []Output{
			Text(s.header + "\n\n" + s.calendar),
			Text(s.weather),
			Text(s.meal + "\n\n" + s.timetable),
		},
		Voice: greeting + s.mealVoice,
	}
}

func (r *Router) briefingCalendar(ctx context.Context, req Request, date time.Time, dayLabel string, s *briefingSections) {
	schedule, err := r.source.Schedule(ctx, date)
	if err != nil {
		if isConnectivity(err) {
			s.calendar = "학사일정 서버에 연결하지 못했습니다." + retryLater
		} else {
			r.logger.Error("briefing calendar failed",
				zap.String("request_id", req.RequestID), zap.Error(err))
		}
		return
	}
	if schedule == "" {
		s.calendar = fmt.Sprintf("%s은 학사일정이 없습니다.", dayLabel)
		return
	}
	s.calendar = fmt.Sprintf("%s 학사일정:\n%s", dayLabel, schedule)
}

func (r *Router) briefingWeather(ctx context.Context, req Request, dayLabel string, s *briefingSections) {
	weather, err := r.source.Weather(ctx, dayLabel)
	if err != nil {
		if isConnectivity(err) {
			s.weather = "날씨 서버에 연결하지 못했습니다." + retryLater
		} else {
			r.logger.Error("briefing weather failed",
				zap.String("request_id", req.RequestID), zap.Error(err))
		}
		return
	}
	s.weather = weather
}

func (r *Router) briefingMeal(ctx context.Context, req Request, date time.Time, dayLabel string, s *briefingSections) {
	record, err := r.source.Meal(ctx, date)
	if err != nil {
		if isConnectivity(err) {
			s.meal = "급식 서버에 연결하지 못했습니다." + retryLater
			s.mealVoice = s.meal
		} else {
			r.logger.Error("briefing meal failed",
				zap.String("request_id", req.RequestID), zap.Error(err))
		}
		return
	}
	switch {
	case record.HasMenu():
		names := make([]string, 0, len(record.Menu))
		for _, dish := range record.Menu {
			names = append(names, dish.Name)
		}
		// The voice form is a single line with decorative markup stripped.
		s.mealVoice = fmt.Sprintf("%s 급식은 %s 입니다.",
			dayLabel, strings.ReplaceAll(strings.Join(names, ", "), "⭐", ""))
		s.meal = fmt.Sprintf("%s 급식:\n%s", dayLabel, strings.Join(names, "\n"))
	case record.Message == mealdata.NoDataMessage:
		s.meal = dayLabel + "은 급식을 실시하지 않습니다."
		s.mealVoice = s.meal
	}
}

func (r *Router) briefingTimetable(ctx context.Context, req Request, date time.Time, dayLabel string, s *briefingSections) {
	pref, err := r.store.Get(ctx, req.UserKey)
	if err != nil {
		r.logger.Error("briefing timetable failed to load user",
			zap.String("request_id", req.RequestID), zap.Error(err))
		return
	}
	if pref == nil {
		s.timetable = "등록된 사용자만 시간표를 볼 수 있습니다."
		return
	}
	timetable, err := r.source.Timetable(ctx, pref.Grade, pref.ClassNumber, date)
	if err != nil {
		if isConnectivity(err) {
			s.timetable = "시간표 서버에 연결하지 못했습니다." + retryLater
		} else {
			r.logger.Error("briefing timetable failed",
				zap.String("request_id", req.RequestID), zap.Error(err))
		}
		return
	}
	if timetable == mealdata.NoDataMessage {
		s.timetable = "등록된 시간표가 없습니다."
		return
	}
	// The timetable text starts with its own date header; keep only the body.
	if parts := strings.SplitN(timetable, "):\n", 2); len(parts) == 2 {
		timetable = parts[1]
	}
	s.timetable = fmt.Sprintf("%s 시간표:\n%s", dayLabel, timetable)
}
