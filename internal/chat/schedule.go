package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
)

// scheduleRangeCapDays caps range queries; longer ranges are truncated from
// the requested start date and the response states the effective window.
const scheduleRangeCapDays = 90

const msgNoSchedule = "일정이 없습니다."

// daysBetween counts calendar days, immune to DST-shortened days.
func daysBetween(start, end time.Time) int {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func (r *Router) schedule(ctx context.Context, req Request) Response {
	switch {
	case req.Params.Date != nil:
		return r.scheduleSingle(ctx, req, *req.Params.Date)
	case req.Params.Range != nil:
		return r.scheduleRange(ctx, req, *req.Params.Range)
	default:
		return textResponse("언제의 학사일정을 조회하시겠어요?")
	}
}

func (r *Router) scheduleSingle(ctx context.Context, req Request, date time.Time) Response {
	schedule, err := r.source.Schedule(ctx, date)
	if err != nil {
		if isConnectivity(err) {
			return textResponse("학사일정 서버에 연결하지 못했습니다.\n요청 ID: " + req.RequestID)
		}
		return r.unknownError(req, err, "schedule")
	}
	if schedule == "" {
		return textResponse(msgNoSchedule)
	}
	return textResponse(fmt.Sprintf("%s(%s):\n%s",
		date.Format("2006-01-02"), weekdayKo(date), schedule))
}

func (r *Router) scheduleRange(ctx context.Context, req Request, rng DateRange) Response {
	start, end := rng.Start, rng.End

	var head string
	if daysBetween(start, end) > scheduleRangeCapDays {
		end = start.AddDate(0, 0, scheduleRangeCapDays)
		head = fmt.Sprintf("서버 성능상의 이유로 최대 90일까지만 조회가 가능합니다."+
			"\n조회기간이 %s부터 %s까지로 제한되었습니다.\n\n",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	} else {
		head = fmt.Sprintf("%s부터 %s까지 조회합니다.\n\n",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	entries, err := r.source.ScheduleRange(ctx, start, end)
	if err != nil {
		if isConnectivity(err) {
			return textResponse("학사일정 서버에 연결하지 못했습니다.\n요청 ID: " + req.RequestID)
		}
		return r.unknownError(req, err, "schedule")
	}

	body := groupScheduleEntries(entries)
	if body == "" {
		body = msgNoSchedule + "\n"
	}
	return textResponse(strings.TrimSuffix(head+body, "\n"))
}

// groupScheduleEntries run-length encodes consecutive entries sharing a
// description, so a multi-day event renders as one start~end line.
func groupScheduleEntries(entries []mealdata.ScheduleEntry) string {
	var b strings.Builder
	for i := 0; i < len(entries); {
		j := i
		for j+1 < len(entries) && entries[j+1].Text == entries[i].Text {
			j++
		}
		if j > i {
			startDate, endDate := entries[i].Date(), entries[j].Date()
			fmt.Fprintf(&b, "%s(%s)~%s(%s):\n%s\n",
				startDate.Format("2006-01-02"), weekdayKo(startDate),
				endDate.Format("2006-01-02"), weekdayKo(endDate),
				entries[i].Text)
		} else {
			date := entries[i].Date()
			fmt.Fprintf(&b, "%s(%s):\n%s\n",
				date.Format("2006-01-02"), weekdayKo(date), entries[i].Text)
		}
		i = j + 1
	}
	return b.String()
}
