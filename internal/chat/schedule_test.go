package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
)

func TestScheduleNoDate(t *testing.T) {
	r := newTestRouter(newFakeStore(), &fakeSource{})

	resp := r.Handle(context.Background(), Request{Intent: IntentSchedule})
	assert.Equal(t, []string{"언제의 학사일정을 조회하시겠어요?"}, texts(resp))
}

func TestScheduleSingleDay(t *testing.T) {
	r := newTestRouter(newFakeStore(), &fakeSource{schedule: "중간고사"})

	date := monday
	resp := r.Handle(context.Background(), Request{
		Intent: IntentSchedule,
		Params: Params{Date: &date},
	})
	assert.Equal(t, []string{"2026-03-02(월):\n중간고사"}, texts(resp))
}

func TestScheduleSingleDayEmpty(t *testing.T) {
	r := newTestRouter(newFakeStore(), &fakeSource{})

	date := monday
	resp := r.Handle(context.Background(), Request{
		Intent: IntentSchedule,
		Params: Params{Date: &date},
	})
	assert.Equal(t, []string{"일정이 없습니다."}, texts(resp))
}

func TestScheduleRange(t *testing.T) {
	source := &fakeSource{entries: []mealdata.ScheduleEntry{
		{Year: 2026, Month: 3, Day: 2, Text: "개학식"},
	}}
	r := newTestRouter(newFakeStore(), source)

	resp := r.Handle(context.Background(), Request{
		Intent: IntentSchedule,
		Params: Params{Range: &DateRange{Start: monday, End: monday.AddDate(0, 0, 4)}},
	})
	require.Len(t, resp.Outputs, 1)
	assert.Equal(t, "2026-03-02부터 2026-03-06까지 조회합니다.\n\n2026-03-02(월):\n개학식", resp.Outputs[0].Text)
}

func TestScheduleRangeClamped(t *testing.T) {
	source := &fakeSource{}
	r := newTestRouter(newFakeStore(), source)

	start := monday
	end := monday.AddDate(0, 0, 200)
	resp := r.Handle(context.Background(), Request{
		Intent: IntentSchedule,
		Params: Params{Range: &DateRange{Start: start, End: end}},
	})
	require.Len(t, resp.Outputs, 1)
	assert.True(t, strings.HasPrefix(resp.Outputs[0].Text,
		"서버 성능상의 이유로 최대 90일까지만 조회가 가능합니다.\n조회기간이 2026-03-02부터 2026-05-31까지로 제한되었습니다."))

	// The effective window passed upstream must match the stated one.
	assert.Equal(t, start, source.rangeStart)
	assert.Equal(t, start.AddDate(0, 0, 90), source.rangeEnd)
}

func TestScheduleRangeEmpty(t *testing.T) {
	r := newTestRouter(newFakeStore(), &fakeSource{})

	resp := r.Handle(context.Background(), Request{
		Intent: IntentSchedule,
		Params: Params{Range: &DateRange{Start: monday, End: monday.AddDate(0, 0, 4)}},
	})
	require.Len(t, resp.Outputs, 1)
	assert.True(t, strings.HasSuffix(resp.Outputs[0].Text, "일정이 없습니다."))
}

func TestScheduleRangeUnreachable(t *testing.T) {
	r := newTestRouter(newFakeStore(), &fakeSource{rangeErr: mealdata.ErrUnreachable})

	resp := r.Handle(context.Background(), Request{
		Intent:    IntentSchedule,
		Params:    Params{Range: &DateRange{Start: monday, End: monday.AddDate(0, 0, 4)}},
		RequestID: "req123",
	})
	assert.Equal(t, []string{"학사일정 서버에 연결하지 못했습니다.\n요청 ID: req123"}, texts(resp))
}

func TestGroupScheduleEntries(t *testing.T) {
	entries := []mealdata.ScheduleEntry{
		{Year: 2026, Month: 3, Day: 2, Text: "개학식"},
		{Year: 2026, Month: 3, Day: 3, Text: "수학여행"},
		{Year: 2026, Month: 3, Day: 4, Text: "수학여행"},
		{Year: 2026, Month: 3, Day: 5, Text: "수학여행"},
		{Year: 2026, Month: 3, Day: 6, Text: "재량휴업일"},
	}

	got := groupScheduleEntries(entries)
	want := "2026-03-02(월):\n개학식\n" +
		"2026-03-03(화)~2026-03-05(목):\n수학여행\n" +
		"2026-03-06(금):\n재량휴업일\n"
	assert.Equal(t, want, got)
}

func TestGroupScheduleEntriesEmpty(t *testing.T) {
	assert.Equal(t, "", groupScheduleEntries(nil))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, daysBetween(monday, monday))
	assert.Equal(t, 4, daysBetween(monday, monday.AddDate(0, 0, 4)))
	assert.Equal(t, 91, daysBetween(monday, monday.AddDate(0, 0, 91)))
}

func TestDaysBetweenAcrossDSTBoundary(t *testing.T) {
	// Calendar-day difference must not drift when the interval crosses a
	// daylight-saving transition in the local zone.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	start := time.Date(2026, 3, 7, 0, 0, 0, 0, loc)
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, daysBetween(start, end))
}
