// Package mealdata talks to the upstream parser API that scrapes meal,
// timetable, calendar and weather data for the school.
package mealdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ErrUnreachable marks a connectivity failure talking to the parser API.
// Handlers translate it into per-domain apology text instead of surfacing a
// fault to the chat platform.
var ErrUnreachable = errors.New("data server unreachable")

// NoDataMessage is the distinguished absence reason the parser returns when
// nothing is registered for a date. A meal response carrying it triggers a
// secondary calendar lookup to explain the absence.
const NoDataMessage = "등록된 데이터가 없습니다."

// Dish is one menu entry: a dish name and its allergy code list.
// The parser encodes it as a two-element array: ["김치", [2, 6]].
type Dish struct {
	Name      string
	Allergens []int
}

func (d *Dish) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errors.Errorf("dish entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &d.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &d.Allergens)
}

func (d Dish) MarshalJSON() ([]byte, error) {
	allergens := d.Allergens
	if allergens == nil {
		allergens = []int{}
	}
	return json.Marshal([]interface{}{d.Name, allergens})
}

// MealRecord is a day's menu, or an absence marker when Message is set.
type MealRecord struct {
	Date    string `json:"date,omitempty"`
	Menu    []Dish `json:"menu,omitempty"`
	Kcal    string `json:"kcal,omitempty"`
	Message string `json:"message,omitempty"`
}

// HasMenu reports whether the record carries an actual menu rather than an
// absence reason.
func (m *MealRecord) HasMenu() bool {
	return m != nil && m.Message == ""
}

// ScheduleEntry is one day of the school calendar within a range query.
// The parser encodes it as [year, month, day, "description"].
type ScheduleEntry struct {
	Year  int
	Month int
	Day   int
	Text  string
}

func (e *ScheduleEntry) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 4 {
		return errors.Errorf("schedule entry must have 4 elements, got %d", len(tuple))
	}
	for i, dst := range []interface{}{&e.Year, &e.Month, &e.Day, &e.Text} {
		if err := json.Unmarshal(tuple[i], dst); err != nil {
			return err
		}
	}
	return nil
}

func (e ScheduleEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Year, e.Month, e.Day, e.Text})
}

// Date returns the entry's calendar date.
func (e ScheduleEntry) Date() time.Time {
	return time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, time.Local)
}

// Source is the data-fetch collaborator consumed by the chat handlers. All
// methods may fail with an error wrapping ErrUnreachable.
type Source interface {
	Meal(ctx context.Context, date time.Time) (*MealRecord, error)
	Schedule(ctx context.Context, date time.Time) (string, error)
	ScheduleRange(ctx context.Context, start, end time.Time) ([]ScheduleEntry, error)
	Timetable(ctx context.Context, grade, classNumber int, date time.Time) (string, error)
	WaterTemperature(ctx context.Context) (string, error)
	Weather(ctx context.Context, dayLabel string) (string, error)
}
