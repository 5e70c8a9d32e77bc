package mealdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hgyoseo/HDMeal-Chatbot/config"
)

// Client fetches data from the parser API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.SourceConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "get %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.Wrapf(ErrUnreachable, "get %s: status %d", path, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", path)
	}
	return nil
}

func (c *Client) Meal(ctx context.Context, date time.Time) (*MealRecord, error) {
	var record MealRecord
	path := fmt.Sprintf("/meal/%d/%d/%d", date.Year(), date.Month(), date.Day())
	if err := c.getJSON(ctx, path, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) Schedule(ctx context.Context, date time.Time) (string, error) {
	var payload struct {
		Schedule string `json:"schedule"`
	}
	path := fmt.Sprintf("/schedule/%d/%d/%d", date.Year(), date.Month(), date.Day())
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return "", err
	}
	return payload.Schedule, nil
}

func (c *Client) ScheduleRange(ctx context.Context, start, end time.Time) ([]ScheduleEntry, error) {
	var entries []ScheduleEntry
	query := url.Values{
		"start": {start.Format("2006-01-02")},
		"end":   {end.Format("2006-01-02")},
	}
	if err := c.getJSON(ctx, "/schedule", query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Timetable(ctx context.Context, grade, classNumber int, date time.Time) (string, error) {
	var payload struct {
		Timetable string `json:"timetable"`
	}
	path := fmt.Sprintf("/timetable/%d/%d/%d/%d/%d",
		grade, classNumber, date.Year(), date.Month(), date.Day())
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return "", err
	}
	return payload.Timetable, nil
}

func (c *Client) WaterTemperature(ctx context.Context) (string, error) {
	var payload struct {
		WaterTemperature string `json:"watertemperature"`
	}
	if err := c.getJSON(ctx, "/watertemperature", nil, &payload); err != nil {
		return "", err
	}
	return payload.WaterTemperature, nil
}

func (c *Client) Weather(ctx context.Context, dayLabel string) (string, error) {
	var payload struct {
		Weather string `json:"weather"`
	}
	query := url.Values{"day": {dayLabel}}
	if err := c.getJSON(ctx, "/weather", query, &payload); err != nil {
		return "", err
	}
	return payload.Weather, nil
}
