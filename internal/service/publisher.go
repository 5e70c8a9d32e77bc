package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
)

const (
	oneSignalEndpoint = "https://onesignal.com/api/v1/notifications"
	facebookGraphBase = "https://graph.facebook.com/v9.0"
)

// ErrNoMeal reports that there is no menu to publish for the day.
var ErrNoMeal = errors.New("no meal data to publish")

// ErrWeekend reports that publishing was skipped on a weekend.
var ErrWeekend = errors.New("weekend, nothing to publish")

// originLabels matches the bracketed origin labels appended to dish
// names in the upstream data, e.g. "[국내산]".
var originLabels = regexp.MustCompile(`\[[^\]]*\]`)

// Publisher pushes the daily menu out through OneSignal and the school
// Facebook page.
type Publisher struct {
	source mealdata.Source
	http   *http.Client
	logger *zap.Logger
	now    func() time.Time

	oneSignalAppID  string
	oneSignalAPIKey string
	fbPageID        string
	fbAccessToken   string
}

type PublisherConfig struct {
	OneSignalAppID  string
	OneSignalAPIKey string
	FacebookPageID  string
	FacebookToken   string
}

func NewPublisher(source mealdata.Source, cfg PublisherConfig, logger *zap.Logger) *Publisher {
	return &Publisher{
		source:          source,
		http:            &http.Client{Timeout: 10 * time.Second},
		logger:          logger,
		now:             time.Now,
		oneSignalAppID:  cfg.OneSignalAppID,
		oneSignalAPIKey: cfg.OneSignalAPIKey,
		fbPageID:        cfg.FacebookPageID,
		fbAccessToken:   cfg.FacebookToken,
	}
}

// todayMenu fetches today's meal and renders it as plain text with the
// origin labels and meal-of-the-day marker stripped.
func (p *Publisher) todayMenu(ctx context.Context) (date string, menu string, err error) {
	now := p.now()
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return "", "", ErrWeekend
	}
	meal, err := p.source.Meal(ctx, now)
	if err != nil {
		return "", "", err
	}
	if meal == nil || !meal.HasMenu() {
		return "", "", ErrNoMeal
	}
	lines := make([]string, 0, len(meal.Menu))
	for _, dish := range meal.Menu {
		lines = append(lines, dish.Name)
	}
	menu = strings.Join(lines, "\n")
	menu = originLabels.ReplaceAllString(menu, "")
	menu = strings.ReplaceAll(menu, "⭐", "")
	return now.Format("2006-01-02"), menu, nil
}

// PushNotification sends today's menu to all OneSignal subscribers.
func (p *Publisher) PushNotification(ctx context.Context, title, linkURL string) error {
	date, menu, err := p.todayMenu(ctx)
	if err != nil {
		return err
	}

	body := map[string]any{
		"app_id":            p.oneSignalAppID,
		"headings":          map[string]string{"en": title},
		"contents":          map[string]string{"en": date + " 급식:\n" + menu},
		"url":               linkURL,
		"included_segments": []string{"All"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oneSignalEndpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build notification request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+p.oneSignalAPIKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send notification")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("onesignal returned status %d", resp.StatusCode)
	}

	p.logger.Info("push notification sent", zap.String("date", date))
	return nil
}

// PublishToFacebook posts today's menu to the school page feed.
func (p *Publisher) PublishToFacebook(ctx context.Context) error {
	date, menu, err := p.todayMenu(ctx)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("message", fmt.Sprintf("%s 급식:\n\n%s", date, menu))
	form.Set("access_token", p.fbAccessToken)

	endpoint := fmt.Sprintf("%s/%s/feed", facebookGraphBase, p.fbPageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "build page request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "publish to page")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("facebook graph returned status %d", resp.StatusCode)
	}

	p.logger.Info("menu published to facebook page", zap.String("date", date))
	return nil
}
