package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/mealdata"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/models"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

type fakeStore struct {
	prefs       map[string]*models.UserPreference
	modes       map[string]models.AllergyDisplayMode
	getErr      error
	upsertCalls []struct{ Grade, ClassNumber int }
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prefs: map[string]*models.UserPreference{},
		modes: map[string]models.AllergyDisplayMode{},
	}
}

func (f *fakeStore) Get(_ context.Context, userKey string) (*models.UserPreference, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.prefs[userKey], nil
}

func (f *fakeStore) Upsert(_ context.Context, userKey string, grade, classNumber int) (service.UpsertOutcome, error) {
	f.upsertCalls = append(f.upsertCalls, struct{ Grade, ClassNumber int }{grade, classNumber})
	outcome := service.OutcomeRegistered
	if f.prefs[userKey] != nil {
		outcome = service.OutcomeUpdated
	}
	f.prefs[userKey] = &models.UserPreference{UserKey: userKey, Grade: grade, ClassNumber: classNumber}
	return outcome, nil
}

func (f *fakeStore) AllergyDisplayMode(_ context.Context, userKey string) (models.AllergyDisplayMode, error) {
	if mode, ok := f.modes[userKey]; ok {
		return mode, nil
	}
	return models.AllergyDisplayNone, nil
}

type fakeSource struct {
	meal        *mealdata.MealRecord
	mealErr     error
	schedule    string
	scheduleErr error
	entries     []mealdata.ScheduleEntry
	rangeErr    error
	rangeStart  time.Time
	rangeEnd    time.Time
	timetable   string
	ttErr       error
	wtemp       string
	wtempErr    error
	weather     string
	weatherErr  error
}

func (f *fakeSource) Meal(context.Context, time.Time) (*mealdata.MealRecord, error) {
	return f.meal, f.mealErr
}

func (f *fakeSource) Schedule(context.Context, time.Time) (string, error) {
	return f.schedule, f.scheduleErr
}

func (f *fakeSource) ScheduleRange(_ context.Context, start, end time.Time) ([]mealdata.ScheduleEntry, error) {
	f.rangeStart, f.rangeEnd = start, end
	return f.entries, f.rangeErr
}

func (f *fakeSource) Timetable(context.Context, int, int, time.Time) (string, error) {
	return f.timetable, f.ttErr
}

func (f *fakeSource) WaterTemperature(context.Context) (string, error) {
	return f.wtemp, f.wtempErr
}

func (f *fakeSource) Weather(context.Context, string) (string, error) {
	return f.weather, f.weatherErr
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) IssueToken(string, string, []string, string) (string, error) {
	return f.token, f.err
}

func newTestRouter(store UserStore, source mealdata.Source) *Router {
	return NewRouter(store, source, &fakeTokens{token: "tok"}, zap.NewNop(), Config{
		SchoolName:      "흥덕고",
		SettingsBaseURL: "https://example.com/settings/",
		BriefingTimeout: time.Second,
	})
}

// texts flattens the plain-text outputs for assertions.
func texts(resp Response) []string {
	out := make([]string, 0, len(resp.Outputs))
	for _, o := range resp.Outputs {
		if o.Card == nil {
			out = append(out, o.Text)
		}
	}
	return out
}
