package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		name string
		want Intent
	}{
		{"Briefing", IntentBriefing},
		{"GetMeal", IntentMeal},
		{"Meal_Today", IntentMeal},
		{"GetTimetable", IntentTimetable},
		{"GetSchedule", IntentSchedule},
		{"WaterTemperature", IntentWaterTemperature},
		{"UserSettings", IntentUserSettings},
		{"ModifyUserInfo", IntentModifyUserInfo},
		{"SmallTalk", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseIntent(tc.name), "intent name %q", tc.name)
	}
}

func TestParseIntentFirstMarkerWins(t *testing.T) {
	// A name containing several markers routes by marker order, not by
	// position in the name.
	assert.Equal(t, IntentBriefing, ParseIntent("MealBriefing"))
	assert.Equal(t, IntentMeal, ParseIntent("MealSchedule"))
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "Meal", IntentMeal.String())
	assert.Equal(t, "Unknown", IntentUnknown.String())
	assert.Equal(t, "Unknown", Intent(99).String())
}
