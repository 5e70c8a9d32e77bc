package chat

import "strings"

// Intent is the enumerated tag naming the user's requested action. It is
// assigned exactly once, at the transport boundary, from the platform's
// intent display name.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentBriefing
	IntentMeal
	IntentTimetable
	IntentSchedule
	IntentWaterTemperature
	IntentUserSettings
	IntentModifyUserInfo
)

// intentMarkers maps intent names to tags by ordered containment. The order
// is load-bearing: platform intent names are free-form ("GetMeal",
// "Meal_Today", ...) and the first matching marker wins, so reordering would
// change routing for names containing more than one marker.
var intentMarkers = []struct {
	marker string
	intent Intent
}{
	{"Briefing", IntentBriefing},
	{"Meal", IntentMeal},
	{"Timetable", IntentTimetable},
	{"Schedule", IntentSchedule},
	{"WaterTemperature", IntentWaterTemperature},
	{"UserSettings", IntentUserSettings},
	{"ModifyUserInfo", IntentModifyUserInfo},
}

// ParseIntent resolves a platform intent display name to its tag.
func ParseIntent(name string) Intent {
	for _, m := range intentMarkers {
		if strings.Contains(name, m.marker) {
			return m.intent
		}
	}
	return IntentUnknown
}

func (i Intent) String() string {
	switch i {
	case IntentBriefing:
		return "Briefing"
	case IntentMeal:
		return "Meal"
	case IntentTimetable:
		return "Timetable"
	case IntentSchedule:
		return "Schedule"
	case IntentWaterTemperature:
		return "WaterTemperature"
	case IntentUserSettings:
		return "UserSettings"
	case IntentModifyUserInfo:
		return "ModifyUserInfo"
	default:
		return "Unknown"
	}
}
