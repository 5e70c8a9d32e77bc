// Package chat implements the platform-neutral core of the bot: intent
// dispatch, the domain query handlers and the daily-briefing aggregator.
// Platform adapters under internal/api translate its responses into each
// platform's wire schema.
package chat

import "time"

// Platform identifies the chat platform a request came from.
type Platform string

const (
	PlatformKakao      Platform = "KT"
	PlatformDialogflow Platform = "Dialogflow"
)

// ButtonType distinguishes weblink buttons from canned-reply buttons.
type ButtonType string

const (
	ButtonWeb     ButtonType = "web"
	ButtonMessage ButtonType = "message"
)

// Button is a card action. Web buttons carry a URL; message buttons send
// Postback (or the title when Postback is empty) back as a user utterance.
type Button struct {
	Type     ButtonType
	Title    string
	URL      string
	Postback string
}

// Card is a structured output item. Its semantics must survive translation
// into every platform schema without losing button or image information.
type Card struct {
	Title    string
	Body     string
	ImageURL string
	Buttons  []Button
}

// Output is one presentation item: plain text or a card, never both.
type Output struct {
	Text string
	Card *Card
}

// Response is the uniform handler output. Outputs preserve presentation
// order across platforms. Voice is a voice-assistant-only summary, present
// only for the briefing flow.
type Response struct {
	Outputs []Output
	Voice   string
}

// Text wraps a plain string as an output item.
func Text(s string) Output {
	return Output{Text: s}
}

// CardOutput wraps a card as an output item.
func CardOutput(c Card) Output {
	return Output{Card: &c}
}

func textResponse(msgs ...string) Response {
	outputs := make([]Output, 0, len(msgs))
	for _, m := range msgs {
		outputs = append(outputs, Text(m))
	}
	return Response{Outputs: outputs}
}

// DateRange is an inclusive date interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Params is the normalized parameter bag extracted at the transport boundary.
// Date and Range are mutually exclusive; Grade and Class stay raw strings so
// handlers can answer non-numeric input with a validation message.
type Params struct {
	Date  *time.Time
	Range *DateRange
	Grade string
	Class string
}

// Request is a platform-normalized chat request.
type Request struct {
	Platform  Platform
	UserKey   string
	Intent    Intent
	Params    Params
	RequestID string
}

var weekdaysKo = [7]string{"일", "월", "화", "수", "목", "금", "토"}

func weekdayKo(t time.Time) string {
	return weekdaysKo[t.Weekday()]
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
