// Package content turns AI generated itinerary payloads into one stable,
// renderable shape: an optional overview and cost estimate plus a body that
// is either a day-by-day plan, a block of raw text, or nothing.
package content

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// TimePlaceholder is shown for activities without a time.
const TimePlaceholder = "TBD"

// Content is the normalised, render-ready itinerary content.
type Content struct {
	Overview           string
	TotalEstimatedCost string
	Body               Body
	PackingSuggestions []string
	LocalTips          []string
	// GenerationError carries the error the AI service embeds when it could
	// not produce a plan. It is informational, not a client failure.
	GenerationError string
}

// Body is one of StructuredDays, RawText or Empty.
type Body interface {
	isBody()
}

// StructuredDays is a day-by-day plan in the order the AI produced it.
type StructuredDays struct {
	Days []Day
}

// RawText is a free-form plan to be rendered preformatted.
type RawText struct {
	Text string
}

// Empty means the payload had neither days nor raw text.
type Empty struct{}

func (StructuredDays) isBody() {}
func (RawText) isBody()        {}
func (Empty) isBody()          {}

// Day is one rendered day.
type Day struct {
	Number     int
	Date       string
	Label      string
	Activities []Activity
	Meals      map[string]string
	Tips       string
}

// Activity is one rendered activity. Time is TimePlaceholder when the AI
// gave none; Text is the title, or the description when there is no title.
type Activity struct {
	Time        string
	Title       string
	Description string
	Text        string
	Duration    string
	Cost        string
	Location    string
}

// Line renders the activity as "time: text".
func (a Activity) Line() string {
	return a.Time + ": " + a.Text
}

// IsEmpty reports whether there is nothing at all to render.
func (c Content) IsEmpty() bool {
	_, empty := c.Body.(Empty)
	return empty && c.Overview == "" && c.TotalEstimatedCost == ""
}

// Normalize resolves r into Content. Structured days win over raw text; raw
// text is used only when there are no days. Overview and cost are carried
// whichever body is chosen. A payload with neither days nor raw text yields
// an Empty body, which is not an error.
func Normalize(r Raw) Content {
	c := Content{
		Overview:           r.Overview.String(),
		TotalEstimatedCost: r.TotalEstimatedCost.String(),
		PackingSuggestions: texts(r.PackingSuggestions),
		LocalTips:          texts(r.LocalTips),
		GenerationError:    r.Error.String(),
		Body:               Empty{},
	}

	switch {
	case len(r.Days) > 0:
		days := make([]Day, 0, len(r.Days))
		for i, d := range r.Days {
			days = append(days, normalizeDay(i, d))
		}
		c.Body = StructuredDays{Days: days}
	case r.RawResponse.String() != "":
		// keep the raw text byte for byte; it is rendered preformatted
		c.Body = RawText{Text: string(r.RawResponse)}
	}
	return c
}

// NormalizeJSON parses b and normalises it.
func NormalizeJSON(b []byte) (Content, error) {
	r, err := Parse(b)
	if err != nil {
		return Content{Body: Empty{}}, fmt.Errorf("parse ai content: %w", err)
	}
	return Normalize(r), nil
}

func normalizeDay(index int, d RawDay) Day {
	n, err := strconv.Atoi(d.Day.String())
	if err != nil || n <= 0 {
		n = index + 1
	}
	day := Day{
		Number:     n,
		Date:       d.Date.String(),
		Label:      fmt.Sprintf("Day %d", n),
		Activities: make([]Activity, 0, len(d.Activities)),
		Tips:       d.Tips.String(),
	}
	if day.Date != "" {
		day.Label += " - " + day.Date
	}
	for _, a := range d.Activities {
		day.Activities = append(day.Activities, normalizeActivity(a))
	}
	if len(d.Meals) > 0 {
		day.Meals = make(map[string]string, len(d.Meals))
		for k, v := range d.Meals {
			if s := v.String(); s != "" {
				day.Meals[k] = s
			}
		}
	}
	return day
}

func normalizeActivity(a RawActivity) Activity {
	out := Activity{
		Time:        a.Time.String(),
		Title:       a.Title.String(),
		Description: a.Description.String(),
		Duration:    a.Duration.String(),
		Cost:        a.Cost.String(),
		Location:    a.Location.String(),
	}
	if out.Time == "" {
		out.Time = TimePlaceholder
	}
	out.Text = out.Title
	if out.Text == "" {
		out.Text = out.Description
	}
	return out
}

func texts(in []Text) []string {
	if len(in) == 0 {
		return nil
	}
	return lo.FilterMap(in, func(t Text, _ int) (string, bool) {
		s := t.String()
		return s, s != ""
	})
}
