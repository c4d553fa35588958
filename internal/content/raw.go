package content

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Raw is an itinerary generation payload as the AI service produced it.
// Field types are loose: the model is asked for a JSON shape but
// regularly answers with numbers where strings were requested and the reverse.
type Raw struct {
	Overview           Text     `json:"overview"`
	Days               RawDays  `json:"days"`
	TotalEstimatedCost Text     `json:"total_estimated_cost"`
	RawResponse        Text     `json:"raw_response"`
	PackingSuggestions []Text   `json:"packing_suggestions"`
	LocalTips          []Text   `json:"local_tips"`
	Error              Text     `json:"error"`
}

// RawDay is one entry of Raw.Days.
type RawDay struct {
	Day        Text          `json:"day"`
	Date       Text          `json:"date"`
	Activities RawActivities `json:"activities"`
	Meals      Meals         `json:"meals"`
	Tips       Text          `json:"tips"`
}

// RawActivity is one entry of RawDay.Activities.
type RawActivity struct {
	Time        Text `json:"time"`
	Title       Text `json:"title"`
	Description Text `json:"description"`
	Duration    Text `json:"duration"`
	Cost        Text `json:"cost"`
	Location    Text `json:"location"`
}

// Parse decodes a raw ai_content document. Empty input and JSON null yield a
// zero Raw.
func Parse(b []byte) (Raw, error) {
	var r Raw
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return r, nil
	}
	err := json.Unmarshal(b, &r)
	return r, err
}

// Text is a scalar that tolerates strings, numbers, booleans and lists of
// those. Lists are joined with ", "; null and objects decode to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '[':
		var items []Text
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				parts = append(parts, string(it))
			}
		}
		*t = Text(strings.Join(parts, ", "))
	case '{', 'n':
		*t = ""
	case 't', 'f':
		v, err := strconv.ParseBool(string(b))
		if err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(v))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	}
	return nil
}

// String returns the text with surrounding whitespace removed.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Meals maps a meal name (breakfast, lunch, dinner) to a suggestion. Any
// shape other than an object decodes to nil.
type Meals map[string]Text

// UnmarshalJSON implements json.Unmarshaler.
func (m *Meals) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		*m = nil
		return nil
	}
	var out map[string]Text
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// RawDays is Raw.Days. Anything but an array decodes to nil, so a model that
// answers "days" with prose still falls back to the raw text.
type RawDays []RawDay

// UnmarshalJSON implements json.Unmarshaler.
func (d *RawDays) UnmarshalJSON(b []byte) error {
	return looseList((*[]RawDay)(d), b)
}

// RawActivities is RawDay.Activities, tolerant like RawDays.
type RawActivities []RawActivity

// UnmarshalJSON implements json.Unmarshaler.
func (a *RawActivities) UnmarshalJSON(b []byte) error {
	return looseList((*[]RawActivity)(a), b)
}

func looseList[E any](dst *[]E, b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*dst = nil
		return nil
	}
	var out []E
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*dst = out
	return nil
}
