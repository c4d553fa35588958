package itinerary

import (
	"encoding/json"

	"github.com/samber/lo"
	"github.com/triptrop/client/internal/content"
)

// Budget is the spending level of a generated trip.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// Itinerary is a trip plan owned by the remote authority. Attached data
// blobs stay raw so updates round-trip content the client does not model.
type Itinerary struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id,omitempty"`
	Title           string          `json:"title"`
	Destination     string          `json:"destination"`
	Description     *string         `json:"description,omitempty"`
	StartDate       *string         `json:"start_date,omitempty"`
	EndDate         *string         `json:"end_date,omitempty"`
	AIContent       json.RawMessage `json:"ai_content,omitempty"`
	FlightsData     json.RawMessage `json:"flights_data,omitempty"`
	HotelsData      json.RawMessage `json:"hotels_data,omitempty"`
	ExperiencesData json.RawMessage `json:"experiences_data,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"`
	UpdatedAt       *string         `json:"updated_at,omitempty"`
}

// Content normalises the itinerary's AI content for rendering.
func (it Itinerary) Content() (content.Content, error) {
	return content.NormalizeJSON(it.AIContent)
}

// Draft is the body of POST /itineraries.
type Draft struct {
	Title           string          `json:"title" validate:"required"`
	Destination     string          `json:"destination" validate:"required"`
	Description     *string         `json:"description,omitempty"`
	StartDate       *string         `json:"start_date,omitempty"`
	EndDate         *string         `json:"end_date,omitempty"`
	AIContent       json.RawMessage `json:"ai_content,omitempty"`
	FlightsData     json.RawMessage `json:"flights_data,omitempty"`
	HotelsData      json.RawMessage `json:"hotels_data,omitempty"`
	ExperiencesData json.RawMessage `json:"experiences_data,omitempty"`
}

// DraftFrom turns a (typically generated) itinerary into a create request.
func DraftFrom(it Itinerary) Draft {
	return Draft{
		Title:           it.Title,
		Destination:     it.Destination,
		Description:     it.Description,
		StartDate:       it.StartDate,
		EndDate:         it.EndDate,
		AIContent:       it.AIContent,
		FlightsData:     it.FlightsData,
		HotelsData:      it.HotelsData,
		ExperiencesData: it.ExperiencesData,
	}
}

// Patch is the body of PUT /itineraries/{id}. Only set fields are sent.
type Patch struct {
	Title           *string         `json:"title,omitempty"`
	Destination     *string         `json:"destination,omitempty"`
	Description     *string         `json:"description,omitempty"`
	StartDate       *string         `json:"start_date,omitempty"`
	EndDate         *string         `json:"end_date,omitempty"`
	AIContent       json.RawMessage `json:"ai_content,omitempty"`
	FlightsData     json.RawMessage `json:"flights_data,omitempty"`
	HotelsData      json.RawMessage `json:"hotels_data,omitempty"`
	ExperiencesData json.RawMessage `json:"experiences_data,omitempty"`
}

// Preferences steer itinerary generation and recommendations. Extra keys
// are sent alongside the named ones.
type Preferences struct {
	Activities    []string
	FoodType      string
	Accommodation string
	Extra         map[string]any
}

// MarshalJSON flattens the named fields and Extra into one object.
func (p Preferences) MarshalJSON() ([]byte, error) {
	known := map[string]any{}
	if len(p.Activities) > 0 {
		known["activities"] = p.Activities
	}
	if p.FoodType != "" {
		known["food_type"] = p.FoodType
	}
	if p.Accommodation != "" {
		known["accommodation"] = p.Accommodation
	}
	return json.Marshal(lo.Assign(p.Extra, known))
}

// GenerateRequest is the body of POST /itineraries/generate.
type GenerateRequest struct {
	Destination string       `json:"destination" validate:"required"`
	StartDate   string       `json:"start_date" validate:"required"`
	EndDate     string       `json:"end_date" validate:"required"`
	Budget      Budget       `json:"budget,omitempty" validate:"omitempty,oneof=low medium high"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Recommendation is one AI suggested destination. Its keys are whatever
// the model produced.
type Recommendation map[string]any

// Text returns the value under key rendered as text, "" when absent.
func (r Recommendation) Text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// RawResponse returns the unstructured model answer when the service could
// not extract structured recommendations.
func (r Recommendation) RawResponse() (string, bool) {
	s, ok := r["raw_response"].(string)
	return s, ok
}

// Recommendations is the reply of POST /itineraries/recommendations.
type Recommendations struct {
	Items []Recommendation `json:"recommendations"`
	Error string           `json:"error,omitempty"`
}
