package search

import (
	"encoding/json"
	"fmt"
)

// CabinClass is the seating class of a flight query.
type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// Category narrows an experience search; empty means all categories.
type Category string

const (
	CategoryAll       Category = ""
	CategoryTours     Category = "tours"
	CategoryFood      Category = "food"
	CategoryCulture   Category = "culture"
	CategoryAdventure Category = "adventure"
	CategoryNature    Category = "nature"
)

// FlightQuery is the body of POST /flights/search.
type FlightQuery struct {
	Origin        string     `json:"origin" validate:"required"`
	Destination   string     `json:"destination" validate:"required"`
	DepartureDate string     `json:"departure_date" validate:"required"`
	ReturnDate    string     `json:"return_date,omitempty"`
	Passengers    int        `json:"passengers" validate:"min=1"`
	CabinClass    CabinClass `json:"cabin_class" validate:"oneof=economy premium_economy business first"`
}

// WithDefaults fills the fields the server would default: one passenger in economy.
func (q FlightQuery) WithDefaults() FlightQuery {
	if q.Passengers == 0 {
		q.Passengers = 1
	}
	if q.CabinClass == "" {
		q.CabinClass = CabinEconomy
	}
	return q
}

// HotelQuery is the body of POST /hotels/search.
type HotelQuery struct {
	Destination string `json:"destination" validate:"required"`
	CheckIn     string `json:"check_in" validate:"required"`
	CheckOut    string `json:"check_out" validate:"required"`
	Guests      int    `json:"guests" validate:"min=1"`
	Rooms       int    `json:"rooms" validate:"min=1"`
}

// WithDefaults fills one guest and one room when unset.
func (q HotelQuery) WithDefaults() HotelQuery {
	if q.Guests == 0 {
		q.Guests = 1
	}
	if q.Rooms == 0 {
		q.Rooms = 1
	}
	return q
}

// ExperienceQuery is the body of POST /experiences/search.
type ExperienceQuery struct {
	Destination string   `json:"destination" validate:"required"`
	Date        string   `json:"date,omitempty"`
	Category    Category `json:"category,omitempty" validate:"omitempty,oneof=tours food culture adventure nature"`
}

// WithDefaults returns q unchanged; experience queries have no defaults.
func (q ExperienceQuery) WithDefaults() ExperienceQuery { return q }

// Flight is one ranked flight offer. Fields pass through as received.
type Flight struct {
	ID            string     `json:"id"`
	Airline       string     `json:"airline"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureTime string     `json:"departure_time"`
	ArrivalTime   string     `json:"arrival_time"`
	Duration      string     `json:"duration"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	Stops         int        `json:"stops"`
	CabinClass    CabinClass `json:"cabin_class"`
}

// Direct reports whether the flight has no stops.
func (f Flight) Direct() bool { return f.Stops == 0 }

// Hotel is one ranked hotel offer.
type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Destination   string   `json:"destination"`
	Rating        float64  `json:"rating"`
	Stars         int      `json:"stars"`
	PricePerNight float64  `json:"price_per_night"`
	Currency      string   `json:"currency"`
	Amenities     []string `json:"amenities"`
	ImageURL      string   `json:"image_url"`
	CheckIn       string   `json:"check_in"`
	CheckOut      string   `json:"check_out"`
}

// Experience is one ranked activity offer.
type Experience struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Destination  string   `json:"destination"`
	Category     Category `json:"category"`
	Rating       float64  `json:"rating"`
	ReviewsCount int      `json:"reviews_count"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"image_url"`
}

// HistoryEntry is one past search recorded by the server.
type HistoryEntry struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	SearchType   string          `json:"search_type"`
	SearchParams json.RawMessage `json:"search_params"`
	Results      json.RawMessage `json:"results,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

// DecodeParams decodes the recorded query into dst, e.g. a *FlightQuery.
func (h HistoryEntry) DecodeParams(dst any) error {
	if len(h.SearchParams) == 0 {
		return fmt.Errorf("history %s: no search params", h.ID)
	}
	return json.Unmarshal(h.SearchParams, dst)
}
