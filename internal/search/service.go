// Package search exposes the flight, hotel and experience search services.
// All three are the same Service specialised with a query and a result type.
package search

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"strconv"

	errx "github.com/triptrop/client/internal/core/error"
	"github.com/triptrop/client/internal/resource"
	"github.com/triptrop/client/internal/transport"
	logx "github.com/triptrop/client/pkg/logger"
	"github.com/triptrop/client/pkg/validator"
)

// Config holds settings shared by the search services.
type Config struct {
	HistoryLimit int `envconfig:"SEARCH_HISTORY_LIMIT" default:"10"`
}

// Query is a search query that knows the server-side defaults for its fields.
type Query[Q any] interface {
	WithDefaults() Q
}

// Service searches one resource kind and keeps the last result list.
type Service[Q Query[Q], R any] struct {
	segment      string // URL segment and response envelope key, e.g. "flights"
	transport    transport.Transport
	validate     *validator.Validator
	historyLimit int
	ctrl         *resource.Controller[[]R]
}

type (
	Flights     = Service[FlightQuery, Flight]
	Hotels      = Service[HotelQuery, Hotel]
	Experiences = Service[ExperienceQuery, Experience]
)

// NewFlights builds the flight search service.
func NewFlights(t transport.Transport, v *validator.Validator, cfg Config) *Flights {
	return newService[FlightQuery, Flight]("flights", t, v, cfg)
}

// NewHotels builds the hotel search service.
func NewHotels(t transport.Transport, v *validator.Validator, cfg Config) *Hotels {
	return newService[HotelQuery, Hotel]("hotels", t, v, cfg)
}

// NewExperiences builds the experience search service.
func NewExperiences(t transport.Transport, v *validator.Validator, cfg Config) *Experiences {
	return newService[ExperienceQuery, Experience]("experiences", t, v, cfg)
}

func newService[Q Query[Q], R any](segment string, t transport.Transport, v *validator.Validator, cfg Config) *Service[Q, R] {
	if v == nil {
		v = validator.New()
	}
	return &Service[Q, R]{
		segment:      segment,
		transport:    t,
		validate:     v,
		historyLimit: cfg.HistoryLimit,
		ctrl:         resource.New(segment, []R{}),
	}
}

// Search sends q to the remote search endpoint and stores the returned list,
// in the order received, as the result data. A failed search keeps the
// previous list visible.
func (s *Service[Q, R]) Search(ctx context.Context, q Q) ([]R, error) {
	return s.ctrl.Run(ctx, func(ctx context.Context) ([]R, error) {
		q := q.WithDefaults()
		if err := s.validate.Struct(q); err != nil {
			return nil, err
		}
		envelope, err := transport.Call[map[string]json.RawMessage](ctx, s.transport,
			transport.Post("/"+s.segment+"/search", q))
		if err != nil {
			return nil, err
		}
		items := []R{}
		if raw, ok := envelope[s.segment]; ok && string(raw) != "null" {
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, errx.Decode(err).WithOp(s.segment + ".search")
			}
		}
		logx.Debug().Str("resource", s.segment).Int("results", len(items)).Msg("search completed")
		return items, nil
	})
}

// History fetches the user's past searches of this kind. It reports through
// the controller's status and error but leaves the result list untouched.
func (s *Service[Q, R]) History(ctx context.Context) ([]HistoryEntry, error) {
	return resource.Track(ctx, s.ctrl, func(ctx context.Context) ([]HistoryEntry, error) {
		var query url.Values
		if s.historyLimit > 0 {
			query = url.Values{"limit": {strconv.Itoa(s.historyLimit)}}
		}
		entries, err := transport.Call[[]HistoryEntry](ctx, s.transport,
			transport.Get("/"+s.segment+"/history", query))
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []HistoryEntry{}
		}
		return entries, nil
	})
}

// State returns the current status, error and result list. The list shares
// memory with the service and must be treated as read-only.
func (s *Service[Q, R]) State() resource.State[[]R] {
	return s.ctrl.Snapshot()
}

// Results returns a copy of the last applied result list.
func (s *Service[Q, R]) Results() []R {
	return slices.Clone(s.ctrl.Snapshot().Data)
}

// Clear empties the result list; a failed search never does this on its own.
func (s *Service[Q, R]) Clear() {
	s.ctrl.Update(func([]R) []R { return []R{} })
}

// Subscribe registers fn for state changes.
func (s *Service[Q, R]) Subscribe(fn func(resource.State[[]R])) func() {
	return s.ctrl.Subscribe(fn)
}
