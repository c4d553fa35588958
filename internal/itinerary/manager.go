// Package itinerary manages the itinerary lifecycle against the remote
// authority: the collection cache, the single current itinerary, and the
// operations that move an itinerary from generated preview to persisted and
// deleted.
package itinerary

import (
	"context"
	"net/url"
	"slices"

	"github.com/samber/lo"
	errx "github.com/triptrop/client/internal/core/error"
	"github.com/triptrop/client/internal/resource"
	"github.com/triptrop/client/internal/transport"
	logx "github.com/triptrop/client/pkg/logger"
	"github.com/triptrop/client/pkg/validator"
)

// Cache is the client's read-through view of the user's itineraries.
type Cache struct {
	Collection []Itinerary
	Current    *Itinerary
}

// each cache is fenced on its own, so a slow list never drops a fresh fetch
const (
	laneCollection = resource.Primary
	laneCurrent    = resource.Primary + 1
)

// Manager issues itinerary operations and keeps Cache consistent with what
// the server confirmed.
type Manager struct {
	transport transport.Transport
	validate  *validator.Validator
	ctrl      *resource.Controller[Cache]
}

// NewManager builds a manager with empty caches.
func NewManager(t transport.Transport, v *validator.Validator) *Manager {
	if v == nil {
		v = validator.New()
	}
	return &Manager{
		transport: t,
		validate:  v,
		ctrl:      resource.New("itineraries", Cache{Collection: []Itinerary{}}),
	}
}

// List fetches the user's itineraries and replaces the collection wholesale.
// Current is left alone.
func (m *Manager) List(ctx context.Context) ([]Itinerary, error) {
	return resource.Mutate(ctx, m.ctrl, laneCollection, func(ctx context.Context) ([]Itinerary, error) {
		items, err := transport.Call[[]Itinerary](ctx, m.transport, transport.Get("/itineraries", nil))
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []Itinerary{}
		}
		return items, nil
	}, func(c Cache, items []Itinerary) Cache {
		c.Collection = items
		return c
	})
}

// FetchOne fetches a single itinerary and makes it current.
func (m *Manager) FetchOne(ctx context.Context, id string) (*Itinerary, error) {
	return resource.Mutate(ctx, m.ctrl, laneCurrent, func(ctx context.Context) (*Itinerary, error) {
		path, err := itemPath(id)
		if err != nil {
			return nil, err
		}
		return m.callItem(ctx, transport.Get(path, nil))
	}, setCurrent)
}

// Generate asks the AI-backed endpoint for a new itinerary and makes the
// result current. The collection is not touched: a generated itinerary is a
// preview until Create persists it.
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (*Itinerary, error) {
	return resource.Mutate(ctx, m.ctrl, laneCurrent, func(ctx context.Context) (*Itinerary, error) {
		if err := m.validate.Struct(req); err != nil {
			return nil, err
		}
		it, err := m.callItem(ctx, transport.Post("/itineraries/generate", req))
		if err != nil {
			return nil, err
		}
		logx.Info().Str("destination", req.Destination).Str("itinerary_id", it.ID).Msg("itinerary generated")
		return it, nil
	}, setCurrent)
}

// Create persists d and returns the stored itinerary. Neither cache changes;
// call List or Remember to show it in the collection.
func (m *Manager) Create(ctx context.Context, d Draft) (*Itinerary, error) {
	return resource.Track(ctx, m.ctrl, func(ctx context.Context) (*Itinerary, error) {
		if err := m.validate.Struct(d); err != nil {
			return nil, err
		}
		return m.callItem(ctx, transport.Post("/itineraries", d))
	})
}

// Update persists a partial update and returns the updated itinerary.
// Neither cache changes.
func (m *Manager) Update(ctx context.Context, id string, p Patch) (*Itinerary, error) {
	return resource.Track(ctx, m.ctrl, func(ctx context.Context) (*Itinerary, error) {
		path, err := itemPath(id)
		if err != nil {
			return nil, err
		}
		return m.callItem(ctx, transport.Put(path, p))
	})
}

// Delete removes the itinerary remotely and, only once the server confirmed
// it, drops it from the collection. On failure the collection is unchanged.
// The current slot is not cleared.
func (m *Manager) Delete(ctx context.Context, id string) error {
	_, err := resource.Mutate(ctx, m.ctrl, resource.Unfenced, func(ctx context.Context) (struct{}, error) {
		path, err := itemPath(id)
		if err != nil {
			return struct{}{}, err
		}
		_, err = m.transport.Do(ctx, transport.Delete(path))
		return struct{}{}, err
	}, func(c Cache, _ struct{}) Cache {
		c.Collection = lo.Reject(c.Collection, func(it Itinerary, _ int) bool { return it.ID == id })
		return c
	})
	return err
}

// Recommend asks for destination suggestions. It touches no cache.
func (m *Manager) Recommend(ctx context.Context, prefs Preferences, budget Budget) (*Recommendations, error) {
	return resource.Track(ctx, m.ctrl, func(ctx context.Context) (*Recommendations, error) {
		req := transport.Post("/itineraries/recommendations", prefs)
		if budget != "" {
			req.Query = url.Values{"budget": {string(budget)}}
		}
		recs, err := transport.Call[Recommendations](ctx, m.transport, req)
		if err != nil {
			return nil, err
		}
		if recs.Items == nil {
			recs.Items = []Recommendation{}
		}
		return &recs, nil
	})
}

// Remember inserts it into the collection locally, replacing an entry with
// the same id in place. Use it after Create when a List round trip is not
// wanted.
func (m *Manager) Remember(it Itinerary) {
	m.ctrl.Update(func(c Cache) Cache {
		_, idx, found := lo.FindIndexOf(c.Collection, func(x Itinerary) bool { return x.ID == it.ID })
		next := make([]Itinerary, len(c.Collection), len(c.Collection)+1)
		copy(next, c.Collection)
		if found {
			next[idx] = it
		} else {
			next = append(next, it)
		}
		c.Collection = next
		return c
	})
}

// State returns status, error and both caches. The returned data shares
// memory with the cache and must be treated as read-only.
func (m *Manager) State() resource.State[Cache] { return m.ctrl.Snapshot() }

// Collection returns a copy of the cached itinerary collection.
func (m *Manager) Collection() []Itinerary { return slices.Clone(m.ctrl.Snapshot().Data.Collection) }

// Current returns the current itinerary, nil when none.
func (m *Manager) Current() *Itinerary { return m.ctrl.Snapshot().Data.Current }

// Subscribe registers fn for state changes.
func (m *Manager) Subscribe(fn func(resource.State[Cache])) func() {
	return m.ctrl.Subscribe(fn)
}

func (m *Manager) callItem(ctx context.Context, req transport.Request) (*Itinerary, error) {
	it, err := transport.Call[*Itinerary](ctx, m.transport, req)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, errx.Decode(errEmptyBody).WithOp(req.Method + " " + req.Path)
	}
	return it, nil
}

func setCurrent(c Cache, it *Itinerary) Cache {
	c.Current = it
	return c
}

func itemPath(id string) (string, error) {
	if id == "" {
		return "", errx.Validation("itinerary id is required")
	}
	return "/itineraries/" + url.PathEscape(id), nil
}
