// Package planner wires the travel client together: credential store,
// transport, session, the three search kinds and the itinerary manager.
package planner

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/triptrop/client/internal/auth"
	errx "github.com/triptrop/client/internal/core/error"
	"github.com/triptrop/client/internal/itinerary"
	"github.com/triptrop/client/internal/search"
	"github.com/triptrop/client/internal/transport"
	logx "github.com/triptrop/client/pkg/logger"
	pkgredis "github.com/triptrop/client/pkg/redis"
	"github.com/triptrop/client/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// Planner is the client facade. Its fields are safe for concurrent use.
type Planner struct {
	Session     *auth.Session
	Flights     *search.Flights
	Hotels      *search.Hotels
	Experiences *search.Experiences
	Itineraries *itinerary.Manager

	closers []func() error
}

type options struct {
	transport transport.Transport
	store     auth.Store
	redis     redis.Cmdable
}

// Option customises New.
type Option func(*options)

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithStore replaces the configured credential store.
func WithStore(s auth.Store) Option {
	return func(o *options) { o.store = s }
}

// WithRedis uses rdb for the redis credential store instead of dialing
// Config.Redis.
func WithRedis(rdb redis.Cmdable) Option {
	return func(o *options) { o.redis = rdb }
}

// New builds a Planner from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Planner, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	p := &Planner{}
	store, err := p.credentialStore(ctx, cfg, o)
	if err != nil {
		return nil, err
	}

	t := o.transport
	if t == nil {
		h, err := transport.NewHTTP(cfg.Transport, store)
		if err != nil {
			p.Close()
			return nil, err
		}
		t = h
	}

	v := validator.New()
	p.Session = auth.NewSession(t, store, cfg.Auth, cfg.Transport.URL("/auth/login"))
	p.Flights = search.NewFlights(t, v, cfg.Search)
	p.Hotels = search.NewHotels(t, v, cfg.Search)
	p.Experiences = search.NewExperiences(t, v, cfg.Search)
	p.Itineraries = itinerary.NewManager(t, v)

	p.observe(
		p.Session.Subscribe(failureLogger[*auth.User]("session")),
		p.Flights.Subscribe(failureLogger[[]search.Flight]("flights")),
		p.Hotels.Subscribe(failureLogger[[]search.Hotel]("hotels")),
		p.Experiences.Subscribe(failureLogger[[]search.Experience]("experiences")),
		p.Itineraries.Subscribe(failureLogger[itinerary.Cache]("itineraries")),
	)

	logx.Info().
		Str("env", cfg.Env.String()).
		Str("store", storeName(cfg)).
		Msg("planner ready")
	return p, nil
}

func (p *Planner) credentialStore(ctx context.Context, cfg Config, o *options) (auth.Store, error) {
	if o.store != nil {
		return o.store, nil
	}
	switch storeName(cfg) {
	case StoreMemory:
		return auth.NewMemoryStore(), nil
	case StoreRedis:
		rdb := o.redis
		if rdb == nil {
			client, err := cfg.Redis.New(ctx)
			if errors.Is(err, pkgredis.ErrNoURL) {
				return nil, errx.Validation("REDIS_URL is required for the redis credential store")
			}
			if err != nil {
				return nil, errx.WrapRedis(err)
			}
			p.closers = append(p.closers, client.Close)
			rdb = client
		}
		return auth.NewRedisStore(rdb, cfg.Auth.Profile), nil
	default:
		return nil, errx.Validation("unknown credential store: " + cfg.Auth.Store)
	}
}

func storeName(cfg Config) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Auth.Store))
	if name == "" {
		return StoreMemory
	}
	return name
}

func (p *Planner) observe(cancels ...func()) {
	for _, cancel := range cancels {
		p.closers = append(p.closers, func() error {
			cancel()
			return nil
		})
	}
}

// SignIn stores token and loads the user it belongs to.
func (p *Planner) SignIn(ctx context.Context, token string) (*auth.User, error) {
	return p.Session.SignIn(ctx, token)
}

// Refresh reloads the signed-in user and the itinerary collection
// concurrently. One failing does not cancel the other; the first failure is
// returned and each resource records its own.
func (p *Planner) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := p.Session.Me(ctx)
		return err
	})
	g.Go(func() error {
		_, err := p.Itineraries.List(ctx)
		return err
	})
	return g.Wait()
}

// Loading reports whether any resource kind has a request in flight.
func (p *Planner) Loading() bool {
	return p.Session.State().Loading() ||
		p.Flights.State().Loading() ||
		p.Hotels.State().Loading() ||
		p.Experiences.State().Loading() ||
		p.Itineraries.State().Loading()
}

// Close drops subscriptions and releases the redis client when New dialed it.
func (p *Planner) Close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}
