package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errx "github.com/triptrop/client/internal/core/error"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token(context.Context) (string, error) { return s.token, s.err }

func newTestTransport(t *testing.T, h http.HandlerFunc, tokens TokenSource) *HTTP {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tr, err := NewHTTP(Config{BaseURL: srv.URL + "/", Prefix: "/api/v1", Timeout: 5 * time.Second}, tokens)
	require.NoError(t, err)
	return tr
}

func TestHTTPAttachesBearerAndDecodes(t *testing.T) {
	var got *http.Request
	var body map[string]any
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flights":[{"id":"FL001","price":299.99,"stops":0}]}`))
	}, staticToken{token: "jwt-abc"})

	out, err := Call[struct {
		Flights []struct {
			ID    string  `json:"id"`
			Price float64 `json:"price"`
			Stops int     `json:"stops"`
		} `json:"flights"`
	}](context.Background(), tr, Post("/flights/search", map[string]any{"origin": "JFK"}))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/v1/flights/search", got.URL.Path)
	assert.Equal(t, "Bearer jwt-abc", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))
	assert.Equal(t, "JFK", body["origin"])
	require.Len(t, out.Flights, 1)
	assert.Equal(t, 299.99, out.Flights[0].Price)
}

func TestHTTPWithoutTokenStillCalls(t *testing.T) {
	var auth string
	var query url.Values
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		query = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}, staticToken{})

	_, err := tr.Do(context.Background(), Get("/flights/history", url.Values{"limit": {"10"}}))
	require.NoError(t, err)
	assert.Empty(t, auth)
	assert.Equal(t, "10", query.Get("limit"))
}

func TestHTTPTokenLookupFailureIsNotFatal(t *testing.T) {
	var auth string
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, staticToken{err: errors.New("store down")})

	resp, err := tr.Do(context.Background(), Delete("/itineraries/1"))
	require.NoError(t, err)
	assert.Empty(t, auth)
	assert.JSONEq(t, `null`, string(resp.Data))
}

func TestHTTPClassifiesStatus(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   errx.Kind
		msg    string
	}{
		{http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`, errx.KindAuth, "Could not validate credentials"},
		{http.StatusNotFound, `{"detail":"Itinerary not found"}`, errx.KindNotFound, "Itinerary not found"},
		{http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","origin"],"msg":"field required"}]}`, errx.KindValidation, "origin: field required"},
		{http.StatusInternalServerError, `oops`, errx.KindServer, errx.ServerErrorMessage},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, nil)

			_, err := tr.Do(context.Background(), Get("/itineraries/1", nil))
			var e *errx.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.status, e.Status)
			assert.Equal(t, tc.msg, e.Message)
		})
	}
}

func TestHTTPNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	tr, err := NewHTTP(Config{BaseURL: srv.URL, Timeout: time.Second}, nil)
	require.NoError(t, err)
	srv.Close()

	_, err = tr.Do(context.Background(), Get("/auth/me", nil))
	assert.True(t, errx.IsKind(err, errx.KindNetwork))
}

func TestCallMalformedBodyIsServerFailure(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"flights": "nope"`))
	}, nil)

	_, err := Call[map[string][]string](context.Background(), tr, Get("/flights/history", nil))
	assert.True(t, errx.IsKind(err, errx.KindServer))
}

func TestNewHTTPRequiresBaseURL(t *testing.T) {
	_, err := NewHTTP(Config{}, nil)
	assert.Error(t, err)
}

func TestURLJoinsPrefix(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:8000/", Prefix: "/api/v1/"}
	assert.Equal(t, "http://localhost:8000/api/v1/auth/login", cfg.URL("/auth/login"))

	tr, err := NewHTTP(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.URL("auth/login"), tr.URL("/auth/login"))

	bare := Config{BaseURL: "http://localhost:8000"}
	assert.Equal(t, "http://localhost:8000/auth/me", bare.URL("auth/me"))
}

func TestHTTPRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	tr, err := NewHTTP(Config{BaseURL: srv.URL, Timeout: time.Second, RateLimit: 0.001, RateBurst: 1}, nil)
	require.NoError(t, err)

	_, err = tr.Do(context.Background(), Get("/flights/history", nil))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = tr.Do(ctx, Get("/flights/history", nil))
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindNetwork))
}
