// Package transporttest provides a scripted Transport for tests.
package transporttest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	errx "github.com/triptrop/client/internal/core/error"
	"github.com/triptrop/client/internal/transport"
)

// Handler answers a single request.
type Handler func(ctx context.Context, req transport.Request) (*transport.Response, error)

// Fake routes requests by "METHOD path" to queued handlers. Each call pops the
// head of the queue; the final handler keeps answering once the queue drains.
type Fake struct {
	mu     sync.Mutex
	routes map[string][]Handler
	calls  []transport.Request
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{routes: make(map[string][]Handler)}
}

// On queues h for method and path.
func (f *Fake) On(method, path string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.routes[key] = append(f.routes[key], h)
	return f
}

// Calls returns every request seen so far, in arrival order.
func (f *Fake) Calls() []transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]transport.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many requests hit method and path.
func (f *Fake) CallCount(method, path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Do implements transport.Transport.
func (f *Fake) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	key := req.Method + " " + req.Path
	queue := f.routes[key]
	var h Handler
	switch len(queue) {
	case 0:
	case 1:
		h = queue[0]
	default:
		h = queue[0]
		f.routes[key] = queue[1:]
	}
	f.mu.Unlock()

	if h == nil {
		return nil, errx.FromStatus(http.StatusNotFound, "no route for "+key)
	}
	return h(ctx, req)
}

// JSON answers 200 with v encoded as the body.
func JSON(v any) Handler {
	return func(context.Context, transport.Request) (*transport.Response, error) {
		return encode(v)
	}
}

// Raw answers 200 with a verbatim body.
func Raw(body string) Handler {
	return func(context.Context, transport.Request) (*transport.Response, error) {
		return &transport.Response{Status: http.StatusOK, Data: json.RawMessage(body)}, nil
	}
}

// Status answers with the classified failure for status.
func Status(status int, detail string) Handler {
	return Fail(errx.FromStatus(status, detail))
}

// Fail answers with err.
func Fail(err error) Handler {
	return func(context.Context, transport.Request) (*transport.Response, error) {
		return nil, err
	}
}

func encode(v any) (*transport.Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &transport.Response{Status: http.StatusOK, Data: b}, nil
}

type outcome struct {
	resp *transport.Response
	err  error
}

// Gate holds a request open until the test decides how it resolves.
type Gate struct {
	started chan transport.Request
	release chan outcome
}

// NewGate returns a gate; register Gate.Handler with Fake.On.
func NewGate() *Gate {
	return &Gate{
		started: make(chan transport.Request, 1),
		release: make(chan outcome, 1),
	}
}

// Handler blocks until Respond or Reject is called, or ctx is done.
func (g *Gate) Handler() Handler {
	return func(ctx context.Context, req transport.Request) (*transport.Response, error) {
		g.started <- req
		select {
		case o := <-g.release:
			return o.resp, o.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Started yields the request once it reached the transport.
func (g *Gate) Started() <-chan transport.Request {
	return g.started
}

// Respond resolves the held request with 200 and v as the body.
func (g *Gate) Respond(v any) {
	resp, err := encode(v)
	g.release <- outcome{resp: resp, err: err}
}

// Reject resolves the held request with err.
func (g *Gate) Reject(err error) {
	g.release <- outcome{err: err}
}

var _ transport.Transport = (*Fake)(nil)
