// Package transport is the adapter the core uses to reach the remote travel
// service. Everything above it sees only Transport, Request and Response.
package transport

import (
	"context"
	"encoding/json"
	"net/url"

	errx "github.com/triptrop/client/internal/core/error"
)

// Request describes one call against the remote authority. Path is relative
// to the configured API prefix, e.g. "/flights/search".
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a successful (2xx) reply. Data is the raw JSON body, or JSON
// null when the server sent nothing.
type Response struct {
	Status int
	Data   json.RawMessage
}

// Transport performs requests. Implementations must return a classified
// *errx.Error for every non-2xx status and network failure.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// TokenSource yields the bearer credential for the next call. An empty token
// with a nil error means the call goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Call performs req and decodes the response data into T.
func Call[T any](ctx context.Context, t Transport, req Request) (T, error) {
	var out T
	resp, err := t.Do(ctx, req)
	if err != nil {
		return out, errx.Classify(err)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return out, errx.Decode(err).WithOp(req.Method + " " + req.Path)
	}
	return out, nil
}

// Get is shorthand for a GET request.
func Get(path string, query url.Values) Request {
	return Request{Method: "GET", Path: path, Query: query}
}

// Post is shorthand for a POST request with a JSON body.
func Post(path string, body any) Request {
	return Request{Method: "POST", Path: path, Body: body}
}

// Put is shorthand for a PUT request with a JSON body.
func Put(path string, body any) Request {
	return Request{Method: "PUT", Path: path, Body: body}
}

// Delete is shorthand for a DELETE request.
func Delete(path string) Request {
	return Request{Method: "DELETE", Path: path}
}
