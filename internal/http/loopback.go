package http

import (
	"context"
	"fmt"
	"sync"
)

// Loopback is an in-memory Transport that answers requests with canned
// responses keyed by method and URI. It records every body it receives.
type Loopback struct {
	mu       sync.Mutex
	routes   map[string]*RawResponse
	received map[string][][]byte
}

// NewLoopback returns an empty loopback transport.
func NewLoopback() *Loopback {
	return &Loopback{
		routes:   make(map[string]*RawResponse),
		received: make(map[string][][]byte),
	}
}

func routeKey(method, uri string) string {
	return method + " " + uri
}

// Handle registers resp as the answer to method and uri.
func (l *Loopback) Handle(method, uri string, resp *RawResponse) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.routes[routeKey(method, uri)] = resp
}

// RoundTrip implements Transport.
func (l *Loopback) RoundTrip(ctx context.Context, req *Request, body []byte) (*RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := routeKey(req.Method(), req.URI().String())

	l.mu.Lock()
	defer l.mu.Unlock()
	resp, ok := l.routes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, key)
	}
	l.received[key] = append(l.received[key], body)

	// hand out a copy so callers cannot disturb the canned response
	chunks := make([][]byte, len(resp.Chunks))
	for i, chunk := range resp.Chunks {
		chunks[i] = append([]byte(nil), chunk...)
	}
	return &RawResponse{
		Status: resp.Status,
		Header: resp.Header,
		Proto:  resp.Proto,
		Chunks: chunks,
	}, nil
}

// Received returns the request bodies delivered for method and uri, oldest
// first.
func (l *Loopback) Received(method, uri string) [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]byte(nil), l.received[routeKey(method, uri)]...)
}
