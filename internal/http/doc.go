// Package http provides immutable HTTP request values, a copy-on-write
// request builder and a client that drives request and response bodies
// through a demand-driven publisher/subscriber protocol.
//
// This package provides:
//   - Headers, an immutable case-insensitive multimap
//   - RequestBuilder, whose setters never disturb requests already built
//   - Body producers for strings, byte slices and empty bodies
//   - Body consumers that decode a response into a string or discard it
//   - A Client that sends a Request over any Transport
//
// Basic Usage:
//
//	u, _ := url.Parse("https://api.example.com/users")
//	body, _ := http.StringBody(`{"name":"ada"}`, http.UTF8)
//
//	b, _ := http.NewRequestBuilderURI(u)
//	b, _ = b.Header("Content-Type", "application/json")
//	b, _ = b.POST(body)
//	req, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, _ := http.NewClient(http.NewLoopback())
//	handler, _ := http.StringHandler(http.UTF8)
//	resp, err := http.Send(context.Background(), client, req, handler)
//
// Builder Semantics:
//
// Builders are copy-on-write. Each setter returns a builder holding the new
// state and leaves its receiver untouched. A failed setter returns the
// receiver unchanged, so a builder can be reused after an error. Build
// snapshots the pending state; later setters do not affect requests already
// returned.
//
// Thread Safety:
//
// Request, Headers, Client and body Publisher values are safe for concurrent
// use. One built Request may be sent from many goroutines; every send
// replays its body from the start.
package http
