package http

import (
	"context"
	"fmt"
	"time"
)

// Transport moves a request to its destination and returns the raw response.
// body holds the bytes drained from the request's BodyProducer.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request, body []byte) (*RawResponse, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request, body []byte) (*RawResponse, error)

// RoundTrip calls f.
func (f TransportFunc) RoundTrip(ctx context.Context, req *Request, body []byte) (*RawResponse, error) {
	return f(ctx, req, body)
}

// Client drives requests through a Transport and response bodies through
// BodyConsumers.
type Client struct {
	transport      Transport
	connectTimeout time.Duration
	redirect       Redirect
	priority       int
	version        Version
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client) error

// NewClient creates a new client with the given options
func NewClient(transport Transport, options ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport", ErrNilArgument)
	}
	client := &Client{
		transport: transport,
		redirect:  RedirectNever,
		priority:  1,
		version:   HTTP2,
	}

	// Apply options
	for _, option := range options {
		if err := option(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// WithConnectTimeout sets the connect timeout handed to the transport
func WithConnectTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: connect timeout %s must be positive", ErrInvalidArgument, timeout)
		}
		c.connectTimeout = timeout
		return nil
	}
}

// WithRedirect sets the redirect policy
func WithRedirect(policy Redirect) ClientOption {
	return func(c *Client) error {
		c.redirect = policy
		return nil
	}
}

// WithPriority sets the stream priority, between 1 and 256
func WithPriority(priority int) ClientOption {
	return func(c *Client) error {
		if priority < 1 || priority > 256 {
			return fmt.Errorf("%w: priority %d must be between 1 and 256", ErrInvalidArgument, priority)
		}
		c.priority = priority
		return nil
	}
}

// WithVersion sets the default protocol version
func WithVersion(version Version) ClientOption {
	return func(c *Client) error {
		if !version.Valid() {
			return fmt.Errorf("%w: version %s", ErrInvalidArgument, version)
		}
		c.version = version
		return nil
	}
}

// ConnectTimeout returns the connect timeout, if one was set.
func (c *Client) ConnectTimeout() (time.Duration, bool) {
	return c.connectTimeout, c.connectTimeout > 0
}

// Redirect returns the redirect policy.
func (c *Client) Redirect() Redirect {
	return c.redirect
}

// Priority returns the stream priority.
func (c *Client) Priority() int {
	return c.priority
}

// Version returns the default protocol version.
func (c *Client) Version() Version {
	return c.version
}

// Send executes req and reduces the response body with the consumer chosen
// by handler.
//
// The request timeout, when set, bounds the whole exchange. The response
// version is the one reported by the transport, else the request preference,
// else the client default.
func Send[T any](ctx context.Context, c *Client, req *Request, handler BodyHandler[T]) (*Response[T], error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request", ErrNilArgument)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: body handler", ErrNilArgument)
	}

	if timeout, ok := req.Timeout(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Drain the request body
	var body []byte
	if producer, ok := req.Body(); ok {
		var err error
		if body, err = Collect(producer); err != nil {
			return nil, fmt.Errorf("request body: %w", err)
		}
	}

	raw, err := c.transport.RoundTrip(ctx, req, body)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: transport returned no response", ErrIllegalState)
	}

	consumer := handler(raw)
	if consumer == nil {
		return nil, fmt.Errorf("%w: body handler returned no consumer", ErrIllegalState)
	}
	if err := drive(consumer, raw.Chunks); err != nil {
		consumer.OnError(err)
	}

	value, err := consumer.Body().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("response body: %w", err)
	}

	version := raw.Version()
	if !version.Valid() {
		if v, ok := req.Version(); ok {
			version = v
		} else {
			version = c.version
		}
	}
	return NewResponse(req, raw.StatusCode(), raw.Headers(), version, value)
}

// drive feeds chunks to consumer one at a time and completes it.
func drive[T any](consumer BodyConsumer[T], chunks [][]byte) error {
	sub := &responseSubscription{}
	if err := consumer.OnSubscribe(sub); err != nil {
		return err
	}
	for _, chunk := range chunks {
		if sub.cancelled {
			return fmt.Errorf("%w: response body cancelled", ErrIllegalState)
		}
		if err := consumer.OnNext([][]byte{chunk}); err != nil {
			return err
		}
	}
	consumer.OnComplete()
	return nil
}

// responseSubscription is handed to consumers by Send. The chunks are already
// in memory so demand is validated and otherwise ignored.
type responseSubscription struct {
	cancelled bool
}

func (s *responseSubscription) Request(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: invalid request count %d", ErrInvalidArgument, n)
	}
	return nil
}

func (s *responseSubscription) Cancel() {
	s.cancelled = true
}
