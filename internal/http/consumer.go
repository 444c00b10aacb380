package http

import (
	"fmt"
	"mime"

	"golang.org/x/text/encoding"
)

// BodyConsumer drains a stream of response body chunks into a single value
// delivered through Body.
type BodyConsumer[T any] interface {
	// OnSubscribe requests exactly one unit of demand from s.
	OnSubscribe(s Subscription) error
	// OnNext accepts the next batch of chunks.
	OnNext(chunks [][]byte) error
	// OnError rejects the future with err.
	OnError(err error)
	// OnComplete resolves the future with the accumulated value.
	OnComplete()
	// Body is the completion handle for the final value.
	Body() *Future[T]
}

// ResponseInfo is what a transport knows about a response before its body
// has been consumed.
type ResponseInfo interface {
	StatusCode() int
	Headers() *Headers
	Version() Version
}

// BodyHandler picks the consumer for a response.
type BodyHandler[T any] func(info ResponseInfo) BodyConsumer[T]

// singleChunk holds the state shared by the consumers in this package. Unless
// discard is set it accepts at most one chunk and hands it to onBody decoded.
type singleChunk[T any] struct {
	enc     encoding.Encoding
	future  *Future[T]
	value   T
	seen    bool
	discard bool
	onBody  func(body string)
}

func (c *singleChunk[T]) OnSubscribe(s Subscription) error {
	if s == nil {
		return fmt.Errorf("%w: subscription", ErrNilArgument)
	}
	return s.Request(1)
}

func (c *singleChunk[T]) OnNext(chunks [][]byte) error {
	if chunks == nil {
		return fmt.Errorf("%w: chunks", ErrNilArgument)
	}
	if c.discard {
		return nil
	}
	for _, chunk := range chunks {
		if c.seen {
			return fmt.Errorf("%w: multi-part responses not supported", ErrIllegalState)
		}
		body, err := c.enc.NewDecoder().Bytes(chunk)
		if err != nil {
			return fmt.Errorf("decode body: %w", err)
		}
		c.seen = true
		c.onBody(string(body))
	}
	return nil
}

func (c *singleChunk[T]) OnError(err error) {
	c.future.Fail(err)
}

func (c *singleChunk[T]) OnComplete() {
	c.future.Complete(c.value)
}

func (c *singleChunk[T]) Body() *Future[T] {
	return c.future
}

func (c *singleChunk[T]) String() string {
	return c.future.String()
}

// Discarding returns a consumer that ignores the body content and resolves
// with struct{}{}.
func Discarding() BodyConsumer[struct{}] {
	return &singleChunk[struct{}]{enc: UTF8, future: NewFuture[struct{}](), discard: true}
}

// NewStringConsumer returns a consumer that decodes a single-chunk body with
// enc. An empty body resolves with "".
func NewStringConsumer(enc encoding.Encoding) (BodyConsumer[string], error) {
	if enc == nil {
		return nil, fmt.Errorf("%w: encoding", ErrNilArgument)
	}
	c := &singleChunk[string]{enc: enc, future: NewFuture[string]()}
	c.onBody = func(body string) { c.value = body }
	return c, nil
}

// DiscardingHandler returns a handler producing Discarding consumers.
func DiscardingHandler() BodyHandler[struct{}] {
	return func(ResponseInfo) BodyConsumer[struct{}] {
		return Discarding()
	}
}

// StringHandler returns a handler producing string consumers for enc.
func StringHandler(enc encoding.Encoding) (BodyHandler[string], error) {
	if enc == nil {
		return nil, fmt.Errorf("%w: encoding", ErrNilArgument)
	}
	return func(ResponseInfo) BodyConsumer[string] {
		c, _ := NewStringConsumer(enc)
		return c
	}, nil
}

// StringHandlerFromContentType decodes with the charset named by the
// response Content-Type, or fallback when it names none or an unknown one.
func StringHandlerFromContentType(fallback encoding.Encoding) (BodyHandler[string], error) {
	if fallback == nil {
		return nil, fmt.Errorf("%w: encoding", ErrNilArgument)
	}
	return func(info ResponseInfo) BodyConsumer[string] {
		enc := fallback
		if ct, ok := info.Headers().FirstValue("Content-Type"); ok {
			if _, params, err := mime.ParseMediaType(ct); err == nil && params["charset"] != "" {
				if found, err := LookupCharset(params["charset"]); err == nil {
					enc = found
				}
			}
		}
		c, _ := NewStringConsumer(enc)
		return c
	}, nil
}
