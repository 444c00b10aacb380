package http

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// UTF8 is the default body encoding.
var UTF8 encoding.Encoding = unicode.UTF8

// LookupCharset resolves a charset label such as "utf-8" or "ISO-8859-1".
func LookupCharset(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: charset %q: %v", ErrInvalidArgument, name, err)
	}
	return enc, nil
}

// Subscription links one subscriber to one publisher.
type Subscription interface {
	// Request signals demand for n more chunks. n must be positive.
	Request(n int64) error
	// Cancel stops emission. Calling it more than once is a no-op.
	Cancel()
}

// Subscriber receives the chunks of a request body.
type Subscriber interface {
	OnSubscribe(s Subscription)
	OnNext(chunk []byte)
	OnError(err error)
	OnComplete()
}

// BodyProducer is a finite, replayable source of request body chunks. Each
// subscription is independent, so one producer may serve concurrent
// subscribers.
type BodyProducer interface {
	// ContentLength is the number of bytes the body will emit.
	ContentLength() int64
	// Subscribe runs the whole emission for s before returning.
	Subscribe(s Subscriber) error
	String() string
}

// Publisher is the BodyProducer for bodies known up front. It emits at most
// one chunk per subscription and ignores demand beyond validating it.
type Publisher struct {
	text    string
	length  int64
	content func() []byte
}

// NoBody returns a producer that completes without emitting anything.
func NoBody() *Publisher {
	return &Publisher{}
}

// StringBody returns a producer for s encoded with enc.
func StringBody(s string, enc encoding.Encoding) (*Publisher, error) {
	if enc == nil {
		return nil, fmt.Errorf("%w: encoding", ErrNilArgument)
	}
	encoded, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: encode body: %v", ErrInvalidArgument, err)
	}
	return &Publisher{
		text:   s,
		length: int64(len(encoded)),
		content: func() []byte {
			// the encoder succeeded once on the same input
			b, _ := enc.NewEncoder().Bytes([]byte(s))
			return b
		},
	}, nil
}

// BytesBody returns a producer for a copy of b.
func BytesBody(b []byte) *Publisher {
	body := bytes.Clone(b)
	return &Publisher{
		text:    string(body),
		length:  int64(len(body)),
		content: func() []byte { return bytes.Clone(body) },
	}
}

// ContentLength implements BodyProducer.
func (p *Publisher) ContentLength() int64 {
	return p.length
}

// Subscribe hands s a fresh subscription, then emits the body as a single
// chunk (none when empty) followed by completion. Each call replays the body
// from the start. Emission stops as soon as the subscription is cancelled.
func (p *Publisher) Subscribe(s Subscriber) error {
	if s == nil {
		return fmt.Errorf("%w: subscriber", ErrNilArgument)
	}
	sub := &subscription{}
	s.OnSubscribe(sub)
	if sub.cancelled {
		return nil
	}
	if p.length > 0 {
		s.OnNext(p.content())
		if sub.cancelled {
			return nil
		}
	}
	s.OnComplete()
	return nil
}

func (p *Publisher) String() string {
	return p.text
}

// subscription holds all per-subscriber state; the publisher holds none.
type subscription struct {
	cancelled bool
}

func (s *subscription) Request(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: invalid request count %d", ErrInvalidArgument, n)
	}
	return nil
}

func (s *subscription) Cancel() {
	s.cancelled = true
}

// Collector is a Subscriber that buffers every chunk it receives. Transports
// use it to turn a BodyProducer into bytes.
type Collector struct {
	buf       bytes.Buffer
	err       error
	chunks    int
	completed bool
}

// OnSubscribe requests one chunk.
func (c *Collector) OnSubscribe(s Subscription) {
	if err := s.Request(1); err != nil {
		c.err = err
	}
}

func (c *Collector) OnNext(chunk []byte) {
	c.chunks++
	c.buf.Write(chunk)
}

func (c *Collector) OnError(err error) {
	c.err = err
}

func (c *Collector) OnComplete() {
	c.completed = true
}

// Chunks returns how many chunks were received.
func (c *Collector) Chunks() int {
	return c.chunks
}

// Result returns the collected bytes once the stream has completed.
func (c *Collector) Result() ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.completed {
		return nil, fmt.Errorf("%w: body stream did not complete", ErrIllegalState)
	}
	return bytes.Clone(c.buf.Bytes()), nil
}

// Collect subscribes a Collector to p and returns the body bytes.
func Collect(p BodyProducer) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: producer", ErrNilArgument)
	}
	var c Collector
	if err := p.Subscribe(&c); err != nil {
		return nil, err
	}
	return c.Result()
}
