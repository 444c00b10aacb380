package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// countingSubscription records demand.
type countingSubscription struct {
	requested []int64
	cancelled int
}

func (s *countingSubscription) Request(n int64) error {
	s.requested = append(s.requested, n)
	if n <= 0 {
		return ErrInvalidArgument
	}
	return nil
}

func (s *countingSubscription) Cancel() {
	s.cancelled++
}

func TestStringConsumer_SingleChunk(t *testing.T) {
	c, err := NewStringConsumer(UTF8)
	require.NoError(t, err)

	sub := &countingSubscription{}
	require.NoError(t, c.OnSubscribe(sub))
	assert.Equal(t, []int64{1}, sub.requested, "consumer requests exactly one chunk")

	_, done, _ := c.Body().Poll()
	assert.False(t, done)

	require.NoError(t, c.OnNext([][]byte{[]byte("hello")}))
	c.OnComplete()

	value, done, err := c.Body().Poll()
	assert.True(t, done)
	assert.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestStringConsumer_SecondChunk(t *testing.T) {
	c, err := NewStringConsumer(UTF8)
	require.NoError(t, err)
	require.NoError(t, c.OnSubscribe(&countingSubscription{}))

	require.NoError(t, c.OnNext([][]byte{[]byte("hello")}))
	err = c.OnNext([][]byte{[]byte("world")})
	assert.ErrorIs(t, err, ErrIllegalState)

	// two chunks in a single batch fail the same way
	c, err = NewStringConsumer(UTF8)
	require.NoError(t, err)
	err = c.OnNext([][]byte{[]byte("a"), []byte("b")})
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestStringConsumer_EmptyBody(t *testing.T) {
	// no chunk at all
	c, err := NewStringConsumer(UTF8)
	require.NoError(t, err)
	c.OnComplete()
	value, err := c.Body().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", value)

	// an empty chunk is a valid body and still counts as the one chunk
	c, err = NewStringConsumer(UTF8)
	require.NoError(t, err)
	require.NoError(t, c.OnNext([][]byte{{}}))
	assert.ErrorIs(t, c.OnNext([][]byte{[]byte("x")}), ErrIllegalState)
	c.OnComplete()
	value, err = c.Body().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestStringConsumer_Charset(t *testing.T) {
	c, err := NewStringConsumer(charmap.ISO8859_1)
	require.NoError(t, err)
	require.NoError(t, c.OnNext([][]byte{{'h', 0xe9}}))
	c.OnComplete()

	value, err := c.Body().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hé", value)
}

func TestStringConsumer_NilArguments(t *testing.T) {
	_, err := NewStringConsumer(nil)
	assert.ErrorIs(t, err, ErrNilArgument)

	c, err := NewStringConsumer(UTF8)
	require.NoError(t, err)
	assert.ErrorIs(t, c.OnSubscribe(nil), ErrNilArgument)
	assert.ErrorIs(t, c.OnNext(nil), ErrNilArgument)
}

func TestConsumer_OnError(t *testing.T) {
	cause := errors.New("connection reset")

	c, err := NewStringConsumer(UTF8)
	require.NoError(t, err)
	c.OnError(cause)

	_, err = c.Body().Get(context.Background())
	assert.ErrorIs(t, err, cause)

	// the first resolution wins
	c.OnComplete()
	_, err = c.Body().Get(context.Background())
	assert.ErrorIs(t, err, cause)
}

func TestDiscarding(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][][]byte
	}{
		{name: "no chunks"},
		{name: "one chunk", chunks: [][][]byte{{[]byte("ignored")}}},
		{name: "many chunks", chunks: [][][]byte{{[]byte("a")}, {[]byte("b"), {0xff, 0xfe}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Discarding()
			sub := &countingSubscription{}
			require.NoError(t, c.OnSubscribe(sub))
			assert.Equal(t, []int64{1}, sub.requested)

			for _, batch := range tt.chunks {
				require.NoError(t, c.OnNext(batch))
			}
			c.OnComplete()

			value, err := c.Body().Get(context.Background())
			require.NoError(t, err)
			assert.Equal(t, struct{}{}, value)
		})
	}
}

func TestStringHandlerFromContentType(t *testing.T) {
	handler, err := StringHandlerFromContentType(UTF8)
	require.NoError(t, err)

	headers, err := NewHeaders(map[string][]string{
		"Content-Type": {"text/plain; charset=ISO-8859-1"},
	}, KeepAll)
	require.NoError(t, err)

	c := handler(&RawResponse{Status: 200, Header: headers})
	require.NoError(t, c.OnNext([][]byte{{'c', 'a', 'f', 0xe9}}))
	c.OnComplete()
	value, err := c.Body().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "café", value)

	// unknown charset falls back
	headers, err = NewHeaders(map[string][]string{
		"Content-Type": {"text/plain; charset=bogus"},
	}, KeepAll)
	require.NoError(t, err)
	c = handler(&RawResponse{Status: 200, Header: headers})
	require.NoError(t, c.OnNext([][]byte{[]byte("café")}))
	c.OnComplete()
	value, err = c.Body().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "café", value)

	_, err = StringHandlerFromContentType(nil)
	assert.ErrorIs(t, err, ErrNilArgument)
}

func TestFuture(t *testing.T) {
	f := NewFuture[int]()
	assert.Equal(t, "Future[incomplete]", f.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	results := make(chan int, 3)
	for i := 0; i < 3; i++ {
		go func() {
			v, _ := f.Get(context.Background())
			results <- v
		}()
	}

	assert.True(t, f.Complete(7))
	assert.False(t, f.Complete(8))
	assert.False(t, f.Fail(errors.New("late")))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 7, <-results)
	}
	assert.Equal(t, "Future[completed]", f.String())

	failed := NewFuture[string]()
	failed.Fail(errors.New("boom"))
	<-failed.Done()
	assert.Equal(t, "Future[failed: boom]", failed.String())
}
