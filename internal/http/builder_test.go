package http

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestRequestBuilder_MissingURI(t *testing.T) {
	_, err := NewRequestBuilder().GET().Build()
	assert.ErrorIs(t, err, ErrMissingURI)
}

func TestRequestBuilder_Defaults(t *testing.T) {
	b, err := NewRequestBuilderURI(mustURL(t, "http://example/"))
	require.NoError(t, err)

	req, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method())
	assert.Equal(t, "http://example/", req.URI().String())
	assert.Same(t, EmptyHeaders(), req.Headers())
	assert.False(t, req.ExpectContinue())

	_, ok := req.Timeout()
	assert.False(t, ok)
	_, ok = req.Version()
	assert.False(t, ok)
	_, ok = req.Body()
	assert.False(t, ok, "no method call means no body producer")
}

func TestRequestBuilder_HeaderAccumulates(t *testing.T) {
	b, err := NewRequestBuilderURI(mustURL(t, "http://example/"))
	require.NoError(t, err)

	b, err = b.Header("Accept", "text/html")
	require.NoError(t, err)
	b, err = b.Header("accept", "application/json")
	require.NoError(t, err)
	b, err = b.Header("X-Other", "1")
	require.NoError(t, err)

	req, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"text/html", "application/json"}, req.Headers().AllValues("ACCEPT"))
	assert.Equal(t, []string{"Accept", "X-Other"}, req.Headers().Names())
}

func TestRequestBuilder_SetHeaderReplaces(t *testing.T) {
	b, err := NewRequestBuilderURI(mustURL(t, "http://example/"))
	require.NoError(t, err)

	b, err = b.Headers("X-Test", "1", "X-Test", "2")
	require.NoError(t, err)
	b, err = b.SetHeader("x-test", "3")
	require.NoError(t, err)

	req, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, req.Headers().AllValues("X-Test"))
	assert.Equal(t, []string{"X-Test"}, req.Headers().Names())

	same, err := b.SetHeader("X-Test", "3")
	require.NoError(t, err)
	assert.Same(t, b, same, "identical SetHeader should return the receiver")
}

func TestRequestBuilder_InvalidHeaderName(t *testing.T) {
	b := NewRequestBuilder()

	for _, name := range []string{"", "bad name", "bad:name", "new\nline"} {
		got, err := b.Header(name, "value")
		assert.ErrorIs(t, err, ErrInvalidArgument, "Header(%q)", name)
		assert.Same(t, b, got)

		_, err = b.SetHeader(name, "value")
		assert.ErrorIs(t, err, ErrInvalidArgument, "SetHeader(%q)", name)
	}
}

func TestRequestBuilder_HeadersOddLength(t *testing.T) {
	b := NewRequestBuilder()

	got, err := b.Headers("A", "1", "B")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Same(t, b, got)

	// a bad name half way leaves the receiver untouched
	got, err = b.Headers("A", "1", "bad name", "2")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Same(t, b, got)
}

func TestRequestBuilder_Method(t *testing.T) {
	body, err := StringBody("payload", UTF8)
	require.NoError(t, err)

	b := NewRequestBuilder()

	_, err = b.Method("", NoBody())
	assert.ErrorIs(t, err, ErrNilArgument)
	_, err = b.Method("PATCH", nil)
	assert.ErrorIs(t, err, ErrNilArgument)
	_, err = b.POST(nil)
	assert.ErrorIs(t, err, ErrNilArgument)

	tests := []struct {
		name   string
		build  func() (*RequestBuilder, error)
		method string
		length int64
	}{
		{name: "GET", build: func() (*RequestBuilder, error) { return b.GET(), nil }, method: "GET", length: 0},
		{name: "DELETE", build: func() (*RequestBuilder, error) { return b.DELETE(), nil }, method: "DELETE", length: 0},
		{name: "POST", build: func() (*RequestBuilder, error) { return b.POST(body) }, method: "POST", length: 7},
		{name: "PUT", build: func() (*RequestBuilder, error) { return b.PUT(body) }, method: "PUT", length: 7},
		{name: "custom", build: func() (*RequestBuilder, error) { return b.Method("PATCH", body) }, method: "PATCH", length: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.build()
			require.NoError(t, err)
			next, err = next.URI(mustURL(t, "http://example/"))
			require.NoError(t, err)

			req, err := next.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.method, req.Method())

			producer, ok := req.Body()
			require.True(t, ok)
			assert.Equal(t, tt.length, producer.ContentLength())
		})
	}
}

func TestRequestBuilder_Setters(t *testing.T) {
	b := NewRequestBuilder()

	_, err := b.URI(nil)
	assert.ErrorIs(t, err, ErrNilArgument)
	_, err = b.Timeout(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = b.Timeout(-time.Second)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = b.Version(Version(99))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	b, err = b.URI(mustURL(t, "https://example/path?q=1"))
	require.NoError(t, err)
	b, err = b.Timeout(5 * time.Second)
	require.NoError(t, err)
	b, err = b.Version(HTTP11)
	require.NoError(t, err)
	b = b.ExpectContinue(true)

	req, err := b.Build()
	require.NoError(t, err)

	timeout, ok := req.Timeout()
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, timeout)
	version, ok := req.Version()
	assert.True(t, ok)
	assert.Equal(t, HTTP11, version)
	assert.True(t, req.ExpectContinue())
	assert.Equal(t, "https://example/path?q=1", req.URI().String())
}

func TestRequestBuilder_ShortCircuit(t *testing.T) {
	b, err := NewRequestBuilderURI(mustURL(t, "http://example/"))
	require.NoError(t, err)

	same, err := b.URI(mustURL(t, "http://example/"))
	require.NoError(t, err)
	assert.Same(t, b, same)
	assert.Same(t, b, b.ExpectContinue(false))

	withTimeout, err := b.Timeout(time.Second)
	require.NoError(t, err)
	same, err = withTimeout.Timeout(time.Second)
	require.NoError(t, err)
	assert.Same(t, withTimeout, same)
}

func TestRequestBuilder_CopyIsIndependent(t *testing.T) {
	original, err := NewRequestBuilderURI(mustURL(t, "http://example/"))
	require.NoError(t, err)
	original, err = original.Header("X-Test", "1")
	require.NoError(t, err)

	copied := original.Copy()
	copied, err = copied.Header("X-Test", "2")
	require.NoError(t, err)
	copied = copied.DELETE()

	req, err := original.Build()
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method())
	assert.Equal(t, []string{"1"}, req.Headers().AllValues("X-Test"))

	copiedReq, err := copied.Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE", copiedReq.Method())
	assert.Equal(t, []string{"1", "2"}, copiedReq.Headers().AllValues("X-Test"))
}

func TestRequestBuilder_BranchesDoNotShareValues(t *testing.T) {
	base, err := NewRequestBuilderURI(mustURL(t, "http://example/"))
	require.NoError(t, err)
	base, err = base.Headers("X-Test", "1", "X-Test", "2")
	require.NoError(t, err)

	left, err := base.Header("X-Test", "left")
	require.NoError(t, err)
	right, err := base.Header("X-Test", "right")
	require.NoError(t, err)

	leftReq, err := left.Build()
	require.NoError(t, err)
	rightReq, err := right.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "left"}, leftReq.Headers().AllValues("X-Test"))
	assert.Equal(t, []string{"1", "2", "right"}, rightReq.Headers().AllValues("X-Test"))
}

func TestRequestBuilder_Rebuild(t *testing.T) {
	b, err := NewRequestBuilderURI(mustURL(t, "http://example/"))
	require.NoError(t, err)

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.String(), second.String())
}

func TestRequestBuilder_URIIsCopied(t *testing.T) {
	u := mustURL(t, "http://example/a")
	b, err := NewRequestBuilderURI(u)
	require.NoError(t, err)

	u.Path = "/b"
	req, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "http://example/a", req.URI().String())

	req.URI().Path = "/c"
	assert.Equal(t, "http://example/a", req.URI().String())
}
