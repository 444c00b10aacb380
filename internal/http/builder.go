package http

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// RequestBuilder accumulates request state and produces Request snapshots.
//
// RequestBuilder is copy-on-write: every method leaves the receiver untouched
// and returns a builder holding the new state, or the receiver itself when the
// call would not change anything. Builders can therefore be shared and
// branched freely, and Build can be called any number of times.
type RequestBuilder struct {
	method         string
	body           BodyProducer
	expectContinue bool
	headers        map[string]headerEntry // keyed by lower-cased name
	timeout        time.Duration
	uri            *url.URL
	version        Version
}

type headerEntry struct {
	name   string
	values []string
}

// NewRequestBuilder returns an empty builder.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

// NewRequestBuilderURI returns a builder with its URI set.
func NewRequestBuilderURI(u *url.URL) (*RequestBuilder, error) {
	return NewRequestBuilder().URI(u)
}

// Copy returns an independent builder with the same pending state.
func (b *RequestBuilder) Copy() *RequestBuilder {
	c := *b
	return &c
}

// GET sets the method to GET with no body.
func (b *RequestBuilder) GET() *RequestBuilder {
	c, _ := b.Method("GET", NoBody())
	return c
}

// DELETE sets the method to DELETE with no body.
func (b *RequestBuilder) DELETE() *RequestBuilder {
	c, _ := b.Method("DELETE", NoBody())
	return c
}

// POST sets the method to POST with the given body.
func (b *RequestBuilder) POST(body BodyProducer) (*RequestBuilder, error) {
	return b.Method("POST", body)
}

// PUT sets the method to PUT with the given body.
func (b *RequestBuilder) PUT(body BodyProducer) (*RequestBuilder, error) {
	return b.Method("PUT", body)
}

// Method sets the method and body producer together.
func (b *RequestBuilder) Method(method string, body BodyProducer) (*RequestBuilder, error) {
	if method == "" {
		return b, fmt.Errorf("%w: method", ErrNilArgument)
	}
	if body == nil {
		return b, fmt.Errorf("%w: body producer", ErrNilArgument)
	}
	c := b.Copy()
	c.method = method
	c.body = body
	return c, nil
}

// ExpectContinue sets the expect-continue flag.
func (b *RequestBuilder) ExpectContinue(enable bool) *RequestBuilder {
	if b.expectContinue == enable {
		return b
	}
	c := b.Copy()
	c.expectContinue = enable
	return c
}

// Header appends value to the values already held for name. Names are matched
// ignoring case and keep the casing they were first added with.
func (b *RequestBuilder) Header(name, value string) (*RequestBuilder, error) {
	if err := checkHeaderName(name); err != nil {
		return b, err
	}
	key := strings.ToLower(name)
	entry, ok := b.headers[key]
	if !ok {
		entry.name = name
	}
	// a fresh slice keeps earlier builders' entries untouched
	entry.values = append(slices.Clip(entry.values), value)
	return b.withHeader(key, entry), nil
}

// SetHeader replaces every value held for name with value. A name already
// present keeps the casing it was first added with.
func (b *RequestBuilder) SetHeader(name, value string) (*RequestBuilder, error) {
	if err := checkHeaderName(name); err != nil {
		return b, err
	}
	key := strings.ToLower(name)
	entry, ok := b.headers[key]
	if !ok {
		entry.name = name
	} else if slices.Equal(entry.values, []string{value}) {
		return b, nil
	}
	entry.values = []string{value}
	return b.withHeader(key, entry), nil
}

// Headers applies Header to each name/value pair. An odd number of arguments
// fails with ErrInvalidArgument and nothing is applied.
func (b *RequestBuilder) Headers(pairs ...string) (*RequestBuilder, error) {
	if len(pairs)%2 != 0 {
		return b, fmt.Errorf("%w: last header missing value: %q", ErrInvalidArgument, pairs)
	}
	c := b
	for i := 0; i < len(pairs); i += 2 {
		next, err := c.Header(pairs[i], pairs[i+1])
		if err != nil {
			return b, err
		}
		c = next
	}
	return c, nil
}

func (b *RequestBuilder) withHeader(key string, entry headerEntry) *RequestBuilder {
	c := b.Copy()
	c.headers = make(map[string]headerEntry, len(b.headers)+1)
	for k, v := range b.headers {
		c.headers[k] = v
	}
	c.headers[key] = entry
	return c
}

func checkHeaderName(name string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: invalid header name %q", ErrInvalidArgument, name)
	}
	return nil
}

// Timeout sets the request timeout. d must be positive.
func (b *RequestBuilder) Timeout(d time.Duration) (*RequestBuilder, error) {
	if d <= 0 {
		return b, fmt.Errorf("%w: timeout %s must be positive", ErrInvalidArgument, d)
	}
	if b.timeout == d {
		return b, nil
	}
	c := b.Copy()
	c.timeout = d
	return c, nil
}

// URI sets the request URI. The builder keeps its own copy of u.
func (b *RequestBuilder) URI(u *url.URL) (*RequestBuilder, error) {
	if u == nil {
		return b, fmt.Errorf("%w: uri", ErrNilArgument)
	}
	if b.uri != nil && b.uri.String() == u.String() {
		return b, nil
	}
	c := b.Copy()
	copied := *u
	c.uri = &copied
	return c, nil
}

// Version sets the preferred protocol version.
func (b *RequestBuilder) Version(v Version) (*RequestBuilder, error) {
	if !v.Valid() {
		return b, fmt.Errorf("%w: version %s", ErrInvalidArgument, v)
	}
	if b.version == v {
		return b, nil
	}
	c := b.Copy()
	c.version = v
	return c, nil
}

// Build snapshots the pending state. It fails with ErrMissingURI when no URI
// was set.
func (b *RequestBuilder) Build() (*Request, error) {
	if b.uri == nil {
		return nil, ErrMissingURI
	}
	headers, err := NewHeaders(b.headerSource(), KeepAll)
	if err != nil {
		return nil, err
	}

	method := b.method
	if method == "" {
		method = "GET"
	}
	uri := *b.uri
	return &Request{
		method:         method,
		uri:            &uri,
		headers:        headers,
		expectContinue: b.expectContinue,
		timeout:        b.timeout,
		version:        b.version,
		body:           b.body,
	}, nil
}

func (b *RequestBuilder) headerSource() map[string][]string {
	source := make(map[string][]string, len(b.headers))
	for _, entry := range b.headers {
		source[entry.name] = entry.values
	}
	return source
}

// String renders the pending state in the same layout as Request.String.
func (b *RequestBuilder) String() string {
	var sb strings.Builder
	keys := make([]string, 0, len(b.headers))
	for key := range b.headers {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		entry := b.headers[key]
		for _, value := range entry.values {
			fmt.Fprintf(&sb, "%s: %s\n", entry.name, value)
		}
	}
	return render(b.method, b.uri, b.version, sb.String(), b.expectContinue, b.timeout, b.body)
}
