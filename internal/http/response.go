package http

import (
	"fmt"
	"net/url"
)

// Response pairs the request that produced it with the status, headers,
// protocol version and the body value a BodyConsumer reduced the body to.
type Response[T any] struct {
	request    *Request
	statusCode int
	headers    *Headers
	version    Version
	body       T
	previous   *Response[T]
}

// NewResponse returns an immutable response. A nil headers table is treated as
// empty.
func NewResponse[T any](req *Request, statusCode int, headers *Headers, version Version, body T) (*Response[T], error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request", ErrNilArgument)
	}
	if statusCode < 100 || statusCode > 999 {
		return nil, fmt.Errorf("%w: status code %d", ErrInvalidArgument, statusCode)
	}
	if headers == nil {
		headers = emptyHeaders
	}
	return &Response[T]{
		request:    req,
		statusCode: statusCode,
		headers:    headers,
		version:    version,
		body:       body,
	}, nil
}

// WithPrevious returns a copy of r linked to the response that preceded it in
// a redirect chain.
func (r *Response[T]) WithPrevious(previous *Response[T]) *Response[T] {
	c := *r
	c.previous = previous
	return &c
}

// Request returns the request this response answers.
func (r *Response[T]) Request() *Request {
	return r.request
}

// StatusCode returns the response status code.
func (r *Response[T]) StatusCode() int {
	return r.statusCode
}

// Headers returns the response headers.
func (r *Response[T]) Headers() *Headers {
	return r.headers
}

// Version returns the protocol version used.
func (r *Response[T]) Version() Version {
	return r.version
}

// Body returns the consumed body value.
func (r *Response[T]) Body() T {
	return r.body
}

// URI returns the URI of the originating request.
func (r *Response[T]) URI() *url.URL {
	return r.request.URI()
}

// Previous returns the preceding response of a redirect chain.
func (r *Response[T]) Previous() (*Response[T], bool) {
	return r.previous, r.previous != nil
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response[T]) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response[T]) IsRedirect() bool {
	return r.statusCode >= 300 && r.statusCode < 400
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response[T]) IsClientError() bool {
	return r.statusCode >= 400 && r.statusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response[T]) IsServerError() bool {
	return r.statusCode >= 500 && r.statusCode < 600
}

func (r *Response[T]) String() string {
	return fmt.Sprintf("%s %d %s\n%s\n%v", r.version, r.statusCode, r.request.URI(), r.headers, r.body)
}

// RawResponse is what a Transport hands back: everything about the response
// except the consumed body, which is still a list of chunks.
type RawResponse struct {
	Status int
	Header *Headers
	Proto  Version
	Chunks [][]byte
}

// StatusCode implements ResponseInfo.
func (r *RawResponse) StatusCode() int {
	return r.Status
}

// Headers implements ResponseInfo. A nil table reads as empty.
func (r *RawResponse) Headers() *Headers {
	if r.Header == nil {
		return emptyHeaders
	}
	return r.Header
}

// Version implements ResponseInfo.
func (r *RawResponse) Version() Version {
	return r.Proto
}
