package http

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Request is an immutable snapshot produced by RequestBuilder.Build.
type Request struct {
	method         string
	uri            *url.URL
	headers        *Headers
	expectContinue bool
	timeout        time.Duration // zero when unset
	version        Version       // zero when unset
	body           BodyProducer  // nil when unset
}

// Method returns the request method, "GET" unless one was set.
func (r *Request) Method() string {
	return r.method
}

// URI returns a copy of the request URI.
func (r *Request) URI() *url.URL {
	u := *r.uri
	return &u
}

// Headers returns the request headers.
func (r *Request) Headers() *Headers {
	return r.headers
}

// ExpectContinue reports whether the request asks for 100-continue.
func (r *Request) ExpectContinue() bool {
	return r.expectContinue
}

// Timeout returns the request timeout, if one was set. It is carried for the
// transport to enforce.
func (r *Request) Timeout() (time.Duration, bool) {
	return r.timeout, r.timeout > 0
}

// Version returns the preferred protocol version, if one was set.
func (r *Request) Version() (Version, bool) {
	return r.version, r.version.Valid()
}

// Body returns the body producer, if a method call set one.
func (r *Request) Body() (BodyProducer, bool) {
	return r.body, r.body != nil
}

// String renders the request line, the headers, a blank line and a summary of
// the remaining fields.
func (r *Request) String() string {
	return render(r.method, r.uri, r.version, r.headers.String(), r.expectContinue, r.timeout, r.body)
}

func render(method string, uri *url.URL, version Version, headers string, expectContinue bool, timeout time.Duration, body BodyProducer) string {
	var line []string
	if method != "" {
		line = append(line, method)
	}
	if uri != nil {
		line = append(line, uri.String())
	}
	if version.Valid() {
		line = append(line, version.String())
	}

	var sb strings.Builder
	if len(line) > 0 {
		sb.WriteString(strings.Join(line, " "))
		sb.WriteByte('\n')
	}
	sb.WriteString(headers)
	sb.WriteByte('\n')

	timeoutText := ""
	if timeout > 0 {
		timeoutText = timeout.String()
	}
	fmt.Fprintf(&sb, "expectContinue: %t, timeout: %s", expectContinue, timeoutText)
	if body != nil {
		if text := body.String(); text != "" {
			sb.WriteString(", ")
			sb.WriteString(text)
		}
	}
	return sb.String()
}
