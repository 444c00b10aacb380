package http

import (
	"fmt"
	"strings"
)

// Version is an HTTP protocol version preference.
type Version int

const (
	// HTTP11 is HTTP/1.1.
	HTTP11 Version = iota + 1
	// HTTP2 is HTTP/2.
	HTTP2
)

// Valid reports whether v is a known version.
func (v Version) Valid() bool {
	return v == HTTP11 || v == HTTP2
}

func (v Version) String() string {
	switch v {
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// ParseVersion accepts "HTTP/1.1", "1.1", "HTTP/2", "2" and "h2" in any case.
func ParseVersion(s string) (Version, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HTTP/1.1", "1.1", "HTTP_1_1":
		return HTTP11, nil
	case "HTTP/2", "HTTP/2.0", "2", "H2", "HTTP_2":
		return HTTP2, nil
	}
	return 0, fmt.Errorf("%w: unknown http version %q", ErrInvalidArgument, s)
}

// Redirect is a client redirect policy. It is carried as configuration only;
// nothing in this module follows redirects.
type Redirect int

const (
	// RedirectNever never follows redirects.
	RedirectNever Redirect = iota
	// RedirectAlways always follows redirects.
	RedirectAlways
	// RedirectNormal follows redirects except from https to http.
	RedirectNormal
)

func (r Redirect) String() string {
	switch r {
	case RedirectNever:
		return "never"
	case RedirectAlways:
		return "always"
	case RedirectNormal:
		return "normal"
	default:
		return fmt.Sprintf("Redirect(%d)", int(r))
	}
}
