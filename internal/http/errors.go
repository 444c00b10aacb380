package http

import "errors"

var (
	// ErrInvalidArgument reports a malformed argument such as an empty header
	// name, an odd header pair list or a non-positive demand.
	ErrInvalidArgument = errors.New("http: invalid argument")

	// ErrNilArgument reports a required argument that was nil or empty.
	ErrNilArgument = errors.New("http: nil argument")

	// ErrDuplicateHeader reports two header names that are equal ignoring case.
	ErrDuplicateHeader = errors.New("http: duplicate header")

	// ErrMissingURI is returned by Build when no URI was set.
	ErrMissingURI = errors.New("http: missing uri")

	// ErrIllegalState reports a protocol call made in the wrong state.
	ErrIllegalState = errors.New("http: illegal state")

	// ErrNoRoute is returned by Loopback when no canned response matches.
	ErrNoRoute = errors.New("http: no route")
)
