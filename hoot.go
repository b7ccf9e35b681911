// Package hoot is a sans-IO HTTP/1.1 protocol engine. It drives the byte-level
// construction and parsing of requests and responses over caller-supplied
// buffers: the caller owns the transport (sockets, TLS, pooling) and only feeds
// received bytes in and drains produced bytes out. Every operation either
// completes with the bytes at hand or suspends by reporting that more input is
// needed or that the output view is full.
//
// The client side lives in the client package, the server side in the server
// package. This package holds the operational errors shared by both.
package hoot

import "errors"

var (
	// ErrOutputFull means the output view cannot fit the next framing unit.
	// Drain the view into the transport, reset it and retry the same call.
	ErrOutputFull = errors.New("output view cannot fit the next framing unit")

	// ErrSessionClosed is returned by Begin once the session decided the
	// underlying connection may not carry another exchange.
	ErrSessionClosed = errors.New("session is closed")

	// ErrExchangePending is returned by Begin while the previous exchange has
	// not progressed far enough for a new one to start.
	ErrExchangePending = errors.New("previous exchange is still in progress")

	// ErrPipelineFull is returned by Begin when the configured number of
	// pipelined exchanges are already in flight.
	ErrPipelineFull = errors.New("pipelining limit reached")

	ErrBodySent  = errors.New("body content after the body was finished")
	ErrLongBody  = errors.New("more body content than the declared Content-Length")
	ErrShortBody = errors.New("less body content than the declared Content-Length")

	ErrMethodForbidsBody  = errors.New("request method forbids a body")
	ErrMethodRequiresBody = errors.New("request method requires a body")

	// ErrBodyExpected is returned when headers declared a body, yet the
	// exchange was finished without sending one.
	ErrBodyExpected = errors.New("headers declare a body that was never sent")
)
