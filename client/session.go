// Package client drives the client side of HTTP/1.1 connections. A Session
// owns the protocol state of one connection; the caller owns the transport
// and shuttles bytes between it and the session's exchanges.
package client

import (
	hoot "github.com/lolgesten/hoot"
	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/headers"
	"github.com/lolgesten/hoot/internal/body"
	"github.com/lolgesten/hoot/internal/parser"
)

// Session multiplexes sequential exchanges over one connection. Requests may
// be pipelined up to the configured depth, responses must be consumed in the
// order the requests were sent.
type Session struct {
	cfg     *config.Config
	parser  *parser.ResponseParser
	headers *headers.Storage

	ring      []exchange
	begun     uint64
	completed uint64

	keepAlive bool
	closed    bool
}

func NewSession(cfg *config.Config) *Session {
	hdrs := headers.NewPrealloc(cfg.Headers.Number.Default)
	s := &Session{
		cfg:       cfg,
		parser:    parser.NewResponse(cfg, hdrs),
		headers:   hdrs,
		ring:      make([]exchange, cfg.Session.MaxPipelined),
		keepAlive: true,
	}

	for i := range s.ring {
		s.ring[i].s = s
		s.ring[i].reader = body.NewReader(&cfg.Body)
	}

	return s
}

// Begin opens a new exchange. It fails with ErrExchangePending while the
// previous request is still being written, with ErrPipelineFull when the
// configured pipelining depth is reached, and with ErrSessionClosed once the
// connection cannot carry further exchanges.
func (s *Session) Begin() (Request, error) {
	if s.closed {
		return Request{}, hoot.ErrSessionClosed
	}

	if s.begun > s.completed {
		last := &s.ring[(s.begun-1)%uint64(len(s.ring))]
		if last.state < stAwait {
			return Request{}, hoot.ErrExchangePending
		}
	}

	if s.begun-s.completed == uint64(len(s.ring)) {
		return Request{}, hoot.ErrPipelineFull
	}

	ex := &s.ring[s.begun%uint64(len(s.ring))]
	s.begun++
	ex.reset()

	return Request{ex}, nil
}

// KeepAlive reports whether the connection stays usable after the current
// exchanges complete.
func (s *Session) KeepAlive() bool {
	return s.keepAlive && !s.closed
}

// Closed reports whether the session accepts further exchanges.
func (s *Session) Closed() bool {
	return s.closed
}

// head returns the exchange whose response is next on the wire.
func (s *Session) head() *exchange {
	return &s.ring[s.completed%uint64(len(s.ring))]
}

func (s *Session) finish(ex *exchange) {
	ex.state = stCleanup
	s.completed++

	keep := !ex.info.ConnectionClose && !ex.respClose && !ex.closeDelimited
	if !ex.respProto.KeepAlive() {
		keep = keep && ex.respKeepAlive
	}

	if !keep {
		s.keepAlive = false
		s.closed = true
	}
}

// poison invalidates the session after a protocol violation.
func (s *Session) poison() {
	s.keepAlive = false
	s.closed = true
}
