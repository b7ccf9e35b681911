// Package server drives the server side of HTTP/1.1 connections. A Session
// owns the protocol state of one connection and processes one exchange at a
// time; pipelined requests arrive as the extra bytes of the previous exchange
// and are fed into the next one.
package server

import (
	hoot "github.com/lolgesten/hoot"
	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/headers"
	"github.com/lolgesten/hoot/http/proto"
	"github.com/lolgesten/hoot/http/status"
	"github.com/lolgesten/hoot/internal/body"
	"github.com/lolgesten/hoot/internal/parser"
)

type sessionState uint8

const (
	svIdle sessionState = iota + 1
	svHead
	svReqBody
	svRespond
	svRespFields
	svRespBody
	svCleanup
)

// Session carries sequential request/response exchanges over one connection.
type Session struct {
	cfg     *config.Config
	parser  *parser.RequestParser
	headers *headers.Storage
	reader  *body.Reader
	writer  body.Writer

	state    sessionState
	bodyDone bool
	failed   bool

	respInfo    framing.Info
	code        status.Code
	headerCount int

	keepAlive bool
	closed    bool
}

func NewSession(cfg *config.Config) *Session {
	hdrs := headers.NewPrealloc(cfg.Headers.Number.Default)
	return &Session{
		cfg:       cfg,
		parser:    parser.NewRequest(cfg, hdrs),
		headers:   hdrs,
		reader:    body.NewReader(&cfg.Body),
		state:     svIdle,
		keepAlive: true,
	}
}

// Begin opens the next exchange. Header and path views of the previous
// exchange are invalidated here.
func (s *Session) Begin() (Request, error) {
	if s.closed {
		return Request{}, hoot.ErrSessionClosed
	}

	if s.state != svIdle && s.state != svCleanup {
		return Request{}, hoot.ErrExchangePending
	}

	s.parser.Reset()
	s.headers.Clear()
	s.respInfo = framing.Info{}
	s.code = 0
	s.headerCount = 0
	s.bodyDone = false
	s.failed = false
	s.state = svHead

	return Request{s}, nil
}

// KeepAlive reports whether the connection stays usable after the current
// exchange completes.
func (s *Session) KeepAlive() bool {
	return s.keepAlive && !s.closed
}

// Closed reports whether the session accepts further exchanges.
func (s *Session) Closed() bool {
	return s.closed
}

// respProto returns the protocol the response is written in. Requests broken
// before the version was parsed are answered in HTTP/1.1.
func (s *Session) respProto() proto.Proto {
	if p := s.parser.Proto(); p != proto.Unknown {
		return p
	}

	return proto.HTTP11
}

func (s *Session) finish() {
	s.state = svCleanup

	if !s.connectionAlive() {
		s.keepAlive = false
		s.closed = true
	}
}

func (s *Session) poison() {
	s.keepAlive = false
	s.closed = true
}
