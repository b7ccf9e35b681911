package parser

import (
	"github.com/indigo-web/utils/uf"
	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/headers"
	"github.com/lolgesten/hoot/http/method"
	"github.com/lolgesten/hoot/http/proto"
	"github.com/lolgesten/hoot/http/status"
	"github.com/lolgesten/hoot/internal/buffer"
)

type requestState uint8

const (
	rMethod requestState = iota + 1
	rPath
	rProto
	rProtoCR
	rFields
)

// RequestParser parses request heads fed in arbitrary fragments. Parse
// reports done=true once the terminating empty line is consumed, with extra
// holding the unconsumed remainder (the start of the body or of a pipelined
// request). Path and header views stay valid until Reset.
type RequestParser struct {
	cfg    *config.Config
	line   *buffer.Buffer
	fields fieldParser
	info   framing.Info

	method method.Method
	path   string
	proto  proto.Proto
	state  requestState
}

func NewRequest(cfg *config.Config, dst *headers.Storage) *RequestParser {
	p := &RequestParser{
		cfg:   cfg,
		line:  buffer.New(cfg.Line.Size.Default, cfg.Line.Size.Maximal),
		state: rMethod,
	}
	p.fields = newFieldParser(&cfg.Headers, dst, &p.info)

	return p
}

func (p *RequestParser) Method() method.Method { return p.method }
func (p *RequestParser) Path() string          { return p.path }
func (p *RequestParser) Proto() proto.Proto    { return p.proto }
func (p *RequestParser) Info() *framing.Info   { return &p.info }

func (p *RequestParser) Reset() {
	p.method = method.Unknown
	p.path = ""
	p.proto = proto.Unknown
	p.info = framing.Info{}
	p.state = rMethod
	p.line.Clear()
	p.fields.reset()
}

func (p *RequestParser) Parse(data []byte) (done bool, extra []byte, err error) {
	switch p.state {
	case rMethod:
		goto parseMethod
	case rPath:
		goto parsePath
	case rProto:
		goto parseProto
	case rProtoCR:
		goto parseProtoCR
	case rFields:
		goto parseFields
	default:
		panic("hoot: BUG: request parser: unknown state")
	}

parseMethod:
	{
		for i := 0; i < len(data); i++ {
			if data[i] == ' ' {
				if !p.line.Append(data[:i]) {
					return true, nil, status.ErrTooLongRequestLine
				}

				p.method = method.Parse(uf.B2S(p.line.Finish()))
				if p.method == method.Unknown {
					return true, nil, status.ErrMethodNotImplemented
				}

				data = data[i+1:]
				goto parsePath
			}
		}

		if !p.line.Append(data) {
			return true, nil, status.ErrTooLongRequestLine
		}

		p.state = rMethod
		return false, nil, nil
	}

parsePath:
	{
		for i := 0; i < len(data); i++ {
			char := data[i]
			if char == ' ' {
				if !p.line.Append(data[:i]) {
					return true, nil, status.ErrURITooLong
				}

				if p.line.SegmentLength() == 0 {
					return true, nil, status.ErrBadRequest
				}

				p.path = uf.B2S(p.line.Finish())
				data = data[i+1:]
				goto parseProto
			}

			if !targetchar(char) {
				return true, nil, status.ErrBadRequest
			}
		}

		if !p.line.Append(data) {
			return true, nil, status.ErrURITooLong
		}

		p.state = rPath
		return false, nil, nil
	}

parseProto:
	{
		for i := 0; i < len(data); i++ {
			switch data[i] {
			case '\r', '\n':
				if !p.line.Append(data[:i]) {
					return true, nil, status.ErrTooLongRequestLine
				}

				p.proto = proto.FromBytes(p.line.Finish())
				if p.proto == proto.Unknown {
					return true, nil, status.ErrHTTPVersionNotSupported
				}

				if data[i] == '\n' {
					data = data[i+1:]
					goto parseFields
				}

				data = data[i+1:]
				goto parseProtoCR
			}
		}

		if !p.line.Append(data) {
			return true, nil, status.ErrTooLongRequestLine
		}

		p.state = rProto
		return false, nil, nil
	}

parseProtoCR:
	if len(data) == 0 {
		p.state = rProtoCR
		return false, nil, nil
	}

	if data[0] != '\n' {
		return true, nil, status.ErrBadRequest
	}

	data = data[1:]
	goto parseFields

parseFields:
	done, extra, err = p.fields.parse(data)
	if err != nil {
		return true, nil, err
	}

	if !done {
		p.state = rFields
		return false, nil, nil
	}

	return true, extra, nil
}
