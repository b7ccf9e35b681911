package parser

import (
	"github.com/indigo-web/utils/uf"
	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/headers"
	"github.com/lolgesten/hoot/http/proto"
	"github.com/lolgesten/hoot/http/status"
	"github.com/lolgesten/hoot/internal/buffer"
)

type responseState uint8

const (
	sProto responseState = iota + 1
	sCode
	sReason
	sReasonCR
	sFields
)

// ResponseParser parses status lines and header blocks of responses. The
// reason phrase and header views stay valid until Reset.
type ResponseParser struct {
	cfg    *config.Config
	line   *buffer.Buffer
	fields fieldParser
	info   framing.Info

	proto  proto.Proto
	code   status.Code
	digits int
	reason string
	state  responseState
}

func NewResponse(cfg *config.Config, dst *headers.Storage) *ResponseParser {
	p := &ResponseParser{
		cfg:   cfg,
		line:  buffer.New(cfg.Line.Size.Default, cfg.Line.Size.Maximal),
		state: sProto,
	}
	p.fields = newFieldParser(&cfg.Headers, dst, &p.info)

	return p
}

func (p *ResponseParser) Proto() proto.Proto  { return p.proto }
func (p *ResponseParser) Code() status.Code   { return p.code }
func (p *ResponseParser) Reason() string      { return p.reason }
func (p *ResponseParser) Info() *framing.Info { return &p.info }

func (p *ResponseParser) Reset() {
	p.proto = proto.Unknown
	p.code = 0
	p.digits = 0
	p.reason = ""
	p.info = framing.Info{}
	p.state = sProto
	p.line.Clear()
	p.fields.reset()
}

func (p *ResponseParser) Parse(data []byte) (done bool, extra []byte, err error) {
	switch p.state {
	case sProto:
		goto parseProto
	case sCode:
		goto parseCode
	case sReason:
		goto parseReason
	case sReasonCR:
		goto parseReasonCR
	case sFields:
		goto parseFields
	default:
		panic("hoot: BUG: response parser: unknown state")
	}

parseProto:
	{
		for i := 0; i < len(data); i++ {
			if data[i] == ' ' {
				if !p.line.Append(data[:i]) {
					return true, nil, status.ErrTooLongResponseLine
				}

				p.proto = proto.FromBytes(p.line.Finish())
				if p.proto == proto.Unknown {
					return true, nil, status.ErrHTTPVersionNotSupported
				}

				data = data[i+1:]
				goto parseCode
			}
		}

		if !p.line.Append(data) {
			return true, nil, status.ErrTooLongResponseLine
		}

		p.state = sProto
		return false, nil, nil
	}

parseCode:
	for ; len(data) > 0; data = data[1:] {
		switch char := data[0]; {
		case char >= '0' && char <= '9':
			if p.digits == 3 {
				return true, nil, status.ErrBadStatusLine
			}

			p.code = p.code*10 + status.Code(char-'0')
			p.digits++
		case char == ' ':
			if p.digits != 3 || p.code < 100 {
				return true, nil, status.ErrBadStatusLine
			}

			data = data[1:]
			goto parseReason
		case char == '\r':
			if p.digits != 3 || p.code < 100 {
				return true, nil, status.ErrBadStatusLine
			}

			data = data[1:]
			goto parseReasonCR
		case char == '\n':
			if p.digits != 3 || p.code < 100 {
				return true, nil, status.ErrBadStatusLine
			}

			data = data[1:]
			goto parseFields
		default:
			return true, nil, status.ErrBadStatusLine
		}
	}

	p.state = sCode
	return false, nil, nil

parseReason:
	{
		for i := 0; i < len(data); i++ {
			switch char := data[i]; {
			case char == '\n':
				if !p.line.Append(data[:i]) {
					return true, nil, status.ErrTooLongResponseLine
				}

				p.reason = uf.B2S(p.line.Finish())
				data = data[i+1:]
				goto parseFields
			case char == '\r':
				if !p.line.Append(data[:i]) {
					return true, nil, status.ErrTooLongResponseLine
				}

				p.reason = uf.B2S(p.line.Finish())
				data = data[i+1:]
				goto parseReasonCR
			case !vchar[char] && char != ' ':
				return true, nil, status.ErrBadStatusLine
			}
		}

		if !p.line.Append(data) {
			return true, nil, status.ErrTooLongResponseLine
		}

		p.state = sReason
		return false, nil, nil
	}

parseReasonCR:
	if len(data) == 0 {
		p.state = sReasonCR
		return false, nil, nil
	}

	if data[0] != '\n' {
		return true, nil, status.ErrBadStatusLine
	}

	data = data[1:]
	goto parseFields

parseFields:
	done, extra, err = p.fields.parse(data)
	if err != nil {
		return true, nil, err
	}

	if !done {
		p.state = sFields
		return false, nil, nil
	}

	return true, extra, nil
}
