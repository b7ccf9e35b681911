package client

import (
	"io"

	hoot "github.com/lolgesten/hoot"
	"github.com/lolgesten/hoot/buffview"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/headers"
	"github.com/lolgesten/hoot/http/method"
	"github.com/lolgesten/hoot/http/proto"
	"github.com/lolgesten/hoot/http/status"
	"github.com/lolgesten/hoot/internal/body"
	"github.com/lolgesten/hoot/internal/parser"
)

type exchangeState uint8

const (
	stLine exchangeState = iota + 1
	stFields
	stBody
	stAwait
	stRespHead
	stRespBody
	stCleanup
)

const teChunkedField = "Transfer-Encoding: chunked\r\n"

type exchange struct {
	s      *Session
	writer body.Writer
	reader *body.Reader

	state       exchangeState
	method      method.Method
	proto       proto.Proto
	info        framing.Info
	headerCount int

	code           status.Code
	reason         string
	respProto      proto.Proto
	respClose      bool
	respKeepAlive  bool
	closeDelimited bool
}

func (ex *exchange) reset() {
	reader := ex.reader
	s := ex.s
	*ex = exchange{s: s, reader: reader, state: stLine}
}

// Request writes the request line. Misusing a handle out of turn is a caller
// bug and panics; recoverable conditions are reported as errors.
type Request struct {
	ex *exchange
}

// Line serializes "METHOD target PROTO\r\n" into dst atomically: when it does
// not fit, nothing is written and ErrOutputFull is returned so the caller can
// drain dst and retry.
func (r Request) Line(m method.Method, target string, p proto.Proto, dst *buffview.View) (Fields, error) {
	ex := r.ex
	if ex.state != stLine {
		panic("hoot: BUG: request line already written")
	}

	if m == method.Unknown {
		return Fields{}, status.ErrMethodNotImplemented
	}

	if p == proto.Unknown {
		return Fields{}, status.ErrHTTPVersionNotSupported
	}

	if !parser.ValidTarget(target) {
		return Fields{}, status.ErrBadRequest
	}

	need := len(m.String()) + 1 + len(target) + 1 + len(p.String()) + 2
	if dst.Free() < need {
		return Fields{}, hoot.ErrOutputFull
	}

	dst.AppendString(m.String())
	dst.AppendByte(' ')
	dst.AppendString(target)
	dst.AppendByte(' ')
	dst.AppendString(p.String())
	dst.AppendString("\r\n")

	ex.method = m
	ex.proto = p
	ex.state = stFields

	return Fields{ex}, nil
}

// Fields writes the request header block.
type Fields struct {
	ex *exchange
}

// Header serializes one "Key: value\r\n" field atomically. Framing-relevant
// fields (Content-Length, Transfer-Encoding, Connection, Host) are tracked
// and steer the body phase.
func (f Fields) Header(key, value string, dst *buffview.View) error {
	ex := f.ex
	if ex.state != stFields {
		panic("hoot: BUG: header written outside the field phase")
	}

	if !parser.ValidHeaderKey(key) {
		return status.ErrBadHeaderKey
	}

	if !parser.ValidHeaderValue(value) {
		return status.ErrBadHeaderValue
	}

	if ex.headerCount+1 > ex.s.cfg.Headers.Number.Maximal {
		return status.ErrTooManyHeaders
	}

	if dst.Free() < len(key)+2+len(value)+2 {
		return hoot.ErrOutputFull
	}

	if err := ex.info.Collect(key, value); err != nil {
		return err
	}

	ex.headerCount++
	dst.AppendString(key)
	dst.AppendString(": ")
	dst.AppendString(value)
	dst.AppendString("\r\n")

	return nil
}

// Finish ends a bodiless request: it writes the terminating empty line and
// moves the exchange to the response phase. Requests whose headers declare a
// body must go through Body instead.
func (f Fields) Finish(dst *buffview.View) (Response, error) {
	ex := f.ex
	if ex.state != stFields {
		panic("hoot: BUG: fields already finished")
	}

	if ex.method.RequiresBody() {
		return Response{}, hoot.ErrMethodRequiresBody
	}

	if ex.info.Chunked || (ex.info.HasContentLength && ex.info.ContentLength > 0) {
		return Response{}, hoot.ErrBodyExpected
	}

	if ex.proto == proto.HTTP11 {
		if err := framing.ValidateHost(ex.info); err != nil {
			return Response{}, err
		}
	}

	if dst.Free() < 2 {
		return Response{}, hoot.ErrOutputFull
	}

	dst.AppendString("\r\n")
	ex.state = stAwait

	return Response{ex}, nil
}

// Body ends the header block and opens the request body. HTTP/1.1 requests
// without explicit framing are upgraded to chunked transfer encoding;
// HTTP/1.0 has no chunked encoding, so such requests fail with
// ErrLengthRequired.
func (f Fields) Body(dst *buffview.View) (Body, error) {
	ex := f.ex
	if ex.state != stFields {
		panic("hoot: BUG: fields already finished")
	}

	if ex.method.ForbidsBody() {
		return Body{}, hoot.ErrMethodForbidsBody
	}

	if ex.proto == proto.HTTP11 {
		if err := framing.ValidateHost(ex.info); err != nil {
			return Body{}, err
		}
	}

	fr, err := framing.ForRequest(ex.info)
	if err != nil {
		return Body{}, err
	}

	need := 2
	upgrade := false
	if fr.Mode == framing.NoBody {
		if ex.proto != proto.HTTP11 {
			return Body{}, status.ErrLengthRequired
		}

		fr = framing.Framing{Mode: framing.Chunked}
		upgrade = true
		need += len(teChunkedField)
	}

	if dst.Free() < need {
		return Body{}, hoot.ErrOutputFull
	}

	if upgrade {
		dst.AppendString(teChunkedField)
	}

	dst.AppendString("\r\n")
	ex.writer.Reset(fr)
	ex.state = stBody

	return Body{ex}, nil
}

// Body streams the request body.
type Body struct {
	ex *exchange
}

// Write encodes a prefix of data into dst and reports how much of data was
// consumed. ErrOutputFull asks the caller to drain dst and retry with the
// rest.
func (b Body) Write(data []byte, dst *buffview.View) (n int, err error) {
	if b.ex.state != stBody {
		panic("hoot: BUG: body written outside the body phase")
	}

	return b.ex.writer.Write(data, dst)
}

// Finish seals the body. For chunked bodies the terminating chunk must fit
// dst; on ErrOutputFull drain dst and call Finish again.
func (b Body) Finish(dst *buffview.View) (Response, error) {
	ex := b.ex
	if ex.state != stBody {
		panic("hoot: BUG: body already finished")
	}

	if err := ex.writer.Finish(dst); err != nil {
		return Response{}, err
	}

	ex.state = stAwait
	return Response{ex}, nil
}

// Response consumes the response head. Responses are read strictly in the
// order their requests were sent.
type Response struct {
	ex *exchange
}

// Feed parses a fragment of the response head. Once done is true the status
// line and headers are available and extra holds the unconsumed remainder,
// which belongs to the response body. Informational responses are consumed
// and skipped transparently.
func (r Response) Feed(data []byte) (done bool, extra []byte, err error) {
	ex := r.ex
	s := ex.s
	if ex != s.head() {
		panic("hoot: BUG: responses must be read in request order")
	}

	switch ex.state {
	case stAwait:
		s.parser.Reset()
		s.headers.Clear()
		ex.state = stRespHead
	case stRespHead:
	default:
		panic("hoot: BUG: response head already parsed")
	}

	for {
		done, data, err = s.parser.Parse(data)
		if err != nil {
			s.poison()
			return false, nil, err
		}

		if !done {
			return false, nil, nil
		}

		if !s.parser.Code().Informational() {
			break
		}

		// 1xx interim responses precede the real one
		s.parser.Reset()
		s.headers.Clear()
	}

	ex.code = s.parser.Code()
	ex.reason = s.parser.Reason()
	ex.respProto = s.parser.Proto()
	ex.respClose = s.parser.Info().ConnectionClose
	ex.respKeepAlive = s.parser.Info().ConnectionKeepAlive

	fr, err := framing.ForResponse(*s.parser.Info(), ex.method, ex.code)
	if err != nil {
		s.poison()
		return false, nil, err
	}

	ex.closeDelimited = fr.Mode == framing.CloseDelimited
	ex.reader.Reset(fr)
	ex.state = stRespBody
	if fr.Mode == framing.NoBody {
		s.finish(ex)
	}

	return true, data, nil
}

func (r Response) Code() status.Code         { return r.ex.code }
func (r Response) Reason() string            { return r.ex.reason }
func (r Response) Proto() proto.Proto        { return r.ex.respProto }
func (r Response) Headers() *headers.Storage { return r.ex.s.headers }
func (r Response) Body() ResponseBody        { return ResponseBody{r.ex} }

// ResponseBody decodes the response body.
type ResponseBody struct {
	ex *exchange
}

// Feed decodes a fragment of the response body. It returns the next decoded
// piece and the not yet consumed remainder; keep calling until extra is
// drained. io.EOF accompanies the last piece of a complete body, after which
// extra belongs to the next pipelined response.
func (b ResponseBody) Feed(data []byte) (piece, extra []byte, err error) {
	ex := b.ex
	s := ex.s
	if ex != s.head() && ex.state != stCleanup {
		panic("hoot: BUG: responses must be read in request order")
	}

	switch ex.state {
	case stRespBody:
	case stCleanup:
		return nil, data, io.EOF
	default:
		panic("hoot: BUG: response body fed before the head completed")
	}

	piece, extra, err = ex.reader.Read(data)
	switch err {
	case nil:
	case io.EOF:
		s.finish(ex)
	default:
		s.poison()
		return nil, nil, err
	}

	return piece, extra, err
}

// ConnClosed tells the exchange the peer closed the connection. io.EOF means
// the body was legitimately terminated by the close; any other error means it
// was cut short.
func (b ResponseBody) ConnClosed() error {
	ex := b.ex
	s := ex.s

	err := ex.reader.ConnClosed()
	if err == io.EOF && ex.state == stRespBody {
		s.finish(ex)
	}

	s.poison()
	return err
}
