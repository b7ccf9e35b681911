package server

import (
	"io"

	hoot "github.com/lolgesten/hoot"
	"github.com/lolgesten/hoot/buffview"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/headers"
	"github.com/lolgesten/hoot/http/method"
	"github.com/lolgesten/hoot/http/proto"
	"github.com/lolgesten/hoot/http/status"
	"github.com/lolgesten/hoot/internal/parser"
)

const teChunkedField = "Transfer-Encoding: chunked\r\n"

// Request consumes the request head. After a parse error the exchange stays
// usable for writing an error response, but the connection closes once it is
// sent.
type Request struct {
	s *Session
}

// Feed parses a fragment of the request head. Once done is true the request
// line and headers are available and extra holds the unconsumed remainder,
// which belongs to the request body.
func (r Request) Feed(data []byte) (done bool, extra []byte, err error) {
	s := r.s
	if s.state != svHead {
		panic("hoot: BUG: request head already parsed")
	}

	done, extra, err = s.parser.Parse(data)
	if err != nil {
		return false, nil, r.fail(err)
	}

	if !done {
		return false, nil, nil
	}

	info := s.parser.Info()
	if s.parser.Proto() == proto.HTTP11 {
		if err = framing.ValidateHost(*info); err != nil {
			return false, nil, r.fail(err)
		}
	}

	fr, err := framing.ForRequest(*info)
	if err != nil {
		return false, nil, r.fail(err)
	}

	s.reader.Reset(fr)
	if fr.Mode == framing.NoBody {
		s.bodyDone = true
		s.state = svRespond
	} else {
		s.state = svReqBody
	}

	return true, extra, nil
}

// fail keeps the exchange alive so the caller can answer with an error
// response; the connection closes after it.
func (r Request) fail(err error) error {
	s := r.s
	s.failed = true
	s.bodyDone = true
	s.state = svRespond
	return err
}

func (r Request) Method() method.Method     { return r.s.parser.Method() }
func (r Request) Path() string              { return r.s.parser.Path() }
func (r Request) Proto() proto.Proto        { return r.s.parser.Proto() }
func (r Request) Headers() *headers.Storage { return r.s.headers }

func (r Request) Body() RequestBody {
	return RequestBody{r.s}
}

// Respond opens the response once the request body is fully consumed.
// Responding while body bytes are still owed is a caller bug.
func (r Request) Respond() ResponseLine {
	s := r.s
	if !s.bodyDone {
		panic("hoot: BUG: responding before the request body completed")
	}

	if s.state != svRespond {
		panic("hoot: BUG: response already started")
	}

	return ResponseLine{s}
}

// RequestBody decodes the request body.
type RequestBody struct {
	s *Session
}

// Feed decodes a fragment of the request body, returning the next decoded
// piece and the not yet consumed remainder. io.EOF accompanies the last
// piece; extra then holds the first bytes of the next pipelined request.
func (b RequestBody) Feed(data []byte) (piece, extra []byte, err error) {
	s := b.s
	if s.state != svReqBody {
		panic("hoot: BUG: request body fed outside the body phase")
	}

	piece, extra, err = s.reader.Read(data)
	switch err {
	case nil:
	case io.EOF:
		s.bodyDone = true
		s.state = svRespond
	default:
		s.failed = true
		s.bodyDone = true
		s.state = svRespond
		return nil, nil, err
	}

	return piece, extra, err
}

// ConnClosed tells the exchange the peer closed the connection mid-request.
func (b RequestBody) ConnClosed() error {
	b.s.poison()
	return b.s.reader.ConnClosed()
}

// ResponseLine writes the status line.
type ResponseLine struct {
	s *Session
}

// Line serializes "PROTO code reason\r\n" atomically, echoing the request's
// protocol version. An empty reason is filled from the standard status text.
func (r ResponseLine) Line(code status.Code, reason string, dst *buffview.View) (Fields, error) {
	s := r.s
	if s.state != svRespond {
		panic("hoot: BUG: status line already written")
	}

	if code < 100 || code > 999 {
		return Fields{}, status.ErrBadStatusLine
	}

	if reason == "" {
		reason = string(status.Text(code))
	}

	p := s.respProto()
	need := len(p.String()) + 1 + 3 + 1 + len(reason) + 2
	if dst.Free() < need {
		return Fields{}, hoot.ErrOutputFull
	}

	dst.AppendString(p.String())
	dst.AppendByte(' ')
	dst.AppendByte('0' + byte(code/100))
	dst.AppendByte('0' + byte(code/10%10))
	dst.AppendByte('0' + byte(code%10))
	dst.AppendByte(' ')
	dst.AppendString(reason)
	dst.AppendString("\r\n")

	s.code = code
	s.state = svRespFields

	return Fields{s}, nil
}

// Fields writes the response header block.
type Fields struct {
	s *Session
}

func (f Fields) Header(key, value string, dst *buffview.View) error {
	s := f.s
	if s.state != svRespFields {
		panic("hoot: BUG: header written outside the field phase")
	}

	if !parser.ValidHeaderKey(key) {
		return status.ErrBadHeaderKey
	}

	if !parser.ValidHeaderValue(value) {
		return status.ErrBadHeaderValue
	}

	if s.headerCount+1 > s.cfg.Headers.Number.Maximal {
		return status.ErrTooManyHeaders
	}

	if dst.Free() < len(key)+2+len(value)+2 {
		return hoot.ErrOutputFull
	}

	if err := s.respInfo.Collect(key, value); err != nil {
		return err
	}

	s.headerCount++
	dst.AppendString(key)
	dst.AppendString(": ")
	dst.AppendString(value)
	dst.AppendString("\r\n")

	return nil
}

// Body ends the header block and opens the response body. The framing
// follows the declared headers; a response without framing headers is
// upgraded to chunked when the connection is staying open, and falls back to
// close-delimited otherwise.
//
// Responses that cannot carry a body (to HEAD requests, 1xx, 204, 304)
// accept body writes and drop them, so handlers need not special-case HEAD.
func (f Fields) Body(dst *buffview.View) (Body, error) {
	s := f.s
	if s.state != svRespFields {
		panic("hoot: BUG: fields already finished")
	}

	fr, err := framing.ForResponse(s.respInfo, s.parser.Method(), s.code)
	if err != nil {
		return Body{}, err
	}

	if fr.Mode == framing.Chunked && !s.respProto().KeepAlive() {
		// an HTTP/1.0 peer cannot parse chunked framing
		return Body{}, status.ErrUnsupportedEncoding
	}

	need := 2
	upgrade := false
	if fr.Mode == framing.CloseDelimited {
		if s.connectionAlive() && s.respProto() == proto.HTTP11 {
			fr = framing.Framing{Mode: framing.Chunked}
			upgrade = true
			need += len(teChunkedField)
		} else {
			s.respInfo.ConnectionClose = true
		}
	}

	if dst.Free() < need {
		return Body{}, hoot.ErrOutputFull
	}

	if upgrade {
		dst.AppendString(teChunkedField)
	}

	dst.AppendString("\r\n")
	s.writer.Reset(fr)
	s.state = svRespBody

	return Body{s}, nil
}

// connectionAlive reports whether the exchange so far permits keeping the
// connection open once the response completes.
func (s *Session) connectionAlive() bool {
	info := s.parser.Info()
	keep := !s.failed && !info.ConnectionClose && !s.respInfo.ConnectionClose
	if !s.parser.Proto().KeepAlive() {
		keep = keep && info.ConnectionKeepAlive
	}

	return keep
}

// Body streams the response body.
type Body struct {
	s *Session
}

// Write encodes a prefix of data into dst and reports how much of data was
// consumed. ErrOutputFull asks the caller to drain dst and retry with the
// rest.
func (b Body) Write(data []byte, dst *buffview.View) (n int, err error) {
	if b.s.state != svRespBody {
		panic("hoot: BUG: body written outside the body phase")
	}

	return b.s.writer.Write(data, dst)
}

// Finish seals the body and completes the exchange. On ErrOutputFull drain
// dst and call Finish again.
func (b Body) Finish(dst *buffview.View) error {
	s := b.s
	if s.state != svRespBody {
		panic("hoot: BUG: body already finished")
	}

	if err := s.writer.Finish(dst); err != nil {
		return err
	}

	s.finish()
	return nil
}
