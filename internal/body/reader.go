// Package body frames message payloads: the Reader decodes incoming bodies
// according to their framing, the Writer encodes outgoing ones. Both are
// driven by the caller and never touch a socket.
package body

import (
	"io"

	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/http/status"
	"github.com/lolgesten/hoot/internal/hexconv"
)

type readerState uint8

const (
	eChunkLength readerState = iota + 1
	eChunkLengthExt
	eChunkLengthCR
	eChunkBody
	eChunkBodyCR
	eChunkBodyLF
	eTrailer
	eTrailerLine
	eFinalCR
	eDone
)

// Reader decodes a single message body. Read returns the next decoded piece
// of data along with the not yet consumed remainder of data; the caller keeps
// calling until extra is drained. io.EOF reports a completely received body
// and accompanies its last piece.
//
// Close-delimited bodies never see io.EOF from Read; completion arrives via
// ConnClosed once the peer hangs up.
type Reader struct {
	cfg *config.Body

	mode      framing.Mode
	remaining uint64
	digits    int
	trailers  int
	state     readerState
}

func NewReader(cfg *config.Body) *Reader {
	return &Reader{cfg: cfg}
}

// Reset arms the reader for the body of a new message.
func (r *Reader) Reset(fr framing.Framing) {
	r.mode = fr.Mode
	r.remaining = fr.Length
	r.digits = 0
	r.trailers = 0
	r.state = eChunkLength

	switch fr.Mode {
	case framing.NoBody:
		r.state = eDone
	case framing.FixedLength:
		if fr.Length == 0 {
			r.state = eDone
		}
	}
}

func (r *Reader) Read(data []byte) (body, extra []byte, err error) {
	switch r.mode {
	case framing.NoBody:
		return nil, data, io.EOF
	case framing.FixedLength:
		return r.readFixed(data)
	case framing.CloseDelimited:
		return data, nil, nil
	case framing.Chunked:
		return r.readChunked(data)
	default:
		panic("hoot: BUG: body reader: used before Reset")
	}
}

// ConnClosed tells the reader the peer closed the connection. It returns
// io.EOF when that legitimately terminates the body and ErrUnexpectedEOF when
// the body was cut short.
func (r *Reader) ConnClosed() error {
	if r.mode == framing.CloseDelimited || r.state == eDone {
		return io.EOF
	}

	return status.ErrUnexpectedEOF
}

func (r *Reader) readFixed(data []byte) (body, extra []byte, err error) {
	if r.state == eDone {
		return nil, data, io.EOF
	}

	n := uint64(len(data))
	if n > r.remaining {
		n = r.remaining
	}

	r.remaining -= n
	if r.remaining == 0 {
		r.state = eDone
		err = io.EOF
	}

	return data[:n], data[n:], err
}

func (r *Reader) readChunked(data []byte) (body, extra []byte, err error) {
	switch r.state {
	case eChunkLength:
		goto chunkLength
	case eChunkLengthExt:
		goto chunkLengthExt
	case eChunkLengthCR:
		goto chunkLengthCR
	case eChunkBody:
		goto chunkBody
	case eChunkBodyCR:
		goto chunkBodyCR
	case eChunkBodyLF:
		goto chunkBodyLF
	case eTrailer:
		goto trailer
	case eTrailerLine:
		goto trailerLine
	case eFinalCR:
		goto finalCR
	case eDone:
		return nil, data, io.EOF
	default:
		panic("hoot: BUG: body reader: unknown state")
	}

chunkLength:
	for len(data) > 0 {
		switch char := data[0]; char {
		case '\r':
			data = data[1:]
			goto chunkLengthCR
		case '\n':
			data = data[1:]
			goto chunkLengthDone
		case ';':
			data = data[1:]
			goto chunkLengthExt
		default:
			halfbyte := hexconv.Halfbyte[char]
			if halfbyte == 0xFF {
				return nil, nil, status.ErrBadChunk
			}

			if r.digits++; r.digits > r.cfg.MaxChunkLengthDigits {
				return nil, nil, status.ErrBadChunk
			}

			r.remaining = r.remaining<<4 | uint64(halfbyte)
			data = data[1:]
		}
	}

	r.state = eChunkLength
	return nil, nil, nil

chunkLengthExt:
	for len(data) > 0 {
		switch data[0] {
		case '\r':
			data = data[1:]
			goto chunkLengthCR
		case '\n':
			data = data[1:]
			goto chunkLengthDone
		default:
			data = data[1:]
		}
	}

	r.state = eChunkLengthExt
	return nil, nil, nil

chunkLengthCR:
	if len(data) == 0 {
		r.state = eChunkLengthCR
		return nil, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, status.ErrBadChunk
	}

	data = data[1:]
	goto chunkLengthDone

chunkLengthDone:
	if r.digits == 0 {
		return nil, nil, status.ErrBadChunk
	}

	r.digits = 0
	if r.remaining == 0 {
		goto trailer
	}

	goto chunkBody

chunkBody:
	{
		n := uint64(len(data))
		if n > r.remaining {
			n = r.remaining
		}

		r.remaining -= n
		if r.remaining == 0 && n < uint64(len(data)) {
			body, data = data[:n], data[n:]
			goto chunkBodyCR
		}

		if r.remaining == 0 {
			r.state = eChunkBodyCR
		} else {
			r.state = eChunkBody
		}

		return data[:n], data[n:], nil
	}

chunkBodyCR:
	if len(data) == 0 {
		r.state = eChunkBodyCR
		return body, nil, nil
	}

	switch data[0] {
	case '\r':
		data = data[1:]
		goto chunkBodyLF
	case '\n':
		r.state = eChunkLength
		return body, data[1:], nil
	default:
		return nil, nil, status.ErrBadChunk
	}

chunkBodyLF:
	if len(data) == 0 {
		r.state = eChunkBodyLF
		return body, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, status.ErrBadChunk
	}

	r.state = eChunkLength
	return body, data[1:], nil

trailer:
	if len(data) == 0 {
		r.state = eTrailer
		return body, nil, nil
	}

	switch data[0] {
	case '\r':
		data = data[1:]
		goto finalCR
	case '\n':
		r.state = eDone
		return body, data[1:], io.EOF
	default:
		if r.trailers++; r.trailers > r.cfg.MaxTrailerLines {
			return nil, nil, status.ErrTooLongTrailer
		}

		goto trailerLine
	}

finalCR:
	if len(data) == 0 {
		r.state = eFinalCR
		return body, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, status.ErrBadChunk
	}

	r.state = eDone
	return body, data[1:], io.EOF

trailerLine:
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			data = data[i+1:]
			goto trailer
		}
	}

	r.state = eTrailerLine
	return body, nil, nil
}
