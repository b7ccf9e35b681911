package body

import (
	"math/bits"
	"strconv"

	hoot "github.com/lolgesten/hoot"
	"github.com/lolgesten/hoot/buffview"
	"github.com/lolgesten/hoot/framing"
)

// chunkZeroTrailer terminates a chunked body.
const chunkZeroTrailer = "0\r\n\r\n"

// Writer encodes an outgoing message body into caller-provided output space.
// Write consumes what fits and reports how much; the caller drains the output
// and retries with the rest. Finish seals the body and verifies the declared
// framing was honored.
type Writer struct {
	mode      framing.Mode
	remaining uint64
	finished  bool
}

// Reset arms the writer for the body of a new message.
func (w *Writer) Reset(fr framing.Framing) {
	w.mode = fr.Mode
	w.remaining = fr.Length
	w.finished = false
}

func (w *Writer) Finished() bool {
	return w.finished
}

func (w *Writer) Write(data []byte, dst *buffview.View) (n int, err error) {
	if w.finished {
		return 0, hoot.ErrBodySent
	}

	switch w.mode {
	case framing.NoBody:
		// accepted and dropped, so HEAD handlers may run the usual
		// write path without emitting anything
		return len(data), nil
	case framing.FixedLength:
		return w.writeFixed(data, dst)
	case framing.CloseDelimited:
		return w.writeRaw(data, dst)
	case framing.Chunked:
		return w.writeChunked(data, dst)
	default:
		panic("hoot: BUG: body writer: used before Reset")
	}
}

// Finish completes the body. For chunked bodies it emits the terminating
// zero chunk, which may not fit: on ErrOutputFull the body stays open and
// Finish must be retried after the output is drained.
func (w *Writer) Finish(dst *buffview.View) error {
	if w.finished {
		return hoot.ErrBodySent
	}

	switch w.mode {
	case framing.FixedLength:
		if w.remaining > 0 {
			return hoot.ErrShortBody
		}
	case framing.Chunked:
		if dst.Free() < len(chunkZeroTrailer) {
			return hoot.ErrOutputFull
		}

		dst.AppendString(chunkZeroTrailer)
	}

	w.finished = true
	return nil
}

func (w *Writer) writeFixed(data []byte, dst *buffview.View) (n int, err error) {
	if uint64(len(data)) > w.remaining {
		return 0, hoot.ErrLongBody
	}

	n, err = w.writeRaw(data, dst)
	w.remaining -= uint64(n)
	return n, err
}

func (w *Writer) writeRaw(data []byte, dst *buffview.View) (n int, err error) {
	n = dst.Free()
	if n >= len(data) {
		n = len(data)
	} else if n == 0 && len(data) > 0 {
		return 0, hoot.ErrOutputFull
	}

	dst.Append(data[:n])
	return n, nil
}

// writeChunked emits the largest prefix of data that fits the output as a
// single complete chunk. Chunks are never split, so a drained reader always
// holds whole framing units.
func (w *Writer) writeChunked(data []byte, dst *buffview.View) (n int, err error) {
	if len(data) == 0 {
		// a zero-length chunk would terminate the body, only Finish
		// may emit one
		return 0, nil
	}

	free := dst.Free()
	overhead := hexlen(uint64(free)) + 4
	if free-overhead <= 0 {
		return 0, hoot.ErrOutputFull
	}

	n = free - overhead
	if n > len(data) {
		n = len(data)
	}

	var size [16]byte
	dst.Append(strconv.AppendUint(size[:0], uint64(n), 16))
	dst.AppendString("\r\n")
	dst.Append(data[:n])
	dst.AppendString("\r\n")
	return n, nil
}

// hexlen returns the number of digits in the hexadecimal form of v.
func hexlen(v uint64) int {
	if v == 0 {
		return 1
	}

	return (bits.Len64(v) + 3) / 4
}
