package body

import (
	"io"
	"testing"

	"github.com/dchest/uniuri"
	hoot "github.com/lolgesten/hoot"
	"github.com/lolgesten/hoot/buffview"
	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/framing"
	"github.com/stretchr/testify/require"
)

func newWriter(fr framing.Framing) *Writer {
	w := new(Writer)
	w.Reset(fr)
	return w
}

// pump pushes payload through the writer using an output window of the given
// capacity, draining it whenever the writer reports it full, and returns
// everything that came out.
func pump(t *testing.T, w *Writer, payload []byte, capacity int) string {
	t.Helper()

	out := buffview.Wrap(make([]byte, capacity))
	var wire []byte

	for len(payload) > 0 {
		n, err := w.Write(payload, &out)
		payload = payload[n:]
		if err == hoot.ErrOutputFull {
			require.Zero(t, n)
			wire = append(wire, out.Bytes()...)
			out.Reset()
			continue
		}

		require.NoError(t, err)
	}

	for {
		err := w.Finish(&out)
		if err == hoot.ErrOutputFull {
			wire = append(wire, out.Bytes()...)
			out.Reset()
			continue
		}

		require.NoError(t, err)
		break
	}

	return string(append(wire, out.Bytes()...))
}

func TestWriterFixed(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.FixedLength, Length: 5})
		require.Equal(t, "hello", pump(t, w, []byte("hello"), 64))
		require.True(t, w.Finished())
	})

	t.Run("across drains", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.FixedLength, Length: 26})
		require.Equal(t, "abcdefghijklmnopqrstuvwxyz",
			pump(t, w, []byte("abcdefghijklmnopqrstuvwxyz"), 7))
	})

	t.Run("overrun", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.FixedLength, Length: 3})
		out := buffview.Wrap(make([]byte, 64))
		n, err := w.Write([]byte("toolong"), &out)
		require.Zero(t, n)
		require.ErrorIs(t, err, hoot.ErrLongBody)
	})

	t.Run("underrun", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.FixedLength, Length: 10})
		out := buffview.Wrap(make([]byte, 64))
		_, err := w.Write([]byte("short"), &out)
		require.NoError(t, err)
		require.ErrorIs(t, w.Finish(&out), hoot.ErrShortBody)
	})

	t.Run("write after finish", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.FixedLength, Length: 0})
		out := buffview.Wrap(make([]byte, 64))
		require.NoError(t, w.Finish(&out))
		_, err := w.Write([]byte("x"), &out)
		require.ErrorIs(t, err, hoot.ErrBodySent)
		require.ErrorIs(t, w.Finish(&out), hoot.ErrBodySent)
	})
}

func TestWriterNoBody(t *testing.T) {
	w := newWriter(framing.Framing{Mode: framing.NoBody})
	out := buffview.Wrap(make([]byte, 8))

	n, err := w.Write([]byte("this would be a HEAD payload"), &out)
	require.NoError(t, err)
	require.Equal(t, 28, n)
	require.Zero(t, out.Len())
	require.NoError(t, w.Finish(&out))
	require.Zero(t, out.Len())
}

func TestWriterCloseDelimited(t *testing.T) {
	w := newWriter(framing.Framing{Mode: framing.CloseDelimited})
	require.Equal(t, "stream until close", pump(t, w, []byte("stream until close"), 5))
}

func TestWriterChunked(t *testing.T) {
	roundTrip := func(t *testing.T, wire string) string {
		r := NewReader(&config.Default().Body)
		r.Reset(framing.Framing{Mode: framing.Chunked})

		var decoded []byte
		data := []byte(wire)
		for {
			piece, extra, err := r.Read(data)
			decoded = append(decoded, piece...)
			if err == io.EOF {
				require.Empty(t, extra)
				return string(decoded)
			}

			require.NoError(t, err)
			data = extra
		}
	}

	t.Run("single chunk", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, "5\r\nhello\r\n0\r\n\r\n", pump(t, w, []byte("hello"), 64))
	})

	t.Run("empty body", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, "0\r\n\r\n", pump(t, w, nil, 64))
	})

	t.Run("size is lowercase hex", func(t *testing.T) {
		payload := uniuri.NewLen(0xab)
		w := newWriter(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, "ab\r\n"+payload+"\r\n0\r\n\r\n", pump(t, w, []byte(payload), 1024))
	})

	t.Run("tight output splits into chunks", func(t *testing.T) {
		payload := uniuri.NewLen(333)
		for _, capacity := range []int{6, 7, 16, 64} {
			w := newWriter(framing.Framing{Mode: framing.Chunked})
			wire := pump(t, w, []byte(payload), capacity)
			require.Equal(t, payload, roundTrip(t, wire))
		}
	})

	t.Run("large randomized round trip", func(t *testing.T) {
		payload := uniuri.NewLen(64 * 1024)
		w := newWriter(framing.Framing{Mode: framing.Chunked})
		wire := pump(t, w, []byte(payload), 4096)
		require.Equal(t, payload, roundTrip(t, wire))
	})

	t.Run("output too small for any chunk", func(t *testing.T) {
		w := newWriter(framing.Framing{Mode: framing.Chunked})
		out := buffview.Wrap(make([]byte, 5))
		n, err := w.Write([]byte("hello"), &out)
		require.Zero(t, n)
		require.ErrorIs(t, err, hoot.ErrOutputFull)

		// the zero trailer still fits
		require.NoError(t, w.Finish(&out))
		require.Equal(t, "0\r\n\r\n", string(out.Bytes()))
	})
}
