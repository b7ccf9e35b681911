package body

import (
	"io"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/http/status"
	"github.com/stretchr/testify/require"
)

func newReader(fr framing.Framing) *Reader {
	r := NewReader(&config.Default().Body)
	r.Reset(fr)
	return r
}

// drain feeds raw into the reader in fragments of at most n bytes and glues
// the decoded pieces back together.
func drain(t *testing.T, r *Reader, raw []byte, n int) string {
	t.Helper()

	var decoded []byte
	for len(raw) > 0 {
		part := raw
		if len(part) > n {
			part = part[:n]
		}
		raw = raw[len(part):]

		for {
			piece, extra, err := r.Read(part)
			decoded = append(decoded, piece...)
			if err == io.EOF {
				require.Empty(t, raw)
				return string(decoded)
			}

			require.NoError(t, err)
			if len(extra) == 0 {
				break
			}

			part = extra
		}
	}

	t.Fatal("body did not complete")
	return ""
}

func TestReaderFixed(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.FixedLength, Length: 5})
		piece, extra, err := r.Read([]byte("hello"))
		require.Equal(t, io.EOF, err)
		require.Equal(t, "hello", string(piece))
		require.Empty(t, extra)
	})

	t.Run("with pipelined remainder", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.FixedLength, Length: 5})
		piece, extra, err := r.Read([]byte("helloGET /"))
		require.Equal(t, io.EOF, err)
		require.Equal(t, "hello", string(piece))
		require.Equal(t, "GET /", string(extra))
	})

	t.Run("split", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.FixedLength, Length: 10})
		piece, extra, err := r.Read([]byte("hell"))
		require.NoError(t, err)
		require.Equal(t, "hell", string(piece))
		require.Empty(t, extra)

		piece, extra, err = r.Read([]byte("o worl"))
		require.NoError(t, err)
		require.Equal(t, "o worl", string(piece))
		require.Empty(t, extra)

		require.Equal(t, status.ErrUnexpectedEOF, r.ConnClosed())

		piece, _, err = r.Read([]byte("d"))
		require.Equal(t, io.EOF, err)
		require.Equal(t, "d", string(piece))
		require.Equal(t, io.EOF, r.ConnClosed())
	})

	t.Run("zero length completes instantly", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.FixedLength})
		piece, extra, err := r.Read([]byte("leftover"))
		require.Equal(t, io.EOF, err)
		require.Empty(t, piece)
		require.Equal(t, "leftover", string(extra))
	})
}

func TestReaderNoBody(t *testing.T) {
	r := newReader(framing.Framing{Mode: framing.NoBody})
	piece, extra, err := r.Read([]byte("next message"))
	require.Equal(t, io.EOF, err)
	require.Empty(t, piece)
	require.Equal(t, "next message", string(extra))
	require.Equal(t, io.EOF, r.ConnClosed())
}

func TestReaderCloseDelimited(t *testing.T) {
	r := newReader(framing.Framing{Mode: framing.CloseDelimited})

	piece, extra, err := r.Read([]byte("anything "))
	require.NoError(t, err)
	require.Equal(t, "anything ", string(piece))
	require.Empty(t, extra)

	piece, _, err = r.Read([]byte("goes"))
	require.NoError(t, err)
	require.Equal(t, "goes", string(piece))

	require.Equal(t, io.EOF, r.ConnClosed())
}

func TestReaderChunked(t *testing.T) {
	t.Run("single chunk", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, "hello", drain(t, r, []byte("5\r\nhello\r\n0\r\n\r\n"), 1024))
	})

	t.Run("multiple chunks", func(t *testing.T) {
		raw := []byte("7\r\nMozilla\r\n9\r\nDeveloper\r\n7\r\nNetwork\r\n0\r\n\r\n")
		for n := 1; n <= len(raw); n++ {
			r := newReader(framing.Framing{Mode: framing.Chunked})
			require.Equal(t, "MozillaDeveloperNetwork", drain(t, r, raw, n))
		}
	})

	t.Run("empty body", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, "", drain(t, r, []byte("0\r\n\r\n"), 1024))
	})

	t.Run("bare LF framing", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, "ab", drain(t, r, []byte("2\nab\n0\n\n"), 1024))
	})

	t.Run("chunk extension is skipped", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, "data", drain(t, r, []byte("4;ieof=1\r\ndata\r\n0\r\n\r\n"), 1024))
	})

	t.Run("trailer section is discarded", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.Chunked})
		raw := []byte("3\r\nabc\r\n0\r\nExpires: never\r\nETag: \"x\"\r\n\r\n")
		require.Equal(t, "abc", drain(t, r, raw, 1024))
	})

	t.Run("uppercase hex size", func(t *testing.T) {
		payload := uniuri.NewLen(0xAB)
		r := newReader(framing.Framing{Mode: framing.Chunked})
		require.Equal(t, payload, drain(t, r, []byte("AB\r\n"+payload+"\r\n0\r\n\r\n"), 7))
	})

	t.Run("large randomized body", func(t *testing.T) {
		payload := uniuri.NewLen(4096)
		raw := []byte("1000\r\n" + payload + "\r\n0\r\n\r\n")
		for _, n := range []int{1, 2, 3, 64, len(raw)} {
			r := newReader(framing.Framing{Mode: framing.Chunked})
			require.Equal(t, payload, drain(t, r, raw, n))
		}
	})

	t.Run("conn close mid body", func(t *testing.T) {
		r := newReader(framing.Framing{Mode: framing.Chunked})
		_, _, err := r.Read([]byte("5\r\nhel"))
		require.NoError(t, err)
		require.Equal(t, status.ErrUnexpectedEOF, r.ConnClosed())
	})
}

func TestReaderChunkedNegative(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  string
		want error
	}{
		{"not hex", "5g\r\nhello\r\n0\r\n\r\n", status.ErrBadChunk},
		{"empty size line", "\r\nhello\r\n", status.ErrBadChunk},
		{"garbage after size CR", "5\rXhello", status.ErrBadChunk},
		{"missing chunk CRLF", "5\r\nhelloX0\r\n\r\n", status.ErrBadChunk},
		{"garbage after trailer CR", "0\r\n\rX", status.ErrBadChunk},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := newReader(framing.Framing{Mode: framing.Chunked})
			var err error
			data := []byte(tc.raw)
			for len(data) > 0 && err == nil {
				_, data, err = r.Read(data)
			}

			require.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("size with too many digits", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxChunkLengthDigits = 4
		r := NewReader(&cfg.Body)
		r.Reset(framing.Framing{Mode: framing.Chunked})

		_, _, err := r.Read([]byte("10000\r\n"))
		require.ErrorIs(t, err, status.ErrBadChunk)
	})

	t.Run("too many trailer lines", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxTrailerLines = 2
		r := NewReader(&cfg.Body)
		r.Reset(framing.Framing{Mode: framing.Chunked})

		raw := []byte("0\r\nA: 1\r\nB: 2\r\nC: 3\r\n\r\n")
		var err error
		data := raw
		for len(data) > 0 && err == nil {
			_, data, err = r.Read(data)
		}

		require.ErrorIs(t, err, status.ErrTooLongTrailer)
	})
}
