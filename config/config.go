package config

type (
	HeadersNumber struct {
		Default, Maximal int
	}

	HeadersSpace struct {
		Default, Maximal int
	}

	LineSize struct {
		Default, Maximal int
	}
)

type (
	// Line limits the request-line (for servers) or the status-line (for
	// clients). Default is the initially reserved accumulation space, Maximal
	// is the hard cap after which the message is rejected.
	Line struct {
		Size LineSize
	}

	Headers struct {
		// Number limits how many header fields a single message may carry.
		Number HeadersNumber
		// Space limits the accumulated size of the whole header block. Parsed
		// header views point into this space, so it also bounds the engine's
		// per-session memory.
		Space HeadersSpace
		// MaxFieldSize limits a single header name or value.
		MaxFieldSize int
	}

	Body struct {
		// MaxChunkLengthDigits caps the number of hex digits of a single
		// chunk size. 8 digits allow chunks up to 4GiB.
		MaxChunkLengthDigits int
		// MaxTrailerLines caps the field lines of a chunked trailer section.
		// Trailer fields are consumed and discarded.
		MaxTrailerLines int
	}

	Session struct {
		// MaxPipelined is the number of exchanges that may be in flight on a
		// client session at once. 1 disables pipelining: a new exchange may
		// only begin after the previous one fully completed.
		MaxPipelined int
	}
)

// Config holds the limits enforced by the engine. Always derive instances from
// Default() instead of constructing them manually, otherwise zero-valued
// limits will reject everything.
type Config struct {
	Line    Line
	Headers Headers
	Body    Body
	Session Session
}

// Default returns conservative defaults, chosen to interoperate with
// real-world peers rather than to accommodate pathological messages.
func Default() *Config {
	return &Config{
		Line: Line{
			Size: LineSize{
				Default: 1024,
				Maximal: 4 * 1024,
			},
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 8,
				Maximal: 64,
			},
			Space: HeadersSpace{
				Default: 1024,
				Maximal: 8 * 1024,
			},
			MaxFieldSize: 1024,
		},
		Body: Body{
			MaxChunkLengthDigits: 8,
			MaxTrailerLines:      16,
		},
		Session: Session{
			MaxPipelined: 1,
		},
	}
}
