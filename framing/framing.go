// Package framing decides how a message body is delimited on the wire and
// validates the header invariants HTTP/1.1 places on framing.
package framing

import (
	"math"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/lolgesten/hoot/http/method"
	"github.com/lolgesten/hoot/http/status"
)

type Mode uint8

const (
	// NoBody means the message has no body at all.
	NoBody Mode = iota
	// FixedLength means exactly Length bytes follow the header block.
	FixedLength
	// Chunked means the body is a sequence of size-prefixed chunks.
	Chunked
	// CloseDelimited means the body extends until the peer closes the
	// connection. Responses only.
	CloseDelimited
)

func (m Mode) String() string {
	lut := [...]string{
		NoBody:         "no body",
		FixedLength:    "fixed length",
		Chunked:        "chunked",
		CloseDelimited: "close-delimited",
	}
	if int(m) >= len(lut) {
		return ""
	}

	return lut[m]
}

// Framing is the negotiated body delimitation of a single message. It is
// computed once per message and stays immutable for the body phase.
type Framing struct {
	Mode   Mode
	Length uint64
}

// Info accumulates the framing-relevant header fields of a message while its
// header block is parsed or written. Collect fills it one field at a time.
type Info struct {
	ContentLength    uint64
	HasContentLength bool
	// Chunked is set once a Transfer-Encoding header ends in "chunked".
	Chunked             bool
	ConnectionClose     bool
	ConnectionKeepAlive bool
	HostCount           int
}

// Collect inspects one header field and records anything framing-relevant.
// Fields of no interest to framing are ignored. The value is expected to
// carry no leading or trailing whitespace.
func (info *Info) Collect(key, value string) error {
	switch len(key) {
	case len("Host"):
		if strcomp.EqualFold(key, "Host") {
			info.HostCount++
		}
	case len("Connection"):
		if strcomp.EqualFold(key, "Connection") {
			info.collectConnection(value)
		}
	case len("Content-Length"):
		if strcomp.EqualFold(key, "Content-Length") {
			return info.collectContentLength(value)
		}
	case len("Transfer-Encoding"):
		if strcomp.EqualFold(key, "Transfer-Encoding") {
			return info.collectTransferEncoding(value)
		}
	}

	return nil
}

func (info *Info) collectContentLength(value string) error {
	if len(value) == 0 {
		return status.ErrBadContentLength
	}

	var n uint64
	for i := 0; i < len(value); i++ {
		char := value[i]
		if char < '0' || char > '9' {
			return status.ErrBadContentLength
		}

		if n > (math.MaxUint64-uint64(char-'0'))/10 {
			// the counter must never wrap silently
			return status.ErrBadContentLength
		}

		n = n*10 + uint64(char-'0')
	}

	if info.HasContentLength && info.ContentLength != n {
		return status.ErrContentLengthsDiffer
	}

	info.HasContentLength = true
	info.ContentLength = n
	return nil
}

func (info *Info) collectTransferEncoding(value string) error {
	for token := range tokens(value) {
		if info.Chunked {
			// chunked was not the final coding
			return status.ErrBadEncoding
		}

		switch {
		case strcomp.EqualFold(token, "chunked"):
			info.Chunked = true
		case strcomp.EqualFold(token, "identity"):
		default:
			return status.ErrUnsupportedEncoding
		}
	}

	return nil
}

func (info *Info) collectConnection(value string) {
	for token := range tokens(value) {
		switch {
		case strcomp.EqualFold(token, "close"):
			info.ConnectionClose = true
		case strcomp.EqualFold(token, "keep-alive"):
			info.ConnectionKeepAlive = true
		}
	}
}

// ForRequest computes the framing of a request body from its header block.
func ForRequest(info Info) (Framing, error) {
	if err := checkConflict(info); err != nil {
		return Framing{}, err
	}

	switch {
	case info.Chunked:
		return Framing{Mode: Chunked}, nil
	case info.HasContentLength && info.ContentLength > 0:
		return Framing{Mode: FixedLength, Length: info.ContentLength}, nil
	default:
		// a request without framing headers has no body; requests are never
		// close-delimited
		return Framing{Mode: NoBody}, nil
	}
}

// ForResponse computes the framing of a response body from its header block,
// the method of the request it answers and its status code.
func ForResponse(info Info, reqMethod method.Method, code status.Code) (Framing, error) {
	if err := checkConflict(info); err != nil {
		return Framing{}, err
	}

	switch {
	case reqMethod == method.HEAD, code.Informational(),
		code == status.NoContent, code == status.NotModified:
		return Framing{Mode: NoBody}, nil
	case info.Chunked:
		return Framing{Mode: Chunked}, nil
	case info.HasContentLength:
		if info.ContentLength == 0 {
			return Framing{Mode: NoBody}, nil
		}

		return Framing{Mode: FixedLength, Length: info.ContentLength}, nil
	default:
		return Framing{Mode: CloseDelimited}, nil
	}
}

// ValidateHost enforces the HTTP/1.1 requirement of exactly one Host header
// per request.
func ValidateHost(info Info) error {
	if info.HostCount != 1 {
		return status.ErrMissingHost
	}

	return nil
}

func checkConflict(info Info) error {
	if info.HasContentLength && info.Chunked {
		// ambiguous framing smuggles requests, always reject
		return status.ErrAmbiguousFraming
	}

	return nil
}

// tokens iterates the comma-separated tokens of a list-valued header,
// whitespace-trimmed; empty tokens are skipped.
func tokens(value string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for len(value) > 0 {
			var token string
			if comma := strings.IndexByte(value, ','); comma == -1 {
				token, value = value, ""
			} else {
				token, value = value[:comma], value[comma+1:]
			}

			token = strings.Trim(token, " \t")
			if len(token) == 0 {
				continue
			}

			if !yield(token) {
				return
			}
		}
	}
}
