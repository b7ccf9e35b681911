package status

// HTTPError is a protocol violation, fatal to the exchange it occurred on.
// The code names the response a server-side caller would answer with before
// closing the connection; client-side callers only classify by it.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrBadStatusLine        = NewError(BadRequest, "malformed status line")
	ErrBadHeaderKey         = NewError(BadRequest, "invalid character in header name")
	ErrBadHeaderValue       = NewError(BadRequest, "invalid character in header value")
	ErrBadContentLength     = NewError(BadRequest, "malformed Content-Length value")
	ErrContentLengthsDiffer = NewError(BadRequest, "conflicting Content-Length values")
	ErrAmbiguousFraming     = NewError(BadRequest, "both Content-Length and chunked Transfer-Encoding present")
	ErrBadEncoding          = NewError(BadRequest, "malformed Transfer-Encoding")
	ErrBadChunk             = NewError(BadRequest, "malformed chunk-encoded data")
	ErrMissingHost          = NewError(BadRequest, "exactly one Host header is required")
	ErrUnexpectedEOF        = NewError(BadRequest, "connection closed before the message completed")

	ErrLengthRequired          = NewError(LengthRequired, "request body requires a declared length")
	ErrUnsupportedEncoding     = NewError(UnsupportedMediaType, "transfer encoding is not supported")
	ErrMethodNotImplemented    = NewError(NotImplemented, "request method is not supported")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "HTTP version not supported")

	ErrTooLongRequestLine   = NewError(BadRequest, "request line is too long")
	ErrURITooLong           = NewError(RequestURITooLong, "request URI too long")
	ErrTooLongResponseLine  = NewError(BadRequest, "status line is too long")
	ErrTooManyHeaders       = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrHeaderFieldsTooLarge = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrHeaderFieldTooLarge  = NewError(RequestHeaderFieldsTooLarge, "too large header field")
	ErrTooLongTrailer       = NewError(RequestHeaderFieldsTooLarge, "too many trailer field lines")
)
