package method

type Method uint8

const (
	Unknown Method = iota
	GET
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH

	// Count is the number of supported methods, Unknown excluded.
	Count = iota - 1
)

func Parse(str string) Method {
	switch len(str) {
	case 3:
		if str == "GET" {
			return GET
		} else if str == "PUT" {
			return PUT
		}
	case 4:
		if str == "POST" {
			return POST
		} else if str == "HEAD" {
			return HEAD
		}
	case 5:
		if str == "PATCH" {
			return PATCH
		} else if str == "TRACE" {
			return TRACE
		}
	case 6:
		if str == "DELETE" {
			return DELETE
		}
	case 7:
		if str == "CONNECT" {
			return CONNECT
		} else if str == "OPTIONS" {
			return OPTIONS
		}
	}

	return Unknown
}

func (m Method) String() string {
	lut := [...]string{
		GET:     "GET",
		HEAD:    "HEAD",
		POST:    "POST",
		PUT:     "PUT",
		DELETE:  "DELETE",
		CONNECT: "CONNECT",
		OPTIONS: "OPTIONS",
		TRACE:   "TRACE",
		PATCH:   "PATCH",
	}
	if int(m) >= len(lut) {
		return ""
	}

	return lut[m]
}

// ForbidsBody reports whether a request of this method must not carry a body.
func (m Method) ForbidsBody() bool {
	switch m {
	case GET, HEAD, TRACE, CONNECT:
		return true
	default:
		return false
	}
}

// RequiresBody reports whether a request of this method is expected to carry
// a body, even an empty one.
func (m Method) RequiresBody() bool {
	switch m {
	case POST, PUT, PATCH:
		return true
	default:
		return false
	}
}
