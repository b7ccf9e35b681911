package parser

import ascii "github.com/scott-ainsworth/go-ascii"

// tchar marks the RFC 9110 token characters, the only ones legal in header
// names.
var tchar = [256]bool{}

// vchar marks the characters legal in header values: printable ASCII,
// horizontal tab and obs-text. All other control characters are rejected.
var vchar = [256]bool{}

func init() {
	for _, c := range "!#$%&'*+-.^_`|~" {
		tchar[c] = true
	}

	for c := '0'; c <= '9'; c++ {
		tchar[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		tchar[c] = true
	}

	for c := 'A'; c <= 'Z'; c++ {
		tchar[c] = true
	}

	for c := 0; c < 256; c++ {
		vchar[c] = ascii.IsPrint(byte(c)) || c == '\t' || c >= 0x80
	}
}

// ValidHeaderKey reports whether s is a non-empty HTTP token.
func ValidHeaderKey(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !tchar[s[i]] {
			return false
		}
	}

	return true
}

// ValidHeaderValue reports whether s carries no control characters besides
// horizontal tabs.
func ValidHeaderValue(s string) bool {
	for i := 0; i < len(s); i++ {
		if !vchar[s[i]] {
			return false
		}
	}

	return true
}

// ValidTarget reports whether s is usable as a request target: non-empty,
// printable ASCII, no whitespace and no fragment.
func ValidTarget(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !ascii.IsPrint(s[i]) || s[i] == ' ' || s[i] == '#' {
			return false
		}
	}

	return true
}

func targetchar(c byte) bool {
	return ascii.IsPrint(c) && c != ' ' && c != '#'
}
