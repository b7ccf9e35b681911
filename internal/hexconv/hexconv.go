package hexconv

// Halfbyte maps an ASCII character to its hex digit value, 0xFF marking
// everything that is not a hex digit.
var Halfbyte = [256]byte{}

func init() {
	for i := range Halfbyte {
		Halfbyte[i] = 0xFF
	}

	for c := '0'; c <= '9'; c++ {
		Halfbyte[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		Halfbyte[c] = byte(c-'a') + 0xa
	}

	for c := 'A'; c <= 'F'; c++ {
		Halfbyte[c] = byte(c-'A') + 0xA
	}
}
