package buffer

// Buffer accumulates byte sequences that arrive split across reads. Sealed
// segments and the currently open one share a single backing slice, so a
// parser can hand out string views over sealed bytes (header names, values,
// the request target) and keep appending without invalidating them. Total
// growth is capped by limit; Append reports false instead of exceeding it.
type Buffer struct {
	data   []byte
	sealed int
	limit  int
}

func New(initial, limit int) *Buffer {
	return &Buffer{
		data:  make([]byte, 0, initial),
		limit: limit,
	}
}

// Append extends the open segment by piece, or reports false without writing
// anything when that would push the buffer past its limit.
func (b *Buffer) Append(piece []byte) (ok bool) {
	if len(b.data)+len(piece) > b.limit {
		return false
	}

	b.data = append(b.data, piece...)
	return true
}

// SegmentLength returns the size of the open segment.
func (b *Buffer) SegmentLength() int {
	return len(b.data) - b.sealed
}

// Trunc drops the last n bytes of the open segment, at most emptying it.
// Sealed bytes are never touched.
func (b *Buffer) Trunc(n int) {
	if open := b.SegmentLength(); n > open {
		n = open
	}

	b.data = b.data[:len(b.data)-n]
}

// Preview returns the open segment without sealing it.
func (b *Buffer) Preview() []byte {
	return b.data[b.sealed:]
}

// Finish seals the open segment and returns it. The returned slice stays
// valid until Clear.
func (b *Buffer) Finish() []byte {
	segment := b.data[b.sealed:]
	b.sealed = len(b.data)

	return segment
}

// Clear forgets all segments; views returned earlier will be overwritten by
// new data.
func (b *Buffer) Clear() {
	b.sealed = 0
	b.data = b.data[:0]
}
