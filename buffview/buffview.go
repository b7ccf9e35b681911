// Package buffview wraps a caller-owned byte region into an output view the
// engine serializes into. The engine never allocates or grows the region, it
// only advances a fill cursor; the caller drains Bytes() into its transport
// and Resets the view to reuse the same memory.
package buffview

import "github.com/indigo-web/utils/uf"

// View is a fixed-capacity output window. The zero value is unusable, wrap a
// real slice via Wrap.
type View struct {
	mem  []byte
	fill int
}

// Wrap takes the whole of mem as the view's capacity. The view starts empty
// regardless of mem's length.
func Wrap(mem []byte) View {
	return View{mem: mem}
}

func (v *View) Cap() int {
	return len(v.mem)
}

func (v *View) Len() int {
	return v.fill
}

// Free reports how many bytes the view can still accept.
func (v *View) Free() int {
	return len(v.mem) - v.fill
}

// Append writes data, returning false without writing anything if it does
// not fit entirely.
func (v *View) Append(data []byte) (ok bool) {
	if v.fill+len(data) > len(v.mem) {
		return false
	}

	v.fill += copy(v.mem[v.fill:], data)
	return true
}

func (v *View) AppendString(s string) (ok bool) {
	return v.Append(uf.S2B(s))
}

func (v *View) AppendByte(c byte) (ok bool) {
	if v.fill >= len(v.mem) {
		return false
	}

	v.mem[v.fill] = c
	v.fill++
	return true
}

// Bytes returns the filled prefix of the wrapped region. The slice aliases
// caller memory and is invalidated by Reset.
func (v *View) Bytes() []byte {
	return v.mem[:v.fill]
}

// Reset empties the view so the region can be filled again.
func (v *View) Reset() {
	v.fill = 0
}
