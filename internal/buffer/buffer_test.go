package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	t.Run("segments", func(t *testing.T) {
		b := New(4, 64)
		require.True(t, b.Append([]byte("Hel")))
		require.Equal(t, 3, b.SegmentLength())
		require.True(t, b.Append([]byte("lo")))
		first := b.Finish()
		require.Equal(t, "Hello", string(first))
		require.Equal(t, 0, b.SegmentLength())

		require.True(t, b.Append([]byte("world")))
		require.Equal(t, "world", string(b.Preview()))
		second := b.Finish()
		require.Equal(t, "world", string(second))
		// sealing the second segment must not move the first
		require.Equal(t, "Hello", string(first))
	})

	t.Run("limit", func(t *testing.T) {
		b := New(0, 5)
		require.True(t, b.Append([]byte("Hello")))
		require.False(t, b.Append([]byte("!")))
		require.Equal(t, "Hello", string(b.Preview()))
	})

	t.Run("trunc", func(t *testing.T) {
		b := New(0, 64)
		require.True(t, b.Append([]byte("value\r")))
		b.Trunc(1)
		require.Equal(t, "value", string(b.Finish()))
		b.Trunc(3) // open segment is empty, nothing to drop
		require.Equal(t, 0, b.SegmentLength())
	})

	t.Run("clear", func(t *testing.T) {
		b := New(0, 8)
		b.Append([]byte("12345678"))
		b.Finish()
		require.False(t, b.Append([]byte("9")))
		b.Clear()
		require.True(t, b.Append([]byte("9")))
	})
}
