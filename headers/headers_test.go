package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	t.Run("case-insensitive lookup", func(t *testing.T) {
		s := New().Add("Content-Type", "text/html")
		require.Equal(t, "text/html", s.Value("content-type"))
		require.Equal(t, "text/html", s.Value("CONTENT-TYPE"))
		require.True(t, s.Has("Content-type"))
		require.False(t, s.Has("Content-Length"))
	})

	t.Run("case preserved", func(t *testing.T) {
		s := New().Add("X-CuStOm", "yes")
		require.Equal(t, []Pair{{"X-CuStOm", "yes"}}, s.Expose())
	})

	t.Run("duplicates ordered", func(t *testing.T) {
		s := New().
			Add("Accept", "text/html").
			Add("Host", "example.com").
			Add("accept", "text/plain")
		require.Equal(t, []string{"text/html", "text/plain"}, s.Values("Accept"))
		require.Equal(t, "text/html", s.Value("Accept"))
		require.Equal(t, 3, s.Len())
	})

	t.Run("iter order", func(t *testing.T) {
		s := New().Add("a", "1").Add("b", "2")
		var got []string
		for k, v := range s.Iter() {
			got = append(got, k+"="+v)
		}
		require.Equal(t, []string{"a=1", "b=2"}, got)
	})

	t.Run("clear", func(t *testing.T) {
		s := NewPrealloc(4).Add("a", "1")
		require.False(t, s.Empty())
		s.Clear()
		require.True(t, s.Empty())
		require.Nil(t, s.Values("a"))
		require.Equal(t, "fallback", s.ValueOr("a", "fallback"))
	})
}
