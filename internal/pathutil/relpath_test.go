package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "simple", in: "a/b/c.txt", want: "a/b/c.txt"},
		{name: "backslashes", in: `a\b\c.txt`, want: "a/b/c.txt"},
		{name: "leading slash", in: "/a/b", want: "a/b"},
		{name: "dot segments collapse", in: "./a/./b", want: "a/b"},
		{name: "double slash collapses", in: "a//b", want: "a/b"},
		{name: "dotdot rejected", in: "a/../b", wantErr: true},
		{name: "empty rejected", in: "", wantErr: true},
		{name: "only dots rejected", in: "./.", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJoinAndSegments(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a", Join("", "a"))
	assert.Equal(t, "a/b", Join("a", "b"))
	assert.Equal(t, []string{"a", "b", "c"}, Segments("a/b/c"))
	assert.Nil(t, Segments(""))
}

func TestDirBaseDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a/b", Dir("a/b/c.txt"))
	assert.Equal(t, "", Dir("c.txt"))
	assert.Equal(t, "c.txt", Base("a/b/c.txt"))
	assert.Equal(t, 3, Depth("a/b/c.txt"))
	assert.Equal(t, 1, Depth("c.txt"))
}
