package mix

import (
	"errors"
	"testing"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadowing(t *testing.T) {
	a, err := OpenBytes("a.mix", buildMix(0, []member{{"x", []byte("from a")}, {"only-a", []byte("a")}}))
	require.NoError(t, err)
	b, err := OpenBytes("b.mix", buildMix(0, []member{{"x", []byte("from b")}}))
	require.NoError(t, err)

	r := NewResolver()
	require.NoError(t, r.Mount(a))
	require.NoError(t, r.Mount(b))

	got, err := r.Extract("x")
	require.NoError(t, err)
	assert.Equal(t, "from b", string(got))

	got, err = r.Extract("only-a")
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))

	_, err = r.Extract("nowhere")
	assert.True(t, errors.Is(err, binio.ErrNotFound))

	order := r.Archives()
	assert.Equal(t, "b.mix", order[0].Name())
	assert.Equal(t, "a.mix", order[1].Name())
}

func TestLookupOrder(t *testing.T) {
	a := FromFiles("a", []File{{Name: "x", Data: []byte("a")}})
	b := FromFiles("b", []File{{Name: "x", Data: []byte("b")}})

	got, _, err := Lookup([]*Archive{a, b}, "x")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name())

	got, _, err = Lookup([]*Archive{b, a}, "x")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name())
}

func TestMountNested(t *testing.T) {
	inner := buildMix(0, []member{{"inner.ini", []byte("[A]\nB=1\n")}})
	outer, err := OpenBytes("ra2.mix", buildMix(0, []member{{"local.mix", inner}}))
	require.NoError(t, err)

	r := NewResolver()
	require.NoError(t, r.Mount(outer))
	child, err := r.MountNested("local.mix")
	require.NoError(t, err)
	assert.Equal(t, "local.mix", child.Name())

	got, err := r.Extract("inner.ini")
	require.NoError(t, err)
	assert.Equal(t, "[A]\nB=1\n", string(got))

	// the same byte range again is a cycle
	_, err = r.MountNested("local.mix")
	require.Error(t, err)
	assert.True(t, errors.Is(err, binio.ErrFormat))

	assert.Error(t, r.Mount(outer))
}

func TestMountAllSkipsMissing(t *testing.T) {
	inner := buildMix(0, []member{{"a.txt", []byte("a")}})
	outer, err := OpenBytes("ra2.mix", buildMix(0, []member{{"cache.mix", inner}}))
	require.NoError(t, err)

	r := NewResolver()
	require.NoError(t, r.Mount(outer))
	n, err := r.MountAll([]string{"expandmd01.mix", "cache.mix", "missing.mix"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, r.Has("a.txt"))
	assert.NoError(t, r.Close())
	assert.Empty(t, r.Archives())
}
