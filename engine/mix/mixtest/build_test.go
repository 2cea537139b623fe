package mixtest

import (
	"testing"

	"github.com/1siamBot/ra2view/engine/mix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOpens(t *testing.T) {
	data := Build(true,
		File{"rules.ini", []byte("[General]")},
		File{"gi.shp", []byte{1, 2, 3}},
		File{"rules.ini", []byte("[Patched]")},
	)
	a, err := mix.OpenBytes("out.mix", data)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
	assert.NoError(t, a.VerifyChecksum())

	got, err := a.Extract("rules.ini")
	require.NoError(t, err)
	assert.Equal(t, "[Patched]", string(got))

	e := a.Entries()
	assert.True(t, int32(e[0].ID) < int32(e[1].ID))
}

func TestBuildEmpty(t *testing.T) {
	a, err := mix.OpenBytes("empty.mix", Build(false))
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())
}
