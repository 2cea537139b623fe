package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestDefaults(t *testing.T) {
	c, err := Decode(New(""))
	require.NoError(t, err)
	assert.Equal(t, ".", c.GameDir)
	assert.Equal(t, DefaultArchives, c.Archives)
	assert.Equal(t, "unittem.pal", c.Palette)
	assert.Equal(t, int64(256<<20), c.CacheBytes)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 1280, c.View.Width)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ra2view.yaml")
	yaml := "game_dir: /games/ra2\narchives: [ra2.mix]\npalette: isotem.pal\nworkers: 0\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	os.Setenv("RA2VIEW_PALETTE", "unitsno.pal")
	defer os.Unsetenv("RA2VIEW_PALETTE")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/games/ra2", c.GameDir)
	assert.Equal(t, []string{"ra2.mix"}, c.Archives)
	assert.Equal(t, "unitsno.pal", c.Palette)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 1, c.Workers)
	assert.Equal(t, DefaultNested, c.Nested)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLogSetup(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	defer log.SetLevel(log.InfoLevel)

	assert.Error(t, Log{Level: "loud"}.Setup())

	require.NoError(t, Log{Level: "warn", Format: "json"}.Setup())
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	w := Log{File: filepath.Join(t.TempDir(), "ra2view.log"), MaxSizeMB: 1}.Writer()
	lj, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, 1, lj.MaxSize)
	assert.Equal(t, os.Stderr, Log{}.Writer())
}
