package ini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rules = `; rulesmd.ini excerpt
[General]
Name=Rules
Speed=6 ; inline comment
Strength=0.75
Buildable=yes
this line is noise

[VehicleTypes]
1=HTNK
0=MTNK
2=APOC

[MTNK]
Prerequisite=NAWEAP, GAWEAP
Armor=heavy
Armor=light
`

func TestParseCaseInsensitive(t *testing.T) {
	f, err := Parse("rules.ini", []byte(rules))
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "vehicletypes", "mtnk"}, f.Sections())
	assert.True(t, f.Has("GENERAL"))

	v, ok := f.Get("general", "NAME")
	assert.True(t, ok)
	assert.Equal(t, "Rules", v)
	assert.Equal(t, 6, f.GetInt("General", "speed", 0))
	assert.Equal(t, 0.75, f.GetFloat("general", "strength", 0))
	assert.True(t, f.GetBool("General", "Buildable", false))
	assert.Equal(t, 42, f.GetInt("general", "missing", 42))
	assert.Equal(t, 42, f.GetInt("nosuch", "missing", 42))
	assert.Equal(t, "x", f.GetString("general", "missing", "x"))

	_, ok = f.Get("general", "this line is noise")
	assert.False(t, ok)
}

func TestKeysKeepFileOrder(t *testing.T) {
	f, err := Parse("rules.ini", []byte(rules))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0", "2"}, f.Keys("VehicleTypes"))
	assert.Equal(t, []string{"HTNK", "MTNK", "APOC"}, f.Section("vehicletypes").Values())
	assert.Nil(t, f.Section("nope"))
	assert.Nil(t, f.Keys("nope"))
}

func TestLastAssignmentWins(t *testing.T) {
	f, err := Parse("rules.ini", []byte(rules))
	require.NoError(t, err)
	v, _ := f.Get("MTNK", "Armor")
	assert.Equal(t, "light", v)
	assert.Equal(t, []string{"NAWEAP", "GAWEAP"}, f.GetList("mtnk", "prerequisite"))
}

func TestMerge(t *testing.T) {
	base, err := Parse("rules.ini", []byte(rules))
	require.NoError(t, err)
	mod, err := Parse("rulesmd.ini", []byte("[mtnk]\nArmor=special\nCost=900\n[New]\nA=1\n"))
	require.NoError(t, err)

	base.Merge(mod)
	v, _ := base.Get("MTNK", "armor")
	assert.Equal(t, "special", v)
	assert.Equal(t, 900, base.GetInt("mtnk", "cost", 0))
	assert.Equal(t, 1, base.GetInt("new", "a", 0))
	assert.Equal(t, "Rules", base.GetString("general", "name", ""))

	e := Empty("all")
	e.Merge(mod)
	assert.Equal(t, []string{"mtnk", "new"}, e.Sections())
}
