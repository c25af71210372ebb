package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	InitRegistry()

	cmd := GetCommand("ui")
	require.NotNil(t, cmd)
	assert.Equal(t, "Interface", cmd.Category)

	assert.Same(t, GetCommand("projects"), GetCommand("ls"))
	assert.Same(t, GetCommand("console"), GetCommand("sh"))
	assert.Same(t, GetCommand("config"), GetCommand("cfg"))

	assert.Nil(t, GetCommand("nonsense"))
}

func TestGetAllCommandsSorted(t *testing.T) {
	InitRegistry()

	all := GetAllCommands()
	require.NotEmpty(t, all)

	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Order, all[i].Order,
			"%s should come before %s", all[i-1].Name, all[i].Name)
	}
}

func TestFindSubCommand(t *testing.T) {
	InitRegistry()

	cfg := GetCommand("config")
	require.NotNil(t, cfg)

	sub := findSubCommand(cfg, "show")
	require.NotNil(t, sub)
	assert.NotNil(t, sub.Handler)

	assert.Nil(t, findSubCommand(cfg, "edit"))
	assert.Nil(t, findSubCommand(nil, "show"))
}

func TestGetCommandNamesIncludesAliases(t *testing.T) {
	InitRegistry()

	names := GetCommandNames()
	assert.Contains(t, names, "models")
	assert.Contains(t, names, "m")
	assert.Contains(t, names, "demo")
}
