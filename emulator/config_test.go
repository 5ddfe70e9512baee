package emulator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8cpu/cpu"
)

func TestParseConfig(t *testing.T) {
	assert := assert.New(t)

	text := `
verbose = true
max_ticks = 1000
origin = 0x200

[registers]
v0 = 5
vF = 1
`

	config, err := ParseConfig(text)
	assert.NoError(err)
	assert.True(config.Verbose)
	assert.Equal(1000, config.MaxTicks)
	assert.Equal(0x200, config.Origin)
	assert.Equal(map[string]uint8{"v0": 5, "vF": 1}, config.Registers)

	emu := NewEmulator()
	emu.Config = config
	assert.NoError(emu.Reset())
	assert.Equal(uint8(5), emu.Cpu.Register[0])
	assert.Equal(uint8(1), emu.Cpu.Register[cpu.REG_FLAG])
	assert.Equal(0x200, emu.Pc())
}

func TestParseConfig_Empty(t *testing.T) {
	assert := assert.New(t)

	config, err := ParseConfig("")
	assert.NoError(err)
	assert.Equal(DefaultConfig(), config)
}

func TestParseConfig_Invalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		text string
	}){
		{"syntax", "verbose = "},
		{"type", "origin = 'high'"},
		{"origin", "origin = 0xfff"},
		{"origin-negative", "origin = -2"},
		{"ticks", "max_ticks = -1"},
		{"register", "[registers]\nr0 = 1"},
		{"register-range", "[registers]\nv0 = 256"},
	}

	for _, entry := range table {
		_, err := ParseConfig(entry.text)
		assert.ErrorIs(err, ErrConfig, entry.name)
	}

	_, err := ParseConfig("[registers]\nvg = 1")
	assert.ErrorIs(err, cpu.ErrRegisterInvalid)
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "chip8cpu.toml")
	err := os.WriteFile(path, []byte("max_ticks = 50\n"), 0o644)
	assert.NoError(err)

	config, err := LoadConfig(path)
	assert.NoError(err)
	assert.Equal(50, config.MaxTicks)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)

	err = os.WriteFile(path, []byte("origin = 0x1001\n"), 0o644)
	assert.NoError(err)
	_, err = LoadConfig(path)
	assert.ErrorIs(err, ErrConfig)
	assert.Contains(err.Error(), path)
}
