package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRom(t *testing.T) {
	assert := assert.New(t)

	rom := NewRom("f6.ch8", nil)
	assert.Equal(ROM_CLOSED, rom.State)
	assert.Equal(0, rom.Len())
	assert.Equal("f6.ch8", rom.Name)
	assert.Equal("<f6.ch8 (CLOSED)>", rom.String())

	rom.Open()
	assert.Equal("<f6.ch8 (OPEN)>", rom.String())

	assert.NoError(rom.Close())
	assert.Equal(ROM_CLOSED, rom.State)
}

func TestRomState_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("OPEN", ROM_OPEN.String())
	assert.Equal("CLOSED", ROM_CLOSED.String())
	assert.Equal("RomState(2)", RomState(2).String())
}

func TestReadRom(t *testing.T) {
	assert := assert.New(t)

	rom, err := ReadRom("add.ch8", bytes.NewReader([]uint8{0x80, 0x14, 0x00, 0x00}))
	assert.NoError(err)
	assert.Equal(ROM_OPEN, rom.State)
	assert.Equal(4, rom.Len())

	_, err = ReadRom("big.ch8", bytes.NewReader(make([]uint8, ROM_SIZE_LIMIT+1)))
	assert.ErrorIs(err, ErrRomTooLarge)

	rom, err = ReadRom("full.ch8", bytes.NewReader(make([]uint8, ROM_SIZE_LIMIT)))
	assert.NoError(err)
	assert.Equal(ROM_SIZE_LIMIT, rom.Len())
}

func TestOpenRom(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "call.ch8")
	err := os.WriteFile(path, []uint8{0x21, 0x00, 0x00, 0x00}, 0o644)
	assert.NoError(err)

	rom, err := OpenRom(path)
	assert.NoError(err)
	assert.Equal("<call.ch8 (OPEN)>", rom.String())
	assert.Equal([]uint8{0x21, 0x00, 0x00, 0x00}, rom.Data)

	_, err = OpenRom(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestRom_Load(t *testing.T) {
	assert := assert.New(t)

	memory := make([]uint8, 16)

	rom := NewRom("load", []uint8{1, 2, 3, 4})
	assert.ErrorIs(rom.Load(memory, 0), ErrRomClosed)

	rom.Open()
	assert.NoError(rom.Load(memory, 4))
	assert.Equal([]uint8{0, 0, 0, 0, 1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0}, memory)

	assert.NoError(rom.Load(memory, 12))
	assert.ErrorIs(rom.Load(memory, 13), ErrRomTooLarge)
	assert.ErrorIs(rom.Load(memory, -1), ErrRomOrigin)
	assert.ErrorIs(rom.Load(memory, 17), ErrRomOrigin)
}
