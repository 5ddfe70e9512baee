// Package io provides program images for the CHIP-8 CPU emulator.
//
// A Rom is a named raw memory image, as read from a file, which is copied
// into CPU memory at a load origin before execution.
package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const ROM_SIZE_LIMIT = 0x1000 // Largest image that fits in memory.

// RomState is the open or closed state of a Rom.
type RomState int

//go:generate go tool stringer -linecomment -type=RomState
const (
	ROM_CLOSED = RomState(0) // CLOSED
	ROM_OPEN   = RomState(1) // OPEN
)

// Rom is a named raw memory image.
type Rom struct {
	Name  string
	Data  []uint8
	State RomState
}

// NewRom creates a closed Rom. Data is not copied.
func NewRom(name string, data []uint8) (rom *Rom) {
	rom = &Rom{
		Name: name,
		Data: data,
	}

	return
}

// ReadRom reads an open Rom from a stream.
func ReadRom(name string, in io.Reader) (rom *Rom, err error) {
	data, err := io.ReadAll(io.LimitReader(in, ROM_SIZE_LIMIT+1))
	if err != nil {
		return
	}

	if len(data) > ROM_SIZE_LIMIT {
		err = ErrRomTooLarge
		return
	}

	rom = NewRom(name, data)
	rom.Open()

	return
}

// OpenRom reads an open Rom from a file.
// The Rom is named by the base name of the path.
func OpenRom(path string) (rom *Rom, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return ReadRom(filepath.Base(path), inf)
}

// Len returns the size of the image in bytes.
func (rom *Rom) Len() int {
	return len(rom.Data)
}

// Open marks the Rom as readable.
func (rom *Rom) Open() {
	rom.State = ROM_OPEN
}

// Close marks the Rom as unreadable.
func (rom *Rom) Close() (err error) {
	rom.State = ROM_CLOSED
	return
}

// Load copies the image into memory at origin.
func (rom *Rom) Load(memory []uint8, origin int) (err error) {
	if rom.State != ROM_OPEN {
		err = ErrRomClosed
		return
	}

	if origin < 0 || origin > len(memory) {
		err = ErrRomOrigin
		return
	}

	if len(rom.Data) > len(memory)-origin {
		err = ErrRomTooLarge
		return
	}

	copy(memory[origin:], rom.Data)

	return
}

// String returns the Rom as <name (STATE)>.
func (rom *Rom) String() string {
	return fmt.Sprintf("<%v (%v)>", rom.Name, rom.State)
}
