// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8cpu/cpu"
	"github.com/ezrec/chip8cpu/internal"
	"github.com/ezrec/chip8cpu/io"
)

var _emulator_defines = map[string]string{
	"PROGRAM_START": fmt.Sprintf("0x%x", PROGRAM_START),
}

const (
	PROGRAM_START = 0x200 // Conventional CHIP-8 program origin.
)

// Emulator state. CPU + program listing + ROM image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Rom      *io.Rom      // Raw image loaded at Config.Origin, if not nil.
	Config   Config       // Emulator configuration.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
		Config:  DefaultConfig(),
	}

	return
}

// verbose reports if either the caller or the configuration asked for logging.
func (emu *Emulator) verbose() bool {
	return emu.Verbose || emu.Config.Verbose
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assembler returns an assembler with the emulator defines predefined.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.verbose()}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	return
}

// Reset the emulator state.
// - Zeros the CPU.
// - Presets the configured registers.
// - Loads the program listing, then the ROM at the origin.
// - Sets the program counter to the origin.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.verbose()

	emu.Cpu.Reset()
	emu.Config.apply(emu.Cpu)

	err = emu.Program.Load(emu.Cpu)
	if err != nil {
		return
	}

	if emu.Rom != nil {
		if emu.verbose() {
			log.Printf("emulator: load %v at 0x%03x", emu.Rom, emu.Config.Origin)
		}
		err = emu.Rom.Load(emu.Cpu.Memory[:], emu.Config.Origin)
		if err != nil {
			return
		}
	}

	emu.Cpu.Pc = uint16(emu.Config.Origin)

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// Code returns the instruction word at the program counter.
func (emu *Emulator) Code() cpu.Code {
	code, _ := emu.Cpu.ReadOpcode()
	return code
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.verbose()

	lineno := emu.LineNo()
	addr := emu.Pc()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Addr: addr, Err: err}
		}
	}()

	done, err = emu.Cpu.Tick()

	return
}

// Run ticks the emulator until a halt, a fault, the configured tick
// limit, or the context is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	var done bool
	for !done {
		if limit := emu.Config.MaxTicks; limit > 0 && emu.Cpu.Ticks >= limit {
			err = ErrTickLimit
			return
		}

		if err = ctx.Err(); err != nil {
			return
		}

		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.verbose() {
		log.Printf("emulator: halted after %v ticks", emu.Cpu.Ticks)
	}

	return
}
