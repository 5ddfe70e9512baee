// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/ezrec/chip8cpu/cpu"
	"github.com/ezrec/chip8cpu/emulator"
	"github.com/ezrec/chip8cpu/io"
)

func main() {
	var compile string
	var rom string
	var config string
	var ticks int
	var snapshot string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to compile")
	flag.StringVar(&rom, "r", "", "Raw ROM image to load")
	flag.StringVar(&config, "f", "", ".toml configuration file")
	flag.IntVar(&ticks, "n", -1, "Tick limit, 0 for none (overrides configuration)")
	flag.StringVar(&snapshot, "s", "", "Save a CBOR snapshot after the run ('-' for stdout)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if snapshot == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatalf("%v: refusing to write a snapshot to a terminal", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(config) != 0 {
		cfg, err := emulator.LoadConfig(config)
		if err != nil {
			log.Fatal(err)
		}
		emu.Config = cfg
	}

	if ticks >= 0 {
		emu.Config.MaxTicks = ticks
	}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := emu.Assembler()
		var prog *cpu.Program
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		emu.Program = prog
	}

	if len(rom) != 0 {
		image, err := io.OpenRom(rom)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
		emu.Rom = image
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Run(context.Background())
	if err != nil {
		name := compile
		if len(name) == 0 {
			name = rom
		}
		log.Printf("%v: %v", name, err)
	}

	// Keep stdout clean for the snapshot stream.
	out := os.Stdout
	if snapshot == "-" {
		out = os.Stderr
	}
	fmt.Fprint(out, emu.Cpu.String())

	if len(snapshot) != 0 {
		data, serr := emu.Snapshot()
		if serr != nil {
			log.Fatal(serr)
		}
		if snapshot == "-" {
			_, serr = os.Stdout.Write(data)
		} else {
			serr = os.WriteFile(snapshot, data, 0o644)
		}
		if serr != nil {
			log.Fatalf("%v: %v", snapshot, serr)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}
