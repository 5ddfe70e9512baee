package emulator

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/chip8cpu/cpu"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("emulator: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is the saved state of the CPU.
type Snapshot struct {
	Register [cpu.REGISTER_COUNT]uint8 `cbor:"1,keyasint"`
	Pc       uint16                    `cbor:"2,keyasint"`
	Stack    []uint16                  `cbor:"3,keyasint"` // Pending frames, oldest first.
	Memory   []uint8                   `cbor:"4,keyasint"`
	Ticks    int                       `cbor:"5,keyasint"`
}

// Snapshot serializes the CPU state to CBOR bytes.
func (emu *Emulator) Snapshot() (data []byte, err error) {
	cp := emu.Cpu

	snap := Snapshot{
		Register: cp.Register,
		Pc:       cp.Pc,
		Stack:    cp.Stack.Frames(),
		Memory:   cp.Memory[:],
		Ticks:    cp.Ticks,
	}

	return cborEncMode.Marshal(&snap)
}

// Restore deserializes the CPU state from CBOR bytes.
// The CPU is unchanged if the snapshot is invalid.
func (emu *Emulator) Restore(data []byte) (err error) {
	var snap Snapshot
	if err = cbor.Unmarshal(data, &snap); err != nil {
		err = errors.Join(ErrSnapshot, err)
		return
	}

	if len(snap.Stack) > cpu.STACK_LIMIT {
		err = errors.Join(ErrSnapshot, cpu.ErrStackFull)
		return
	}

	if len(snap.Memory) != cpu.MEMORY_SIZE {
		err = errors.Join(ErrSnapshot, fmt.Errorf("memory size 0x%x", len(snap.Memory)))
		return
	}

	cp := emu.Cpu
	cp.Register = snap.Register
	cp.Pc = snap.Pc
	cp.Stack.Reset()
	for _, frame := range snap.Stack {
		cp.Stack.Push(frame)
	}
	copy(cp.Memory[:], snap.Memory)
	cp.Ticks = snap.Ticks

	return
}
