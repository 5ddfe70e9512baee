package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []uint8
	Data      bool // Set if Bytes are not instructions.
	LinkLabel string
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode which assembled the byte at addr.
// Index is the offset of addr within the opcode's bytes.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, from address 0 up to
// the last assembled byte.
func (prog *Program) Binary() (bin []uint8) {
	var size int
	for _, op := range prog.Opcodes {
		size = max(size, op.Addr+len(op.Bytes))
	}

	if size == 0 {
		return
	}

	bin = make([]uint8, size)
	for _, op := range prog.Opcodes {
		copy(bin[op.Addr:], op.Bytes)
	}

	return
}

// Load writes the program into the memory of a CPU.
// Other memory, and the CPU registers, are left untouched.
func (prog *Program) Load(cpu *Cpu) (err error) {
	for _, op := range prog.Opcodes {
		if op.Addr < 0 || op.Addr+len(op.Bytes) > len(cpu.Memory) {
			err = ErrAddress{Addr: op.Addr, Err: ErrValueRange}
			return
		}
	}

	for _, op := range prog.Opcodes {
		copy(cpu.Memory[op.Addr:], op.Bytes)
	}

	return
}

// Codes iterates over the instruction words of the program.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.Data {
				continue
			}
			for n := 0; n+1 < len(op.Bytes); n += INSTRUCTION_SIZE {
				code := Code(uint16(op.Bytes[n])<<8 | uint16(op.Bytes[n+1]))
				if !yield(uint16(op.Addr+n), code) {
					return
				}
			}
		}
	}
}
