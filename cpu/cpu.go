package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strconv"
	"strings"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":      fmt.Sprintf("0x%x", MEMORY_SIZE),
	"STACK_LIMIT":      fmt.Sprintf("%v", STACK_LIMIT),
	"REG_FLAG":         fmt.Sprintf("%v", REG_FLAG),
	"INSTRUCTION_SIZE": fmt.Sprintf("%v", INSTRUCTION_SIZE),
}

// Cpu is the simulation context for the CHIP-8 style CPU.
//
// All state is exported: the owner loads the registers and memory before
// calling Run, and inspects them afterwards.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REGISTER_COUNT]uint8 // Register bank, v0 to vf.
	Memory   [MEMORY_SIZE]uint8    // Code and data memory.
	Pc       uint16                // Address of the next instruction.
	Stack    Stack                 // Return address stack.

	Ticks int // CPU ticks counter.
}

// NewCpu creates a new CPU with zeroed state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// RegisterIndex returns the register index of a name from v0 to vf.
func RegisterIndex(name string) (index uint8, ok bool) {
	if len(name) != 2 || (name[0] != 'v' && name[0] != 'V') {
		return
	}

	n, err := strconv.ParseUint(name[1:], 16, 4)
	if err != nil {
		return
	}

	return uint8(n), true
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"pc", "sp"}
	for n := range REGISTER_COUNT {
		regs = append(regs, fmt.Sprintf("v%x", n))
	}
	regs = append(regs, "stack")

	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%03X", cpu.Pc)
		case "sp":
			strval = fmt.Sprintf("%02d", cpu.Stack.Sp)
		case "stack":
			var frames []string
			for _, frame := range cpu.Stack.Frames() {
				frames = append(frames, fmt.Sprintf("%03X", frame))
			}
			if len(frames) == 0 {
				strval = "---"
			} else {
				strval = strings.Join(frames, " ")
			}
		default:
			index, _ := RegisterIndex(reg)
			strval = fmt.Sprintf("%02X", cpu.Register[index])
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Reset the CPU state.
// - Clears the registers, memory, and stack.
// - Zeros the program counter and statistics counters.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Stack.Reset()
	cpu.Pc = 0
	cpu.Ticks = 0
}

// ReadOpcode fetches the instruction word at the program counter.
// The program counter is not modified.
func (cpu *Cpu) ReadOpcode() (code Code, err error) {
	pc := int(cpu.Pc)
	if pc+1 >= len(cpu.Memory) {
		err = ErrAddress{Addr: pc, Err: ErrFetch}
		return
	}

	code = Code(uint16(cpu.Memory[pc])<<8 | uint16(cpu.Memory[pc+1]))

	return
}

// Tick executes a single CPU instruction cycle.
// The program counter is advanced past the instruction before it executes,
// so control flow instructions only need to assign their target.
func (cpu *Cpu) Tick() (halted bool, err error) {
	code, err := cpu.ReadOpcode()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	cpu.Pc += INSTRUCTION_SIZE
	cpu.Ticks += 1

	return cpu.Execute(code)
}

// Run executes instructions until a halt, or a fault.
// A halt returns nil; faults are returned as errors.
func (cpu *Cpu) Run() (err error) {
	var halted bool
	for !halted {
		halted, err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) (halted bool, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	switch code.Op() {
	case OP_HALT:
		halted = true
	case OP_ADD_XY:
		cpu.addXY(code.X(), code.Y())
	case OP_CALL:
		err = cpu.call(code.NNN())
	case OP_RETURN:
		err = cpu.ret()
	default:
		err = ErrOpcodeUnimplemented
	}

	return
}

// addXY adds register y into register x, wrapping at 8 bits.
// The flag register is written last, so it always holds the carry.
func (cpu *Cpu) addXY(x, y uint8) {
	sum := uint16(cpu.Register[x]) + uint16(cpu.Register[y])

	cpu.Register[x] = uint8(sum)

	if sum > 0xff {
		cpu.Register[REG_FLAG] = 1
	} else {
		cpu.Register[REG_FLAG] = 0
	}
}

// call pushes the return address, and jumps to addr.
func (cpu *Cpu) call(addr uint16) (err error) {
	if !cpu.Stack.Push(cpu.Pc) {
		err = ErrStackFull
		return
	}

	cpu.Pc = addr

	return
}

// ret pops the return address into the program counter.
func (cpu *Cpu) ret() (err error) {
	addr, ok := cpu.Stack.Pop()
	if !ok {
		err = ErrStackEmpty
		return
	}

	cpu.Pc = addr

	return
}
