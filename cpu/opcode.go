package cpu

import (
	"fmt"
)

// CodeOp is the decoded operation of an instruction word.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_UNKNOWN = CodeOp(0) // .word
	OP_HALT    = CodeOp(1) // halt
	OP_ADD_XY  = CodeOp(2) // add
	OP_CALL    = CodeOp(3) // call
	OP_RETURN  = CodeOp(4) // ret
)

// Code is a single 16-bit big-endian instruction word.
//
// The word is read as four nibbles, most significant first:
//
//	cxyd
//
// where c is the opcode class, x and y are register indexes, and d selects
// the operation within the class. The low 12 bits (nnn) are an address, and
// the low 8 bits (kk) an immediate byte.
type Code uint16

// MakeCodeHalt creates an instruction that stops execution.
func MakeCodeHalt() Code {
	return Code(0x0000)
}

// MakeCodeAddXY creates an instruction that adds register y into register x.
func MakeCodeAddXY(x, y uint8) Code {
	return Code(0x8004 | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4))
}

// MakeCodeCall creates a subroutine call to a 12-bit address.
func MakeCodeCall(addr uint16) Code {
	return Code(0x2000 | (addr & ADDRESS_MASK))
}

// MakeCodeReturn creates a subroutine return instruction.
func MakeCodeReturn() Code {
	return Code(0x00ee)
}

// C returns the opcode class nibble.
func (code Code) C() uint8 {
	return uint8((code >> 12) & 0xf)
}

// X returns the first register operand nibble.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the second register operand nibble.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// D returns the opcode sub-selector nibble.
func (code Code) D() uint8 {
	return uint8((code >> 0) & 0xf)
}

// NNN returns the 12-bit address operand.
func (code Code) NNN() uint16 {
	return uint16(code) & ADDRESS_MASK
}

// KK returns the 8-bit immediate operand.
func (code Code) KK() uint8 {
	return uint8(code & 0xff)
}

// Bytes returns the instruction as it is stored in memory.
func (code Code) Bytes() [INSTRUCTION_SIZE]uint8 {
	return [INSTRUCTION_SIZE]uint8{uint8(code >> 8), uint8(code)}
}

// Op decodes the operation of the instruction word.
// Patterns are tried in order, halt first, as encodings overlap by nibble.
func (code Code) Op() CodeOp {
	c, x, y, d := code.C(), code.X(), code.Y(), code.D()

	switch {
	case c == 0x0 && x == 0x0 && y == 0x0 && d == 0x0:
		return OP_HALT
	case c == 0x8 && d == 0x4:
		return OP_ADD_XY
	case c == 0x2:
		return OP_CALL
	case c == 0x0 && x == 0x0 && y == 0xe && d == 0xe:
		return OP_RETURN
	}

	return OP_UNKNOWN
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()

	switch op {
	case OP_HALT, OP_RETURN:
		out = op.String()
	case OP_ADD_XY:
		out = fmt.Sprintf("%v v%x v%x", op.String(), code.X(), code.Y())
	case OP_CALL:
		out = fmt.Sprintf("%v 0x%03x", op.String(), code.NNN())
	default:
		out = fmt.Sprintf("%v 0x%04x", op.String(), uint16(code))
	}

	return
}
