// Package cpu implements a CHIP-8 style microprocessor and its assembler.
//
// The CPU consists of a program counter (PC), sixteen 8-bit general-purpose
// registers (v0-vf), 4K of byte-addressable memory shared by code and data,
// and a 16 entry return stack. Register vf doubles as the carry flag, and is
// clobbered by every arithmetic instruction.
//
// Only a subset of the CHIP-8 instruction set is decoded: add with carry,
// subroutine call and return, and halt. Every other instruction word is
// reported as an opcode fault, which is the place new instructions are added.
//
// The assembler provides a small assembly language for the instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
