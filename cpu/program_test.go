package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bytesOf(codes ...Code) (out []uint8) {
	for _, code := range codes {
		b := code.Bytes()
		out = append(out, b[:]...)
	}
	return
}

func testProgram() *Program {
	return &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x000, Words: []string{"call", "SUB"},
				Bytes: bytesOf(MakeCodeCall(0x100)), LinkLabel: "SUB"},
			{LineNo: 2, Addr: 0x002, Words: []string{"call", "SUB"},
				Bytes: bytesOf(MakeCodeCall(0x100)), LinkLabel: "SUB"},
			{LineNo: 3, Addr: 0x004, Words: []string{"halt"},
				Bytes: bytesOf(MakeCodeHalt())},
			{LineNo: 4, Addr: 0x006, Words: []string{".byte", "1", "2", "3"},
				Bytes: []uint8{1, 2, 3}, Data: true},
			{LineNo: 6, Addr: 0x100, Words: []string{"add", "v0", "v1"},
				Bytes: bytesOf(MakeCodeAddXY(0, 1))},
			{LineNo: 7, Addr: 0x102, Words: []string{".word", "0x8014", "0x00ee"},
				Bytes: bytesOf(MakeCodeAddXY(0, 1), MakeCodeReturn())},
		},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(3)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(0x104)
	assert.NotNil(dbg.Opcode)
	assert.Equal(7, dbg.Opcode.LineNo)
	assert.Equal(2, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0x10)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x106)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	empty := &Program{}
	assert.Nil(empty.Binary())

	bin := testProgram().Binary()
	assert.Equal(0x106, len(bin))
	assert.Equal([]uint8{0x21, 0x00, 0x21, 0x00, 0x00, 0x00, 1, 2, 3, 0}, bin[:10])
	assert.Equal([]uint8{0x80, 0x14, 0x80, 0x14, 0x00, 0xee}, bin[0x100:])
}

func TestProgram_Load(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0] = 5
	cpu.Register[1] = 10
	cpu.Memory[0x200] = 0xaa

	err := testProgram().Load(cpu)
	assert.NoError(err)
	assert.Equal(uint8(0xaa), cpu.Memory[0x200])

	err = cpu.Run()
	assert.NoError(err)
	assert.Equal(uint8(45), cpu.Register[0])
}

func TestProgram_Load_Range(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x000, Bytes: bytesOf(MakeCodeHalt())},
			{LineNo: 2, Addr: MEMORY_SIZE - 1, Bytes: bytesOf(MakeCodeHalt())},
		},
	}

	cpu := NewCpu()
	err := prog.Load(cpu)
	assert.ErrorIs(err, ErrValueRange)

	var ea ErrAddress
	assert.True(errors.As(err, &ea))
	assert.Equal(MEMORY_SIZE-1, ea.Addr)
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	type entry struct {
		addr uint16
		code Code
	}

	var codes []entry
	for addr, code := range testProgram().Codes() {
		codes = append(codes, entry{addr, code})
	}

	assert.Equal([]entry{
		{0x000, MakeCodeCall(0x100)},
		{0x002, MakeCodeCall(0x100)},
		{0x004, MakeCodeHalt()},
		{0x100, MakeCodeAddXY(0, 1)},
		{0x102, MakeCodeAddXY(0, 1)},
		{0x104, MakeCodeReturn()},
	}, codes)

	// Early termination
	var count int
	for range testProgram().Codes() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)
}
