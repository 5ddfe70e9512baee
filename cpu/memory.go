package cpu

const (
	MEMORY_SIZE      = 0x1000 // Bytes of addressable memory.
	REGISTER_COUNT   = 16     // Number of general purpose registers.
	REG_FLAG         = 0xf    // Register overwritten with the carry flag.
	INSTRUCTION_SIZE = 2      // Bytes per instruction word.
	ADDRESS_MASK     = 0xfff  // Mask of a 12-bit address operand.
)
