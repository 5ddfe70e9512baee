package cpu

const (
	STACK_LIMIT = 16 // Maximum stack depth
)

// Stack is a fixed depth return address stack.
// Sp is the number of pending frames, and indexes the next free slot.
type Stack struct {
	Data [STACK_LIMIT]uint16
	Sp   int
}

// Push stores a value in the next free slot.
// Returns false, leaving the stack unchanged, when the stack is full.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.Sp] = value
	s.Sp++
	return true
}

func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Sp--
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Sp <= 0
}

func (s *Stack) Full() bool {
	return s.Sp >= STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Sp-1], true
}

// Frames returns the pending return addresses, oldest first.
func (s *Stack) Frames() []uint16 {
	if s.Empty() {
		return nil
	}
	return s.Data[:s.Sp]
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Sp = 0
}
