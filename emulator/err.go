package emulator

import (
	"errors"

	"github.com/ezrec/chip8cpu/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("tick limit reached"))
	ErrSnapshot  = errors.New(f("snapshot invalid"))
	ErrConfig    = errors.New(f("config invalid"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Addr   int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d address 0x%03x %v", err.LineNo, err.Addr, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
