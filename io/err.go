package io

import (
	"errors"

	"github.com/ezrec/chip8cpu/translate"
)

var f = translate.From

var (
	// Rom errors
	ErrRomTooLarge = errors.New(f("rom too large"))
	ErrRomClosed   = errors.New(f("rom closed"))
	ErrRomOrigin   = errors.New(f("rom origin invalid"))
)
