package emulator

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/chip8cpu/cpu"
)

// Config is the emulator configuration, as read from a TOML file.
//
//	verbose = true
//	max_ticks = 10000
//	origin = 0x200
//
//	[registers]
//	v0 = 5
//	v1 = 10
type Config struct {
	Verbose   bool             `toml:"verbose"`   // Verbose logging.
	MaxTicks  int              `toml:"max_ticks"` // Tick limit for Run, 0 for none.
	Origin    int              `toml:"origin"`    // ROM load address, and entry point.
	Registers map[string]uint8 `toml:"registers"` // Register presets, by name.
}

// DefaultConfig returns the configuration used when there is no file.
func DefaultConfig() Config {
	return Config{}
}

// ParseConfig parses a TOML configuration.
func ParseConfig(data string) (config Config, err error) {
	config = DefaultConfig()

	_, err = toml.Decode(data, &config)
	if err != nil {
		err = errors.Join(ErrConfig, err)
		return
	}

	err = config.Validate()

	return
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (config Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	config, err = ParseConfig(string(data))
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	return
}

// Validate checks the origin and register names.
func (config *Config) Validate() (err error) {
	if config.MaxTicks < 0 {
		err = errors.Join(ErrConfig, fmt.Errorf("max_ticks %v", config.MaxTicks))
		return
	}

	if config.Origin < 0 || config.Origin > cpu.MEMORY_SIZE-cpu.INSTRUCTION_SIZE {
		err = errors.Join(ErrConfig, fmt.Errorf("origin 0x%x", config.Origin))
		return
	}

	for name := range config.Registers {
		_, ok := cpu.RegisterIndex(name)
		if !ok {
			err = errors.Join(ErrConfig, cpu.ErrRegisterInvalid, fmt.Errorf("register %v", name))
			return
		}
	}

	return
}

// apply presets the configured registers.
func (config *Config) apply(cp *cpu.Cpu) {
	for name, value := range config.Registers {
		index, ok := cpu.RegisterIndex(name)
		if ok {
			cp.Register[index] = value
		}
	}
}
