// Package control sequences the sandpile machine the way the command port
// and game controller do: register writes configure it, the lifecycle gates
// it and the driver feeds it drops.
package control

import (
	"errors"
	"fmt"
	"strings"
)

// Register is the 4-bit address field of a command word.
type Register uint8

const (
	RegControl  Register = 0x1
	RegChipID   Register = 0xA
	RegGridSize Register = 0xC
	RegDropMode Register = 0xD
	RegSpeed    Register = 0xE
	RegSeed     Register = 0xF
)

// ChipID is the value read back from RegChipID.
const ChipID = 0x78

const (
	controlStart     = 1 << 0
	controlSoftReset = 1 << 1

	dataMask     = 0xFFF
	gridSizeMask = 0x1FF
	seedMask     = 0x3FF
)

// Defaults applied at power-up and on soft reset.
const (
	DefaultGridSize = 8
	DefaultSpeed    = 50
)

// ErrUnknownRegister reports a command word addressing no register.
var ErrUnknownRegister = errors.New("control: unknown register")

func (r Register) String() string {
	switch r {
	case RegControl:
		return "control"
	case RegChipID:
		return "chip_id"
	case RegGridSize:
		return "grid_size"
	case RegDropMode:
		return "drop_mode"
	case RegSpeed:
		return "speed"
	case RegSeed:
		return "seed"
	default:
		return fmt.Sprintf("reg(%#x)", uint8(r))
	}
}

// DropMode selects where grains land.
type DropMode uint8

const (
	DropRandom DropMode = iota
	DropCenter
)

func (m DropMode) String() string {
	if m == DropCenter {
		return "center"
	}
	return "random"
}

// ParseDropMode accepts "random" or "center".
func ParseDropMode(s string) (DropMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return DropRandom, nil
	case "center":
		return DropCenter, nil
	default:
		return DropRandom, fmt.Errorf("unknown drop mode %q", s)
	}
}

// Encode packs a register address and data into a command word.
func Encode(reg Register, data uint16) uint16 {
	return uint16(reg)<<12 | data&dataMask
}

// Decode splits a command word into address and data.
func Decode(word uint16) (Register, uint16) {
	return Register(word >> 12), word & dataMask
}

// Registers is the decoded configuration surface.
type Registers struct {
	Start     bool
	SoftReset bool
	GridSize  int
	DropMode  DropMode
	Speed     int
	Seed      uint16
}

// DefaultRegisters returns the power-up register contents.
func DefaultRegisters() Registers {
	return Registers{GridSize: DefaultGridSize, Speed: DefaultSpeed}
}

// Write applies a command word and returns the register it addressed. A
// soft reset restores the defaults and leaves SoftReset raised until the
// next control write clears it. Writes to RegChipID are ignored.
func (r *Registers) Write(word uint16) (Register, error) {
	reg, data := Decode(word)
	switch reg {
	case RegControl:
		if data&controlSoftReset != 0 {
			*r = DefaultRegisters()
			r.SoftReset = true
			return reg, nil
		}
		r.SoftReset = false
		r.Start = data&controlStart != 0
	case RegChipID:
	case RegGridSize:
		r.GridSize = int(data & gridSizeMask)
	case RegDropMode:
		r.DropMode = DropMode(data & 1)
	case RegSpeed:
		r.Speed = int(data)
	case RegSeed:
		r.Seed = data & seedMask
	default:
		return reg, fmt.Errorf("%w: %#x", ErrUnknownRegister, uint8(reg))
	}
	return reg, nil
}

// Read returns the current data field of reg.
func (r Registers) Read(reg Register) (uint16, error) {
	switch reg {
	case RegControl:
		var v uint16
		if r.Start {
			v |= controlStart
		}
		if r.SoftReset {
			v |= controlSoftReset
		}
		return v, nil
	case RegChipID:
		return ChipID, nil
	case RegGridSize:
		return uint16(r.GridSize), nil
	case RegDropMode:
		return uint16(r.DropMode), nil
	case RegSpeed:
		return uint16(r.Speed), nil
	case RegSeed:
		return r.Seed, nil
	default:
		return 0, fmt.Errorf("%w: %#x", ErrUnknownRegister, uint8(reg))
	}
}
