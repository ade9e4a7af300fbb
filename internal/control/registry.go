package control

import (
	"strconv"

	"sandpile/internal/core"
	"sandpile/internal/entropy"
	"sandpile/internal/sandpile"
)

func init() {
	core.Register("sandpile", func(cfg map[string]string) (core.Sim, error) {
		opts, err := OptionsFromMap(cfg)
		if err != nil {
			return nil, err
		}
		return NewDriver(opts)
	})
}

// OptionsFromMap builds driver options from flag-style key/value pairs. On
// top of the machine keys it understands drop_mode, speed, seed and start;
// the game starts running unless start is "false". Unparseable numbers keep
// their defaults.
func OptionsFromMap(cfg map[string]string) (Options, error) {
	machine := sandpile.FromMap(cfg)
	regs := DefaultRegisters()
	regs.GridSize = machine.Resolution
	regs.Start = true
	if v, ok := cfg["drop_mode"]; ok {
		mode, err := ParseDropMode(v)
		if err != nil {
			return Options{}, err
		}
		regs.DropMode = mode
	}
	if v, ok := cfg["speed"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			regs.Speed = parsed
		}
	}
	seed := int64(0)
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			seed = parsed
			regs.Seed = uint16(uint64(parsed) & seedMask)
		}
	}
	if v, ok := cfg["start"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			regs.Start = parsed
		}
	}
	return Options{
		Machine:   machine,
		Registers: &regs,
		Sensor:    entropy.NewNoise(seed),
	}, nil
}
