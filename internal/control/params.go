package control

import (
	"strconv"

	"sandpile/internal/core"
)

var controlRegisters = map[string]Register{
	"grid_size": RegGridSize,
	"speed":     RegSpeed,
	"drop_mode": RegDropMode,
	"seed":      RegSeed,
}

// Parameters reports the machine values plus the controller's registers.
func (d *Driver) Parameters() core.ParameterSnapshot {
	snap := d.m.Parameters()
	last, _ := d.LastAvalanche()
	snap.Groups = append(snap.Groups, core.ParameterGroup{
		Name: "Controller",
		Params: []core.Parameter{
			core.StringParam("state", "State", d.life.State().String()),
			core.IntParam("grid_size", "Grid size", d.regs.GridSize),
			core.IntParam("drop_mode", "Center drops", int(d.regs.DropMode)),
			core.IntParam("speed", "Speed", d.regs.Speed),
			core.IntParam("seed", "Seed", int(d.regs.Seed)),
			core.IntParam("avalanches", "Avalanches", d.avalanches),
			core.IntParam("last_topples", "Last size", last.Topples),
		},
		Summary: d.regs.DropMode.String() + " drops, chip id 0x" + strconv.FormatInt(ChipID, 16),
	})
	return snap
}

// ParameterControls lists the registers adjustable from the HUD.
func (d *Driver) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "grid_size", Label: "Grid size", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: d.m.Config().Layout.MaxResolution, HasMin: true, HasMax: true},
		{Key: "speed", Label: "Speed", Type: core.ParamTypeInt, Step: 10, Min: 1, Max: dataMask, HasMin: true, HasMax: true},
		{Key: "drop_mode", Label: "Center drops", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "seed", Label: "Seed", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: seedMask, HasMin: true, HasMax: true},
	}
}

// SetIntParameter writes a HUD adjustment through the register decoder.
func (d *Driver) SetIntParameter(key string, value int) bool {
	reg, ok := controlRegisters[key]
	if !ok {
		return false
	}
	for _, c := range d.ParameterControls() {
		if c.Key == key {
			value = c.Clamp(value)
			break
		}
	}
	if _, err := d.Command(Encode(reg, uint16(value))); err != nil {
		d.log.Warn("parameter rejected", "key", key, "value", value, "err", err)
		return false
	}
	return true
}

var (
	_ core.Sim                       = (*Driver)(nil)
	_ core.ParameterProvider         = (*Driver)(nil)
	_ core.ParameterControlsProvider = (*Driver)(nil)
	_ core.IntParameterSetter        = (*Driver)(nil)
)
