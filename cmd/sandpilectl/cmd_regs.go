package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sandpile/internal/control"
)

var registerNames = map[string]control.Register{
	"control":   control.RegControl,
	"chip_id":   control.RegChipID,
	"grid_size": control.RegGridSize,
	"drop_mode": control.RegDropMode,
	"speed":     control.RegSpeed,
	"seed":      control.RegSeed,
}

func parseRegister(name string) (control.Register, error) {
	reg, ok := registerNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", control.ErrUnknownRegister, name)
	}
	return reg, nil
}

// parseWord reads a 16-bit command word. Words are hexadecimal with or
// without a 0x prefix; "reg=data" names the register instead.
func parseWord(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if name, data, ok := strings.Cut(s, "="); ok {
		reg, err := parseRegister(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseUint(strings.TrimSpace(data), 0, 12)
		if err != nil {
			return 0, fmt.Errorf("command %q: data: %w", s, err)
		}
		return control.Encode(reg, uint16(v)), nil
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("command %q: %w", s, err)
	}
	return uint16(v), nil
}

func parseWords(args []string) ([]uint16, error) {
	words := make([]uint16, 0, len(args))
	for _, a := range args {
		w, err := parseWord(a)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, nil
}

type decodedWord struct {
	Word     string `json:"word"`
	Register string `json:"register"`
	Address  int    `json:"address"`
	Data     int    `json:"data"`
	Result   int    `json:"result"`
	Error    string `json:"error,omitempty"`
}

// applyWords writes each word to a fresh register file, the way the command
// port would see them in sequence.
func applyWords(words []uint16) ([]decodedWord, control.Registers) {
	regs := control.DefaultRegisters()
	out := make([]decodedWord, 0, len(words))
	for _, w := range words {
		reg, data := control.Decode(w)
		dw := decodedWord{
			Word:     fmt.Sprintf("0x%04X", w),
			Register: reg.String(),
			Address:  int(reg),
			Data:     int(data),
		}
		if _, err := regs.Write(w); err != nil {
			dw.Error = err.Error()
		} else if v, err := regs.Read(reg); err == nil {
			dw.Result = int(v)
		}
		out = append(out, dw)
	}
	return out, regs
}

func newRegsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regs [word...]",
		Short: "Decode command words against the register file",
		Long: `Decode command words and show the register file they produce.

Words are hexadecimal (C020, 0xC020) or name=value pairs
(grid_size=32, drop_mode=1). With no words the power-up defaults are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := parseWords(args)
			if err != nil {
				return err
			}
			decoded, regs := applyWords(words)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"words":     decoded,
					"registers": regs,
					"chip_id":   control.ChipID,
				})
			}

			w := cmd.OutOrStdout()
			for _, d := range decoded {
				if d.Error != "" {
					fmt.Fprintf(w, "%s  %-9s  data=0x%03X  error: %s\n", d.Word, d.Register, d.Data, d.Error)
					continue
				}
				fmt.Fprintf(w, "%s  %-9s  data=0x%03X  -> %d\n", d.Word, d.Register, d.Data, d.Result)
			}
			if len(decoded) > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "chip id    0x%02X\n", control.ChipID)
			fmt.Fprintf(w, "start      %t\n", regs.Start)
			fmt.Fprintf(w, "soft reset %t\n", regs.SoftReset)
			fmt.Fprintf(w, "grid size  %d\n", regs.GridSize)
			fmt.Fprintf(w, "drop mode  %s\n", regs.DropMode)
			fmt.Fprintf(w, "speed      %d\n", regs.Speed)
			fmt.Fprintf(w, "seed       %d\n", regs.Seed)
			return nil
		},
	}
	return cmd
}
