package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sandpile/internal/control"
	"sandpile/internal/core"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"version": version,
					"chip_id": fmt.Sprintf("0x%02X", control.ChipID),
					"sims":    strings.Join(core.Names(), ","),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "sandpilectl version %s (chip id 0x%02X)\n", version, control.ChipID)
				fmt.Fprintf(cmd.OutOrStdout(), "sims: %s\n", strings.Join(core.Names(), ", "))
			}
		},
	}
}
