package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"sandpile/internal/config"
	"sandpile/internal/control"
	"sandpile/internal/stats"
)

// newTestRootCmd creates a root command with persistent flags for testing subcommands
func newTestRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sandpilectl",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override")
	return rootCmd
}

func execute(t *testing.T, sub *cobra.Command, args ...string) string {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(sub)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestParseWord(t *testing.T) {
	tests := []struct {
		input string
		want  uint16
	}{
		{"C020", 0xC020},
		{"0xc020", 0xC020},
		{" 0XD001 ", 0xD001},
		{"grid_size=32", 0xC020},
		{"drop_mode=1", 0xD001},
		{"seed=0x3ff", 0xF3FF},
		{"SPEED=100", 0xE064},
		{"control=1", 0x1001},
	}
	for _, tt := range tests {
		got, err := parseWord(tt.input)
		if err != nil {
			t.Fatalf("parseWord(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("parseWord(%q) = %#04x, want %#04x", tt.input, got, tt.want)
		}
	}
}

func TestParseWordErrors(t *testing.T) {
	for _, input := range []string{"", "zz", "1FFFF", "grid_size=5000", "grid_size=", "volume=3"} {
		if _, err := parseWord(input); err == nil {
			t.Errorf("parseWord(%q) should fail", input)
		}
	}
	if _, err := parseWord("volume=3"); !errors.Is(err, control.ErrUnknownRegister) {
		t.Errorf("unknown register name: got %v", err)
	}
}

func TestApplyWords(t *testing.T) {
	decoded, regs := applyWords([]uint16{0xC020, 0x9001, 0x1001, 0xA000})
	if len(decoded) != 4 {
		t.Fatalf("decoded %d words, want 4", len(decoded))
	}
	if decoded[0].Register != "grid_size" || decoded[0].Result != 32 {
		t.Errorf("grid size word = %+v", decoded[0])
	}
	if decoded[1].Error == "" {
		t.Errorf("address 0x9 should be rejected: %+v", decoded[1])
	}
	if decoded[3].Result != control.ChipID {
		t.Errorf("chip id read = %#x, want %#x", decoded[3].Result, control.ChipID)
	}
	if !regs.Start || regs.GridSize != 32 {
		t.Errorf("registers = %+v", regs)
	}

	_, regs = applyWords([]uint16{0xC020, 0x1002})
	if !regs.SoftReset || regs.GridSize != control.DefaultGridSize {
		t.Errorf("soft reset registers = %+v", regs)
	}
}

func TestRegsCmd(t *testing.T) {
	out := execute(t, newRegsCmd(), "regs", "grid_size=16")
	if !strings.Contains(out, "chip id    0x78") {
		t.Errorf("missing chip id:\n%s", out)
	}
	if !strings.Contains(out, "grid size  16") {
		t.Errorf("missing grid size:\n%s", out)
	}
}

func TestRunCmdCenterDrops(t *testing.T) {
	out := execute(t, newRunCmd(), "run", "--json", "--generations", "5", "--cmd", "drop_mode=1")

	var res runResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	// Four center grains settle without toppling; the fifth generation
	// relaxes the resulting pile instead of dropping.
	if res.Resolution != 8 || res.Generations != 5 || res.Drops != 4 {
		t.Errorf("result = %+v", res)
	}
	if res.Topples != 1 || res.Avalanches != 4 || res.Grains != 4 || res.Unstable {
		t.Errorf("result = %+v", res)
	}
}

func TestRunCmdStopsWhenNotGaming(t *testing.T) {
	out := execute(t, newRunCmd(), "run", "--json", "--generations", "10", "--cmd", "control=0")
	var res runResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Generations != 0 || res.Grains != 0 {
		t.Errorf("stopped run advanced: %+v", res)
	}
}

func TestRunCmdRecordsAndStatsReports(t *testing.T) {
	db := filepath.Join(t.TempDir(), "stats.db")
	pngPath := filepath.Join(t.TempDir(), "frame.png")
	execute(t, newRunCmd(), "run", "--generations", "5", "--cmd", "drop_mode=1", "--db", db, "--png", pngPath)

	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Errorf("png bounds = %v", b)
	}

	out := execute(t, newStatsCmd(), "stats", "--json", db)
	var reports []runReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %+v", reports)
	}
	s := reports[0].Summary
	if s.Avalanches != 4 || s.Topples != 1 || s.MaxTopples != 1 || s.MaxPasses != 1 {
		t.Errorf("summary = %+v", s)
	}
	hist := reports[0].Histogram
	want := []stats.Bucket{{Lo: 0, Hi: 0, Count: 3}, {Lo: 1, Hi: 1, Count: 1}}
	if len(hist) != len(want) || hist[0] != want[0] || hist[1] != want[1] {
		t.Errorf("histogram = %+v, want %+v", hist, want)
	}
}

func TestRenderCmdScaledGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.png")
	execute(t, newRenderCmd(), "render", "--generations", "3", "--scale", "4", path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("png bounds = %v, want 32x32", b)
	}
}

func TestBenchIsReproducible(t *testing.T) {
	cfg := config.Default()
	a, err := bench(context.Background(), cfg, nil, 7, 4, 200, 2)
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	b, err := bench(context.Background(), cfg, nil, 7, 4, 200, 4)
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	for i := range a {
		if a[i].Generations != 200 {
			t.Errorf("run %d ran %d generations", i, a[i].Generations)
		}
		if a[i].Topples != b[i].Topples || a[i].Grains != b[i].Grains || a[i].Avalanches != b[i].Avalanches {
			t.Errorf("run %d differs across job limits: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestBar(t *testing.T) {
	if got := bar(0, 10, 40); got != "" {
		t.Errorf("bar(0) = %q", got)
	}
	if got := bar(1, 1000, 40); got != "#" {
		t.Errorf("bar(1/1000) = %q, want a single mark", got)
	}
	if got := bar(10, 10, 40); len(got) != 40 {
		t.Errorf("bar(10/10) len = %d", len(got))
	}
}

func TestVersionCmdListsSandpile(t *testing.T) {
	out := execute(t, newVersionCmd(), "version", "--json")
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got["version"] != version || got["chip_id"] != "0x78" {
		t.Errorf("version output = %v", got)
	}
	if !strings.Contains(got["sims"], "sandpile") {
		t.Errorf("sims = %q, want sandpile registered", got["sims"])
	}
}
