package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ahamilton/octochip/internal/audio"
	"github.com/ahamilton/octochip/internal/chip8"
	"github.com/ahamilton/octochip/internal/pixel"
	"github.com/faiface/beep"
	"github.com/faiface/pixel/pixelgl"
	"github.com/spf13/cobra"
)

const refreshRate = 60

var (
	dialectFlag string
	quirksFlag  string
	cyclesFlag  int
	breakFlags  []string
)

// runCmd runs the octochip virtual machine and its window until the user
// closes it.
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run the octochip emulator",
	Args:  cobra.ExactArgs(1),
	Run:   runOctochip,
}

func init() {
	runCmd.Flags().StringVar(&dialectFlag, "dialect", "chip8", "dialect to emulate: chip8, schip, or xochip")
	runCmd.Flags().StringVar(&quirksFlag, "quirks", "", "quirks preset: legacy, modern, or octo (defaults to the dialect's own default)")
	runCmd.Flags().IntVar(&cyclesFlag, "cycles", 0, "override cycles executed per 60Hz frame (0 keeps the quirks preset's value)")
	runCmd.Flags().StringArrayVar(&breakFlags, "break", nil, "add a breakpoint at a hex address (may be repeated), e.g. --break 0x2F0")
}

func parseDialect(s string) (chip8.Dialect, error) {
	switch strings.ToLower(s) {
	case "chip8", "chip-8":
		return chip8.DialectCHIP8, nil
	case "schip", "s-chip":
		return chip8.DialectSCHIP, nil
	case "xochip", "xo-chip":
		return chip8.DialectXOCHIP, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", s)
	}
}

func parseQuirks(s string, dialect chip8.Dialect) (chip8.Quirks, error) {
	switch strings.ToLower(s) {
	case "":
		return chip8.DefaultQuirks(dialect), nil
	case "legacy":
		return chip8.LegacyQuirks(), nil
	case "modern":
		return chip8.ModernQuirks(), nil
	case "octo":
		return chip8.OctoQuirks(), nil
	default:
		return chip8.Quirks{}, fmt.Errorf("unknown quirks preset %q", s)
	}
}

func runOctochip(cmd *cobra.Command, args []string) {
	pathToROM := args[0]

	dialect, err := parseDialect(dialectFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	quirks, err := parseQuirks(quirksFlag, dialect)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if cyclesFlag > 0 {
		quirks.CyclesPerFrame = cyclesFlag
	}

	rom, err := os.ReadFile(pathToROM)
	if err != nil {
		fmt.Printf("\nerror reading rom %s: %v\n", pathToROM, err)
		os.Exit(1)
	}

	vm := chip8.NewVM(dialect, quirks)
	if err := vm.LoadROM(rom); err != nil {
		fmt.Printf("\nerror loading rom into the VM: %v\n", err)
		os.Exit(1)
	}

	for _, b := range breakFlags {
		addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(b), "0x"), 16, 16)
		if err != nil {
			fmt.Printf("\nbad --break address %q: %v\n", b, err)
			os.Exit(1)
		}
		vm.BreakpointsAdd(uint16(addr))
	}

	// pixelgl needs the main thread for window/GL calls, so the whole
	// emulation loop runs inside pixelgl.Run.
	pixelgl.Run(func() { runLoop(vm) })
}

func runLoop(vm *chip8.VM) {
	win, err := pixel.NewWindow()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go audio.Play(vm, beep.SampleRate(44100), done)
	defer close(done)

	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	for range ticker.C {
		if win.Closed() {
			fmt.Println("exit signal detected, gracefully shutting down...")
			return
		}

		vm.SetKeys(win.HandleKeyInput())
		if err := vm.StepFrame(); err != nil {
			fmt.Printf("\nVM halted: %v\n", err)
			return
		}
		win.DrawGraphics(vm.Framebuffer())

		if addr, hit := vm.LastBreak(); hit {
			fmt.Printf("breakpoint hit at %#04x\n", addr)
		}
	}
}
