package cmd

import (
	"fmt"
	"os"

	"github.com/ahamilton/octochip/internal/chip8"
	"github.com/spf13/cobra"
)

// disasmCmd prints a linear disassembly of a ROM's instruction stream. It
// does not attempt to distinguish code from embedded data; that needs a
// control-flow walk this command doesn't do.
var disasmCmd = &cobra.Command{
	Use:   "disasm `path/to/rom`",
	Short: "disassemble a rom's instruction stream",
	Args:  cobra.ExactArgs(1),
	Run:   runDisasm,
}

var disasmDialectFlag string

func init() {
	disasmCmd.Flags().StringVar(&disasmDialectFlag, "dialect", "xochip", "dialect to decode against: chip8, schip, or xochip")
}

func runDisasm(cmd *cobra.Command, args []string) {
	dialect, err := parseDialect(disasmDialectFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	rom, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("\nerror reading rom %s: %v\n", args[0], err)
		os.Exit(1)
	}

	vm := chip8.NewVM(dialect, chip8.DefaultQuirks(dialect))
	if err := vm.LoadROM(rom); err != nil {
		fmt.Printf("\nerror loading rom: %v\n", err)
		os.Exit(1)
	}

	addr := uint16(0x200)
	end := uint16(0x200 + len(rom))
	for addr < end {
		ins := vm.DecodeAt(addr)
		fmt.Println(mnemonic(ins))
		if ins.Size == 0 {
			break
		}
		addr += uint16(ins.Size)
	}
}

func mnemonic(ins chip8.Instruction) string {
	prefix := fmt.Sprintf("%04X -", ins.Addr)
	switch ins.Kind {
	case chip8.OpCLS:
		return fmt.Sprintf("%s CLS", prefix)
	case chip8.OpRET:
		return fmt.Sprintf("%s RET", prefix)
	case chip8.OpExit:
		return fmt.Sprintf("%s EXIT", prefix)
	case chip8.OpScrollDown:
		return fmt.Sprintf("%s SCD    %d", prefix, ins.N)
	case chip8.OpScrollUp:
		return fmt.Sprintf("%s SCU    %d", prefix, ins.N)
	case chip8.OpScrollRight:
		return fmt.Sprintf("%s SCR", prefix)
	case chip8.OpScrollLeft:
		return fmt.Sprintf("%s SCL", prefix)
	case chip8.OpLoRes:
		return fmt.Sprintf("%s LOW", prefix)
	case chip8.OpHiRes:
		return fmt.Sprintf("%s HIGH", prefix)
	case chip8.OpJump:
		return fmt.Sprintf("%s JP     #%03X", prefix, ins.NNN)
	case chip8.OpCall:
		return fmt.Sprintf("%s CALL   #%03X", prefix, ins.NNN)
	case chip8.OpSeImm:
		return fmt.Sprintf("%s SE     V%X, #%02X", prefix, ins.X, ins.KK)
	case chip8.OpSneImm:
		return fmt.Sprintf("%s SNE    V%X, #%02X", prefix, ins.X, ins.KK)
	case chip8.OpSeReg:
		return fmt.Sprintf("%s SE     V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpSaveRange:
		return fmt.Sprintf("%s SAVE   V%X..V%X", prefix, ins.X, ins.Y)
	case chip8.OpLoadRange:
		return fmt.Sprintf("%s LOAD   V%X..V%X", prefix, ins.X, ins.Y)
	case chip8.OpLoadImm:
		return fmt.Sprintf("%s LD     V%X, #%02X", prefix, ins.X, ins.KK)
	case chip8.OpAddImm:
		return fmt.Sprintf("%s ADD    V%X, #%02X", prefix, ins.X, ins.KK)
	case chip8.OpLoadReg:
		return fmt.Sprintf("%s LD     V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpOr:
		return fmt.Sprintf("%s OR     V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpAnd:
		return fmt.Sprintf("%s AND    V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpXor:
		return fmt.Sprintf("%s XOR    V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpAddReg:
		return fmt.Sprintf("%s ADD    V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpSubReg:
		return fmt.Sprintf("%s SUB    V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpShiftRight:
		return fmt.Sprintf("%s SHR    V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpSubnReg:
		return fmt.Sprintf("%s SUBN   V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpShiftLeft:
		return fmt.Sprintf("%s SHL    V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpSneReg:
		return fmt.Sprintf("%s SNE    V%X, V%X", prefix, ins.X, ins.Y)
	case chip8.OpLoadI:
		return fmt.Sprintf("%s LD     I, #%03X", prefix, ins.NNN)
	case chip8.OpJumpV0:
		return fmt.Sprintf("%s JP     V0, #%03X", prefix, ins.NNN)
	case chip8.OpRandom:
		return fmt.Sprintf("%s RND    V%X, #%02X", prefix, ins.X, ins.KK)
	case chip8.OpDraw:
		return fmt.Sprintf("%s DRW    V%X, V%X, %d", prefix, ins.X, ins.Y, ins.N)
	case chip8.OpSkipPressed:
		return fmt.Sprintf("%s SKP    V%X", prefix, ins.X)
	case chip8.OpSkipNotPressed:
		return fmt.Sprintf("%s SKNP   V%X", prefix, ins.X)
	case chip8.OpLoadVxDT:
		return fmt.Sprintf("%s LD     V%X, DT", prefix, ins.X)
	case chip8.OpWaitKey:
		return fmt.Sprintf("%s LD     V%X, K", prefix, ins.X)
	case chip8.OpLoadDTVx:
		return fmt.Sprintf("%s LD     DT, V%X", prefix, ins.X)
	case chip8.OpLoadSTVx:
		return fmt.Sprintf("%s LD     ST, V%X", prefix, ins.X)
	case chip8.OpAddI:
		return fmt.Sprintf("%s ADD    I, V%X", prefix, ins.X)
	case chip8.OpLoadFont:
		return fmt.Sprintf("%s LD     F, V%X", prefix, ins.X)
	case chip8.OpLoadBigFont:
		return fmt.Sprintf("%s LD     HF, V%X", prefix, ins.X)
	case chip8.OpBCD:
		return fmt.Sprintf("%s LD     B, V%X", prefix, ins.X)
	case chip8.OpStoreRegs:
		return fmt.Sprintf("%s LD     [I], V%X", prefix, ins.X)
	case chip8.OpLoadRegs:
		return fmt.Sprintf("%s LD     V%X, [I]", prefix, ins.X)
	case chip8.OpStoreRPL:
		return fmt.Sprintf("%s LD     R, V%X", prefix, ins.X)
	case chip8.OpLoadRPL:
		return fmt.Sprintf("%s LD     V%X, R", prefix, ins.X)
	case chip8.OpPlaneMask:
		return fmt.Sprintf("%s PLANE  %d", prefix, ins.X)
	case chip8.OpLoadILong:
		return fmt.Sprintf("%s LD     I, #%04X", prefix, ins.Long)
	case chip8.OpLoadPattern:
		return fmt.Sprintf("%s LD     AUDIO, [I]", prefix)
	case chip8.OpPitch:
		return fmt.Sprintf("%s PITCH  V%X", prefix, ins.X)
	default:
		return fmt.Sprintf("%s DATA   #%04X", prefix, ins.Word)
	}
}
