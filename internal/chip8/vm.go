// Package chip8 implements the CHIP-8 / S-CHIP 1.1 / XO-CHIP virtual
// machine: memory, registers, the sprite rasterizer, the decoder and
// dispatcher, the quirk-gated executor, timers, and state
// snapshot/restore. The package performs no I/O and knows nothing about
// windows, audio devices, or keyboards — it is driven entirely by the
// host calling StepFrame once per 60 Hz tick, as spec'd in spec.md §5-§6.
package chip8

import "github.com/pkg/errors"

const (
	programStart = 0x200
	maxRomSize   = 4096 - programStart
	stackDepth   = 16
)

// VM is the complete, single-threaded CHIP-8/S-CHIP/XO-CHIP machine
// state. All mutation happens on whichever goroutine the host calls
// StepFrame from; the VM itself has no locks, per spec.md §5.
type VM struct {
	dialect Dialect
	quirks  Quirks

	memory [4096]byte
	rom    []byte // pristine program image, for Reset without reload

	v  [16]byte
	i  uint16
	pc uint16

	stack [stackDepth]uint16
	sp    int

	t timers

	rpl [16]byte

	keypad Keypad
	wait   pendingWait

	fb        Framebuffer
	planeMask byte

	rand RandSource

	halted    bool
	haltedErr *HaltedError

	breakpoints   map[uint16]struct{}
	lastBreakAddr uint16
	lastBreakHit  bool

	trace    []Instruction
	traceCap int

	frameDrawCount int
}

// NewVM constructs a machine for the given dialect with the given quirk
// record (use DefaultQuirks(dialect) for the conventional preset). The
// machine starts with empty RAM plus the installed font ROMs, PC at
// 0x200, plane mask 1, the audio pitch register at 64, and everything
// else zeroed — spec.md §3's "Lifecycle".
func NewVM(dialect Dialect, quirks Quirks) *VM {
	vm := &VM{
		dialect:     dialect,
		quirks:      quirks,
		pc:          programStart,
		planeMask:   1,
		rand:        NewMathRandSource(1),
		breakpoints: make(map[uint16]struct{}),
		traceCap:    64,
	}
	vm.t = newTimers()
	vm.installFonts()
	return vm
}

// SetRandSource overrides the CXKK randomness source. Intended for tests
// that need deterministic output.
func (vm *VM) SetRandSource(r RandSource) {
	vm.rand = r
}

// LoadROM resets the machine and copies program into RAM starting at
// 0x200. RomTooLargeError is returned, and the VM left unmodified, if the
// program does not fit.
func (vm *VM) LoadROM(program []byte) error {
	if len(program) > maxRomSize {
		return errors.WithStack(&RomTooLargeError{Size: len(program), Max: maxRomSize})
	}
	vm.rom = append([]byte(nil), program...)
	vm.hardReset()
	copy(vm.memory[programStart:], vm.rom)
	return nil
}

// Reset re-enters the post-load state without re-copying the ROM, per
// spec.md §3.
func (vm *VM) Reset() {
	vm.hardReset()
	copy(vm.memory[programStart:], vm.rom)
}

// hardReset clears every piece of VM state except the stored ROM image
// and the dialect/quirks/rand configuration and breakpoint set a host has
// chosen.
func (vm *VM) hardReset() {
	vm.memory = [4096]byte{}
	vm.installFonts()
	vm.v = [16]byte{}
	vm.i = 0
	vm.pc = programStart
	vm.stack = [stackDepth]uint16{}
	vm.sp = 0
	vm.t = newTimers()
	vm.rpl = [16]byte{}
	vm.keypad = Keypad{}
	vm.wait = pendingWait{}
	vm.fb = Framebuffer{}
	vm.planeMask = 1
	vm.halted = false
	vm.haltedErr = nil
	vm.lastBreakHit = false
	vm.trace = nil
	vm.frameDrawCount = 0
}

// SetKeys records the 16-bit pressed-key mask for the upcoming frame, per
// the host convention in spec.md §6.
func (vm *VM) SetKeys(mask uint16) {
	vm.keypad.SetMask(mask)
}

// Framebuffer returns a read-only view of the two display planes and the
// active resolution.
func (vm *VM) Framebuffer() FramebufferView {
	return vm.fb.View()
}

// SoundGate reports whether the sound timer is currently running.
func (vm *VM) SoundGate() bool {
	return vm.t.soundGate()
}

// AudioPattern returns the 16-byte XO-CHIP audio waveform loaded by F002.
func (vm *VM) AudioPattern() [16]byte {
	return vm.t.pattern
}

// AudioPitch returns the FX3A pitch register.
func (vm *VM) AudioPitch() byte {
	return vm.t.pitch
}

// SetQuirks replaces the active quirk record.
func (vm *VM) SetQuirks(q Quirks) {
	vm.quirks = q
}

// Quirks returns the active quirk record.
func (vm *VM) Quirks() Quirks {
	return vm.quirks
}

// SetCyclesPerFrame overrides the quirk record's per-frame instruction
// budget without touching any other quirk field.
func (vm *VM) SetCyclesPerFrame(n int) {
	vm.quirks.CyclesPerFrame = n
}

// Dialect returns the VM's configured dialect.
func (vm *VM) Dialect() Dialect {
	return vm.dialect
}

// BreakpointsAdd registers addr as a breakpoint.
func (vm *VM) BreakpointsAdd(addr uint16) {
	vm.breakpoints[addr] = struct{}{}
}

// BreakpointsRemove clears a previously registered breakpoint.
func (vm *VM) BreakpointsRemove(addr uint16) {
	delete(vm.breakpoints, addr)
}

// LastBreak reports whether the most recent StepFrame ended early on a
// breakpoint (hit), and the address of the last breakpoint hit. StepFrame
// clears hit at the start of every frame; addr is not cleared.
func (vm *VM) LastBreak() (addr uint16, hit bool) {
	return vm.lastBreakAddr, vm.lastBreakHit
}

// LastOpcodes returns up to k of the most recently decoded instructions,
// oldest first, for a debugger front-end.
func (vm *VM) LastOpcodes(k int) []Instruction {
	if k > len(vm.trace) {
		k = len(vm.trace)
	}
	start := len(vm.trace) - k
	out := make([]Instruction, k)
	copy(out, vm.trace[start:])
	return out
}

func (vm *VM) recordTrace(ins Instruction) {
	vm.trace = append(vm.trace, ins)
	if len(vm.trace) > vm.traceCap {
		vm.trace = vm.trace[len(vm.trace)-vm.traceCap:]
	}
}

// DecodeAt decodes the instruction at addr without executing it, for a
// disassembler or debugger front-end.
func (vm *VM) DecodeAt(addr uint16) Instruction {
	return Decode(&vm.memory, addr, vm.dialect)
}

// RegisterSnapshot is a read-only copy of the VM's register file for a
// debugger front-end to display.
type RegisterSnapshot struct {
	V     [16]byte
	I     uint16
	PC    uint16
	SP    byte
	Stack [stackDepth]uint16
	DT    byte
	ST    byte
	RPL   [16]byte
}

// Registers returns a copy of the current register file.
func (vm *VM) Registers() RegisterSnapshot {
	return RegisterSnapshot{
		V:     vm.v,
		I:     vm.i,
		PC:    vm.pc,
		SP:    byte(vm.sp),
		Stack: vm.stack,
		DT:    vm.t.delay,
		ST:    vm.t.sound,
		RPL:   vm.rpl,
	}
}

// StepFrame runs one 60Hz frame: up to CyclesPerFrame decode/execute
// cycles, then one timer tick. It ends cycles early when display_wait
// would allow a second DXYN, when FX0A is waiting, when a breakpoint is
// hit, or when a fatal error occurs. It always returns after exactly one
// frame of (possibly zero) work, per spec.md §5.
func (vm *VM) StepFrame() error {
	if vm.halted {
		return vm.haltedErr
	}

	vm.lastBreakHit = false
	vm.frameDrawCount = 0

	budget := vm.quirks.CyclesPerFrame
	if budget <= 0 {
		budget = 1
	}

	var stepErr error
	for c := 0; c < budget; c++ {
		if vm.wait.waiting {
			break
		}
		if _, hit := vm.breakpoints[vm.pc]; hit {
			vm.lastBreakAddr = vm.pc
			vm.lastBreakHit = true
			break
		}

		ins := Decode(&vm.memory, vm.pc, vm.dialect)

		if ins.Kind == OpDraw && vm.quirks.DisplayWait && vm.frameDrawCount >= 1 {
			// A second DXYN would execute this frame; defer it to the
			// next frame without running it or advancing pc.
			break
		}

		vm.recordTrace(ins)

		if err := vm.execute(ins); err != nil {
			stepErr = err
			break
		}

		if ins.Kind == OpDraw {
			vm.frameDrawCount++
		}
	}

	vm.t.tick()
	vm.checkWaitRelease()

	if stepErr != nil {
		if h, ok := stepErr.(*HaltedError); ok {
			vm.halted = true
			vm.haltedErr = h
		}
		return stepErr
	}
	return nil
}

// checkWaitRelease resolves an FX0A wait against the edge between the
// previous and current keypad mask, per spec.md §4.5. It runs once per
// frame regardless of whether any cycles executed, since timers (and key
// state) keep moving while FX0A is waiting.
func (vm *VM) checkWaitRelease() {
	if !vm.wait.waiting {
		return
	}
	if key, ok := vm.keypad.firstReleased(); ok {
		vm.v[vm.wait.reg] = key
		vm.wait.waiting = false
		vm.pc += 2
	}
}
