package chip8

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

var snapshotMagic = [4]byte{'C', 'H', '8', 'S'}

const snapshotVersion uint16 = 1

// snapshotBody mirrors every piece of state spec.md §4.9 requires the
// serializer to round-trip. It is a plain struct of fixed-size fields so
// encoding/binary can write and read it in one shot.
type snapshotBody struct {
	Dialect    int32
	Quirks     quirksWire
	Memory     [4096]byte
	V          [16]byte
	I          uint16
	PC         uint16
	SP         uint8
	Stack      [stackDepth]uint16
	DT         uint8
	ST         uint8
	Pattern    [16]byte
	Pitch      uint8
	RPL        [16]byte
	PlaneMask  uint8
	Resolution uint8
	Plane0     [planeBytes]byte
	Plane1     [planeBytes]byte
	WaitReg    uint8
	Waiting    uint8
	PrevMask   uint16
	CurMask    uint16
	DrawCount  uint8
	Halted     uint8
	HaltReason int32
}

// quirksWire is Quirks with its booleans widened to a fixed-size encoding.
type quirksWire struct {
	LoadStoreIncrementsI uint8
	ShiftUsesVy          uint8
	Jump0UsesVx          uint8
	VfResetOnLogic       uint8
	SpriteWrapHorizontal uint8
	SpriteWrapVertical   uint8
	DisplayWait          uint8
	ClipSprites          uint8
	CyclesPerFrame       int32
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func quirksToWire(q Quirks) quirksWire {
	return quirksWire{
		LoadStoreIncrementsI: boolToByte(q.LoadStoreIncrementsI),
		ShiftUsesVy:          boolToByte(q.ShiftUsesVy),
		Jump0UsesVx:          boolToByte(q.Jump0UsesVx),
		VfResetOnLogic:       boolToByte(q.VfResetOnLogic),
		SpriteWrapHorizontal: boolToByte(q.SpriteWrapHorizontal),
		SpriteWrapVertical:   boolToByte(q.SpriteWrapVertical),
		DisplayWait:          boolToByte(q.DisplayWait),
		ClipSprites:          boolToByte(q.ClipSprites),
		CyclesPerFrame:       int32(q.CyclesPerFrame),
	}
}

func wireToQuirks(w quirksWire) Quirks {
	return Quirks{
		LoadStoreIncrementsI: w.LoadStoreIncrementsI != 0,
		ShiftUsesVy:          w.ShiftUsesVy != 0,
		Jump0UsesVx:          w.Jump0UsesVx != 0,
		VfResetOnLogic:       w.VfResetOnLogic != 0,
		SpriteWrapHorizontal: w.SpriteWrapHorizontal != 0,
		SpriteWrapVertical:   w.SpriteWrapVertical != 0,
		DisplayWait:          w.DisplayWait != 0,
		ClipSprites:          w.ClipSprites != 0,
		CyclesPerFrame:       int(w.CyclesPerFrame),
	}
}

// Snapshot encodes the entire VM state into a versioned, self-describing
// binary blob.
func (vm *VM) Snapshot() []byte {
	var halted uint8
	var haltReason int32
	if vm.halted {
		halted = 1
		if vm.haltedErr != nil {
			haltReason = int32(vm.haltedErr.Reason)
		}
	}

	body := snapshotBody{
		Dialect:    int32(vm.dialect),
		Quirks:     quirksToWire(vm.quirks),
		Memory:     vm.memory,
		V:          vm.v,
		I:          vm.i,
		PC:         vm.pc,
		SP:         uint8(vm.sp),
		Stack:      vm.stack,
		DT:         vm.t.delay,
		ST:         vm.t.sound,
		Pattern:    vm.t.pattern,
		Pitch:      vm.t.pitch,
		RPL:        vm.rpl,
		PlaneMask:  vm.planeMask,
		Resolution: uint8(vm.fb.resolution),
		Plane0:     vm.fb.planes[0],
		Plane1:     vm.fb.planes[1],
		WaitReg:    vm.wait.reg,
		Waiting:    boolToByte(vm.wait.waiting),
		PrevMask:   vm.keypad.prevMask,
		CurMask:    vm.keypad.mask,
		DrawCount:  uint8(vm.frameDrawCount),
		Halted:     halted,
		HaltReason: haltReason,
	}

	var buf bytes.Buffer
	buf.Write(snapshotMagic[:])
	binary.Write(&buf, binary.BigEndian, snapshotVersion)
	binary.Write(&buf, binary.BigEndian, &body)
	return buf.Bytes()
}

// Restore decodes a Snapshot blob and replaces the VM's entire state. It
// validates the magic and version before touching anything: on any
// failure the VM is left completely unchanged (spec.md §4.9's "Restore is
// atomic").
func (vm *VM) Restore(data []byte) error {
	if len(data) < 6 {
		return errors.WithStack(&BadSnapshotError{Reason: "truncated header"})
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	if magic != snapshotMagic {
		return errors.WithStack(&BadSnapshotError{Reason: "bad magic"})
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version != snapshotVersion {
		return errors.WithStack(&BadSnapshotError{Reason: "unsupported version"})
	}

	var body snapshotBody
	r := bytes.NewReader(data[6:])
	if err := binary.Read(r, binary.BigEndian, &body); err != nil {
		return errors.WithStack(&BadSnapshotError{Reason: "corrupt body: " + err.Error()})
	}

	vm.dialect = Dialect(body.Dialect)
	vm.quirks = wireToQuirks(body.Quirks)
	vm.memory = body.Memory
	vm.v = body.V
	vm.i = body.I
	vm.pc = body.PC
	vm.sp = int(body.SP)
	vm.stack = body.Stack
	vm.t.delay = body.DT
	vm.t.sound = body.ST
	vm.t.pattern = body.Pattern
	vm.t.pitch = body.Pitch
	vm.rpl = body.RPL
	vm.planeMask = body.PlaneMask
	vm.fb.resolution = Resolution(body.Resolution)
	vm.fb.planes[0] = body.Plane0
	vm.fb.planes[1] = body.Plane1
	vm.wait = pendingWait{reg: body.WaitReg, waiting: body.Waiting != 0}
	vm.keypad.prevMask = body.PrevMask
	vm.keypad.mask = body.CurMask
	vm.frameDrawCount = int(body.DrawCount)
	vm.halted = body.Halted != 0
	if vm.halted {
		vm.haltedErr = &HaltedError{Reason: HaltReason(body.HaltReason)}
	} else {
		vm.haltedErr = nil
	}

	return nil
}
