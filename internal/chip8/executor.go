package chip8

// execute dispatches one decoded Instruction, mutating VM state. It
// returns a non-nil error for IllegalOpcode, StackOverflow,
// StackUnderflow, an RPL index out of range (also reported as
// IllegalOpcode per spec.md §7), or Halted. On any such error PC is left
// pointing at the faulting instruction.
func (vm *VM) execute(ins Instruction) error {
	switch ins.Kind {
	case OpCLS:
		vm.fb.Clear(vm.planeMask)
		vm.pc += 2
	case OpRET:
		addr, ok := vm.pop()
		if !ok {
			return &StackUnderflowError{}
		}
		vm.pc = addr
	case OpScrollDown:
		vm.fb.ScrollDown(vm.planeMask, int(ins.N))
		vm.pc += 2
	case OpScrollUp:
		vm.fb.ScrollUp(vm.planeMask, int(ins.N))
		vm.pc += 2
	case OpScrollRight:
		vm.fb.ScrollRight(vm.planeMask)
		vm.pc += 2
	case OpScrollLeft:
		vm.fb.ScrollLeft(vm.planeMask)
		vm.pc += 2
	case OpExit:
		return &HaltedError{Reason: ExitRequested}
	case OpLoRes:
		vm.fb.SetResolution(LoRes)
		vm.pc += 2
	case OpHiRes:
		vm.fb.SetResolution(HiRes)
		vm.pc += 2
	case OpJump:
		vm.pc = ins.NNN
	case OpCall:
		if !vm.push(vm.pc + 2) {
			return &StackOverflowError{Depth: vm.sp}
		}
		vm.pc = ins.NNN
	case OpSeImm:
		vm.skip(vm.v[ins.X] == ins.KK)
	case OpSneImm:
		vm.skip(vm.v[ins.X] != ins.KK)
	case OpSeReg:
		vm.skip(vm.v[ins.X] == vm.v[ins.Y])
	case OpSneReg:
		vm.skip(vm.v[ins.X] != vm.v[ins.Y])
	case OpSaveRange:
		vm.saveRange(ins.X, ins.Y)
		vm.pc += 2
	case OpLoadRange:
		vm.loadRange(ins.X, ins.Y)
		vm.pc += 2
	case OpLoadImm:
		vm.v[ins.X] = ins.KK
		vm.pc += 2
	case OpAddImm:
		vm.v[ins.X] += ins.KK
		vm.pc += 2
	case OpLoadReg:
		vm.v[ins.X] = vm.v[ins.Y]
		vm.pc += 2
	case OpOr:
		vm.v[ins.X] |= vm.v[ins.Y]
		if vm.quirks.VfResetOnLogic {
			vm.v[0xF] = 0
		}
		vm.pc += 2
	case OpAnd:
		vm.v[ins.X] &= vm.v[ins.Y]
		if vm.quirks.VfResetOnLogic {
			vm.v[0xF] = 0
		}
		vm.pc += 2
	case OpXor:
		vm.v[ins.X] ^= vm.v[ins.Y]
		if vm.quirks.VfResetOnLogic {
			vm.v[0xF] = 0
		}
		vm.pc += 2
	case OpAddReg:
		vx, vy := vm.v[ins.X], vm.v[ins.Y]
		sum := uint16(vx) + uint16(vy)
		var carry byte
		if sum > 0xFF {
			carry = 1
		}
		vm.v[ins.X] = byte(sum)
		vm.v[0xF] = carry
		vm.pc += 2
	case OpSubReg:
		vx, vy := vm.v[ins.X], vm.v[ins.Y]
		var notBorrow byte
		if vx >= vy {
			notBorrow = 1
		}
		vm.v[ins.X] = vx - vy
		vm.v[0xF] = notBorrow
		vm.pc += 2
	case OpSubnReg:
		vx, vy := vm.v[ins.X], vm.v[ins.Y]
		var notBorrow byte
		if vy >= vx {
			notBorrow = 1
		}
		vm.v[ins.X] = vy - vx
		vm.v[0xF] = notBorrow
		vm.pc += 2
	case OpShiftRight:
		src := vm.v[ins.X]
		if vm.quirks.ShiftUsesVy {
			src = vm.v[ins.Y]
		}
		out := src & 0x01
		vm.v[ins.X] = src >> 1
		vm.v[0xF] = out
		vm.pc += 2
	case OpShiftLeft:
		src := vm.v[ins.X]
		if vm.quirks.ShiftUsesVy {
			src = vm.v[ins.Y]
		}
		out := (src & 0x80) >> 7
		vm.v[ins.X] = src << 1
		vm.v[0xF] = out
		vm.pc += 2
	case OpLoadI:
		vm.i = ins.NNN
		vm.pc += 2
	case OpJumpV0:
		base := vm.v[0]
		if vm.quirks.Jump0UsesVx {
			base = vm.v[ins.X]
		}
		vm.pc = ins.NNN + uint16(base)
	case OpRandom:
		vm.v[ins.X] = vm.rand.Byte() & ins.KK
		vm.pc += 2
	case OpDraw:
		vm.v[0xF] = vm.draw(vm.v[ins.X], vm.v[ins.Y], ins.N)
		vm.pc += 2
	case OpSkipPressed:
		vm.skipNoExtend(vm.keypad.Pressed(vm.v[ins.X] & 0xF))
	case OpSkipNotPressed:
		vm.skipNoExtend(!vm.keypad.Pressed(vm.v[ins.X] & 0xF))
	case OpLoadVxDT:
		vm.v[ins.X] = vm.t.delay
		vm.pc += 2
	case OpWaitKey:
		vm.wait = pendingWait{reg: ins.X, waiting: true}
	case OpLoadDTVx:
		vm.t.delay = vm.v[ins.X]
		vm.pc += 2
	case OpLoadSTVx:
		vm.t.sound = vm.v[ins.X]
		vm.pc += 2
	case OpAddI:
		vm.i += uint16(vm.v[ins.X])
		vm.pc += 2
	case OpLoadFont:
		vm.i = lowResGlyphAddr(vm.v[ins.X])
		vm.pc += 2
	case OpLoadBigFont:
		vm.i = highResGlyphAddr(vm.v[ins.X])
		vm.pc += 2
	case OpBCD:
		val := vm.v[ins.X]
		vm.memory[vm.i%4096] = val / 100
		vm.memory[(vm.i+1)%4096] = (val / 10) % 10
		vm.memory[(vm.i+2)%4096] = val % 10
		vm.pc += 2
	case OpStoreRegs:
		for idx := uint16(0); idx <= uint16(ins.X); idx++ {
			vm.memory[(vm.i+idx)%4096] = vm.v[idx]
		}
		if vm.quirks.LoadStoreIncrementsI {
			vm.i += uint16(ins.X) + 1
		}
		vm.pc += 2
	case OpLoadRegs:
		for idx := uint16(0); idx <= uint16(ins.X); idx++ {
			vm.v[idx] = vm.memory[(vm.i+idx)%4096]
		}
		if vm.quirks.LoadStoreIncrementsI {
			vm.i += uint16(ins.X) + 1
		}
		vm.pc += 2
	case OpStoreRPL:
		if !vm.rplInRange(ins.X) {
			return illegalOpcodeAt(ins.Addr, ins.Word)
		}
		for idx := byte(0); idx <= ins.X; idx++ {
			vm.rpl[idx] = vm.v[idx]
		}
		vm.pc += 2
	case OpLoadRPL:
		if !vm.rplInRange(ins.X) {
			return illegalOpcodeAt(ins.Addr, ins.Word)
		}
		for idx := byte(0); idx <= ins.X; idx++ {
			vm.v[idx] = vm.rpl[idx]
		}
		vm.pc += 2
	case OpPlaneMask:
		vm.planeMask = ins.X & 0x3
		vm.pc += 2
	case OpLoadILong:
		vm.i = ins.Long
		vm.pc += 4
	case OpLoadPattern:
		for idx := 0; idx < 16; idx++ {
			vm.t.pattern[idx] = vm.memory[(vm.i+uint16(idx))%4096]
		}
		vm.pc += 2
	case OpPitch:
		vm.t.pitch = vm.v[ins.X]
		vm.pc += 2
	default:
		return illegalOpcodeAt(ins.Addr, ins.Word)
	}
	return nil
}

// rplInRange enforces S-CHIP's 8-flag / XO-CHIP's 16-flag RPL limit.
func (vm *VM) rplInRange(x byte) bool {
	limit := 8
	if vm.dialect == DialectXOCHIP {
		limit = 16
	}
	return int(x)+1 <= limit
}

func (vm *VM) saveRange(x, y byte) {
	lo, hi := x, y
	if lo > hi {
		lo, hi = hi, lo
	}
	for idx := uint16(0); idx <= uint16(hi-lo); idx++ {
		vm.memory[(vm.i+idx)%4096] = vm.v[lo+byte(idx)]
	}
}

func (vm *VM) loadRange(x, y byte) {
	lo, hi := x, y
	if lo > hi {
		lo, hi = hi, lo
	}
	for idx := uint16(0); idx <= uint16(hi-lo); idx++ {
		vm.v[lo+byte(idx)] = vm.memory[(vm.i+idx)%4096]
	}
}

// push stores a return address; it reports false (stack overflow) if the
// call stack is already at capacity.
func (vm *VM) push(addr uint16) bool {
	if vm.sp >= stackDepth {
		return false
	}
	vm.stack[vm.sp] = addr
	vm.sp++
	return true
}

// pop removes and returns the top return address; it reports false
// (stack underflow) if the stack is empty.
func (vm *VM) pop() (uint16, bool) {
	if vm.sp == 0 {
		return 0, false
	}
	vm.sp--
	return vm.stack[vm.sp], true
}

// skip implements the conditional-skip families (3XKK/4XKK/5XY0/9XY0)
// whose extra advance grows to 4 when the following instruction is the
// XO-CHIP 4-byte F000 NNNN, per spec.md §4.1.
func (vm *VM) skip(take bool) {
	if !take {
		vm.pc += 2
		return
	}
	if fetchWord(&vm.memory, vm.pc+2) == 0xF000 {
		vm.pc += 6
	} else {
		vm.pc += 4
	}
}

// skipNoExtend implements EX9E/EXA1, which spec.md §4.2 does not extend
// for a following F000 NNNN.
func (vm *VM) skipNoExtend(take bool) {
	if take {
		vm.pc += 4
	} else {
		vm.pc += 2
	}
}
