package chip8

import "testing"

func spriteAt(vm *VM, addr uint16, rows []byte) {
	copy(vm.memory[addr:], rows)
}

func TestDrawClipsByDefault(t *testing.T) {
	vm := newTestVM(DialectCHIP8)
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0xFF}) // full row of 8 set bits

	vf := vm.draw(60, 0, 1) // origin near the right edge in lo-res (w=64)
	if vf != 0 {
		t.Errorf("first draw at the edge should not collide, VF=%d", vf)
	}
	if vm.fb.GetPixel(0, 0, 0) {
		t.Errorf("clipped pixels must not wrap to column 0 by default")
	}
	if !vm.fb.GetPixel(0, 63, 0) {
		t.Errorf("in-bounds pixels at the edge should still draw")
	}
}

func TestDrawWrapsHorizontallyWhenQuirked(t *testing.T) {
	vm := newTestVM(DialectCHIP8)
	vm.quirks.SpriteWrapHorizontal = true
	vm.quirks.ClipSprites = false
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0xFF})

	vm.draw(60, 0, 1)
	if !vm.fb.GetPixel(0, 0, 0) {
		t.Errorf("pixels should wrap around to column 0")
	}
}

func TestDrawClipQuirkOverridesWrap(t *testing.T) {
	vm := newTestVM(DialectCHIP8)
	vm.quirks.SpriteWrapHorizontal = true
	vm.quirks.ClipSprites = true // should still win over wrap
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0xFF})

	vm.draw(60, 0, 1)
	if vm.fb.GetPixel(0, 0, 0) {
		t.Errorf("clip_sprites must override sprite_wrap_horizontal")
	}
}

func TestDrawOriginWrapsModuloScreen(t *testing.T) {
	vm := newTestVM(DialectCHIP8)
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0x80}) // single pixel, top bit

	vm.draw(64, 32, 1) // origin exactly one full screen off (64x32 lo-res)
	if !vm.fb.GetPixel(0, 0, 0) {
		t.Errorf("origin coordinates should reduce modulo screen dimensions")
	}
}

func TestDrawSixteenWideZeroHeight(t *testing.T) {
	vm := newTestVM(DialectSCHIP)
	vm.fb.SetResolution(HiRes)
	vm.i = 0x300
	rows := make([]byte, 32)
	for r := 0; r < 16; r++ {
		rows[r*2] = 0xFF
		rows[r*2+1] = 0xFF
	}
	spriteAt(vm, 0x300, rows)

	vm.draw(0, 0, 0) // N=0 draws a 16x16 sprite
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if !vm.fb.GetPixel(0, x, y) {
				t.Fatalf("pixel (%d,%d) should be set by a 16x16 N=0 sprite", x, y)
			}
		}
	}
}

func TestDrawHiResCollisionCountsRows(t *testing.T) {
	vm := newTestVM(DialectSCHIP)
	vm.fb.SetResolution(HiRes)
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0xFF, 0xFF, 0xFF}) // 3 rows

	vf1 := vm.draw(0, 0, 3)
	if vf1 != 0 {
		t.Fatalf("first draw should not collide, VF=%d", vf1)
	}
	vf2 := vm.draw(0, 0, 3)
	if vf2 != 3 {
		t.Errorf("S-CHIP hi-res VF should count colliding rows, want 3 got %d", vf2)
	}
}

func TestDrawLoResCollisionIsBoolean(t *testing.T) {
	vm := newTestVM(DialectSCHIP)
	vm.fb.SetResolution(LoRes)
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0xFF, 0xFF, 0xFF})

	vm.draw(0, 0, 3)
	vf := vm.draw(0, 0, 3)
	if vf != 1 {
		t.Errorf("S-CHIP lo-res VF should be boolean, want 1 got %d", vf)
	}
}

func TestDrawPlaneMaskZeroIsNoop(t *testing.T) {
	vm := newTestVM(DialectXOCHIP)
	vm.planeMask = 0
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0xFF})

	vf := vm.draw(0, 0, 1)
	if vf != 0 {
		t.Errorf("plane mask 0 should draw nothing and report VF=0, got %d", vf)
	}
	if vm.fb.GetPixel(0, 0, 0) || vm.fb.GetPixel(1, 0, 0) {
		t.Errorf("plane mask 0 must not touch either plane")
	}
}

func TestDrawTwoPlaneConsumesSequentialBlocks(t *testing.T) {
	vm := newTestVM(DialectXOCHIP)
	vm.planeMask = 3
	vm.i = 0x300
	spriteAt(vm, 0x300, []byte{0xF0, 0x0F}) // plane1 block, then plane2 block

	vm.draw(0, 0, 1)
	if !vm.fb.GetPixel(0, 0, 0) || vm.fb.GetPixel(0, 4, 0) {
		t.Errorf("plane 0 should receive the first block (0xF0)")
	}
	if vm.fb.GetPixel(1, 0, 0) || !vm.fb.GetPixel(1, 4, 0) {
		t.Errorf("plane 1 should receive the second block (0x0F)")
	}
}
