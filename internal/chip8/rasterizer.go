package chip8

// spriteShape returns the row count and bit-width of a DXYN sprite. N in
// 1..15 draws an 8xN sprite; N==0 draws a 16x16 sprite (spec.md §4.3's
// adopted interpretation, uniform across dialects).
func spriteShape(n byte) (rows, bitsWide int) {
	if n == 0 {
		return 16, 16
	}
	return int(n), 8
}

// draw implements DXYN/DXY0. x, y are the raw register values (reduced
// modulo the logical screen before use); n is the opcode's low nibble.
// It returns the value to store in VF.
func (vm *VM) draw(vx, vy byte, n byte) byte {
	if vm.planeMask == 0 {
		return 0
	}

	w, h := vm.fb.Dims()
	x0 := int(vx) % w
	y0 := int(vy) % h

	rows, bitsWide := spriteShape(n)
	bytesPerRow := bitsWide / 8
	blockLen := uint16(rows * bytesPerRow)

	type planeBlock struct {
		index int
		data  []byte
	}
	var blocks []planeBlock
	offset := vm.i
	for p := 0; p < 2; p++ {
		if vm.planeMask&(1<<uint(p)) == 0 {
			continue
		}
		data := make([]byte, blockLen)
		for i := uint16(0); i < blockLen; i++ {
			data[i] = vm.memory[(offset+i)%4096]
		}
		blocks = append(blocks, planeBlock{index: p, data: data})
		offset += blockLen
	}

	wrapH := vm.quirks.SpriteWrapHorizontal && !vm.quirks.ClipSprites
	wrapV := vm.quirks.SpriteWrapVertical && !vm.quirks.ClipSprites

	collisionRows := 0
	clippedBottomRows := 0
	sawCollision := false

	for r := 0; r < rows; r++ {
		ty := y0 + r
		if ty >= h {
			if wrapV {
				ty %= h
			} else {
				clippedBottomRows++
				continue
			}
		}

		rowCollision := false
		for _, blk := range blocks {
			for bit := 0; bit < bitsWide; bit++ {
				tx := x0 + bit
				if tx >= w {
					if wrapH {
						tx %= w
					} else {
						continue
					}
				}
				byteIdx := bit / 8
				bitInByte := byte(0x80 >> uint(bit%8))
				if blk.data[r*bytesPerRow+byteIdx]&bitInByte == 0 {
					continue
				}
				if vm.fb.TogglePixel(blk.index, tx, ty) {
					rowCollision = true
				}
			}
		}
		if rowCollision {
			collisionRows++
			sawCollision = true
		}
	}

	if vm.usesRowCountCollision() {
		total := collisionRows + clippedBottomRows
		if total > 255 {
			total = 255
		}
		return byte(total)
	}
	if sawCollision {
		return 1
	}
	return 0
}

// usesRowCountCollision decides which of spec.md §4.3's two VF rules
// applies: XO-CHIP always counts rows, S-CHIP counts rows only in hi-res,
// everything else (CHIP-8, S-CHIP lo-res) is boolean.
func (vm *VM) usesRowCountCollision() bool {
	if vm.dialect == DialectXOCHIP {
		return true
	}
	return vm.dialect == DialectSCHIP && vm.fb.resolution == HiRes
}
