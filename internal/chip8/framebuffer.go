package chip8

// Resolution is the VM's active display mode.
type Resolution int

const (
	LoRes Resolution = iota // 64x32 logical pixels
	HiRes                   // 128x64 logical pixels
)

const (
	physWidth  = 128
	physHeight = 64
	planeBytes = physWidth * physHeight / 8
)

// Framebuffer is two independent monochrome bit planes, always stored at
// the hi-res physical dimensions. Lo-res mode doesn't get its own,
// smaller backing store; it just addresses the top-left 64x32
// sub-rectangle of the same hi-res-stride planes. The active Resolution
// only changes which sub-rectangle is logically visible and addressable
// by CLS/scroll/DXYN.
type Framebuffer struct {
	planes     [2][planeBytes]byte
	resolution Resolution
}

// FramebufferView is the read-only snapshot the host renderer consumes.
type FramebufferView struct {
	Planes     [2][planeBytes]byte
	Resolution Resolution
}

func (fb *Framebuffer) View() FramebufferView {
	return FramebufferView{Planes: fb.planes, Resolution: fb.resolution}
}

// Dims returns the logical width and height for the active resolution.
func (fb *Framebuffer) Dims() (w, h int) {
	return dimsFor(fb.resolution)
}

func dimsFor(r Resolution) (w, h int) {
	if r == HiRes {
		return physWidth, physHeight
	}
	return physWidth / 2, physHeight / 2
}

func bitIndex(x, y int) (byteIdx int, bit byte) {
	idx := y*physWidth + x
	return idx / 8, 0x80 >> uint(idx%8)
}

// GetPixel reads a single bit from a plane at physical-backing coordinates.
func (fb *Framebuffer) GetPixel(plane int, x, y int) bool {
	bi, bit := bitIndex(x, y)
	return fb.planes[plane][bi]&bit != 0
}

// TogglePixel XORs a single bit and reports whether it was a 1->0
// transition (a collision).
func (fb *Framebuffer) TogglePixel(plane int, x, y int) bool {
	bi, bit := bitIndex(x, y)
	was := fb.planes[plane][bi]&bit != 0
	fb.planes[plane][bi] ^= bit
	return was && fb.planes[plane][bi]&bit == 0
}

func planeSelected(mask byte, plane int) bool {
	return mask&(1<<uint(plane)) != 0
}

// Clear zeroes each plane selected by mask. Plane mask 0 is a no-op.
func (fb *Framebuffer) Clear(mask byte) {
	for p := 0; p < 2; p++ {
		if planeSelected(mask, p) {
			fb.planes[p] = [planeBytes]byte{}
		}
	}
}

// SetResolution switches the logical display mode. Per spec.md §4.4, a
// resolution change always clears the screen (both planes, unconditionally).
func (fb *Framebuffer) SetResolution(r Resolution) {
	fb.resolution = r
	fb.planes[0] = [planeBytes]byte{}
	fb.planes[1] = [planeBytes]byte{}
}

// scrollRows shifts the logical rectangle of a plane vertically by n rows,
// filling vacated rows with zero. A positive n scrolls content downward
// (rows move to higher y); a negative n scrolls upward.
func (fb *Framebuffer) scrollRows(mask byte, n int) {
	w, h := fb.Dims()
	if n == 0 {
		return
	}
	for p := 0; p < 2; p++ {
		if !planeSelected(mask, p) {
			continue
		}
		var dst [planeBytes]byte
		for y := 0; y < h; y++ {
			sy := y - n
			if sy < 0 || sy >= h {
				continue
			}
			for x := 0; x < w; x++ {
				if fb.GetPixel(p, x, sy) {
					bi, bit := bitIndex(x, y)
					dst[bi] |= bit
				}
			}
		}
		fb.planes[p] = dst
	}
}

// ScrollDown shifts the selected planes' logical rows down by n.
func (fb *Framebuffer) ScrollDown(mask byte, n int) { fb.scrollRows(mask, n) }

// ScrollUp shifts the selected planes' logical rows up by n (XO-CHIP 00DN).
func (fb *Framebuffer) ScrollUp(mask byte, n int) { fb.scrollRows(mask, -n) }

// scrollCols shifts the logical rectangle of a plane horizontally by n
// columns, filling vacated columns with zero.
func (fb *Framebuffer) scrollCols(mask byte, n int) {
	w, h := fb.Dims()
	if n == 0 {
		return
	}
	for p := 0; p < 2; p++ {
		if !planeSelected(mask, p) {
			continue
		}
		var dst [planeBytes]byte
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sx := x - n
				if sx < 0 || sx >= w {
					continue
				}
				if fb.GetPixel(p, sx, y) {
					bi, bit := bitIndex(x, y)
					dst[bi] |= bit
				}
			}
		}
		fb.planes[p] = dst
	}
}

// ScrollRight shifts the selected planes 4 pixels right (00FB).
func (fb *Framebuffer) ScrollRight(mask byte) { fb.scrollCols(mask, 4) }

// ScrollLeft shifts the selected planes 4 pixels left (00FC).
func (fb *Framebuffer) ScrollLeft(mask byte) { fb.scrollCols(mask, -4) }
