package chip8

import "testing"

func TestFramebufferClearRespectsPlaneMask(t *testing.T) {
	var fb Framebuffer
	fb.planes[0][0] = 0xFF
	fb.planes[1][0] = 0xFF

	fb.Clear(1) // plane 0 only
	if fb.planes[0][0] != 0 {
		t.Errorf("plane 0 should be cleared")
	}
	if fb.planes[1][0] != 0xFF {
		t.Errorf("plane 1 should be untouched")
	}

	fb.planes[0][0] = 0xFF
	fb.Clear(0) // no-op
	if fb.planes[0][0] != 0xFF {
		t.Errorf("plane mask 0 must be a no-op")
	}
}

func TestFramebufferResolutionChangeClears(t *testing.T) {
	var fb Framebuffer
	fb.planes[0][0] = 0xFF
	fb.SetResolution(HiRes)
	if fb.planes[0][0] != 0 {
		t.Errorf("resolution change should clear both planes")
	}
	w, h := fb.Dims()
	if w != 128 || h != 64 {
		t.Errorf("hi-res dims should be 128x64, got %dx%d", w, h)
	}

	fb.SetResolution(LoRes)
	w, h = fb.Dims()
	if w != 64 || h != 32 {
		t.Errorf("lo-res dims should be 64x32, got %dx%d", w, h)
	}
}

func TestFramebufferScrollDown(t *testing.T) {
	var fb Framebuffer
	fb.SetResolution(HiRes)
	fb.TogglePixel(0, 5, 0)

	fb.ScrollDown(1, 4)
	if fb.GetPixel(0, 5, 0) {
		t.Errorf("original row should be vacated after scroll")
	}
	if !fb.GetPixel(0, 5, 4) {
		t.Errorf("pixel should have moved down 4 rows")
	}
}

func TestFramebufferScrollLeftRight(t *testing.T) {
	var fb Framebuffer
	fb.SetResolution(HiRes)
	fb.TogglePixel(0, 10, 0)

	fb.ScrollRight(1)
	if !fb.GetPixel(0, 14, 0) {
		t.Errorf("pixel should have moved 4 columns right")
	}

	fb.ScrollLeft(1)
	if !fb.GetPixel(0, 10, 0) {
		t.Errorf("pixel should have moved back 4 columns left")
	}
}

func TestFramebufferTogglePixelReportsCollision(t *testing.T) {
	var fb Framebuffer
	if fb.TogglePixel(0, 0, 0) {
		t.Errorf("setting a clear pixel is not a collision")
	}
	if !fb.TogglePixel(0, 0, 0) {
		t.Errorf("clearing a set pixel is a collision")
	}
}
