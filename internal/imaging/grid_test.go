package imaging

import "testing"

func TestGridOverlay_Lines(t *testing.T) {
	src := solidRaster(30, 30, 0, 0, 0)
	out := GridOverlay(src, 10, false, "#FF0000")

	if r, g, b := out.RGB(10, 5); r != 255 || g != 0 || b != 0 {
		t.Errorf("vertical line pixel: got (%d,%d,%d), want (255,0,0)", r, g, b)
	}
	if r, g, b := out.RGB(5, 20); r != 255 || g != 0 || b != 0 {
		t.Errorf("horizontal line pixel: got (%d,%d,%d), want (255,0,0)", r, g, b)
	}
	if r, g, b := out.RGB(5, 5); r != 0 || g != 0 || b != 0 {
		t.Errorf("cell pixel: got (%d,%d,%d), want (0,0,0)", r, g, b)
	}
	if r, _, _ := src.RGB(10, 5); r != 0 {
		t.Error("GridOverlay modified its source")
	}
}

func TestGridOverlay_InvalidColorFallsBack(t *testing.T) {
	src := solidRaster(20, 20, 0, 0, 0)
	out := GridOverlay(src, 10, false, "not-a-color")

	if r, g, b := out.RGB(10, 3); r != 255 || g != 255 || b != 255 {
		t.Errorf("got (%d,%d,%d), want default white", r, g, b)
	}
}

func TestGridOverlay_ZeroSpacing(t *testing.T) {
	src := solidRaster(5, 5, 1, 2, 3)
	out := GridOverlay(src, 0, true, "")

	for i := range out.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("byte %d differs for zero spacing", i)
		}
	}
}

func TestGridOverlay_Labels(t *testing.T) {
	src := solidRaster(60, 60, 0, 128, 0)
	plain := GridOverlay(src, 20, false, "")
	labeled := GridOverlay(src, 20, true, "")

	// The label background starts one pixel up-left of (x+2, y+2).
	if r, g, b := labeled.RGB(21, 21); r != 0 || g != 0 || b != 0 {
		t.Errorf("label background: got (%d,%d,%d), want black", r, g, b)
	}
	if r, g, b := plain.RGB(21, 21); r != 0 || g != 128 || b != 0 {
		t.Errorf("unlabeled cell: got (%d,%d,%d), want (0,128,0)", r, g, b)
	}
}
