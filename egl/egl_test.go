package egl

import (
	"runtime"
	"testing"
)

// skipWithoutDisplay skips the test unless an OpenGL 3.3 context can be
// created on the default display.
func skipWithoutDisplay(t *testing.T) {
	h, err := NewHeadless(1, 1)
	if err != nil {
		t.Skipf("no EGL display: %v", err)
	}
	h.Close()
}

func TestNewHeadless(t *testing.T) {
	skipWithoutDisplay(t)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h, err := NewHeadless(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	if err := h.MakeCurrent(); err != nil {
		t.Fatal(err)
	}
}

func TestNewHeadlessUnsupportedVersion(t *testing.T) {
	skipWithoutDisplay(t)

	destroyed := 0
	orig := destroySurface
	destroySurface = func(d Display, s Surface) {
		destroyed++
		orig(d, s)
	}
	defer func() { destroySurface = orig }()

	if _, err := newHeadless(4, 4, 99, 0); err == nil {
		t.Fatalf("expected an error for OpenGL 99.0")
	}
	if destroyed != 1 {
		t.Fatalf("the pbuffer surface was not destroyed")
	}
}
