package overlay

import (
	"context"
	"errors"
	"testing"

	"cursor-snap/capture"
)

type nopCapturer struct{}

func (nopCapturer) Capture(region capture.Region) (capture.Result, error) {
	return capture.Result{}, nil
}

func TestDrawOrigin(t *testing.T) {
	tests := []struct {
		lx, ly, w, h int
		wantX, wantY int
	}{
		{1000, 500, 800, 600, 601, 201},
		{0, 0, 10, 10, -4, -4},
		{7, 7, 5, 5, 6, 6},   // odd sizes
		{3, 3, 1, 1, 4, 4},   // degenerate 1x1
		{50, 50, 2, 2, 50, 50},
	}
	for _, tt := range tests {
		x, y := drawOrigin(tt.lx, tt.ly, tt.w, tt.h)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("drawOrigin(%d,%d,%d,%d) = (%d,%d), want (%d,%d)",
				tt.lx, tt.ly, tt.w, tt.h, x, y, tt.wantX, tt.wantY)
		}
	}
}

// The drawn rectangle and the saved region must differ by exactly the +1
// cosmetic offset, for any cursor position and any positive size.
func TestDrawOffsetAgainstCaptureOrigin(t *testing.T) {
	cursors := []struct{ x, y int }{{0, 0}, {1000, 500}, {-300, 17}, {1, 1}}
	sizes := []struct{ w, h int }{{800, 600}, {801, 601}, {1, 1}, {2, 3}}

	for _, c := range cursors {
		for _, sz := range sizes {
			dx, dy := drawOrigin(c.x, c.y, sz.w, sz.h)
			r := capture.CenteredAt(c.x, c.y, sz.w, sz.h)
			if dx != r.X+1 || dy != r.Y+1 {
				t.Errorf("cursor (%d,%d) size %dx%d: draw (%d,%d), capture (%d,%d); want draw = capture + (1,1)",
					c.x, c.y, sz.w, sz.h, dx, dy, r.X, r.Y)
			}
		}
	}
}

func TestRunRefusesBadConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"empty folder", Options{Width: 800, Height: 600, Capturer: nopCapturer{}}, ErrNoFolder},
		{"blank folder", Options{Folder: "  ", Width: 800, Height: 600, Capturer: nopCapturer{}}, ErrNoFolder},
		{"zero width", Options{Folder: "out", Width: 0, Height: 600, Capturer: nopCapturer{}}, ErrInvalidSize},
		{"zero height", Options{Folder: "out", Width: 800, Height: 0, Capturer: nopCapturer{}}, ErrInvalidSize},
		{"negative size", Options{Folder: "out", Width: -1, Height: -1, Capturer: nopCapturer{}}, ErrInvalidSize},
		{"nil capturer", Options{Folder: "out", Width: 800, Height: 600}, ErrNoCapturer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closed := false
			tt.opts.OnClosed = func() { closed = true }

			err := Run(context.Background(), tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run = %v, want %v", err, tt.wantErr)
			}
			// A refused open never transitioned to Active, so the session-end
			// callback must not fire.
			if closed {
				t.Error("OnClosed invoked for refused open")
			}
		})
	}
}
