package overlay

import (
	"context"
	"errors"
	"strings"

	"cursor-snap/capture"
)

// Configuration errors reported by Run before any window or grab is created.
var (
	ErrNoFolder    = errors.New("no destination folder configured")
	ErrInvalidSize = errors.New("capture region dimensions must be positive")
	ErrNoCapturer  = errors.New("capturer is required")
)

// Capturer saves one screen region and returns the written file. The overlay
// calls it synchronously from its click handler, so implementations should be
// fast enough not to stall the cursor-tracking redraw.
type Capturer interface {
	Capture(region capture.Region) (capture.Result, error)
}

// Options configures one overlay session. Width and Height are the capture
// region size; the rectangle follows the cursor, centered on it.
type Options struct {
	Width  int
	Height int
	Folder string

	Capturer Capturer

	// OnClosed is invoked exactly once when an Active session ends, after all
	// grabbed state has been restored. It is not called when Run refuses to
	// open.
	OnClosed func()

	// OnCaptured, when set, receives the outcome of every click-triggered
	// capture. Called on the overlay's message-loop goroutine.
	OnCaptured func(capture.Result, error)
}

func (o Options) validate() error {
	if strings.TrimSpace(o.Folder) == "" {
		return ErrNoFolder
	}
	if o.Width <= 0 || o.Height <= 0 {
		return ErrInvalidSize
	}
	if o.Capturer == nil {
		return ErrNoCapturer
	}
	return nil
}

// Run opens the full-screen overlay and blocks until the session ends: the
// user presses Ctrl+G or Escape, or ctx is cancelled. Left clicks capture the
// rectangle under the cursor without closing the session. Setup is
// all-or-nothing: if any step fails, everything acquired so far is rolled
// back and the error is returned with the session still Inactive.
//
// Only one session can exist at a time; the single event-loop goroutine is
// the only caller, so this is enforced by construction rather than checked.
func Run(ctx context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	return runSession(ctx, opts)
}

// drawOrigin returns the overlay-local top-left corner of the stroked
// rectangle for a cursor at (lx, ly). The +1 is a deliberate centering
// correction so odd and even sizes visually center on the cursor tip; the
// saved region (capture.CenteredAt) does not carry it.
func drawOrigin(lx, ly, w, h int) (int, int) {
	return lx - w/2 + 1, ly - h/2 + 1
}
