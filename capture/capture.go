package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"

	"cursor-snap/clipboard"
)

// ErrUnavailable reports that the display surface could not be read at all
// (no display, or the OS refused access). Write failures are returned as
// plain wrapped filesystem errors so callers can tell the two apart.
var ErrUnavailable = errors.New("screen capture unavailable")

// Region is a capture rectangle in global virtual-screen coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Region) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// CenteredAt returns the w×h region whose center is the cursor position
// (cx, cy). The origin is (cx - w/2, cy - h/2) under integer division; the
// +1 offset the overlay uses when drawing is cosmetic and does not apply to
// the saved region.
func CenteredAt(cx, cy, w, h int) Region {
	return Region{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}

// Result describes one completed capture.
type Result struct {
	Path   string
	Width  int
	Height int
}

// Engine captures screen regions and writes them to timestamped PNG files in
// a fixed destination folder. It holds no state between captures; each call
// is independent.
type Engine struct {
	Folder          string
	CopyToClipboard bool

	now  func() time.Time
	grab func(image.Rectangle) (*image.RGBA, error)
}

func NewEngine(folder string, copyToClipboard bool) *Engine {
	return &Engine{
		Folder:          folder,
		CopyToClipboard: copyToClipboard,
		now:             time.Now,
		grab:            screenshot.CaptureRect,
	}
}

// Capture reads the current screen contents inside region and writes them to
// screenshot_<unix-seconds>.png in the engine's folder. Exactly one file is
// written per successful call. Errors are reported to the caller and leave no
// partial state behind.
func (e *Engine) Capture(region Region) (Result, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return Result{}, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}

	img, err := e.grab(region.Bounds())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("encode png: %w", err)
	}

	name := fmt.Sprintf("screenshot_%d.png", e.now().Unix())
	path := filepath.Join(e.Folder, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return Result{}, fmt.Errorf("write screenshot: %w", err)
	}

	if e.CopyToClipboard {
		// Best effort; a clipboard problem must not fail the capture.
		if err := clipboard.WriteImage(buf.Bytes()); err != nil {
			log.Printf("Capture: clipboard copy failed: %v", err)
		}
	}

	bounds := img.Bounds()
	return Result{Path: path, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: no active displays found", ErrUnavailable)
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}
