//go:build windows

package overlay

import (
	"context"
	"fmt"
	"log"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"cursor-snap/capture"
)

const (
	outlineThickness = 3

	// Zero-delay render timer; the OS clamps it to USER_TIMER_MINIMUM, which
	// is as fast as the message loop can repaint anyway.
	renderTimerID   = 1
	keyPollTimerID  = 2
	keyPollInterval = 25 // ms

	closeKeyVK = 'G' // Ctrl+G, same combination that opens the overlay

	// Posted by the context watcher to close the session from outside.
	wmCloseRequest = win.WM_USER + 1

	ulwAlpha   = 0x00000002
	acSrcOver  = 0x00
	acSrcAlpha = 0x01
)

var (
	user32DLL            = windows.NewLazySystemDLL("user32.dll")
	procUpdateLayered    = user32DLL.NewProc("UpdateLayeredWindow")
	procCreateCursor     = user32DLL.NewProc("CreateCursor")
	procDestroyCursor    = user32DLL.NewProc("DestroyCursor")
	procGetAsyncKeyState = user32DLL.NewProc("GetAsyncKeyState")
)

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

// session holds the state of the single Active overlay. wndProc has no
// closure context, so it reads the package-level pointer; exclusivity is
// guaranteed by the event loop being the only caller of Run.
type session struct {
	opts Options

	hwnd               win.HWND
	virtualX, virtualY int32
	frame              *frameBuffer

	blankCursor win.HCURSOR
	arrowCursor win.HCURSOR
	grabbed     bool
	released    bool

	ctrlWasDown   bool
	escapeWasDown bool
}

var active *session

func runSession(ctx context.Context, opts Options) error {
	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
	vw := win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)
	vh := win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)
	if vw <= 0 || vh <= 0 {
		return fmt.Errorf("no usable display: virtual screen %dx%d", vw, vh)
	}
	log.Printf("Overlay: virtual screen x=%d y=%d w=%d h=%d, region %dx%d", vx, vy, vw, vh, opts.Width, opts.Height)

	// Unique class name so a crashed prior registration never collides.
	classNameStr := fmt.Sprintf("CursorSnapOverlay_%d", time.Now().UnixNano())
	className := syscall.StringToUTF16Ptr(classNameStr)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HbrBackground: 0,
		LpszClassName: className,
	}
	if atom := win.RegisterClassEx(&wndClass); atom == 0 {
		return fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	blank, err := createBlankCursor()
	if err != nil {
		return err
	}

	frame, err := newFrameBuffer(vw, vh)
	if err != nil {
		destroyCursor(blank)
		return err
	}

	s := &session{
		opts:        opts,
		virtualX:    vx,
		virtualY:    vy,
		frame:       frame,
		blankCursor: blank,
		arrowCursor: win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
	}
	active = s
	defer func() {
		active = nil
		frame.release()
		destroyCursor(blank)
	}()

	s.hwnd = win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		className,
		syscall.StringToUTF16Ptr("cursor-snap overlay"),
		win.WS_POPUP|win.WS_VISIBLE,
		vx, vy, vw, vh,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if s.hwnd == 0 {
		return fmt.Errorf("failed to create overlay window")
	}

	// First frame before the window is shown as grabbed, so there is no
	// flash of an empty layered surface.
	s.renderFrame()

	win.SetForegroundWindow(s.hwnd)
	win.BringWindowToTop(s.hwnd)
	win.SetFocus(s.hwnd)

	win.SetCapture(s.hwnd)
	win.SetCursor(s.blankCursor)
	s.grabbed = true

	if win.SetTimer(s.hwnd, renderTimerID, 0, 0) == 0 {
		s.releaseGrabs()
		win.DestroyWindow(s.hwnd)
		flushMessages()
		return fmt.Errorf("failed to start render timer")
	}
	if win.SetTimer(s.hwnd, keyPollTimerID, keyPollInterval, 0) == 0 {
		log.Printf("Overlay: key poll timer unavailable, relying on WM_KEYDOWN only")
	}

	stopWatcher := watchContext(ctx, s.hwnd)
	defer stopWatcher()

	log.Printf("Overlay: session active")

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 { // WM_QUIT, posted by WM_DESTROY
			break
		}
		if ret == -1 {
			log.Printf("Overlay: GetMessage error, forcing close")
			win.DestroyWindow(s.hwnd)
			continue
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	// Drop anything still queued (stray timer ticks, the closing key-up) so
	// it cannot leak into the next session on this thread.
	flushMessages()

	log.Printf("Overlay: session closed, state restored")
	if opts.OnClosed != nil {
		opts.OnClosed()
	}
	return nil
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	s := active
	if s == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_TIMER:
		switch wParam {
		case renderTimerID:
			s.renderFrame()
		case keyPollTimerID:
			s.pollCloseKeys()
		}
		return 0

	case win.WM_LBUTTONDOWN:
		s.handleClick()
		return 0 // consume; the overlay stays up and grabbed

	case win.WM_KEYDOWN:
		switch wParam {
		case win.VK_ESCAPE:
			s.requestClose("Escape")
		case closeKeyVK:
			if keyIsDown(win.VK_CONTROL) {
				s.requestClose("Ctrl+G")
			}
		}
		return 0

	case wmCloseRequest:
		s.requestClose("external request")
		return 0

	case win.WM_SETCURSOR:
		win.SetCursor(s.blankCursor)
		return 1

	case win.WM_NCHITTEST:
		// Every point is client area so all mouse events reach us.
		return uintptr(win.HTCLIENT)

	case win.WM_CAPTURECHANGED:
		// Another window stole the mouse capture; without it the overlay
		// cannot do its job, so end the session.
		if s.grabbed && !s.released {
			log.Printf("Overlay: lost mouse capture, closing")
			win.DestroyWindow(hwnd)
		}
		return 0

	case win.WM_DESTROY:
		s.releaseGrabs()
		win.PostQuitMessage(0)
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// renderFrame recomputes the tracking rectangle from the live cursor
// position and presents one frame: a 1/255-alpha black veneer with the
// outlined capture rectangle on top. The veneer keeps every pixel of the
// layered window hit-testable while leaving the desktop visible, so captures
// see the real screen contents.
func (s *session) renderFrame() {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return
	}
	lx := int(pt.X - s.virtualX)
	ly := int(pt.Y - s.virtualY)

	s.frame.clear()
	x, y := drawOrigin(lx, ly, s.opts.Width, s.opts.Height)
	s.frame.strokeRect(x, y, s.opts.Width, s.opts.Height)
	s.frame.present(s.hwnd, s.virtualX, s.virtualY)
}

// handleClick captures the region centered on the current global cursor
// position. A failed capture is reported and the session stays Active.
func (s *session) handleClick() {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return
	}
	region := capture.CenteredAt(int(pt.X), int(pt.Y), s.opts.Width, s.opts.Height)
	log.Printf("Overlay: click at global (%d,%d), capturing region x=%d y=%d %dx%d",
		pt.X, pt.Y, region.X, region.Y, region.Width, region.Height)

	res, err := s.opts.Capturer.Capture(region)
	if err != nil {
		log.Printf("Overlay: capture failed: %v", err)
	} else {
		log.Printf("Overlay: saved %s", res.Path)
	}
	if s.opts.OnCaptured != nil {
		s.opts.OnCaptured(res, err)
	}
}

// pollCloseKeys backs up WM_KEYDOWN with async key state, in case a close
// keypress never arrives as a message (focus glitches under the grab).
func (s *session) pollCloseKeys() {
	escDown := keyIsDown(win.VK_ESCAPE)
	if escDown && !s.escapeWasDown {
		s.requestClose("Escape (polled)")
	}
	s.escapeWasDown = escDown

	ctrlG := keyIsDown(win.VK_CONTROL) && keyIsDown(closeKeyVK)
	if ctrlG && !s.ctrlWasDown {
		s.requestClose("Ctrl+G (polled)")
	}
	s.ctrlWasDown = ctrlG
}

func (s *session) requestClose(trigger string) {
	log.Printf("Overlay: close requested (%s)", trigger)
	win.DestroyWindow(s.hwnd)
}

// releaseGrabs undoes every piece of systemwide state the session took:
// timers, the mouse capture and the pointer image. It runs exactly once per
// session no matter which exit path triggered it.
func (s *session) releaseGrabs() {
	if s.released {
		return
	}
	s.released = true

	win.KillTimer(s.hwnd, renderTimerID)
	win.KillTimer(s.hwnd, keyPollTimerID)
	if s.grabbed {
		win.ReleaseCapture()
		s.grabbed = false
	}
	if s.arrowCursor != 0 {
		win.SetCursor(s.arrowCursor)
	}
}

// watchContext posts a close request into the overlay's message queue when
// ctx is cancelled. The returned stop function must be called before the
// session state is torn down.
func watchContext(ctx context.Context, hwnd win.HWND) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			win.PostMessage(hwnd, wmCloseRequest, 0, 0)
		case <-done:
		}
	}()
	return func() { close(done) }
}

func flushMessages() {
	var msg win.MSG
	for win.PeekMessage(&msg, 0, 0, 0, win.PM_REMOVE) {
	}
}

func keyIsDown(vk int32) bool {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(state)&0x8000 != 0
}

// createBlankCursor builds a fully transparent cursor at the system cursor
// size. While the overlay holds the mouse capture this replaces the pointer
// image everywhere on screen.
func createBlankCursor() (win.HCURSOR, error) {
	cw := int(win.GetSystemMetrics(win.SM_CXCURSOR))
	ch := int(win.GetSystemMetrics(win.SM_CYCURSOR))
	if cw <= 0 || ch <= 0 {
		cw, ch = 32, 32
	}
	maskLen := cw / 8 * ch
	andMask := make([]byte, maskLen)
	xorMask := make([]byte, maskLen)
	for i := range andMask {
		andMask[i] = 0xFF
	}

	h, _, _ := procCreateCursor.Call(
		uintptr(win.GetModuleHandle(nil)),
		0, 0,
		uintptr(cw), uintptr(ch),
		uintptr(unsafe.Pointer(&andMask[0])),
		uintptr(unsafe.Pointer(&xorMask[0])),
	)
	if h == 0 {
		return 0, fmt.Errorf("failed to create blank cursor")
	}
	return win.HCURSOR(h), nil
}

func destroyCursor(h win.HCURSOR) {
	if h != 0 {
		procDestroyCursor.Call(uintptr(h))
	}
}

// frameBuffer is the 32bpp premultiplied-alpha DIB the render loop paints
// into, created once per session and reused every tick.
type frameBuffer struct {
	width, height int32
	screenDC      win.HDC
	memDC         win.HDC
	bitmap        win.HBITMAP
	oldBitmap     win.HGDIOBJ
	bits          []byte
	freed         bool
}

func newFrameBuffer(width, height int32) (*frameBuffer, error) {
	screenDC := win.GetDC(0)
	if screenDC == 0 {
		return nil, fmt.Errorf("failed to get screen DC")
	}
	memDC := win.CreateCompatibleDC(screenDC)
	if memDC == 0 {
		win.ReleaseDC(0, screenDC)
		return nil, fmt.Errorf("failed to create memory DC")
	}

	bi := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       width,
			BiHeight:      -height, // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	var pBits unsafe.Pointer
	bitmap := win.CreateDIBSection(memDC, &bi.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if bitmap == 0 || pBits == nil {
		win.DeleteDC(memDC)
		win.ReleaseDC(0, screenDC)
		return nil, fmt.Errorf("failed to create %dx%d DIB section", width, height)
	}

	return &frameBuffer{
		width:     width,
		height:    height,
		screenDC:  screenDC,
		memDC:     memDC,
		bitmap:    bitmap,
		oldBitmap: win.SelectObject(memDC, win.HGDIOBJ(bitmap)),
		bits:      unsafe.Slice((*byte)(pBits), int(width)*int(height)*4),
	}, nil
}

// clear fills the frame with black at alpha 1: visually imperceptible but
// nonzero, because fully transparent layered pixels would let input fall
// through to the windows underneath.
func (f *frameBuffer) clear() {
	for i := 0; i < len(f.bits); i += 4 {
		f.bits[i] = 0
		f.bits[i+1] = 0
		f.bits[i+2] = 0
		f.bits[i+3] = 1
	}
}

// strokeRect draws the tracking rectangle as an opaque red border, clipped
// to the frame.
func (f *frameBuffer) strokeRect(x, y, w, h int) {
	for t := 0; t < outlineThickness; t++ {
		f.hline(x, x+w, y+t)
		f.hline(x, x+w, y+h-1-t)
		f.vline(y, y+h, x+t)
		f.vline(y, y+h, x+w-1-t)
	}
}

func (f *frameBuffer) hline(x0, x1, y int) {
	if y < 0 || y >= int(f.height) {
		return
	}
	for x := max(x0, 0); x < min(x1, int(f.width)); x++ {
		f.setRed(x, y)
	}
}

func (f *frameBuffer) vline(y0, y1, x int) {
	if x < 0 || x >= int(f.width) {
		return
	}
	for y := max(y0, 0); y < min(y1, int(f.height)); y++ {
		f.setRed(x, y)
	}
}

func (f *frameBuffer) setRed(x, y int) {
	i := (y*int(f.width) + x) * 4
	f.bits[i] = 0      // B
	f.bits[i+1] = 0    // G
	f.bits[i+2] = 0xFF // R
	f.bits[i+3] = 0xFF // A
}

func (f *frameBuffer) present(hwnd win.HWND, destX, destY int32) {
	blend := blendFunction{
		BlendOp:             acSrcOver,
		SourceConstantAlpha: 255,
		AlphaFormat:         acSrcAlpha,
	}
	pos := win.POINT{X: destX, Y: destY}
	size := win.SIZE{CX: f.width, CY: f.height}
	var src win.POINT

	procUpdateLayered.Call(
		uintptr(hwnd),
		uintptr(f.screenDC),
		uintptr(unsafe.Pointer(&pos)),
		uintptr(unsafe.Pointer(&size)),
		uintptr(f.memDC),
		uintptr(unsafe.Pointer(&src)),
		0,
		uintptr(unsafe.Pointer(&blend)),
		ulwAlpha,
	)
}

func (f *frameBuffer) release() {
	if f.freed {
		return
	}
	f.freed = true
	win.SelectObject(f.memDC, f.oldBitmap)
	win.DeleteObject(win.HGDIOBJ(f.bitmap))
	win.DeleteDC(f.memDC)
	win.ReleaseDC(0, f.screenDC)
}
