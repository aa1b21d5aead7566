//go:build windows

package notification

import (
	"log"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procMessageBox       = user32.NewProc("MessageBoxW")
	procCreateWindowEx   = user32.NewProc("CreateWindowExW")
	procDefWindowProc    = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procSetWindowPos     = user32.NewProc("SetWindowPos")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procSetTimer         = user32.NewProc("SetTimer")
	procKillTimer        = user32.NewProc("KillTimer")
	procRegisterClassEx  = user32.NewProc("RegisterClassExW")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procGetMessage       = user32.NewProc("GetMessageW")
	procPeekMessage      = user32.NewProc("PeekMessageW")
	procDispatchMessage  = user32.NewProc("DispatchMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procBeginPaint       = user32.NewProc("BeginPaint")
	procEndPaint         = user32.NewProc("EndPaint")
	procDrawText         = user32.NewProc("DrawTextW")
	procLoadCursor       = user32.NewProc("LoadCursorW")
	procPostThreadMsg    = user32.NewProc("PostThreadMessageW")
	procGetCurThreadID   = kernel32.NewProc("GetCurrentThreadId")
)

const (
	wsPopup          = 0x80000000
	wsVisible        = 0x10000000
	wsExNoActivate   = 0x08000000
	wsExToolWindow   = 0x00000080
	wsExClientEdge   = 0x00000200
	wmDestroy        = 0x0002
	wmPaint          = 0x000F
	wmTimer          = 0x0113
	wmClose          = 0x0010
	wmLButtonDown    = 0x0201
	wmRButtonDown    = 0x0204
	wmNCLButtonDown  = 0x00A1
	wmExitLoop       = 0x0400 + 2 // WM_USER + 2
	swShow           = 5
	swpNoActivate    = 0x0010
	swpNoMove        = 0x0002
	swpNoSize        = 0x0001
	hwndTopmost      = ^uintptr(0)
	smCYScreen       = 1
	dtWordBreak      = 0x00000010
	colorWindow      = 5
	idcArrow         = 32512
	pmRemove         = 1
	closeTimerID     = 1
	toastDurationMs  = 3000
	toastClassName   = "CursorSnapToastClass"
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     syscall.Handle
	HIcon         syscall.Handle
	HCursor       syscall.Handle
	HbrBackground syscall.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       syscall.Handle
}

type point struct{ X, Y int32 }

type winMsg struct {
	Hwnd    syscall.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type rect struct{ Left, Top, Right, Bottom int32 }

type paintStruct struct {
	Hdc         syscall.Handle
	FErase      int32
	RcPaint     rect
	FRestore    int32
	FIncUpdate  int32
	RgbReserved [32]byte
}

var (
	toastText  string
	toastQueue chan string
	toastOnce  sync.Once
	classMu    sync.Mutex
	classDone  bool
)

func showBlockingError(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	msgPtr, _ := syscall.UTF16PtrFromString(message)
	const mbOK = 0x00000000
	const mbIconError = 0x00000010
	const mbSystemModal = 0x00001000
	procMessageBox.Call(0, uintptr(unsafe.Pointer(msgPtr)), uintptr(unsafe.Pointer(titlePtr)), mbOK|mbIconError|mbSystemModal)
}

// showToast queues a toast for the single popup thread. All toast windows
// live on one locked OS thread so their message loops never interleave with
// the overlay's.
func showToast(text string) {
	toastOnce.Do(func() {
		toastQueue = make(chan string, 10)
		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Toast: thread panic: %v", r)
				}
			}()
			if err := registerToastClass(); err != nil {
				log.Printf("Toast: failed to register window class: %v", err)
				return
			}
			for t := range toastQueue {
				if err := showOneToast(t); err != nil {
					log.Printf("Toast: failed to show popup: %v", err)
				}
			}
		}()
	})

	select {
	case toastQueue <- text:
	default:
		// Queue full; drop rather than block the caller.
	}
}

func toastWndProc(hwnd syscall.Handle, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmPaint:
		var ps paintStruct
		hdc, _, _ := procBeginPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
		r := rect{Left: 10, Top: 10, Right: 370, Bottom: 70}
		textPtr, _ := syscall.UTF16PtrFromString(toastText)
		procDrawText.Call(hdc, uintptr(unsafe.Pointer(textPtr)), uintptr(^uint32(0)), uintptr(unsafe.Pointer(&r)), dtWordBreak)
		procEndPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
		return 0

	case wmTimer, wmLButtonDown, wmRButtonDown, wmNCLButtonDown, wmClose:
		procKillTimer.Call(uintptr(hwnd), closeTimerID)
		procDestroyWindow.Call(uintptr(hwnd))
		return 0

	case wmDestroy:
		// Post the exit message to the thread, not the window, so the
		// message loop ends even though the window handle is gone.
		threadID, _, _ := procGetCurThreadID.Call()
		procPostThreadMsg.Call(threadID, wmExitLoop, 0, 0)
		return 0
	}
	ret, _, _ := procDefWindowProc.Call(uintptr(hwnd), uintptr(msg), wParam, lParam)
	return ret
}

func registerToastClass() error {
	classMu.Lock()
	defer classMu.Unlock()
	if classDone {
		return nil
	}
	className, _ := syscall.UTF16PtrFromString(toastClassName)
	cursor, _, _ := procLoadCursor.Call(0, idcArrow)
	wc := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		LpfnWndProc:   syscall.NewCallback(toastWndProc),
		HCursor:       syscall.Handle(cursor),
		HbrBackground: syscall.Handle(colorWindow + 1),
		LpszClassName: className,
	}
	if atom, _, _ := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return syscall.GetLastError()
	}
	classDone = true
	return nil
}

func showOneToast(text string) error {
	toastText = text

	className, _ := syscall.UTF16PtrFromString(toastClassName)
	windowName, _ := syscall.UTF16PtrFromString("cursor-snap")

	screenHeight, _, _ := procGetSystemMetrics.Call(smCYScreen)
	x, y := int32(20), int32(screenHeight)-120
	width, height := int32(380), int32(80)

	hwnd, _, _ := procCreateWindowEx.Call(
		wsExNoActivate|wsExToolWindow|wsExClientEdge,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(windowName)),
		wsPopup|wsVisible,
		uintptr(x), uintptr(y), uintptr(width), uintptr(height),
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		return nil // never let a toast failure break a capture
	}

	procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoActivate|swpNoMove|swpNoSize)
	procShowWindow.Call(hwnd, swShow)
	procUpdateWindow.Call(hwnd)
	procSetTimer.Call(hwnd, closeTimerID, toastDurationMs, 0)

	var msg winMsg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if ret == 0 || msg.Message == wmExitLoop {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
	}

	// Flush leftovers so a stale message cannot bleed into the next toast.
	var flush winMsg
	for {
		ret, _, _ := procPeekMessage.Call(uintptr(unsafe.Pointer(&flush)), 0, 0, 0, pmRemove)
		if ret == 0 {
			break
		}
	}
	return nil
}
