//go:build windows

package main

import "syscall"

// enableDPIAwareness opts into per-monitor DPI awareness so overlay
// coordinates match physical pixels on scaled displays. Must run before any
// window is created or metric queried.
func enableDPIAwareness() {
	// Prefer per-monitor awareness via Shcore (Win 8.1+).
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		_, _, _ = setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		return
	}
	// Fallback: system-wide awareness (Vista+).
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		_, _, _ = setProcessDPIAware.Call()
	}
}
