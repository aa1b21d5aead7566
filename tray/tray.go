package tray

import (
	"log"

	"github.com/getlantern/systray"
)

const (
	defaultTooltip = "Cursor Snap - press the hotkey to capture"
	busyTooltip    = "Cursor Snap - click to capture, Esc to cancel"
)

// Config carries the menu callbacks. Each callback is invoked from the
// systray's own goroutine and must not block; post into a channel instead.
type Config struct {
	OnCapture  func()
	OnSettings func()
	OnExit     func()
}

var cfg Config

// Run starts the system tray and blocks until Quit is called. Must run on
// the process's main goroutine on Windows.
func Run(c Config) {
	cfg = c
	systray.Run(onReady, onExit)
}

// Quit tears the tray down, which unblocks Run.
func Quit() {
	systray.Quit()
}

// SetBusy switches the tooltip between idle and overlay-active wording.
func SetBusy(busy bool) {
	if busy {
		systray.SetTooltip(busyTooltip)
	} else {
		systray.SetTooltip(defaultTooltip)
	}
}

func onReady() {
	systray.SetIcon(iconData)
	systray.SetTitle("Cursor Snap")
	systray.SetTooltip(defaultTooltip)

	mCapture := systray.AddMenuItem("Capture", "Open the capture overlay")
	mSettings := systray.AddMenuItem("Settings", "Change capture size and save folder")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit Cursor Snap")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				log.Printf("Tray: capture requested")
				if cfg.OnCapture != nil {
					cfg.OnCapture()
				}
			case <-mSettings.ClickedCh:
				log.Printf("Tray: settings requested")
				if cfg.OnSettings != nil {
					cfg.OnSettings()
				}
			case <-mQuit.ClickedCh:
				log.Printf("Tray: quit requested")
				systray.Quit()
			}
		}
	}()
}

func onExit() {
	if cfg.OnExit != nil {
		cfg.OnExit()
	}
}
