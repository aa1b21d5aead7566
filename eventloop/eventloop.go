package eventloop

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"cursor-snap/capture"
	"cursor-snap/notification"
	"cursor-snap/overlay"
	"cursor-snap/settings"
	"cursor-snap/tray"
)

// reopenDebounce ignores hotkey presses arriving right after an overlay
// session ends. The closing Ctrl+G generates its own hotkey event, and
// without the gap the overlay would reopen the instant it was dismissed.
const reopenDebounce = 300 * time.Millisecond

// Loop is the single-goroutine coordinator. Hotkey presses and tray clicks
// are posted into channels and handled here one at a time; the overlay
// session runs blocking on this goroutine, so a second trigger can never
// start a second overlay.
type Loop struct {
	hotkeyCh   chan struct{}
	settingsCh chan struct{}

	// Seams for tests. Production code leaves these at their defaults.
	loadSettings func() (*settings.Settings, error)
	openOverlay  func(ctx context.Context, opts overlay.Options) error
	newCapturer  func(cfg *settings.Settings) overlay.Capturer
	notify       func(text string)
	setBusy      func(busy bool)
	openSettings func()

	lastClosed time.Time
}

// New creates the loop. openSettings is invoked on this goroutine when the
// tray's Settings item is clicked; pass nil to ignore those clicks.
func New(openSettings func()) *Loop {
	return &Loop{
		hotkeyCh:     make(chan struct{}, 4),
		settingsCh:   make(chan struct{}, 1),
		loadSettings: settings.Load,
		openOverlay:  overlay.Run,
		newCapturer: func(cfg *settings.Settings) overlay.Capturer {
			return capture.NewEngine(cfg.Folder, cfg.CopyToClipboard)
		},
		notify:       notification.Toast,
		setBusy:      tray.SetBusy,
		openSettings: openSettings,
	}
}

// TriggerCapture posts a capture request. Safe to call from any goroutine;
// never blocks. Used as the hotkey callback and the tray Capture callback.
func (l *Loop) TriggerCapture() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// TriggerSettings posts a request to open the settings window.
func (l *Loop) TriggerSettings() {
	select {
	case l.settingsCh <- struct{}{}:
	default:
	}
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleCapture(ctx)
		case <-l.settingsCh:
			if l.openSettings != nil {
				l.openSettings()
			}
		}
	}
}

func (l *Loop) handleCapture(ctx context.Context) {
	if since := time.Since(l.lastClosed); since < reopenDebounce {
		log.Printf("handleCapture: ignoring trigger %v after last session", since)
		return
	}

	// Re-read settings on every open so size and folder edits apply to the
	// next session without a restart.
	cfg, err := l.loadSettings()
	if err != nil {
		log.Printf("handleCapture: cannot load settings: %v", err)
		l.notify(fmt.Sprintf("Cannot load settings: %v", err))
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("handleCapture: invalid settings: %v", err)
		l.notify(fmt.Sprintf("Invalid settings: %v", err))
		return
	}

	opts := overlay.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Folder:   cfg.Folder,
		Capturer: l.newCapturer(cfg),
		OnCaptured: func(res capture.Result, err error) {
			if err != nil {
				l.notify(fmt.Sprintf("Capture failed: %v", err))
				return
			}
			l.notify(fmt.Sprintf("Saved %s (%dx%d)", filepath.Base(res.Path), res.Width, res.Height))
		},
	}

	l.setBusy(true)
	log.Printf("handleCapture: opening %dx%d overlay, saving to %s", cfg.Width, cfg.Height, cfg.Folder)
	if err := l.openOverlay(ctx, opts); err != nil {
		log.Printf("handleCapture: overlay failed: %v", err)
		l.notify(fmt.Sprintf("Overlay failed: %v", err))
	}
	l.setBusy(false)
	l.lastClosed = time.Now()

	// Drop hotkey presses queued while the overlay was up, including the
	// press that closed it.
	for {
		select {
		case <-l.hotkeyCh:
		default:
			return
		}
	}
}
