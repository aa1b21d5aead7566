package eventloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cursor-snap/capture"
	"cursor-snap/overlay"
	"cursor-snap/settings"
)

type recorder struct {
	mu       sync.Mutex
	opened   int
	opts     overlay.Options
	notices  []string
	busyLog  []bool
	settings int
}

func newTestLoop(rec *recorder, loadErr error) *Loop {
	l := New(func() {
		rec.mu.Lock()
		rec.settings++
		rec.mu.Unlock()
	})
	l.loadSettings = func() (*settings.Settings, error) {
		if loadErr != nil {
			return nil, loadErr
		}
		return &settings.Settings{Folder: "/tmp", Width: 800, Height: 600, Hotkey: "Ctrl+G"}, nil
	}
	l.openOverlay = func(ctx context.Context, opts overlay.Options) error {
		rec.mu.Lock()
		rec.opened++
		rec.opts = opts
		rec.mu.Unlock()
		return nil
	}
	l.newCapturer = func(cfg *settings.Settings) overlay.Capturer {
		return capture.NewEngine(cfg.Folder, false)
	}
	l.notify = func(text string) {
		rec.mu.Lock()
		rec.notices = append(rec.notices, text)
		rec.mu.Unlock()
	}
	l.setBusy = func(busy bool) {
		rec.mu.Lock()
		rec.busyLog = append(rec.busyLog, busy)
		rec.mu.Unlock()
	}
	return l
}

func runBriefly(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v, want deadline exceeded", err)
	}
}

func TestTriggerCaptureOpensOverlayWithSettings(t *testing.T) {
	rec := &recorder{}
	l := newTestLoop(rec, nil)
	l.TriggerCapture()
	runBriefly(t, l)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.opened != 1 {
		t.Fatalf("overlay opened %d times, want 1", rec.opened)
	}
	if rec.opts.Width != 800 || rec.opts.Height != 600 || rec.opts.Folder != "/tmp" {
		t.Errorf("overlay options = %dx%d folder %q", rec.opts.Width, rec.opts.Height, rec.opts.Folder)
	}
	if rec.opts.Capturer == nil {
		t.Error("overlay options missing capturer")
	}
	if len(rec.busyLog) != 2 || rec.busyLog[0] != true || rec.busyLog[1] != false {
		t.Errorf("busy transitions = %v, want [true false]", rec.busyLog)
	}
}

func TestLoadFailureNotifiesWithoutOpening(t *testing.T) {
	rec := &recorder{}
	l := newTestLoop(rec, errors.New("disk gone"))
	l.TriggerCapture()
	runBriefly(t, l)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.opened != 0 {
		t.Fatalf("overlay opened %d times, want 0", rec.opened)
	}
	if len(rec.notices) != 1 {
		t.Fatalf("notices = %v, want exactly one", rec.notices)
	}
}

func TestInvalidSettingsNotifiesWithoutOpening(t *testing.T) {
	rec := &recorder{}
	l := newTestLoop(rec, nil)
	l.loadSettings = func() (*settings.Settings, error) {
		return &settings.Settings{Folder: "", Width: 800, Height: 600}, nil
	}
	l.TriggerCapture()
	runBriefly(t, l)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.opened != 0 {
		t.Fatalf("overlay opened %d times, want 0", rec.opened)
	}
	if len(rec.notices) != 1 {
		t.Fatalf("notices = %v, want exactly one", rec.notices)
	}
}

func TestRapidTriggersDebounced(t *testing.T) {
	rec := &recorder{}
	l := newTestLoop(rec, nil)
	// First trigger opens a session; triggers queued during it, plus any
	// arriving within the debounce window, are dropped.
	l.TriggerCapture()
	l.TriggerCapture()
	l.TriggerCapture()
	runBriefly(t, l)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.opened != 1 {
		t.Errorf("overlay opened %d times, want 1", rec.opened)
	}
}

func TestTriggerSettings(t *testing.T) {
	rec := &recorder{}
	l := newTestLoop(rec, nil)
	l.TriggerSettings()
	runBriefly(t, l)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.settings != 1 {
		t.Errorf("settings opened %d times, want 1", rec.settings)
	}
}

func TestCaptureOutcomeNotifications(t *testing.T) {
	rec := &recorder{}
	l := newTestLoop(rec, nil)
	l.openOverlay = func(ctx context.Context, opts overlay.Options) error {
		opts.OnCaptured(capture.Result{Path: "/tmp/screenshot_1.png", Width: 800, Height: 600}, nil)
		opts.OnCaptured(capture.Result{}, errors.New("display unavailable"))
		return nil
	}
	l.TriggerCapture()
	runBriefly(t, l)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.notices) != 2 {
		t.Fatalf("notices = %v, want two", rec.notices)
	}
	if want := "Saved screenshot_1.png (800x600)"; rec.notices[0] != want {
		t.Errorf("success notice = %q, want %q", rec.notices[0], want)
	}
}
