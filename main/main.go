package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"cursor-snap/clipboard"
	"cursor-snap/eventloop"
	"cursor-snap/hotkey"
	"cursor-snap/logutil"
	"cursor-snap/notification"
	"cursor-snap/settings"
	"cursor-snap/tray"
	"cursor-snap/ui"
)

func main() {
	enableDPIAwareness()

	// The tray runs its message loop on the main thread; keep the overlay's
	// loop off it by running the event loop on its own locked thread.
	runtime.LockOSThread()

	cfg, err := settings.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}

	logutil.Setup(cfg.EnableFileLogging)

	if err := cfg.Validate(); err != nil {
		// Not fatal: the user can fix the configuration from the tray's
		// Settings item; captures just refuse to start until then.
		log.Printf("Settings invalid at startup: %v", err)
		notification.Toast(fmt.Sprintf("Check settings: %v", err))
	}

	if cfg.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable, captures will only be saved to disk: %v", err)
		}
	}

	log.Printf("Cursor Snap initialized")
	log.Printf("Capture size: %dx%d", cfg.Width, cfg.Height)
	log.Printf("Save folder: %s", cfg.Folder)
	log.Printf("Hotkey: %s", cfg.Hotkey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(func() {
		if err := ui.ShowSettings(); err != nil {
			log.Printf("Settings window failed: %v", err)
			notification.Toast(fmt.Sprintf("Settings window failed: %v", err))
		}
	})

	hotkey.Listen(cfg.Hotkey, loop.TriggerCapture)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
		tray.Quit()
	}()

	go func() {
		runtime.LockOSThread()
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Event loop stopped: %v", err)
		}
		tray.Quit()
	}()

	// Blocks until Quit; must run on the main goroutine.
	tray.Run(tray.Config{
		OnCapture:  loop.TriggerCapture,
		OnSettings: loop.TriggerSettings,
		OnExit:     cancel,
	})
}
