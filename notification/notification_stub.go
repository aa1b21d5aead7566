//go:build !windows

package notification

import "log"

func showToast(text string) {
	log.Printf("Toast (no-op on this platform): %s", text)
}

func showBlockingError(title, message string) {
	log.Printf("Error dialog (no-op on this platform): %s: %s", title, message)
}
