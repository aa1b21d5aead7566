package notification

import "log"

// Toast shows a short-lived non-blocking popup with the given text, used for
// per-capture feedback (saved file name or error). Safe to call from the
// overlay's message-loop goroutine: the popup runs on its own thread and a
// full queue drops the request rather than blocking.
func Toast(text string) {
	log.Printf("Toast: %s", text)
	showToast(text)
}

// ShowBlockingError displays a modal error dialog and returns after the user
// dismisses it. Only for fatal startup problems.
func ShowBlockingError(title, message string) {
	log.Printf("Error dialog: %s: %s", title, message)
	showBlockingError(title, message)
}
