package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var (
	mu    sync.Mutex
	ready bool
)

func Init() error {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		return nil
	}
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// WriteImage performs a mutex-guarded clipboard write of PNG-encoded image
// data to prevent corruption under parallel writes.
func WriteImage(pngData []byte) error {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return errors.New("clipboard not initialized")
	}
	clipboard.Write(clipboard.FmtImage, pngData)
	return nil
}
