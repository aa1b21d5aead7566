//go:build !windows

package overlay

import (
	"context"
	"fmt"
)

// runSession is a stub for non-Windows platforms.
func runSession(ctx context.Context, opts Options) error {
	return fmt.Errorf("overlay not implemented for this platform")
}
