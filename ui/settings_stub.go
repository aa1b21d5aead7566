//go:build !windows

package ui

import "errors"

// ShowSettings is only implemented on Windows; other platforms edit the env
// file directly.
func ShowSettings() error {
	return errors.New("settings window not implemented for this platform")
}
