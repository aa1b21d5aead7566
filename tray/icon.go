package tray

import (
	_ "embed"
)

// Embedded tray icon: 16x16 red capture frame on a transparent background.
//
//go:embed icon.ico
var iconData []byte
