package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// PathEnvVar points at an alternate settings file, mainly for tests and
	// portable installs. Without it the file lives beside the executable.
	PathEnvVar = "CURSOR_SNAP"

	fileName = "cursor-snap.env"

	DefaultWidth  = 800
	DefaultHeight = 600
	DefaultHotkey = "Ctrl+G"
)

// Settings holds the user configuration. Folder, Width and Height are
// persisted by the settings window; the rest are environment-only knobs.
// Values are read at overlay open time and never re-validated mid-session.
type Settings struct {
	Folder            string
	Width             int
	Height            int
	Hotkey            string
	CopyToClipboard   bool
	EnableFileLogging bool
}

func Load() (*Settings, error) {
	path := resolvePath()
	values := map[string]string{}
	if path != "" {
		if v, err := godotenv.Read(path); err == nil {
			values = v
		}
	}

	s := &Settings{
		Folder:            lookup(values, "SAVE_FOLDER", ""),
		Width:             lookupInt(values, "CAPTURE_WIDTH", DefaultWidth),
		Height:            lookupInt(values, "CAPTURE_HEIGHT", DefaultHeight),
		Hotkey:            lookup(values, "HOTKEY", DefaultHotkey),
		CopyToClipboard:   lookupBool(values, "COPY_TO_CLIPBOARD"),
		EnableFileLogging: lookupBool(values, "ENABLE_FILE_LOGGING"),
	}
	return s, nil
}

// Save persists the current values to the settings file. The folder and
// region size survive restarts; everything else is written too so the file
// stays a complete snapshot.
func (s *Settings) Save() error {
	path := resolvePath()
	if path == "" {
		path = defaultPath()
	}
	if path == "" {
		return fmt.Errorf("cannot resolve settings file location")
	}
	return godotenv.Write(map[string]string{
		"SAVE_FOLDER":         s.Folder,
		"CAPTURE_WIDTH":       strconv.Itoa(s.Width),
		"CAPTURE_HEIGHT":      strconv.Itoa(s.Height),
		"HOTKEY":              s.Hotkey,
		"COPY_TO_CLIPBOARD":   strconv.FormatBool(s.CopyToClipboard),
		"ENABLE_FILE_LOGGING": strconv.FormatBool(s.EnableFileLogging),
	}, path)
}

// Validate reports whether the settings are complete enough to open the
// overlay. The overlay performs the same checks again at open time.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Folder) == "" {
		return fmt.Errorf("no save folder configured")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid capture size %dx%d", s.Width, s.Height)
	}
	return nil
}

func resolvePath() string {
	if alt := os.Getenv(PathEnvVar); alt != "" {
		return alt
	}
	p := defaultPath()
	if p == "" {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func defaultPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(execPath), fileName)
}

func lookup(values map[string]string, key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := strings.TrimSpace(values[key]); v != "" {
		return v
	}
	return fallback
}

func lookupInt(values map[string]string, key string, fallback int) int {
	if n, err := strconv.Atoi(lookup(values, key, "")); err == nil && n > 0 {
		return n
	}
	return fallback
}

func lookupBool(values map[string]string, key string) bool {
	return strings.ToLower(lookup(values, key, "")) == "true"
}
