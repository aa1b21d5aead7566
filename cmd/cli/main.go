package main

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cursor-snap/capture"
	"cursor-snap/clipboard"
	"cursor-snap/settings"
)

type cliOptions struct {
	width       int
	height      int
	at          string
	full        bool
	folder      string
	toClipboard bool
	verbose     bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"cursor-snap"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cursor-snap",
		Short:         "Capture a fixed-size region of the screen to a PNG file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().IntVar(&opts.width, "width", 0, "Capture width in pixels (default from settings)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Capture height in pixels (default from settings)")
	cmd.Flags().StringVar(&opts.at, "at", "", "Center point as X,Y (default: center of the virtual screen)")
	cmd.Flags().BoolVar(&opts.full, "full", false, "Capture the whole virtual screen, ignoring size and center")
	cmd.Flags().StringVar(&opts.folder, "folder", "", "Save folder (default from settings)")
	cmd.Flags().BoolVar(&opts.toClipboard, "clipboard", false, "Also copy the capture to the clipboard")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if opts.width > 0 {
		cfg.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Height = opts.height
	}
	if opts.folder != "" {
		cfg.Folder = opts.folder
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	bounds, err := capture.VirtualBounds()
	if err != nil {
		return fmt.Errorf("cannot determine screen bounds: %w", err)
	}

	region, err := resolveRegion(opts, cfg, bounds)
	if err != nil {
		return err
	}

	if opts.toClipboard {
		if err := clipboard.Init(); err != nil {
			return fmt.Errorf("clipboard unavailable: %w", err)
		}
	}

	engine := capture.NewEngine(cfg.Folder, opts.toClipboard)
	result, err := engine.Capture(region)
	if err != nil {
		return err
	}

	fmt.Println(result.Path)
	return nil
}

// resolveRegion turns the flags into a concrete capture rectangle: the whole
// virtual screen with --full, otherwise a width x height region centered on
// --at or on the middle of the virtual screen.
func resolveRegion(opts cliOptions, cfg *settings.Settings, bounds image.Rectangle) (capture.Region, error) {
	if opts.full {
		return capture.Region{
			X:      bounds.Min.X,
			Y:      bounds.Min.Y,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		}, nil
	}

	cx := bounds.Min.X + bounds.Dx()/2
	cy := bounds.Min.Y + bounds.Dy()/2
	if opts.at != "" {
		var err error
		cx, cy, err = parsePoint(opts.at)
		if err != nil {
			return capture.Region{}, err
		}
	}
	return capture.CenteredAt(cx, cy, cfg.Width, cfg.Height), nil
}

// parsePoint parses "X,Y" with optional spaces, e.g. "640,480" or "640, 480".
func parsePoint(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid point %q, expected X,Y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return x, y, nil
}
