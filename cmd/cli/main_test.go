package main

import (
	"image"
	"testing"

	"cursor-snap/capture"
	"cursor-snap/settings"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		x, y    int
		wantErr bool
	}{
		{"640,480", 640, 480, false},
		{"640, 480", 640, 480, false},
		{" -10 , 20 ", -10, 20, false},
		{"0,0", 0, 0, false},
		{"640", 0, 0, true},
		{"640,480,1", 0, 0, true},
		{"a,b", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		x, y, err := parsePoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && (x != tt.x || y != tt.y) {
			t.Errorf("parsePoint(%q) = (%d,%d), want (%d,%d)", tt.in, x, y, tt.x, tt.y)
		}
	}
}

func TestResolveRegion(t *testing.T) {
	cfg := &settings.Settings{Width: 800, Height: 600}
	bounds := image.Rect(0, 0, 1920, 1080)

	t.Run("full screen", func(t *testing.T) {
		got, err := resolveRegion(cliOptions{full: true}, cfg, bounds)
		if err != nil {
			t.Fatal(err)
		}
		want := capture.Region{X: 0, Y: 0, Width: 1920, Height: 1080}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("explicit center", func(t *testing.T) {
		got, err := resolveRegion(cliOptions{at: "1000,500"}, cfg, bounds)
		if err != nil {
			t.Fatal(err)
		}
		want := capture.Region{X: 600, Y: 200, Width: 800, Height: 600}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("default center", func(t *testing.T) {
		got, err := resolveRegion(cliOptions{}, cfg, bounds)
		if err != nil {
			t.Fatal(err)
		}
		want := capture.Region{X: 560, Y: 240, Width: 800, Height: 600}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("negative origin virtual screen", func(t *testing.T) {
		multi := image.Rect(-1920, 0, 1920, 1080)
		got, err := resolveRegion(cliOptions{full: true}, cfg, multi)
		if err != nil {
			t.Fatal(err)
		}
		want := capture.Region{X: -1920, Y: 0, Width: 3840, Height: 1080}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("bad point", func(t *testing.T) {
		if _, err := resolveRegion(cliOptions{at: "nope"}, cfg, bounds); err == nil {
			t.Error("expected error for malformed point")
		}
	})
}

func TestRootCmdRejectsUnknownFlag(t *testing.T) {
	if err := runWithArgs([]string{"cursor-snap", "--bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}
