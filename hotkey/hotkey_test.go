package hotkey

import (
	"reflect"
	"testing"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		combo string
		want  []string
	}{
		{"Ctrl+G", []string{"ctrl", "g"}},
		{"ctrl + alt + q", []string{"ctrl", "alt", "q"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Escape", []string{"escape"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := parseCombo(tt.combo); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseCombo(%q) = %v, want %v", tt.combo, got, tt.want)
		}
	}
}

func TestRawcodesFor(t *testing.T) {
	tests := []struct {
		name string
		want []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"shift", []uint16{160, 161}},
		{"g", []uint16{71}},
		{"G", []uint16{71}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},
		{"escape", []uint16{27}},
		{"esc", []uint16{27}},
	}
	for _, tt := range tests {
		if got := rawcodesFor(tt.name); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("rawcodesFor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRawcodesForUnknown(t *testing.T) {
	for _, name := range []string{"", "f0", "f25", "hyper", "ß"} {
		if got := rawcodesFor(name); got != nil {
			t.Errorf("rawcodesFor(%q) = %v, want nil", name, got)
		}
	}
}
