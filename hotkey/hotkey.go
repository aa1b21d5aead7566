package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers a global hotkey combination like "Ctrl+G" and invokes
// callback each time the full combination is pressed. The hook runs on its
// own goroutine; the callback must be cheap (post into a channel) so the
// low-level hook never stalls.
func Listen(combo string, callback func()) {
	keys := parseCombo(combo)

	type keyState struct {
		name     string
		rawcodes []uint16
		pressed  bool
	}

	var states []keyState
	for _, name := range keys {
		codes := rawcodesFor(name)
		if len(codes) == 0 {
			log.Printf("Hotkey: cannot map key %q, combination %q may not work", name, combo)
			continue
		}
		states = append(states, keyState{name: name, rawcodes: codes})
	}
	if len(states) == 0 {
		log.Printf("Hotkey: no valid keys in %q, not listening", combo)
		return
	}

	log.Printf("Hotkey: listening for %s", combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Hotkey: panic in hook goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("Hotkey: gohook.Start returned nil channel")
			return
		}

		var mu sync.Mutex
		matches := func(rawcode uint16, st *keyState) bool {
			for _, c := range st.rawcodes {
				if c == rawcode {
					return true
				}
			}
			return false
		}

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				for i := range states {
					if matches(ev.Rawcode, &states[i]) {
						states[i].pressed = true
					}
				}
				all := true
				for i := range states {
					if !states[i].pressed {
						all = false
						break
					}
				}
				if all {
					for i := range states {
						states[i].pressed = false
					}
					mu.Unlock()
					log.Printf("Hotkey: %s activated", combo)
					if callback != nil {
						callback()
					}
					continue
				}
				mu.Unlock()
			case gohook.KeyUp:
				mu.Lock()
				for i := range states {
					if matches(ev.Rawcode, &states[i]) {
						states[i].pressed = false
					}
				}
				mu.Unlock()
			}
		}
		log.Printf("Hotkey: event channel closed")
	}()
}

// parseCombo splits "Ctrl+Alt+g" into normalized lower-case key names.
func parseCombo(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// Windows virtual-key rawcodes, left and right variants for modifiers.
var vkCodes = map[string][]uint16{
	"ctrl":  {162, 163},
	"alt":   {164, 165},
	"shift": {160, 161},
	"cmd":   {91, 92},

	"space": {32}, "enter": {13}, "return": {13},
	"esc": {27}, "escape": {27}, "tab": {9},
	"backspace": {8}, "delete": {46}, "del": {46},
	"insert": {45}, "ins": {45}, "home": {36}, "end": {35},
	"pageup": {33}, "pgup": {33}, "pagedown": {34}, "pgdn": {34},
	"left": {37}, "up": {38}, "right": {39}, "down": {40},
}

func rawcodesFor(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if codes, ok := vkCodes[name]; ok {
		return codes
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c - 'a' + 'A')} // VK_A..VK_Z
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)} // VK_0..VK_9
		}
	}
	// F1..F24 map to VK 112..135.
	if strings.HasPrefix(name, "f") {
		n := 0
		for _, r := range name[1:] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}
	log.Printf("Hotkey: unknown key name %q", name)
	return nil
}
