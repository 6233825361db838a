package window

import (
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// keyAction is a key transition as reported by the platform layer.
type keyAction int

const (
	keyPress keyAction = iota
	keyRepeat
	keyRelease
)

// inputState turns raw key transitions into key down and key up callbacks. It tracks held
// keys so auto-repeat never reports a second press and losing focus releases every key that
// is still down.
type inputState struct {
	held map[uint32]bool

	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	// onClose runs when ESC is pressed.
	onClose func()
}

func newInputState() *inputState {
	return &inputState{held: make(map[uint32]bool)}
}

// key applies one transition. Negative codes are keys the platform could not identify.
func (s *inputState) key(code int, action keyAction) {
	if code < 0 {
		return
	}
	k := uint32(code)
	if k == common.KeyEscape {
		if action == keyPress && s.onClose != nil {
			s.onClose()
		}
		return
	}

	switch action {
	case keyPress, keyRepeat:
		if s.held[k] {
			return
		}
		s.held[k] = true
		if s.onKeyDown != nil {
			s.onKeyDown(k)
		}
	case keyRelease:
		if !s.held[k] {
			return
		}
		delete(s.held, k)
		if s.onKeyUp != nil {
			s.onKeyUp(k)
		}
	}
}

// releaseAll reports a key up for every held key in ascending code order.
func (s *inputState) releaseAll() {
	for _, k := range slices.Sorted(maps.Keys(s.held)) {
		s.key(int(k), keyRelease)
	}
}

// isHeld reports whether a key is currently down.
func (s *inputState) isHeld(code uint32) bool {
	return s.held[code]
}
