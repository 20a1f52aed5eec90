package devices

import (
	"encoding/json"
	"sync"
	"time"
	"unicode"
)

const (
	KeyboardDeviceType = "Keyboard"

	// KeyboardAddr is the memory address PEEK reads the pending key from.
	KeyboardAddr = 14400

	// DebounceWindow is how long after one keyboard PEEK further PEEKs read
	// 0 without touching the pending key.
	DebounceWindow = 50 * time.Millisecond
)

// Keyboard latches at most one keystroke until a program reads it.
type Keyboard struct {
	mu       sync.Mutex
	pending  rune
	last     rune
	lastPeek time.Time
	now      func() time.Time
}

func NewKeyboard() *Keyboard {
	return &Keyboard{now: time.Now}
}

// SetClock replaces the time source used for PEEK debouncing.
func (k *Keyboard) SetClock(now func() time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.now = now
}

// Press latches r, upper-cased. It is dropped when a key is already pending.
func (k *Keyboard) Press(r rune) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pending != 0 {
		return false
	}
	k.pending = unicode.ToUpper(r)
	k.last = k.pending
	return true
}

// Inkey returns and clears the pending key, or "" when none is waiting.
func (k *Keyboard) Inkey() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pending == 0 {
		return ""
	}
	r := k.pending
	k.pending = 0
	return string(r)
}

// Peek returns the code of the pending key and clears it. Within
// DebounceWindow of the previous consulted Peek it returns 0 and leaves the
// key pending.
func (k *Keyboard) Peek() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	if !k.lastPeek.IsZero() && now.Sub(k.lastPeek) < DebounceWindow {
		return 0
	}
	k.lastPeek = now
	r := k.pending
	k.pending = 0
	return int(r)
}

// Pending reports the latched key without consuming it.
func (k *Keyboard) Pending() rune {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.pending
}

// Last is the most recent key latched, consumed or not.
func (k *Keyboard) Last() rune {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.last
}

// Clear drops any pending key.
func (k *Keyboard) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending = 0
}

func (k *Keyboard) Type() string {
	return KeyboardDeviceType
}

type keyboardState struct {
	Pending rune `json:"pending"`
	Last    rune `json:"last"`
}

func (k *Keyboard) SaveState() []byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, _ := json.Marshal(keyboardState{Pending: k.pending, Last: k.last})
	return b
}

func (k *Keyboard) LoadState(data []byte) error {
	var s keyboardState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending, k.last = s.Pending, s.Last
	return nil
}
