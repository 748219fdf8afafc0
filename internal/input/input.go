// Package input tracks keyboard/mouse state delivered by the host's OS
// event thread and exposes it to the VM thread through a drain-per-
// frame mailbox guarded by a short critical section.
package input

import "sync"

// KeyCode mirrors the engine's keycode table: the bit index of a key
// within the 32-bit input-state word. LeftClick/RightClick are
// virtual keys synthesized from MouseLeft|Enter and MouseRight|Esc.
type KeyCode uint8

const (
	KeyShift KeyCode = iota
	KeyCtrl
	KeyLeftClick
	KeyRightClick
	KeyMouseLeft
	KeyMouseRight
	KeyEsc
	KeyEnter
	KeySpace
	KeyUpArrow
	KeyDownArrow
	KeyLeftArrow
	KeyRightArrow
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyTab
)

func bitFor(k KeyCode) uint32 { return 1 << uint32(k) }

// PressEvent is one recorded key or mouse press/release, queued for
// script-visible consumption via Drain.
type PressEvent struct {
	Keycode  uint8
	InScreen bool
	X, Y     int32
}

const eventRingSize = 64

// Manager owns the engine's full input state. Every mutating method
// takes the internal mutex for the shortest possible critical section,
// matching the original's spin-lock-guarded field updates.
type Manager struct {
	mu sync.Mutex

	events       [eventRingSize]PressEvent
	writeIdx     uint8
	readIdx      uint8

	newState uint32
	oldState uint32
	state    uint32
	down     uint32
	up       uint32
	repeat   uint32

	cursorIn     bool
	cursorX      int32
	cursorY      int32
	wheel        int32
	controlMask  bool
	controlPulse bool

	clickOnPress    bool
	suppressClicks  uint8
}

func NewManager() *Manager { return &Manager{} }

func virtualLeftActive(bits uint32) bool {
	return bits&(bitFor(KeyMouseLeft)|bitFor(KeyEnter)) != 0
}

func virtualRightActive(bits uint32) bool {
	return bits&(bitFor(KeyMouseRight)|bitFor(KeyEsc)) != 0
}

func applyVirtualClickState(bits *uint32) {
	*bits &^= bitFor(KeyLeftClick) | bitFor(KeyRightClick)
	if virtualLeftActive(*bits) {
		*bits |= bitFor(KeyLeftClick)
	}
	if virtualRightActive(*bits) {
		*bits |= bitFor(KeyRightClick)
	}
}

// latchVirtualClickEdges must be called with mu held.
func (m *Manager) latchVirtualClickEdges(prev, next uint32) {
	if !virtualLeftActive(prev) && virtualLeftActive(next) {
		m.down |= bitFor(KeyLeftClick)
	}
	if virtualLeftActive(prev) && !virtualLeftActive(next) {
		m.up |= bitFor(KeyLeftClick)
	}
	if !virtualRightActive(prev) && virtualRightActive(next) {
		m.down |= bitFor(KeyRightClick)
	}
	if virtualRightActive(prev) && !virtualRightActive(next) {
		m.up |= bitFor(KeyRightClick)
	}
}

// recordEvent must be called with mu held.
func (m *Manager) recordEvent(keycode KeyCode, x, y int32) {
	next := (m.writeIdx + 1) & (eventRingSize - 1)
	if next == m.readIdx {
		return
	}
	ev := PressEvent{Keycode: uint8(keycode)}
	if keycode == KeyMouseLeft || keycode == KeyMouseRight {
		ev.InScreen = m.cursorIn
		ev.X, ev.Y = x, y
	}
	m.events[m.writeIdx] = ev
	m.writeIdx = next
}

// NotifyKeyDown records a keyboard key transitioning down. repeat
// distinguishes an OS auto-repeat delivery (state-only) from a fresh
// press (which also enqueues an event, for keys other than the
// maskable Shift/Ctrl modifiers).
func (m *Manager) NotifyKeyDown(keycode KeyCode, repeat bool) {
	m.mu.Lock()
	if m.controlMask && (keycode == KeyShift || keycode == KeyCtrl) {
		m.mu.Unlock()
		return
	}
	prev := m.newState
	mask := bitFor(keycode)
	if m.newState&mask == 0 {
		m.newState |= mask
		m.down |= mask
	}
	m.repeat |= mask
	enqueue := !repeat && keycode >= 2
	next := m.newState
	m.latchVirtualClickEdges(prev, next)
	if enqueue {
		m.recordEvent(keycode, 0, 0)
	}
	m.mu.Unlock()
}

func (m *Manager) NotifyKeyUp(keycode KeyCode) {
	m.mu.Lock()
	if m.controlMask && (keycode == KeyShift || keycode == KeyCtrl) {
		m.mu.Unlock()
		return
	}
	prev := m.newState
	mask := bitFor(keycode)
	if m.newState&mask != 0 {
		m.newState &^= mask
		m.up |= mask
	}
	m.latchVirtualClickEdges(prev, m.newState)
	m.mu.Unlock()
}

// NotifyMouseDown/Up apply the one-shot click-activation suppression
// (used to eat the click that brought the window into focus) and
// honor ClickOnPress mode, which decides whether the queued event
// fires on press or release.
func (m *Manager) NotifyMouseDown(keycode KeyCode) {
	m.mu.Lock()
	x, y := m.cursorX, m.cursorY
	if m.suppressClicks != 0 {
		m.suppressClicks--
		m.mu.Unlock()
		return
	}
	prev := m.newState
	mask := bitFor(keycode)
	if m.newState&mask == 0 {
		m.newState |= mask
		m.down |= mask
	}
	shouldRecord := m.clickOnPress
	m.latchVirtualClickEdges(prev, m.newState)
	if shouldRecord {
		m.recordEvent(keycode, x, y)
	}
	m.mu.Unlock()
}

func (m *Manager) NotifyMouseUp(keycode KeyCode) {
	m.mu.Lock()
	x, y := m.cursorX, m.cursorY
	if m.suppressClicks != 0 {
		m.suppressClicks--
		m.mu.Unlock()
		return
	}
	prev := m.newState
	mask := bitFor(keycode)
	if m.newState&mask != 0 {
		m.newState &^= mask
		m.up |= mask
	}
	shouldRecord := !m.clickOnPress
	m.latchVirtualClickEdges(prev, m.newState)
	if shouldRecord {
		m.recordEvent(keycode, x, y)
	}
	m.mu.Unlock()
}

func (m *Manager) NotifyMouseMove(x, y int32) {
	m.mu.Lock()
	m.cursorX, m.cursorY = x, y
	m.mu.Unlock()
}

func (m *Manager) NotifyMouseWheel(delta int32) {
	m.mu.Lock()
	m.wheel += delta
	m.mu.Unlock()
}

func (m *Manager) SetCursorIn(in bool) {
	m.mu.Lock()
	m.cursorIn = in
	m.mu.Unlock()
}

func (m *Manager) SetClickOnPress(onPress bool) {
	m.mu.Lock()
	m.clickOnPress = onPress
	m.mu.Unlock()
}

// SuppressNextMouseClick eats the next full down+up mouse click,
// used to discard the click that focused the window.
func (m *Manager) SuppressNextMouseClick() {
	m.mu.Lock()
	m.suppressClicks = 2
	m.mu.Unlock()
}

func (m *Manager) SetControlMask(mask bool) {
	m.mu.Lock()
	m.controlMask = mask
	m.mu.Unlock()
}

func (m *Manager) SetControlPulse() {
	m.mu.Lock()
	m.controlPulse = true
	m.mu.Unlock()
}

// TakeControlPulse consumes the one-shot ControlPulse flag.
func (m *Manager) TakeControlPulse() bool {
	m.mu.Lock()
	v := m.controlPulse
	m.controlPulse = false
	m.mu.Unlock()
	return v
}

// FrameReset clears the per-frame transient edges and wheel delta;
// the sticky input_state/new_input_state are not touched here.
func (m *Manager) FrameReset() {
	m.mu.Lock()
	m.repeat = 0
	m.wheel = 0
	m.down = 0
	m.up = 0
	m.mu.Unlock()
}

// RefreshInput latches new_input_state into the script-visible
// input_state, synthesizing the virtual click bits and applying the
// control mask.
func (m *Manager) RefreshInput() {
	m.mu.Lock()
	m.oldState = m.state
	m.state = m.newState
	applyVirtualClickState(&m.state)
	if m.controlMask {
		m.state &^= bitFor(KeyShift) | bitFor(KeyCtrl)
	}
	m.mu.Unlock()
}

func (m *Manager) InputState() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) InputDown() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.down
}

func (m *Manager) InputUp() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.up
}

func (m *Manager) InputRepeat() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repeat
}

func (m *Manager) WheelValue() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wheel
}

func (m *Manager) CursorPosition() (int32, int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursorX, m.cursorY
}

// Drain pops the oldest queued event, if any, for script consumption.
func (m *Manager) Drain() (PressEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readIdx == m.writeIdx {
		return PressEvent{}, false
	}
	ev := m.events[m.readIdx]
	m.readIdx = (m.readIdx + 1) & (eventRingSize - 1)
	return ev, true
}
