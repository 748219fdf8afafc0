package input

import "testing"

func TestKeyDownUpTracksStateAndEdges(t *testing.T) {
	m := NewManager()
	m.NotifyKeyDown(KeySpace, false)
	m.RefreshInput()
	if m.InputState()&bitFor(KeySpace) == 0 {
		t.Fatalf("expected space bit set in state")
	}
	if m.InputDown()&bitFor(KeySpace) == 0 {
		t.Fatalf("expected space bit set in down-edge")
	}

	m.FrameReset()
	if m.InputDown() != 0 {
		t.Fatalf("expected down-edges cleared after FrameReset")
	}

	m.NotifyKeyUp(KeySpace)
	m.RefreshInput()
	if m.InputState()&bitFor(KeySpace) != 0 {
		t.Fatalf("expected space bit cleared in state after keyup")
	}
	if m.InputUp()&bitFor(KeySpace) == 0 {
		t.Fatalf("expected space bit set in up-edge")
	}
}

func TestControlMaskSuppressesShiftAndCtrl(t *testing.T) {
	m := NewManager()
	m.SetControlMask(true)
	m.NotifyKeyDown(KeyShift, false)
	m.RefreshInput()
	if m.InputState()&bitFor(KeyShift) != 0 {
		t.Fatalf("expected shift masked out of state")
	}
}

func TestVirtualLeftClickFromEnter(t *testing.T) {
	m := NewManager()
	m.NotifyKeyDown(KeyEnter, false)
	m.RefreshInput()
	if m.InputState()&bitFor(KeyLeftClick) == 0 {
		t.Fatalf("expected virtual left-click bit synthesized from Enter")
	}
}

func TestControlPulseIsOneShot(t *testing.T) {
	m := NewManager()
	m.SetControlPulse()
	if !m.TakeControlPulse() {
		t.Fatalf("expected pulse to be set")
	}
	if m.TakeControlPulse() {
		t.Fatalf("expected pulse to be consumed after first take")
	}
}

func TestSuppressNextMouseClickEatsDownAndUp(t *testing.T) {
	m := NewManager()
	m.SetClickOnPress(true)
	m.SuppressNextMouseClick()
	m.NotifyMouseDown(KeyMouseLeft)
	if _, ok := m.Drain(); ok {
		t.Fatalf("expected suppressed mouse-down to enqueue no event")
	}
	m.NotifyMouseUp(KeyMouseLeft)
	if _, ok := m.Drain(); ok {
		t.Fatalf("expected suppressed mouse-up to enqueue no event")
	}
}

func TestDrainReturnsEventsInOrder(t *testing.T) {
	m := NewManager()
	m.NotifyKeyDown(KeyF1, false)
	m.NotifyKeyDown(KeyF2, false)

	ev1, ok := m.Drain()
	if !ok || ev1.Keycode != uint8(KeyF1) {
		t.Fatalf("expected F1 first, got %+v ok=%v", ev1, ok)
	}
	ev2, ok := m.Drain()
	if !ok || ev2.Keycode != uint8(KeyF2) {
		t.Fatalf("expected F2 second, got %+v ok=%v", ev2, ok)
	}
	if _, ok := m.Drain(); ok {
		t.Fatalf("expected ring empty after draining both events")
	}
}
