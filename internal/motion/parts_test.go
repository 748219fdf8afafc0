package motion

import "testing"

func TestPartsLoadAndColorTone(t *testing.T) {
	m := NewPartsManager()
	m.Items[3].Load("overlay.nvsg", 2)
	if !m.Items[3].Loaded {
		t.Fatalf("expected parts item loaded")
	}
	if m.Items[3].R != 100 || m.Items[3].G != 100 || m.Items[3].B != 100 {
		t.Fatalf("expected default color tone 100,100,100 after load")
	}
	m.Items[3].SetColorTone(10, 20, 30)
	if m.Items[3].R != 10 || m.Items[3].G != 20 || m.Items[3].B != 30 {
		t.Fatalf("color tone not applied")
	}

	m.Items[3].UnloadKeepName()
	if m.Items[3].Loaded {
		t.Fatalf("expected unloaded after UnloadKeepName")
	}
	if m.Items[3].TextureName != "overlay.nvsg" {
		t.Fatalf("expected texture name retained after unload")
	}
}

func TestSetColorToneIgnoredWhenNotLoaded(t *testing.T) {
	m := NewPartsManager()
	m.Items[0].SetColorTone(5, 5, 5)
	if m.Items[0].R != 0 {
		t.Fatalf("expected color tone untouched on unloaded item")
	}
}

func TestPartsMotionOnePerPartsID(t *testing.T) {
	m := NewPartsManager()
	m.SetMotion(2, 1, 100)
	if !m.TestMotion(2) {
		t.Fatalf("expected motion running for parts id 2")
	}
	m.SetMotion(2, 5, 200)
	if !m.TestMotion(2) {
		t.Fatalf("expected replacement motion still running")
	}

	completed := m.TickMotions(200)
	found := false
	for _, c := range completed {
		if c.PartsID == 2 && c.EntryID == 5 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected replacement motion (entry 5) to complete, got %+v", completed)
	}
	if m.TestMotion(2) {
		t.Fatalf("expected motion for parts id 2 to be retired after completion")
	}
}

func TestPartsMotionPoolExhaustionIsSilentlyDropped(t *testing.T) {
	m := NewPartsManager()
	for i := uint8(0); i < PartsMotionPoolSize; i++ {
		m.SetMotion(i, 1, 1000)
	}
	m.SetMotion(PartsMotionPoolSize, 1, 1000)
	if m.TestMotion(PartsMotionPoolSize) {
		t.Fatalf("expected pool-exhausted SetMotion to be a no-op")
	}
}

func TestPartsMotionPausedWhileItemRunning(t *testing.T) {
	m := NewPartsManager()
	m.SetMotion(0, 9, 50)
	m.Items[0].Running = true

	completed := m.TickMotions(100)
	if len(completed) != 0 {
		t.Fatalf("expected paused motion not to advance, got %+v", completed)
	}
	if !m.TestMotion(0) {
		t.Fatalf("expected motion still pending while paused")
	}
}

func TestStopMotionRecyclesSlot(t *testing.T) {
	m := NewPartsManager()
	m.SetMotion(0, 1, 1000)
	m.StopMotion(0)
	if m.TestMotion(0) {
		t.Fatalf("expected motion stopped")
	}
	for i := uint8(0); i < PartsMotionPoolSize; i++ {
		m.SetMotion(i, 1, 1000)
	}
}
