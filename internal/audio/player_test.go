package audio

import "testing"

func TestStepTowardClampsAtTarget(t *testing.T) {
	if v := stepToward(0, 1, 0.3); v != 0.3 {
		t.Fatalf("expected 0.3, got %v", v)
	}
	if v := stepToward(0.9, 1, 0.3); v != 1 {
		t.Fatalf("expected clamp to 1, got %v", v)
	}
	if v := stepToward(0.5, 0.5, 0.1); v != 0.5 {
		t.Fatalf("expected no-op at target, got %v", v)
	}
}

func TestStepTowardDescending(t *testing.T) {
	if v := stepToward(1, 0, 0.4); v != 0.6 {
		t.Fatalf("expected 0.6, got %v", v)
	}
	if v := stepToward(0.1, 0, 0.4); v != 0 {
		t.Fatalf("expected clamp to 0, got %v", v)
	}
}

func TestFloatBitsRoundTrip(t *testing.T) {
	v := float32(0.375)
	if got := bitsToFloat32(math32bits(v)); got != v {
		t.Fatalf("round trip mismatch: got %v want %v", got, v)
	}
}
