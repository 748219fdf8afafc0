package motion

import "testing"

func TestSnowConfigurePopulatesFlakesWithinArea(t *testing.T) {
	e := NewSnowEngine()
	e.Configure(0, SnowParams{
		FlakeW: 16, FlakeH: 16,
		VariantCount: 3,
		PeriodMin:    500, PeriodMax: 1500,
		FlakeCount: 64,
	}, 640, 480)

	c := e.Container(0)
	if c.Enabled {
		t.Fatalf("container should remain disabled after Configure")
	}
	for i := 0; i < 64; i++ {
		f := c.Flakes[i]
		if f.Period < 500 || f.Period > 1501 {
			t.Fatalf("flake %d period %v out of configured range", i, f.Period)
		}
		if f.VariantIdx >= 3 {
			t.Fatalf("flake %d variant %d out of range", i, f.VariantIdx)
		}
	}
}

func TestSnowStartStopTest(t *testing.T) {
	e := NewSnowEngine()
	if e.Test(1) {
		t.Fatalf("container 1 should start disabled")
	}
	e.Start(1)
	if !e.Test(1) {
		t.Fatalf("expected container 1 enabled after Start")
	}
	e.Stop(1)
	if e.Test(1) {
		t.Fatalf("expected container 1 disabled after Stop")
	}
}

func TestSnowTickNoopWhenDisabled(t *testing.T) {
	e := NewSnowEngine()
	e.Configure(0, SnowParams{FlakeW: 8, FlakeH: 8, VariantCount: 1, PeriodMin: 1000, PeriodMax: 1000, FlakeCount: 4}, 320, 240)
	before := e.Container(0).Flakes
	e.Tick(16, 320, 240)
	after := e.Container(0).Flakes
	if before != after {
		t.Fatalf("expected flakes unchanged while container disabled")
	}
}

func TestSnowTickAdvancesWhenEnabled(t *testing.T) {
	e := NewSnowEngine()
	e.Configure(0, SnowParams{
		FlakeW: 8, FlakeH: 8,
		VariantCount: 1, PeriodMin: 1000, PeriodMax: 1000,
		FlakeCount:     4,
		BaseYPerPeriod: 200,
	}, 320, 240)
	e.Start(0)

	before := e.Container(0).Flakes
	e.Tick(500, 320, 240)
	after := e.Container(0).Flakes

	changed := false
	for i := range before {
		if before[i].Y != after[i].Y {
			changed = true
		}
	}
	if !changed {
		t.Fatalf("expected at least one flake's Y to advance with BaseYPerPeriod set")
	}
}

func TestSnowSeedIsReproducible(t *testing.T) {
	e1 := NewSnowEngine()
	e1.Container(0).Seed(42, 7)
	e1.Configure(0, SnowParams{FlakeW: 10, FlakeH: 10, VariantCount: 4, PeriodMin: 100, PeriodMax: 900, FlakeCount: 32}, 640, 480)

	e2 := NewSnowEngine()
	e2.Container(0).Seed(42, 7)
	e2.Configure(0, SnowParams{FlakeW: 10, FlakeH: 10, VariantCount: 4, PeriodMin: 100, PeriodMax: 900, FlakeCount: 32}, 640, 480)

	if e1.Container(0).Flakes != e2.Container(0).Flakes {
		t.Fatalf("expected identical flake layout from identical seed")
	}
}
