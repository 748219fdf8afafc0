package prim

import "testing"

// TestPrimLinkingScenario implements concrete scenario 3: starting from
// root (group), init prim 5 as sprt, group both 5 and 6 under root, then
// unlink 5; root's first/last child must settle on 6, and 5 must be
// fully detached.
func TestPrimLinkingScenario(t *testing.T) {
	p := NewPool()

	p.InitWithType(5, TypeSprt)
	p.SetPrimGroupIn(RootID, 5)
	p.SetPrimGroupIn(RootID, 6)
	p.UnlinkPrim(5)

	root := p.Get(RootID)
	if root.FirstChild != 6 {
		t.Fatalf("root.FirstChild = %d, want 6", root.FirstChild)
	}
	if root.LastChild != 6 {
		t.Fatalf("root.LastChild = %d, want 6", root.LastChild)
	}

	five := p.Get(5)
	if five.Parent != Invalid || five.PrevSibling != Invalid || five.NextSibling != Invalid {
		t.Fatalf("prim 5 not fully detached: %+v", five)
	}

	if err := p.CheckInvariants(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func TestInitWithTypeUnlinksChildrenWhenLeavingGroup(t *testing.T) {
	p := NewPool()
	p.SetPrimGroupIn(RootID, 1)
	p.SetPrimGroupIn(RootID, 2)

	p.InitWithType(RootID, TypeTile)

	if p.Get(1).Parent != Invalid || p.Get(2).Parent != Invalid {
		t.Fatalf("children must be unlinked when root leaves group type")
	}
	if p.Get(RootID).FirstChild != Invalid {
		t.Fatalf("root.FirstChild must be cleared, got %d", p.Get(RootID).FirstChild)
	}
}

func TestUnlinkAlreadyUnlinkedIsNoOp(t *testing.T) {
	p := NewPool()
	p.UnlinkPrim(42) // never linked; Parent is already Invalid
	if p.Get(42).Parent != Invalid {
		t.Fatalf("expected no-op unlink to leave Parent invalid")
	}
}

func TestPrimMoveInsertsAfterSibling(t *testing.T) {
	p := NewPool()
	p.SetPrimGroupIn(RootID, 1)
	p.SetPrimGroupIn(RootID, 2)
	p.SetPrimGroupIn(RootID, 3)

	p.PrimMove(1, 3)

	if p.Get(1).NextSibling != 3 {
		t.Fatalf("expected 3 right after 1, got next=%d", p.Get(1).NextSibling)
	}
	if p.Get(3).NextSibling != 2 {
		t.Fatalf("expected 2 right after 3, got next=%d", p.Get(3).NextSibling)
	}
	if err := p.CheckInvariants(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func TestDirtyBitSetOnMutation(t *testing.T) {
	p := NewPool()
	p.SetPrimGroupIn(RootID, 10)
	if p.Get(10).Attr&DirtyBit == 0 {
		t.Fatalf("expected dirty bit set after linking")
	}
}
