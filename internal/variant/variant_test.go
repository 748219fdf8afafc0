package variant

import "testing"

func TestAddIntInt(t *testing.T) {
	got := Add(Int(7), Int(35))
	v, ok := got.AsInt()
	if !ok || v != 42 {
		t.Fatalf("Add(7,35) = %#v, want Int(42)", got)
	}
}

func TestAddMixedPromotesToFloat(t *testing.T) {
	got := Add(Int(2), Float(0.5))
	f, ok := got.AsFloat()
	if !ok || f != 2.5 {
		t.Fatalf("Add(2, 0.5) = %#v, want Float(2.5)", got)
	}
}

func TestAddStringConcatenatesAndPromotesConstString(t *testing.T) {
	got := Add(ConstString("hello ", 10), String("world"))
	s, ok := got.AsString()
	if !ok || s != "hello world" {
		t.Fatalf("Add(const,owned) = %#v, want String(\"hello world\")", got)
	}
	if got.IsConstString() {
		t.Fatalf("concatenation result must not remain a const-string")
	}
}

func TestAddWithNilOperandYieldsNil(t *testing.T) {
	if got := Add(Int(1), Nil()); !got.IsNil() {
		t.Fatalf("Add(1, nil) = %#v, want Nil", got)
	}
}

func TestDivByZeroYieldsNil(t *testing.T) {
	if got := Div(Int(10), Int(0)); !got.IsNil() {
		t.Fatalf("Div(10,0) = %#v, want Nil", got)
	}
}

func TestDivIntMinByMinusOneYieldsNil(t *testing.T) {
	got := Div(Int(-2147483648), Int(-1))
	if !got.IsNil() {
		t.Fatalf("Div(INT_MIN,-1) = %#v, want Nil", got)
	}
}

func TestModFloatYieldsNil(t *testing.T) {
	if got := Mod(Float(1.5), Int(2)); !got.IsNil() {
		t.Fatalf("Mod(float,int) = %#v, want Nil", got)
	}
}

func TestEqualCrossTypeNumericUsesExtendedPrecision(t *testing.T) {
	if got := Equal(Int(2), Float(2.0)); !got.IsTrue() {
		t.Fatalf("Equal(2, 2.0) = %#v, want True", got)
	}
	if got := Equal(Int(2), Float(2.0000002)); got.IsTrue() {
		t.Fatalf("Equal(2, 2.0000002) = %#v, want Nil", got)
	}
}

func TestEqualDistinctKindsIsNilExceptNumericAndString(t *testing.T) {
	if got := Equal(Nil(), Int(0)); got.IsTrue() {
		t.Fatalf("Equal(nil, 0) must be Nil per the cross-type dispatch table")
	}
	if got := Equal(True(), Int(1)); got.IsTrue() {
		t.Fatalf("Equal(true, 1) must be Nil per the cross-type dispatch table")
	}
}

func TestTableEqualityIsByStableIdentity(t *testing.T) {
	a := NewTableVariant()
	b := NewTableVariant()
	if got := Equal(a, a); !got.IsTrue() {
		t.Fatalf("a table must equal itself")
	}
	if got := Equal(a, b); got.IsTrue() {
		t.Fatalf("two distinct tables must not compare equal")
	}
}

func TestGreaterEqualFallsBackToEqual(t *testing.T) {
	if got := GreaterEqual(Int(5), Int(5)); !got.IsTrue() {
		t.Fatalf("GreaterEqual(5,5) must be True via the Equal fallback")
	}
	if got := GreaterEqual(Int(4), Int(5)); got.IsTrue() {
		t.Fatalf("GreaterEqual(4,5) must be Nil")
	}
}

func TestTablePushAndInsert(t *testing.T) {
	tbl := NewTable()
	tbl.Push(Int(1))
	tbl.Push(Int(2))
	if tbl.Count() != 2 {
		t.Fatalf("count = %d, want 2", tbl.Count())
	}
	tbl.Insert(0, Int(99))
	if tbl.Count() != 2 {
		t.Fatalf("overwrite via Insert must not bump count, got %d", tbl.Count())
	}
	v, ok := tbl.Get(0)
	if !ok {
		t.Fatalf("key 0 missing after insert")
	}
	if i, _ := v.AsInt(); i != 99 {
		t.Fatalf("Get(0) = %v, want 99", i)
	}
}
