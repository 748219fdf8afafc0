// Package variant implements the VM's tagged value type and its 7x7
// cross-type arithmetic and comparison dispatch table, including the
// extended-precision float comparison used to avoid ULP anomalies.
package variant

import (
	"math"
	"sync/atomic"
)

// Kind identifies which field of a Variant is populated.
type Kind uint8

const (
	KindNil Kind = iota
	KindTrue
	KindInt
	KindFloat
	KindString
	KindConstString
	KindTable
	KindSavedStackInfo
)

// SavedStackInfo captures the caller-side bookkeeping a frame needs to
// unwind on ret/retv. It is never produced by script code directly; the
// VM stores it internally.
type SavedStackInfo struct {
	StackBase    int
	StackPos     int
	ReturnAddr   int
	PrevArgCount int
}

var nextTableID atomic.Uint64

// Table is a sparse mapping from a 32-bit key to a Variant, carrying a
// monotonically increasing append index for push. Every Table receives a
// stable id at construction so that two table-valued Variants can be
// compared for identity with value semantics (see the design notes on the
// table-equality open question: identity is resolved as a stable id
// assigned at construction, not structural comparison).
type Table struct {
	id      uint64
	entries map[uint32]Variant
	count   uint32
	nextIdx uint32
}

// NewTable allocates an empty table with a fresh identity.
func NewTable() *Table {
	return &Table{
		id:      nextTableID.Add(1),
		entries: make(map[uint32]Variant),
	}
}

// ID returns the table's stable identity. A save records it, but a load
// rebuilds each table global as a new empty table with a fresh id.
func (t *Table) ID() uint64 { return t.id }

// Push appends value at the table's current append index.
func (t *Table) Push(value Variant) {
	t.entries[t.nextIdx] = value
	t.count++
	t.nextIdx++
}

// Insert sets key to value. Unlike Push, an overwrite of an existing key
// does not increment count, matching the original's HashMap semantics
// post-facto: count only tracks distinct keys ever targeted by Push or a
// first Insert of that key.
func (t *Table) Insert(key uint32, value Variant) {
	if _, exists := t.entries[key]; !exists {
		t.count++
	}
	t.entries[key] = value
	if key >= t.nextIdx {
		t.nextIdx = key + 1
	}
}

// Get returns the value at key and whether it was present.
func (t *Table) Get(key uint32) (Variant, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Count returns the number of distinct keys ever set.
func (t *Table) Count() uint32 { return t.count }

// Keys returns every key currently present, for save/load enumeration.
func (t *Table) Keys() []uint32 {
	keys := make([]uint32, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	return keys
}

// Variant is the tagged sum described by the data model: nil, true, a
// signed 32-bit int, a 32-bit float, an owned string, a const-string
// (interned reference plus source offset), a table, or an internal
// saved-stack-info record. The zero value is Nil, matching the source's
// default-to-Nil convention.
type Variant struct {
	kind      Kind
	i         int32
	f         float32
	s         string
	constOff  uint32
	table     *Table
	stackInfo SavedStackInfo
}

// Nil is the canonical falsey value; there is no separate False.
func Nil() Variant { return Variant{kind: KindNil} }

// True constructs the sole truthy sentinel value.
func True() Variant { return Variant{kind: KindTrue} }

// Int constructs an integer Variant.
func Int(v int32) Variant { return Variant{kind: KindInt, i: v} }

// Float constructs a float Variant.
func Float(v float32) Variant { return Variant{kind: KindFloat, f: v} }

// String constructs an owned-string Variant.
func String(v string) Variant { return Variant{kind: KindString, s: v} }

// ConstString constructs an interned const-string Variant with its
// source offset.
func ConstString(v string, offset uint32) Variant {
	return Variant{kind: KindConstString, s: v, constOff: offset}
}

// FromTable wraps an existing table.
func FromTable(t *Table) Variant { return Variant{kind: KindTable, table: t} }

// NewTableVariant constructs a fresh, empty table Variant.
func NewTableVariant() Variant { return FromTable(NewTable()) }

// FromSavedStackInfo wraps an internal frame-teardown record.
func FromSavedStackInfo(info SavedStackInfo) Variant {
	return Variant{kind: KindSavedStackInfo, stackInfo: info}
}

func (v Variant) Kind() Kind { return v.kind }

func (v Variant) IsNil() bool   { return v.kind == KindNil }
func (v Variant) IsTrue() bool  { return v.kind == KindTrue }
func (v Variant) IsInt() bool   { return v.kind == KindInt }
func (v Variant) IsFloat() bool { return v.kind == KindFloat }
func (v Variant) IsString() bool {
	return v.kind == KindString || v.kind == KindConstString
}
func (v Variant) IsConstString() bool { return v.kind == KindConstString }
func (v Variant) IsTable() bool       { return v.kind == KindTable }

// CanBeTrue reports whether v counts as truthy in a jz test: everything
// except Nil does.
func (v Variant) CanBeTrue() bool { return v.kind != KindNil }

func (v Variant) AsInt() (int32, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Variant) AsFloat() (float32, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v Variant) AsString() (string, bool) {
	if v.kind == KindString || v.kind == KindConstString {
		return v.s, true
	}
	return "", false
}

func (v Variant) AsTable() (*Table, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return v.table, true
}

func (v Variant) AsSavedStackInfo() (SavedStackInfo, bool) {
	if v.kind != KindSavedStackInfo {
		return SavedStackInfo{}, false
	}
	return v.stackInfo, true
}

// Neg negates in place for int/float operands; any other kind is left
// unchanged, matching the source's no-op fallthrough.
func (v *Variant) Neg() {
	switch v.kind {
	case KindInt:
		v.i = -v.i
	case KindFloat:
		v.f = -v.f
	}
}

// twoSum implements the compensated ("double-double") summation step
// used by extended-precision comparisons, so that float-vs-float
// comparisons do not flip on a single ULP the way naive f32 comparison
// would for values promoted from Int. The reference decoder wraps values
// in a compensated-pair type for exactly this reason; no library in the
// example pack provides one for Go, so this stays on hand-rolled
// compensated arithmetic (see DESIGN.md for the stdlib justification).
func twoSum(a, b float64) (hi, lo float64) {
	hi = a + b
	bb := hi - a
	lo = (a - (hi - bb)) + (b - bb)
	return hi, lo
}

// compFloat is a compensated pair (hi, lo) approximating a value to
// better than float64 precision from two float32 inputs promoted to
// float64; comparisons between two compFloat values are then equivalent
// in spirit to the reference decoder's extended-precision comparisons.
type compFloat struct {
	hi, lo float64
}

func wrap(f float32) compFloat {
	hi, lo := twoSum(float64(f), 0)
	return compFloat{hi: hi, lo: lo}
}

func (a compFloat) cmp(b compFloat) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	default:
		return 0
	}
}

// numericOperand reduces an Int or Float Variant to a compFloat; ok is
// false for any other kind.
func numericOperand(v Variant) (compFloat, bool) {
	switch v.kind {
	case KindInt:
		return wrap(float32(v.i)), true
	case KindFloat:
		return wrap(v.f), true
	default:
		return compFloat{}, false
	}
}

func boolVariant(b bool) Variant {
	if b {
		return True()
	}
	return Nil()
}

// Equal implements the 7x7 equality dispatch: cross-type numeric
// equality between Int and Float uses extended-precision comparison;
// strings compare by content regardless of owned/const; tables compare
// by stable identity; every other cross-kind pairing is Nil.
func Equal(a, b Variant) Variant {
	switch {
	case a.kind == KindNil && b.kind == KindNil:
		return True()
	case a.kind == KindTrue && b.kind == KindTrue:
		return True()
	case a.kind == KindInt && b.kind == KindInt:
		return boolVariant(a.i == b.i)
	case a.IsString() && b.IsString():
		return boolVariant(a.s == b.s)
	case a.kind == KindTable && b.kind == KindTable:
		return boolVariant(a.table.ID() == b.table.ID())
	default:
		na, oka := numericOperand(a)
		nb, okb := numericOperand(b)
		if oka && okb {
			return boolVariant(na.cmp(nb) == 0)
		}
		return Nil()
	}
}

// NotEqual mirrors Equal, but Nil/Nil and True/True are also Nil,
// matching the source's not_equal table exactly (it does not simply
// invert Equal).
func NotEqual(a, b Variant) Variant {
	switch {
	case a.kind == KindNil && b.kind == KindNil:
		return Nil()
	case a.kind == KindTrue && b.kind == KindTrue:
		return Nil()
	case a.kind == KindInt && b.kind == KindInt:
		return boolVariant(a.i != b.i)
	case a.IsString() && b.IsString():
		return boolVariant(a.s != b.s)
	default:
		na, oka := numericOperand(a)
		nb, okb := numericOperand(b)
		if oka && okb {
			return boolVariant(na.cmp(nb) != 0)
		}
		return Nil()
	}
}

// Greater implements strict ordering; cross-type pairs outside
// Int/Float/String are Nil (no ordering is defined, e.g., on tables).
func Greater(a, b Variant) Variant {
	if a.IsString() && b.IsString() {
		return boolVariant(a.s > b.s)
	}
	na, oka := numericOperand(a)
	nb, okb := numericOperand(b)
	if oka && okb {
		return boolVariant(na.cmp(nb) > 0)
	}
	return Nil()
}

// Less is the mirror of Greater.
func Less(a, b Variant) Variant {
	if a.IsString() && b.IsString() {
		return boolVariant(a.s < b.s)
	}
	na, oka := numericOperand(a)
	nb, okb := numericOperand(b)
	if oka && okb {
		return boolVariant(na.cmp(nb) < 0)
	}
	return Nil()
}

// GreaterEqual is Greater, falling back to Equal when Greater is Nil —
// reproducing the source's two-step composition rather than a single
// combined dispatch.
func GreaterEqual(a, b Variant) Variant {
	if r := Greater(a, b); r.CanBeTrue() {
		return r
	}
	return Equal(a, b)
}

// LessEqual mirrors GreaterEqual using Less.
func LessEqual(a, b Variant) Variant {
	if r := Less(a, b); r.CanBeTrue() {
		return r
	}
	return Equal(a, b)
}

// And and Or implement the VM's logical operators: Nil is the only
// falsey value, so the truth table collapses to Nil-propagation.
func And(a, b Variant) Variant {
	if a.kind == KindNil || b.kind == KindNil {
		return Nil()
	}
	return True()
}

func Or(a, b Variant) Variant {
	if a.kind == KindNil && b.kind == KindNil {
		return Nil()
	}
	return True()
}

// Add implements vm_add: Int+Int wraps in 32-bit two's complement like
// the reference decoder's release-mode build; Int/Float pairs promote
// through the compensated pair before narrowing back to float32; string
// concatenation promotes a const-string to an owned string; any other
// pairing (including a Nil operand, per the boundary behavior in the
// design notes) yields Nil.
func Add(a, b Variant) Variant {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i + b.i)
	case a.IsString() && b.IsString():
		return String(a.s + b.s)
	default:
		return numericBinOp(a, b, func(x, y float64) float64 { return x + y })
	}
}

func Sub(a, b Variant) Variant {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i - b.i)
	}
	return numericBinOp(a, b, func(x, y float64) float64 { return x - y })
}

func Mul(a, b Variant) Variant {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i * b.i)
	}
	return numericBinOp(a, b, func(x, y float64) float64 { return x * y })
}

// Div implements vm_div: Int/Int division by zero and INT_MIN/-1 both
// yield Nil per the boundary behavior, rather than panicking or wrapping
// the way raw Go or Rust division would.
func Div(a, b Variant) Variant {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			return Nil()
		}
		if a.i == -2147483648 && b.i == -1 {
			return Nil()
		}
		return Int(a.i / b.i)
	}
	return numericBinOp(a, b, func(x, y float64) float64 {
		if y == 0 {
			return math.NaN()
		}
		return x / y
	})
}

// Mod implements vm_mod: only Int%Int is defined; everything else,
// including Float operands, yields Nil.
func Mod(a, b Variant) Variant {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			return Nil()
		}
		return Int(a.i % b.i)
	}
	return Nil()
}

// numericBinOp implements the three mixed Int/Float arithmetic branches
// shared by Add/Sub/Mul/Div: both Float, Int-then-Float, and
// Float-then-Int all route through the same compensated double-float op
// before narrowing back to float32. Any non-numeric pairing yields Nil.
func numericBinOp(a, b Variant, op func(x, y float64) float64) Variant {
	na, oka := numericOperand(a)
	nb, okb := numericOperand(b)
	if !oka || !okb {
		return Nil()
	}
	// Only Float/Float, Int/Float and Float/Int reach here (Int/Int was
	// handled by the caller); this matches the source's per-opcode
	// pattern match exactly.
	if a.kind != KindFloat && b.kind != KindFloat {
		return Nil()
	}
	result := op(na.hi+na.lo, nb.hi+nb.lo)
	if math.IsNaN(result) {
		return Nil()
	}
	return Float(float32(result))
}
