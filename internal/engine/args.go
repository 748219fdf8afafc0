package engine

import "github.com/rfvp-go/vnengine/internal/variant"

// argInt/argFloat/argString/argBool convert a syscall argument to the Go
// type a handler needs, defaulting to the zero value on a kind mismatch
// rather than failing the call — matching the Variant package's general
// policy of permissive cross-kind coercion rather than a hard type error
// for host-injected syscalls (script bytecode cannot itself construct an
// ill-typed argument; a mismatch here means a stale scenario header).
func argInt(v variant.Variant) int32 {
	if i, ok := v.AsInt(); ok {
		return i
	}
	if f, ok := v.AsFloat(); ok {
		return int32(f)
	}
	return 0
}

func argFloat(v variant.Variant) float32 {
	if f, ok := v.AsFloat(); ok {
		return f
	}
	if i, ok := v.AsInt(); ok {
		return float32(i)
	}
	return 0
}

func argString(v variant.Variant) string {
	s, _ := v.AsString()
	return s
}

func argBool(v variant.Variant) bool {
	return v.CanBeTrue()
}

func boolVariant(b bool) variant.Variant {
	if b {
		return variant.True()
	}
	return variant.Nil()
}
