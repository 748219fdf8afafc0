package engine

import (
	"github.com/rfvp-go/vnengine/internal/prim"
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/variant"
)

// bindPrimSyscalls attaches handlers for prim-type initialization,
// tree linking, and the per-field setters named in the external
// interfaces list (pos/size/uv/rotation/scale/alpha/blend/z/text/
// tile/op).
func (e *Engine) bindPrimSyscalls() {
	e.Registry.Bind("prim_init_with_type", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if !e.Prims.Valid(id) {
			return variant.Nil(), nil
		}
		e.Prims.InitWithType(id, prim.Type(argInt(a[1])))
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_group_in", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		parent, child := int(argInt(a[0])), int(argInt(a[1]))
		if e.Prims.Valid(parent) && e.Prims.Valid(child) {
			e.Prims.SetPrimGroupIn(parent, child)
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("prim_move", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		sibling, child := int(argInt(a[0])), int(argInt(a[1]))
		if e.Prims.Valid(sibling) && e.Prims.Valid(child) {
			e.Prims.PrimMove(sibling, child)
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("unlink_prim", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			e.Prims.UnlinkPrim(id)
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_pos", primField2f(e, func(p *prim.Prim, x, y float32) { p.X, p.Y = x, y }))
	e.Registry.Bind("set_prim_size", primField2f(e, func(p *prim.Prim, w, h float32) { p.W, p.H = w, h }))
	e.Registry.Bind("set_prim_uv", primField2f(e, func(p *prim.Prim, u, v float32) { p.U, p.V = u, v }))
	e.Registry.Bind("set_prim_op", primField2f(e, func(p *prim.Prim, ox, oy float32) { p.OpX, p.OpY = ox, oy }))

	e.Registry.Bind("set_prim_rotation", primField1f(e, func(p *prim.Prim, v float32) { p.Rotation = v }))

	e.Registry.Bind("set_prim_scale", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			p := e.Prims.Get(id)
			p.ScaleX, p.ScaleY = argInt(a[1]), argInt(a[2])
			p.Attr |= prim.DirtyBit
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_alpha", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			p := e.Prims.Get(id)
			p.Alpha = uint8(argInt(a[1]))
			p.Attr |= prim.DirtyBit
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_blend", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			e.Prims.Get(id).Blend = argBool(a[1])
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_z", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			p := e.Prims.Get(id)
			p.Z = argInt(a[1])
			p.Attr |= prim.DirtyBit
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_text", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			e.Prims.Get(id).TextIndex = int(argInt(a[1]))
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_tile", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			e.Prims.Get(id).TileID = int(argInt(a[1]))
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_draw", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			e.Prims.Get(id).Draw = argBool(a[1])
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("set_prim_pause", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			e.Prims.Get(id).Paused = argBool(a[1])
		}
		return variant.Nil(), nil
	})
}

// primField1f/primField2f factor out the common "look up prim id, bail
// if invalid, otherwise apply the field mutation and mark dirty" shape
// shared by most of the simple field setters above.
func primField1f(e *Engine, set func(p *prim.Prim, v float32)) func(syscall.VM, []variant.Variant) (variant.Variant, error) {
	return func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			p := e.Prims.Get(id)
			set(p, argFloat(a[1]))
			p.Attr |= prim.DirtyBit
		}
		return variant.Nil(), nil
	}
}

func primField2f(e *Engine, set func(p *prim.Prim, a, b float32)) func(syscall.VM, []variant.Variant) (variant.Variant, error) {
	return func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if e.Prims.Valid(id) {
			p := e.Prims.Get(id)
			set(p, argFloat(a[1]), argFloat(a[2]))
			p.Attr |= prim.DirtyBit
		}
		return variant.Nil(), nil
	}
}
