package engine

import (
	"github.com/rfvp-go/vnengine/internal/motion"
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/variant"
)

// bindMotionSyscalls attaches start/stop/test triples for every
// per-prim motion engine plus the v3d, snow, and parts singletons,
// matching the external-interfaces list's "motion start/stop/test for
// each engine" requirement.
func (e *Engine) bindMotionSyscalls() {
	e.Registry.Bind("alpha_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		ok := e.Alpha.Push(int(argInt(a[0])), uint8(argInt(a[1])), uint8(argInt(a[2])), float64(argFloat(a[3])), motion.Easing(argInt(a[4])), argBool(a[5]), argBool(a[6]))
		return boolVariant(ok), nil
	})
	e.Registry.Bind("alpha_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Alpha.Stop(int(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("alpha_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		_, active := e.Alpha.Active(int(argInt(a[0])))
		return boolVariant(active), nil
	})

	e.Registry.Bind("move_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		ok := e.Move.Push(int(argInt(a[0])), argFloat(a[1]), argFloat(a[2]), argFloat(a[3]), argFloat(a[4]), float64(argFloat(a[5])), motion.Easing(argInt(a[6])), argBool(a[7]), argBool(a[8]))
		return boolVariant(ok), nil
	})
	e.Registry.Bind("move_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Move.Stop(int(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("move_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		_, active := e.Move.Active(int(argInt(a[0])))
		return boolVariant(active), nil
	})

	e.Registry.Bind("rotate_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		ok := e.Rotate.Push(int(argInt(a[0])), argFloat(a[1]), argFloat(a[2]), float64(argFloat(a[3])), motion.Easing(argInt(a[4])), argBool(a[5]), argBool(a[6]))
		return boolVariant(ok), nil
	})
	e.Registry.Bind("rotate_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Rotate.Stop(int(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("rotate_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		_, active := e.Rotate.Active(int(argInt(a[0])))
		return boolVariant(active), nil
	})

	e.Registry.Bind("scale_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		ok := e.Scale.Push(int(argInt(a[0])), argInt(a[1]), argInt(a[2]), argInt(a[3]), argInt(a[4]), float64(argFloat(a[5])), motion.Easing(argInt(a[6])), argBool(a[7]), argBool(a[8]))
		return boolVariant(ok), nil
	})
	e.Registry.Bind("scale_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Scale.Stop(int(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("scale_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		_, active := e.Scale.Active(int(argInt(a[0])))
		return boolVariant(active), nil
	})

	e.Registry.Bind("z_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		ok := e.Z.Push(int(argInt(a[0])), argInt(a[1]), argInt(a[2]), float64(argFloat(a[3])), motion.Easing(argInt(a[4])), argBool(a[5]), argBool(a[6]))
		return boolVariant(ok), nil
	})
	e.Registry.Bind("z_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Z.Stop(int(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("z_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		_, active := e.Z.Active(int(argInt(a[0])))
		return boolVariant(active), nil
	})

	e.Registry.Bind("v3d_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		src := motion.Vec3{X: argFloat(a[0]), Y: argFloat(a[1]), Z: argFloat(a[2])}
		dst := motion.Vec3{X: argFloat(a[3]), Y: argFloat(a[4]), Z: argFloat(a[5])}
		e.V3D.Push(src, dst, float64(argFloat(a[6])), motion.Easing(argInt(a[7])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("v3d_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.V3D.Stop()
		return variant.Nil(), nil
	})
	e.Registry.Bind("v3d_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		return boolVariant(e.V3D.Running()), nil
	})

	e.Registry.Bind("snow_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Snow.Start(int(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("snow_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Snow.Stop(int(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("snow_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		return boolVariant(e.Snow.Test(int(argInt(a[0])))), nil
	})

	e.Registry.Bind("parts_motion_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Parts.SetMotion(uint8(argInt(a[0])), uint8(argInt(a[1])), uint32(argInt(a[2])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("parts_motion_stop", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Parts.StopMotion(uint8(argInt(a[0])))
		return variant.Nil(), nil
	})
	e.Registry.Bind("parts_motion_test", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		return boolVariant(e.Parts.TestMotion(uint8(argInt(a[0])))), nil
	})
}
