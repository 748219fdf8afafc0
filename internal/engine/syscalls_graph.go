package engine

import (
	"fmt"
	"os"

	"github.com/rfvp-go/vnengine/internal/elog"
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/texture"
	"github.com/rfvp-go/vnengine/internal/variant"
	"github.com/rfvp-go/vnengine/internal/verr"
)

// graphLoadKind mirrors the scenario bytecode's asset-type selector for
// graph_load: 0 texture, 1 mask, 2 gaiji glyph.
const (
	graphKindTexture = 0
	graphKindMask    = 1
	graphKindGaiji   = 2
)

// bindGraphSyscalls attaches graph_load/graph_unload, color_tone_set,
// and texture_apply, the NVSG-facing trio from the external interfaces
// list.
func (e *Engine) bindGraphSyscalls() {
	e.Registry.Bind("graph_load", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		path := argString(a[1])
		kind := argInt(a[2])
		if id < 0 || id >= texture.PoolSize {
			return variant.Nil(), nil
		}
		buf, err := os.ReadFile(path)
		if err != nil {
			elog.Warnf("graph_load %d: %v", id, err)
			return variant.Nil(), nil
		}
		g := e.Textures.Get(id)
		switch kind {
		case graphKindMask:
			err = g.LoadMask(path, buf)
		case graphKindGaiji:
			err = g.LoadGaijiGlyph(path, buf)
		default:
			err = g.LoadTexture(path, buf)
		}
		if err != nil {
			elog.Warnf("graph_load %d: %v", id, err)
			return variant.Nil(), nil
		}
		return variant.True(), nil
	})

	e.Registry.Bind("graph_unload", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if id >= 0 && id < texture.PoolSize {
			e.Textures.Get(id).Unload()
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("color_tone_set", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		id := int(argInt(a[0]))
		if id >= 0 && id < texture.PoolSize {
			e.Textures.Get(id).SetColorTone(argInt(a[1]), argInt(a[2]), argInt(a[3]))
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("texture_apply", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		primID := int(argInt(a[0]))
		graphID := int(argInt(a[1]))
		if !e.Prims.Valid(primID) || graphID < 0 || graphID >= texture.PoolSize {
			return variant.Nil(), nil
		}
		g := e.Textures.Get(graphID)
		if !g.Ready {
			return variant.Nil(), fmt.Errorf("texture_apply: graph %d not loaded: %w", graphID, verr.ErrInvalidMedia)
		}
		p := e.Prims.Get(primID)
		p.TextureID = graphID
		p.W, p.H = float32(g.Width), float32(g.Height)
		return variant.True(), nil
	})
}
