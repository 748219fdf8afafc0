package main

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"github.com/rfvp-go/vnengine/internal/engine"
	"github.com/rfvp-go/vnengine/internal/input"
	"github.com/rfvp-go/vnengine/internal/prim"
	"github.com/rfvp-go/vnengine/internal/texture"
)

// frameUs is the fixed per-tick elapsed time fed to Engine.Tick,
// matching ebiten's default 60 ticks/sec update rate.
const frameUs = 16667

// game adapts an Engine to ebiten's Game interface: Update feeds host
// input into the engine and advances one frame, Draw composites the
// prim scene graph onto the screen.
type game struct {
	eng        *engine.Engine
	title      string
	fullscreen bool
	texCache   map[int]cachedTexture

	clipboardOnce sync.Once
	clipboardOK   bool
}

type cachedTexture struct {
	generation uint64
	img        *ebiten.Image
}

func newGame(eng *engine.Engine, title string) *game {
	return &game{eng: eng, title: title, texCache: make(map[int]cachedTexture)}
}

// dumpSceneToClipboard copies a short diagnostic line (scenario title
// and live prim count) to the system clipboard, the same lazily
// initialized clipboard.Init/clipboardOK pattern the teacher's paste
// handler uses, wired here as a copy affordance instead.
func (g *game) dumpSceneToClipboard() {
	g.clipboardOnce.Do(func() {
		g.clipboardOK = clipboard.Init() == nil
	})
	if !g.clipboardOK {
		return
	}
	live := 0
	for id := 0; id < prim.PoolSize; id++ {
		if g.eng.Prims.Get(id).Draw {
			live++
		}
	}
	clipboard.Write(clipboard.FmtText, []byte(fmt.Sprintf("%s: %d drawable prims", g.title, live)))
}

// keyTable maps ebiten's physical keys onto the engine's virtual
// keycode bitmap, grounded on the teacher's translateSpecialKey
// dispatch table but feeding input.Manager's press/release latch
// instead of a terminal escape-sequence stream.
var keyTable = map[ebiten.Key]input.KeyCode{
	ebiten.KeyShiftLeft:    input.KeyShift,
	ebiten.KeyShiftRight:   input.KeyShift,
	ebiten.KeyControlLeft:  input.KeyCtrl,
	ebiten.KeyControlRight: input.KeyCtrl,
	ebiten.KeyEscape:       input.KeyEsc,
	ebiten.KeyEnter:        input.KeyEnter,
	ebiten.KeyNumpadEnter:  input.KeyEnter,
	ebiten.KeySpace:        input.KeySpace,
	ebiten.KeyArrowUp:      input.KeyUpArrow,
	ebiten.KeyArrowDown:    input.KeyDownArrow,
	ebiten.KeyArrowLeft:    input.KeyLeftArrow,
	ebiten.KeyArrowRight:   input.KeyRightArrow,
	ebiten.KeyTab:          input.KeyTab,
	ebiten.KeyF1:           input.KeyF1,
	ebiten.KeyF2:           input.KeyF2,
	ebiten.KeyF3:           input.KeyF3,
	ebiten.KeyF4:           input.KeyF4,
	ebiten.KeyF5:           input.KeyF5,
	ebiten.KeyF6:           input.KeyF6,
	ebiten.KeyF7:           input.KeyF7,
	ebiten.KeyF8:           input.KeyF8,
	ebiten.KeyF9:           input.KeyF9,
	ebiten.KeyF10:          input.KeyF10,
	ebiten.KeyF11:          input.KeyF11,
	ebiten.KeyF12:          input.KeyF12,
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		g.fullscreen = !g.fullscreen
		ebiten.SetFullscreen(g.fullscreen)
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.dumpSceneToClipboard()
	}

	for key, code := range keyTable {
		switch {
		case inpututil.IsKeyJustPressed(key):
			g.eng.Input.NotifyKeyDown(code, false)
		case inpututil.IsKeyJustReleased(key):
			g.eng.Input.NotifyKeyUp(code)
		}
	}

	x, y := ebiten.CursorPosition()
	g.eng.Input.NotifyMouseMove(int32(x), int32(y))
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.eng.Input.NotifyMouseDown(input.KeyMouseLeft)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.eng.Input.NotifyMouseUp(input.KeyMouseLeft)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.eng.Input.NotifyMouseDown(input.KeyMouseRight)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		g.eng.Input.NotifyMouseUp(input.KeyMouseRight)
	}
	_, wheelY := ebiten.Wheel()
	if wheelY != 0 {
		g.eng.Input.NotifyMouseWheel(int32(wheelY))
	}

	g.eng.Input.RefreshInput()
	g.eng.Tick(frameUs)
	return nil
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.eng.Config.ScreenWidth, g.eng.Config.ScreenHeight
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.drawPrim(screen, prim.RootID, 0, 0)
}

// drawPrim walks the scene graph depth-first, accumulating each
// parent's position into its children's since prim coordinates are
// parent-relative, and composites each drawable tile/sprite/text node
// with its bound graph buffer.
func (g *game) drawPrim(screen *ebiten.Image, id int, originX, originY float32) {
	if !g.eng.Prims.Valid(id) {
		return
	}
	p := g.eng.Prims.Get(id)
	x := originX + p.X
	y := originY + p.Y

	if p.Draw && p.Alpha > 0 {
		switch p.Type {
		case prim.TypeTile, prim.TypeSprt:
			g.drawTexture(screen, p.TextureID, p, x, y)
		case prim.TypeText:
			g.drawTexture(screen, texture.TextBufferBase+p.TextIndex, p, x, y)
		}
	}

	for child := p.FirstChild; child != prim.Invalid; {
		g.drawPrim(screen, child, x, y)
		child = g.eng.Prims.Get(child).NextSibling
	}
}

func (g *game) drawTexture(screen *ebiten.Image, texID int, p *prim.Prim, x, y float32) {
	if texID < 0 || texID >= texture.PoolSize {
		return
	}
	gb := g.eng.Textures.Get(texID)
	if !gb.Ready || gb.Image == nil {
		return
	}

	cached, ok := g.texCache[texID]
	if !ok || cached.generation != gb.Generation {
		cached = cachedTexture{generation: gb.Generation, img: ebiten.NewImageFromImage(gb.Image)}
		g.texCache[texID] = cached
	}

	op := &ebiten.DrawImageOptions{}
	if p.ScaleX != 1000 || p.ScaleY != 1000 {
		op.GeoM.Scale(float64(p.ScaleX)/1000.0, float64(p.ScaleY)/1000.0)
	}
	if p.Rotation != 0 {
		op.GeoM.Rotate(float64(p.Rotation))
	}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleAlpha(float32(p.Alpha) / 255.0)
	if p.Blend {
		op.Blend = ebiten.BlendLighter
	}
	screen.DrawImage(cached.img, op)
}
