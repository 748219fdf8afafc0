package motion

// PartsPoolSize is the number of addressable parts overlay slots.
const PartsPoolSize = 64

// PartsMotionPoolSize is the number of concurrent timed parts
// substitutions; only one motion may run per parts id at a time.
const PartsMotionPoolSize = 8

// PartsItem is one overlay slot: a prim to substitute textures on, a
// color tone triplet applied to every decoded entry, and the loaded
// state of its backing texture. Texture decoding itself belongs to
// the texture package; this tracks only what the motion layer needs
// to schedule and report substitutions.
type PartsItem struct {
	PrimID      uint16
	R, G, B     uint8
	Running     bool
	TextureName string
	Loaded      bool
	EntryCount  int
}

func (p *PartsItem) Load(name string, entryCount int) {
	p.TextureName = name
	p.EntryCount = entryCount
	p.R, p.G, p.B = 100, 100, 100
	p.Running = false
	p.Loaded = true
}

// UnloadKeepName drops decoded state while preserving the stored
// texture name, matching a load-with-nil-payload request.
func (p *PartsItem) UnloadKeepName() {
	p.Loaded = false
	p.Running = false
}

func (p *PartsItem) SetColorTone(r, g, b uint8) {
	if !p.Loaded {
		return
	}
	p.R, p.G, p.B = r, g, b
}

// PartsMotion is a timed entry substitution in flight for one parts
// id: after Duration ms the overlay should switch to EntryID.
type PartsMotion struct {
	Running           bool
	PartsID, EntryID  uint8
	ID                uint8
	Elapsed, Duration uint32
}

// Completion is a finished parts motion, reported so the caller can
// apply EntryID to the destination graph.
type Completion struct {
	PartsID, EntryID uint8
}

// PartsManager owns every parts overlay slot and the fixed pool of
// timed substitutions. Motion slots are allocated from a free stack
// of ids, mirroring the pooled-allocation style used by the other
// motion engines.
type PartsManager struct {
	Items     [PartsPoolSize]PartsItem
	motions   [PartsMotionPoolSize]PartsMotion
	freeStack [PartsMotionPoolSize]uint8
	freeTop   uint8
}

func NewPartsManager() *PartsManager {
	m := &PartsManager{}
	for i := range m.freeStack {
		m.freeStack[i] = uint8(i)
	}
	m.freeTop = 0
	return m
}

func (m *PartsManager) AssignPrim(partsID uint8, primID uint16) {
	m.Items[partsID].PrimID = primID
}

// unloadMotionFor stops and recycles the motion slot running for
// partsID, if any. At most one motion may be active per parts id.
func (m *PartsManager) unloadMotionFor(partsID uint8) {
	for i := range m.motions {
		if m.motions[i].Running && m.motions[i].PartsID == partsID {
			slotID := m.motions[i].ID
			m.motions[i].Running = false
			if m.freeTop > 0 {
				m.freeTop--
				m.freeStack[m.freeTop] = slotID
			}
			return
		}
	}
}

// SetMotion replaces any in-flight motion for partsID with a new
// timed substitution to entryID after durationMs. A no-op (silently
// dropped, matching the original's pool-exhausted behavior) if every
// motion slot is already in use for other parts ids.
func (m *PartsManager) SetMotion(partsID, entryID uint8, durationMs uint32) {
	m.unloadMotionFor(partsID)

	if int(m.freeTop) >= len(m.freeStack) {
		return
	}

	slotID := m.freeStack[m.freeTop]
	m.freeTop++

	mo := &m.motions[slotID]
	mo.ID = slotID
	mo.Running = true
	mo.PartsID = partsID
	mo.EntryID = entryID
	mo.Duration = durationMs
	mo.Elapsed = 0
}

func (m *PartsManager) TestMotion(partsID uint8) bool {
	for i := range m.motions {
		if m.motions[i].Running && m.motions[i].PartsID == partsID {
			return true
		}
	}
	return false
}

func (m *PartsManager) StopMotion(partsID uint8) {
	m.unloadMotionFor(partsID)
}

// TickMotions advances every running motion by elapsedMs and returns
// every substitution that completed this tick. A parts slot whose
// Running flag is set acts as a per-parts pause switch: its motion
// does not advance while set.
func (m *PartsManager) TickMotions(elapsedMs uint32) []Completion {
	if elapsedMs == 0 {
		return nil
	}
	var completed []Completion
	for i := range m.motions {
		mo := &m.motions[i]
		if !mo.Running {
			continue
		}
		if m.Items[mo.PartsID].Running {
			continue
		}

		mo.Elapsed += elapsedMs
		if mo.Duration != 0 && mo.Elapsed >= mo.Duration {
			entryID := mo.EntryID
			partsID := mo.PartsID
			slotID := mo.ID

			mo.Running = false
			if m.freeTop > 0 {
				m.freeTop--
				m.freeStack[m.freeTop] = slotID
			}

			completed = append(completed, Completion{PartsID: partsID, EntryID: entryID})
		}
	}
	return completed
}
