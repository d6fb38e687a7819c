package sat

import "math"

// ClauseRef is a stable offset into the clause arena. Refs remain valid
// across allocations; only consolidate invalidates them, and it returns the
// relocation map that every holder must apply.
type ClauseRef uint32

// ClauseRefUndef is the null clause reference.
const ClauseRefUndef ClauseRef = math.MaxUint32

// Header layout. Each clause occupies hdrWords words followed by its
// literals. The words are stored in the same backing slice as the literals.
const (
	hdrSize    = 0 // current number of literals
	hdrCap     = 1 // allocated number of literals; fixed for the body's lifetime
	hdrFlags   = 2 // flag bits and tier
	hdrGlue    = 3 // literal block distance
	hdrAct     = 4 // float32 activity bits
	hdrTouched = 5 // conflict epoch of the last touch
	hdrID      = 6 // trace clause ID
	hdrWords   = 7
)

const (
	flagRedundant uint32 = 1 << 0
	flagTombstone uint32 = 1 << 1
	flagDetached  uint32 = 1 << 2
	flagUsedInXor uint32 = 1 << 3
	flagTTL       uint32 = 1 << 4 // protected for one clean-up turn

	tierShift = 8
	tierMask  uint32 = 0b11 << tierShift
)

// arena owns every long clause body. It is a monotonically growing word
// vector handing out offsets; freed clauses are tombstoned in place and only
// reclaimed by consolidate.
type arena struct {
	data []Literal

	// Number of words occupied by tombstoned clauses. Used to decide when a
	// consolidation pays for itself.
	wasted int
}

func (a *arena) alloc(lits []Literal, redundant bool, glue int, id int64) ClauseRef {
	ref := ClauseRef(len(a.data))
	flags := uint32(0)
	if redundant {
		flags |= flagRedundant
	}
	a.data = append(a.data,
		Literal(len(lits)),
		Literal(len(lits)),
		Literal(flags),
		Literal(glue),
		Literal(math.Float32bits(0)),
		0,
		Literal(uint32(id)),
	)
	a.data = append(a.data, lits...)
	return ref
}

// lits returns the clause body as a subslice of the arena. The slice is
// invalidated by any subsequent alloc or consolidate.
func (a *arena) lits(ref ClauseRef) []Literal {
	start := int(ref) + hdrWords
	return a.data[start : start+int(uint32(a.data[ref+hdrSize]))]
}

func (a *arena) size(ref ClauseRef) int {
	return int(uint32(a.data[ref+hdrSize]))
}

func (a *arena) capacity(ref ClauseRef) int {
	return int(uint32(a.data[ref+hdrCap]))
}

// shrink drops the literal at position i by swapping the last literal in.
// The freed word stays inside the body until the next consolidation.
func (a *arena) shrink(ref ClauseRef, i int) {
	lits := a.lits(ref)
	lits[i] = lits[len(lits)-1]
	a.data[ref+hdrSize] = Literal(len(lits) - 1)
	a.wasted++
}

func (a *arena) flags(ref ClauseRef) uint32 {
	return uint32(a.data[ref+hdrFlags])
}

func (a *arena) setFlags(ref ClauseRef, f uint32) {
	a.data[ref+hdrFlags] = Literal(f)
}

func (a *arena) isRedundant(ref ClauseRef) bool { return a.flags(ref)&flagRedundant != 0 }
func (a *arena) isTombstoned(ref ClauseRef) bool { return a.flags(ref)&flagTombstone != 0 }
func (a *arena) isDetached(ref ClauseRef) bool  { return a.flags(ref)&flagDetached != 0 }
func (a *arena) usedInXor(ref ClauseRef) bool   { return a.flags(ref)&flagUsedInXor != 0 }
func (a *arena) hasTTL(ref ClauseRef) bool      { return a.flags(ref)&flagTTL != 0 }

func (a *arena) setDetached(ref ClauseRef, on bool) {
	if on {
		a.setFlags(ref, a.flags(ref)|flagDetached)
	} else {
		a.setFlags(ref, a.flags(ref)&^flagDetached)
	}
}

func (a *arena) setUsedInXor(ref ClauseRef, on bool) {
	if on {
		a.setFlags(ref, a.flags(ref)|flagUsedInXor)
	} else {
		a.setFlags(ref, a.flags(ref)&^flagUsedInXor)
	}
}

func (a *arena) setTTL(ref ClauseRef, on bool) {
	if on {
		a.setFlags(ref, a.flags(ref)|flagTTL)
	} else {
		a.setFlags(ref, a.flags(ref)&^flagTTL)
	}
}

func (a *arena) tier(ref ClauseRef) int {
	return int((a.flags(ref) & tierMask) >> tierShift)
}

func (a *arena) setTier(ref ClauseRef, tier int) {
	a.setFlags(ref, (a.flags(ref)&^tierMask)|(uint32(tier)<<tierShift))
}

func (a *arena) glue(ref ClauseRef) int {
	return int(uint32(a.data[ref+hdrGlue]))
}

func (a *arena) setGlue(ref ClauseRef, glue int) {
	a.data[ref+hdrGlue] = Literal(glue)
}

func (a *arena) activity(ref ClauseRef) float32 {
	return math.Float32frombits(uint32(a.data[ref+hdrAct]))
}

func (a *arena) setActivity(ref ClauseRef, act float32) {
	a.data[ref+hdrAct] = Literal(math.Float32bits(act))
}

func (a *arena) touched(ref ClauseRef) uint32 {
	return uint32(a.data[ref+hdrTouched])
}

func (a *arena) setTouched(ref ClauseRef, epoch uint32) {
	a.data[ref+hdrTouched] = Literal(epoch)
}

func (a *arena) id(ref ClauseRef) int64 {
	return int64(uint32(a.data[ref+hdrID]))
}

// free tombstones the clause. The body is not reclaimed until the next
// consolidation; holders may still dereference the literals in the meantime.
func (a *arena) free(ref ClauseRef) {
	if a.isTombstoned(ref) {
		return
	}
	a.wasted += hdrWords + a.capacity(ref)
	a.setFlags(ref, a.flags(ref)|flagTombstone)
}

// shouldConsolidate reports whether enough of the arena is dead to justify a
// compaction pass.
func (a *arena) shouldConsolidate() bool {
	return a.wasted > len(a.data)/4 && a.wasted > 1<<14
}

// consolidate copies live clauses tightly into a fresh store and returns the
// old-to-new relocation map. Tombstoned refs are absent from the map: any
// holder that still has one must drop it.
func (a *arena) consolidate() map[ClauseRef]ClauseRef {
	remap := make(map[ClauseRef]ClauseRef)
	fresh := make([]Literal, 0, len(a.data)-a.wasted)

	for off := 0; off < len(a.data); {
		ref := ClauseRef(off)
		words := hdrWords + a.capacity(ref)
		if !a.isTombstoned(ref) {
			nref := ClauseRef(len(fresh))
			remap[ref] = nref
			live := hdrWords + a.size(ref)
			fresh = append(fresh, a.data[off:off+live]...)
			fresh[int(nref)+hdrCap] = fresh[int(nref)+hdrSize] // copy is tight
		}
		off += words
	}

	a.data = fresh
	a.wasted = 0
	return remap
}

// forEach applies f to every live clause in the arena.
func (a *arena) forEach(f func(ref ClauseRef)) {
	for off := 0; off < len(a.data); {
		ref := ClauseRef(off)
		words := hdrWords + a.capacity(ref)
		if !a.isTombstoned(ref) {
			f(ref)
		}
		off += words
	}
}
