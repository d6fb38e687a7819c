package sat

// watchKind discriminates the three watch shapes held in watchlists.
type watchKind uint8

const (
	// watchBinary is an inlined binary clause: the watch carries the other
	// literal, the redundancy flag, and the clause ID. Binary clauses have no
	// arena body; the two symmetric watches are the clause.
	watchBinary watchKind = iota

	// watchLong refers to a clause body in the arena. The blocker literal is
	// an example literal from the clause: if it is already true the clause is
	// satisfied and need not be dereferenced.
	watchLong

	// watchIdx is an opaque handle into an auxiliary constraint (an XOR
	// matrix column). The core preserves these verbatim.
	watchIdx
)

type watch struct {
	kind watchKind
	red  bool      // binary only: redundancy flag
	lit  Literal   // binary: the other literal; long: the blocker
	ref  ClauseRef // long: arena offset; idx: auxiliary index
	id   int32     // binary only: clause ID
}

func binaryWatch(other Literal, red bool, id int32) watch {
	return watch{kind: watchBinary, red: red, lit: other, id: id}
}

func longWatch(ref ClauseRef, blocker Literal) watch {
	return watch{kind: watchLong, lit: blocker, ref: ref}
}

func idxWatch(idx uint32) watch {
	return watch{kind: watchIdx, ref: ClauseRef(idx)}
}

// watchlists holds one watch sequence per literal. Lists are compacted
// lazily: eviction marks the affected lists as smudged and a later sweep
// removes the watches of tombstoned clauses in a single pass.
type watchlists struct {
	occs      [][]watch
	smudged   []Literal
	isSmudged []bool
}

// grow extends the lists to accommodate n more literals.
func (wl *watchlists) grow(n int) {
	for i := 0; i < n; i++ {
		wl.occs = append(wl.occs, nil)
		wl.isSmudged = append(wl.isSmudged, false)
	}
}

func (wl *watchlists) attachBin(l, other Literal, red bool, id int32) {
	wl.occs[l] = append(wl.occs[l], binaryWatch(other, red, id))
}

func (wl *watchlists) attachLong(l Literal, ref ClauseRef, blocker Literal) {
	wl.occs[l] = append(wl.occs[l], longWatch(ref, blocker))
}

func (wl *watchlists) attachIdx(l Literal, idx uint32) {
	wl.occs[l] = append(wl.occs[l], idxWatch(idx))
}

// detachLong swap-removes the watch referring to ref from l's list.
func (wl *watchlists) detachLong(l Literal, ref ClauseRef) {
	ws := wl.occs[l]
	for i := range ws {
		if ws[i].kind == watchLong && ws[i].ref == ref {
			ws[i] = ws[len(ws)-1]
			wl.occs[l] = ws[:len(ws)-1]
			return
		}
	}
}

// detachBin swap-removes the binary watch (l, other) from l's list.
func (wl *watchlists) detachBin(l, other Literal) {
	ws := wl.occs[l]
	for i := range ws {
		if ws[i].kind == watchBinary && ws[i].lit == other {
			ws[i] = ws[len(ws)-1]
			wl.occs[l] = ws[:len(ws)-1]
			return
		}
	}
}

// smudge records that l's list holds watches of tombstoned clauses.
func (wl *watchlists) smudge(l Literal) {
	if !wl.isSmudged[l] {
		wl.isSmudged[l] = true
		wl.smudged = append(wl.smudged, l)
	}
}

// sweepSmudged compacts every previously smudged list, dropping the watches
// for which dead returns true.
func (wl *watchlists) sweepSmudged(dead func(w watch) bool) {
	for _, l := range wl.smudged {
		wl.sweepList(l, dead)
		wl.isSmudged[l] = false
	}
	wl.smudged = wl.smudged[:0]
}

// sweepAll compacts every list.
func (wl *watchlists) sweepAll(dead func(w watch) bool) {
	for l := range wl.occs {
		wl.sweepList(Literal(l), dead)
		wl.isSmudged[l] = false
	}
	wl.smudged = wl.smudged[:0]
}

func (wl *watchlists) sweepList(l Literal, dead func(w watch) bool) {
	ws := wl.occs[l]
	j := 0
	for i := 0; i < len(ws); i++ {
		if !dead(ws[i]) {
			ws[j] = ws[i]
			j++
		}
	}
	wl.occs[l] = ws[:j]
}

// relocate applies the arena relocation map to every long watch. Watches of
// clauses absent from the map are dropped.
func (wl *watchlists) relocate(remap map[ClauseRef]ClauseRef) {
	for l := range wl.occs {
		ws := wl.occs[l]
		j := 0
		for i := 0; i < len(ws); i++ {
			if ws[i].kind != watchLong {
				ws[j] = ws[i]
				j++
				continue
			}
			if nref, ok := remap[ws[i].ref]; ok {
				ws[i].ref = nref
				ws[j] = ws[i]
				j++
			}
		}
		wl.occs[l] = ws[:j]
	}
}
