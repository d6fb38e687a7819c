package sat

// removedKind tracks whether a variable has been taken out of the search.
// Variables are never destroyed, only marked.
type removedKind uint8

const (
	removedNone removedKind = iota
	removedElim             // eliminated by a simplifier
	removedReplaced         // replaced by an equivalent variable
	removedClashed          // temporarily clashed during inprocessing
)

// varData bundles everything the solver tracks per variable.
type varData struct {
	level  int32
	reason reason

	removed removedKind
	isBVA   bool // synthetic variable introduced by bounded variable addition

	// Phases. polarity is the last assigned phase, bestPolarity the phase at
	// the time of the longest trail seen, stablePolarity the snapshot taken
	// at the last outer restart.
	polarity       bool
	bestPolarity   bool
	stablePolarity bool

	// Maple bookkeeping: conflict epochs at which the variable was last
	// picked and cancelled, and the number of conflicts it participated in
	// since it was picked.
	mapleLastPicked uint32
	mapleCancelled  uint32
	mapleConflicted uint32
}
