package sat

import (
	"github.com/rhartert/yagh"
)

// Maple step-size schedule.
const (
	mapleStepSizeDec   = 1e-6
	mapleStepSizeFloor = 0.06
)

// branching maintains the two variable orderings in parallel so a strategy
// rotation can switch without rebuilding from scratch. Both heaps break ties
// on variable index; priorities are negated scores since the heaps pop the
// minimum.
type branching struct {
	active BranchStrategy

	vsidsOrder *yagh.IntMap[float64]
	mapleOrder *yagh.IntMap[float64]

	// EVSIDS state.
	activities []float64 // in [0, 1e100)
	varInc     float64
	varDecay   float64

	// Maple state.
	mapleAct []float64
	stepSize float64
}

func newBranching(strategy BranchStrategy) branching {
	b := branching{
		vsidsOrder: yagh.New[float64](0),
		mapleOrder: yagh.New[float64](0),
		varInc:     1,
	}
	b.setStrategy(strategy)
	return b
}

// setStrategy switches the active ordering and applies the strategy's decay
// parameters. The caller is responsible for rebuilding the heap afterwards;
// the inactive heap's state drifts while it is off duty.
func (b *branching) setStrategy(strategy BranchStrategy) {
	b.active = strategy
	switch strategy {
	case BranchVSIDS1:
		b.varDecay = 0.99
	case BranchVSIDS2:
		b.varDecay = 0.95
	case BranchVSIDSX:
		b.varDecay = 0.80 // aggressive decay, favors very recent conflicts
	case BranchMaple1:
		b.stepSize = 0.4
	case BranchMaple2:
		b.stepSize = 0.7
	}
}

// addVar extends both orderings with a new variable of score zero.
func (b *branching) addVar() {
	v := len(b.activities)
	b.activities = append(b.activities, 0)
	b.mapleAct = append(b.mapleAct, 0)
	b.vsidsOrder.GrowBy(1)
	b.mapleOrder.GrowBy(1)
	b.vsidsOrder.Put(v, 0)
	b.mapleOrder.Put(v, 0)
}

func (b *branching) order() *yagh.IntMap[float64] {
	if b.active.isMaple() {
		return b.mapleOrder
	}
	return b.vsidsOrder
}

func (b *branching) score(v int) float64 {
	if b.active.isMaple() {
		return b.mapleAct[v]
	}
	return b.activities[v]
}

// reinsert adds variable v back to the set of decision candidates. Called
// when v becomes unassigned.
func (b *branching) reinsert(v int) {
	order := b.order()
	order.Put(v, -b.score(v))
}

// rebuild refreshes the active heap after a strategy switch: every candidate
// gets its score under the new ordering. Put both inserts and updates, so
// stale entries are corrected in place.
func (b *branching) rebuild(unassigned []int) {
	order := b.order()
	for _, v := range unassigned {
		order.Put(v, -b.score(v))
	}
}

// bumpVSIDS increases the EVSIDS activity of v, rescaling all activities if
// the score exceeds the threshold.
func (b *branching) bumpVSIDS(v int) {
	b.activities[v] += b.varInc
	if b.vsidsOrder.Contains(v) {
		b.vsidsOrder.Put(v, -b.activities[v])
	}
	if b.activities[v] > 1e100 {
		b.rescaleVSIDS()
	}
}

func (b *branching) rescaleVSIDS() {
	b.varInc *= 1e-100 // important to keep proportions
	for v, a := range b.activities {
		na := a * 1e-100
		b.activities[v] = na
		if b.vsidsOrder.Contains(v) {
			b.vsidsOrder.Put(v, -na)
		}
	}
}

// decayVSIDS decays activities by bumping the increment.
func (b *branching) decayVSIDS() {
	b.varInc /= b.varDecay
	if b.varInc > 1e100 {
		b.rescaleVSIDS()
	}
}

// decayStepSize moves the Maple step size toward its floor, one conflict at
// a time.
func (b *branching) decayStepSize() {
	if b.stepSize > mapleStepSizeFloor {
		b.stepSize -= mapleStepSizeDec
		if b.stepSize < mapleStepSizeFloor {
			b.stepSize = mapleStepSizeFloor
		}
	}
}

// mapleReward folds the conflict rate of v since it was last picked into its
// activity. Called when v becomes unassigned.
func (b *branching) mapleReward(v int, conflicted, age uint32) {
	if age == 0 {
		return
	}
	rate := float64(conflicted) / float64(age)
	b.mapleAct[v] = b.stepSize*rate + (1-b.stepSize)*b.mapleAct[v]
	if b.mapleOrder.Contains(v) {
		b.mapleOrder.Put(v, -b.mapleAct[v])
	}
}

// pickBranchLit pops the best unassigned variable off the active ordering
// and applies the phase policy. Returns LitUndef if every variable is
// assigned.
func (s *Solver) pickBranchLit() Literal {
	order := s.branch.order()
	for {
		next, ok := order.Pop()
		if !ok {
			return LitUndef
		}
		v := next.Elem
		if s.VarValue(v) != Unknown || s.varData[v].removed != removedNone {
			continue // already assigned or out of the search
		}
		if s.branch.active.isMaple() {
			s.varData[v].mapleLastPicked = uint32(s.sumConflicts)
			s.varData[v].mapleConflicted = 0
		}
		s.sumDecisions++
		return MakeLiteral(v, !s.decisionPhase(v))
	}
}

// decisionPhase returns true for the positive phase.
func (s *Solver) decisionPhase(v int) bool {
	vd := &s.varData[v]
	switch s.polarityMode {
	case PolarityPos:
		return true
	case PolarityNeg:
		return false
	case PolarityRandom:
		return s.rand.Intn(2) == 0
	case PolarityBest:
		return vd.bestPolarity
	case PolarityStable:
		return vd.stablePolarity
	default: // PolarityAuto: saved phase, with an optional random flip
		if s.cfg.RandomPolarityFreq > 0 && s.rand.Float64() < s.cfg.RandomPolarityFreq {
			return s.rand.Intn(2) == 0
		}
		return vd.polarity
	}
}

// bumpVarActivity routes an analyze-time bump to the active strategy.
func (s *Solver) bumpVarActivity(v int) {
	if s.branch.active.isMaple() {
		s.varData[v].mapleConflicted++
		return
	}
	s.branch.bumpVSIDS(v)
}
