package sat

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Solver is a conflict-driven clause-learning SAT solver with XOR reasoning
// and a stochastic-local-search handoff. A Solver is not safe for concurrent
// use; the only method that may be called from another goroutine is
// Interrupt.
type Solver struct {
	cfg Config
	log *logrus.Logger

	// Latches false once a top-level contradiction is derived.
	ok bool

	// Renumber maps between the caller's (outer) variable space and the
	// internal one.
	outerToInner []int
	innerToOuter []int

	// Value assigned to each literal.
	assigns []LBool

	// Per-variable state.
	varData []varData

	// Trail.
	trail    []Literal
	trailLim []int
	qhead    int

	// Clause storage.
	ca        arena
	watches   watchlists
	longIrred []ClauseRef
	red       [3][]ClauseRef

	numBinsIrred int64
	numBinsRed   int64
	litsIrred    int64
	litsRed      int64

	// Clause activity.
	claInc   float64
	claDecay float64

	// Branching and restarts.
	branch       branching
	restartCtl   restartCtl
	polarityMode PolarityMode
	rand         *rand.Rand

	// XOR matrices.
	gauss []*gaussMatrix

	// SLS bridge.
	walker WalkSolver

	// Hyper-binary probing state.
	hb hyperBinState

	// Proof trace. Nil disables.
	trace    *TraceWriter
	clauseID int64

	// Assumptions and results of the last Solve call.
	assumptions   []Literal
	model         []bool
	finalConflict []Literal

	// Interrupt handling.
	interrupt atomic.Bool
	onTerm    func() bool
	msgLock   func()
	msgUnlock func()
	stopped   bool
	startTime time.Time

	// Search statistics.
	sumConflicts    int64
	sumPropagations int64
	sumBogoprops    int64
	sumDecisions    int64
	sumRestarts     int64
	sumReduces      int64

	// Reduce-DB schedule.
	nextLev1Reduce int64
	nextLev2Reduce int64
	nextLev3Reduce int64
	curMaxTempLev2 int

	// Longest trail seen since the last outer restart, for the best-phase
	// cache.
	bestTrailLen int

	// Trail length at the last top-level simplification.
	lastSimplify int

	// Second literal of a conflicting binary clause, set by propagate.
	failBinLit Literal

	// Shared transient buffers. Concentrated here to avoid allocations in
	// the hot path.
	seen       ResetSet // variable-indexed
	seen2      ResetSet // literal-indexed
	permDiff   ResetSet // level-indexed
	tmpLearnt  []Literal
	tmpReason  []Literal
	tmpReason2 []Literal
	tmpStack   []Literal
	tmpToClear []int
	tmpLits    []Literal
}

// NewSolver returns a solver configured with the given options.
func NewSolver(cfg Config) *Solver {
	s := &Solver{
		cfg:          cfg,
		log:          logrus.StandardLogger(),
		ok:           true,
		claInc:       1,
		claDecay:     0.999,
		branch:       newBranching(cfg.StrategySetup[0]),
		restartCtl:   newRestartCtl(&cfg),
		polarityMode: cfg.PolarityMode,
		rand:         rand.New(rand.NewSource(cfg.Seed)),
	}
	s.nextLev1Reduce = int64(cfg.EveryLev1Reduce)
	s.nextLev2Reduce = int64(cfg.EveryLev2Reduce)
	s.nextLev3Reduce = int64(cfg.EveryLev3Reduce)
	s.curMaxTempLev2 = cfg.MaxTempLev2Clauses
	s.permDiff.Expand() // level 0
	return s
}

// NewDefaultSolver returns a solver configured with default options. This is
// equivalent to calling NewSolver with DefaultConfig().
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultConfig())
}

// SetLogger replaces the diagnostic logger.
func (s *Solver) SetLogger(log *logrus.Logger) { s.log = log }

// SetTrace installs the proof trace sink. Pass nil to disable.
func (s *Solver) SetTrace(t *TraceWriter) { s.trace = t }

// SetTerminateCallback installs a callback polled at conflict boundaries; a
// true return aborts the solve with Unknown.
func (s *Solver) SetTerminateCallback(f func() bool) { s.onTerm = f }

// SetMsgLockCallbacks installs the callbacks guarding multi-line diagnostic
// output.
func (s *Solver) SetMsgLockCallbacks(lock, unlock func()) {
	s.msgLock = lock
	s.msgUnlock = unlock
}

// Interrupt asks the solver to stop at the next conflict boundary. Safe to
// call from another goroutine.
func (s *Solver) Interrupt() { s.interrupt.Store(true) }

// OnTime returns the seconds elapsed since the current solve started.
func (s *Solver) OnTime() float64 { return time.Since(s.startTime).Seconds() }

func (s *Solver) NumVariables() int   { return len(s.varData) }
func (s *Solver) NumAssigns() int     { return len(s.trail) }
func (s *Solver) NumLongIrred() int   { return len(s.longIrred) }
func (s *Solver) NumBinaries() int64  { return s.numBinsIrred + s.numBinsRed }
func (s *Solver) SumConflicts() int64 { return s.sumConflicts }
func (s *Solver) SumRestarts() int64  { return s.sumRestarts }

func (s *Solver) NumLearnts() int {
	return len(s.red[0]) + len(s.red[1]) + len(s.red[2])
}

func (s *Solver) VarValue(v int) LBool {
	return s.assigns[PositiveLiteral(v)]
}

func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// Model returns the satisfying assignment found by the last Solve call, one
// value per outer variable.
func (s *Solver) Model() []bool { return s.model }

// FinalConflict returns the unsatisfiable core of the last Solve call under
// assumptions: a subset of the negated assumption literals.
func (s *Solver) FinalConflict() []Literal { return s.finalConflict }

func (s *Solver) nextClauseID() int64 {
	s.clauseID++ // IDs start at 1; zero is reserved
	return s.clauseID
}

// AddVariable introduces a new problem variable and returns its index.
func (s *Solver) AddVariable() int {
	return s.NewVarExt(false, -1)
}

// NewVars bulk-introduces n variables.
func (s *Solver) NewVars(n int) {
	for i := 0; i < n; i++ {
		s.AddVariable()
	}
}

// NewVarExt introduces a variable with full control: isBVA marks synthetic
// variables, and a non-negative outerID re-inserts the variable at that
// outer index in the renumber maps.
func (s *Solver) NewVarExt(isBVA bool, outerID int) int {
	inner := len(s.varData)

	s.watches.grow(2)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.varData = append(s.varData, varData{level: -1, reason: noReason(), isBVA: isBVA})
	s.seen.Expand()
	s.seen2.Expand()
	s.seen2.Expand()
	s.permDiff.Expand()
	s.branch.addVar()

	if outerID < 0 {
		outerID = len(s.outerToInner)
	}
	for len(s.outerToInner) <= outerID {
		s.outerToInner = append(s.outerToInner, -1) // hole until re-inserted
	}
	s.outerToInner[outerID] = inner
	s.innerToOuter = append(s.innerToOuter, outerID)
	return inner
}

// importLiteral maps an outer literal to the inner space. Returns LitUndef
// for out-of-range variables.
func (s *Solver) importLiteral(l Literal) Literal {
	ov := l.VarID()
	if l < 0 || ov >= len(s.outerToInner) {
		return LitUndef
	}
	inner := s.outerToInner[ov]
	if inner < 0 || inner >= len(s.varData) {
		return LitUndef // outer index never backed by a variable
	}
	return MakeLiteral(inner, !l.IsPositive())
}

// AddClause adds an irredundant clause over outer literals.
func (s *Solver) AddClause(lits []Literal) bool {
	return s.AddClauseOuter(lits, false)
}

// AddClauseOuter translates the clause to the inner space, simplifies it
// against the level-0 assignment, and routes it to the appropriate store.
// It returns false if the clause is invalid or the formula became
// unsatisfiable; in the former case the solver remains usable.
func (s *Solver) AddClauseOuter(lits []Literal, redundant bool) bool {
	if !s.ok {
		return false
	}
	s.cancelUntil(0)

	s.tmpLits = s.tmpLits[:0]
	for _, l := range lits {
		il := s.importLiteral(l)
		if il == LitUndef {
			return false // invalid literal; solver still usable
		}
		s.tmpLits = append(s.tmpLits, il)
	}
	return s.addClauseInt(s.tmpLits, redundant)
}

// addClauseInt ingests a clause already in the inner space. The slice may be
// reordered.
func (s *Solver) addClauseInt(lits []Literal, redundant bool) bool {
	// Simplify: drop duplicate and false literals, detect tautologies and
	// satisfied clauses.
	s.seen2.Clear()
	j := 0
	for _, l := range lits {
		switch {
		case s.assigns[l] == True && s.varData[l.VarID()].level == 0:
			return true // already satisfied at the top level
		case s.assigns[l] == False && s.varData[l.VarID()].level == 0:
			continue // false at the top level
		case s.seen2.Contains(int(l.Opposite())):
			return true // tautology
		case s.seen2.Contains(int(l)):
			continue // duplicate
		}
		s.seen2.Add(int(l))
		lits[j] = l
		j++
	}
	lits = lits[:j]

	switch len(lits) {
	case 0:
		s.ok = false
		return false
	case 1:
		if s.trace != nil {
			s.trace.Add(s.nextClauseID(), lits)
		}
		s.enqueue(lits[0], noReason())
		if confl := s.propagate(); !confl.isNone() {
			s.ok = false
			return false
		}
		return true
	case 2:
		s.attachBinary(lits[0], lits[1], redundant)
		return true
	default:
		glue := len(lits)
		if glue > s.cfg.MaxGlue {
			glue = s.cfg.MaxGlue
		}
		ref := s.ca.alloc(lits, redundant, glue, s.nextClauseID())
		s.attachLongClause(ref)
		if redundant {
			tier := s.tierForGlue(glue)
			s.ca.setTier(ref, tier)
			s.ca.setTouched(ref, uint32(s.sumConflicts))
			s.red[tier] = append(s.red[tier], ref)
			s.litsRed += int64(len(lits))
		} else {
			s.longIrred = append(s.longIrred, ref)
			s.litsIrred += int64(len(lits))
		}
		return true
	}
}

func (s *Solver) tierForGlue(glue int) int {
	switch {
	case glue <= s.cfg.GluePutLev0IfBelowOrEq:
		return 0
	case glue <= s.cfg.GluePutLev1IfBelowOrEq:
		return 1
	default:
		return 2
	}
}

// attachBinary creates the two symmetric watches of a binary clause and
// returns its ID. Binary clauses live only in the watchlists.
func (s *Solver) attachBinary(a, b Literal, redundant bool) int32 {
	id := int32(s.nextClauseID())
	s.watches.attachBin(a, b, redundant, id)
	s.watches.attachBin(b, a, redundant, id)
	if redundant {
		s.numBinsRed++
	} else {
		s.numBinsIrred++
	}
	return id
}

// attachLongClause watches the first two literals of the clause body.
func (s *Solver) attachLongClause(ref ClauseRef) {
	lits := s.ca.lits(ref)
	s.watches.attachLong(lits[0], ref, lits[1])
	s.watches.attachLong(lits[1], ref, lits[0])
}

// forEachBinary visits every binary clause exactly once.
func (s *Solver) forEachBinary(f func(a, b Literal, red bool, id int32)) {
	for l := range s.watches.occs {
		a := Literal(l)
		for _, w := range s.watches.occs[a] {
			if w.kind == watchBinary && a < w.lit {
				f(a, w.lit, w.red, w.id)
			}
		}
	}
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

func (s *Solver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

// assume opens a new decision level and enqueues l.
func (s *Solver) assume(l Literal) bool {
	s.newDecisionLevel()
	return s.enqueue(l, noReason())
}

// enqueue assigns l to true with the given reason and appends it to the
// trail. Returns false if l is already false.
func (s *Solver) enqueue(l Literal, from reason) bool {
	switch s.assigns[l] {
	case False:
		return false // conflicting assignment
	case True:
		return true // already assigned
	}
	v := l.VarID()
	s.assigns[l] = True
	s.assigns[l.Opposite()] = False
	vd := &s.varData[v]
	vd.level = int32(s.decisionLevel())
	vd.reason = from
	s.trail = append(s.trail, l)
	return true
}

// cancelUntil unwinds the trail to the given decision level, updating the
// saved phases, the best-phase cache, and the branching bookkeeping of every
// unassigned variable.
func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}

	if len(s.trail) > s.bestTrailLen {
		s.bestTrailLen = len(s.trail)
		for _, l := range s.trail {
			s.varData[l.VarID()].bestPolarity = l.IsPositive()
		}
	}

	lim := s.trailLim[level]
	maple := s.branch.active.isMaple()
	for c := len(s.trail) - 1; c >= lim; c-- {
		l := s.trail[c]
		v := l.VarID()
		vd := &s.varData[v]

		vd.polarity = l.IsPositive()
		if maple {
			s.branch.mapleReward(v, vd.mapleConflicted, uint32(s.sumConflicts)-vd.mapleLastPicked)
			vd.mapleCancelled = uint32(s.sumConflicts)
			vd.mapleConflicted = 0
		}

		s.assigns[l] = Unknown
		s.assigns[l.Opposite()] = Unknown
		vd.reason = noReason()
		vd.level = -1
		s.branch.reinsert(v)
	}
	s.trail = s.trail[:lim]
	s.trailLim = s.trailLim[:level]
	s.qhead = lim
}

// bumpClauseActivity increases the activity of a redundant clause,
// rescaling the whole database when the scores grow too large.
func (s *Solver) bumpClauseActivity(ref ClauseRef) {
	act := s.ca.activity(ref) + float32(s.claInc)
	s.ca.setActivity(ref, act)
	if act > 1e20 {
		for t := range s.red {
			for _, r := range s.red[t] {
				if !s.ca.isTombstoned(r) {
					s.ca.setActivity(r, s.ca.activity(r)*1e-20)
				}
			}
		}
		s.claInc *= 1e-20
	}
}

func (s *Solver) decayClauseActivity() {
	s.claInc /= s.claDecay
}

// Solve decides the formula under the given assumption literals (outer
// space). It returns True with a model, False with a final conflict core
// (when assumptions are involved), or Unknown on interrupt or an exhausted
// budget.
func (s *Solver) Solve(assumptions []Literal) LBool {
	s.startTime = time.Now()
	s.stopped = false
	s.model = nil
	s.finalConflict = s.finalConflict[:0]
	propsBefore := s.sumPropagations
	defer func() {
		metricPropagations.Add(float64(s.sumPropagations - propsBefore))
	}()
	if !s.ok {
		return False
	}

	s.assumptions = s.assumptions[:0]
	for _, a := range assumptions {
		ia := s.importLiteral(a)
		if ia == LitUndef {
			s.log.Errorf("invalid assumption literal %v", a)
			return Unknown
		}
		s.assumptions = append(s.assumptions, ia)
	}

	s.cancelUntil(0)
	if !s.gaussEliminate() {
		s.ok = false
		return False
	}
	if confl := s.propagate(); !confl.isNone() {
		s.ok = false
		return False
	}

	if s.cfg.Verbosity > 0 {
		s.printSearchHeader()
	}

	status := Unknown
	for status == Unknown && !s.stopped {
		status = s.search()
		if s.stopped {
			break
		}
		if status == Unknown && s.restartCtl.shouldOuterRestart(s.sumConflicts) {
			s.outerRestart()
		}
	}

	if s.cfg.Verbosity > 0 {
		s.printSearchStats()
	}

	// Exit prelude: unwind and make sure every top-level unit is fully
	// propagated before handing control back.
	s.cancelUntil(0)
	if s.ok {
		if confl := s.propagate(); !confl.isNone() {
			s.ok = false
			status = False
		}
	}
	if s.trace != nil {
		s.trace.Flush()
	}
	return status
}

// search runs one inner restart epoch. It returns True when a model was
// found, False on unsatisfiability, and Unknown when the epoch budget
// expired or a stop was requested.
func (s *Solver) search() LBool {
	s.sumRestarts++
	metricRestarts.Inc()

	for {
		confl := s.propagate()
		if !confl.isNone() {
			s.sumConflicts++
			metricConflicts.Inc()

			if !s.handleConflict(confl) {
				return False
			}
			if s.checkStop() {
				return Unknown
			}
			s.decayClauseActivity()
			if s.branch.active.isMaple() {
				s.branch.decayStepSize()
			} else {
				s.branch.decayVSIDS()
			}
			continue
		}

		// No conflict.
		if s.restartCtl.shouldRestart(&s.cfg) {
			s.cancelUntil(0)
			s.restartCtl.nextPhase(&s.cfg)
			return Unknown
		}
		if s.decisionLevel() == 0 {
			if !s.simplifyAtLevelZero() {
				return False
			}
		}
		s.maybeReduceDB()

		next := LitUndef
		for next == LitUndef && s.decisionLevel() < len(s.assumptions) {
			a := s.assumptions[s.decisionLevel()]
			switch s.assigns[a] {
			case True:
				s.newDecisionLevel() // dummy level, nothing to push
			case False:
				s.analyzeFinal(a.Opposite())
				return False
			default:
				next = a
			}
		}

		if next == LitUndef {
			next = s.pickBranchLit()
			if next == LitUndef {
				s.saveModel() // every variable assigned
				s.cancelUntil(0)
				return True
			}
		}
		s.assume(next)
	}
}

// handleConflict learns from the conflict and backjumps. Returns false when
// the conflict proves unsatisfiability.
func (s *Solver) handleConflict(confl reason) bool {
	conflLevel := s.conflictLevel(confl)
	if conflLevel == 0 {
		s.ok = false
		return false
	}
	if conflLevel < s.decisionLevel() {
		// A chronological backjump left levels above the conflict; drop them
		// before analyzing.
		s.cancelUntil(conflLevel)
	}

	learnt, btLevel, glue := s.analyze(confl)
	s.restartCtl.onConflict(glue, len(s.trail))
	s.restartCtl.blockRestart(&s.cfg, len(s.trail))
	metricLearntGlue.Observe(float64(glue))

	target := btLevel
	switch {
	case len(learnt) == 1:
		target = 0 // unit clauses assert at the top level
	case s.cfg.DiffDeclevForChrono >= 0 &&
		s.decisionLevel()-btLevel >= s.cfg.DiffDeclevForChrono:
		target = s.decisionLevel() - 1 // chronological backtrack
	}
	s.cancelUntil(target)
	s.recordLearnt(learnt, glue)
	return true
}

// recordLearnt attaches the learnt clause, traces it, and enqueues its
// asserting literal.
func (s *Solver) recordLearnt(lits []Literal, glue int) {
	switch len(lits) {
	case 1:
		if s.trace != nil {
			s.trace.Add(s.nextClauseID(), lits)
		}
		s.enqueue(lits[0], noReason())
	case 2:
		id := s.attachBinary(lits[0], lits[1], true)
		if s.trace != nil {
			s.trace.Add(int64(id), lits)
		}
		s.enqueue(lits[0], binaryReason(lits[1], true, id))
	default:
		ref := s.ca.alloc(lits, true, glue, s.nextClauseID())
		if s.trace != nil {
			s.trace.Add(s.ca.id(ref), lits)
		}
		tier := s.tierForGlue(glue)
		s.ca.setTier(ref, tier)
		s.ca.setTouched(ref, uint32(s.sumConflicts))
		s.attachLongClause(ref)
		s.bumpClauseActivity(ref)
		s.red[tier] = append(s.red[tier], ref)
		s.litsRed += int64(len(lits))
		s.enqueue(lits[0], clauseReason(ref))
	}
}

// checkStop polls the budgets and, every TermintEveryN conflicts, the
// interrupt flag and termination callback.
func (s *Solver) checkStop() bool {
	if s.stopped {
		return true
	}
	if s.cfg.MaxConflicts >= 0 && s.sumConflicts >= s.cfg.MaxConflicts {
		s.stopped = true
	}
	if s.cfg.MaxBogoprops >= 0 && s.sumBogoprops >= s.cfg.MaxBogoprops {
		s.stopped = true
	}
	if s.cfg.TermintEveryN > 0 && s.sumConflicts%s.cfg.TermintEveryN == 0 {
		if s.interrupt.Load() {
			s.stopped = true
		}
		if s.onTerm != nil && s.onTerm() {
			s.stopped = true
		}
		if s.cfg.MaxTime >= 0 && time.Since(s.startTime) >= s.cfg.MaxTime {
			s.stopped = true
		}
		if s.cfg.Verbosity > 0 && s.sumConflicts%(s.cfg.TermintEveryN*10) == 0 {
			s.printSearchStats()
		}
	}
	return s.stopped
}

// outerRestart reseeds the RNG, snapshots the stable phases, rotates the
// search strategy, and optionally hands the formula to the SLS engine.
func (s *Solver) outerRestart() {
	s.cancelUntil(0)
	s.restartCtl.nextOuter(&s.cfg, s.sumConflicts)
	s.rand = rand.New(rand.NewSource(s.cfg.Seed + s.restartCtl.outerCount))

	for v := range s.varData {
		s.varData[v].stablePolarity = s.varData[v].polarity
	}
	s.bestTrailLen = 0

	s.rotateStrategy()
	s.runWalkSolver(int64(s.cfg.RestartBase) * 1000)
	metricOuterRestarts.Inc()
}

// rotateStrategy advances the (branching × polarity) rotation.
func (s *Solver) rotateStrategy() {
	n := s.restartCtl.outerCount
	s.branch.setStrategy(s.cfg.StrategySetup[int(n)%len(s.cfg.StrategySetup)])

	unassigned := make([]int, 0, s.NumVariables())
	for v := 0; v < s.NumVariables(); v++ {
		if s.VarValue(v) == Unknown && s.varData[v].removed == removedNone {
			unassigned = append(unassigned, v)
		}
	}
	s.branch.rebuild(unassigned)

	switch {
	case s.cfg.PolarBestMultipN > 0 && n%int64(s.cfg.PolarBestMultipN) == 0:
		s.polarityMode = PolarityBest
	case s.cfg.PolarStableEveryN > 0 && n%int64(s.cfg.PolarStableEveryN) == 0:
		s.polarityMode = PolarityStable
	default:
		s.polarityMode = s.cfg.PolarityMode
	}
}

// saveModel captures the current complete assignment. Unassigned (removed)
// variables take their saved phase.
func (s *Solver) saveModel() {
	s.model = make([]bool, len(s.outerToInner))
	for outer, inner := range s.outerToInner {
		if inner < 0 || inner >= len(s.varData) {
			continue // outer index never backed by a variable
		}
		switch s.VarValue(inner) {
		case True:
			s.model[outer] = true
		case False:
			s.model[outer] = false
		default:
			s.model[outer] = s.varData[inner].polarity
		}
	}
}

// simplifyAtLevelZero removes satisfied clauses and false literals using the
// top-level assignment. Returns false on contradiction.
func (s *Solver) simplifyAtLevelZero() bool {
	if s.lastSimplify == len(s.trail) || s.qhead < len(s.trail) {
		return s.ok
	}
	s.lastSimplify = len(s.trail)

	s.simplifyList(&s.longIrred, false)
	for t := range s.red {
		s.simplifyList(&s.red[t], true)
	}
	s.simplifyBinaries()
	s.sweepWatches()
	return s.ok
}

func (s *Solver) simplifyList(list *[]ClauseRef, redundant bool) {
	refs := *list
	j := 0
	for _, ref := range refs {
		if s.ca.isTombstoned(ref) {
			continue
		}
		if s.simplifyClause(ref, redundant) {
			continue // clause removed
		}
		refs[j] = ref
		j++
	}
	*list = refs[:j]
}

// simplifyClause cleans one clause against the level-0 assignment. Returns
// true if the clause was removed from the long store.
func (s *Solver) simplifyClause(ref ClauseRef, redundant bool) bool {
	lits := s.ca.lits(ref)

	satisfied := false
	hasFalse := false
	for _, l := range lits {
		switch s.assigns[l] {
		case True:
			satisfied = true
		case False:
			hasFalse = true
		}
	}

	count := func(n int64) {
		if redundant {
			s.litsRed += n
		} else {
			s.litsIrred += n
		}
	}

	if satisfied {
		s.watches.detachLong(lits[0], ref)
		s.watches.detachLong(lits[1], ref)
		count(-int64(len(lits)))
		if s.trace != nil {
			s.trace.Del(s.ca.id(ref), lits)
		}
		s.ca.free(ref)
		return true
	}
	if !hasFalse {
		return false
	}

	// Rebuild the clause without its false literals. The watches must come
	// off first: shrinking reorders the body.
	s.watches.detachLong(lits[0], ref)
	s.watches.detachLong(lits[1], ref)
	before := len(lits)
	for i := len(lits) - 1; i >= 0; i-- {
		if s.assigns[lits[i]] == False {
			s.ca.shrink(ref, i)
		}
	}
	lits = s.ca.lits(ref)
	count(int64(len(lits) - before))

	switch len(lits) {
	case 0:
		s.ok = false
		s.ca.free(ref)
		return true
	case 1:
		if s.trace != nil {
			s.trace.Add(s.nextClauseID(), lits)
			s.trace.Del(s.ca.id(ref), lits)
		}
		s.enqueue(lits[0], noReason())
		count(-1)
		s.ca.free(ref)
		return true
	case 2:
		id := s.attachBinary(lits[0], lits[1], redundant)
		if s.trace != nil {
			s.trace.Add(int64(id), lits)
			s.trace.Del(s.ca.id(ref), lits)
		}
		count(-2)
		s.ca.free(ref)
		return true
	default:
		s.attachLongClause(ref)
		return false
	}
}

// simplifyBinaries drops binary clauses satisfied at the top level. A false
// literal in a binary implies the other was enqueued at level 0, so the
// clause is satisfied as well.
func (s *Solver) simplifyBinaries() {
	for l := range s.watches.occs {
		a := Literal(l)
		ws := s.watches.occs[a]
		j := 0
		for _, w := range ws {
			if w.kind == watchBinary {
				if s.assigns[a] == True || s.assigns[w.lit] == True {
					if a < w.lit { // count and trace each clause once
						if w.red {
							s.numBinsRed--
						} else {
							s.numBinsIrred--
						}
						if s.trace != nil {
							s.trace.Del(int64(w.id), []Literal{a, w.lit})
						}
					}
					continue
				}
			}
			ws[j] = w
			j++
		}
		s.watches.occs[a] = ws[:j]
	}
}

// ProbeLiteral assumes l at a fresh decision level and runs the
// hyper-binary-resolution variant of BCP, recording resolvents for the
// binary clause store. Intended for the failed-literal driver; must be
// called at decision level 0. A failed probe enqueues ¬l at the top level.
// Returns false if the formula was found unsatisfiable.
func (s *Solver) ProbeLiteral(l Literal) bool {
	if !s.ok || s.decisionLevel() != 0 || !s.cfg.DoHyperBinRes {
		return s.ok
	}
	il := s.importLiteral(l)
	if il == LitUndef || s.assigns[il] != Unknown {
		return true
	}

	s.assume(il)
	confl := s.propagateHyperBin()
	s.cancelUntil(0)

	s.flushPendingBins()
	if !confl.isNone() {
		// Failed literal: the probe derived ¬l at the top level.
		if s.trace != nil {
			s.trace.Add(s.nextClauseID(), []Literal{il.Opposite()})
		}
		s.enqueue(il.Opposite(), noReason())
		if c := s.propagate(); !c.isNone() {
			s.ok = false
			return false
		}
	}
	return true
}

func (s *Solver) printSearchHeader() {
	if s.msgLock != nil {
		s.msgLock()
		defer s.msgUnlock()
	}
	s.log.Info("c            time      conflicts       restarts       learnts        arena")
}

func (s *Solver) printSearchStats() {
	if s.msgLock != nil {
		s.msgLock()
		defer s.msgUnlock()
	}
	s.log.Infof("c %14.3fs %14d %14d %14d %12dw",
		s.OnTime(), s.sumConflicts, s.sumRestarts, s.NumLearnts(), len(s.ca.data))
}
