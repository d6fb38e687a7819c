package sat

// WalkSnapshot is the value handed to a stochastic local search engine. It
// is an ownership transfer: the snapshot shares nothing with the solver, so
// the walk may run with the clause set and polarities it was given while the
// solver state stays untouched.
type WalkSnapshot struct {
	NumVars    int
	Clauses    [][]Literal
	Polarities []bool // starting phase per variable
}

// WalkResult carries the outcome of an SLS run back to the CDCL loop.
type WalkResult struct {
	// Finished is true if the walk ran to completion within its budget.
	Finished bool
	// Sat is true if the walk found a satisfying assignment; Polarities then
	// holds it. Otherwise Polarities holds the best assignment seen, to be
	// adopted as decision phases.
	Sat        bool
	Polarities []bool
}

// WalkSolver is the handoff contract for the external SLS engines. The core
// invokes it between outer restarts; implementations must not retain the
// snapshot past the call.
type WalkSolver interface {
	Walk(snapshot *WalkSnapshot, budgetFlips int64) WalkResult
}

// SetWalkSolver installs an SLS engine. Pass nil to disable.
func (s *Solver) SetWalkSolver(w WalkSolver) {
	s.walker = w
}

// runWalkSolver snapshots the formula at decision level 0, hands it to the
// SLS engine, and folds the returned polarities back into the saved phases.
func (s *Solver) runWalkSolver(budgetFlips int64) {
	if s.walker == nil || s.decisionLevel() != 0 {
		return
	}

	snap := &WalkSnapshot{
		NumVars:    s.NumVariables(),
		Polarities: make([]bool, s.NumVariables()),
	}
	for v := range snap.Polarities {
		snap.Polarities[v] = s.varData[v].polarity
	}
	for _, ref := range s.longIrred {
		if s.ca.isTombstoned(ref) {
			continue
		}
		lits := make([]Literal, len(s.ca.lits(ref)))
		copy(lits, s.ca.lits(ref))
		snap.Clauses = append(snap.Clauses, lits)
	}
	s.forEachBinary(func(a, b Literal, red bool, id int32) {
		if !red {
			snap.Clauses = append(snap.Clauses, []Literal{a, b})
		}
	})
	for i := 0; i < len(s.trail) && (len(s.trailLim) == 0 || i < s.trailLim[0]); i++ {
		snap.Clauses = append(snap.Clauses, []Literal{s.trail[i]})
	}

	res := s.walker.Walk(snap, budgetFlips)
	if len(res.Polarities) != snap.NumVars {
		return
	}
	for v, pol := range res.Polarities {
		s.varData[v].polarity = pol
	}
}
