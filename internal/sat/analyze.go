package sat

// reasonLits appends the antecedent literals of reason r to out. For the
// initial conflict (p == LitUndef) every literal of the offending clause is
// returned; for a propagation reason the propagated literal p is omitted.
// Reason clauses keep their propagated literal at position 0.
func (s *Solver) reasonLits(r reason, p Literal, out []Literal) []Literal {
	switch r.kind {
	case reasonClause:
		cl := s.ca.lits(r.ref)
		if p == LitUndef {
			out = append(out, cl...)
		} else {
			out = append(out, cl[1:]...)
		}
	case reasonBinary:
		if p == LitUndef {
			out = append(out, s.failBinLit, r.lit)
		} else {
			out = append(out, r.lit)
		}
	case reasonXor:
		out = s.gaussReasonLits(r, p, out)
	}
	return out
}

// conflictLevel returns the highest decision level among the literals of the
// offending clause.
func (s *Solver) conflictLevel(confl reason) int {
	s.tmpReason = s.reasonLits(confl, LitUndef, s.tmpReason[:0])
	maxLevel := int32(0)
	for _, l := range s.tmpReason {
		if lvl := s.varData[l.VarID()].level; lvl > maxLevel {
			maxLevel = lvl
		}
	}
	return int(maxLevel)
}

func abstractLevel(lvl int32) uint32 {
	return 1 << (uint32(lvl) & 31)
}

// analyze performs first-UIP conflict analysis. It must be called with the
// decision level equal to the conflict level. It returns the learnt clause
// (asserting literal at position 0, backjump-level literal at position 1),
// the backjump level and the glue. The returned slice is a shared buffer,
// valid until the next analyze call.
func (s *Solver) analyze(confl reason) ([]Literal, int, int) {
	s.tmpLearnt = s.tmpLearnt[:0]
	s.tmpLearnt = append(s.tmpLearnt, LitUndef) // slot for the asserting literal
	s.seen.Clear()
	s.tmpToClear = s.tmpToClear[:0]

	pathC := 0
	p := LitUndef
	idx := len(s.trail) - 1

	for {
		s.touchReasonClause(confl)
		s.tmpReason = s.reasonLits(confl, p, s.tmpReason[:0])
		for _, q := range s.tmpReason {
			v := q.VarID()
			if s.seen.Contains(v) || s.varData[v].level == 0 {
				continue
			}
			s.seen.Add(v)
			s.bumpVarActivity(v)
			if int(s.varData[v].level) >= s.decisionLevel() {
				pathC++
			} else {
				s.tmpLearnt = append(s.tmpLearnt, q)
			}
		}

		// Step back on the trail to the next marked literal.
		for !s.seen.Contains(s.trail[idx].VarID()) {
			idx--
		}
		p = s.trail[idx]
		idx--
		confl = s.varData[p.VarID()].reason
		s.seen.Remove(p.VarID())
		pathC--
		if pathC <= 0 {
			break
		}
	}
	s.tmpLearnt[0] = p.Opposite() // the first UIP

	s.minimizeLearnt()

	glue := s.computeGlue(s.tmpLearnt)

	// Place the literal of the second-highest level at position 1; it
	// becomes the second watch and its level the backjump level.
	btLevel := 0
	if len(s.tmpLearnt) > 1 {
		maxI := 1
		for i := 2; i < len(s.tmpLearnt); i++ {
			if s.varData[s.tmpLearnt[i].VarID()].level > s.varData[s.tmpLearnt[maxI].VarID()].level {
				maxI = i
			}
		}
		s.tmpLearnt[1], s.tmpLearnt[maxI] = s.tmpLearnt[maxI], s.tmpLearnt[1]
		btLevel = int(s.varData[s.tmpLearnt[1].VarID()].level)
	}

	return s.tmpLearnt, btLevel, glue
}

// touchReasonClause bumps the activity, touch epoch and (optionally) the
// glue of a redundant clause pulled into conflict analysis.
func (s *Solver) touchReasonClause(r reason) {
	if r.kind != reasonClause || !s.ca.isRedundant(r.ref) {
		return
	}
	ref := r.ref
	s.bumpClauseActivity(ref)
	s.ca.setTouched(ref, uint32(s.sumConflicts))
	if !s.cfg.UpdateGluesOnAnalyze {
		return
	}
	newGlue := s.computeGlue(s.ca.lits(ref))
	if newGlue >= s.ca.glue(ref) {
		return
	}
	s.ca.setGlue(ref, newGlue)
	if newGlue <= s.cfg.GluePutLev0IfBelowOrEq && s.ca.tier(ref) != 0 {
		s.ca.setTier(ref, 0)
	}
	if newGlue <= s.cfg.ProtectIfImprovedGlueBelow {
		s.ca.setTTL(ref, true) // spare it for one clean-up turn
	}
}

// minimizeLearnt shrinks tmpLearnt in place. The first pass removes literals
// whose reasons are covered by the clause itself (recursive, pruned by a
// level-abstraction bitmap); the second removes literals binary-implied by
// the asserting literal.
func (s *Solver) minimizeLearnt() {
	if s.cfg.DoRecursiveMinim && len(s.tmpLearnt) > 1 {
		abstract := uint32(0)
		for _, l := range s.tmpLearnt[1:] {
			abstract |= abstractLevel(s.varData[l.VarID()].level)
		}
		j := 1
		for i := 1; i < len(s.tmpLearnt); i++ {
			l := s.tmpLearnt[i]
			if s.varData[l.VarID()].reason.isNone() || !s.litRedundant(l, abstract) {
				s.tmpLearnt[j] = l
				j++
			}
		}
		s.tmpLearnt = s.tmpLearnt[:j]
	}

	if s.cfg.DoMinimRedMore &&
		len(s.tmpLearnt) > 1 &&
		len(s.tmpLearnt) <= s.cfg.MaxSizeMoreMinim &&
		s.computeGlue(s.tmpLearnt) <= s.cfg.MaxGlueMoreMinim {
		s.minimizeWithBinaries()
	}
}

// litRedundant checks whether every literal in l's reason graph is already
// covered by the learnt clause (or itself reducible). Marks added during a
// failed walk are rolled back.
func (s *Solver) litRedundant(l Literal, abstract uint32) bool {
	s.tmpStack = s.tmpStack[:0]
	s.tmpStack = append(s.tmpStack, l)
	top := len(s.tmpToClear)

	for len(s.tmpStack) > 0 {
		q := s.tmpStack[len(s.tmpStack)-1]
		s.tmpStack = s.tmpStack[:len(s.tmpStack)-1]
		r := s.varData[q.VarID()].reason

		s.tmpReason2 = s.reasonLits(r, q, s.tmpReason2[:0])
		for _, qq := range s.tmpReason2 {
			v := qq.VarID()
			if s.varData[v].level == 0 || s.seen.Contains(v) {
				continue
			}
			if s.varData[v].reason.isNone() || abstractLevel(s.varData[v].level)&abstract == 0 {
				// Not reducible: roll back the marks added by this walk.
				for _, u := range s.tmpToClear[top:] {
					s.seen.Remove(u)
				}
				s.tmpToClear = s.tmpToClear[:top]
				return false
			}
			s.seen.Add(v)
			s.tmpToClear = append(s.tmpToClear, v)
			s.tmpStack = append(s.tmpStack, qq)
		}
	}
	return true
}

// minimizeWithBinaries drops every learnt literal r such that the binary
// clause (asserting ∨ ¬r) exists: resolving the two clauses on r removes it.
func (s *Solver) minimizeWithBinaries() {
	asserting := s.tmpLearnt[0]
	s.seen2.Clear()
	for _, l := range s.tmpLearnt[1:] {
		s.seen2.Add(int(l))
	}

	removed := 0
	for _, w := range s.watches.occs[asserting] {
		if w.kind != watchBinary {
			continue
		}
		negOther := w.lit.Opposite()
		if s.seen2.Contains(int(negOther)) {
			s.seen2.Remove(int(negOther))
			removed++
		}
	}
	if removed == 0 {
		return
	}
	j := 1
	for i := 1; i < len(s.tmpLearnt); i++ {
		if s.seen2.Contains(int(s.tmpLearnt[i])) {
			s.tmpLearnt[j] = s.tmpLearnt[i]
			j++
		}
	}
	s.tmpLearnt = s.tmpLearnt[:j]
}

// computeGlue counts the distinct decision levels among lits, capped at the
// configured maximum.
func (s *Solver) computeGlue(lits []Literal) int {
	s.permDiff.Clear()
	glue := 0
	for _, l := range lits {
		lvl := int(s.varData[l.VarID()].level)
		if !s.permDiff.Contains(lvl) {
			s.permDiff.Add(lvl)
			glue++
			if glue >= s.cfg.MaxGlue {
				return s.cfg.MaxGlue
			}
		}
	}
	return glue
}

// analyzeFinal runs conflict analysis in assumptions mode: trueLit is the
// negation of a failed assumption, currently true on the trail. The walk
// collects every assumption involved in forcing it; their negations form the
// final conflict core.
func (s *Solver) analyzeFinal(trueLit Literal) {
	s.finalConflict = s.finalConflict[:0]
	s.finalConflict = append(s.finalConflict, trueLit)
	if s.decisionLevel() == 0 {
		return
	}

	s.seen.Clear()
	s.seen.Add(trueLit.VarID())

	for i := len(s.trail) - 1; i >= s.trailLim[0]; i-- {
		l := s.trail[i]
		v := l.VarID()
		if !s.seen.Contains(v) {
			continue
		}
		r := s.varData[v].reason
		if r.isNone() {
			if s.varData[v].level > 0 && l.Opposite() != trueLit {
				s.finalConflict = append(s.finalConflict, l.Opposite())
			}
		} else {
			s.tmpReason = s.reasonLits(r, l, s.tmpReason[:0])
			for _, q := range s.tmpReason {
				if s.varData[q.VarID()].level > 0 {
					s.seen.Add(q.VarID())
				}
			}
		}
		s.seen.Remove(v)
	}
}
