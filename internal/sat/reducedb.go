package sat

import "sort"

// locked reports whether the clause is currently the reason for the trail
// literal at its position 0. Locked clauses must never be evicted.
func (s *Solver) locked(ref ClauseRef) bool {
	lits := s.ca.lits(ref)
	if len(lits) == 0 || s.assigns[lits[0]] != True {
		return false
	}
	r := s.varData[lits[0].VarID()].reason
	return r.kind == reasonClause && r.ref == ref
}

// maybeReduceDB runs the periodic database maintenance due at this conflict
// boundary.
func (s *Solver) maybeReduceDB() {
	if s.sumConflicts >= s.nextLev1Reduce {
		s.reduceLev1()
		s.nextLev1Reduce = s.sumConflicts + int64(s.cfg.EveryLev1Reduce)
	}
	if s.sumConflicts >= s.nextLev2Reduce || len(s.red[2]) > s.curMaxTempLev2 {
		s.reduceLev2()
		s.nextLev2Reduce = s.sumConflicts + int64(s.cfg.EveryLev2Reduce)
		s.curMaxTempLev2 = int(float64(s.curMaxTempLev2) * s.cfg.IncMaxTempLev2Clauses)
	}
	if s.sumConflicts >= s.nextLev3Reduce {
		s.nextLev3Reduce = s.sumConflicts + int64(s.cfg.EveryLev3Reduce)
		if s.ca.shouldConsolidate() {
			s.consolidateArena()
		}
	}
}

// reduceLev1 walks the mid-term tier: clauses whose glue improved enough
// were demoted to tier 0 during analysis and are promoted to the keep list;
// clauses untouched for too long sink to the transient tier.
func (s *Solver) reduceLev1() {
	mustTouch := s.cfg.MustTouchLev1Within
	j := 0
	for _, ref := range s.red[1] {
		if s.ca.isTombstoned(ref) {
			continue
		}
		switch {
		case s.ca.tier(ref) == 0:
			s.red[0] = append(s.red[0], ref)
		case s.ca.size(ref) == 3 &&
			s.ca.touched(ref)+uint32(float64(mustTouch)*s.cfg.TernaryKeepMult) >= uint32(s.sumConflicts):
			// Ternaries get a longer leash before demotion.
			s.red[1][j] = ref
			j++
		case s.ca.touched(ref)+mustTouch < uint32(s.sumConflicts) && !s.locked(ref):
			s.ca.setTier(ref, 2)
			s.red[2] = append(s.red[2], ref)
		default:
			s.red[1][j] = ref
			j++
		}
	}
	s.red[1] = s.red[1][:j]
	metricReducePasses.Inc()
	s.sumReduces++
}

// reduceLev2 sorts the transient tier by glue (activity breaking ties) and
// evicts the tail. Clauses that are locked as a reason, used by an XOR
// matrix, or protected for this turn survive regardless of rank.
func (s *Solver) reduceLev2() {
	// Compact out anything already tombstoned or promoted.
	j := 0
	for _, ref := range s.red[2] {
		if s.ca.isTombstoned(ref) {
			continue
		}
		if s.ca.tier(ref) == 0 {
			s.red[0] = append(s.red[0], ref)
			continue
		}
		s.red[2][j] = ref
		j++
	}
	s.red[2] = s.red[2][:j]

	sort.Slice(s.red[2], func(i, j int) bool {
		a, b := s.red[2][i], s.red[2][j]
		if ga, gb := s.ca.glue(a), s.ca.glue(b); ga != gb {
			return ga < gb
		}
		if aa, ab := s.ca.activity(a), s.ca.activity(b); aa != ab {
			return aa > ab
		}
		return a < b
	})

	keep := int(float64(len(s.red[2])) * s.cfg.RatioKeepClauses[2])
	j = 0
	for i, ref := range s.red[2] {
		protected := i < keep ||
			s.locked(ref) ||
			s.ca.usedInXor(ref) ||
			s.ca.hasTTL(ref)
		if protected {
			s.ca.setTTL(ref, false) // protection lasts one turn
			s.red[2][j] = ref
			j++
			continue
		}
		s.evictClause(ref)
	}
	s.red[2] = s.red[2][:j]
	s.sweepWatches()
	metricReducePasses.Inc()
	s.sumReduces++
}

// evictClause tombstones a redundant clause: its watched literals are
// smudged for the deferred sweep, the deletion is traced, and the body stays
// in the arena until the next consolidation.
func (s *Solver) evictClause(ref ClauseRef) {
	lits := s.ca.lits(ref)
	s.watches.smudge(lits[0])
	s.watches.smudge(lits[1])
	s.litsRed -= int64(len(lits))
	if s.trace != nil {
		s.trace.Del(s.ca.id(ref), lits)
	}
	s.ca.free(ref)
	metricClausesEvicted.Inc()
}

// sweepWatches removes the watches of tombstoned clauses from every smudged
// list.
func (s *Solver) sweepWatches() {
	s.watches.sweepSmudged(func(w watch) bool {
		return w.kind == watchLong && s.ca.isTombstoned(w.ref)
	})
}

// consolidateArena compacts the clause store and rewrites every holder of an
// offset: watchlists, reason links, and the clause lists.
func (s *Solver) consolidateArena() {
	s.sweepWatches()
	remap := s.ca.consolidate()

	s.watches.relocate(remap)

	for _, l := range s.trail {
		vd := &s.varData[l.VarID()]
		if vd.reason.kind == reasonClause {
			if nref, ok := remap[vd.reason.ref]; ok {
				vd.reason.ref = nref
			} else {
				vd.reason = noReason() // evicted top-level reason
			}
		}
	}

	relocateList := func(list []ClauseRef) []ClauseRef {
		j := 0
		for _, ref := range list {
			if nref, ok := remap[ref]; ok {
				list[j] = nref
				j++
			}
		}
		return list[:j]
	}
	s.longIrred = relocateList(s.longIrred)
	for t := range s.red {
		s.red[t] = relocateList(s.red[t])
	}

	metricConsolidations.Inc()
}
