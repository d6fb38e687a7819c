package sat

// propagate runs BCP from qhead to the end of the trail. It returns the
// conflicting reason, or a none reason once the fixed point is reached. For
// binary conflicts the second literal of the clause is left in failBinLit.
func (s *Solver) propagate() reason {
	confl := noReason()
	for s.qhead < len(s.trail) && confl.isNone() {
		p := s.trail[s.qhead]
		s.qhead++
		s.sumPropagations++
		confl = s.propagateLit(p)
	}
	if !confl.isNone() {
		s.qhead = len(s.trail)
	}
	return confl
}

// propagateLit inspects every watcher of ¬p after p was assigned true. The
// list is walked with a read cursor i and a write cursor j; watches that
// migrate to another literal are simply not written back.
func (s *Solver) propagateLit(p Literal) reason {
	notP := p.Opposite()
	ws := s.watches.occs[notP]
	s.sumBogoprops += int64(len(ws))

	confl := noReason()
	i, j := 0, 0
	for i < len(ws) {
		w := ws[i]
		i++

		switch w.kind {
		case watchBinary:
			other := w.lit
			switch s.assigns[other] {
			case True:
				// Clause satisfied, nothing to do.
			case Unknown:
				s.enqueue(other, binaryReason(notP, w.red, w.id))
			case False:
				confl = binaryReason(other, w.red, w.id)
				s.failBinLit = notP
			}
			ws[j] = w
			j++

		case watchLong:
			if s.assigns[w.lit] == True {
				ws[j] = w // blocker satisfies the clause
				j++
				continue
			}
			ref := w.ref
			cl := s.ca.lits(ref)

			// Make sure position 1 holds ¬p so position 0 is the literal to
			// be enqueued if every other literal is false.
			if cl[0] == notP {
				cl[0], cl[1] = cl[1], cl[0]
			}
			first := cl[0]
			if s.assigns[first] == True {
				w.lit = first // cache the satisfied literal as blocker
				ws[j] = w
				j++
				continue
			}

			// Look for a replacement watch among positions 2..end.
			moved := false
			for k := 2; k < len(cl); k++ {
				if s.assigns[cl[k]] != False {
					cl[1], cl[k] = cl[k], cl[1]
					s.watches.attachLong(cl[1], ref, first)
					moved = true
					break
				}
			}
			if moved {
				continue // watch migrated, do not write back
			}

			// Clause is unit under first, or conflicting.
			w.lit = first
			ws[j] = w
			j++
			if s.assigns[first] == False {
				confl = clauseReason(ref)
			} else {
				s.ca.setTouched(ref, uint32(s.sumConflicts))
				s.enqueue(first, clauseReason(ref))
			}

		case watchIdx:
			// Auxiliary constraint column: hand the assignment to the XOR
			// matrix. The watch itself is preserved verbatim.
			ws[j] = w
			j++
			confl = s.gaussPropagate(uint32(w.ref), p)
		}

		if !confl.isNone() {
			// Copy the remaining watches and stop.
			for ; i < len(ws); i++ {
				ws[j] = ws[i]
				j++
			}
			break
		}
	}
	s.watches.occs[notP] = ws[:j]
	return confl
}

// pendingBin is a hyper-binary resolvent waiting to be attached once the
// probing propagation unwinds.
type pendingBin struct {
	ancestor Literal // the true ancestor literal a of ¬a ∨ implied
	implied  Literal
}

// hyper-binary bookkeeping, allocated lazily by propagateHyperBin.
type hyperBinState struct {
	ancestor []Literal // immediate parent of each level-1 implication
	depth    []int32
	pending  *Queue[pendingBin]
}

func (s *Solver) ensureHyperBinState() {
	n := s.NumVariables()
	if s.hb.pending == nil {
		s.hb.pending = NewQueue[pendingBin](64)
	}
	for len(s.hb.ancestor) < n {
		s.hb.ancestor = append(s.hb.ancestor, LitUndef)
		s.hb.depth = append(s.hb.depth, 0)
	}
}

// propagateHyperBin is the probing variant of BCP, used at decision level 1
// only. Binary propagations record their immediate ancestor; when a long
// clause would propagate, the deepest common ancestor a of its falsified
// literals is computed instead and the resolvent ¬a ∨ x is queued as a new
// binary, with x enqueued as if that binary had propagated it.
func (s *Solver) propagateHyperBin() reason {
	s.ensureHyperBinState()
	if s.decisionLevel() != 1 {
		panic("hyper-binary propagation outside level 1")
	}

	root := s.trail[s.trailLim[0]]
	s.hb.ancestor[root.VarID()] = LitUndef
	s.hb.depth[root.VarID()] = 0

	confl := noReason()
	for s.qhead < len(s.trail) && confl.isNone() {
		p := s.trail[s.qhead]
		s.qhead++
		s.sumPropagations++
		confl = s.propagateLitHyperBin(p)
	}
	if !confl.isNone() {
		s.qhead = len(s.trail)
	}
	return confl
}

func (s *Solver) propagateLitHyperBin(p Literal) reason {
	notP := p.Opposite()
	ws := s.watches.occs[notP]
	s.sumBogoprops += int64(len(ws))

	confl := noReason()
	i, j := 0, 0
	for i < len(ws) {
		w := ws[i]
		i++

		switch w.kind {
		case watchBinary:
			other := w.lit
			switch s.assigns[other] {
			case True:
			case Unknown:
				v := other.VarID()
				s.hb.ancestor[v] = p
				s.hb.depth[v] = s.hb.depth[p.VarID()] + 1
				s.enqueue(other, binaryReason(notP, w.red, w.id))
			case False:
				confl = binaryReason(other, w.red, w.id)
				s.failBinLit = notP
			}
			ws[j] = w
			j++

		case watchLong:
			if s.assigns[w.lit] == True {
				ws[j] = w
				j++
				continue
			}
			ref := w.ref
			cl := s.ca.lits(ref)
			if cl[0] == notP {
				cl[0], cl[1] = cl[1], cl[0]
			}
			first := cl[0]
			if s.assigns[first] == True {
				w.lit = first
				ws[j] = w
				j++
				continue
			}
			moved := false
			for k := 2; k < len(cl); k++ {
				if s.assigns[cl[k]] != False {
					cl[1], cl[k] = cl[k], cl[1]
					s.watches.attachLong(cl[1], ref, first)
					moved = true
					break
				}
			}
			if moved {
				continue
			}
			w.lit = first
			ws[j] = w
			j++
			if s.assigns[first] == False {
				confl = clauseReason(ref)
				break
			}

			// Hyper-binary resolution: replace the long reason by the binary
			// ¬a ∨ first where a is the deepest common ancestor of the
			// falsified literals.
			if a := s.deepestCommonAncestor(cl[1:]); a != LitUndef {
				if !s.hasBinary(a.Opposite(), first) {
					s.hb.pending.Push(pendingBin{ancestor: a, implied: first})
				}
				v := first.VarID()
				s.hb.ancestor[v] = a
				s.hb.depth[v] = s.hb.depth[a.VarID()] + 1
				r := binaryReason(a.Opposite(), true, 0)
				r.hyperBin = true
				s.ca.setTouched(ref, uint32(s.sumConflicts))
				s.enqueue(first, r)
			} else {
				s.ca.setTouched(ref, uint32(s.sumConflicts))
				s.enqueue(first, clauseReason(ref))
			}

		case watchIdx:
			// XOR propagations carry no ancestor bookkeeping; XOR rows are
			// not evaluated during a probe and the watch is kept as is.
			ws[j] = w
			j++
		}

		if !confl.isNone() {
			for ; i < len(ws); i++ {
				ws[j] = ws[i]
				j++
			}
			break
		}
	}
	s.watches.occs[notP] = ws[:j]
	return confl
}

// deepestCommonAncestor folds the pairwise ancestor of all falsified
// literals of a clause. The walk is over the negations: each falsified
// literal's variable sits on the trail with its opposite sign.
func (s *Solver) deepestCommonAncestor(falsified []Literal) Literal {
	a := LitUndef
	for _, l := range falsified {
		if s.varData[l.VarID()].level == 0 {
			continue // globally false, not part of the implication graph
		}
		b := l.Opposite()
		if a == LitUndef {
			a = b
			continue
		}
		for a != b {
			if a == LitUndef || b == LitUndef {
				return LitUndef
			}
			if s.hb.depth[a.VarID()] >= s.hb.depth[b.VarID()] {
				a = s.hb.ancestor[a.VarID()]
			} else {
				b = s.hb.ancestor[b.VarID()]
			}
		}
	}
	return a
}

// hasBinary reports whether the binary clause (l ∨ other) is already
// attached. Used as the transitive-reduction check before queueing a new
// hyper-binary resolvent.
func (s *Solver) hasBinary(l, other Literal) bool {
	ws := s.watches.occs[l]
	if len(ws) > len(s.watches.occs[other]) {
		l, other = other, l
		ws = s.watches.occs[l]
	}
	for _, w := range ws {
		if w.kind == watchBinary && w.lit == other {
			return true
		}
	}
	return false
}

// flushPendingBins attaches the hyper-binary resolvents collected by the
// last probing propagation. Must be called at decision level 0.
func (s *Solver) flushPendingBins() int {
	if s.hb.pending == nil {
		return 0
	}
	added := 0
	for !s.hb.pending.IsEmpty() {
		pb := s.hb.pending.Pop()
		if s.hasBinary(pb.ancestor.Opposite(), pb.implied) {
			continue
		}
		id := s.attachBinary(pb.ancestor.Opposite(), pb.implied, true)
		if s.trace != nil {
			s.trace.Add(int64(id), []Literal{pb.ancestor.Opposite(), pb.implied})
		}
		added++
	}
	return added
}
