package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// lit converts a DIMACS-style literal for test readability: lit(3) is the
// positive literal of variable 2, lit(-3) its negation.
func lit(d int) Literal {
	return LiteralFromDimacs(d)
}

func clause(ds ...int) []Literal {
	lits := make([]Literal, len(ds))
	for i, d := range ds {
		lits[i] = lit(d)
	}
	return lits
}

func newTestSolver(nVars int, mutate func(*Config)) *Solver {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s := NewSolver(cfg)
	s.NewVars(nVars)
	return s
}

// checkInvariants verifies the structural invariants of the watch and trail
// data structures.
func checkInvariants(t *testing.T, s *Solver) {
	t.Helper()

	// Every live long clause has its two watch positions attached.
	countLong := 0
	check := func(ref ClauseRef) {
		if s.ca.isTombstoned(ref) || s.ca.isDetached(ref) {
			return
		}
		countLong++
		lits := s.ca.lits(ref)
		require.GreaterOrEqual(t, len(lits), 2, "clause %d too short", ref)
		for _, wl := range lits[:2] {
			found := false
			for _, w := range s.watches.occs[wl] {
				if w.kind == watchLong && w.ref == ref {
					found = true
				}
			}
			require.True(t, found, "missing watch for clause %d on %v", ref, wl)
		}
	}
	for _, ref := range s.longIrred {
		check(ref)
	}
	for tier := range s.red {
		for _, ref := range s.red[tier] {
			check(ref)
		}
	}

	// Watch totals: two watches per live long clause, two per binary.
	nLong, nBin, nIdx := 0, 0, 0
	for l := range s.watches.occs {
		for _, w := range s.watches.occs[l] {
			switch w.kind {
			case watchLong:
				if !s.ca.isTombstoned(w.ref) {
					nLong++
				}
			case watchBinary:
				nBin++
			case watchIdx:
				nIdx++
			}
		}
	}
	require.Equal(t, 2*countLong, nLong, "long watch count")
	require.Equal(t, 2*int(s.numBinsIrred+s.numBinsRed), nBin, "binary watch count")

	// value(l) == ¬value(¬l).
	for l := 0; l < len(s.assigns); l += 2 {
		require.Equal(t, s.assigns[l], s.assigns[l+1].Opposite(),
			"asymmetric assignment of variable %d", l/2)
	}

	// Reasons: every antecedent literal is false at or below the literal's
	// level.
	for _, tl := range s.trail {
		r := s.varData[tl.VarID()].reason
		if r.isNone() {
			continue
		}
		for _, q := range s.reasonLits(r, tl, nil) {
			require.Equal(t, False, s.assigns[q], "reason literal %v not false", q)
			require.LessOrEqual(t, s.varData[q.VarID()].level, s.varData[tl.VarID()].level,
				"reason literal %v above implied level", q)
		}
	}
}

func TestSolveEmptyFormula(t *testing.T) {
	s := newTestSolver(0, nil)
	require.Equal(t, True, s.Solve(nil))
	require.Empty(t, s.Model())
}

func TestSolveSingleUnit(t *testing.T) {
	s := newTestSolver(1, nil)
	require.True(t, s.AddClause(clause(1)))
	require.Equal(t, True, s.Solve(nil))
	require.Equal(t, []bool{true}, s.Model())
	require.Zero(t, s.sumDecisions)
}

func TestSolveImmediateUnsat(t *testing.T) {
	s := newTestSolver(1, nil)
	require.True(t, s.AddClause(clause(1)))
	require.False(t, s.AddClause(clause(-1)))
	require.Equal(t, False, s.Solve(nil))
	require.Zero(t, s.sumConflicts, "no learning on a level-0 conflict")

	// The solver latches: subsequent calls fail fast.
	require.Equal(t, False, s.Solve(nil))
}

func TestSolveUnitPropagationChain(t *testing.T) {
	s := newTestSolver(3, nil)
	require.True(t, s.AddClause(clause(1)))
	require.True(t, s.AddClause(clause(-1, 2)))
	require.True(t, s.AddClause(clause(-2, 3)))

	require.Equal(t, True, s.Solve(nil))
	require.Equal(t, []bool{true, true, true}, s.Model())
	require.Zero(t, s.sumDecisions, "propagation alone must suffice")
	checkInvariants(t, s)
}

func TestSolveFirstUIPLearning(t *testing.T) {
	s := newTestSolver(5, nil)
	require.True(t, s.AddClause(clause(-1, 2)))
	require.True(t, s.AddClause(clause(-1, 3)))
	require.True(t, s.AddClause(clause(-2, -3, 4)))
	require.True(t, s.AddClause(clause(-4, 5)))
	require.True(t, s.AddClause(clause(-4, -5)))

	require.Equal(t, True, s.Solve(nil))
	model := s.Model()
	require.False(t, model[0], "variable 1 must be false in every model")
	require.False(t, model[3], "variable 4 must be false in every model")
	checkInvariants(t, s)
}

func TestSolveAssumptionsCore(t *testing.T) {
	s := newTestSolver(3, nil)
	require.True(t, s.AddClause(clause(1, 2)))  // a ∨ b
	require.True(t, s.AddClause(clause(-1, 3))) // ¬a ∨ c
	require.True(t, s.AddClause(clause(-3)))    // ¬c

	require.Equal(t, False, s.Solve(clause(1, -2)))
	core := s.FinalConflict()
	require.NotEmpty(t, core)
	allowed := map[Literal]bool{lit(-1): true, lit(2): true}
	for _, l := range core {
		require.True(t, allowed[l], "unexpected core literal %v", l)
	}

	// The solver is still usable: without assumptions the formula is SAT.
	require.Equal(t, True, s.Solve(nil))
	model := s.Model()
	require.False(t, model[0])
	require.True(t, model[1])
}

func TestSolveAssumptionsCoreMultiple(t *testing.T) {
	s := newTestSolver(3, nil)
	require.True(t, s.AddClause(clause(-1, 3)))  // a → c
	require.True(t, s.AddClause(clause(-2, -3))) // b → ¬c

	require.Equal(t, False, s.Solve(clause(1, 2)))
	got := map[Literal]bool{}
	for _, l := range s.FinalConflict() {
		got[l] = true
	}
	want := map[Literal]bool{lit(-1): true, lit(-2): true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("core mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveAssumptionAlreadyImplied(t *testing.T) {
	s := newTestSolver(2, nil)
	require.True(t, s.AddClause(clause(1)))
	require.True(t, s.AddClause(clause(-1, 2)))

	// Both assumptions are already forced: dummy decision levels only.
	require.Equal(t, True, s.Solve(clause(1, 2)))
	require.Equal(t, []bool{true, true}, s.Model())
}

func TestSolveAssumptionContradictsLevelZero(t *testing.T) {
	s := newTestSolver(1, nil)
	require.True(t, s.AddClause(clause(1)))

	require.Equal(t, False, s.Solve(clause(-1)))
	require.Equal(t, []Literal{lit(1)}, s.FinalConflict())

	// No latch: the contradiction came from the assumption, not the formula.
	require.Equal(t, True, s.Solve(nil))
}

// php encodes the pigeonhole principle with n+1 pigeons and n holes, which
// is unsatisfiable.
func php(s *Solver, holes int) {
	pigeons := holes + 1
	v := func(p, h int) int { return p*holes + h + 1 }
	for p := 0; p < pigeons; p++ {
		cl := []int{}
		for h := 0; h < holes; h++ {
			cl = append(cl, v(p, h))
		}
		s.AddClause(clause(cl...))
	}
	for h := 0; h < holes; h++ {
		for p1 := 0; p1 < pigeons; p1++ {
			for p2 := p1 + 1; p2 < pigeons; p2++ {
				s.AddClause(clause(-v(p1, h), -v(p2, h)))
			}
		}
	}
}

func TestSolveRestartsPreserveVerdict(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"never", func(c *Config) { c.RestartType = RestartNever }},
		{"luby_tiny", func(c *Config) {
			c.RestartType = RestartLuby
			c.RestartBase = 1
			c.RestartReluctant = false
		}},
		{"geom_tiny", func(c *Config) {
			c.RestartType = RestartGeom
			c.RestartBase = 1
		}},
		{"glue", func(c *Config) {
			c.RestartType = RestartGlue
			c.ShortTermHistorySize = 5
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			holes := 4
			s := newTestSolver(holes*(holes+1), tc.mutate)
			php(s, holes)
			require.Equal(t, False, s.Solve(nil))

			sat := newTestSolver(3, tc.mutate)
			require.True(t, sat.AddClause(clause(1, 2)))
			require.True(t, sat.AddClause(clause(-1, 3)))
			require.Equal(t, True, sat.Solve(nil))
		})
	}
}

func TestSolveIncrementalClauseGrowth(t *testing.T) {
	s := newTestSolver(3, nil)
	require.True(t, s.AddClause(clause(1, 2, 3)))
	require.Equal(t, True, s.Solve(nil))

	require.True(t, s.AddClause(clause(-1)))
	require.True(t, s.AddClause(clause(-2)))
	require.Equal(t, True, s.Solve(nil))
	require.True(t, s.Model()[2])

	require.False(t, s.AddClause(clause(-3)))
	require.Equal(t, False, s.Solve(nil))
}

func TestAddClauseInvalidLiteral(t *testing.T) {
	s := newTestSolver(2, nil)
	require.False(t, s.AddClauseOuter(clause(5), false), "out-of-range variable")

	// The solver remains usable after a rejected clause.
	require.True(t, s.AddClause(clause(1, 2)))
	require.Equal(t, True, s.Solve(nil))
}

func TestAddClauseTautologyAndDuplicates(t *testing.T) {
	s := newTestSolver(2, nil)
	require.True(t, s.AddClause(clause(1, -1)))
	require.True(t, s.AddClause(clause(1, 1, 2)))
	require.Equal(t, int64(1), s.numBinsIrred, "duplicates collapse to a binary")
	require.Equal(t, True, s.Solve(nil))
}

func TestLongClauseWatchReplacement(t *testing.T) {
	// A long clause all of whose non-watched literals become false must
	// still trigger BCP through watch replacement.
	s := newTestSolver(4, nil)
	require.True(t, s.AddClause(clause(1, 2, 3, 4)))

	s.assume(lit(-3))
	require.True(t, s.propagate().isNone())
	s.assume(lit(-4))
	require.True(t, s.propagate().isNone())
	s.assume(lit(-2))
	require.True(t, s.propagate().isNone())

	require.Equal(t, True, s.assigns[lit(1)], "watch replacement must propagate the last literal")
	checkInvariants(t, s)
}

func TestInterrupt(t *testing.T) {
	holes := 5
	s := newTestSolver(holes*(holes+1), func(c *Config) {
		c.TermintEveryN = 1
	})
	php(s, holes)
	s.Interrupt()
	require.Equal(t, Unknown, s.Solve(nil))

	// Internal state stays consistent for the next call.
	s.interrupt.Store(false)
	require.Equal(t, False, s.Solve(nil))
}

func TestTerminateCallback(t *testing.T) {
	holes := 6
	s := newTestSolver(holes*(holes+1), func(c *Config) {
		c.TermintEveryN = 1
	})
	php(s, holes)
	calls := 0
	s.SetTerminateCallback(func() bool {
		calls++
		return calls > 3
	})
	require.Equal(t, Unknown, s.Solve(nil))
	require.Greater(t, calls, 3)
}

func TestMaxConflictsBudget(t *testing.T) {
	holes := 6
	s := newTestSolver(holes*(holes+1), func(c *Config) {
		c.MaxConflicts = 5
	})
	php(s, holes)
	require.Equal(t, Unknown, s.Solve(nil))
	require.LessOrEqual(t, s.sumConflicts, int64(6))
}

func TestChronologicalBacktrack(t *testing.T) {
	holes := 4
	s := newTestSolver(holes*(holes+1), func(c *Config) {
		c.DiffDeclevForChrono = 2 // backtrack chronologically on small gaps
	})
	php(s, holes)
	require.Equal(t, False, s.Solve(nil))
}

func TestStrategyRotationKeepsVerdicts(t *testing.T) {
	// Tiny outer restarts exercise the full rotation, including Maple
	// branching and the stable/best polarity modes.
	holes := 5
	s := newTestSolver(holes*(holes+1), func(c *Config) {
		c.RestartBase = 1
		c.RestartOuterFactor = 2
		c.RestartType = RestartLuby
	})
	php(s, holes)
	require.Equal(t, False, s.Solve(nil))
	require.Greater(t, s.restartCtl.outerCount, int64(0), "outer restarts must have fired")
}

func TestNewVarExtRenumbering(t *testing.T) {
	s := newTestSolver(0, nil)
	inner := s.NewVarExt(false, 4) // re-insert at outer index 4
	require.Equal(t, 0, inner)
	require.Equal(t, inner, s.outerToInner[4])

	next := s.AddVariable()
	require.Equal(t, 1, next)

	require.True(t, s.AddClauseOuter([]Literal{PositiveLiteral(4)}, false))
	require.Equal(t, True, s.VarValue(inner))
}

func TestBVAFlag(t *testing.T) {
	s := newTestSolver(0, nil)
	v := s.NewVarExt(true, -1)
	require.True(t, s.varData[v].isBVA)
}
