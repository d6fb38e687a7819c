package sat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeFirstUIP(t *testing.T) {
	s := newTestSolver(5, nil)
	require.True(t, s.AddClause(clause(-1, 2)))
	require.True(t, s.AddClause(clause(-1, 3)))
	require.True(t, s.AddClause(clause(-2, -3, 4)))
	require.True(t, s.AddClause(clause(-4, 5)))
	require.True(t, s.AddClause(clause(-4, -5)))

	s.assume(lit(1))
	confl := s.propagate()
	require.False(t, confl.isNone(), "deciding 1 must conflict")

	learnt, btLevel, glue := s.analyze(confl)
	require.Equal(t, []Literal{lit(-4)}, learnt, "first UIP is ¬4")
	require.Equal(t, 0, btLevel)
	require.Equal(t, 1, glue)
}

func TestAnalyzeRecursiveMinimization(t *testing.T) {
	// Implication graph built by hand: 1 decides, 2 follows from 1; 3
	// decides, 4 follows from 3. The conflict clause (¬4 ∨ ¬2 ∨ ¬1) then
	// yields the learnt clause (¬4 ∨ ¬2 ∨ ¬1), in which ¬2 is redundant:
	// 2's reason is covered by ¬1, which the clause already contains.
	run := func(recursive bool) []Literal {
		s := newTestSolver(4, func(c *Config) {
			c.DoRecursiveMinim = recursive
			c.DoMinimRedMore = false
		})
		s.assume(lit(1))
		s.enqueue(lit(2), binaryReason(lit(-1), false, 1))
		s.assume(lit(3))
		s.enqueue(lit(4), binaryReason(lit(-3), false, 2))

		ref := s.ca.alloc(clause(-4, -2, -1), false, 3, 3)
		learnt, btLevel, _ := s.analyze(clauseReason(ref))
		require.Equal(t, lit(-4), learnt[0])
		require.Equal(t, 1, btLevel)
		out := make([]Literal, len(learnt))
		copy(out, learnt)
		return out
	}

	require.ElementsMatch(t, clause(-4, -2, -1), run(false))
	require.ElementsMatch(t, clause(-4, -1), run(true))
}

func TestAnalyzeMultiLevelGlue(t *testing.T) {
	s := newTestSolver(4, func(c *Config) {
		c.DoRecursiveMinim = false
		c.DoMinimRedMore = false
	})
	s.assume(lit(1))
	s.enqueue(lit(2), binaryReason(lit(-1), false, 1))
	s.assume(lit(3))
	s.enqueue(lit(4), binaryReason(lit(-3), false, 2))

	ref := s.ca.alloc(clause(-4, -2, -1), false, 3, 3)
	learnt, btLevel, glue := s.analyze(clauseReason(ref))
	require.Len(t, learnt, 3)
	require.Equal(t, lit(-4), learnt[0])
	require.Equal(t, 1, btLevel)
	require.Equal(t, 2, glue, "levels {2, 1} remain in the learnt clause")
}

func TestComputeGlueCapped(t *testing.T) {
	s := newTestSolver(8, func(c *Config) { c.MaxGlue = 3 })
	for v := 0; v < 8; v++ {
		s.assume(PositiveLiteral(v))
	}
	lits := []Literal{}
	for v := 0; v < 8; v++ {
		lits = append(lits, NegativeLiteral(v))
	}
	require.Equal(t, 3, s.computeGlue(lits))
}

func TestMinimizeWithBinaries(t *testing.T) {
	s := newTestSolver(3, func(c *Config) {
		c.DoRecursiveMinim = false
	})
	// Binary (1 ∨ -2) allows resolving 2 out of a learnt clause asserting 1.
	require.True(t, s.AddClause(clause(1, -2)))

	s.assume(lit(2))
	require.True(t, s.propagate().isNone())
	s.assume(lit(3))
	require.True(t, s.propagate().isNone())

	s.tmpLearnt = []Literal{lit(1), lit(2), lit(3)}
	s.minimizeWithBinaries()
	require.Equal(t, []Literal{lit(1), lit(3)}, s.tmpLearnt)
}
