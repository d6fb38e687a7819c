package sat

import "math/bits"

// xorRow is one XOR constraint over the columns of its matrix: the variables
// at the set columns must sum to rhs modulo 2.
type xorRow struct {
	cols []uint64
	rhs  bool
	dead bool // eliminated into another row
}

func (r *xorRow) set(col int) {
	word := col >> 6
	for len(r.cols) <= word {
		r.cols = append(r.cols, 0)
	}
	r.cols[word] |= 1 << (uint(col) & 63)
}

func (r *xorRow) has(col int) bool {
	word := col >> 6
	return word < len(r.cols) && r.cols[word]&(1<<(uint(col)&63)) != 0
}

// xorInto adds other into r modulo 2.
func (r *xorRow) xorInto(other *xorRow) {
	for len(r.cols) < len(other.cols) {
		r.cols = append(r.cols, 0)
	}
	for i, w := range other.cols {
		r.cols[i] ^= w
	}
	r.rhs = r.rhs != other.rhs
}

func (r *xorRow) popcount() int {
	n := 0
	for _, w := range r.cols {
		n += bits.OnesCount64(w)
	}
	return n
}

func (r *xorRow) forEachCol(f func(col int)) {
	for i, w := range r.cols {
		for w != 0 {
			f(i<<6 + bits.TrailingZeros64(w))
			w &= w - 1
		}
	}
}

// gaussMatrix groups XOR constraints over a shared column space. Propagation
// is lazy: idx watches on the member variables trigger a re-evaluation of
// the rows containing the assigned column.
type gaussMatrix struct {
	num     uint32
	vars    []int       // column -> variable
	colOf   map[int]int // variable -> column
	rows    []xorRow
	rowsOf  [][]uint32 // column -> rows containing it
	watched map[int]bool
}

func newGaussMatrix(num uint32) *gaussMatrix {
	return &gaussMatrix{
		num:     num,
		colOf:   map[int]int{},
		watched: map[int]bool{},
	}
}

func (g *gaussMatrix) column(v int) int {
	if c, ok := g.colOf[v]; ok {
		return c
	}
	c := len(g.vars)
	g.colOf[v] = c
	g.vars = append(g.vars, v)
	g.rowsOf = append(g.rowsOf, nil)
	return c
}

// addRow registers an XOR over vars with the given parity and returns the
// row number.
func (g *gaussMatrix) addRow(vars []int, rhs bool) uint32 {
	row := xorRow{rhs: rhs}
	for _, v := range vars {
		c := g.column(v)
		if row.has(c) {
			// x ⊕ x cancels.
			row.cols[c>>6] &^= 1 << (uint(c) & 63)
		} else {
			row.set(c)
		}
	}
	num := uint32(len(g.rows))
	g.rows = append(g.rows, row)
	row.forEachCol(func(col int) {
		g.rowsOf[col] = append(g.rowsOf[col], num)
	})
	return num
}

// AddXorOuter ingests an XOR constraint over outer variables: the variables
// must sum to rhs modulo 2. Returns false if the formula is already known
// unsatisfiable.
func (s *Solver) AddXorOuter(outerVars []int, rhs bool) bool {
	if !s.ok {
		return false
	}
	inner := make([]int, 0, len(outerVars))
	for _, ov := range outerVars {
		if ov < 0 || ov >= len(s.outerToInner) {
			return false
		}
		iv := s.outerToInner[ov]
		if iv < 0 || iv >= len(s.varData) {
			return false
		}
		inner = append(inner, iv)
	}

	if len(s.gauss) == 0 {
		s.gauss = append(s.gauss, newGaussMatrix(0))
	}
	g := s.gauss[0]
	rowNum := g.addRow(inner, rhs)

	// Watch every member variable, both phases, once.
	for _, v := range inner {
		if g.watched[v] {
			continue
		}
		g.watched[v] = true
		s.watches.attachIdx(PositiveLiteral(v), g.num)
		s.watches.attachIdx(NegativeLiteral(v), g.num)
	}

	// The new row may already be unit or contradicted under the level-0
	// assignment.
	confl := s.gaussCheckRow(g, rowNum)
	if !confl.isNone() {
		s.ok = false
		return false
	}
	return true
}

// gaussPropagate re-evaluates the rows containing the assigned variable.
// Returns a conflict reason if a row is violated.
func (s *Solver) gaussPropagate(matrix uint32, p Literal) reason {
	g := s.gauss[matrix]
	col, ok := g.colOf[p.VarID()]
	if !ok {
		return noReason()
	}
	for _, rowNum := range g.rowsOf[col] {
		if confl := s.gaussCheckRow(g, rowNum); !confl.isNone() {
			return confl
		}
	}
	return noReason()
}

// gaussCheckRow evaluates one row under the current assignment: a fully
// assigned row with the wrong parity conflicts; a row with one unassigned
// variable propagates it.
func (s *Solver) gaussCheckRow(g *gaussMatrix, rowNum uint32) reason {
	row := &g.rows[rowNum]
	if row.dead {
		return noReason()
	}
	unassigned := -1
	parity := false
	done := false
	row.forEachCol(func(col int) {
		if done {
			return
		}
		v := g.vars[col]
		switch s.VarValue(v) {
		case True:
			parity = !parity
		case Unknown:
			if unassigned >= 0 {
				done = true // two unassigned: nothing to do
				return
			}
			unassigned = v
		}
	})
	if done {
		return noReason()
	}
	if unassigned < 0 {
		if parity != row.rhs {
			return xorReason(g.num, rowNum)
		}
		return noReason()
	}
	forced := row.rhs != parity
	s.enqueue(MakeLiteral(unassigned, !forced), xorReason(g.num, rowNum))
	return noReason()
}

// gaussReasonLits expands an XOR reason into its falsified antecedent
// literals: for every assigned member variable, the literal that is
// currently false.
func (s *Solver) gaussReasonLits(r reason, p Literal, out []Literal) []Literal {
	g := s.gauss[r.matrix]
	row := &g.rows[uint32(r.ref)]
	skip := -1
	if p != LitUndef {
		skip = p.VarID()
	}
	row.forEachCol(func(col int) {
		v := g.vars[col]
		if v == skip {
			return
		}
		if s.VarValue(v) == True {
			out = append(out, NegativeLiteral(v))
		} else {
			out = append(out, PositiveLiteral(v))
		}
	})
	return out
}

// gaussEliminate performs Gauss-Jordan elimination on every matrix at
// decision level 0: rows are reduced against each other, empty rows with an
// odd parity contradict, and unit rows are enqueued. Returns false on
// contradiction.
func (s *Solver) gaussEliminate() bool {
	for _, g := range s.gauss {
		if !s.gaussEliminateMatrix(g) {
			return false
		}
	}
	return true
}

func (s *Solver) gaussEliminateMatrix(g *gaussMatrix) bool {
	// Pivot rows are kept mutually reduced (no pivot row contains another
	// row's pivot column), so reducing a row removes one pivot column per
	// step and the loop below terminates.
	pivotOf := make(map[int]uint32) // column -> pivot row

	for i := range g.rows {
		row := &g.rows[i]
		if row.dead {
			continue
		}
		for {
			hit := -1
			row.forEachCol(func(col int) {
				if hit < 0 {
					if p, ok := pivotOf[col]; ok && p != uint32(i) {
						hit = col
					}
				}
			})
			if hit < 0 {
				break
			}
			row.xorInto(&g.rows[pivotOf[hit]])
		}

		switch row.popcount() {
		case 0:
			if row.rhs {
				return false // 0 = 1
			}
			row.dead = true
		case 1:
			if !s.gaussCheckUnitRow(g, uint32(i)) {
				return false
			}
		default:
			pivot := -1
			row.forEachCol(func(col int) {
				if pivot < 0 {
					pivot = col
				}
			})
			pivotOf[pivot] = uint32(i)
			// Back-eliminate the new pivot from the earlier pivot rows.
			for _, p := range pivotOf {
				if p != uint32(i) && g.rows[p].has(pivot) {
					g.rows[p].xorInto(row)
				}
			}
		}
	}

	// Back-elimination may have reduced earlier pivot rows to units.
	for i := range g.rows {
		if g.rows[i].dead {
			continue
		}
		switch g.rows[i].popcount() {
		case 0:
			if g.rows[i].rhs {
				return false
			}
			g.rows[i].dead = true
		case 1:
			if !s.gaussCheckUnitRow(g, uint32(i)) {
				return false
			}
		}
	}

	// Row membership changed; rebuild the per-column row lists.
	for c := range g.rowsOf {
		g.rowsOf[c] = g.rowsOf[c][:0]
	}
	for i := range g.rows {
		if g.rows[i].dead {
			continue
		}
		g.rows[i].forEachCol(func(col int) {
			g.rowsOf[col] = append(g.rowsOf[col], uint32(i))
		})
	}
	return true
}

// gaussCheckUnitRow enforces a single-variable row against the current
// assignment. Returns false on contradiction.
func (s *Solver) gaussCheckUnitRow(g *gaussMatrix, rowNum uint32) bool {
	row := &g.rows[rowNum]
	ok := true
	row.forEachCol(func(col int) {
		v := g.vars[col]
		switch s.VarValue(v) {
		case Unknown:
			s.enqueue(MakeLiteral(v, !row.rhs), xorReason(g.num, rowNum))
		case True:
			if !row.rhs {
				ok = false
			}
		case False:
			if row.rhs {
				ok = false
			}
		}
	})
	if !ok {
		s.ok = false
	}
	return ok
}
