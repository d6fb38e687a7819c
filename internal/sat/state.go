package sat

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	stateMagic   uint32 = 0x4c584548 // "HEXL"
	stateVersion uint32 = 1
)

// stateCoder wraps an io stream with sticky-error little-endian encoding.
type stateCoder struct {
	w   io.Writer
	r   io.Reader
	err error
}

func (c *stateCoder) write(v any) {
	if c.err == nil {
		c.err = binary.Write(c.w, binary.LittleEndian, v)
	}
}

func (c *stateCoder) read(v any) {
	if c.err == nil {
		c.err = binary.Read(c.r, binary.LittleEndian, v)
	}
}

func (c *stateCoder) writeLits(lits []Literal) {
	c.write(uint32(len(lits)))
	for _, l := range lits {
		c.write(int32(l))
	}
}

func (c *stateCoder) readLits() []Literal {
	var n uint32
	c.read(&n)
	if c.err != nil || n > 1<<28 {
		if c.err == nil {
			c.err = errors.New("corrupt literal count")
		}
		return nil
	}
	lits := make([]Literal, n)
	for i := range lits {
		var l int32
		c.read(&l)
		lits[i] = Literal(l)
	}
	return lits
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SaveState writes a binary snapshot of the clause database: renumber maps,
// variable data, top-level units, binaries, and long clauses with their
// metadata. Trail and heap state are not saved; they are rebuilt on load.
func (s *Solver) SaveState(w io.Writer) error {
	s.cancelUntil(0)
	c := &stateCoder{w: w}

	c.write(stateMagic)
	c.write(stateVersion)
	c.write(boolByte(s.ok))

	// Renumber maps.
	c.write(uint32(len(s.outerToInner)))
	for _, inner := range s.outerToInner {
		c.write(int32(inner))
	}
	c.write(uint32(len(s.innerToOuter)))
	for _, outer := range s.innerToOuter {
		c.write(int32(outer))
	}

	// Variable data.
	c.write(uint32(len(s.varData)))
	for v := range s.varData {
		vd := &s.varData[v]
		c.write(boolByte(vd.polarity))
		c.write(boolByte(vd.bestPolarity))
		c.write(boolByte(vd.stablePolarity))
		c.write(uint8(vd.removed))
		c.write(boolByte(vd.isBVA))
	}

	// Top-level units.
	c.writeLits(s.trail)

	// Binaries.
	type bin struct {
		a, b Literal
		red  bool
	}
	bins := []bin{}
	s.forEachBinary(func(a, b Literal, red bool, id int32) {
		bins = append(bins, bin{a, b, red})
	})
	c.write(uint32(len(bins)))
	for _, bc := range bins {
		c.write(int32(bc.a))
		c.write(int32(bc.b))
		c.write(boolByte(bc.red))
	}

	// Long irredundant clauses: literals only.
	c.write(uint32(len(s.longIrred)))
	for _, ref := range s.longIrred {
		c.writeLits(s.ca.lits(ref))
	}

	// Long redundant clauses: literals plus metadata.
	c.write(uint32(s.NumLearnts()))
	for t := range s.red {
		for _, ref := range s.red[t] {
			c.writeLits(s.ca.lits(ref))
			c.write(uint32(s.ca.glue(ref)))
			c.write(uint32(s.ca.tier(ref)))
			c.write(s.ca.activity(ref))
			c.write(s.ca.touched(ref))
		}
	}

	return errors.Wrap(c.err, "saving solver state")
}

// LoadState restores a snapshot written by SaveState into this solver, which
// must be freshly constructed.
func (s *Solver) LoadState(r io.Reader) error {
	if s.NumVariables() != 0 {
		return errors.New("state must be loaded into a fresh solver")
	}
	c := &stateCoder{r: r}

	var magic, version uint32
	c.read(&magic)
	c.read(&version)
	if c.err == nil && magic != stateMagic {
		return errors.New("not a solver state stream")
	}
	if c.err == nil && version != stateVersion {
		return errors.Errorf("unsupported state version %d", version)
	}
	var okByte uint8
	c.read(&okByte)

	var nOuter uint32
	c.read(&nOuter)
	outerToInner := make([]int, nOuter)
	for i := range outerToInner {
		var v int32
		c.read(&v)
		outerToInner[i] = int(v)
	}
	var nInner uint32
	c.read(&nInner)
	innerToOuter := make([]int, nInner)
	for i := range innerToOuter {
		var v int32
		c.read(&v)
		innerToOuter[i] = int(v)
	}
	if c.err != nil {
		return errors.Wrap(c.err, "loading solver state")
	}

	// Recreate the variables through the regular path so every side table
	// grows consistently, then overwrite the maps.
	var nVars uint32
	c.read(&nVars)
	for v := uint32(0); v < nVars; v++ {
		s.AddVariable()
	}
	s.outerToInner = outerToInner
	s.innerToOuter = innerToOuter
	for v := 0; v < int(nVars); v++ {
		vd := &s.varData[v]
		var pol, best, stable, removed, isBVA uint8
		c.read(&pol)
		c.read(&best)
		c.read(&stable)
		c.read(&removed)
		c.read(&isBVA)
		vd.polarity = pol != 0
		vd.bestPolarity = best != 0
		vd.stablePolarity = stable != 0
		vd.removed = removedKind(removed)
		vd.isBVA = isBVA != 0
	}

	// Units.
	for _, l := range c.readLits() {
		if c.err != nil {
			break
		}
		s.enqueue(l, noReason())
	}

	// Binaries.
	var nBins uint32
	c.read(&nBins)
	for i := uint32(0); i < nBins && c.err == nil; i++ {
		var a, b int32
		var red uint8
		c.read(&a)
		c.read(&b)
		c.read(&red)
		s.attachBinary(Literal(a), Literal(b), red != 0)
	}

	// Long irredundant clauses.
	var nIrred uint32
	c.read(&nIrred)
	for i := uint32(0); i < nIrred && c.err == nil; i++ {
		lits := c.readLits()
		if c.err != nil {
			break
		}
		ref := s.ca.alloc(lits, false, min(len(lits), s.cfg.MaxGlue), s.nextClauseID())
		s.attachLongClause(ref)
		s.longIrred = append(s.longIrred, ref)
		s.litsIrred += int64(len(lits))
	}

	// Long redundant clauses.
	var nRed uint32
	c.read(&nRed)
	for i := uint32(0); i < nRed && c.err == nil; i++ {
		lits := c.readLits()
		var glue, tier, touched uint32
		var act float32
		c.read(&glue)
		c.read(&tier)
		c.read(&act)
		c.read(&touched)
		if c.err != nil {
			break
		}
		if tier > 2 {
			return errors.Errorf("corrupt clause tier %d", tier)
		}
		ref := s.ca.alloc(lits, true, int(glue), s.nextClauseID())
		s.ca.setTier(ref, int(tier))
		s.ca.setActivity(ref, act)
		s.ca.setTouched(ref, touched)
		s.attachLongClause(ref)
		s.red[tier] = append(s.red[tier], ref)
		s.litsRed += int64(len(lits))
	}

	if c.err != nil {
		return errors.Wrap(c.err, "loading solver state")
	}

	s.ok = okByte != 0
	if s.ok {
		if confl := s.propagate(); !confl.isNone() {
			s.ok = false
		}
	}
	return nil
}
