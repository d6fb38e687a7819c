// Package dimacs loads DIMACS CNF instances and model files into the
// solver. Clause parsing is delegated to the dimacs library, whose builder
// callbacks this package adapts to the solver API; extended XOR lines are
// parsed here.
package dimacs

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"

	"github.com/hexel-sat/hexel/internal/sat"
)

// Solver is the subset of the solver API needed for instantiation.
type Solver interface {
	AddVariable() int
	AddClauseOuter(lits []sat.Literal, redundant bool) bool
	AddXorOuter(vars []int, rhs bool) bool
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file and loads its formula in the given
// solver. XOR constraint lines (prefixed with "x") follow the extended
// convention: each negative literal flips the parity.
func LoadDIMACS(filename string, gzipped bool, solver Solver) error {
	reader, err := reader(filename, gzipped)
	if err != nil {
		return errors.Wrapf(err, "reading file %q", filename)
	}
	defer reader.Close()

	b := &builder{solver: solver}
	if err := dimacs.ReadBuilder(xorAsComments(reader), b); err != nil {
		return errors.Wrapf(err, "parsing %q", filename)
	}
	if b.err != nil {
		return b.err
	}
	return nil
}

// xorAsComments rewrites extended XOR constraint lines ("x 1 2 3 0") into
// comment lines so the base CNF parser passes them through to the Comment
// callback instead of rejecting them.
func xorAsComments(r io.Reader) io.Reader {
	var buf bytes.Buffer
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "x ") {
			buf.WriteString("c ")
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return &buf
}

// builder wraps the solver to implement dimacs.Builder.
type builder struct {
	solver Solver
	err    error
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return errors.Errorf("instances of type %q are not supported", problem)
	}
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		clause[i] = sat.LiteralFromDimacs(l)
	}
	if !b.solver.AddClauseOuter(clause, false) && b.err == nil {
		b.err = errors.New("formula is trivially unsatisfiable")
	}
	return nil
}

func (b *builder) Comment(line string) error {
	// Extended XOR lines travel as comments through the base parser.
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "c")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "x ") {
		return nil
	}
	vars := []int{}
	rhs := true
	for _, f := range strings.Fields(line[2:]) {
		l, err := strconv.Atoi(f)
		if err != nil {
			return errors.Wrapf(err, "invalid XOR literal %q", f)
		}
		if l == 0 {
			break
		}
		if l < 0 {
			rhs = !rhs
			l = -l
		}
		vars = append(vars, l-1)
	}
	if len(vars) > 0 && !b.solver.AddXorOuter(vars, rhs) && b.err == nil {
		b.err = errors.New("formula is trivially unsatisfiable")
	}
	return nil
}
