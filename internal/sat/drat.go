package sat

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// TraceWriter appends clause addition, deletion and finalization lines to an
// opaque sink. Literals are written in DIMACS convention; every clause
// carries the monotonically increasing ID assigned at creation.
type TraceWriter struct {
	w *bufio.Writer
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: bufio.NewWriter(w)}
}

func (t *TraceWriter) line(verb string, id int64, lits []Literal) {
	t.w.WriteString(verb)
	t.w.WriteByte(' ')
	t.w.WriteString(strconv.FormatInt(id, 10))
	for _, l := range lits {
		t.w.WriteByte(' ')
		t.w.WriteString(strconv.Itoa(l.Dimacs()))
	}
	t.w.WriteString(" 0\n")
}

// Add records a derived clause.
func (t *TraceWriter) Add(id int64, lits []Literal) {
	t.line("add", id, lits)
}

// Del records a clause deletion.
func (t *TraceWriter) Del(id int64, lits []Literal) {
	t.line("del", id, lits)
}

// Final records a clause surviving at termination.
func (t *TraceWriter) Final(id int64, lits []Literal) {
	t.line("fin", id, lits)
}

func (t *TraceWriter) Flush() error {
	return errors.Wrap(t.w.Flush(), "flushing trace")
}
