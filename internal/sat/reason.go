package sat

// reasonKind discriminates the source of a propagation.
type reasonKind uint8

const (
	reasonNone reasonKind = iota // decision or top-level fact
	reasonClause
	reasonBinary
	reasonXor
	reasonBNN
)

// reason records why a literal sits on the trail. It is a tagged union with
// small inline storage: clause propagations carry the arena offset, binary
// propagations the implying (false) literal, XOR propagations the matrix and
// row numbers.
type reason struct {
	kind     reasonKind
	red      bool    // binary: redundancy flag
	hyperBin bool    // binary produced by hyper-binary resolution
	lit      Literal // binary: the other, false literal of the clause
	ref      ClauseRef
	matrix   uint32 // xor: matrix number (row lives in ref)
	id       int32  // binary: clause ID
}

func noReason() reason {
	return reason{kind: reasonNone, lit: LitUndef, ref: ClauseRefUndef}
}

func clauseReason(ref ClauseRef) reason {
	return reason{kind: reasonClause, lit: LitUndef, ref: ref}
}

func binaryReason(other Literal, red bool, id int32) reason {
	return reason{kind: reasonBinary, red: red, lit: other, ref: ClauseRefUndef, id: id}
}

func xorReason(matrix, row uint32) reason {
	return reason{kind: reasonXor, lit: LitUndef, ref: ClauseRef(row), matrix: matrix}
}

func (r reason) isNone() bool {
	return r.kind == reasonNone
}
