package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocAndHeaderOps(t *testing.T) {
	a := &arena{}
	ref := a.alloc(clause(1, -2, 3), true, 2, 7)

	require.Equal(t, clause(1, -2, 3), a.lits(ref))
	require.Equal(t, 3, a.size(ref))
	require.True(t, a.isRedundant(ref))
	require.False(t, a.isTombstoned(ref))
	require.Equal(t, 2, a.glue(ref))
	require.Equal(t, int64(7), a.id(ref))

	// Header-only mutation must not disturb the literals.
	a.setTier(ref, 2)
	a.setGlue(ref, 5)
	a.setActivity(ref, 1.5)
	a.setTouched(ref, 42)
	a.setTTL(ref, true)
	require.Equal(t, 2, a.tier(ref))
	require.Equal(t, 5, a.glue(ref))
	require.Equal(t, float32(1.5), a.activity(ref))
	require.Equal(t, uint32(42), a.touched(ref))
	require.True(t, a.hasTTL(ref))
	require.Equal(t, clause(1, -2, 3), a.lits(ref))

	a.setTTL(ref, false)
	require.False(t, a.hasTTL(ref))
}

func TestArenaOffsetsStableAcrossAllocs(t *testing.T) {
	a := &arena{}
	ref1 := a.alloc(clause(1, 2, 3), false, 3, 1)
	lits1 := append([]Literal{}, a.lits(ref1)...)
	for i := 0; i < 100; i++ {
		a.alloc(clause(-1, -2, -3, 4), false, 4, int64(i+2))
	}
	require.Equal(t, lits1, a.lits(ref1), "offsets must survive growth")
}

func TestArenaConsolidate(t *testing.T) {
	a := &arena{}
	refs := []ClauseRef{}
	for i := 0; i < 10; i++ {
		refs = append(refs, a.alloc(clause(1, 2, 3+i), i%2 == 0, 3, int64(i+1)))
	}
	for i, ref := range refs {
		if i%3 == 0 {
			a.free(ref)
		}
	}

	// Record the expected surviving clauses with their metadata.
	type snap struct {
		lits []Literal
		red  bool
		glue int
		id   int64
	}
	want := map[ClauseRef]snap{}
	for i, ref := range refs {
		if i%3 != 0 {
			want[ref] = snap{
				lits: append([]Literal{}, a.lits(ref)...),
				red:  a.isRedundant(ref),
				glue: a.glue(ref),
				id:   a.id(ref),
			}
		}
	}

	remap := a.consolidate()
	require.Len(t, remap, len(want), "tombstoned refs must be absent from the map")
	for old, s := range want {
		nref, ok := remap[old]
		require.True(t, ok, "live clause %d missing from remap", old)
		got := snap{
			lits: a.lits(nref),
			red:  a.isRedundant(nref),
			glue: a.glue(nref),
			id:   a.id(nref),
		}
		if diff := cmp.Diff(s, got, cmp.AllowUnexported(snap{})); diff != "" {
			t.Errorf("clause %d mismatch (-want +got):\n%s", old, diff)
		}
	}
	require.Zero(t, a.wasted)
}

func TestArenaShrink(t *testing.T) {
	a := &arena{}
	ref := a.alloc(clause(1, 2, 3, 4), false, 4, 1)
	other := a.alloc(clause(5, 6), false, 2, 2)

	a.shrink(ref, 1) // drop literal 2
	require.ElementsMatch(t, clause(1, 4, 3), a.lits(ref))
	require.Equal(t, 4, a.capacity(ref))

	// Walking must still find the second clause after the shrink.
	seen := []ClauseRef{}
	a.forEach(func(r ClauseRef) { seen = append(seen, r) })
	require.Equal(t, []ClauseRef{ref, other}, seen)
}

func TestArenaDoubleFreeIsIdempotent(t *testing.T) {
	a := &arena{}
	ref := a.alloc(clause(1, 2, 3), false, 3, 1)
	a.free(ref)
	wasted := a.wasted
	a.free(ref)
	require.Equal(t, wasted, a.wasted)
}
