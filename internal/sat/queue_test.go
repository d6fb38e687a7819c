package sat

import (
	"reflect"
	"testing"
)

func TestQueue_Push_WithResizeAndRotation(t *testing.T) {
	q := &Queue[int]{
		ring:  []int{3, 4, 1, 2},
		start: 2,
		end:   2,
		mask:  3,
		size:  4,
	}

	q.Push(5)

	wantRing := []int{1, 2, 3, 4, 5, 0, 0, 0}
	if !reflect.DeepEqual(q.ring, wantRing) {
		t.Errorf("ring: want %v, got %v", wantRing, q.ring)
	}
	if q.start != 0 || q.end != 5 || q.size != 5 {
		t.Errorf("unexpected queue state: %+v", q)
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[pendingBin](2)
	for i := 0; i < 10; i++ {
		q.Push(pendingBin{ancestor: Literal(i), implied: Literal(i + 1)})
	}
	for i := 0; i < 10; i++ {
		got := q.Pop()
		if got.ancestor != Literal(i) {
			t.Errorf("pop %d: want ancestor %d, got %v", i, i, got.ancestor)
		}
	}
	if !q.IsEmpty() {
		t.Errorf("queue should be empty")
	}
}

func TestQueue_PopEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on empty pop")
		}
	}()
	NewQueue[int](4).Pop()
}
