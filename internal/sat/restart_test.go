package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLubySequence(t *testing.T) {
	want := []float64{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}
	got := []float64{}
	for x := 0; x < len(want); x++ {
		got = append(got, luby(2, x))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("luby sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReluctantDoubling(t *testing.T) {
	r := restartCtl{reluctantU: 1, reluctantV: 1}
	want := []int64{1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}
	got := []int64{}
	for range want {
		got = append(got, r.reluctantNext())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reluctant sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestGeometricPhaseGrowth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RestartType = RestartGeom
	cfg.RestartBase = 100
	cfg.RestartInc = 2

	r := newRestartCtl(&cfg)
	r.nextPhase(&cfg)
	first := r.maxConflictsThisPhase
	r.nextPhase(&cfg)
	second := r.maxConflictsThisPhase
	require.Equal(t, int64(200), first)
	require.Equal(t, int64(400), second)
}

func TestGlueRestartTrigger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RestartType = RestartGlue
	cfg.ShortTermHistorySize = 10
	cfg.LocalGlueMultiplier = 1.1
	cfg.BlockingRestart = false

	r := newRestartCtl(&cfg)
	r.nextPhase(&cfg)

	// A long run of low-glue conflicts must not trigger.
	for i := 0; i < 200; i++ {
		r.onConflict(2, 50)
	}
	require.False(t, r.shouldRestart(&cfg) && r.conflictsThisPhase < r.maxConflictsThisPhase,
		"healthy glues must not fire the glue trigger early")

	// A burst of terrible glues drives the short-term average above the
	// long-term one.
	r.conflictsThisPhase = 0
	for i := 0; i < 30; i++ {
		r.onConflict(60, 50)
	}
	require.True(t, r.shouldRestart(&cfg))
}

func TestBlockingRestartClearsShortHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RestartType = RestartGlue
	cfg.ShortTermHistorySize = 10
	cfg.BlockingRestart = true
	cfg.BlockingRestartMultip = 1.4

	r := newRestartCtl(&cfg)
	r.nextPhase(&cfg)
	for i := 0; i < 100; i++ {
		r.onConflict(10, 100)
	}
	require.True(t, r.glueShort.Valid(cfg.ShortTermHistorySize))

	// A trail far above the long-term average blocks the pending trigger.
	r.blockRestart(&cfg, 100*10)
	require.False(t, r.glueShort.Valid(cfg.ShortTermHistorySize))
}

func TestOuterRestartSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RestartBase = 10
	cfg.RestartOuterFactor = 3

	r := newRestartCtl(&cfg)
	require.False(t, r.shouldOuterRestart(29))
	require.True(t, r.shouldOuterRestart(30))

	r.nextOuter(&cfg, 30)
	require.Equal(t, int64(1), r.outerCount)
	require.Greater(t, r.nextOuterAt, int64(30))
}

func TestEMAWindowValidity(t *testing.T) {
	e := NewEMA(0.9)
	require.False(t, e.Valid(3))
	e.Add(10)
	e.Add(10)
	e.Add(10)
	require.True(t, e.Valid(3))
	require.InDelta(t, 10, e.Val(), 1e-9)

	e.Reset()
	require.False(t, e.Valid(1))
	e.Add(4)
	require.Equal(t, 4.0, e.Val(), "first sample seeds the average")
}
