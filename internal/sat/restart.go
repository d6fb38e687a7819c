package sat

import "math"

// restartCtl implements the two nested restart layers: inner restarts driven
// by the rotating strategy, and outer restarts that reseed the RNG and reset
// the inner state.
type restartCtl struct {
	strategy RestartType

	// Glue trigger histories.
	glueShort EMA // short-term window of learnt glues
	glueLong  EMA // long-term window
	trailAvg  EMA // long-term trail depth, for the blocking check

	// Conflict budget of the current inner epoch.
	conflictsThisPhase int64
	maxConflictsThisPhase int64

	// Geometric state.
	geomPhaseSize float64

	// Luby state.
	lubyLoop int

	// Reluctant doubling state.
	reluctantU int64
	reluctantV int64

	// Outer restart bookkeeping.
	nextOuterAt int64
	outerCount  int64

	// Alternation state for glue+geom.
	geomPhase bool
}

func newRestartCtl(cfg *Config) restartCtl {
	r := restartCtl{
		strategy:   cfg.RestartType,
		glueShort:  NewEMA(1 - 2/float64(cfg.ShortTermHistorySize+1)),
		glueLong:   NewEMA(1 - 2/float64(cfg.ShortTermHistorySize*100+1)),
		trailAvg:   NewEMA(0.999),
		geomPhaseSize: float64(cfg.RestartBase),
		reluctantU: 1,
		reluctantV: 1,
	}
	r.maxConflictsThisPhase = cfg.RestartBase
	r.nextOuterAt = int64(float64(cfg.RestartBase) * cfg.RestartOuterFactor)
	return r
}

// luby computes the standard reluctant sequence 1,1,2,1,1,2,4,...
func luby(y float64, x int) float64 {
	size, seq := 1, 0
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) / 2
		seq--
		x = x % size
	}
	return math.Pow(y, float64(seq))
}

// reluctantNext advances the (u, v) pair of the reluctant doubling sequence
// and returns the new budget scale.
func (r *restartCtl) reluctantNext() int64 {
	if r.reluctantU&-r.reluctantU == r.reluctantV {
		r.reluctantU++
		r.reluctantV = 1
	} else {
		r.reluctantV *= 2
	}
	return r.reluctantV
}

// onConflict records the glue of a freshly learnt clause and the trail depth
// at conflict time.
func (r *restartCtl) onConflict(glue int, trailLen int) {
	r.conflictsThisPhase++
	r.glueShort.Add(float64(glue))
	r.glueLong.Add(float64(glue))
	r.trailAvg.Add(float64(trailLen))
}

// blockRestart implements the blocking check: a trail far above its
// long-term average suggests the solver is close to a model, so the pending
// glue trigger is suppressed by clearing the short-term history.
func (r *restartCtl) blockRestart(cfg *Config, trailLen int) {
	if !cfg.BlockingRestart {
		return
	}
	if !r.trailAvg.Valid(cfg.ShortTermHistorySize) {
		return
	}
	if float64(trailLen) > r.trailAvg.Val()*cfg.BlockingRestartMultip {
		r.glueShort.Reset()
	}
}

// shouldRestart reports whether the current inner epoch is over.
func (r *restartCtl) shouldRestart(cfg *Config) bool {
	strategy := r.strategy
	if strategy == RestartGlueGeom {
		if r.geomPhase {
			strategy = RestartGeom
		} else {
			strategy = RestartGlue
		}
	}

	switch strategy {
	case RestartNever:
		return false
	case RestartGlue:
		if !r.glueShort.Valid(cfg.ShortTermHistorySize) {
			return false
		}
		if r.glueShort.Val() > cfg.LocalGlueMultiplier*r.glueLong.Val() {
			return true
		}
		// Glue phases still end on a conflict budget so rotation advances.
		return r.conflictsThisPhase >= r.maxConflictsThisPhase
	default:
		return r.conflictsThisPhase >= r.maxConflictsThisPhase
	}
}

// nextPhase starts a new inner epoch and computes its conflict budget.
func (r *restartCtl) nextPhase(cfg *Config) {
	r.conflictsThisPhase = 0
	r.glueShort.Reset()

	if r.strategy == RestartGlueGeom {
		r.geomPhase = !r.geomPhase
	}

	switch r.strategy {
	case RestartLuby:
		if cfg.RestartReluctant {
			r.maxConflictsThisPhase = r.reluctantNext() * cfg.RestartBase
		} else {
			r.maxConflictsThisPhase = int64(luby(2, r.lubyLoop) * float64(cfg.RestartBase))
			r.lubyLoop++
		}
	case RestartGeom, RestartGlueGeom:
		r.geomPhaseSize *= cfg.RestartInc
		r.maxConflictsThisPhase = int64(r.geomPhaseSize)
	default:
		r.maxConflictsThisPhase = cfg.RestartBase
	}
	if r.maxConflictsThisPhase < cfg.RestartBase {
		r.maxConflictsThisPhase = cfg.RestartBase
	}
}

// shouldOuterRestart reports whether the outer reseeding restart is due.
func (r *restartCtl) shouldOuterRestart(sumConflicts int64) bool {
	return sumConflicts >= r.nextOuterAt
}

// nextOuter schedules the following outer restart and resets inner state.
func (r *restartCtl) nextOuter(cfg *Config, sumConflicts int64) {
	r.outerCount++
	scale := r.reluctantNext()
	r.nextOuterAt = sumConflicts +
		int64(float64(cfg.RestartBase)*cfg.RestartOuterFactor*float64(scale))
	r.geomPhaseSize = float64(cfg.RestartBase)
	r.lubyLoop = 0
	r.glueShort.Reset()
	r.glueLong.Reset()
	r.nextPhase(cfg)
}
