package sat

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// RestartType selects the inner restart strategy.
type RestartType uint8

const (
	RestartGlue RestartType = iota
	RestartGeom
	RestartLuby
	RestartGlueGeom
	RestartNever
)

func parseRestartType(s string) (RestartType, error) {
	switch strings.ToLower(s) {
	case "glue":
		return RestartGlue, nil
	case "geom":
		return RestartGeom, nil
	case "luby":
		return RestartLuby, nil
	case "glue+geom", "gluegeom":
		return RestartGlueGeom, nil
	case "never":
		return RestartNever, nil
	}
	return 0, errors.Errorf("unknown restart type %q", s)
}

// BranchStrategy selects the variable ordering used for decisions.
type BranchStrategy uint8

const (
	BranchVSIDSX BranchStrategy = iota // EVSIDS, aggressive decay
	BranchVSIDS1                       // EVSIDS, slow decay
	BranchVSIDS2                       // EVSIDS, fast decay
	BranchMaple1                       // Maple, small initial step size
	BranchMaple2                       // Maple, large initial step size
)

func (b BranchStrategy) isMaple() bool {
	return b == BranchMaple1 || b == BranchMaple2
}

func parseBranchStrategy(s string) (BranchStrategy, error) {
	switch strings.ToLower(s) {
	case "vsidsx":
		return BranchVSIDSX, nil
	case "vsids1":
		return BranchVSIDS1, nil
	case "vsids2":
		return BranchVSIDS2, nil
	case "maple1":
		return BranchMaple1, nil
	case "maple2":
		return BranchMaple2, nil
	}
	return 0, errors.Errorf("unknown branch strategy %q", s)
}

// PolarityMode selects how decision phases are chosen.
type PolarityMode uint8

const (
	PolarityAuto PolarityMode = iota // saved phase
	PolarityPos
	PolarityNeg
	PolarityRandom
	PolarityBest   // phase at the time of the longest trail
	PolarityStable // snapshot taken at the last outer restart
)

func parsePolarityMode(s string) (PolarityMode, error) {
	switch strings.ToLower(s) {
	case "auto", "saved":
		return PolarityAuto, nil
	case "pos", "positive":
		return PolarityPos, nil
	case "neg", "negative":
		return PolarityNeg, nil
	case "random", "rnd":
		return PolarityRandom, nil
	case "best":
		return PolarityBest, nil
	case "stable":
		return PolarityStable, nil
	}
	return 0, errors.Errorf("unknown polarity mode %q", s)
}

// Config is the flat option struct for the solver. Zero values are not
// meaningful; start from DefaultConfig.
type Config struct {
	// Restart.
	RestartType           RestartType
	RestartBase           int64
	RestartInc            float64
	RestartOuterFactor    float64
	RestartReluctant      bool
	LocalGlueMultiplier   float64
	ShortTermHistorySize  int64
	BlockingRestart       bool
	BlockingRestartMultip float64

	// Branching.
	StrategySetup    []BranchStrategy
	PolarityMode     PolarityMode
	PolarStableEveryN int
	PolarBestMultipN  int
	RandomPolarityFreq float64 // chance of a random phase under auto modes

	// Reduce-DB.
	EveryLev1Reduce        uint32
	EveryLev2Reduce        uint32
	EveryLev3Reduce        uint32 // arena consolidation cadence
	RatioKeepClauses       [3]float64
	MustTouchLev1Within    uint32
	TernaryKeepMult        float64
	GluePutLev0IfBelowOrEq int
	GluePutLev1IfBelowOrEq int
	MaxTempLev2Clauses     int
	IncMaxTempLev2Clauses  float64

	// Conflict analysis.
	DoRecursiveMinim    bool
	DoMinimRedMore      bool
	MaxSizeMoreMinim    int
	MaxGlueMoreMinim    int
	UpdateGluesOnAnalyze bool
	ProtectIfImprovedGlueBelow int
	MaxGlue             int

	// Chronological backtracking. Negative disables.
	DiffDeclevForChrono int

	// Budgets.
	MaxTime      time.Duration
	MaxConflicts int64
	MaxBogoprops int64
	TermintEveryN int64 // poll the interrupt flag every N conflicts

	// Hyper-binary resolution during level-1 probing propagation.
	DoHyperBinRes bool

	// Diagnostic verbosity; zero keeps the solver quiet.
	Verbosity int

	// RNG seed for the outer restart reseeding schedule.
	Seed int64

	// Staging fields for flag-bound enums, resolved by Preflight.
	restartTypeStr   string
	polarityModeStr  string
	strategySetupStr string
}

// DefaultConfig returns the tuned default configuration.
func DefaultConfig() Config {
	return Config{
		RestartType:           RestartGlueGeom,
		RestartBase:           100,
		RestartInc:            1.1,
		RestartOuterFactor:    30,
		RestartReluctant:      true,
		LocalGlueMultiplier:   1.2,
		ShortTermHistorySize:  50,
		BlockingRestart:       true,
		BlockingRestartMultip: 1.4,

		StrategySetup: []BranchStrategy{
			BranchVSIDSX, BranchMaple1, BranchVSIDS1, BranchMaple2, BranchVSIDS2,
		},
		PolarityMode:       PolarityAuto,
		PolarStableEveryN:  4,
		PolarBestMultipN:   8,
		RandomPolarityFreq: 0,

		EveryLev1Reduce:        10000,
		EveryLev2Reduce:        1000,
		EveryLev3Reduce:        30000,
		RatioKeepClauses:       [3]float64{0, 0.5, 0.5},
		MustTouchLev1Within:    30000,
		TernaryKeepMult:        3,
		GluePutLev0IfBelowOrEq: 3,
		GluePutLev1IfBelowOrEq: 6,
		MaxTempLev2Clauses:     30000,
		IncMaxTempLev2Clauses:  1.04,

		DoRecursiveMinim:           true,
		DoMinimRedMore:             true,
		MaxSizeMoreMinim:           30,
		MaxGlueMoreMinim:           6,
		UpdateGluesOnAnalyze:       true,
		ProtectIfImprovedGlueBelow: 30,
		MaxGlue:                    100,

		DiffDeclevForChrono: 100,

		MaxTime:       -1,
		MaxConflicts:  -1,
		MaxBogoprops:  -1,
		TermintEveryN: 1000,

		DoHyperBinRes: false,
		Verbosity:     0,
		Seed:          0,
	}
}

// Bind registers the user-visible options on the given flag set. The flags
// mutate cfg in place on parse, except for the enum options which are parsed
// by Preflight from the string fields below.
func (cfg *Config) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&cfg.restartTypeStr, "restart", "glue+geom",
		"restart strategy: glue, geom, luby, glue+geom, never")
	flags.Int64Var(&cfg.RestartBase, "restart-base", cfg.RestartBase,
		"base conflict budget of the first restart interval")
	flags.Float64Var(&cfg.RestartInc, "restart-inc", cfg.RestartInc,
		"geometric restart interval multiplier")
	flags.BoolVar(&cfg.BlockingRestart, "blocking-restart", cfg.BlockingRestart,
		"suppress glue restarts while the trail is unusually deep")
	flags.StringVar(&cfg.polarityModeStr, "polarity", "auto",
		"decision phase: auto, pos, neg, random, best, stable")
	flags.StringVar(&cfg.strategySetupStr, "branch-setup", "vsidsx,maple1,vsids1,maple2,vsids2",
		"ordered comma-separated branching rotation")
	flags.IntVar(&cfg.DiffDeclevForChrono, "chrono", cfg.DiffDeclevForChrono,
		"level gap that triggers chronological backtracking; negative disables")
	flags.Int64Var(&cfg.MaxConflicts, "max-conflicts", cfg.MaxConflicts,
		"conflict budget; negative means unlimited")
	flags.DurationVar(&cfg.MaxTime, "max-time", cfg.MaxTime,
		"wall clock budget; negative means unlimited")
	flags.IntVar(&cfg.Verbosity, "verb", cfg.Verbosity,
		"diagnostic verbosity")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed,
		"random seed")
}

// Preflight validates the configuration and resolves flag-bound enums.
func (cfg *Config) Preflight() error {
	if cfg.restartTypeStr != "" {
		rt, err := parseRestartType(cfg.restartTypeStr)
		if err != nil {
			return err
		}
		cfg.RestartType = rt
	}
	if cfg.polarityModeStr != "" {
		pm, err := parsePolarityMode(cfg.polarityModeStr)
		if err != nil {
			return err
		}
		cfg.PolarityMode = pm
	}
	if cfg.strategySetupStr != "" {
		setup := []BranchStrategy{}
		for _, part := range strings.Split(cfg.strategySetupStr, ",") {
			bs, err := parseBranchStrategy(strings.TrimSpace(part))
			if err != nil {
				return err
			}
			setup = append(setup, bs)
		}
		cfg.StrategySetup = setup
	}
	if cfg.RestartBase <= 0 {
		return errors.New("restart-base must be positive")
	}
	if cfg.RestartInc < 1 {
		return errors.New("restart-inc must be at least 1")
	}
	if len(cfg.StrategySetup) == 0 {
		return errors.New("branching rotation must not be empty")
	}
	for i, r := range cfg.RatioKeepClauses {
		if r < 0 || r > 1 {
			return errors.Errorf("ratio_keep_clauses[%d] out of [0,1]", i)
		}
	}
	if cfg.MaxGlue < 2 {
		return errors.New("max glue must be at least 2")
	}
	return nil
}
