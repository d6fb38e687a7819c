package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hexel-sat/hexel/internal/dimacs"
	"github.com/hexel-sat/hexel/internal/sat"
)

var (
	flagDebug       bool
	flagCPUProfile  bool
	flagMemProfile  bool
	flagMetricsAddr string
	flagDratFile    string

	cfg = sat.DefaultConfig()
)

func main() {
	root := &cobra.Command{
		Use:   "hexel <instance.cnf[.gz]>",
		Short: "hexel is a CDCL SAT solver with XOR reasoning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(args[0])
		},
	}

	cfg.Bind(root.Flags())
	root.Flags().BoolVar(&flagDebug, "debug", false, "use debug log level")
	root.Flags().BoolVar(&flagCPUProfile, "cpuprof", false, "save pprof CPU profile in cpuprof")
	root.Flags().BoolVar(&flagMemProfile, "memprof", false, "save pprof memory profile in memprof")
	root.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	root.Flags().StringVar(&flagDratFile, "drat", "", "write the proof trace to this file")

	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func run(instanceFile string) error {
	if flagDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := cfg.Preflight(); err != nil {
		return err
	}

	if flagCPUProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if flagMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(flagMetricsAddr, mux); err != nil {
				logrus.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	s := sat.NewSolver(cfg)

	if flagDratFile != "" {
		f, err := os.Create(flagDratFile)
		if err != nil {
			return err
		}
		defer f.Close()
		s.SetTrace(sat.NewTraceWriter(f))
	}

	gzipped := strings.HasSuffix(instanceFile, ".gz")
	if err := dimacs.LoadDIMACS(instanceFile, gzipped, s); err != nil {
		return err
	}

	fmt.Printf("c variables:  %d\n", s.NumVariables())
	fmt.Printf("c clauses:    %d\n", s.NumLongIrred()+int(s.NumBinaries()))

	t := time.Now()
	status := s.Solve(nil)
	elapsed := time.Since(t)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n",
		s.SumConflicts(), float64(s.SumConflicts())/elapsed.Seconds())

	switch status {
	case sat.True:
		fmt.Println("s SATISFIABLE")
		printModel(s.Model())
	case sat.False:
		fmt.Println("s UNSATISFIABLE")
	default:
		fmt.Println("s UNKNOWN")
	}

	if flagMemProfile {
		f, err := os.Create("memprof")
		if err != nil {
			return err
		}
		defer f.Close()
		pprof.WriteHeapProfile(f)
	}
	return nil
}

func printModel(model []bool) {
	sb := strings.Builder{}
	sb.WriteString("v")
	for v, val := range model {
		if val {
			fmt.Fprintf(&sb, " %d", v+1)
		} else {
			fmt.Fprintf(&sb, " -%d", v+1)
		}
		if sb.Len() > 70 {
			fmt.Println(sb.String())
			sb.Reset()
			sb.WriteString("v")
		}
	}
	sb.WriteString(" 0")
	fmt.Println(sb.String())
}
