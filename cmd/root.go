package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/ossim/ossim/sim"
	"github.com/ossim/ossim/sim/trace"
	"github.com/ossim/ossim/sim/workload"
)

var (
	// CLI flags for the run command
	seed          int64  // Seed for I/O decisions
	logLevel      string // Log verbosity level
	quantum       int64  // Overrides the quantum from the input file
	maxIterations int64  // Scheduler loop safety cap
	horizon       int64  // Clock safety cap (0 = unbounded)
	replacement   string // Page replacement policy
	traceLevel    string // Trace verbosity ("none" or "events")
	traceDB       string // SQLite file to persist the trace into
	traceSummary  bool   // Print the trace summary after the report
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ossim",
	Short: "Discrete-time simulator of a round-robin CPU scheduler, contended I/O devices and FIFO paging",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes the simulation described by an input file
var runCmd = &cobra.Command{
	Use:   "run <input-file>",
	Short: "Run the scheduling and memory simulation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := workload.Load(args[0])
		if err != nil {
			logrus.Fatalf("Failed to load input: %v", err)
		}
		logrus.Infof("Loaded %s: %d devices, %d processes", args[0], len(data.Devices), len(data.Processes))

		if cmd.Flags().Changed("quantum") {
			data.Config.Quantum = quantum
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		var st *trace.SimulationTrace
		if trace.TraceLevel(traceLevel) == trace.TraceLevelEvents || traceDB != "" || traceSummary {
			st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
		}

		report, err := sim.Run(data, sim.NewSimulationKey(seed), sim.RunOptions{
			Safety:      sim.SafetyConfig{MaxIterations: maxIterations, Horizon: horizon},
			Trace:       st,
			Replacement: replacement,
		})
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		report.Print(os.Stdout)

		if traceSummary {
			printTraceSummary(trace.Summarize(st))
		}
		if traceDB != "" {
			runID := persistTrace(traceDB, st)
			fmt.Fprintf(os.Stderr, "Trace run %s written to %s\n", runID, traceDB)
		}
		logrus.Info("Simulation complete.")
	},
}

func persistTrace(path string, st *trace.SimulationTrace) string {
	w, err := trace.NewSQLiteWriter(path)
	if err != nil {
		logrus.Fatalf("Failed to open trace db: %v", err)
	}
	atexit.Register(func() { w.Close() })
	runID, err := w.Write("", st)
	if err != nil {
		logrus.Fatalf("Failed to write trace: %v", err)
	}
	return runID
}

func printTraceSummary(s *trace.TraceSummary) {
	fmt.Println()
	fmt.Println("=== Trace Summary ===")
	fmt.Printf("Dispatches           : %d (preempted %d, blocked %d, finished %d)\n",
		s.TotalDispatches, s.Preempted, s.Blocked, s.Finished)
	fmt.Printf("Busy / Idle Ticks    : %d / %d\n", s.BusyTicks, s.IdleTicks)
	fmt.Printf("Device Starts        : %d\n", s.DeviceStarts)
	fmt.Printf("Device Queued        : %d\n", s.DeviceQueued)
	fmt.Printf("Device Completions   : %d\n", s.DeviceCompleted)
}

// Execute runs the CLI root command
func Execute() {
	logrus.StandardLogger().ExitFunc = atexit.Exit
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for I/O request, offset and device draws")
	runCmd.Flags().Int64Var(&quantum, "quantum", 0, "Override the time quantum from the input file")
	runCmd.Flags().Int64Var(&maxIterations, "max-iterations", 0,
		fmt.Sprintf("Scheduler loop safety cap, one iteration per dispatch or idle tick (0 = %d past the latest creation time)", sim.DefaultMaxIterations))
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "Abort if the clock passes this tick (0 = unbounded)")
	runCmd.Flags().StringVar(&replacement, "replacement", "fifo", "Page replacement policy (fifo)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Trace verbosity: none, events")
	runCmd.Flags().StringVar(&traceDB, "trace-db", "", "SQLite file to persist the event trace into")
	runCmd.Flags().BoolVar(&traceSummary, "trace-summary", false, "Print a summary of the event trace")

	rootCmd.AddCommand(runCmd)
}
