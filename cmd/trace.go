package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/ossim/ossim/sim/trace"
)

var (
	traceDBPath string
	traceRunID  string
)

// traceCmd inspects traces persisted with run --trace-db
var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect persisted event traces",
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List run IDs stored in a trace database",
	Run: func(cmd *cobra.Command, args []string) {
		w := openTraceDB()
		ids, err := w.Runs()
		if err != nil {
			logrus.Fatalf("Failed to list runs: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	},
}

var traceSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize one stored run",
	Run: func(cmd *cobra.Command, args []string) {
		if traceRunID == "" {
			logrus.Fatalf("--run is required")
		}
		w := openTraceDB()
		st, err := w.Load(traceRunID)
		if err != nil {
			logrus.Fatalf("Failed to load trace: %v", err)
		}
		printTraceSummary(trace.Summarize(st))
	},
}

func openTraceDB() *trace.SQLiteWriter {
	if traceDBPath == "" {
		logrus.Fatalf("--db is required")
	}
	w, err := trace.NewSQLiteWriter(traceDBPath)
	if err != nil {
		logrus.Fatalf("Failed to open trace db: %v", err)
	}
	atexit.Register(func() { w.Close() })
	return w
}

func init() {
	traceCmd.PersistentFlags().StringVar(&traceDBPath, "db", "", "SQLite trace database")
	traceSummaryCmd.Flags().StringVar(&traceRunID, "run", "", "Run ID to summarize")
	traceCmd.AddCommand(traceListCmd, traceSummaryCmd)
	rootCmd.AddCommand(traceCmd)
}
