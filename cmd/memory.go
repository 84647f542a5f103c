package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ossim/ossim/sim"
	"github.com/ossim/ossim/sim/workload"
)

var memoryReplacement string

// memoryCmd runs only the page replacement simulation
var memoryCmd = &cobra.Command{
	Use:   "memory <input-file>",
	Short: "Report page replacements for the input's processes without scheduling them",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := workload.Load(args[0])
		if err != nil {
			logrus.Fatalf("Failed to load input: %v", err)
		}
		res, err := sim.SimulateMemory(data, memoryReplacement)
		if err != nil {
			logrus.Fatalf("Memory simulation failed: %v", err)
		}
		sim.PrintMemoryReport(os.Stdout, res)
	},
}

func init() {
	memoryCmd.Flags().StringVar(&memoryReplacement, "replacement", "fifo", "Page replacement policy (fifo)")
	rootCmd.AddCommand(memoryCmd)
}
