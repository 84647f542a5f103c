package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ossim/ossim/sim/workload"
)

var (
	genConfig = workload.DefaultGeneratorConfig()
	genFormat     string
	genOutput     string
	genConfigPath string
)

// generateCmd writes a synthetic input file
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic simulation input",
	Run: func(cmd *cobra.Command, args []string) {
		if genConfigPath != "" {
			loadGeneratorConfig(cmd.Flags())
		}
		data, err := workload.Generate(genConfig)
		if err != nil {
			logrus.Fatalf("Generation failed: %v", err)
		}

		out := os.Stdout
		if genOutput != "" {
			f, err := os.Create(genOutput)
			if err != nil {
				logrus.Fatalf("Failed to create %s: %v", genOutput, err)
			}
			defer f.Close()
			out = f
		}

		switch genFormat {
		case "yaml":
			b, err := workload.SpecFromSimulationData(data).Marshal()
			if err != nil {
				logrus.Fatalf("YAML marshal failed: %v", err)
			}
			if _, err := out.Write(b); err != nil {
				logrus.Fatalf("Write failed: %v", err)
			}
		case "pipe":
			if err := workload.FormatPipe(out, data); err != nil {
				logrus.Fatalf("Write failed: %v", err)
			}
		default:
			logrus.Fatalf("Unknown format %q (yaml, pipe)", genFormat)
		}
	},
}

// loadGeneratorConfig replaces genConfig with the YAML file's values, then
// reapplies flags set on the command line so they take precedence.
func loadGeneratorConfig(flags *pflag.FlagSet) {
	changed := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) { changed[f.Name] = f.Value.String() })

	cfg, err := workload.LoadGeneratorConfig(genConfigPath)
	if err != nil {
		logrus.Fatalf("Failed to load generator config: %v", err)
	}
	genConfig = cfg
	for name, value := range changed {
		if err := flags.Set(name, value); err != nil {
			logrus.Fatalf("Failed to apply --%s: %v", name, err)
		}
	}
	logrus.Infof("Loaded generator config %s", genConfigPath)
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFormat, "format", "yaml", "Output format: yaml, pipe")
	f.StringVarP(&genOutput, "output", "o", "", "Output file (default stdout)")
	f.StringVar(&genConfigPath, "config", "", "YAML generator config; explicit flags override it")
	f.Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Seed for workload generation")
	f.Int64Var(&genConfig.Quantum, "quantum", genConfig.Quantum, "Time quantum")
	f.StringVar(&genConfig.MemoryPolicy, "memory-policy", genConfig.MemoryPolicy, "Memory policy: local, global")
	f.Int64Var(&genConfig.MemorySize, "memory-size", genConfig.MemorySize, "Physical memory in bytes")
	f.Int64Var(&genConfig.PageSize, "page-size", genConfig.PageSize, "Page size in bytes")
	f.Float64Var(&genConfig.AllocationPercentage, "allocation", genConfig.AllocationPercentage, "Local policy frame allocation percentage")
	f.IntVar(&genConfig.NumDevices, "devices", genConfig.NumDevices, "Number of devices")
	f.IntVar(&genConfig.NumProcesses, "processes", genConfig.NumProcesses, "Number of processes")
	f.Int64Var(&genConfig.ArrivalRange[1], "max-arrival", genConfig.ArrivalRange[1], "Latest arrival tick")
	f.Int64Var(&genConfig.BurstRange[0], "min-burst", genConfig.BurstRange[0], "Shortest CPU burst")
	f.Int64Var(&genConfig.BurstRange[1], "max-burst", genConfig.BurstRange[1], "Longest CPU burst")
	f.IntVar(&genConfig.IOChanceRange[1], "max-io-chance", genConfig.IOChanceRange[1], "Highest per-dispatch I/O chance")
	rootCmd.AddCommand(generateCmd)
}
