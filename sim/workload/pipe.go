package workload

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ossim/ossim/sim"
)

// maxLineBytes bounds one input line. Page reference strings can be long.
const maxLineBytes = 64 << 20

// LoadPipe reads a pipe-delimited simulation file.
func LoadPipe(path string) (*sim.SimulationData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening simulation file: %w", err)
	}
	defer f.Close()
	data, err := ParsePipe(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return data, nil
}

// ParsePipe parses the pipe-delimited format. Blank lines are skipped.
//
//	algorithm|quantum|policy|memory_size|page_size|alloc_pct|num_devices
//	name|capacity|operation_time                        (num_devices lines)
//	creation|pid|burst|priority|memory|pages[|io_chance] (one per process)
//
// Pages are separated by spaces or commas. A missing io_chance means 0.
func ParsePipe(r io.Reader) (*sim.SimulationData, error) {
	data := &sim.SimulationData{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo, records, devicesRead := 0, 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records++
		fields := splitFields(line)

		switch {
		case records == 1:
			cfg, err := parseConfigLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			data.Config = cfg
		case devicesRead < data.Config.NumDevices:
			dev, err := parseDeviceLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			data.Devices = append(data.Devices, dev)
			devicesRead++
		default:
			p, err := parseProcessLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			data.Processes = append(data.Processes, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading simulation file: %w", err)
	}
	if records == 0 {
		return nil, fmt.Errorf("empty simulation file")
	}
	return data, nil
}

func splitFields(line string) []string {
	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func parseConfigLine(f []string) (sim.SimulationConfig, error) {
	var cfg sim.SimulationConfig
	if len(f) != 7 {
		return cfg, fmt.Errorf("config line: expected 7 fields, got %d", len(f))
	}
	var err error
	cfg.Algorithm = f[0]
	if cfg.Quantum, err = parseInt64("quantum", f[1]); err != nil {
		return cfg, err
	}
	cfg.MemoryPolicy = f[2]
	if cfg.MemorySize, err = parseInt64("memory size", f[3]); err != nil {
		return cfg, err
	}
	if cfg.PageSize, err = parseInt64("page size", f[4]); err != nil {
		return cfg, err
	}
	if cfg.AllocationPercentage, err = strconv.ParseFloat(f[5], 64); err != nil {
		return cfg, fmt.Errorf("invalid allocation percentage %q: %w", f[5], err)
	}
	n, err := parseInt64("device count", f[6])
	if err != nil {
		return cfg, err
	}
	if n < 0 {
		return cfg, fmt.Errorf("device count must be non-negative, got %d", n)
	}
	cfg.NumDevices = int(n)
	return cfg, nil
}

func parseDeviceLine(f []string) (*sim.Device, error) {
	if len(f) != 3 {
		return nil, fmt.Errorf("device line: expected 3 fields, got %d", len(f))
	}
	capacity, err := parseInt64("device capacity", f[1])
	if err != nil {
		return nil, err
	}
	opTime, err := parseInt64("device operation time", f[2])
	if err != nil {
		return nil, err
	}
	return sim.NewDevice(f[0], int(capacity), opTime), nil
}

func parseProcessLine(f []string) (*sim.Process, error) {
	if len(f) != 6 && len(f) != 7 {
		return nil, fmt.Errorf("process line: expected 6 or 7 fields, got %d", len(f))
	}
	creation, err := parseInt64("creation time", f[0])
	if err != nil {
		return nil, err
	}
	pid, err := parseInt64("pid", f[1])
	if err != nil {
		return nil, err
	}
	burst, err := parseInt64("execution time", f[2])
	if err != nil {
		return nil, err
	}
	priority, err := parseInt64("priority", f[3])
	if err != nil {
		return nil, err
	}
	mem, err := parseInt64("memory", f[4])
	if err != nil {
		return nil, err
	}
	pages, err := ParsePages(f[5])
	if err != nil {
		return nil, err
	}
	var ioChance int64
	if len(f) == 7 && f[6] != "" {
		if ioChance, err = parseInt64("io chance", f[6]); err != nil {
			return nil, err
		}
	}
	return sim.NewProcess(int(pid), creation, burst, int(priority), mem, pages, int(ioChance)), nil
}

// ParsePages parses a page reference string separated by spaces and/or commas.
func ParsePages(s string) ([]int, error) {
	tokens := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	pages := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		page, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid page %q: %w", tok, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func parseInt64(name, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}

// FormatPipe writes data in the pipe-delimited format read by ParsePipe.
func FormatPipe(w io.Writer, data *sim.SimulationData) error {
	cfg := data.Config
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s|%d|%s|%d|%d|%s|%d\n", cfg.Algorithm, cfg.Quantum, cfg.MemoryPolicy,
		cfg.MemorySize, cfg.PageSize, strconv.FormatFloat(cfg.AllocationPercentage, 'f', -1, 64), len(data.Devices))
	for _, d := range data.Devices {
		fmt.Fprintf(bw, "%s|%d|%d\n", d.Name, d.Capacity, d.OperationTime)
	}
	for _, p := range data.Processes {
		pages := make([]string, len(p.PageSequence))
		for i, page := range p.PageSequence {
			pages[i] = strconv.Itoa(page)
		}
		fmt.Fprintf(bw, "%d|%d|%d|%d|%d|%s|%d\n", p.CreationTime, p.PID, p.ExecutionTime,
			p.Priority, p.MemoryNeeded, strings.Join(pages, " "), p.IOChance)
	}
	return bw.Flush()
}
