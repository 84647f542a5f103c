// Package memory reports page-replacement behaviour of a process set under a
// local or global frame allocation policy. It runs independently of CPU
// scheduling and has no dependency on sim/.
package memory

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// GlobalPageStride separates page identities of different processes sharing
// one frame pool: page p of process pid becomes pid*GlobalPageStride + p.
const GlobalPageStride = 10000

// Config groups the memory parameters of a run.
type Config struct {
	Policy               string  // "local" (case-insensitive) or anything else for global
	MemorySize           int64   // bytes of physical memory (global policy)
	PageSize             int64   // bytes per page
	AllocationPercentage float64 // percent of a process's pages given frames (local policy)
	Replacement          string  // replacement policy name; empty selects FIFO
}

// IsLocal reports whether the config selects per-process frame pools.
func (c Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Policy), "local")
}

// Reference is one process's reference string.
type Reference struct {
	PID          int
	MemoryNeeded int64
	Pages        []int
}

// ProcessResult is the paging outcome of one process under the local policy.
type ProcessResult struct {
	PID          int
	Frames       int
	References   int
	Faults       int
	Replacements int
}

// Result is the outcome of a memory simulation.
type Result struct {
	Local             bool
	Replacement       string
	TotalFrames       int             // shared pool size (global) or sum of per-process frames (local)
	Processes         []ProcessResult // per-process results, local policy only
	TotalReferences   int
	TotalFaults       int
	TotalReplacements int
}

// LocalFrames is the frame allocation of one process under the local policy:
// floor(ceil(memoryNeeded/pageSize) * pct/100), at least 1.
func LocalFrames(memoryNeeded, pageSize int64, pct float64) int {
	if pageSize <= 0 {
		return 1
	}
	pages := math.Ceil(float64(memoryNeeded) / float64(pageSize))
	frames := int(math.Floor(pages * (pct / 100.0)))
	return max(frames, 1)
}

// GlobalFrames is the shared pool size under the global policy: memorySize/pageSize, at least 1.
func GlobalFrames(memorySize, pageSize int64) int {
	if pageSize <= 0 {
		return 1
	}
	return max(int(memorySize/pageSize), 1)
}

// EncodeGlobal maps a process-local page number into the shared page space.
func EncodeGlobal(pid, page int) int {
	return pid*GlobalPageStride + page
}

// Simulate runs the configured policy over refs in declaration order.
func Simulate(cfg Config, refs []Reference) (*Result, error) {
	if !ValidReplacementPolicies[strings.ToLower(cfg.Replacement)] {
		return nil, fmt.Errorf("unknown replacement policy %q", cfg.Replacement)
	}
	replacement := strings.ToLower(cfg.Replacement)
	if replacement == "" {
		replacement = ReplacementFIFO
	}
	if cfg.IsLocal() {
		return simulateLocal(cfg, replacement, refs)
	}
	return simulateGlobal(cfg, replacement, refs)
}

func simulateLocal(cfg Config, replacement string, refs []Reference) (*Result, error) {
	res := &Result{Local: true, Replacement: replacement}
	for _, ref := range refs {
		if len(ref.Pages) == 0 || cfg.PageSize <= 0 {
			logrus.Warnf("[memory] pid %d has no page references, skipped", ref.PID)
			continue
		}
		frames := LocalFrames(ref.MemoryNeeded, cfg.PageSize, cfg.AllocationPercentage)
		r, err := NewPageReplacer(replacement, frames)
		if err != nil {
			return nil, fmt.Errorf("pid %d: %w", ref.PID, err)
		}
		Replay(r, ref.Pages)
		pr := ProcessResult{
			PID:          ref.PID,
			Frames:       frames,
			References:   len(ref.Pages),
			Faults:       r.Faults(),
			Replacements: r.Replacements(),
		}
		logrus.Infof("[memory] pid %d: %d frames, %d faults, %d %s replacements",
			pr.PID, pr.Frames, pr.Faults, pr.Replacements, replacement)
		res.Processes = append(res.Processes, pr)
		res.TotalFrames += frames
		res.TotalReferences += pr.References
		res.TotalFaults += pr.Faults
		res.TotalReplacements += pr.Replacements
	}
	return res, nil
}

func simulateGlobal(cfg Config, replacement string, refs []Reference) (*Result, error) {
	var combined []int
	for _, ref := range refs {
		for _, page := range ref.Pages {
			if page < 0 || page >= GlobalPageStride {
				return nil, fmt.Errorf("pid %d: page %d outside [0,%d) cannot be encoded for the global pool",
					ref.PID, page, GlobalPageStride)
			}
			combined = append(combined, EncodeGlobal(ref.PID, page))
		}
	}

	frames := GlobalFrames(cfg.MemorySize, cfg.PageSize)
	r, err := NewPageReplacer(replacement, frames)
	if err != nil {
		return nil, err
	}
	Replay(r, combined)
	logrus.Infof("[memory] global pool: %d frames, %d faults, %d %s replacements",
		frames, r.Faults(), r.Replacements(), replacement)
	return &Result{
		Local:             false,
		Replacement:       replacement,
		TotalFrames:       frames,
		TotalReferences:   len(combined),
		TotalFaults:       r.Faults(),
		TotalReplacements: r.Replacements(),
	}, nil
}
