// Package testutil provides shared test infrastructure for the simulator.
// It holds the scripted random source and fixture helpers used across
// sim/ and its subpackages.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ScriptedRand replays fixed draws so scenario tests can pin every I/O
// decision. Intn and Int63n consume separate queues. An exhausted queue
// returns n-1, which never requests I/O for an io_chance below 100.
type ScriptedRand struct {
	Ints   []int
	Int63s []int64
}

func (s *ScriptedRand) Intn(n int) int {
	if len(s.Ints) == 0 {
		return n - 1
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	return v
}

func (s *ScriptedRand) Int63n(n int64) int64 {
	if len(s.Int63s) == 0 {
		return n - 1
	}
	v := s.Int63s[0]
	s.Int63s = s.Int63s[1:]
	return v
}

// TestdataPath resolves name inside the repository's testdata/ directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func TestdataPath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
}

// ReadTestdata loads a fixture from testdata/.
func ReadTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(TestdataPath(t, name))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return data
}
