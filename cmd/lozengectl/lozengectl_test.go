package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lozenge/internal/config"
	"github.com/joshuapare/lozenge/internal/keyfile"
	"github.com/joshuapare/lozenge/internal/report"
	"github.com/joshuapare/lozenge/merge"
)

const exampleKeys = "5 3 8 1 9\n2 7 4 6 0\n"

func TestSortCommand(t *testing.T) {
	path := writeFile(t, "keys.txt", exampleKeys)
	out, err := runCLI(t, "sort", path)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n", out)
}

func TestSortCommand_Quiet(t *testing.T) {
	path := writeFile(t, "keys.txt", exampleKeys)
	out, err := runCLI(t, "sort", "-q", path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSortCommand_JSON(t *testing.T) {
	path := writeFile(t, "keys.txt", exampleKeys)
	out, err := runCLI(t, "sort", path, "--json", "--upper", "classic", "--lower", "classic", "--final-reverse", "--check")
	require.NoError(t, err)

	var got SortOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 10, got.Records)
	assert.Equal(t, "classic", got.Upper)
	assert.Equal(t, []int{9, 3, 5, 1, 7, 0, 8, 6, 2, 4}, got.Order)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got.Keys)
	assert.Len(t, got.Levels, 4)
	assert.GreaterOrEqual(t, got.Comparisons, uint64(9))
	require.GreaterOrEqual(t, len(got.Ascend), 4)
	assert.Equal(t, []int{9, 3, 1, 0}, got.Ascend[:4])
}

func TestSortCommand_Duplicates(t *testing.T) {
	path := writeFile(t, "keys.txt", "3,1,3,1")
	out, err := runCLI(t, "sort", path, "--json")
	require.NoError(t, err)

	var got SortOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []int{1, 3, 0, 2}, got.Order)
	// The default switch level is lowered to fit four records.
	assert.Equal(t, 2, got.SwitchLevel)
}

func TestSortCommand_CheckStableOverUnstable(t *testing.T) {
	path := writeFile(t, "keys.txt", "3 1 3 1 2 2 0 3 1 0 2 3 1 1 0 2 3 0 1 2 3")
	out, err := runCLI(t, "sort", path, "--json", "--check",
		"--upper", "count", "--lower", "switch", "--switch-level", "2")
	require.NoError(t, err)

	var got SortOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 21, got.Records)
	assert.True(t, slices.IsSorted(got.Keys))
}

func TestSortCommand_Errors(t *testing.T) {
	keys := writeFile(t, "keys.txt", exampleKeys)

	_, err := runCLI(t, "sort", keys, "--upper", "quick")
	assert.True(t, errors.Is(err, merge.ErrInvalidOptions), "got %v", err)

	_, err = runCLI(t, "sort", keys, "--switch-level", "9")
	assert.True(t, errors.Is(err, merge.ErrInvalidOptions), "got %v", err)

	bad := writeFile(t, "bad.txt", "1 two 3")
	_, err = runCLI(t, "sort", bad)
	assert.True(t, errors.Is(err, keyfile.ErrBadKey), "got %v", err)

	_, err = runCLI(t, "sort")
	require.Error(t, err)
}

func TestSortCommand_Config(t *testing.T) {
	keys := writeFile(t, "keys.txt", exampleKeys)
	conf := writeFile(t, "lozenge.toml", "[sort]\nupper = \"interlink\"\nlower = \"count\"\nswitch_level = 2\n")

	out, err := runCLI(t, "sort", keys, "--json", "--config", conf)
	require.NoError(t, err)
	var got SortOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "interlink", got.Upper)
	assert.Equal(t, "count", got.Lower)
	assert.Equal(t, 2, got.SwitchLevel)

	// Flags override the file.
	out, err = runCLI(t, "sort", keys, "--json", "--config", conf, "--upper", "count")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "count", got.Upper)

	bad := writeFile(t, "bad.toml", "[sort]\nupperr = \"dfs\"\n")
	_, err = runCLI(t, "sort", keys, "--config", bad)
	assert.True(t, errors.Is(err, config.ErrUnknownKey), "got %v", err)
}

func TestStepsCommand(t *testing.T) {
	out, err := runCLI(t, "steps", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "LOWER")

	out, err = runCLI(t, "steps", "10", "--json")
	require.NoError(t, err)
	var steps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &steps))
	require.Len(t, steps, 9)
	last := steps[len(steps)-1]
	assert.EqualValues(t, 0, last["Lower"])
	assert.EqualValues(t, 10, last["Upper"])

	_, err = runCLI(t, "steps", "-4")
	require.Error(t, err)
}

func TestBenchCommand(t *testing.T) {
	out, err := runCLI(t, "bench", "--size", "64", "--trials", "3", "--workers", "2",
		"--strategy", "anchor-skipper", "--strategy", "interlink", "--no-color", "--verify", "--per-level")
	require.NoError(t, err)
	assert.Contains(t, out, "STRATEGY")
	assert.Contains(t, out, "anchor-skipper")
	assert.Contains(t, out, "interlink")
	assert.Contains(t, out, "L5")
}

func TestBenchCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "bench", "--size", "100", "--trials", "2", "--workers", "1",
		"--pattern", "presorted", "--json")
	require.NoError(t, err)

	var rows []report.Row
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, len(merge.Strategies())+1)
	last := rows[len(rows)-1]
	assert.Equal(t, "anchor-skipper/anchor-skipless@4", last.Name)
	for _, r := range rows {
		assert.Equal(t, 2, r.Trials, r.Name)
		assert.Zero(t, r.Failures, r.Name)
	}
}

func TestBenchCommand_Errors(t *testing.T) {
	_, err := runCLI(t, "bench", "--pattern", "zigzag")
	assert.True(t, errors.Is(err, config.ErrUnknownPattern), "got %v", err)

	_, err = runCLI(t, "bench", "--strategy", "quick", "--size", "10", "--trials", "1")
	assert.True(t, errors.Is(err, merge.ErrInvalidOptions), "got %v", err)
}

func TestCheckCommand(t *testing.T) {
	out, err := runCLI(t, "check", "--max-exhaustive", "4", "--max-size", "40", "--size-step", "19",
		"--trials", "1", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "dfs/tree")
	assert.NotContains(t, out, "failed")
}

func TestCheckCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "check", "--max-exhaustive", "3", "--max-size", "20", "--size-step", "9",
		"--trials", "1", "--json")
	require.NoError(t, err)

	var results []CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, len(checkConfigs()))
	for _, r := range results {
		// 1 + 2 + 6 permutations plus 6 arrangements of {0, 1, 1}.
		assert.Equal(t, 15, r.Arrangements, r.Name)
		assert.Equal(t, 3, r.Trials, r.Name)
		assert.Empty(t, r.Error, r.Name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lozengectl dev")
	assert.Contains(t, out, "go: go1.")
	assert.Contains(t, out, "module: ")
}

func TestBuildInfo(t *testing.T) {
	d := buildInfo()
	// Test binaries carry no release version, so the linker default stays.
	assert.Equal(t, "dev", d.Version)
	assert.Equal(t, runtime.Version(), d.GoVersion)
	assert.NotEmpty(t, d.Module)

	saved := commit
	t.Cleanup(func() { commit = saved })
	commit = "abc1234"
	assert.Equal(t, "abc1234", buildInfo().Commit)
}

func TestGenCommand(t *testing.T) {
	out, err := runCLI(t, "gen", "5", "--pattern", "reversed", "--disruption", "0")
	require.NoError(t, err)
	assert.Equal(t, "4\n3\n2\n1\n0\n", out)

	path := filepath.Join(t.TempDir(), "keys.lzk")
	_, err = runCLI(t, "gen", "300", "--binary", "--nudges", "20", "-o", path)
	require.NoError(t, err)
	keys, err := keyfile.Load(path)
	require.NoError(t, err)
	assert.Len(t, keys, 300)

	// The generated file sorts.
	out, err = runCLI(t, "sort", path, "--json", "--check")
	require.NoError(t, err)
	var got SortOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, slices.IsSorted(got.Keys))

	_, err = runCLI(t, "gen", "5", "--pattern", "zigzag")
	assert.True(t, errors.Is(err, config.ErrUnknownPattern), "got %v", err)
}
