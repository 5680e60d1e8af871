package merge

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshuapare/lozenge/mergestep"
)

// StrategyKind selects the merge strategy used for a level.
type StrategyKind int

const (
	// StrategySwitch is the classic switch-optimized merge. It compares the
	// tails first so that the side ending last needs no bound check.
	// Not stable. Builds no frontier chains.
	StrategySwitch StrategyKind = iota

	// StrategyCount terminates on remaining counts. Stable.
	StrategyCount

	// StrategyInterlink cross-links each tail to the other run's head and
	// terminates on identity. Stable.
	StrategyInterlink

	// StrategyClassic compares heads once, then runs a classic loop that
	// keeps the frontier chains up to date.
	StrategyClassic

	// StrategyAnchorClassic derives head/tail/anchor relations from one
	// anchor comparison, then runs the classic loop.
	StrategyAnchorClassic

	// StrategyAnchorSkipless uses the anchor relations inside the loop: it
	// jumps straight to an anchor when the prefix before it is proven, and
	// reuses known relations instead of comparing. No block skipping.
	StrategyAnchorSkipless

	// StrategyAnchorSkipper trims the frontier chains against the opposite
	// head and skips whole dominated blocks in the main loop.
	// Best for: upper levels, presorted input (default upper strategy).
	StrategyAnchorSkipper

	// StrategyLegacy is the block-skipping merge without anchor shortcuts.
	StrategyLegacy

	// StrategyDFS is the oldest dominance strategy. Supports UpperLozenge
	// and DFSTree. Cannot be mixed with other strategies.
	StrategyDFS

	numStrategies
)

var strategyNames = [numStrategies]string{
	StrategySwitch:         "switch",
	StrategyCount:          "count",
	StrategyInterlink:      "interlink",
	StrategyClassic:        "classic",
	StrategyAnchorClassic:  "anchor-classic",
	StrategyAnchorSkipless: "anchor-skipless",
	StrategyAnchorSkipper:  "anchor-skipper",
	StrategyLegacy:         "legacy",
	StrategyDFS:            "dfs",
}

func (k StrategyKind) String() string {
	if k < 0 || k >= numStrategies {
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
	return strategyNames[k]
}

// Stable reports whether the strategy preserves the input order of equal keys.
func (k StrategyKind) Stable() bool {
	return k != StrategySwitch
}

// Strategies returns every strategy kind in declaration order.
func Strategies() []StrategyKind {
	out := make([]StrategyKind, numStrategies)
	for i := range out {
		out[i] = StrategyKind(i)
	}
	return out
}

// ParseStrategy maps a strategy name such as "anchor-skipper" to its kind.
func ParseStrategy(name string) (StrategyKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	for k, s := range strategyNames {
		if s == n {
			return StrategyKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, name)
}

type family int

const (
	familyBaseline family = iota
	familyFrontier
	familyDFS
)

func (k StrategyKind) family() family {
	switch k {
	case StrategySwitch, StrategyCount, StrategyInterlink:
		return familyBaseline
	case StrategyDFS:
		return familyDFS
	default:
		return familyFrontier
	}
}

func (f family) String() string {
	switch f {
	case familyBaseline:
		return "baseline"
	case familyDFS:
		return "dfs"
	default:
		return "frontier"
	}
}

const (
	// defaultSwitchLevel is the level from which the upper strategy takes
	// over. Below it runs are short and the block skip rarely pays.
	defaultSwitchLevel = 4
)

// Options configures a sort.
//
// Use DefaultOptions() for the preferred blend.
type Options struct {
	// Upper is the strategy for steps with Level >= SwitchLevel.
	// Default: StrategyAnchorSkipper
	Upper StrategyKind

	// Lower is the strategy for steps with Level < SwitchLevel.
	// Must belong to the same family as Upper when both are used.
	// Default: StrategyAnchorSkipless
	Lower StrategyKind

	// SwitchLevel is the first level merged with Upper.
	// 0 merges every level with Upper; mergestep.Levels(size) merges every
	// level with Lower. Values outside [0, Levels(size)] are rejected.
	// Default: 4
	SwitchLevel int

	// DisableBlockSkip turns off the single-comparison block lookahead of
	// AnchorSkipper and Legacy: a side that leaves a block root steps
	// record by record until the next root.
	// Default: false
	DisableBlockSkip bool

	// UpperLozenge trims and re-appends the NE/NW chains (suffix and prefix
	// maxima) in the DFS strategy, which is what makes them available after
	// FinalReverse. DFS only.
	// Default: false
	UpperLozenge bool

	// DFSTree links every record dropped from a frontier chain to its
	// nearest dominating record, turning the ascend links into a DFS forest.
	// DFS only, and not combinable with UpperLozenge.
	// Default: false
	DFSTree bool

	// FinalReverse reverses the final frontier chains so that the ascend
	// chain is rooted at record 0 and the descend chain at record n-1.
	// Requires a strategy that builds frontier chains.
	// Default: false
	FinalReverse bool

	// CheckInvariants re-checks derived comparison results, trimmed block
	// lists and frontier chains against keys at every step. Violations
	// panic with *InvariantError. Slow; meant for tests and the check CLI.
	// Default: false
	CheckInvariants bool

	// Counter receives one Count call per key comparison. May be nil.
	Counter Counter

	// StepHook, when set, is called after each merge with the step and the
	// merged Run, before the Run is pushed back.
	StepHook func(step mergestep.Step, run Run)

	// Logger receives per-step debug records. May be nil.
	Logger *slog.Logger
}

// DefaultOptions returns the preferred blend: AnchorSkipper above level 4,
// AnchorSkipless below.
func DefaultOptions() Options {
	return Options{
		Upper:       StrategyAnchorSkipper,
		Lower:       StrategyAnchorSkipless,
		SwitchLevel: defaultSwitchLevel,
	}
}

// Single returns options that merge every level with kind.
func Single(kind StrategyKind) Options {
	return Options{Upper: kind, Lower: kind}
}

// ForSize returns a copy of o with SwitchLevel lowered to the number of
// merge levels for size, so that a blend configured for large inputs can
// also sort small ones.
func (o Options) ForSize(size int) Options {
	o.SwitchLevel = min(o.SwitchLevel, mergestep.Levels(size))
	return o
}

// Validate checks the options for a sort of size records.
func (o Options) Validate(size int) error {
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidOptions, size)
	}
	for _, k := range []StrategyKind{o.Upper, o.Lower} {
		if k < 0 || k >= numStrategies {
			return fmt.Errorf("%w: unknown strategy kind %d", ErrInvalidOptions, int(k))
		}
	}
	levels := mergestep.Levels(size)
	if o.SwitchLevel < 0 || o.SwitchLevel > levels {
		return fmt.Errorf("%w: switch level %d outside [0, %d] for %d records",
			ErrInvalidOptions, o.SwitchLevel, levels, size)
	}

	used := o.effective(size)
	fam := used[0].family()
	for _, k := range used[1:] {
		if k.family() != fam {
			return fmt.Errorf("%w: cannot mix %s (%s) with %s (%s)",
				ErrInvalidOptions, used[0], fam, k, k.family())
		}
	}

	if (o.DFSTree || o.UpperLozenge) && fam != familyDFS {
		return fmt.Errorf("%w: DFS tree and upper lozenge require the dfs strategy at every level", ErrInvalidOptions)
	}
	if o.DFSTree && o.UpperLozenge {
		return fmt.Errorf("%w: DFS tree cannot be combined with upper lozenge", ErrInvalidOptions)
	}
	if o.FinalReverse && fam == familyBaseline {
		return fmt.Errorf("%w: final reverse requires frontier chains, %s builds none", ErrInvalidOptions, used[0])
	}
	return nil
}

// effective returns the strategy kinds that will actually run.
func (o Options) effective(size int) []StrategyKind {
	levels := mergestep.Levels(size)
	var used []StrategyKind
	if o.SwitchLevel < levels || levels == 0 {
		used = append(used, o.Upper)
	}
	if o.SwitchLevel > 0 {
		used = append(used, o.Lower)
	}
	return used
}
