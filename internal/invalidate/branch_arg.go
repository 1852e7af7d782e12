package invalidate

import (
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

// BranchArgKind distinguishes the three ways the -b/-B flags can narrow an
// invalidate (or, later, a run target): every branch, just the baseline, or
// only branches matching specific pins.
type BranchArgKind int

const (
	BranchArgEmpty BranchArgKind = iota
	BranchArgBaseline
	BranchArgSpecified
)

// BranchPair is one "Key.Val" pin parsed out of a -b flag.
type BranchPair struct {
	Key, Value string
}

// BranchArg is the parsed form of the -b/--branch (repeatable) and
// -B/--baseline flags.
type BranchArg struct {
	Kind  BranchArgKind
	Pairs []BranchPair
}

// ParseBranchArg turns the raw -B and -b flag values into a BranchArg.
// "Baseline.baseline" given literally as the sole -b value is treated the
// same as -B, accepting that shorthand alongside the dedicated flag.
func ParseBranchArg(baseline bool, branchFlags []string) (BranchArg, error) {
	if baseline || (len(branchFlags) == 1 && branchFlags[0] == "Baseline.baseline") {
		return BranchArg{Kind: BranchArgBaseline}, nil
	}
	if len(branchFlags) == 0 {
		return BranchArg{Kind: BranchArgEmpty}, nil
	}

	pairs := make([]BranchPair, 0, 8)
	for _, flag := range branchFlags {
		for _, kv := range strings.Split(flag, string(branch.BranchDelim)) {
			k, v, ok := strings.Cut(kv, string(branch.BranchKVDelim))
			if !ok {
				return BranchArg{}, rerrors.New(rerrors.KindInvalidBranchString,
					"invalid branch flag %q (should be formatted 'Key1.Val1[+Key2.Val2...]')", flag)
			}
			pairs = append(pairs, BranchPair{Key: k, Value: v})
		}
	}
	return BranchArg{Kind: BranchArgSpecified, Pairs: pairs}, nil
}

// ToBranchSpec builds the BranchSpec a run target should be restricted to.
// Only BranchArgSpecified contributes pins; Empty and Baseline both mean
// "no restriction" here (baseline restriction for invalidation is handled
// separately by Invalidate, not by narrowing a run's target plan). It is an
// error to specify the same branchpoint twice on the command line.
func (a BranchArg) ToBranchSpec(strings *workflow.WorkflowStrings) (*branch.BranchSpec, error) {
	spec := branch.NewBranchSpec()
	if a.Kind != BranchArgSpecified {
		return spec, nil
	}
	for _, pair := range a.Pairs {
		k, err := strings.InternBranchpoint(pair.Key)
		if err != nil {
			return nil, err
		}
		if spec.IsSpecified(k) {
			return nil, rerrors.New(rerrors.KindInvalidBranchString,
				"branchpoint %q specified more than once on command line", pair.Key)
		}
		v, err := strings.InternIdent(pair.Value)
		if err != nil {
			return nil, err
		}
		spec.Insert(k, v)
	}
	return spec, nil
}
