package branch

import (
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// BranchKVDelim separates a branchpoint name from its value within one pair
// (e.g. the '.' in "Profile.debug").
const BranchKVDelim = '.'

// BranchDelim separates branch pairs within a branch string (e.g. the '+' in
// "Profile.debug+Target.wasm").
const BranchDelim = '+'

const baselineStr = "Baseline.baseline"
const baselineStrPlus = "Baseline.baseline+"

// Namer resolves branchpoint and ident handles to their interned names, for
// rendering branch strings.
type Namer interface {
	BranchpointName(id ident.BranchpointId) (string, error)
	IdentName(id ident.IdentId) (string, error)
}

// Interner resolves branchpoint and ident names back to handles, interning
// them if new, for parsing branch strings.
type Interner interface {
	InternBranchpoint(name string) (ident.BranchpointId, error)
	InternIdent(name string) (ident.IdentId, error)
}

func pushBranchPair(k ident.BranchpointId, v ident.IdentId, namer Namer, buf *strings.Builder) error {
	bpName, err := namer.BranchpointName(k)
	if err != nil {
		return err
	}
	vName, err := namer.IdentName(v)
	if err != nil {
		return err
	}
	buf.WriteString(bpName)
	buf.WriteByte(BranchKVDelim)
	buf.WriteString(vName)
	return nil
}

// MakeFullString renders every branchpoint this BranchSpec covers, in
// baseline-table order, even the ones pinned to their own baseline value.
// A BranchSpec with nothing specified renders as "Baseline.baseline".
func MakeFullString(b *BranchSpec, baselines *BaselineBranches, namer Namer) (string, error) {
	var buf strings.Builder
	first := true
	for _, entry := range baselines.All() {
		if int(entry.Branchpoint) >= b.Len() {
			break
		}
		v, ok := b.GetSpecified(entry.Branchpoint)
		if !ok {
			continue
		}
		if first {
			first = false
		} else {
			buf.WriteByte(BranchDelim)
		}
		if err := pushBranchPair(entry.Branchpoint, v, namer, &buf); err != nil {
			return "", err
		}
	}
	if buf.Len() == 0 {
		return baselineStr, nil
	}
	return buf.String(), nil
}

// MakeCompactString renders only the branchpoints pinned away from their
// baseline value. If any pinned branchpoint equals its baseline, or nothing
// at all is pinned, the string is prefixed with "Baseline.baseline" (plain,
// or with a trailing '+' when there is more to follow) so the string stays
// parseable and stays valid across runs as long as branchpoint ordering in
// branchpoints.txt doesn't change.
func MakeCompactString(b *BranchSpec, baselines *BaselineBranches, namer Namer) (string, error) {
	var buf strings.Builder
	first := true
	needsBaseline := false
	for _, entry := range baselines.All() {
		if int(entry.Branchpoint) >= b.Len() {
			break
		}
		v, ok := b.GetSpecified(entry.Branchpoint)
		if !ok {
			continue
		}
		if v == entry.Value {
			needsBaseline = true
			continue
		}
		if first {
			first = false
		} else {
			buf.WriteByte(BranchDelim)
		}
		if err := pushBranchPair(entry.Branchpoint, v, namer, &buf); err != nil {
			return "", err
		}
	}

	if buf.Len() == 0 {
		return baselineStr, nil
	}
	if needsBaseline {
		return baselineStrPlus + buf.String(), nil
	}
	return buf.String(), nil
}

// ParseCompactBranchString parses a string produced by MakeCompactString (or
// MakeFullString) back into a BranchSpec, interning any branchpoint/ident
// names not already known, then fills in every branchpoint left unspecified
// with its recorded baseline value.
func ParseCompactBranchString(s string, in Interner, baselines *BaselineBranches) (*BranchSpec, error) {
	b := NewBranchSpec()
	for _, kv := range strings.Split(s, string(BranchDelim)) {
		if kv == baselineStr {
			continue
		}
		name, val, found := strings.Cut(kv, string(BranchKVDelim))
		if !found {
			return nil, rerrors.New(rerrors.KindInvalidBranchString, "invalid branch string component %q", kv)
		}
		k, err := in.InternBranchpoint(name)
		if err != nil {
			return nil, err
		}
		v, err := in.InternIdent(val)
		if err != nil {
			return nil, err
		}
		b.Insert(k, v)
	}
	for _, entry := range baselines.All() {
		if b.IsUnspecified(entry.Branchpoint) {
			b.Insert(entry.Branchpoint, entry.Value)
		}
	}
	return b, nil
}
