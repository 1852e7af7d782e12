package branch

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// LoadBranchpointsFile reads the branchpoints.txt format (whitespace
// separated "branchpoint.value" pairs) from r, pre-loading each pair as a
// baseline via in. Filesystem access (existence checks, actual file
// opening) is the caller's concern; this only parses content already read.
func LoadBranchpointsFile(r io.Reader, in Interner, baselines *BaselineBranches) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		kv := scanner.Text()
		name, val, found := strings.Cut(kv, string(BranchKVDelim))
		if !found {
			return rerrors.New(rerrors.KindInvalidBranchpointsFile, "malformed branchpoints.txt entry %q", kv)
		}
		k, err := in.InternBranchpoint(name)
		if err != nil {
			return err
		}
		v, err := in.InternIdent(val)
		if err != nil {
			return err
		}
		baselines.Add(k, v)
	}
	return scanner.Err()
}

// WriteBranchpointsFile writes the current baselines, one "branchpoint.value"
// pair per line in branchpoint order, to w.
func WriteBranchpointsFile(w io.Writer, namer Namer, baselines *BaselineBranches) error {
	bw := bufio.NewWriter(w)
	for _, entry := range baselines.All() {
		bpName, err := namer.BranchpointName(entry.Branchpoint)
		if err != nil {
			return err
		}
		valName, err := namer.IdentName(entry.Value)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "%s%c%s\n", bpName, rune(BranchKVDelim), valName); err != nil {
			return rerrors.Wrap(rerrors.KindFilesystemIO, err, "writing branchpoints.txt entry for %q", bpName)
		}
	}
	return bw.Flush()
}
