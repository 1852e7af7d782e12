// Package prep turns a resolved traversal into the concrete filesystem
// actions needed to build it: which task realizations already exist and are
// complete, which are stale and must be deleted and rebuilt, and which are
// new. It deduplicates traversal nodes that resolved to the same (task,
// branch) pair, fully resolves every input/output/param down to a run-time
// path or literal string, and hands the result to a PreRunner to actually
// touch disk.
package prep
