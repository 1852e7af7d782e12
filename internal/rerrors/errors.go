// Package rerrors defines the error taxonomy shared across rebuild's
// pipeline stages (structural, reference, type-context, capacity,
// filesystem, runtime) and a small per-pass Aggregator that mirrors the
// "collect, then recap" propagation policy described for the workflow
// builder, BFS traverser, and traversal resolver passes.
package rerrors

import "fmt"

// Kind classifies an Error into one of the categories named by the design:
// structural, reference, type-context, capacity, filesystem, or runtime.
type Kind string

const (
	// Structural errors are parser-adjacent: malformed branch strings, empty
	// plans, use of an explicitly unsupported feature.
	KindInvalidBranchString  Kind = "invalid_branch_string"
	KindEmptyPlan            Kind = "empty_plan"
	KindUnsupportedFeature   Kind = "unsupported_feature"

	// Reference errors: something named does not resolve.
	KindTaskNotFound         Kind = "task_not_found"
	KindValueNotFound        Kind = "value_not_found"
	KindPlanNotFound         Kind = "plan_not_found"
	KindModuleNotFound       Kind = "module_not_found"
	KindUndefinedConfigValue Kind = "undefined_config_value"
	KindTaskOutputNotFound   Kind = "task_output_not_found"
	KindReflexiveTask        Kind = "reflexive_task"
	KindBranchNotFound       Kind = "branch_not_found"

	// Type-context errors: a value resolved to the wrong shape for its
	// use site.
	KindUnsupportedLiteral    Kind = "unsupported_literal"
	KindUnsupportedTaskOutput Kind = "unsupported_task_output"
	KindUnsupportedInterp     Kind = "unsupported_interp"
	KindExpectedLiteral       Kind = "expected_literal"
	KindInterpolationFailed   Kind = "interpolation_failed"

	// Capacity errors: a fixed-size structure overflowed.
	KindOutOfIndices         Kind = "out_of_indices"
	KindOutOfKeySpace        Kind = "out_of_key_space"
	KindStringIndexOutOfBounds Kind = "string_index_out_of_bounds"
	KindTooManyBranchpoints  Kind = "too_many_branchpoints"
	KindBranchOutOfBounds    Kind = "branch_out_of_bounds"
	KindKeyNotFound          Kind = "key_not_found"

	// Filesystem errors.
	KindNotWhitelisted          Kind = "not_whitelisted"
	KindNotDirectory            Kind = "not_directory"
	KindUnknownPathType         Kind = "unknown_path_type"
	KindInvalidBranchpointsFile Kind = "invalid_branchpoints_file"
	KindFilesystemIO            Kind = "filesystem_io"
	KindDryRun                  Kind = "dry_run"

	// Runtime errors: surfaced only once execution begins.
	KindExpectedFileNotFound Kind = "expected_file_not_found"
	KindSubprocessFailed    Kind = "subprocess_failed"

	// KindAggregatedErrors wraps the recap of a pass that collected more
	// than zero errors.
	KindAggregatedErrors Kind = "aggregated_errors"
)

// Error is rebuild's uniform error value. Every leaf error produced by the
// pipeline carries a Kind (for programmatic dispatch) and a human-readable
// Message; Cause holds a wrapped error when one exists.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind, wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is an *Error of the given kind (including when
// wrapped further up the chain via errors.As semantics handled by callers).
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
