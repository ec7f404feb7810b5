// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Rule validation errors.
var (
	// ErrDuplicateArgIndex indicates two predicates in the same rule named
	// the same argument index.
	ErrDuplicateArgIndex = &DBError{
		Kind:   ErrInvalidConfig,
		Detail: "duplicate argument index in rule",
	}

	// ErrTooManyPredicates indicates a rule chain longer than MAX_ARGS.
	ErrTooManyPredicates = &DBError{
		Kind:   ErrInvalidConfig,
		Detail: "too many predicates for a single rule",
	}

	// ErrUnknownRawOp indicates a raw comparison operator outside
	// {EQ, NE, LT, LE, GT, GE}.
	ErrUnknownRawOp = &DBError{
		Kind:   ErrInvalidConfig,
		Detail: "unknown comparison operator",
	}

	// ErrUnknownAction indicates an action outside the closed enumeration.
	ErrUnknownAction = &DBError{
		Kind:   ErrInvalidConfig,
		Detail: "unknown action",
	}
)

// Database errors.
var (
	// ErrSyscallNotFound indicates no entry exists for the requested syscall.
	ErrSyscallNotFound = &DBError{
		Kind:   ErrNotFound,
		Detail: "syscall entry not found",
	}

	// ErrAllocFailed indicates the bounded allocator could not satisfy a
	// request before the existing tree was touched.
	ErrAllocFailed = &DBError{
		Kind:   ErrResource,
		Detail: "allocation failed before mutation began",
	}
)

// Merge invariant errors.
var (
	// ErrMergeInvariant indicates the merger reached a cursor state the
	// invariants (I1-I5) say is unreachable.
	ErrMergeInvariant = &DBError{
		Kind:   ErrInternal,
		Detail: "merge reached a state that violates a decision-tree invariant",
	}
)

// Seccomp build/install errors.
var (
	// ErrUnknownSeccompAction indicates an OCI seccomp action this
	// implementation does not have a BPF return value for.
	ErrUnknownSeccompAction = &DBError{
		Kind:   ErrSeccomp,
		Detail: "unknown seccomp action",
	}

	// ErrUnknownArch indicates an architecture this implementation cannot
	// emit an audit-arch check for.
	ErrUnknownArch = &DBError{
		Kind:   ErrSeccomp,
		Detail: "unknown architecture",
	}

	// ErrSeccompInstall indicates the kernel rejected the compiled BPF
	// program.
	ErrSeccompInstall = &DBError{
		Kind:   ErrSeccomp,
		Detail: "failed to install seccomp filter",
	}
)
