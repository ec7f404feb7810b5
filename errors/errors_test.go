package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		expected string
	}{
		{ErrNotFound, "not found"},
		{ErrInvalidConfig, "invalid config"},
		{ErrResource, "resource error"},
		{ErrSeccomp, "seccomp error"},
		{ErrInternal, "internal error"},
		{ErrorKind(999), "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("ErrorKind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDBError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DBError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "<nil>",
		},
		{
			name: "full error",
			err: &DBError{
				Op:         "add",
				Syscall:    59,
				HasSyscall: true,
				Kind:       ErrNotFound,
				Detail:     "entry not found",
				Err:        fmt.Errorf("scan exhausted"),
			},
			expected: "syscall 59: add: entry not found: scan exhausted",
		},
		{
			name: "without syscall",
			err: &DBError{
				Op:     "normalise",
				Kind:   ErrInvalidConfig,
				Detail: "duplicate argument index",
			},
			expected: "normalise: duplicate argument index",
		},
		{
			name: "kind only",
			err: &DBError{
				Kind: ErrInternal,
			},
			expected: "internal error",
		},
		{
			name: "with underlying error",
			err: &DBError{
				Op:   "merge",
				Kind: ErrInternal,
				Err:  fmt.Errorf("cursor pair exhausted"),
			},
			expected: "merge: internal error: cursor pair exhausted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("DBError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDBError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := &DBError{
		Op:   "test",
		Kind: ErrInternal,
		Err:  underlying,
	}

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	var nilErr *DBError
	if got := nilErr.Unwrap(); got != nil {
		t.Errorf("nil.Unwrap() = %v, want nil", got)
	}
}

func TestDBError_Is(t *testing.T) {
	err1 := &DBError{Kind: ErrNotFound, Op: "test1"}
	err2 := &DBError{Kind: ErrNotFound, Op: "test2"}
	err3 := &DBError{Kind: ErrResource, Op: "test3"}

	if !err1.Is(err2) {
		t.Error("err1.Is(err2) should be true (same kind)")
	}

	if err1.Is(err3) {
		t.Error("err1.Is(err3) should be false (different kind)")
	}

	if err1.Is(fmt.Errorf("some error")) {
		t.Error("err1.Is(fmt.Errorf(...)) should be false")
	}

	var nilErr *DBError
	if !nilErr.Is(nil) {
		t.Error("nil.Is(nil) should be true")
	}
}

func TestNew(t *testing.T) {
	err := New(ErrInvalidConfig, "validate", "rule chain is empty")

	if err.Kind != ErrInvalidConfig {
		t.Errorf("Kind = %v, want %v", err.Kind, ErrInvalidConfig)
	}
	if err.Op != "validate" {
		t.Errorf("Op = %q, want %q", err.Op, "validate")
	}
	if err.Detail != "rule chain is empty" {
		t.Errorf("Detail = %q, want %q", err.Detail, "rule chain is empty")
	}
}

func TestWrap(t *testing.T) {
	underlying := fmt.Errorf("allocation denied")
	err := Wrap(underlying, ErrResource, "add")

	if err.Err != underlying {
		t.Error("Wrapped error should preserve underlying error")
	}
	if err.Kind != ErrResource {
		t.Errorf("Kind = %v, want %v", err.Kind, ErrResource)
	}
	if err.Op != "add" {
		t.Errorf("Op = %q, want %q", err.Op, "add")
	}
}

func TestWrapWithSyscall(t *testing.T) {
	underlying := fmt.Errorf("not found")
	err := WrapWithSyscall(underlying, ErrNotFound, "find", 42)

	if !err.HasSyscall || err.Syscall != 42 {
		t.Errorf("Syscall = %d (has=%v), want 42", err.Syscall, err.HasSyscall)
	}
}

func TestWrapWithDetail(t *testing.T) {
	underlying := fmt.Errorf("syscall failed")
	err := WrapWithDetail(underlying, ErrSeccomp, "filter", "invalid architecture")

	if err.Detail != "invalid architecture" {
		t.Errorf("Detail = %q, want %q", err.Detail, "invalid architecture")
	}
}

func TestIsKind(t *testing.T) {
	err := &DBError{Kind: ErrNotFound}
	wrapped := fmt.Errorf("wrapped: %w", err)

	if !IsKind(err, ErrNotFound) {
		t.Error("IsKind(err, ErrNotFound) should be true")
	}
	if !IsKind(wrapped, ErrNotFound) {
		t.Error("IsKind(wrapped, ErrNotFound) should be true")
	}
	if IsKind(err, ErrResource) {
		t.Error("IsKind(err, ErrResource) should be false")
	}
	if IsKind(fmt.Errorf("plain error"), ErrNotFound) {
		t.Error("IsKind(plain error, ErrNotFound) should be false")
	}
}

func TestGetKind(t *testing.T) {
	err := &DBError{Kind: ErrSeccomp}
	wrapped := fmt.Errorf("wrapped: %w", err)

	kind, ok := GetKind(err)
	if !ok || kind != ErrSeccomp {
		t.Errorf("GetKind(err) = (%v, %v), want (%v, true)", kind, ok, ErrSeccomp)
	}

	kind, ok = GetKind(wrapped)
	if !ok || kind != ErrSeccomp {
		t.Errorf("GetKind(wrapped) = (%v, %v), want (%v, true)", kind, ok, ErrSeccomp)
	}

	_, ok = GetKind(fmt.Errorf("plain error"))
	if ok {
		t.Error("GetKind(plain error) should return false")
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *DBError
		kind ErrorKind
	}{
		{"ErrDuplicateArgIndex", ErrDuplicateArgIndex, ErrInvalidConfig},
		{"ErrTooManyPredicates", ErrTooManyPredicates, ErrInvalidConfig},
		{"ErrUnknownRawOp", ErrUnknownRawOp, ErrInvalidConfig},
		{"ErrSyscallNotFound", ErrSyscallNotFound, ErrNotFound},
		{"ErrAllocFailed", ErrAllocFailed, ErrResource},
		{"ErrMergeInvariant", ErrMergeInvariant, ErrInternal},
		{"ErrUnknownSeccompAction", ErrUnknownSeccompAction, ErrSeccomp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("%s.Kind = %v, want %v", tt.name, tt.err.Kind, tt.kind)
			}
			wrapped := Wrap(fmt.Errorf("underlying"), tt.kind, "test")
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("errors.Is(wrapped, %s) should be true", tt.name)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	underlying := fmt.Errorf("entry missing")
	err1 := Wrap(underlying, ErrNotFound, "find")
	err2 := fmt.Errorf("add failed: %w", err1)

	if !errors.Is(err2, ErrSyscallNotFound) {
		t.Error("errors.Is should find ErrSyscallNotFound in chain")
	}

	var derr *DBError
	if !errors.As(err2, &derr) {
		t.Error("errors.As should find DBError in chain")
	}
	if derr.Op != "find" {
		t.Errorf("derr.Op = %q, want %q", derr.Op, "find")
	}

	if errors.Unwrap(err1) != underlying {
		t.Error("Unwrap should return underlying error")
	}
}
