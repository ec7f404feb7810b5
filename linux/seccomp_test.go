package linux

import (
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/scantist-ossops-m2/seccompdb/filterdb"
	"github.com/scantist-ossops-m2/seccompdb/spec"
)

// ============================================================================
// ARCHITECTURE TESTS
// ============================================================================

func TestArchToAudit_ValidArches(t *testing.T) {
	tests := []struct {
		arch     spec.Arch
		expected uint32
	}{
		{spec.ArchX86_64, unix.AUDIT_ARCH_X86_64},
		{spec.ArchX86, unix.AUDIT_ARCH_I386},
		{spec.ArchAARCH64, unix.AUDIT_ARCH_AARCH64},
		{spec.ArchARM, unix.AUDIT_ARCH_ARM},
	}

	for _, tt := range tests {
		t.Run(string(tt.arch), func(t *testing.T) {
			got, ok := archToAudit[tt.arch]
			if !ok {
				t.Errorf("arch %s not found in archToAudit", tt.arch)
				return
			}
			if got != tt.expected {
				t.Errorf("archToAudit[%s] = 0x%x, want 0x%x", tt.arch, got, tt.expected)
			}
		})
	}
}

func TestArchToAudit_UnknownArch(t *testing.T) {
	for _, arch := range []spec.Arch{"SCMP_ARCH_UNKNOWN", "invalid", ""} {
		if _, ok := archToAudit[arch]; ok {
			t.Errorf("unknown arch %q should not be in archToAudit", arch)
		}
	}
}

// ============================================================================
// ACTION RETURN TESTS
// ============================================================================

func TestActionReturn_AllActions(t *testing.T) {
	actions := []filterdb.Action{
		filterdb.ActionAllow, filterdb.ActionDeny, filterdb.ActionKill,
		filterdb.ActionKillProcess, filterdb.ActionTrap, filterdb.ActionTrace,
		filterdb.ActionLog,
	}
	for _, a := range actions {
		t.Run(a.String(), func(t *testing.T) {
			if _, ok := actionReturn[a]; !ok {
				t.Errorf("action %s missing from actionReturn", a)
			}
		})
	}
}

// ============================================================================
// SETUP SECCOMP TESTS
// ============================================================================

func TestSetupSeccomp_NilConfig(t *testing.T) {
	if err := SetupSeccomp(nil); err != nil {
		t.Errorf("nil config should not error: %v", err)
	}
}

func TestSetupSeccomp_TooManyUnrecognized(t *testing.T) {
	config := &spec.LinuxSeccomp{
		DefaultAction: spec.ActAllow,
		Syscalls: []spec.LinuxSyscall{
			{
				Names:  []string{"totally_fake_syscall_1", "totally_fake_syscall_2", "totally_fake_syscall_3"},
				Action: spec.ActLog,
			},
			{
				Names:  []string{"read"},
				Action: spec.ActAllow,
			},
		},
	}

	if err := SetupSeccomp(config); err == nil {
		t.Error("expected error when more than 20% of syscall rules are unrecognized")
	}
}

func TestSetupSeccomp_EmptySyscalls(t *testing.T) {
	config := &spec.LinuxSeccomp{
		DefaultAction: spec.ActAllow,
		Syscalls:      []spec.LinuxSyscall{},
	}

	// No syscalls to install means no unrecognized ratio to trip over; this
	// only fails if it gets as far as actually installing a filter, which
	// requires CAP_SYS_ADMIN/no_new_privs support the test sandbox may lack,
	// so we only assert it doesn't fail for the wrong reason (ratio check).
	err := SetupSeccomp(config)
	if err != nil && strings.Contains(err.Error(), "could not be resolved") {
		t.Errorf("empty syscall list tripped the unresolved-ratio check: %v", err)
	}
}

func TestConvert_MaskedEqualReportedUnsupported(t *testing.T) {
	config := &spec.LinuxSeccomp{
		DefaultAction: spec.ActAllow,
		Syscalls: []spec.LinuxSyscall{
			{
				Names:  []string{"read"},
				Action: spec.ActErrno,
				Args: []spec.LinuxSeccompArg{
					{Index: 0, Value: 0, Op: spec.OpMaskedEqual},
				},
			},
		},
	}

	rules, _, unsupported := spec.Convert(config, func(name string) (int, bool) {
		return 0, name == "read"
	})
	if len(rules) != 0 {
		t.Errorf("masked-equal rule should not convert, got %d rules", len(rules))
	}
	if len(unsupported) != 1 || unsupported[0] != "read" {
		t.Errorf("unsupported = %v, want [read]", unsupported)
	}
}
