// Package linux installs a filter database's decision tree as a running
// process's seccomp filter.
package linux

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/scantist-ossops-m2/seccompdb/archx86_64"
	"github.com/scantist-ossops-m2/seccompdb/bpfgen"
	"github.com/scantist-ossops-m2/seccompdb/filterdb"
	"github.com/scantist-ossops-m2/seccompdb/logging"
	"github.com/scantist-ossops-m2/seccompdb/spec"
)

const (
	prSetNoNewPrivs   = 38
	prSetSeccomp      = 22
	seccompModeFilter = 2
)

// archToAudit maps an OCI architecture token to the audit architecture value
// the kernel's seccomp_data struct reports.
var archToAudit = map[spec.Arch]uint32{
	spec.ArchX86_64:  unix.AUDIT_ARCH_X86_64,
	spec.ArchX86:     unix.AUDIT_ARCH_I386,
	spec.ArchAARCH64: unix.AUDIT_ARCH_AARCH64,
	spec.ArchARM:     unix.AUDIT_ARCH_ARM,
}

// actionReturn maps every filterdb.Action the database can produce to its
// BPF return value. ActionDeny stands in for SCMP_ACT_ERRNO; see
// spec.actionTable for why the per-rule errno value doesn't survive the
// conversion into filterdb's closed action set.
var actionReturn = map[filterdb.Action]uint32{
	filterdb.ActionAllow:       bpfgen.RetAllow,
	filterdb.ActionDeny:        bpfgen.RetErrno | uint32(unix.EPERM),
	filterdb.ActionKill:        bpfgen.RetKillThread,
	filterdb.ActionKillProcess: bpfgen.RetKillProcess,
	filterdb.ActionTrap:        bpfgen.RetTrap,
	filterdb.ActionTrace:       bpfgen.RetTrace,
	filterdb.ActionLog:         bpfgen.RetLog,
}

// maxUnrecognizedRatio bounds how much of an incoming policy may fail to
// resolve (unknown syscall name or SCMP_CMP_MASKED_EQ) before SetupSeccomp
// refuses to install it rather than silently enforcing a partial policy.
const maxUnrecognizedRatio = 0.2

// SetupSeccomp builds a filterdb.FilterDB from config, lowers it to a BPF
// program, and installs it via PR_SET_SECCOMP. A nil config is a no-op,
// matching a container spec with no seccomp section.
func SetupSeccomp(config *spec.LinuxSeccomp) error {
	if config == nil {
		return nil
	}
	log := logging.WithOperation(logging.Default(), "linux.SetupSeccomp")

	rules, unresolved, unsupported := spec.Convert(config, archx86_64.SyscallNumber)
	skipped := len(unresolved) + len(unsupported)
	total := len(rules) + skipped
	if skipped > 0 && total > 0 && float64(skipped)/float64(total) > maxUnrecognizedRatio {
		log.Warn("refusing incomplete seccomp filter",
			"unresolved", unresolved, "unsupported", unsupported, "resolved_rules", len(rules))
		return fmt.Errorf("linux.SetupSeccomp: %d of %d syscall rules could not be resolved, refusing to install a partial filter", skipped, total)
	}

	db := filterdb.New(spec.DefaultFilterAction(config))
	defer db.Destroy()
	for _, rule := range rules {
		if err := db.Add(rule); err != nil {
			return fmt.Errorf("linux.SetupSeccomp: %w", err)
		}
	}

	arches := config.Architectures
	if len(arches) == 0 {
		arches = []spec.Arch{spec.ArchX86_64}
	}
	var auditArches []uint32
	for _, arch := range arches {
		if audit, ok := archToAudit[arch]; ok {
			auditArches = append(auditArches, audit)
		}
	}
	if len(auditArches) == 0 {
		auditArches = []uint32{unix.AUDIT_ARCH_X86_64}
	}

	defaultRet := actionReturn[spec.DefaultFilterAction(config)]
	prog, err := bpfgen.Generate(db, bpfgen.Config{
		DefaultAction: defaultRet,
		ActionReturn:  actionReturn,
		AuditArches:   auditArches,
	})
	if err != nil {
		return fmt.Errorf("linux.SetupSeccomp: build filter: %w", err)
	}

	if _, _, errno := syscall.Syscall(syscall.SYS_PRCTL, prSetNoNewPrivs, 1, 0); errno != 0 {
		return fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %v", errno)
	}

	fprog := bpfgen.SockFprog(prog)
	if _, _, errno := syscall.Syscall(syscall.SYS_PRCTL,
		prSetSeccomp,
		seccompModeFilter,
		uintptr(unsafe.Pointer(fprog))); errno != 0 {
		return fmt.Errorf("prctl(PR_SET_SECCOMP): %v", errno)
	}

	log.Info("installed seccomp filter", "syscalls", db.Len(), "instructions", len(prog))
	return nil
}
