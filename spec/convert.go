package spec

import (
	"github.com/scantist-ossops-m2/seccompdb/filterdb"
)

// Resolver maps a syscall name to its number on the target architecture.
// archx86_64.SyscallNumber satisfies this signature.
type Resolver func(name string) (int, bool)

// actionTable maps an OCI seccomp action to the closed filterdb.Action it is
// represented as. ActErrno, ActTrace and ActNotify all carry caller-supplied
// parameters (an errno value, a notify fd) that filterdb.Action has no room
// for; Convert collapses them onto the nearest filterdb action and the
// caller's bpfgen.Config.ActionReturn is responsible for picking the actual
// return value (e.g. SECCOMP_RET_ERRNO with a fixed default errno).
var actionTable = map[LinuxSeccompAction]filterdb.Action{
	ActAllow:       filterdb.ActionAllow,
	ActKill:        filterdb.ActionKill,
	ActKillThread:  filterdb.ActionKill,
	ActKillProcess: filterdb.ActionKillProcess,
	ActTrap:        filterdb.ActionTrap,
	ActErrno:       filterdb.ActionDeny,
	ActTrace:       filterdb.ActionTrace,
	ActLog:         filterdb.ActionLog,
	ActNotify:      filterdb.ActionTrace,
}

// opTable maps an OCI comparison operator to the RawOp normalize accepts.
// OpMaskedEqual has no entry: the filter database's stored operator basis is
// {EQ, GT, GE} and there is no bit-masking step anywhere in that basis, so a
// masked-equal rule cannot be expressed without first resolving the mask
// against a concrete value — something Convert cannot do on the caller's
// behalf. Convert reports it via unsupported rather than silently dropping
// or misinterpreting it.
var opTable = map[LinuxSeccompOperator]filterdb.RawOp{
	OpEqualTo:      filterdb.RawEQ,
	OpNotEqual:     filterdb.RawNE,
	OpLessThan:     filterdb.RawLT,
	OpLessEqual:    filterdb.RawLE,
	OpGreaterThan:  filterdb.RawGT,
	OpGreaterEqual: filterdb.RawGE,
}

// Convert lowers an OCI linux.seccomp object into the rules filterdb.Add
// expects. Syscall names resolve is unable to map are skipped and returned
// in unresolved; syscall rules using SCMP_CMP_MASKED_EQ are skipped and
// returned in unsupported. Neither condition fails the conversion outright,
// mirroring how a real container runtime degrades gracefully on an
// unfamiliar kernel or incomplete syscall table rather than refusing to
// start the workload.
func Convert(config *LinuxSeccomp, resolve Resolver) (rules []filterdb.Rule, unresolved []string, unsupported []string) {
	for _, syscall := range config.Syscalls {
		action, ok := actionTable[syscall.Action]
		if !ok {
			action = filterdb.ActionDeny
		}

		preds, skip := convertArgs(syscall.Args)
		if skip {
			unsupported = append(unsupported, syscall.Names...)
			continue
		}

		for _, name := range syscall.Names {
			nr, ok := resolve(name)
			if !ok {
				unresolved = append(unresolved, name)
				continue
			}
			rules = append(rules, filterdb.Rule{
				Syscall:    nr,
				Action:     action,
				Predicates: preds,
			})
		}
	}
	return rules, unresolved, unsupported
}

// DefaultFilterAction maps config's top-level default action to the value a
// FilterDB should be constructed with.
func DefaultFilterAction(config *LinuxSeccomp) filterdb.Action {
	if action, ok := actionTable[config.DefaultAction]; ok {
		return action
	}
	return filterdb.ActionDeny
}

func convertArgs(args []LinuxSeccompArg) (preds []filterdb.RawPredicate, unsupported bool) {
	for _, arg := range args {
		op, ok := opTable[arg.Op]
		if !ok {
			return nil, true
		}
		preds = append(preds, filterdb.RawPredicate{
			ArgIndex: uint8(arg.Index),
			Op:       op,
			Datum:    arg.Value,
		})
	}
	return preds, false
}
