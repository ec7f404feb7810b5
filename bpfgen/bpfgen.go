// Package bpfgen lowers a filterdb.FilterDB into a classic BPF program
// suitable for SECCOMP_SET_MODE_FILTER, using golang.org/x/sys/unix's wire
// types instead of hand-rolled structs. It consumes only the traversal
// contract filterdb exposes (ascending syscall order, pre-order predicate
// walk with action-branch bits, sibling level lists); it never reaches into
// the database's internal node representation.
//
// Argument comparisons are generated as real 64-bit unsigned tests over the
// two 32-bit words the kernel's seccomp_data struct exposes for each
// argument slot, rather than being skipped.
package bpfgen

import (
	"golang.org/x/sys/unix"

	"github.com/scantist-ossops-m2/seccompdb/errors"
	"github.com/scantist-ossops-m2/seccompdb/filterdb"
)

// Seccomp BPF return values (linux/seccomp.h).
const (
	RetKillProcess = 0x80000000
	RetKillThread  = 0x00000000
	RetTrap        = 0x00030000
	RetErrno       = 0x00050000
	RetTrace       = 0x7ff00000
	RetLog         = 0x7ffc0000
	RetAllow       = 0x7fff0000
)

// seccomp_data field offsets (linux/seccomp.h); argument i's low word sits
// at argBase+i*8, its high word four bytes after.
const (
	offsetNR   = 0
	offsetArch = 4
	argBase    = 16
)

// Config controls how database actions and architectures are lowered into
// the generated program.
type Config struct {
	// DefaultAction is the return value used when no syscall entry
	// matches, and for a syscall entry with no recorded action.
	DefaultAction uint32
	// ActionReturn maps each filterdb.Action the database might produce
	// to its BPF return value. An action the database uses but this map
	// doesn't cover is reported as ErrUnknownSeccompAction.
	ActionReturn map[filterdb.Action]uint32
	// AuditArches lists the audit architecture values (AUDIT_ARCH_*) a
	// caller is running under; a syscall from any other architecture is
	// killed outright. At least one is required.
	AuditArches []uint32
}

// Generate lowers db into a complete BPF program: an architecture gate,
// followed by a cascade over db's syscalls in ascending order, followed by
// the default action.
func Generate(db *filterdb.FilterDB, cfg Config) ([]unix.SockFilter, error) {
	if len(cfg.AuditArches) == 0 {
		return nil, errors.New(errors.ErrInvalidConfig, "bpfgen.Generate", "at least one audit architecture is required")
	}

	prog := archGate(cfg.AuditArches)

	var entries []*filterdb.SyscallView
	db.Walk(func(v *filterdb.SyscallView) {
		entries = append(entries, v)
	})

	// Generate each syscall's dispatch block bottom-up so later blocks'
	// sizes are known before earlier blocks compute their skip distance
	// to "next syscall, try again".
	tail := []unix.SockFilter{ret(cfg.DefaultAction)}
	for i := len(entries) - 1; i >= 0; i-- {
		v := entries[i]
		block, err := genSyscallBlock(v, cfg, tail)
		if err != nil {
			return nil, err
		}
		tail = block
	}
	prog = append(prog, tail...)
	return prog, nil
}

// genSyscallBlock generates: compare the loaded syscall number against
// v.Syscall; on match, evaluate v's tree (or return its unconditional
// action); on no match, fall through to notMatched (the block for the next
// syscall entry, or the default-action return at the end of the cascade).
func genSyscallBlock(v *filterdb.SyscallView, cfg Config, notMatched []unix.SockFilter) ([]unix.SockFilter, error) {
	var body []unix.SockFilter
	if v.Unconditional {
		action := cfg.DefaultAction
		if v.HasAction {
			ret, err := actionReturn(cfg, v.Action)
			if err != nil {
				return nil, err
			}
			action = ret
		}
		body = []unix.SockFilter{ret(action)}
	} else {
		b, err := genLevel(v.Levels(), cfg)
		if err != nil {
			return nil, err
		}
		body = b
	}

	jf, err := jumpDistance(len(body))
	if err != nil {
		return nil, err
	}
	cmp := jump(unix.BPF_JMP|unix.BPF_JEQ|unix.BPF_K, uint32(v.Syscall), 0, jf)
	out := make([]unix.SockFilter, 0, 2+len(body)+len(notMatched))
	out = append(out, stmt(unix.BPF_LD|unix.BPF_W|unix.BPF_ABS, offsetNR), cmp)
	out = append(out, body...)
	out = append(out, notMatched...)
	return out, nil
}

// jumpDistance converts an instruction count into a classic-BPF jt/jf skip
// value. Those fields are a single byte, so a subtree deep or wide enough to
// need more than 255 instructions of skip can't be expressed as a short
// jump; real profiles stay well under this (MaxArgs bounds tree depth to 6),
// so hitting it means the rule set is pathological rather than that the
// generator is wrong.
func jumpDistance(n int) (uint8, error) {
	if n > 0xff {
		return 0, errors.New(errors.ErrSeccomp, "bpfgen", "generated subtree exceeds the 255-instruction classic BPF jump range")
	}
	return uint8(n), nil
}

// genLevel generates a cascade over a level list of sibling alternatives:
// try each predicate in turn, falling through to the next on no match, and
// finally to the default action if none match.
func genLevel(level []*filterdb.TreeNode, cfg Config) ([]unix.SockFilter, error) {
	tail := []unix.SockFilter{ret(cfg.DefaultAction)}
	for i := len(level) - 1; i >= 0; i-- {
		block, err := genNode(level[i], cfg, tail)
		if err != nil {
			return nil, err
		}
		tail = block
	}
	return tail, nil
}

// genNode generates code for one predicate: evaluate it, then land in
// whichever outcome code describes each branch. n's own predicate is always
// tested, leaf or not — a leaf still has to discriminate true from false.
// An outcome that carries neither n's action nor a child level falls
// through to onNoMatch, the code for the next sibling alternative (or the
// level's default-action return), which is appended after the generated
// code.
func genNode(n *filterdb.TreeNode, cfg Config, onNoMatch []unix.SockFilter) ([]unix.SockFilter, error) {
	trueCode, err := genOutcome(n, true, cfg)
	if err != nil {
		return nil, err
	}
	falseCode, err := genOutcome(n, false, cfg)
	if err != nil {
		return nil, err
	}
	if len(trueCode) == 0 {
		// Skip the false-outcome code and land on onNoMatch.
		trueCode = []unix.SockFilter{jump(unix.BPF_JMP|unix.BPF_JA, uint32(len(falseCode)), 0, 0)}
	}

	cmpCode, err := genCompare(n.Predicate, len(trueCode))
	if err != nil {
		return nil, err
	}

	out := make([]unix.SockFilter, 0, len(cmpCode)+len(trueCode)+len(falseCode)+len(onNoMatch))
	out = append(out, cmpCode...)
	out = append(out, trueCode...)
	out = append(out, falseCode...)
	out = append(out, onNoMatch...)
	return out, nil
}

// genOutcome generates the code reached when n's predicate evaluates to
// outcome. If n is a leaf and outcome is its action-branch, that's the
// node's action (I4 guarantees the opposite branch never also carries the
// action). Otherwise outcome's child level list is the continuation; when
// that list is empty, genOutcome returns no code and genNode routes the
// outcome to the next sibling alternative.
func genOutcome(n *filterdb.TreeNode, outcome bool, cfg Config) ([]unix.SockFilter, error) {
	if n.HasAction && n.ActionBranch == outcome {
		retVal, err := actionReturn(cfg, n.Action)
		if err != nil {
			return nil, err
		}
		return []unix.SockFilter{ret(retVal)}, nil
	}

	level := n.False
	if outcome {
		level = n.True
	}
	if len(level) == 0 {
		return nil, nil
	}
	return genLevel(level, cfg)
}

// genCompare returns the instructions that test pred against the loaded
// argument, landing at the start of whatever follows immediately (trueLen
// instructions away) on a true result, or trueLen instructions further on a
// false result. It loads its own argument words; callers don't need to load
// the argument first.
func genCompare(pred filterdb.Predicate, trueLen int) ([]unix.SockFilter, error) {
	hiOff := uint32(argBase) + uint32(pred.ArgIndex)*8 + 4
	loOff := uint32(argBase) + uint32(pred.ArgIndex)*8
	hi := uint32(pred.Datum >> 32)
	lo := uint32(pred.Datum)

	jfTrue, err := jumpDistance(trueLen)
	if err != nil {
		return nil, err
	}
	jfTrueSkip2, err := jumpDistance(2 + trueLen)
	if err != nil {
		return nil, err
	}

	switch pred.Op {
	case filterdb.OpEQ:
		// Match iff both words are equal.
		return []unix.SockFilter{
			stmt(unix.BPF_LD|unix.BPF_W|unix.BPF_ABS, hiOff),
			jump(unix.BPF_JMP|unix.BPF_JEQ|unix.BPF_K, hi, 0, jfTrueSkip2),
			stmt(unix.BPF_LD|unix.BPF_W|unix.BPF_ABS, loOff),
			jump(unix.BPF_JMP|unix.BPF_JEQ|unix.BPF_K, lo, 0, jfTrue),
		}, nil

	case filterdb.OpGE, filterdb.OpGT:
		loOp := uint16(unix.BPF_JGE)
		if pred.Op == filterdb.OpGT {
			loOp = unix.BPF_JGT
		}
		return []unix.SockFilter{
			stmt(unix.BPF_LD|unix.BPF_W|unix.BPF_ABS, hiOff),
			jump(unix.BPF_JMP|unix.BPF_JGT|unix.BPF_K, hi, 3, 0),
			jump(unix.BPF_JMP|unix.BPF_JEQ|unix.BPF_K, hi, 0, jfTrueSkip2),
			stmt(unix.BPF_LD|unix.BPF_W|unix.BPF_ABS, loOff),
			jump(unix.BPF_JMP|loOp|unix.BPF_K, lo, 0, jfTrue),
		}, nil

	default:
		return nil, errors.New(errors.ErrSeccomp, "bpfgen.genCompare", "stored operator outside {EQ, GT, GE}")
	}
}

func actionReturn(cfg Config, action filterdb.Action) (uint32, error) {
	ret, ok := cfg.ActionReturn[action]
	if !ok {
		return 0, errors.New(errors.ErrSeccomp, "bpfgen", "no BPF return value configured for action "+action.String())
	}
	return ret, nil
}

// archGate emits the architecture check every classic seccomp-bpf program
// opens with: kill the process outright unless the running architecture is
// one the caller declared support for.
func archGate(arches []uint32) []unix.SockFilter {
	prog := []unix.SockFilter{stmt(unix.BPF_LD|unix.BPF_W|unix.BPF_ABS, offsetArch)}
	for i, arch := range arches {
		jt := uint8(len(arches) - i)
		prog = append(prog, jump(unix.BPF_JMP|unix.BPF_JEQ|unix.BPF_K, arch, jt, 0))
	}
	prog = append(prog, ret(RetKillProcess))
	return prog
}

func stmt(code uint16, k uint32) unix.SockFilter {
	return unix.SockFilter{Code: code, Jt: 0, Jf: 0, K: k}
}

func jump(code uint16, k uint32, jt, jf uint8) unix.SockFilter {
	return unix.SockFilter{Code: code, Jt: jt, Jf: jf, K: k}
}

func ret(k uint32) unix.SockFilter {
	return unix.SockFilter{Code: unix.BPF_RET | unix.BPF_K, Jt: 0, Jf: 0, K: k}
}

// SockFprog builds the unix.SockFprog wire structure for a generated
// program, ready for PR_SET_SECCOMP.
func SockFprog(prog []unix.SockFilter) *unix.SockFprog {
	if len(prog) == 0 {
		return &unix.SockFprog{}
	}
	return &unix.SockFprog{Len: uint16(len(prog)), Filter: &prog[0]}
}
