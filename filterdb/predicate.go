// Package filterdb implements an in-memory decision-tree database for
// per-syscall argument filtering rules. Rules accumulate through Add and are
// merged into a compact tree per syscall number; the tree can be walked in a
// fixed traversal order (ascending syscall, pre-order predicate) by a code
// generator such as bpfgen without ever re-running the merge logic.
//
// The database only ever deals in syscall numbers and raw argument values;
// it has no notion of syscall names, architectures, or wire encodings. Those
// live in the spec and archx86_64 packages.
package filterdb

import "github.com/scantist-ossops-m2/seccompdb/errors"

// MaxArgs is the number of syscall argument slots a predicate chain may
// reference (argument indices 0-5, matching the OCI seccomp argument model).
const MaxArgs = 6

// Op is a stored comparison operator. The database never keeps an operator
// outside this basis: every incoming RawOp is normalized to one of these
// three, paired with an action-branch bit that records which outcome the
// original operator meant.
type Op uint8

const (
	OpEQ Op = iota
	OpGT
	OpGE
)

func (o Op) String() string {
	switch o {
	case OpEQ:
		return "=="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	default:
		return "?"
	}
}

// RawOp is the comparison operator as a caller supplies it. It is never
// stored in the tree; normalize converts it to an Op plus an action-branch
// bit before a rule is merged.
type RawOp uint8

const (
	RawEQ RawOp = iota
	RawNE
	RawLT
	RawLE
	RawGT
	RawGE
)

func (o RawOp) String() string {
	switch o {
	case RawEQ:
		return "=="
	case RawNE:
		return "!="
	case RawLT:
		return "<"
	case RawLE:
		return "<="
	case RawGT:
		return ">"
	case RawGE:
		return ">="
	default:
		return "?"
	}
}

// Action is the verdict a matching rule produces. It is a closed set;
// callers outside this package are responsible for mapping it to whatever
// enforcement mechanism they use (seccomp actions, in the case of bpfgen).
type Action uint8

const (
	ActionAllow Action = iota
	ActionDeny
	ActionKill
	ActionKillProcess
	ActionTrap
	ActionTrace
	ActionLog
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionDeny:
		return "deny"
	case ActionKill:
		return "kill"
	case ActionKillProcess:
		return "kill_process"
	case ActionTrap:
		return "trap"
	case ActionTrace:
		return "trace"
	case ActionLog:
		return "log"
	default:
		return "unknown"
	}
}

// Predicate is a single normalized comparison: argument ArgIndex compared
// against Datum using Op. It is the unit the tree is built from.
type Predicate struct {
	ArgIndex uint8
	Op       Op
	Datum    uint64
}

// compare orders two predicates by the lexicographic key (ArgIndex, Op,
// Datum). This is the sibling ordering invariant the merge walk and the
// traversal contract both rely on.
func (p Predicate) compare(o Predicate) int {
	if p.ArgIndex != o.ArgIndex {
		if p.ArgIndex < o.ArgIndex {
			return -1
		}
		return 1
	}
	if p.Op != o.Op {
		if p.Op < o.Op {
			return -1
		}
		return 1
	}
	switch {
	case p.Datum < o.Datum:
		return -1
	case p.Datum > o.Datum:
		return 1
	default:
		return 0
	}
}

// RawPredicate is a single argument condition as a caller supplies it,
// before normalization.
type RawPredicate struct {
	ArgIndex uint8
	Op       RawOp
	Datum    uint64
}

// Rule is a caller-supplied filtering rule for one syscall: the action to
// take when every predicate in Predicates holds. An empty Predicates slice
// means the rule applies unconditionally to the syscall.
type Rule struct {
	Syscall    int
	Action     Action
	Predicates []RawPredicate
}

// rawOpTable maps a raw operator to its stored Op and action-branch bit:
// the outcome (true/false) of evaluating the stored Op against the datum
// that corresponds to the raw operator actually holding.
//
//	EQ -> stored EQ, fires on true
//	NE -> stored EQ, fires on false
//	LT -> stored GE, fires on false
//	LE -> stored GT, fires on false
//	GT -> stored GT, fires on true
//	GE -> stored GE, fires on true
func rawOpTable(op RawOp) (Op, bool, error) {
	switch op {
	case RawEQ:
		return OpEQ, true, nil
	case RawNE:
		return OpEQ, false, nil
	case RawLT:
		return OpGE, false, nil
	case RawLE:
		return OpGT, false, nil
	case RawGT:
		return OpGT, true, nil
	case RawGE:
		return OpGE, true, nil
	default:
		return 0, false, errors.ErrUnknownRawOp
	}
}
