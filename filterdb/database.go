package filterdb

import (
	"sort"

	"github.com/scantist-ossops-m2/seccompdb/errors"
	"github.com/scantist-ossops-m2/seccompdb/logging"
)

// syscallEntry holds the filtering state for one syscall number. When root
// is non-empty the syscall is governed by the tree. When root is empty,
// hasAction distinguishes two cases the data model treats distinctly: an
// unconditional action was explicitly stored for this syscall (hasAction
// true, via a zero-predicate rule or a tree collapsing under Case C), or the
// syscall's tree was merged down to nothing by sibling removal without ever
// having an unconditional rule (hasAction false) — in which case the
// database's DefaultAction governs.
type syscallEntry struct {
	syscall   int
	root      []*node
	hasAction bool
	action    Action
}

// FilterDB is an in-memory decision-tree database of syscall filtering
// rules. Entries are kept sorted ascending by syscall number (I6); there is
// at most one entry per syscall.
type FilterDB struct {
	defaultAction Action
	entries       []*syscallEntry

	// nodeBudget, when non-nil, bounds how many decision nodes Add may
	// allocate for an incoming rule chain over the database's lifetime.
	// nil means unbounded, Go's normal allocate-until-the-runtime-panics
	// behavior.
	nodeBudget *int
}

// Option configures a FilterDB at construction time.
type Option func(*FilterDB)

// WithNodeBudget caps the number of decision nodes Add may allocate across
// the database's lifetime. It exists so callers embedding this package in a
// memory-constrained host (the original C implementation's malloc-backed
// arena) can make NO_MEMORY a reachable outcome instead of dead code: Add
// checks the incoming rule chain's length against the remaining budget
// before building any node, so a rejection never touches the existing tree
// (§4.6's allocation-before-mutation discipline).
func WithNodeBudget(n int) Option {
	return func(db *FilterDB) {
		budget := n
		db.nodeBudget = &budget
	}
}

// New creates an empty database that falls back to defaultAction for any
// syscall with no entry.
func New(defaultAction Action, opts ...Option) *FilterDB {
	db := &FilterDB{defaultAction: defaultAction}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Destroy releases the database's entries. Go's garbage collector reclaims
// the tree nodes once they are unreferenced; Destroy exists so callers that
// mirror the teacher's explicit lifecycle (New/Destroy pairs around a
// config-driven object) have a clear release point. A destroyed database
// is left empty but usable: a later Add starts from no entries.
func (db *FilterDB) Destroy() {
	db.entries = nil
}

// DefaultAction returns the action applied to syscalls with no entry.
func (db *FilterDB) DefaultAction() Action {
	return db.defaultAction
}

// findEntry returns the index of syscall's entry and whether it exists,
// using binary search over the ascending-sorted entries slice.
func (db *FilterDB) findEntry(syscall int) (int, bool) {
	i := sort.Search(len(db.entries), func(i int) bool {
		return db.entries[i].syscall >= syscall
	})
	if i < len(db.entries) && db.entries[i].syscall == syscall {
		return i, true
	}
	return i, false
}

// Find returns the entry for a syscall number, if one has been added.
// Read-only callers can use this to walk a single syscall's tree; bpfgen
// and the inspect command visit every entry through Walk instead.
func (db *FilterDB) Find(syscall int) (*SyscallView, bool) {
	i, ok := db.findEntry(syscall)
	if !ok {
		return nil, false
	}
	e := db.entries[i]
	return entryView(e), true
}

func entryView(e *syscallEntry) *SyscallView {
	return &SyscallView{
		Syscall:       e.syscall,
		Unconditional: len(e.root) == 0,
		HasAction:     e.hasAction,
		Action:        e.action,
		root:          e.root,
	}
}

// Add merges rule into the database. It validates and normalizes the rule's
// predicates, then dispatches to case A (new syscall) or mergeEntry (cases
// B, C, D) depending on whether the syscall already has an entry.
func (db *FilterDB) Add(rule Rule) error {
	log := logging.WithOperation(logging.WithSyscall(logging.Default(), rule.Syscall), "add")
	log = logging.WithRuleLength(log, len(rule.Predicates))

	links, err := normalize(rule.Predicates)
	if err != nil {
		log.Error("rule rejected by normalization", "error", err)
		return errors.WrapWithSyscall(err, errors.ErrInvalidConfig, "Add", rule.Syscall)
	}

	// §4.6: every allocation for the incoming chain happens before any
	// mutation of the existing tree. When a node budget is installed, a
	// shortfall is reported here, before db.entries or any existing tree
	// is touched, matching the "NO_MEMORY leaves the database unchanged"
	// contract.
	if db.nodeBudget != nil {
		if len(links) > *db.nodeBudget {
			log.Error("node budget exhausted", "needed", len(links), "remaining", *db.nodeBudget)
			return errors.WrapWithSyscall(errors.ErrAllocFailed, errors.ErrResource, "Add", rule.Syscall)
		}
		*db.nodeBudget -= len(links)
	}

	chain := buildChain(links, rule.Action)

	i, ok := db.findEntry(rule.Syscall)
	if !ok {
		// Case A: brand new syscall entry.
		entry := &syscallEntry{syscall: rule.Syscall}
		if chain == nil {
			entry.hasAction = true
			entry.action = rule.Action
		} else {
			entry.root = []*node{chain}
		}
		db.entries = append(db.entries, nil)
		copy(db.entries[i+1:], db.entries[i:])
		db.entries[i] = entry
		log.Debug("created new syscall entry")
		return nil
	}

	if err := mergeEntry(db.entries[i], chain, rule.Action); err != nil {
		log.Error("merge failed", "error", err)
		return errors.WrapWithSyscall(err, errors.ErrInternal, "Add", rule.Syscall)
	}
	log.Debug("merged rule into existing entry")
	return nil
}

// Syscalls returns the syscall numbers with an entry, in ascending order —
// the database ordering invariant (I6) that bpfgen's outer loop relies on.
func (db *FilterDB) Syscalls() []int {
	out := make([]int, len(db.entries))
	for i, e := range db.entries {
		out[i] = e.syscall
	}
	return out
}

// Len returns the number of syscalls with an entry.
func (db *FilterDB) Len() int {
	return len(db.entries)
}
