package filterdb

import "github.com/scantist-ossops-m2/seccompdb/errors"

// maxMergeDepth bounds the recursive descent performed by mergeLevel. Depth
// is bounded by MaxArgs because each step consumes one predicate from the
// incoming chain; exceeding it means an invariant has been violated
// upstream (normalize should never hand merge a chain longer than MaxArgs),
// and is reported as an internal error rather than looped on forever.
const maxMergeDepth = MaxArgs + 1

// mergeEntry merges a freshly built, unmerged rule chain (root, possibly nil
// for an unconditional rule) into an existing syscall entry, implementing
// cases B, C and D of the merge algorithm. Case A (brand new syscall) is
// handled by the caller, which constructs the entry directly instead of
// calling mergeEntry.
func mergeEntry(entry *syscallEntry, root *node, action Action) error {
	switch {
	case entry.root == nil:
		// Case B: the entry already fires an action unconditionally
		// (either from an earlier zero-predicate rule or a prior
		// collapse via case C below). Any further rule on this
		// syscall, conditional or not, is strictly redundant.
		return nil

	case root == nil:
		// Case C: the new rule is unconditional. It subsumes whatever
		// tree previously existed, so the tree is dropped and the
		// entry becomes action-only.
		entry.root = nil
		entry.hasAction = true
		entry.action = action
		return nil

	default:
		// Case D: both the entry and the new rule are conditional;
		// walk the new chain into the existing tree level by level.
		return mergeLevel(&entry.root, root, 0)
	}
}

// mergeLevel merges a single fresh chain node c into the level list pointed
// to by level, recursing into whichever branch the walk continues on. depth
// is purely a safety bound; the merge never needs more than MaxArgs levels.
func mergeLevel(level *[]*node, c *node, depth int) error {
	if depth > maxMergeDepth {
		return errors.ErrMergeInvariant
	}

	i, found := findInLevel(*level, c.pred)
	if !found {
		// Keys differ: c's key occupies no existing position at this
		// level, so the whole remaining chain is spliced in as a new
		// sibling alternative.
		*level = insertInLevel(*level, c)
		return nil
	}

	ec := (*level)[i]
	ec.refcount++

	switch {
	case ec.hasAction && c.hasAction:
		return mergeLeafLeaf(level, i, ec, c)
	case ec.hasAction && !c.hasAction:
		return mergeLeafInternal(ec, c, depth)
	case !ec.hasAction && c.hasAction:
		mergeInternalLeaf(ec, c)
		return nil
	default:
		return mergeInternalInternal(ec, c, depth)
	}
}

// mergeLeafLeaf handles case D(a): both the existing node and the
// incoming node are leaves for the same predicate key.
func mergeLeafLeaf(level *[]*node, i int, ec, c *node) error {
	if ec.action == c.action && ec.actionBranch == c.actionBranch {
		// Same predicate, same branch, same verdict: the existing
		// leaf already covers exactly what c asks for. c is
		// discarded. Comparing the full (action, branch) pair rather
		// than branch alone is what makes this rule idempotent (P6):
		// re-adding a rule identical to one already merged must be a
		// no-op, not a removal.
		return nil
	}
	// Either the branches disagree (the predicate would fire the
	// action on both outcomes, i.e. unconditionally) or the branches
	// agree but the verdicts conflict (the predicate can't encode two
	// different actions for the same outcome). Either way the
	// predicate can no longer discriminate anything useful here:
	// remove ec from the level list entirely.
	*level = removeFromLevel(*level, i)
	return nil
}

// mergeLeafInternal handles case D(b): the existing node is a leaf, the
// incoming node is internal (it has a continuation).
func mergeLeafInternal(ec, c *node, depth int) error {
	branch, child, ok := c.singleChild()
	if !ok {
		return errors.ErrMergeInvariant
	}
	if branch == ec.actionBranch {
		// c's continuation lands on ec's action-branch side, where ec
		// already fires unconditionally. c's entire subtree below
		// this point is strictly redundant.
		return nil
	}
	// c's continuation lands on ec's non-action branch, the only
	// branch a leaf may carry a child on. Graft it there, merging with
	// whatever already occupies that branch.
	return mergeLevel(ec.branchPtr(!ec.actionBranch), child, depth+1)
}

// mergeInternalLeaf handles case D(c): the existing node is internal, the
// incoming node is a leaf. The new rule is shorter (more inclusive) than
// whatever built the existing subtree, so it wins: ec is promoted to a
// leaf carrying c's action, and the subtree on the new action-branch side
// becomes unreachable.
func mergeInternalLeaf(ec, c *node) {
	*ec.branchPtr(c.actionBranch) = nil
	ec.hasAction = true
	ec.action = c.action
	ec.actionBranch = c.actionBranch
}

// mergeInternalInternal handles case D(d): both nodes are internal. The
// walk either grafts c's continuation directly (if ec has no child on that
// branch yet) or descends one more level.
func mergeInternalInternal(ec, c *node, depth int) error {
	branch, child, ok := c.singleChild()
	if !ok {
		return errors.ErrMergeInvariant
	}
	if len(ec.branch(branch)) == 0 {
		*ec.branchPtr(branch) = []*node{child}
		return nil
	}
	return mergeLevel(ec.branchPtr(branch), child, depth+1)
}
