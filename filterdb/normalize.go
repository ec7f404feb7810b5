package filterdb

import (
	"sort"

	"github.com/scantist-ossops-m2/seccompdb/errors"
)

// chainLink is one predicate of a rule after normalization: the stored
// predicate plus the action-branch bit recorded in the raw-operator table.
type chainLink struct {
	pred   Predicate
	branch bool
}

// normalize validates and converts a rule's raw predicates into an ordered
// chain of chainLinks, sorted by argument index ascending (I5: argument
// index is non-decreasing along any root-to-leaf path). It rejects rules
// that reference the same argument index twice or that exceed MaxArgs
// predicates, and rejects any raw operator outside the supported set.
func normalize(raw []RawPredicate) ([]chainLink, error) {
	if len(raw) > MaxArgs {
		return nil, errors.ErrTooManyPredicates
	}

	links := make([]chainLink, len(raw))
	seen := make(map[uint8]bool, len(raw))
	for i, rp := range raw {
		if seen[rp.ArgIndex] {
			return nil, errors.ErrDuplicateArgIndex
		}
		seen[rp.ArgIndex] = true

		op, branch, err := rawOpTable(rp.Op)
		if err != nil {
			return nil, err
		}
		links[i] = chainLink{
			pred:   Predicate{ArgIndex: rp.ArgIndex, Op: op, Datum: rp.Datum},
			branch: branch,
		}
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].pred.ArgIndex < links[j].pred.ArgIndex
	})
	return links, nil
}
