package filterdb

import (
	"errors"
	"testing"

	dberrors "github.com/scantist-ossops-m2/seccompdb/errors"
)

func TestNormalize_OperatorBasis(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawOp
		want   Op
		branch bool
	}{
		{"EQ", RawEQ, OpEQ, true},
		{"NE", RawNE, OpEQ, false},
		{"LT", RawLT, OpGE, false},
		{"LE", RawLE, OpGT, false},
		{"GT", RawGT, OpGT, true},
		{"GE", RawGE, OpGE, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := normalize([]RawPredicate{{ArgIndex: 0, Op: tt.raw, Datum: 5}})
			if err != nil {
				t.Fatalf("normalize() error = %v", err)
			}
			if len(links) != 1 {
				t.Fatalf("len(links) = %d, want 1", len(links))
			}
			if links[0].pred.Op != tt.want {
				t.Errorf("stored op = %v, want %v", links[0].pred.Op, tt.want)
			}
			if links[0].branch != tt.branch {
				t.Errorf("branch = %v, want %v", links[0].branch, tt.branch)
			}
		})
	}
}

func TestNormalize_SortsByArgIndex(t *testing.T) {
	links, err := normalize([]RawPredicate{
		{ArgIndex: 2, Op: RawEQ, Datum: 1},
		{ArgIndex: 0, Op: RawEQ, Datum: 2},
		{ArgIndex: 1, Op: RawEQ, Datum: 3},
	})
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	for i, want := range []uint8{0, 1, 2} {
		if links[i].pred.ArgIndex != want {
			t.Errorf("links[%d].ArgIndex = %d, want %d", i, links[i].pred.ArgIndex, want)
		}
	}
}

func TestNormalize_DuplicateArgIndex(t *testing.T) {
	_, err := normalize([]RawPredicate{
		{ArgIndex: 0, Op: RawEQ, Datum: 1},
		{ArgIndex: 0, Op: RawNE, Datum: 2},
	})
	if !errors.Is(err, dberrors.ErrDuplicateArgIndex) {
		t.Errorf("expected ErrDuplicateArgIndex, got %v", err)
	}
}

func TestNormalize_TooManyPredicates(t *testing.T) {
	raw := make([]RawPredicate, MaxArgs+1)
	for i := range raw {
		raw[i] = RawPredicate{ArgIndex: uint8(i), Op: RawEQ, Datum: uint64(i)}
	}
	_, err := normalize(raw)
	if !errors.Is(err, dberrors.ErrTooManyPredicates) {
		t.Errorf("expected ErrTooManyPredicates, got %v", err)
	}
}

func TestNormalize_EmptyChain(t *testing.T) {
	links, err := normalize(nil)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if len(links) != 0 {
		t.Errorf("len(links) = %d, want 0", len(links))
	}
}
