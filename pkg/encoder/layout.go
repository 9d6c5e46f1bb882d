package encoder

import (
	"fmt"
	"math"

	"github.com/operator-framework/fmfinder/pkg/fo"
)

// maxSATVar bounds the propositional variable address space to what
// satbridge.Lit (an int32) can represent, matching spec.md §3's
// "the total variable count must fit in the unsigned range of the SAT
// variable type."
const maxSATVar = math.MaxInt32

// ErrOverflow is returned by BuildLayout when the propositional
// variable space for the requested model size would not fit in the SAT
// variable type.
type ErrOverflow struct {
	Size uint64
}

func (e ErrOverflow) Error() string {
	return fmt.Sprintf("variable space overflow: %d variables required exceeds addressable range", e.Size)
}

// Layout is the propositional variable address space for one model
// size: contiguous per-symbol blocks assigned in dependency-free order
// (functions, then predicates, skipping the reserved equality slot).
type Layout struct {
	N        int
	FOffsets map[fo.SymbolID]int
	POffsets map[fo.SymbolID]int
	Total    int
}

// BuildLayout computes offsets for every live (non-eliminated) symbol
// at model size n: function f gets a block of n^(arity+1) variables,
// predicate p gets a block of n^arity variables (spec.md §3).
func BuildLayout(sig *fo.Signature, deletedF, deletedP map[fo.SymbolID]bool, n int) (*Layout, error) {
	l := &Layout{
		N:        n,
		FOffsets: map[fo.SymbolID]int{},
		POffsets: map[fo.SymbolID]int{},
	}
	offset := uint64(1)
	for _, f := range sig.Functions {
		if deletedF[f.ID] {
			continue
		}
		l.FOffsets[f.ID] = int(offset)
		add := ipow(uint64(n), uint64(f.Arity+1))
		if add > maxSATVar-offset {
			return nil, ErrOverflow{Size: offset + add}
		}
		offset += add
	}
	for _, p := range sig.Predicates {
		if p.ID == fo.Eq || deletedP[p.ID] {
			continue
		}
		l.POffsets[p.ID] = int(offset)
		add := ipow(uint64(n), uint64(p.Arity))
		if add > maxSATVar-offset {
			return nil, ErrOverflow{Size: offset + add}
		}
		offset += add
	}
	if offset-1 > maxSATVar {
		return nil, ErrOverflow{Size: offset - 1}
	}
	l.Total = int(offset - 1)
	return l, nil
}

// ipow returns base^exp, saturating at math.MaxUint64-maxSATVar so that
// adding an offset no larger than maxSATVar to the result cannot wrap.
func ipow(base, exp uint64) uint64 {
	const limit = math.MaxUint64 - maxSATVar
	r := uint64(1)
	for i := uint64(0); i < exp; i++ {
		if base != 0 && r > limit/base {
			return limit
		}
		r *= base
	}
	return r
}

// Var computes the 1-based SAT variable for a symbol/tuple pair,
// implementing spec.md §4.4's
//
//	var = offset[symbol] + Σᵢ (tupleᵢ − 1) · n^i
//
// Every tuple element must lie in [1, l.N]: callers only ever reach
// this with domain indices bounded by the round's model size, so a
// value outside that range means a bounds invariant was violated
// upstream (a mis-clamped fbounds/pbounds entry, an off-by-one grounding
// index), not a condition a caller can recover from.
func (l *Layout) Var(isFunction bool, sym fo.SymbolID, tuple []fo.Element) int {
	var offset int
	if isFunction {
		offset = l.FOffsets[sym]
	} else {
		offset = l.POffsets[sym]
	}
	v := offset
	mult := 1
	for _, d := range tuple {
		if int(d) < 1 || int(d) > l.N {
			panic(fo.InvariantViolation{Detail: fmt.Sprintf(
				"variable requested for out-of-range domain index %d (model size %d, symbol %d)", d, l.N, sym)})
		}
		v += mult * (int(d) - 1)
		mult *= l.N
	}
	return v
}
