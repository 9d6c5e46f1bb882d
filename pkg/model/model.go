// Package model materialises a finite interpretation from a satisfying
// propositional assignment: which domain element each constant denotes,
// the graph of every function, and the extension of every predicate.
//
// Grounded on original_source/FMB/FiniteModelBuilder.cpp's
// onModelFound()/FiniteModel construction and toString() dump, and on
// the preserved Open Question about partial functions under tight sort
// bounds (the original's own `//TODO fix this` left unresolved there).
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/operator-framework/fmfinder/pkg/encoder"
	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/satbridge"
)

// FiniteModel is the materialised interpretation: every live symbol
// mapped to its extension over the domain [1..N].
type FiniteModel struct {
	N int

	// Constants[c] is the domain element the 0-ary function c denotes.
	Constants map[fo.SymbolID]fo.Element
	// Functions[f][tupleKey(d̄)] is the image f(d̄); a missing entry means
	// the function is left partial for that tuple (see the package doc's
	// Open Question).
	Functions map[fo.SymbolID]map[string]fo.Element
	// Predicates[p][tupleKey(d̄)] is the truth value of p(d̄).
	Predicates map[fo.SymbolID]map[string]bool

	sig *fo.Signature
}

func tupleKey(t []fo.Element) string {
	var b strings.Builder
	for i, e := range t {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", e)
	}
	return b.String()
}

// Extract reads every live symbol's extension out of a satisfying
// assignment (spec.md §4.6). It does not itself check that the
// assignment is actually satisfying.
func Extract(sig *fo.Signature, deletedF, deletedP map[fo.SymbolID]bool, layout *encoder.Layout, assignment satbridge.Bridge, n int) *FiniteModel {
	m := &FiniteModel{
		N:          n,
		Constants:  map[fo.SymbolID]fo.Element{},
		Functions:  map[fo.SymbolID]map[string]fo.Element{},
		Predicates: map[fo.SymbolID]map[string]bool{},
		sig:        sig,
	}

	for _, f := range sig.Functions {
		if deletedF[f.ID] {
			continue
		}
		if f.Arity == 0 {
			if e, ok := findImage(layout, assignment, true, f.ID, nil, n); ok {
				m.Constants[f.ID] = e
			}
			continue
		}
		table := map[string]fo.Element{}
		forEachTuple(f.Arity, n, func(dbar []fo.Element) {
			if e, ok := findImage(layout, assignment, true, f.ID, dbar, n); ok {
				table[tupleKey(dbar)] = e
			}
		})
		m.Functions[f.ID] = table
	}

	for _, p := range sig.Predicates {
		if p.ID == fo.Eq || deletedP[p.ID] {
			continue
		}
		table := map[string]bool{}
		forEachTuple(p.Arity, n, func(dbar []fo.Element) {
			v := layout.Var(false, p.ID, dbar)
			table[tupleKey(dbar)] = assignment.ValueOf(satbridge.NewLit(v, true))
		})
		m.Predicates[p.ID] = table
	}

	return m
}

// findImage locates the unique e in [1..n] with var(f,(d̄,e)) true. If
// none is found — possible under tight sort bounds skipping some values
// entirely, per the preserved Open Question — ok is false and the
// caller leaves that entry out of the model, which stays well-defined
// on the restricted domain.
func findImage(layout *encoder.Layout, assignment satbridge.Bridge, isFunction bool, sym fo.SymbolID, dbar []fo.Element, n int) (fo.Element, bool) {
	for e := 1; e <= n; e++ {
		tuple := append(append([]fo.Element{}, dbar...), fo.Element(e))
		v := layout.Var(isFunction, sym, tuple)
		if assignment.ValueOf(satbridge.NewLit(v, true)) {
			return fo.Element(e), true
		}
	}
	return 0, false
}

func forEachTuple(arity, n int, fn func([]fo.Element)) {
	if arity == 0 {
		fn(nil)
		return
	}
	counter := make([]int, arity)
	for i := range counter {
		counter[i] = 1
	}
	for {
		tuple := make([]fo.Element, arity)
		for i, c := range counter {
			tuple[i] = fo.Element(c)
		}
		fn(tuple)
		i := arity - 1
		for i >= 0 {
			counter[i]++
			if counter[i] <= n {
				break
			}
			counter[i] = 1
			i--
		}
		if i < 0 {
			return
		}
	}
}

// String renders the model as a deterministic, sorted-by-symbol-name
// text table, mirroring FiniteModel::toString()'s per-symbol dump
// referenced from onModelFound (env.statistics->model = model.toString()).
func (m *FiniteModel) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "domain size %d\n", m.N)

	type namedID struct {
		name string
		id   fo.SymbolID
	}
	var consts, fns []namedID
	for _, f := range m.sig.Functions {
		if f.Introduced {
			continue
		}
		if f.Arity == 0 {
			if _, ok := m.Constants[f.ID]; ok {
				consts = append(consts, namedID{f.Name, f.ID})
			}
		} else if _, ok := m.Functions[f.ID]; ok {
			fns = append(fns, namedID{f.Name, f.ID})
		}
	}
	sort.Slice(consts, func(i, j int) bool { return consts[i].name < consts[j].name })
	sort.Slice(fns, func(i, j int) bool { return fns[i].name < fns[j].name })

	for _, c := range consts {
		fmt.Fprintf(&b, "%s = %d\n", c.name, m.Constants[c.id])
	}
	for _, f := range fns {
		table := m.Functions[f.id]
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s(%s) = %d\n", f.name, k, table[k])
		}
	}

	var preds []namedID
	for _, p := range m.sig.Predicates {
		if p.ID == fo.Eq || p.Introduced {
			continue
		}
		if _, ok := m.Predicates[p.ID]; ok {
			preds = append(preds, namedID{p.Name, p.ID})
		}
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i].name < preds[j].name })
	for _, p := range preds {
		table := m.Predicates[p.id]
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s(%s) = %t\n", p.name, k, table[k])
		}
	}

	return b.String()
}
