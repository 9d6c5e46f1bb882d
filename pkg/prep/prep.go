// Package prep implements the ClausePreparer contract: it flattens
// clauses so that every non-variable term appears only as the head of
// an equation to a fresh variable, and every predicate argument is a
// variable, then renumbers variables densely per clause.
//
// Grounded on original_source/FMB/FiniteModelBuilder.cpp's use of
// DefinitionIntroduction and ClauseFlattening ahead of Renaming in
// init(), and on Vampire's Renaming::normalizeVariables for the
// per-clause variable numbering.
package prep

import "github.com/operator-framework/fmfinder/pkg/fo"

// ErrRefutation is returned when flattening produces the empty clause,
// which is a proof of unsatisfiability discovered during preparation.
type ErrRefutation struct {
	Clause fo.Clause
}

func (e ErrRefutation) Error() string { return "refutation found during clause preparation" }

// freshVar mints the clause-local variable ids definition introduction
// needs; this is purely syntactic and needs nothing from the signature.
type freshVar struct{ next int }

func (f *freshVar) alloc() int {
	v := f.next
	f.next++
	return v
}

// Prepare flattens and normalises a single input clause, returning the
// flat clauses it expands into. Definition introduction adds literals to
// the clause rather than new clauses, so the result always holds exactly
// one clause.
func Prepare(c fo.Clause) ([]fo.Clause, error) {
	flat := flatten(c)
	out := make([]fo.Clause, 0, len(flat))
	for _, fc := range flat {
		if fc.Empty() {
			return nil, ErrRefutation{Clause: fc}
		}
		assertFlat(fc)
		out = append(out, Normalize(fc))
	}
	return out, nil
}

// assertFlat checks the flatness invariant flatten is supposed to
// establish: every predicate argument, and every equality argument
// other than a definitional equation's non-variable side, is a
// variable. A violation here means flattenTerm failed to eliminate a
// nested application, which every other package downstream (sort
// inference, layout, symmetry breaking) assumes can never happen.
func assertFlat(c fo.Clause) {
	for _, l := range c.Literals {
		if l.IsEquality() {
			lhs, rhs := l.Args[0], l.Args[1]
			if !rhs.IsVar {
				panic(fo.InvariantViolation{Detail: "flatten left a non-variable on the right of an equality"})
			}
			for _, a := range lhs.Args {
				if !a.IsVar {
					panic(fo.InvariantViolation{Detail: "flatten left a nested application inside a definitional equality"})
				}
			}
			continue
		}
		for _, a := range l.Args {
			if !a.IsVar {
				panic(fo.InvariantViolation{Detail: "flatten left a non-variable predicate argument"})
			}
		}
	}
}

// flatten eliminates nested function applications by definition
// introduction: a non-variable argument to a function or predicate is
// replaced by a fresh variable z, and the clause gains a negative
// definition literal `f(x̄) != z` recording the substitution (so the
// clause remains logically equivalent: the new clause is
// `¬(z = f(x̄)) ∨ C[z/f(x̄)]`, i.e. it only fires when the definition
// holds).
func flatten(c fo.Clause) []fo.Clause {
	fv := &freshVar{next: maxVar(c) + 1}
	lits := make([]fo.Literal, 0, len(c.Literals))
	var extra []fo.Literal
	for _, l := range c.Literals {
		lits = append(lits, flattenLiteral(l, fv, &extra)...)
	}
	lits = append(lits, extra...)
	return []fo.Clause{{Literals: lits}}
}

func flattenLiteral(l fo.Literal, fv *freshVar, extra *[]fo.Literal) []fo.Literal {
	newArgs := make([]fo.Term, len(l.Args))
	for i, a := range l.Args {
		newArgs[i] = flattenTerm(a, fv, extra)
	}
	return []fo.Literal{{Polarity: l.Polarity, Predicate: l.Predicate, Args: newArgs}}
}

// flattenTerm returns a variable standing for t, adding definition
// literals to extra as needed so t's structure is preserved.
func flattenTerm(t fo.Term, fv *freshVar, extra *[]fo.Literal) fo.Term {
	if t.IsVar {
		return t
	}
	flatArgs := make([]fo.Term, len(t.Args))
	for i, a := range t.Args {
		flatArgs[i] = flattenTerm(a, fv, extra)
	}
	z := fo.VarTerm(fv.alloc())
	// f(x̄) != z, i.e. this literal is only satisfied when z equals the
	// application; combined with the rest of the (disjunctive) clause,
	// this reproduces the semantics of the original nested term.
	*extra = append(*extra, fo.Literal{
		Polarity:  false,
		Predicate: fo.Eq,
		Args:      []fo.Term{{Head: t.Head, Args: flatArgs}, z},
	})
	return z
}

func maxVar(c fo.Clause) int {
	m := -1
	var walk func(t fo.Term)
	walk = func(t fo.Term) {
		if t.IsVar {
			if t.Var > m {
				m = t.Var
			}
			return
		}
		for _, a := range t.Args {
			walk(a)
		}
	}
	for _, l := range c.Literals {
		for _, a := range l.Args {
			walk(a)
		}
	}
	return m
}

// Normalize renumbers a clause's variables densely from 0, in order of
// first occurrence, and sets VarCount.
func Normalize(c fo.Clause) fo.Clause {
	remap := map[int]int{}
	var walk func(t fo.Term) fo.Term
	walk = func(t fo.Term) fo.Term {
		if t.IsVar {
			nv, ok := remap[t.Var]
			if !ok {
				nv = len(remap)
				remap[t.Var] = nv
			}
			return fo.VarTerm(nv)
		}
		args := make([]fo.Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = walk(a)
		}
		return fo.Term{Head: t.Head, Args: args}
	}
	lits := make([]fo.Literal, len(c.Literals))
	for i, l := range c.Literals {
		args := make([]fo.Term, len(l.Args))
		for j, a := range l.Args {
			args[j] = walk(a)
		}
		lits[i] = fo.Literal{Polarity: l.Polarity, Predicate: l.Predicate, Args: args}
	}
	return fo.Clause{Literals: lits, VarCount: len(remap)}
}
