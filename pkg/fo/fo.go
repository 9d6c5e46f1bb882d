// Package fo provides a read-only view over a first-order signature and
// its clause set: function and predicate symbols with arities, and
// clauses as disjunctions of flat literals over variables.
package fo

import "fmt"

// SymbolID identifies a function or predicate symbol. Predicate id 0 is
// reserved for equality and is never emitted as an ordinary predicate
// atom (mirrors the original's "cannot have predicate 0 here" rule).
type SymbolID uint32

// Eq is the reserved predicate id standing for equality literals.
const Eq SymbolID = 0

// Element is a domain index in the range [1..n] for some model size n.
type Element uint32

// Symbol describes a single function or predicate symbol.
type Symbol struct {
	ID         SymbolID
	Name       string
	Arity      int
	Eliminated bool
	// Introduced marks symbols synthesised by preprocessing (definition
	// introduction), which do not appear in the caller's original
	// clause set and are, by default, omitted from a printed model.
	Introduced bool

	usageCnt int
}

func (s *Symbol) UsageCount() int   { return s.usageCnt }
func (s *Symbol) IncUsageCount()    { s.usageCnt++ }
func (s *Symbol) ResetUsageCount()  { s.usageCnt = 0 }

// Signature is a dense table of function and predicate symbols.
type Signature struct {
	Functions  []*Symbol
	Predicates []*Symbol
}

// NewSignature returns an empty signature.
func NewSignature() *Signature {
	return &Signature{}
}

// AddFunction registers a function symbol and returns its id.
func (s *Signature) AddFunction(name string, arity int) SymbolID {
	id := SymbolID(len(s.Functions))
	s.Functions = append(s.Functions, &Symbol{ID: id, Name: name, Arity: arity})
	return id
}

// AddPredicate registers a predicate symbol and returns its id. The
// first predicate registered through this call is never id 0; id 0
// stays reserved for Eq.
func (s *Signature) AddPredicate(name string, arity int) SymbolID {
	if len(s.Predicates) == 0 {
		// Reserve slot 0 for Eq so predicate ids line up with the
		// original's p_offsets[0] being skipped.
		s.Predicates = append(s.Predicates, &Symbol{ID: Eq, Name: "=", Arity: 2})
	}
	id := SymbolID(len(s.Predicates))
	s.Predicates = append(s.Predicates, &Symbol{ID: id, Name: name, Arity: arity})
	return id
}

func (s *Signature) Function(id SymbolID) *Symbol  { return s.Functions[id] }
func (s *Signature) Predicate(id SymbolID) *Symbol { return s.Predicates[id] }

func (s *Signature) FunctionArity(id SymbolID) int  { return s.Functions[id].Arity }
func (s *Signature) PredicateArity(id SymbolID) int { return s.Predicates[id].Arity }

// Term is either a bound variable or an application of a function
// symbol to argument terms.
type Term struct {
	IsVar  bool
	Var    int      // valid iff IsVar
	Head   SymbolID // valid iff !IsVar
	Args   []Term
}

func VarTerm(v int) Term { return Term{IsVar: true, Var: v} }

func AppTerm(f SymbolID, args ...Term) Term { return Term{Head: f, Args: args} }

func (t Term) String() string {
	if t.IsVar {
		return fmt.Sprintf("X%d", t.Var)
	}
	if len(t.Args) == 0 {
		return fmt.Sprintf("f%d", t.Head)
	}
	return fmt.Sprintf("f%d(...)", t.Head)
}

// Literal is a single (possibly negated) atom. Equality literals use
// Predicate == Eq with exactly two Args; ordinary predicate atoms use
// their own Predicate id with Args holding the (variable-only, once
// flattened) arguments.
type Literal struct {
	Polarity  bool
	Predicate SymbolID
	Args      []Term
}

// IsEquality reports whether the receiver is an equality literal.
func (l Literal) IsEquality() bool { return l.Predicate == Eq }

// IsTwoVarEquality reports whether the receiver is x = y / x != y for
// two distinct term slots that are both variables.
func (l Literal) IsTwoVarEquality() bool {
	return l.IsEquality() && len(l.Args) == 2 && l.Args[0].IsVar && l.Args[1].IsVar
}

// InvariantViolation is a fatal internal-consistency failure — a sort,
// bounds, or flatness invariant that should be impossible by
// construction did not hold. Callers are expected to panic with it and
// recover only at a process boundary; it is never returned as an
// ordinary error.
type InvariantViolation struct {
	Detail string
}

func (v InvariantViolation) Error() string { return "invariant violation: " + v.Detail }

// Clause is a disjunction of literals.
type Clause struct {
	Literals []Literal
	// VarCount is the number of distinct logical variables occurring in
	// the clause, valid once the clause has been through prep.Normalize.
	VarCount int
}

// Ground reports whether the clause has no variables.
func (c Clause) Ground() bool { return c.VarCount == 0 }

// Empty reports whether the clause has no literals (the refutation
// witness clause).
func (c Clause) Empty() bool { return len(c.Literals) == 0 }
