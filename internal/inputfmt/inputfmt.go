// Package inputfmt parses the YAML problem file format cmd/fmfind reads
// its input from: a signature (named function/predicate symbols with
// arities) and a clause set written as prefix-notation terms, following
// the teacher's habit of driving configuration off YAML documents
// (gopkg.in/yaml.v2, a direct dependency of its go.mod) rather than a
// bespoke text format.
package inputfmt

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/operator-framework/fmfinder/pkg/fo"
)

// SymSpec names one function or predicate symbol and its arity.
type SymSpec struct {
	Name  string `yaml:"name"`
	Arity int    `yaml:"arity"`
}

// LitSpec is one literal: `predicate` names a predicate symbol, or "="
// for an equality literal between exactly two Args; Polarity false
// negates it.
type LitSpec struct {
	Predicate string   `yaml:"predicate"`
	Polarity  bool     `yaml:"polarity"`
	Args      []string `yaml:"args"`
}

// Doc is the on-disk problem file shape.
type Doc struct {
	Functions  []SymSpec   `yaml:"functions"`
	Predicates []SymSpec   `yaml:"predicates"`
	Clauses    [][]LitSpec `yaml:"clauses"`
}

var varPattern = regexp.MustCompile(`^[Xx](\d+)$`)

// Load parses r into a signature and clause set ready for
// prep.Prepare / sortinfer.Infer.
func Load(r io.Reader) (*fo.Signature, []fo.Clause, error) {
	var doc Doc
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("inputfmt: decode: %w", err)
	}

	sig := fo.NewSignature()
	funcID := map[string]fo.SymbolID{}
	predID := map[string]fo.SymbolID{}
	for _, s := range doc.Functions {
		funcID[s.Name] = sig.AddFunction(s.Name, s.Arity)
	}
	for _, s := range doc.Predicates {
		predID[s.Name] = sig.AddPredicate(s.Name, s.Arity)
	}

	clauses := make([]fo.Clause, 0, len(doc.Clauses))
	for _, cs := range doc.Clauses {
		lits := make([]fo.Literal, 0, len(cs))
		for _, ls := range cs {
			args := make([]fo.Term, len(ls.Args))
			for i, a := range ls.Args {
				t, err := parseTerm(a, funcID)
				if err != nil {
					return nil, nil, err
				}
				args[i] = t
			}
			if ls.Predicate == "=" {
				if len(args) != 2 {
					return nil, nil, fmt.Errorf("inputfmt: equality literal needs exactly 2 args, got %d", len(args))
				}
				lits = append(lits, fo.Literal{Polarity: ls.Polarity, Predicate: fo.Eq, Args: args})
				continue
			}
			pid, ok := predID[ls.Predicate]
			if !ok {
				return nil, nil, fmt.Errorf("inputfmt: undeclared predicate %q", ls.Predicate)
			}
			lits = append(lits, fo.Literal{Polarity: ls.Polarity, Predicate: pid, Args: args})
		}
		clauses = append(clauses, fo.Clause{Literals: lits})
	}

	return sig, clauses, nil
}

// parseTerm parses a variable reference ("X0", "X1", ...) or a function
// application ("f(a, X0)", or a bare constant "a").
func parseTerm(s string, funcID map[string]fo.SymbolID) (fo.Term, error) {
	s = strings.TrimSpace(s)
	if m := varPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return fo.Term{}, fmt.Errorf("inputfmt: bad variable %q: %w", s, err)
		}
		return fo.VarTerm(n), nil
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		id, ok := funcID[s]
		if !ok {
			return fo.Term{}, fmt.Errorf("inputfmt: undeclared function/constant %q", s)
		}
		return fo.AppTerm(id), nil
	}
	if !strings.HasSuffix(s, ")") {
		return fo.Term{}, fmt.Errorf("inputfmt: malformed term %q", s)
	}
	name := s[:open]
	inner := s[open+1 : len(s)-1]
	id, ok := funcID[name]
	if !ok {
		return fo.Term{}, fmt.Errorf("inputfmt: undeclared function %q", name)
	}
	parts, err := splitArgs(inner)
	if err != nil {
		return fo.Term{}, err
	}
	args := make([]fo.Term, len(parts))
	for i, p := range parts {
		t, err := parseTerm(p, funcID)
		if err != nil {
			return fo.Term{}, err
		}
		args[i] = t
	}
	return fo.AppTerm(id, args...), nil
}

// splitArgs splits a comma-separated argument list, respecting nested
// parentheses.
func splitArgs(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("inputfmt: unbalanced parentheses in %q", s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("inputfmt: unbalanced parentheses in %q", s)
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts, nil
}
