package expr

import (
	"math"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Walk visits sym and its descendants depth first, parents before children.
// Returning false from fn skips the node's children.
func Walk(sym Symbol, fn func(Symbol) bool) {
	if !fn(sym) {
		return
	}
	for _, c := range sym.Children() {
		Walk(c, fn)
	}
}

// Map rewrites sym bottom up. fn receives each node after its children have
// been rewritten and returns the replacement.
func Map(sym Symbol, fn func(Symbol) (Symbol, error)) (Symbol, error) {
	children := sym.Children()
	if len(children) > 0 {
		rewritten := make([]Symbol, len(children))
		changed := false
		for i, c := range children {
			nc, err := Map(c, fn)
			if err != nil {
				return nil, err
			}
			rewritten[i] = nc
			if nc != c {
				changed = true
			}
		}
		if changed {
			sym = sym.withChildren(rewritten)
		}
	}
	return fn(sym)
}

// Variables returns the distinct Variables referenced by sym.
func Variables(sym Symbol) []*Variable {
	seen := make(map[uint64]bool)
	var out []*Variable
	Walk(sym, func(s Symbol) bool {
		if v, ok := s.(*Variable); ok && !seen[v.ID()] {
			seen[v.ID()] = true
			out = append(out, v)
		}
		return true
	})
	return out
}

// Validate checks that operands of every binary operator share a domain
// (or one side has none) and that concatenations follow CanonicalOrder.
func Validate(sym Symbol) error {
	var err error
	Walk(sym, func(s Symbol) bool {
		if err != nil {
			return false
		}
		switch n := s.(type) {
		case *Binary:
			ld, rd := n.Left().Domain(), n.Right().Domain()
			if len(ld) > 0 && len(rd) > 0 && !slices.Equal(ld, rd) {
				err = &DomainError{Node: n.String(), Left: ld, Right: rd, Reason: "operands on different domains"}
			}
		case *Concatenation:
			err = validateConcatenation(n)
		}
		return true
	})
	return err
}

func validateConcatenation(c *Concatenation) error {
	last := -1
	var prev []string
	for _, ch := range c.Children() {
		d := ch.Domain()
		if len(d) == 0 {
			return &DomainError{Node: c.String(), Left: prev, Right: d, Reason: "concatenation child has no domain"}
		}
		rank := slices.Index(CanonicalOrder, d[0])
		if rank < 0 {
			continue
		}
		if rank <= last {
			return &DomainError{Node: c.String(), Left: prev, Right: d, Reason: "regions out of canonical order"}
		}
		last, prev = rank, d
	}
	return nil
}

// Fingerprint hashes the structure of the given trees. Node identities are
// excluded so structurally equal models share a fingerprint.
func Fingerprint(syms ...Symbol) uint64 {
	d := xxhash.New()
	for _, s := range syms {
		writeStructure(d, s)
		_, _ = d.WriteString(";")
	}
	return d.Sum64()
}

func writeStructure(d *xxhash.Digest, sym Symbol) {
	_, _ = d.WriteString(typeTag(sym))
	_, _ = d.WriteString(sym.Name())
	for _, dom := range sym.Domain() {
		_, _ = d.WriteString("@" + dom)
	}
	switch s := sym.(type) {
	case *Scalar:
		_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(s.Value), 16))
	case *Vector:
		for _, v := range s.Values {
			_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(v), 16) + ",")
		}
	case *StateVector:
		_, _ = d.WriteString(strconv.Itoa(s.Start) + ":" + strconv.Itoa(s.End))
	case *Broadcast:
		_, _ = d.WriteString("#" + strconv.Itoa(s.Size))
	}
	_, _ = d.WriteString("(")
	for _, c := range sym.Children() {
		writeStructure(d, c)
		_, _ = d.WriteString(",")
	}
	_, _ = d.WriteString(")")
}

func typeTag(sym Symbol) string {
	switch sym.(type) {
	case *Scalar:
		return "s"
	case *Vector:
		return "v"
	case *Parameter:
		return "p"
	case *InputParameter:
		return "i"
	case *Time:
		return "t"
	case *Variable:
		return "var"
	case *StateVector:
		return "y"
	case *Binary:
		return "b"
	case *Function:
		return "f"
	case *Broadcast:
		return "bc"
	case *Concatenation:
		return "c"
	case *XAverage:
		return "xa"
	}
	return "?"
}
