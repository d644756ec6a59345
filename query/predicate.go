package query

// Predicate is a conjunction of Terms (§4.12: "predicates are conjunctions
// of equality terms"). A nil/empty Predicate is always satisfied.
type Predicate struct {
	terms []Term
}

// NewPredicate returns an empty (always-true) predicate.
func NewPredicate() Predicate {
	return Predicate{}
}

// NewPredicateFromTerm wraps a single term.
func NewPredicateFromTerm(t Term) Predicate {
	return Predicate{terms: []Term{t}}
}

// ConjoinWith ANDs other's terms into p, returning the combined predicate.
func (p Predicate) ConjoinWith(other Predicate) Predicate {
	merged := make([]Term, 0, len(p.terms)+len(other.terms))
	merged = append(merged, p.terms...)
	merged = append(merged, other.terms...)
	return Predicate{terms: merged}
}

// IsSatisfied reports whether every term holds against s's current row.
func (p Predicate) IsSatisfied(s Scan) (bool, error) {
	for _, t := range p.terms {
		ok, err := t.IsSatisfied(s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ReductionFactor is the product of each term's individual reduction
// factor (§4.11's independence assumption). A non-positive per-term factor
// (an always-false constant=constant term) makes the whole query see no
// matching rows, modeled here as a very large factor.
func (p Predicate) ReductionFactor(src DistinctValuesSource) int {
	factor := 1
	for _, t := range p.terms {
		f := t.ReductionFactor(src)
		if f <= 0 {
			return 1 << 30
		}
		factor *= f
	}
	return factor
}

// SelectSubPred returns the sub-predicate of terms that apply only to
// fields in schema — the portion that can be pushed down past a join
// (§4.11 heuristic planner).
func (p Predicate) SelectSubPred(hasField func(string) bool) (Predicate, bool) {
	var kept []Term
	for _, t := range p.terms {
		if t.lhs.AppliesTo(hasField) && t.rhs.AppliesTo(hasField) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return Predicate{}, false
	}
	return Predicate{terms: kept}, true
}

// JoinSubPred returns the sub-predicate of terms that reference fields
// from both schema1 and schema2 but no field from outside either — the
// portion usable as a join condition between two plans.
func (p Predicate) JoinSubPred(hasField1, hasField2 func(string) bool) (Predicate, bool) {
	combined := func(f string) bool { return hasField1(f) || hasField2(f) }
	var kept []Term
	for _, t := range p.terms {
		if !t.lhs.AppliesTo(combined) || !t.rhs.AppliesTo(combined) {
			continue
		}
		if t.lhs.AppliesTo(hasField1) && t.rhs.AppliesTo(hasField1) {
			continue // wholly within schema1, not a join condition
		}
		if t.lhs.AppliesTo(hasField2) && t.rhs.AppliesTo(hasField2) {
			continue // wholly within schema2
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return Predicate{}, false
	}
	return Predicate{terms: kept}, true
}

// EquatesWithConstant searches the terms for fldname=const, returning the
// first match.
func (p Predicate) EquatesWithConstant(fldname string) (Constant, bool) {
	for _, t := range p.terms {
		if v, ok := t.EquatesWithConstant(fldname); ok {
			return v, true
		}
	}
	return Constant{}, false
}

// EquatesWithField searches the terms for fldname=otherField, returning
// the first match.
func (p Predicate) EquatesWithField(fldname string) (string, bool) {
	for _, t := range p.terms {
		if f, ok := t.EquatesWithField(fldname); ok {
			return f, true
		}
	}
	return "", false
}

func (p Predicate) String() string {
	s := ""
	for i, t := range p.terms {
		if i > 0 {
			s += " and "
		}
		s += t.String()
	}
	return s
}

// IsEmpty reports whether the predicate has no terms.
func (p Predicate) IsEmpty() bool { return len(p.terms) == 0 }
