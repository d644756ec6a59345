package query

// Term is an equality comparison between two expressions (§4.12: terms are
// field=field or field=const; no other comparison operators are modeled).
type Term struct {
	lhs, rhs Expression
}

// NewTerm builds the equality term lhs = rhs.
func NewTerm(lhs, rhs Expression) Term {
	return Term{lhs: lhs, rhs: rhs}
}

// IsSatisfied evaluates both sides against s's current row and reports
// whether they're equal.
func (t Term) IsSatisfied(s Scan) (bool, error) {
	lv, err := t.lhs.Evaluate(s)
	if err != nil {
		return false, err
	}
	rv, err := t.rhs.Evaluate(s)
	if err != nil {
		return false, err
	}
	return lv.Equals(rv), nil
}

// DistinctValuesSource is the slice of Plan that ReductionFactor needs —
// kept as a local interface so the query package doesn't depend on plan
// (which depends on query for Scan/Predicate).
type DistinctValuesSource interface {
	DistinctValues(fldname string) int
}

// ReductionFactor estimates 1/selectivity for cost-based planning (§4.11).
// field=field terms are assumed to match the more selective side's
// distinct-value count; field=const terms assume uniform distribution
// over the field's distinct values.
func (t Term) ReductionFactor(p DistinctValuesSource) int {
	var lname, rname string
	if t.lhs.IsFieldName() && t.rhs.IsFieldName() {
		lname = t.lhs.AsFieldName()
		rname = t.rhs.AsFieldName()
		lv := p.DistinctValues(lname)
		rv := p.DistinctValues(rname)
		if lv > rv {
			return lv
		}
		return rv
	}
	if t.lhs.IsFieldName() {
		lname = t.lhs.AsFieldName()
		return p.DistinctValues(lname)
	}
	if t.rhs.IsFieldName() {
		rname = t.rhs.AsFieldName()
		return p.DistinctValues(rname)
	}
	if t.lhs.AsConstant().Equals(t.rhs.AsConstant()) {
		return 1
	}
	return -1 // always false; caller treats <=0 as "never satisfied"
}

// EquatesWithConstant returns (value, true) if this term has the form
// fldname=const (in either order).
func (t Term) EquatesWithConstant(fldname string) (Constant, bool) {
	if t.lhs.IsFieldName() && t.lhs.AsFieldName() == fldname && !t.rhs.IsFieldName() {
		return t.rhs.AsConstant(), true
	}
	if t.rhs.IsFieldName() && t.rhs.AsFieldName() == fldname && !t.lhs.IsFieldName() {
		return t.lhs.AsConstant(), true
	}
	return Constant{}, false
}

// EquatesWithField returns (otherField, true) if this term has the form
// fldname=otherField (in either order).
func (t Term) EquatesWithField(fldname string) (string, bool) {
	if t.lhs.IsFieldName() && t.lhs.AsFieldName() == fldname && t.rhs.IsFieldName() {
		return t.rhs.AsFieldName(), true
	}
	if t.rhs.IsFieldName() && t.rhs.AsFieldName() == fldname && t.lhs.IsFieldName() {
		return t.lhs.AsFieldName(), true
	}
	return "", false
}

func (t Term) String() string {
	return t.lhs.String() + "=" + t.rhs.String()
}
