package query

// Expression is either a field name or a literal Constant, evaluated
// against the current row of a Scan (§4.12: predicates are built from
// field/constant terms).
type Expression struct {
	fldname  string
	val      Constant
	isFldname bool
}

// NewFieldExpression builds an expression that reads fldname from a scan.
func NewFieldExpression(fldname string) Expression {
	return Expression{fldname: fldname, isFldname: true}
}

// NewConstExpression builds an expression whose value is fixed.
func NewConstExpression(val Constant) Expression {
	return Expression{val: val}
}

// IsFieldName reports whether the expression names a field rather than a
// constant.
func (e Expression) IsFieldName() bool { return e.isFldname }

// AsFieldName returns the field name; only meaningful if IsFieldName.
func (e Expression) AsFieldName() string { return e.fldname }

// AsConstant returns the literal value; only meaningful if !IsFieldName.
func (e Expression) AsConstant() Constant { return e.val }

// Evaluate resolves the expression against the scan's current row.
func (e Expression) Evaluate(s Scan) (Constant, error) {
	if e.isFldname {
		return s.GetVal(e.fldname)
	}
	return e.val, nil
}

// AppliesTo reports whether every field this expression references exists
// in schema (used by the planner to restrict projections/predicates).
func (e Expression) AppliesTo(hasField func(string) bool) bool {
	if !e.isFldname {
		return true
	}
	return hasField(e.fldname)
}

func (e Expression) String() string {
	if e.isFldname {
		return e.fldname
	}
	return e.val.SQLLiteral()
}
