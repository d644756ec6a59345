package materialize

import "github.com/cutsea110/simplego/query"

// AggregationFn is a grouped-aggregate state machine owned by a
// GroupByScan (§4.10: "model aggregation functions as state machines
// with typed initialize/advance entry points"). ProcessFirst resets the
// running value from the group's first row; ProcessNext folds in each
// subsequent row of the same group.
type AggregationFn interface {
	ProcessFirst(s query.Scan) error
	ProcessNext(s query.Scan) error
	FieldName() string
	Value() query.Constant
	// SourceField names the field this aggregate reads, so a GroupByPlan
	// can derive the result field's type (e.g. MaxFn's result shares its
	// source field's type; Count/Sum/Avg always produce int32).
	SourceField() string
}

// CountFn counts rows within a group, ignoring the named field's value.
type CountFn struct {
	fldname string
	count   int32
}

// NewCountFn returns a CountFn labeled after fldname (its value is never
// read; only the label feeds into the resulting field name).
func NewCountFn(fldname string) *CountFn { return &CountFn{fldname: fldname} }

func (f *CountFn) ProcessFirst(s query.Scan) error { f.count = 1; return nil }
func (f *CountFn) ProcessNext(s query.Scan) error  { f.count++; return nil }
func (f *CountFn) FieldName() string               { return "countof" + f.fldname }
func (f *CountFn) SourceField() string             { return f.fldname }
func (f *CountFn) Value() query.Constant           { return query.NewInt32(f.count) }

// MaxFn tracks the maximum value seen for fldname within a group.
type MaxFn struct {
	fldname string
	val     query.Constant
}

func NewMaxFn(fldname string) *MaxFn { return &MaxFn{fldname: fldname} }

func (f *MaxFn) ProcessFirst(s query.Scan) error {
	v, err := s.GetVal(f.fldname)
	if err != nil {
		return err
	}
	f.val = v
	return nil
}
func (f *MaxFn) ProcessNext(s query.Scan) error {
	v, err := s.GetVal(f.fldname)
	if err != nil {
		return err
	}
	if f.val.Less(v) {
		f.val = v
	}
	return nil
}
func (f *MaxFn) FieldName() string     { return "maxof" + f.fldname }
func (f *MaxFn) SourceField() string   { return f.fldname }
func (f *MaxFn) Value() query.Constant { return f.val }

// MinFn tracks the minimum value seen for fldname within a group.
type MinFn struct {
	fldname string
	val     query.Constant
}

func NewMinFn(fldname string) *MinFn { return &MinFn{fldname: fldname} }

func (f *MinFn) ProcessFirst(s query.Scan) error {
	v, err := s.GetVal(f.fldname)
	if err != nil {
		return err
	}
	f.val = v
	return nil
}
func (f *MinFn) ProcessNext(s query.Scan) error {
	v, err := s.GetVal(f.fldname)
	if err != nil {
		return err
	}
	if v.Less(f.val) {
		f.val = v
	}
	return nil
}
func (f *MinFn) FieldName() string     { return "minof" + f.fldname }
func (f *MinFn) SourceField() string   { return f.fldname }
func (f *MinFn) Value() query.Constant { return f.val }

// SumFn totals an int32 field within a group (§ SUPPLEMENTED FEATURES —
// the original ships Count/Max only; Sum/Avg round out the aggregate set
// a teaching engine's GROUP BY clause is expected to support).
type SumFn struct {
	fldname string
	sum     int32
}

func NewSumFn(fldname string) *SumFn { return &SumFn{fldname: fldname} }

func (f *SumFn) ProcessFirst(s query.Scan) error {
	v, err := s.GetInt32(f.fldname)
	if err != nil {
		return err
	}
	f.sum = v
	return nil
}
func (f *SumFn) ProcessNext(s query.Scan) error {
	v, err := s.GetInt32(f.fldname)
	if err != nil {
		return err
	}
	f.sum += v
	return nil
}
func (f *SumFn) FieldName() string     { return "sumof" + f.fldname }
func (f *SumFn) SourceField() string   { return f.fldname }
func (f *SumFn) Value() query.Constant { return query.NewInt32(f.sum) }

// AvgFn averages an int32 field within a group, truncating like integer
// division (no fractional Constant type exists).
type AvgFn struct {
	fldname string
	sum     int32
	count   int32
}

func NewAvgFn(fldname string) *AvgFn { return &AvgFn{fldname: fldname} }

func (f *AvgFn) ProcessFirst(s query.Scan) error {
	v, err := s.GetInt32(f.fldname)
	if err != nil {
		return err
	}
	f.sum, f.count = v, 1
	return nil
}
func (f *AvgFn) ProcessNext(s query.Scan) error {
	v, err := s.GetInt32(f.fldname)
	if err != nil {
		return err
	}
	f.sum += v
	f.count++
	return nil
}
func (f *AvgFn) FieldName() string { return "avgof" + f.fldname }
func (f *AvgFn) SourceField() string { return f.fldname }
func (f *AvgFn) Value() query.Constant {
	if f.count == 0 {
		return query.NewInt32(0)
	}
	return query.NewInt32(f.sum / f.count)
}
