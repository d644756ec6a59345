package plan

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// SelectPlan applies pred over child (§4.11: "records = child.records /
// predicate.reduction_factor").
type SelectPlan struct {
	child Plan
	pred  query.Predicate
}

var _ Plan = (*SelectPlan)(nil)

// NewSelectPlan wraps child, filtering by pred.
func NewSelectPlan(child Plan, pred query.Predicate) *SelectPlan {
	return &SelectPlan{child: child, pred: pred}
}

func (p *SelectPlan) Open() (query.Scan, error) {
	s, err := p.child.Open()
	if err != nil {
		return nil, err
	}
	return query.NewSelectScan(s, p.pred), nil
}

func (p *SelectPlan) BlocksAccessed() int { return p.child.BlocksAccessed() }

func (p *SelectPlan) RecordsOutput() int {
	rf := p.pred.ReductionFactor(p.child)
	if rf <= 0 {
		rf = 1
	}
	return p.child.RecordsOutput() / rf
}

// DistinctValues returns 1 when pred equates fldname to a constant, else
// the smaller of fldname's distinct-value count and that of the first
// field pred equates it to (§4.11).
func (p *SelectPlan) DistinctValues(fldname string) int {
	if _, ok := p.pred.EquatesWithConstant(fldname); ok {
		return 1
	}
	if other, ok := p.pred.EquatesWithField(fldname); ok {
		a, b := p.child.DistinctValues(fldname), p.child.DistinctValues(other)
		if a < b {
			return a
		}
		return b
	}
	return p.child.DistinctValues(fldname)
}

func (p *SelectPlan) Schema() *record.Schema { return p.child.Schema() }

func (p *SelectPlan) Repr() Repr {
	return Repr{
		Operation: "Select(" + p.pred.String() + ")",
		Reads:     p.BlocksAccessed(),
		Children:  []Repr{p.child.Repr()},
	}
}
