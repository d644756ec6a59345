package plan

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// ProductPlan is the cross product of two plans (§4.11: "blocks = b1 +
// r1*b2; records = r1*r2").
type ProductPlan struct {
	p1, p2 Plan
	schema *record.Schema
}

var _ Plan = (*ProductPlan)(nil)

// NewProductPlan joins p1 and p2's schemas and wraps them.
func NewProductPlan(p1, p2 Plan) *ProductPlan {
	sch := record.NewSchema()
	sch.AddAll(p1.Schema())
	sch.AddAll(p2.Schema())
	return &ProductPlan{p1: p1, p2: p2, schema: sch}
}

func (p *ProductPlan) Open() (query.Scan, error) {
	s1, err := p.p1.Open()
	if err != nil {
		return nil, err
	}
	s2, err := p.p2.Open()
	if err != nil {
		return nil, err
	}
	return query.NewProductScan(s1, s2)
}

func (p *ProductPlan) BlocksAccessed() int {
	return p.p1.BlocksAccessed() + p.p1.RecordsOutput()*p.p2.BlocksAccessed()
}

func (p *ProductPlan) RecordsOutput() int {
	return p.p1.RecordsOutput() * p.p2.RecordsOutput()
}

func (p *ProductPlan) DistinctValues(fldname string) int {
	if p.p1.Schema().HasField(fldname) {
		return p.p1.DistinctValues(fldname)
	}
	return p.p2.DistinctValues(fldname)
}

func (p *ProductPlan) Schema() *record.Schema { return p.schema }

func (p *ProductPlan) Repr() Repr {
	return Repr{Operation: "Product", Reads: p.BlocksAccessed(), Children: []Repr{p.p1.Repr(), p.p2.Repr()}}
}
