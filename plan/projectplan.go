package plan

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// ProjectPlan restricts child to a fixed field list (§4.11).
type ProjectPlan struct {
	child  Plan
	schema *record.Schema
}

var _ Plan = (*ProjectPlan)(nil)

// NewProjectPlan builds the schema for fieldlist out of child's and
// wraps child.
func NewProjectPlan(child Plan, fieldlist []string) *ProjectPlan {
	sch := record.NewSchema()
	for _, f := range fieldlist {
		sch.Add(f, child.Schema())
	}
	return &ProjectPlan{child: child, schema: sch}
}

func (p *ProjectPlan) Open() (query.Scan, error) {
	s, err := p.child.Open()
	if err != nil {
		return nil, err
	}
	return query.NewProjectScan(s, p.schema.Fields()), nil
}

func (p *ProjectPlan) BlocksAccessed() int               { return p.child.BlocksAccessed() }
func (p *ProjectPlan) RecordsOutput() int                { return p.child.RecordsOutput() }
func (p *ProjectPlan) DistinctValues(fldname string) int { return p.child.DistinctValues(fldname) }
func (p *ProjectPlan) Schema() *record.Schema            { return p.schema }

func (p *ProjectPlan) Repr() Repr {
	return Repr{Operation: "Project", Reads: p.BlocksAccessed(), Children: []Repr{p.child.Repr()}}
}
