package indexplan

import (
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// IndexSelectPlan costs an IndexSelectScan over p using ii on val (§4.11:
// "blocks = ii.blocks_accessed + records_output").
type IndexSelectPlan struct {
	p   plan.Plan
	ii  *metadata.IndexInfo
	val query.Constant
}

var _ plan.Plan = (*IndexSelectPlan)(nil)

// NewIndexSelectPlan builds the plan for looking up val via ii over p.
func NewIndexSelectPlan(p plan.Plan, ii *metadata.IndexInfo, val query.Constant) *IndexSelectPlan {
	return &IndexSelectPlan{p: p, ii: ii, val: val}
}

func (ip *IndexSelectPlan) Open() (query.Scan, error) {
	s, err := ip.p.Open()
	if err != nil {
		return nil, err
	}
	us, ok := query.AsUpdateScan(s)
	if !ok {
		return nil, errNotTableScan
	}
	idx, err := ip.ii.Open()
	if err != nil {
		return nil, err
	}
	return NewIndexSelectScan(us, idx, ip.val)
}

func (ip *IndexSelectPlan) BlocksAccessed() int { return ip.ii.BlocksAccessed() + ip.RecordsOutput() }
func (ip *IndexSelectPlan) RecordsOutput() int  { return ip.ii.RecordsOutput() }
func (ip *IndexSelectPlan) DistinctValues(fldname string) int { return ip.ii.DistinctValues(fldname) }
func (ip *IndexSelectPlan) Schema() *record.Schema             { return ip.p.Schema() }

func (ip *IndexSelectPlan) Repr() plan.Repr {
	return plan.Repr{Operation: "IndexSelect", Reads: ip.BlocksAccessed(), Children: []plan.Repr{ip.p.Repr()}}
}
