package indexplan

import (
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// IndexJoinPlan costs an IndexJoinScan joining lhs to rhs via ii on
// joinfld (§4.11: "blocks = b(lhs) + r(lhs)*ii.blocks_accessed +
// records").
type IndexJoinPlan struct {
	lhs, rhs plan.Plan
	ii       *metadata.IndexInfo
	joinfld  string
	schema   *record.Schema
}

var _ plan.Plan = (*IndexJoinPlan)(nil)

// NewIndexJoinPlan builds the plan for lhs joined to rhs via ii on
// joinfld.
func NewIndexJoinPlan(lhs, rhs plan.Plan, ii *metadata.IndexInfo, joinfld string) *IndexJoinPlan {
	sch := record.NewSchema()
	sch.AddAll(lhs.Schema())
	sch.AddAll(rhs.Schema())
	return &IndexJoinPlan{lhs: lhs, rhs: rhs, ii: ii, joinfld: joinfld, schema: sch}
}

func (ip *IndexJoinPlan) Open() (query.Scan, error) {
	lhsScan, err := ip.lhs.Open()
	if err != nil {
		return nil, err
	}
	rhsScan, err := ip.rhs.Open()
	if err != nil {
		return nil, err
	}
	rhsUpdate, ok := query.AsUpdateScan(rhsScan)
	if !ok {
		return nil, errNotTableScan
	}
	idx, err := ip.ii.Open()
	if err != nil {
		return nil, err
	}
	return NewIndexJoinScan(lhsScan, idx, ip.joinfld, rhsUpdate)
}

func (ip *IndexJoinPlan) BlocksAccessed() int {
	return ip.lhs.BlocksAccessed() + ip.lhs.RecordsOutput()*ip.ii.BlocksAccessed() + ip.RecordsOutput()
}

func (ip *IndexJoinPlan) RecordsOutput() int {
	return ip.lhs.RecordsOutput() * ip.ii.RecordsOutput()
}

func (ip *IndexJoinPlan) DistinctValues(fldname string) int {
	if ip.lhs.Schema().HasField(fldname) {
		return ip.lhs.DistinctValues(fldname)
	}
	return ip.rhs.DistinctValues(fldname)
}

func (ip *IndexJoinPlan) Schema() *record.Schema { return ip.schema }

func (ip *IndexJoinPlan) Repr() plan.Repr {
	return plan.Repr{Operation: "IndexJoin", Reads: ip.BlocksAccessed(), Children: []plan.Repr{ip.lhs.Repr(), ip.rhs.Repr()}}
}
