package materialize

import (
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// MergeJoinPlan sorts both sides on their join fields (via SortPlan) and
// wraps the result in a MergeJoinScan (§4.10).
type MergeJoinPlan struct {
	t                  *tx.Transaction
	p1, p2             plan.Plan
	fldname1, fldname2 string
	sch                *record.Schema
	compressLargeRuns  bool
}

var _ plan.Plan = (*MergeJoinPlan)(nil)

// NewMergeJoinPlan joins p1 and p2 on fldname1 = fldname2. compressLargeRuns
// is forwarded to both sides' SortPlan (Config.CompressSortRuns).
func NewMergeJoinPlan(t *tx.Transaction, p1, p2 plan.Plan, fldname1, fldname2 string, compressLargeRuns bool) *MergeJoinPlan {
	sch := record.NewSchema()
	sch.AddAll(p1.Schema())
	sch.AddAll(p2.Schema())
	return &MergeJoinPlan{t: t, p1: p1, p2: p2, fldname1: fldname1, fldname2: fldname2, sch: sch, compressLargeRuns: compressLargeRuns}
}

func (mp *MergeJoinPlan) Open() (query.Scan, error) {
	sp1 := NewSortPlan(mp.t, mp.p1, []string{mp.fldname1}, mp.compressLargeRuns)
	sp2 := NewSortPlan(mp.t, mp.p2, []string{mp.fldname2}, mp.compressLargeRuns)
	s1, err := sp1.Open()
	if err != nil {
		return nil, err
	}
	s2, err := sp2.Open()
	if err != nil {
		return nil, err
	}
	return NewMergeJoinScan(s1, s2, mp.fldname1, mp.fldname2)
}

func (mp *MergeJoinPlan) BlocksAccessed() int {
	sp1 := NewMaterializePlan(mp.t, mp.p1)
	sp2 := NewMaterializePlan(mp.t, mp.p2)
	return sp1.BlocksAccessed() + sp2.BlocksAccessed()
}

func (mp *MergeJoinPlan) RecordsOutput() int {
	maxVals := mp.p1.DistinctValues(mp.fldname1)
	if v := mp.p2.DistinctValues(mp.fldname2); v > maxVals {
		maxVals = v
	}
	if maxVals <= 0 {
		return mp.p1.RecordsOutput() * mp.p2.RecordsOutput()
	}
	return (mp.p1.RecordsOutput() * mp.p2.RecordsOutput()) / maxVals
}

func (mp *MergeJoinPlan) DistinctValues(fldname string) int {
	if mp.p1.Schema().HasField(fldname) {
		return mp.p1.DistinctValues(fldname)
	}
	return mp.p2.DistinctValues(fldname)
}

func (mp *MergeJoinPlan) Schema() *record.Schema { return mp.sch }

func (mp *MergeJoinPlan) Repr() plan.Repr {
	return plan.Repr{Operation: "MergeJoin", Reads: mp.BlocksAccessed(), Writes: 0, Children: []plan.Repr{mp.p1.Repr(), mp.p2.Repr()}}
}
