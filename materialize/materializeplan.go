package materialize

import (
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// MaterializePlan copies its source plan into a fresh TempTable on Open
// (§4.10: "cost = ceil(records / (block_size/slot_size))").
type MaterializePlan struct {
	t   *tx.Transaction
	src plan.Plan
}

var _ plan.Plan = (*MaterializePlan)(nil)

// NewMaterializePlan wraps src for materialization.
func NewMaterializePlan(t *tx.Transaction, src plan.Plan) *MaterializePlan {
	return &MaterializePlan{t: t, src: src}
}

func (mp *MaterializePlan) Open() (query.Scan, error) {
	s, err := mp.src.Open()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	tt := NewTempTable(mp.t, mp.src.Schema())
	ts, err := tt.Open()
	if err != nil {
		return nil, err
	}
	if err := s.BeforeFirst(); err != nil {
		return nil, err
	}
	for {
		ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := ts.Insert(); err != nil {
			return nil, err
		}
		for _, fld := range mp.src.Schema().Fields() {
			v, err := s.GetVal(fld)
			if err != nil {
				return nil, err
			}
			if err := ts.SetVal(fld, v); err != nil {
				return nil, err
			}
		}
	}
	if err := ts.BeforeFirst(); err != nil {
		return nil, err
	}
	return ts, nil
}

func (mp *MaterializePlan) BlocksAccessed() int {
	rpb := mp.t.BlockSize() / record.NewLayout(mp.src.Schema()).SlotSize()
	if rpb == 0 {
		rpb = 1
	}
	recs := mp.RecordsOutput()
	return (recs + rpb - 1) / rpb
}

func (mp *MaterializePlan) RecordsOutput() int                { return mp.src.RecordsOutput() }
func (mp *MaterializePlan) DistinctValues(fldname string) int { return mp.src.DistinctValues(fldname) }
func (mp *MaterializePlan) Schema() *record.Schema             { return mp.src.Schema() }

func (mp *MaterializePlan) Repr() plan.Repr {
	return plan.Repr{Operation: "Materialize", Reads: mp.BlocksAccessed(), Writes: mp.BlocksAccessed(), Children: []plan.Repr{mp.src.Repr()}}
}
