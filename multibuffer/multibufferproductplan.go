package multibuffer

import (
	"github.com/cutsea110/simplego/materialize"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// MultibufferProductPlan cost-annotates MultibufferProductScan (§4.11:
// "blocks = b(rhs) + b(lhs)*ceil(size(rhs)/available-buffs)"). Opening it
// materializes the right-hand plan into a temp table first, since the
// chunked scan needs a plain heap file to pin block ranges out of.
type MultibufferProductPlan struct {
	t      *tx.Transaction
	lhs    plan.Plan
	rhs    plan.Plan
	schema *record.Schema
}

var _ plan.Plan = (*MultibufferProductPlan)(nil)

// NewMultibufferProductPlan builds the cross product of lhs and rhs.
func NewMultibufferProductPlan(t *tx.Transaction, lhs, rhs plan.Plan) *MultibufferProductPlan {
	sch := record.NewSchema()
	sch.AddAll(lhs.Schema())
	sch.AddAll(rhs.Schema())
	return &MultibufferProductPlan{t: t, lhs: lhs, rhs: rhs, schema: sch}
}

func (mp *MultibufferProductPlan) Open() (query.Scan, error) {
	lhsScan, err := mp.lhs.Open()
	if err != nil {
		return nil, err
	}
	tt := materialize.NewTempTable(mp.t, mp.rhs.Schema())
	if err := mp.copyInto(tt); err != nil {
		return nil, err
	}
	return NewMultibufferProductScan(mp.t, lhsScan, tt.TableName()+".tbl", tt.Layout(), mp.t.AvailableBuffs())
}

// copyInto materializes rhs's rows into tt, mirroring
// MaterializePlan.Open's copy loop (kept separate here since the chunked
// scan needs tt's generated file name, not just a positioned TableScan).
func (mp *MultibufferProductPlan) copyInto(tt *materialize.TempTable) error {
	src, err := mp.rhs.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dest, err := tt.Open()
	if err != nil {
		return err
	}
	defer dest.Close()
	if err := src.BeforeFirst(); err != nil {
		return err
	}
	for {
		ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := dest.Insert(); err != nil {
			return err
		}
		for _, fld := range mp.rhs.Schema().Fields() {
			v, err := src.GetVal(fld)
			if err != nil {
				return err
			}
			if err := dest.SetVal(fld, v); err != nil {
				return err
			}
		}
	}
}

func (mp *MultibufferProductPlan) BlocksAccessed() int {
	avail := mp.t.AvailableBuffs()
	rhsBlocks := materialize.NewMaterializePlan(mp.t, mp.rhs).BlocksAccessed()
	chunkSize := BestFactor(avail, rhsBlocks)
	numChunks := BlocksRequired(rhsBlocks, chunkSize)
	return rhsBlocks + mp.lhs.BlocksAccessed()*numChunks
}

func (mp *MultibufferProductPlan) RecordsOutput() int {
	return mp.lhs.RecordsOutput() * mp.rhs.RecordsOutput()
}

func (mp *MultibufferProductPlan) DistinctValues(fldname string) int {
	if mp.lhs.Schema().HasField(fldname) {
		return mp.lhs.DistinctValues(fldname)
	}
	return mp.rhs.DistinctValues(fldname)
}

func (mp *MultibufferProductPlan) Schema() *record.Schema { return mp.schema }

func (mp *MultibufferProductPlan) Repr() plan.Repr {
	return plan.Repr{Operation: "MultibufferProduct", Reads: mp.BlocksAccessed(), Writes: 0, Children: []plan.Repr{mp.lhs.Repr(), mp.rhs.Repr()}}
}
