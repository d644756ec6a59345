package plan

import (
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// TablePlan wraps a single heap file, pulling its layout and statistics
// from the catalog (§4.11: "TablePlan: (blocks, records) from StatInfo").
type TablePlan struct {
	tblname string
	t       *tx.Transaction
	layout  *record.Layout
	si      metadata.StatInfo
	mdm     *metadata.Mgr
}

var _ Plan = (*TablePlan)(nil)

// NewTablePlan builds the plan for tblname.
func NewTablePlan(t *tx.Transaction, tblname string, mdm *metadata.Mgr) (*TablePlan, error) {
	layout, err := mdm.Layout(tblname, t)
	if err != nil {
		return nil, err
	}
	si, err := mdm.StatInfo(tblname, layout, t)
	if err != nil {
		return nil, err
	}
	return &TablePlan{tblname: tblname, t: t, layout: layout, si: si, mdm: mdm}, nil
}

func (p *TablePlan) Open() (query.Scan, error) {
	return record.NewTableScan(p.t, p.tblname, p.layout)
}

func (p *TablePlan) BlocksAccessed() int { return p.si.BlocksAccessed() }
func (p *TablePlan) RecordsOutput() int  { return p.si.RecordsOutput() }

func (p *TablePlan) DistinctValues(fldname string) int { return p.si.DistinctValues(fldname) }

func (p *TablePlan) Schema() *record.Schema { return p.layout.Schema() }

func (p *TablePlan) Repr() Repr {
	return Repr{Operation: "Table(" + p.tblname + ")", Reads: p.BlocksAccessed(), Writes: 0}
}
