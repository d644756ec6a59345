// Package materialize implements the scan/plan nodes that copy or
// reorder their input into a temp table first: MaterializePlan, the
// external-merge SortScan/SortPlan, MergeJoinScan/Plan, and
// GroupByScan/Plan with its aggregation functions (§4.10).
package materialize

import (
	"fmt"
	"sync/atomic"

	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

var tempTableCounter atomic.Int64

// nextTableName returns the next `temp<N>` name from a monotonic
// in-process counter (§4.10; temp files are also recognized by their
// `temp` prefix and swept at file-manager startup, §6).
func nextTableName() string {
	n := tempTableCounter.Add(1)
	return fmt.Sprintf("temp%d", n)
}

// TempTable is a heap file scoped to one query's execution, named and
// schema'd like any other table but never registered in the catalog.
type TempTable struct {
	tx      *tx.Transaction
	tblname string
	layout  *record.Layout
}

// NewTempTable allocates a fresh temp table with schema sch.
func NewTempTable(t *tx.Transaction, sch *record.Schema) *TempTable {
	return &TempTable{tx: t, tblname: nextTableName(), layout: record.NewLayout(sch)}
}

// Open returns a TableScan over the temp table.
func (tt *TempTable) Open() (*record.TableScan, error) {
	return record.NewTableScan(tt.tx, tt.tblname, tt.layout)
}

// TableName returns the generated `temp<N>` name.
func (tt *TempTable) TableName() string { return tt.tblname }

// Layout returns the temp table's layout.
func (tt *TempTable) Layout() *record.Layout { return tt.layout }
