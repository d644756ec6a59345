package multibuffer

import (
	"testing"

	"github.com/cutsea110/simplego/buffer"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/log"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

type scanPlan struct {
	t       *tx.Transaction
	tblname string
	layout  *record.Layout
	n       int
}

var _ plan.Plan = (*scanPlan)(nil)

func (sp *scanPlan) Open() (query.Scan, error) {
	return record.NewTableScan(sp.t, sp.tblname, sp.layout)
}
func (sp *scanPlan) BlocksAccessed() int         { return 1 }
func (sp *scanPlan) RecordsOutput() int          { return sp.n }
func (sp *scanPlan) DistinctValues(_ string) int { return sp.n }
func (sp *scanPlan) Schema() *record.Schema      { return sp.layout.Schema() }
func (sp *scanPlan) Repr() plan.Repr             { return plan.Repr{Operation: "scan"} }

func makeTable(t *testing.T, txn *tx.Transaction, tblname, fldname string, vals []int32) *scanPlan {
	t.Helper()
	sch := record.NewSchema()
	sch.AddInt32Field(fldname)
	layout := record.NewLayout(sch)
	ts, err := record.NewTableScan(txn, tblname, layout)
	if err != nil {
		t.Fatalf("NewTableScan: %v", err)
	}
	for _, v := range vals {
		if err := ts.Insert(); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := ts.SetInt32(fldname, v); err != nil {
			t.Fatalf("SetInt32: %v", err)
		}
	}
	ts.Close()
	return &scanPlan{t: txn, tblname: tblname, layout: layout, n: len(vals)}
}

func TestMultibufferProductPlanCrossesEveryPair(t *testing.T) {
	dir := t.TempDir()
	fm, err := file.NewMgr(dir, 400)
	if err != nil {
		t.Fatalf("file.NewMgr: %v", err)
	}
	lm, err := log.NewMgr(fm, "test.log")
	if err != nil {
		t.Fatalf("log.NewMgr: %v", err)
	}
	bm := buffer.NewMgr(fm, lm, 8, buffer.Naive)
	txn, err := tx.NewTransaction(fm, lm, bm, tx.NewLockTable(), tx.NewTxNumSource())
	if err != nil {
		t.Fatalf("tx.NewTransaction: %v", err)
	}

	lhs := makeTable(t, txn, "lhs", "a", []int32{1, 2, 3})
	rhs := makeTable(t, txn, "rhs", "b", []int32{10, 20})

	mp := NewMultibufferProductPlan(txn, lhs, rhs)
	if got, want := mp.RecordsOutput(), 6; got != want {
		t.Errorf("RecordsOutput() = %d, want %d", got, want)
	}

	s, err := mp.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	count := 0
	for {
		ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if _, err := s.GetInt32("a"); err != nil {
			t.Errorf("GetInt32(a): %v", err)
		}
		if _, err := s.GetInt32("b"); err != nil {
			t.Errorf("GetInt32(b): %v", err)
		}
		count++
	}
	if count != 6 {
		t.Errorf("scanned %d rows, want 6", count)
	}
}
