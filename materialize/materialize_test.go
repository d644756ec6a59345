// Tests for the sort/group/join operators, built directly over heap
// TableScans rather than the full catalog-backed TablePlan — these
// operators only need a plan.Plan's Schema/Open, so a minimal in-memory
// fixture is enough to exercise them without pulling in the metadata
// layer.
package materialize

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

// testTx opens a fresh file/log/buffer stack in a temp directory and
// returns a single transaction over it.
func testTx(t *testing.T) *tx.Transaction {
	t.Helper()
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
	return txn
}

// scanPlan wraps an already-populated heap table as a plan.Plan, the
// minimum a sort/group/join operator needs from its source.
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
func (sp *scanPlan) BlocksAccessed() int            { return 1 }
func (sp *scanPlan) RecordsOutput() int             { return sp.n }
func (sp *scanPlan) DistinctValues(_ string) int    { return sp.n }
func (sp *scanPlan) Schema() *record.Schema         { return sp.layout.Schema() }
func (sp *scanPlan) Repr() plan.Repr                { return plan.Repr{Operation: "scan"} }

// makeTable creates tblname with a (id int, name varchar(10)) schema and
// inserts one row per id/name pair given.
func makeTable(t *testing.T, txn *tx.Transaction, tblname string, rows [][2]any) *scanPlan {
	t.Helper()
	sch := record.NewSchema()
	sch.AddInt32Field("id")
	sch.AddStringField("name", 10)
	layout := record.NewLayout(sch)

	ts, err := record.NewTableScan(txn, tblname, layout)
	if err != nil {
		t.Fatalf("NewTableScan: %v", err)
	}
	for _, row := range rows {
		if err := ts.Insert(); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := ts.SetInt32("id", row[0].(int32)); err != nil {
			t.Fatalf("SetInt32: %v", err)
		}
		if err := ts.SetString("name", row[1].(string)); err != nil {
			t.Fatalf("SetString: %v", err)
		}
	}
	ts.Close()
	return &scanPlan{t: txn, tblname: tblname, layout: layout, n: len(rows)}
}

func collectInts(t *testing.T, s query.Scan, fld string) []int32 {
	t.Helper()
	var out []int32
	for {
		ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			return out
		}
		v, err := s.GetInt32(fld)
		if err != nil {
			t.Fatalf("GetInt32: %v", err)
		}
		out = append(out, v)
	}
}

func TestSortPlanOrdersAscending(t *testing.T) {
	txn := testTx(t)
	src := makeTable(t, txn, "unsorted", [][2]any{
		{int32(3), "c"}, {int32(1), "a"}, {int32(2), "b"},
	})

	sp := NewSortPlan(txn, src, []string{"id"}, false)
	s, err := sp.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got := collectInts(t, s, "id")
	want := []int32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestSortPlanCompressesLargeRuns(t *testing.T) {
	txn := testTx(t)
	// Ascending input forms a single 100-row run (splitIntoRuns only
	// breaks a run when the next row sorts before the last one), well
	// past spillThreshold, so compressLargeRuns actually spills it to a
	// blob table and SortPlan.Open must decompress it back to produce
	// the final SortScan.
	var rows [][2]any
	for i := 1; i <= 100; i++ {
		rows = append(rows, [2]any{int32(i), "x"})
	}
	src := makeTable(t, txn, "big", rows)

	sp := NewSortPlan(txn, src, []string{"id"}, true)
	s, err := sp.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got := collectInts(t, s, "id")
	if len(got) != 100 {
		t.Fatalf("got %d rows, want 100", len(got))
	}
	for i, v := range got {
		if v != int32(i+1) {
			t.Fatalf("row %d: got %d, want %d", i, v, i+1)
		}
	}
}

func TestGroupByPlanCounts(t *testing.T) {
	txn := testTx(t)
	src := makeTable(t, txn, "names", [][2]any{
		{int32(1), "a"}, {int32(2), "a"}, {int32(3), "b"},
	})

	aggFactories := []func() AggregationFn{
		func() AggregationFn { return NewCountFn("id") },
	}
	gp := NewGroupByPlan(txn, src, []string{"name"}, aggFactories, false)
	s, err := gp.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	counts := map[string]int32{}
	for {
		ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		name, err := s.GetString("name")
		if err != nil {
			t.Fatalf("GetString: %v", err)
		}
		c, err := s.GetInt32("countofid")
		if err != nil {
			t.Fatalf("GetInt32: %v", err)
		}
		counts[name] = c
	}
	if counts["a"] != 2 || counts["b"] != 1 {
		t.Errorf("got counts %v, want a:2 b:1", counts)
	}
}

func TestMergeJoinPlanMatchesOnID(t *testing.T) {
	txn := testTx(t)
	left := makeTable(t, txn, "left", [][2]any{{int32(1), "x"}, {int32(2), "y"}})
	right := makeTable(t, txn, "right", [][2]any{{int32(1), "p"}, {int32(3), "q"}})

	mp := NewMergeJoinPlan(txn, left, right, "id", "id", false)
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
		count++
		id, err := s.GetInt32("id")
		if err != nil {
			t.Fatalf("GetInt32: %v", err)
		}
		if id != 1 {
			t.Errorf("got joined id %d, want 1", id)
		}
	}
	if count != 1 {
		t.Errorf("got %d joined rows, want 1", count)
	}
}
