package opt

import (
	"testing"

	"github.com/cutsea110/simplego/buffer"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/index"
	"github.com/cutsea110/simplego/log"
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/parse"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

func newTestEnv(t *testing.T) (*tx.Transaction, *metadata.Mgr) {
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
	mdm, err := metadata.New(true, metadata.IndexKindHash, index.AlgXXHash3, txn)
	if err != nil {
		t.Fatalf("metadata.New: %v", err)
	}
	return txn, mdm
}

func insertInt32(t *testing.T, txn *tx.Transaction, layout *record.Layout, tblname, fldname string, val int32) {
	t.Helper()
	ts, err := record.NewTableScan(txn, tblname, layout)
	if err != nil {
		t.Fatalf("NewTableScan: %v", err)
	}
	defer ts.Close()
	if err := ts.Insert(); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := ts.SetInt32(fldname, val); err != nil {
		t.Fatalf("SetInt32: %v", err)
	}
}

// TestHeuristicQueryPlannerJoinCount joins students to their department
// on majorid = did (dept.did carries an index) and checks the join
// produces the expected number of matching rows through the planner's
// chosen plan (whatever shape it picks — index join or fallback product).
func TestHeuristicQueryPlannerJoinCount(t *testing.T) {
	txn, mdm := newTestEnv(t)

	studentSch := record.NewSchema()
	studentSch.AddInt32Field("sid")
	studentSch.AddInt32Field("majorid")
	if err := mdm.CreateTable("student", studentSch, txn); err != nil {
		t.Fatalf("CreateTable student: %v", err)
	}

	deptSch := record.NewSchema()
	deptSch.AddInt32Field("did")
	if err := mdm.CreateTable("dept", deptSch, txn); err != nil {
		t.Fatalf("CreateTable dept: %v", err)
	}
	if err := mdm.CreateIndex("idx_dept_did", "dept", "did", txn); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}

	studentLayout, err := mdm.Layout("student", txn)
	if err != nil {
		t.Fatalf("Layout student: %v", err)
	}
	deptLayout, err := mdm.Layout("dept", txn)
	if err != nil {
		t.Fatalf("Layout dept: %v", err)
	}

	insertStudent := func(sid, majorid int32) {
		t.Helper()
		ts, err := record.NewTableScan(txn, "student", studentLayout)
		if err != nil {
			t.Fatalf("NewTableScan: %v", err)
		}
		defer ts.Close()
		if err := ts.Insert(); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := ts.SetInt32("sid", sid); err != nil {
			t.Fatalf("SetInt32(sid): %v", err)
		}
		if err := ts.SetInt32("majorid", majorid); err != nil {
			t.Fatalf("SetInt32(majorid): %v", err)
		}
	}
	insertStudent(1, 10)
	insertStudent(2, 10)
	insertStudent(3, 20)
	insertInt32(t, txn, deptLayout, "dept", "did", 10)
	insertInt32(t, txn, deptLayout, "dept", "did", 20)

	qp := NewHeuristicQueryPlanner(mdm)
	data, err := parse.New("select sid from student, dept where majorid = did").Query()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	p, err := qp.CreatePlan(data, txn)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	s, err := p.Open()
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
	}
	if count != 3 {
		t.Errorf("got %d joined rows, want 3 (two students with majorid=10, one with majorid=20)", count)
	}
}
