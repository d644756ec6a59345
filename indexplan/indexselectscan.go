// Package indexplan implements the index-aware scan and plan nodes
// (IndexSelect, IndexJoin) and the update planner that keeps every
// affected index in sync on insert/delete/modify (§4.9, §4.10, §4.12).
package indexplan

import (
	"github.com/cutsea110/simplego/index"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/rid"
)

// IndexSelectScan yields the rows of ts whose idx field equals val
// (§4.10): idx.before_first(val), then each idx.next() repositions ts via
// move_to_rid.
type IndexSelectScan struct {
	ts  query.UpdateScan
	idx index.Index
	val query.Constant
}

var _ query.Scan = (*IndexSelectScan)(nil)

// NewIndexSelectScan opens idx on val and positions ts accordingly.
func NewIndexSelectScan(ts query.UpdateScan, idx index.Index, val query.Constant) (*IndexSelectScan, error) {
	s := &IndexSelectScan{ts: ts, idx: idx, val: val}
	if err := s.BeforeFirst(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *IndexSelectScan) BeforeFirst() error { return s.idx.BeforeFirst(s.val) }

func (s *IndexSelectScan) Next() (bool, error) {
	ok, err := s.idx.Next()
	if err != nil || !ok {
		return false, err
	}
	r, err := s.idx.GetDataRID()
	if err != nil {
		return false, err
	}
	if err := s.ts.MoveToRID(r); err != nil {
		return false, err
	}
	return true, nil
}

func (s *IndexSelectScan) GetInt32(fldname string) (int32, error)  { return s.ts.GetInt32(fldname) }
func (s *IndexSelectScan) GetString(fldname string) (string, error) { return s.ts.GetString(fldname) }
func (s *IndexSelectScan) GetVal(fldname string) (query.Constant, error) {
	return s.ts.GetVal(fldname)
}
func (s *IndexSelectScan) HasField(fldname string) bool { return s.ts.HasField(fldname) }

func (s *IndexSelectScan) Close() error {
	if err := s.idx.Close(); err != nil {
		return err
	}
	return s.ts.Close()
}

// GetRID exposes the current row's RID for IndexJoinScan's use of a
// TableScanner right-hand side.
func (s *IndexSelectScan) GetRID() rid.ID { return s.ts.GetRID() }
