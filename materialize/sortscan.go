package materialize

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/rid"
)

// SortScan interleaves rows from at most two sorted TempTable scans
// (§4.10: "final SortScan interleaves from at most two TempTable scans
// using the comparator"). It supports SavePosition/RestorePosition so
// MergeJoinScan can rewind across a run of duplicate join-field values.
type SortScan struct {
	s1, s2      *record.TableScan
	comp        RecordComparator
	hasMore1    bool
	hasMore2    bool
	current     *record.TableScan
	savedRID1   rid.ID
	savedRID2   rid.ID
	hasSavedRID2 bool
}

var _ query.Scan = (*SortScan)(nil)
var _ query.Positionable = (*SortScan)(nil)

// NewSortScan opens t1 (and t2, if non-nil) and positions both before
// their first record. t1 is never nil; t2 may be, when the sort produced
// only a single run.
func NewSortScan(t1, t2 *TempTable, comp RecordComparator) (*SortScan, error) {
	s1, err := t1.Open()
	if err != nil {
		return nil, err
	}
	var s2 *record.TableScan
	if t2 != nil {
		s2, err = t2.Open()
		if err != nil {
			return nil, err
		}
	}
	ss := &SortScan{s1: s1, s2: s2, comp: comp}
	if err := ss.BeforeFirst(); err != nil {
		return nil, err
	}
	return ss, nil
}

func (ss *SortScan) BeforeFirst() error {
	ss.current = nil
	if err := ss.s1.BeforeFirst(); err != nil {
		return err
	}
	has1, err := ss.s1.Next()
	if err != nil {
		return err
	}
	ss.hasMore1 = has1
	if ss.s2 != nil {
		if err := ss.s2.BeforeFirst(); err != nil {
			return err
		}
		has2, err := ss.s2.Next()
		if err != nil {
			return err
		}
		ss.hasMore2 = has2
	}
	return nil
}

func (ss *SortScan) Next() (bool, error) {
	var err error
	switch ss.current {
	case ss.s1:
		ss.hasMore1, err = ss.s1.Next()
	case ss.s2:
		ss.hasMore2, err = ss.s2.Next()
	}
	if err != nil {
		return false, err
	}
	if !ss.hasMore1 && !ss.hasMore2 {
		return false, nil
	}
	if ss.hasMore1 && ss.hasMore2 {
		cmp, err := ss.comp.Compare(ss.s1, ss.s2)
		if err != nil {
			return false, err
		}
		if cmp < 0 {
			ss.current = ss.s1
		} else {
			ss.current = ss.s2
		}
	} else if ss.hasMore1 {
		ss.current = ss.s1
	} else {
		ss.current = ss.s2
	}
	return true, nil
}

func (ss *SortScan) GetInt32(fldname string) (int32, error) { return ss.current.GetInt32(fldname) }
func (ss *SortScan) GetString(fldname string) (string, error) {
	return ss.current.GetString(fldname)
}
func (ss *SortScan) GetVal(fldname string) (query.Constant, error) {
	return ss.current.GetVal(fldname)
}
func (ss *SortScan) HasField(fldname string) bool { return ss.s1.HasField(fldname) }

func (ss *SortScan) Close() error {
	if err := ss.s1.Close(); err != nil {
		return err
	}
	if ss.s2 != nil {
		return ss.s2.Close()
	}
	return nil
}

// SavePosition records both underlying scans' current RIDs, for a later
// RestorePosition call (MergeJoinScan rewinding over duplicate keys).
func (ss *SortScan) SavePosition() any {
	ss.savedRID1 = ss.s1.GetRID()
	if ss.s2 != nil {
		ss.savedRID2 = ss.s2.GetRID()
		ss.hasSavedRID2 = true
	} else {
		ss.hasSavedRID2 = false
	}
	return struct{}{}
}

// RestorePosition repositions both underlying scans to the RIDs captured
// by the most recent SavePosition call.
func (ss *SortScan) RestorePosition(saved any) error {
	if err := ss.s1.MoveToRID(ss.savedRID1); err != nil {
		return err
	}
	if ss.hasSavedRID2 && ss.s2 != nil {
		return ss.s2.MoveToRID(ss.savedRID2)
	}
	return nil
}
