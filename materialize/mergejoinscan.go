package materialize

import (
	"fmt"

	"github.com/cutsea110/simplego/query"
)

// MergeJoinScan joins s1 and s2, both already sorted on their respective
// join fields (§4.10: "Standard merge join with duplicate block on the
// right side"). For each s1 row it scans forward through every s2 row
// sharing the same join value, then rewinds s2 back to the start of that
// block via SavePosition/RestorePosition before advancing s1 again.
type MergeJoinScan struct {
	s1, s2        query.Scan
	pos2          query.Positionable
	fldname1      string
	fldname2      string
	joinval       query.Constant
}

var _ query.Scan = (*MergeJoinScan)(nil)

// NewMergeJoinScan requires s2 to additionally implement Positionable
// (true of SortScan, the only scan this operator is ever given in
// practice).
func NewMergeJoinScan(s1, s2 query.Scan, fldname1, fldname2 string) (*MergeJoinScan, error) {
	pos2, ok := query.AsPositionable(s2)
	if !ok {
		return nil, fmt.Errorf("merge join requires a positionable right-hand scan")
	}
	ms := &MergeJoinScan{s1: s1, s2: s2, pos2: pos2, fldname1: fldname1, fldname2: fldname2}
	if err := ms.BeforeFirst(); err != nil {
		return nil, err
	}
	return ms, nil
}

func (ms *MergeJoinScan) BeforeFirst() error {
	if err := ms.s1.BeforeFirst(); err != nil {
		return err
	}
	return ms.s2.BeforeFirst()
}

func (ms *MergeJoinScan) Next() (bool, error) {
	has2, err := ms.s2.Next()
	if err != nil {
		return false, err
	}
	if has2 {
		v2, err := ms.s2.GetVal(ms.fldname2)
		if err != nil {
			return false, err
		}
		if v2.Equals(ms.joinval) {
			return true, nil
		}
	}

	has1, err := ms.s1.Next()
	if err != nil {
		return false, err
	}
	if has1 {
		v1, err := ms.s1.GetVal(ms.fldname1)
		if err != nil {
			return false, err
		}
		if v1.Equals(ms.joinval) {
			if err := ms.pos2.RestorePosition(nil); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	for has1 && has2 {
		v1, err := ms.s1.GetVal(ms.fldname1)
		if err != nil {
			return false, err
		}
		v2, err := ms.s2.GetVal(ms.fldname2)
		if err != nil {
			return false, err
		}
		if v1.Less(v2) {
			has1, err = ms.s1.Next()
			if err != nil {
				return false, err
			}
		} else if v2.Less(v1) {
			has2, err = ms.s2.Next()
			if err != nil {
				return false, err
			}
		} else {
			ms.pos2.SavePosition()
			ms.joinval = v2
			return true, nil
		}
	}
	return false, nil
}

func (ms *MergeJoinScan) GetInt32(fldname string) (int32, error) {
	if ms.s1.HasField(fldname) {
		return ms.s1.GetInt32(fldname)
	}
	return ms.s2.GetInt32(fldname)
}

func (ms *MergeJoinScan) GetString(fldname string) (string, error) {
	if ms.s1.HasField(fldname) {
		return ms.s1.GetString(fldname)
	}
	return ms.s2.GetString(fldname)
}

func (ms *MergeJoinScan) GetVal(fldname string) (query.Constant, error) {
	if ms.s1.HasField(fldname) {
		return ms.s1.GetVal(fldname)
	}
	return ms.s2.GetVal(fldname)
}

func (ms *MergeJoinScan) HasField(fldname string) bool {
	return ms.s1.HasField(fldname) || ms.s2.HasField(fldname)
}

func (ms *MergeJoinScan) Close() error {
	if err := ms.s1.Close(); err != nil {
		return err
	}
	return ms.s2.Close()
}
