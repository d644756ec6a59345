package indexplan

import (
	"github.com/cutsea110/simplego/index"
	"github.com/cutsea110/simplego/query"
)

// IndexJoinScan joins lhs to rhs-ts via idx, keyed on lhs[joinfld]: for
// each lhs row, idx.before_first(lhs[joinfld]) then idx.next() yields rhs
// rows at idx.get_data_rid() (§4.10). rhs must be a TableScanner — the
// capability is required at construction, not discovered mid-scan.
type IndexJoinScan struct {
	lhs      query.Scan
	idx      index.Index
	joinfld  string
	rhs      query.UpdateScan
}

var _ query.Scan = (*IndexJoinScan)(nil)

// NewIndexJoinScan builds the join, priming lhs with its first row.
func NewIndexJoinScan(lhs query.Scan, idx index.Index, joinfld string, rhs query.UpdateScan) (*IndexJoinScan, error) {
	s := &IndexJoinScan{lhs: lhs, idx: idx, joinfld: joinfld, rhs: rhs}
	if err := s.BeforeFirst(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *IndexJoinScan) BeforeFirst() error {
	if err := s.lhs.BeforeFirst(); err != nil {
		return err
	}
	if _, err := s.lhs.Next(); err != nil {
		return err
	}
	return s.resetIndex()
}

func (s *IndexJoinScan) resetIndex() error {
	searchKey, err := s.lhs.GetVal(s.joinfld)
	if err != nil {
		return err
	}
	return s.idx.BeforeFirst(searchKey)
}

func (s *IndexJoinScan) Next() (bool, error) {
	for {
		ok, err := s.idx.Next()
		if err != nil {
			return false, err
		}
		if ok {
			r, err := s.idx.GetDataRID()
			if err != nil {
				return false, err
			}
			if err := s.rhs.MoveToRID(r); err != nil {
				return false, err
			}
			return true, nil
		}
		ok, err = s.lhs.Next()
		if err != nil || !ok {
			return false, err
		}
		if err := s.resetIndex(); err != nil {
			return false, err
		}
	}
}

func (s *IndexJoinScan) GetInt32(fldname string) (int32, error) {
	if s.rhs.HasField(fldname) {
		return s.rhs.GetInt32(fldname)
	}
	return s.lhs.GetInt32(fldname)
}

func (s *IndexJoinScan) GetString(fldname string) (string, error) {
	if s.rhs.HasField(fldname) {
		return s.rhs.GetString(fldname)
	}
	return s.lhs.GetString(fldname)
}

func (s *IndexJoinScan) GetVal(fldname string) (query.Constant, error) {
	if s.rhs.HasField(fldname) {
		return s.rhs.GetVal(fldname)
	}
	return s.lhs.GetVal(fldname)
}

func (s *IndexJoinScan) HasField(fldname string) bool {
	return s.rhs.HasField(fldname) || s.lhs.HasField(fldname)
}

func (s *IndexJoinScan) Close() error {
	if err := s.lhs.Close(); err != nil {
		return err
	}
	if err := s.idx.Close(); err != nil {
		return err
	}
	return s.rhs.Close()
}
