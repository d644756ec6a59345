package query

import "github.com/cutsea110/simplego/rid"

// SelectScan filters an underlying scan's rows by a Predicate (§4.10). It
// forwards every UpdateScan method so an update through a selection still
// reaches the underlying table — the only invariant it adds is that
// Next() never stops on a row that fails the predicate.
type SelectScan struct {
	s    Scan
	pred Predicate
}

var _ Scan = (*SelectScan)(nil)

// NewSelectScan wraps s, exposing only rows that satisfy pred.
func NewSelectScan(s Scan, pred Predicate) *SelectScan {
	return &SelectScan{s: s, pred: pred}
}

func (ss *SelectScan) BeforeFirst() error { return ss.s.BeforeFirst() }

func (ss *SelectScan) Next() (bool, error) {
	for {
		ok, err := ss.s.Next()
		if err != nil || !ok {
			return false, err
		}
		satisfied, err := ss.pred.IsSatisfied(ss.s)
		if err != nil {
			return false, err
		}
		if satisfied {
			return true, nil
		}
	}
}

func (ss *SelectScan) GetInt32(fldname string) (int32, error)  { return ss.s.GetInt32(fldname) }
func (ss *SelectScan) GetString(fldname string) (string, error) { return ss.s.GetString(fldname) }
func (ss *SelectScan) GetVal(fldname string) (Constant, error) { return ss.s.GetVal(fldname) }
func (ss *SelectScan) HasField(fldname string) bool             { return ss.s.HasField(fldname) }
func (ss *SelectScan) Close() error                             { return ss.s.Close() }

// underlying UpdateScan passthrough — only valid when s implements it.

func (ss *SelectScan) SetInt32(fldname string, val int32) error {
	us, ok := AsUpdateScan(ss.s)
	if !ok {
		return errNotUpdatable
	}
	return us.SetInt32(fldname, val)
}

func (ss *SelectScan) SetString(fldname string, val string) error {
	us, ok := AsUpdateScan(ss.s)
	if !ok {
		return errNotUpdatable
	}
	return us.SetString(fldname, val)
}

func (ss *SelectScan) SetVal(fldname string, val Constant) error {
	us, ok := AsUpdateScan(ss.s)
	if !ok {
		return errNotUpdatable
	}
	return us.SetVal(fldname, val)
}

func (ss *SelectScan) Insert() error {
	us, ok := AsUpdateScan(ss.s)
	if !ok {
		return errNotUpdatable
	}
	return us.Insert()
}

func (ss *SelectScan) Delete() error {
	us, ok := AsUpdateScan(ss.s)
	if !ok {
		return errNotUpdatable
	}
	return us.Delete()
}

func (ss *SelectScan) GetRID() rid.ID {
	us, ok := AsUpdateScan(ss.s)
	if !ok {
		return rid.ID{}
	}
	return us.GetRID()
}

func (ss *SelectScan) MoveToRID(r rid.ID) error {
	us, ok := AsUpdateScan(ss.s)
	if !ok {
		return errNotUpdatable
	}
	return us.MoveToRID(r)
}
