package materialize

import (
	"fmt"

	"github.com/cutsea110/simplego/query"
)

// GroupByScan requires its child be sorted on groupfields (typically a
// SortScan). Next advances through one group at a time, feeding each
// aggfn ProcessFirst/ProcessNext as it goes (§4.10).
type GroupByScan struct {
	s           query.Scan
	groupfields []string
	aggfns      []AggregationFn
	groupval    groupValue
	moreGroups  bool
}

var _ query.Scan = (*GroupByScan)(nil)

// NewGroupByScan wraps s (already sorted on groupfields).
func NewGroupByScan(s query.Scan, groupfields []string, aggfns []AggregationFn) (*GroupByScan, error) {
	gs := &GroupByScan{s: s, groupfields: groupfields, aggfns: aggfns}
	if err := gs.BeforeFirst(); err != nil {
		return nil, err
	}
	return gs, nil
}

func (gs *GroupByScan) BeforeFirst() error {
	if err := gs.s.BeforeFirst(); err != nil {
		return err
	}
	ok, err := gs.s.Next()
	if err != nil {
		return err
	}
	gs.moreGroups = ok
	return nil
}

func (gs *GroupByScan) Next() (bool, error) {
	if !gs.moreGroups {
		return false, nil
	}
	for _, fn := range gs.aggfns {
		if err := fn.ProcessFirst(gs.s); err != nil {
			return false, err
		}
	}
	gv, err := newGroupValue(gs.s, gs.groupfields)
	if err != nil {
		return false, err
	}
	gs.groupval = gv

	for {
		ok, err := gs.s.Next()
		if err != nil {
			return false, err
		}
		gs.moreGroups = ok
		if !gs.moreGroups {
			break
		}
		next, err := newGroupValue(gs.s, gs.groupfields)
		if err != nil {
			return false, err
		}
		if !gs.groupval.equals(next) {
			break
		}
		for _, fn := range gs.aggfns {
			if err := fn.ProcessNext(gs.s); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

func (gs *GroupByScan) GetInt32(fldname string) (int32, error) {
	v, err := gs.GetVal(fldname)
	if err != nil {
		return 0, err
	}
	return v.I32, nil
}

func (gs *GroupByScan) GetString(fldname string) (string, error) {
	v, err := gs.GetVal(fldname)
	if err != nil {
		return "", err
	}
	return v.Str, nil
}

func (gs *GroupByScan) GetVal(fldname string) (query.Constant, error) {
	for _, gf := range gs.groupfields {
		if gf == fldname {
			if v, ok := gs.groupval.getVal(fldname); ok {
				return v, nil
			}
		}
	}
	for _, fn := range gs.aggfns {
		if fn.FieldName() == fldname {
			return fn.Value(), nil
		}
	}
	return query.Constant{}, fmt.Errorf("no field: %s", fldname)
}

func (gs *GroupByScan) HasField(fldname string) bool {
	for _, gf := range gs.groupfields {
		if gf == fldname {
			return true
		}
	}
	for _, fn := range gs.aggfns {
		if fn.FieldName() == fldname {
			return true
		}
	}
	return false
}

func (gs *GroupByScan) Close() error { return gs.s.Close() }
