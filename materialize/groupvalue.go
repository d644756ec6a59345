package materialize

import "github.com/cutsea110/simplego/query"

// groupValue snapshots a scan's current row projected onto groupfields,
// so GroupByScan.Next can detect the boundary between consecutive groups.
type groupValue struct {
	vals map[string]query.Constant
}

func newGroupValue(s query.Scan, fields []string) (groupValue, error) {
	vals := make(map[string]query.Constant, len(fields))
	for _, fldname := range fields {
		v, err := s.GetVal(fldname)
		if err != nil {
			return groupValue{}, err
		}
		vals[fldname] = v
	}
	return groupValue{vals: vals}, nil
}

func (gv groupValue) getVal(fldname string) (query.Constant, bool) {
	v, ok := gv.vals[fldname]
	return v, ok
}

func (gv groupValue) equals(other groupValue) bool {
	if len(gv.vals) != len(other.vals) {
		return false
	}
	for f, v := range gv.vals {
		ov, ok := other.vals[f]
		if !ok || !v.Equals(ov) {
			return false
		}
	}
	return true
}
