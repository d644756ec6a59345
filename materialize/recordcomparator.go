package materialize

import "github.com/cutsea110/simplego/query"

// RecordComparator orders two scans' current rows by a fixed list of
// fields, used by both SortScan's run merges and MergeJoinScan (§4.10).
type RecordComparator struct {
	fields []string
}

// NewRecordComparator returns a comparator ordering by fields in order.
func NewRecordComparator(fields []string) RecordComparator {
	return RecordComparator{fields: fields}
}

// Compare returns -1, 0, or 1 as s1's row sorts before, equal to, or
// after s2's row.
func (rc RecordComparator) Compare(s1, s2 query.Scan) (int, error) {
	for _, fld := range rc.fields {
		v1, err := s1.GetVal(fld)
		if err != nil {
			return 0, err
		}
		v2, err := s2.GetVal(fld)
		if err != nil {
			return 0, err
		}
		if v1.Less(v2) {
			return -1, nil
		}
		if v2.Less(v1) {
			return 1, nil
		}
	}
	return 0, nil
}
