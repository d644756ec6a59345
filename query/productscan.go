package query

import "github.com/cutsea110/simplego/rid"

// ProductScan computes the cross product of two scans (§4.10). For every
// row of s1 it iterates all of s2; s2 is rewound each time s1 advances. It
// is read-only: a product has no well-defined single underlying record to
// update or delete.
type ProductScan struct {
	s1, s2 Scan
}

var _ Scan = (*ProductScan)(nil)

// NewProductScan returns the cross product of s1 and s2, positioned
// before the first row.
func NewProductScan(s1, s2 Scan) (*ProductScan, error) {
	ps := &ProductScan{s1: s1, s2: s2}
	if err := ps.BeforeFirst(); err != nil {
		return nil, err
	}
	return ps, nil
}

func (ps *ProductScan) BeforeFirst() error {
	if err := ps.s1.BeforeFirst(); err != nil {
		return err
	}
	if _, err := ps.s1.Next(); err != nil {
		return err
	}
	return ps.s2.BeforeFirst()
}

func (ps *ProductScan) Next() (bool, error) {
	ok, err := ps.s2.Next()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if err := ps.s2.BeforeFirst(); err != nil {
		return false, err
	}
	ok2, err := ps.s2.Next()
	if err != nil || !ok2 {
		return false, err
	}
	return ps.s1.Next()
}

func (ps *ProductScan) GetInt32(fldname string) (int32, error) {
	if ps.s1.HasField(fldname) {
		return ps.s1.GetInt32(fldname)
	}
	return ps.s2.GetInt32(fldname)
}

func (ps *ProductScan) GetString(fldname string) (string, error) {
	if ps.s1.HasField(fldname) {
		return ps.s1.GetString(fldname)
	}
	return ps.s2.GetString(fldname)
}

func (ps *ProductScan) GetVal(fldname string) (Constant, error) {
	if ps.s1.HasField(fldname) {
		return ps.s1.GetVal(fldname)
	}
	return ps.s2.GetVal(fldname)
}

func (ps *ProductScan) HasField(fldname string) bool {
	return ps.s1.HasField(fldname) || ps.s2.HasField(fldname)
}

func (ps *ProductScan) Close() error {
	err1 := ps.s1.Close()
	err2 := ps.s2.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (ps *ProductScan) SetInt32(string, int32) error   { return errNotUpdatable }
func (ps *ProductScan) SetString(string, string) error { return errNotUpdatable }
func (ps *ProductScan) SetVal(string, Constant) error  { return errNotUpdatable }
func (ps *ProductScan) Insert() error                  { return errNotUpdatable }
func (ps *ProductScan) Delete() error                  { return errNotUpdatable }
func (ps *ProductScan) GetRID() rid.ID                 { return rid.ID{} }
func (ps *ProductScan) MoveToRID(rid.ID) error         { return errNotUpdatable }
