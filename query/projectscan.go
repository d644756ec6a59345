package query

import "github.com/cutsea110/simplego/rid"

// ProjectScan restricts an underlying scan to a fixed list of field names
// (§4.10). It is read-only in spirit — the original design doesn't expose
// update/insert through a projection — so its UpdateScan methods all
// report errNotUpdatable.
type ProjectScan struct {
	s      Scan
	fields []string
}

var _ Scan = (*ProjectScan)(nil)

// NewProjectScan wraps s, exposing only fields.
func NewProjectScan(s Scan, fields []string) *ProjectScan {
	return &ProjectScan{s: s, fields: fields}
}

func (ps *ProjectScan) BeforeFirst() error  { return ps.s.BeforeFirst() }
func (ps *ProjectScan) Next() (bool, error) { return ps.s.Next() }

func (ps *ProjectScan) GetInt32(fldname string) (int32, error) {
	if !ps.HasField(fldname) {
		return 0, errFieldNotFound(fldname)
	}
	return ps.s.GetInt32(fldname)
}

func (ps *ProjectScan) GetString(fldname string) (string, error) {
	if !ps.HasField(fldname) {
		return "", errFieldNotFound(fldname)
	}
	return ps.s.GetString(fldname)
}

func (ps *ProjectScan) GetVal(fldname string) (Constant, error) {
	if !ps.HasField(fldname) {
		return Constant{}, errFieldNotFound(fldname)
	}
	return ps.s.GetVal(fldname)
}

func (ps *ProjectScan) HasField(fldname string) bool {
	for _, f := range ps.fields {
		if f == fldname {
			return true
		}
	}
	return false
}

func (ps *ProjectScan) Close() error { return ps.s.Close() }

func (ps *ProjectScan) SetInt32(string, int32) error       { return errNotUpdatable }
func (ps *ProjectScan) SetString(string, string) error     { return errNotUpdatable }
func (ps *ProjectScan) SetVal(string, Constant) error       { return errNotUpdatable }
func (ps *ProjectScan) Insert() error                       { return errNotUpdatable }
func (ps *ProjectScan) Delete() error                       { return errNotUpdatable }
func (ps *ProjectScan) GetRID() rid.ID                       { return rid.ID{} }
func (ps *ProjectScan) MoveToRID(rid.ID) error               { return errNotUpdatable }
