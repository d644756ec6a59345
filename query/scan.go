package query

import "github.com/cutsea110/simplego/rid"

// Scan is the contract every query operator implements: position before
// the first record, advance, and read the current record's fields
// (§4.10). Implementations that cannot support a capability (table-scan
// downcast, sort-scan save/restore) expose it via the optional interfaces
// below rather than panicking — IndexJoinScan and MergeJoinScan query for
// them explicitly.
type Scan interface {
	BeforeFirst() error
	Next() (bool, error)
	GetInt32(fldname string) (int32, error)
	GetString(fldname string) (string, error)
	GetVal(fldname string) (Constant, error)
	HasField(fldname string) bool
	Close() error
}

// UpdateScan extends Scan with in-place mutation and positioning by RID.
// Only scans that ultimately bottom out at a heap file (TableScan) or a
// materialized temp table implement this fully.
type UpdateScan interface {
	Scan
	SetInt32(fldname string, val int32) error
	SetString(fldname string, val string) error
	SetVal(fldname string, val Constant) error
	Insert() error
	Delete() error
	GetRID() rid.ID
	MoveToRID(r rid.ID) error
}

// TableScanner is the capability query asks an operator for positioned
// RID access to a single underlying table, without caring about the
// concrete TableScan type itself. IndexJoinScan needs this on its right
// input (§4.10: "Requires rhs to be a TablePlan").
type TableScanner interface {
	UpdateScan
}

// AsUpdateScan is a capability query: it returns ok=true when s also
// implements UpdateScan, modeling the original's downcast without runtime
// type assertions scattered through the call sites.
func AsUpdateScan(s Scan) (UpdateScan, bool) {
	us, ok := s.(UpdateScan)
	return us, ok
}

// SavePosition/RestorePosition (SortScan, §4.10) are modeled as a small
// optional interface rather than a concrete type so MergeJoinScan can work
// with anything that supports repositioning, not just SortScan.
type Positionable interface {
	SavePosition() any
	RestorePosition(saved any) error
}

// AsPositionable is the capability query for save/restore position.
func AsPositionable(s Scan) (Positionable, bool) {
	p, ok := s.(Positionable)
	return p, ok
}
