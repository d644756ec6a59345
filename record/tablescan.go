package record

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/rid"
	"github.com/cutsea110/simplego/tx"
)

// TableScan is a forward iterator over a heap file's blocks (§4.8). It is
// the only concrete type that materially implements query.UpdateScan's
// mutation methods — every other UpdateScan in the engine delegates down
// to one of these.
type TableScan struct {
	tx          *tx.Transaction
	layout      *Layout
	filename    string
	rp          *Page
	currentSlot int
}

var _ query.UpdateScan = (*TableScan)(nil)

// NewTableScan opens (or creates, if empty) tblname's heap file and
// positions the scan before the first record.
func NewTableScan(t *tx.Transaction, tblname string, layout *Layout) (*TableScan, error) {
	ts := &TableScan{tx: t, layout: layout, filename: tblname + ".tbl", currentSlot: -1}

	n, err := t.Size(ts.filename)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if err := ts.moveToNewBlock(); err != nil {
			return nil, err
		}
	} else {
		if err := ts.moveToBlock(0); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// Close unpins the current record page's block, if any.
func (ts *TableScan) Close() error {
	if ts.rp != nil {
		ts.tx.Unpin(ts.rp.Block())
	}
	return nil
}

// BeforeFirst repositions the scan at the start of the file.
func (ts *TableScan) BeforeFirst() error {
	return ts.moveToBlock(0)
}

// Next advances to the next used slot, moving across blocks as needed.
func (ts *TableScan) Next() (bool, error) {
	for {
		slot, ok, err := ts.rp.NextAfter(ts.currentSlot)
		if err != nil {
			return false, err
		}
		if ok {
			ts.currentSlot = slot
			return true, nil
		}
		last, err := ts.atLastBlock()
		if err != nil {
			return false, err
		}
		if last {
			return false, nil
		}
		if err := ts.moveToBlock(ts.rp.Block().Number() + 1); err != nil {
			return false, err
		}
	}
}

func (ts *TableScan) GetInt32(fldname string) (int32, error) {
	return ts.rp.GetInt32(ts.currentSlot, fldname)
}

func (ts *TableScan) GetString(fldname string) (string, error) {
	return ts.rp.GetString(ts.currentSlot, fldname)
}

func (ts *TableScan) GetVal(fldname string) (query.Constant, error) {
	switch ts.layout.Schema().FieldType(fldname) {
	case Integer:
		v, err := ts.GetInt32(fldname)
		return query.NewInt32(v), err
	case Int8:
		v, err := ts.rp.GetInt8(ts.currentSlot, fldname)
		return query.NewInt8(v), err
	case Int16:
		v, err := ts.rp.GetInt16(ts.currentSlot, fldname)
		return query.NewInt16(v), err
	case Bool:
		v, err := ts.rp.GetBool(ts.currentSlot, fldname)
		return query.NewBool(v), err
	case Date:
		v, err := ts.GetInt32(fldname)
		return query.NewInt32(v), err
	default:
		v, err := ts.GetString(fldname)
		return query.NewString(v), err
	}
}

func (ts *TableScan) HasField(fldname string) bool {
	return ts.layout.Schema().HasField(fldname)
}

func (ts *TableScan) SetInt32(fldname string, val int32) error {
	return ts.rp.SetInt32(ts.currentSlot, fldname, val)
}

func (ts *TableScan) SetString(fldname string, val string) error {
	return ts.rp.SetString(ts.currentSlot, fldname, val)
}

func (ts *TableScan) SetVal(fldname string, val query.Constant) error {
	switch ts.layout.Schema().FieldType(fldname) {
	case Integer, Date:
		return ts.rp.SetInt32(ts.currentSlot, fldname, val.I32)
	case Int8:
		return ts.rp.SetInt8(ts.currentSlot, fldname, val.I8)
	case Int16:
		return ts.rp.SetInt16(ts.currentSlot, fldname, val.I16)
	case Bool:
		return ts.rp.SetBool(ts.currentSlot, fldname, val.Bool)
	default:
		return ts.rp.SetString(ts.currentSlot, fldname, val.Str)
	}
}

// Insert finds the next empty slot, extending the file with a fresh block
// when every existing block is full.
func (ts *TableScan) Insert() error {
	for {
		slot, ok, err := ts.rp.InsertAfter(ts.currentSlot)
		if err != nil {
			return err
		}
		if ok {
			ts.currentSlot = slot
			return nil
		}
		last, err := ts.atLastBlock()
		if err != nil {
			return err
		}
		if last {
			if err := ts.moveToNewBlock(); err != nil {
				return err
			}
		} else {
			if err := ts.moveToBlock(ts.rp.Block().Number() + 1); err != nil {
				return err
			}
		}
	}
}

// Delete retires the current slot.
func (ts *TableScan) Delete() error {
	return ts.rp.Delete(ts.currentSlot)
}

// MoveToRID repositions the scan to r, unpinning the previous block.
func (ts *TableScan) MoveToRID(r rid.ID) error {
	if ts.rp != nil {
		ts.tx.Unpin(ts.rp.Block())
	}
	blk := block.New(ts.filename, r.Blknum)
	rp, err := NewPage(ts.tx, blk, ts.layout)
	if err != nil {
		return err
	}
	ts.rp = rp
	ts.currentSlot = r.Slot
	return nil
}

// GetRID returns the current record's persistent identifier.
func (ts *TableScan) GetRID() rid.ID {
	return rid.New(ts.rp.Block().Number(), ts.currentSlot)
}

func (ts *TableScan) moveToBlock(blknum int) error {
	if ts.rp != nil {
		ts.tx.Unpin(ts.rp.Block())
	}
	blk := block.New(ts.filename, blknum)
	rp, err := NewPage(ts.tx, blk, ts.layout)
	if err != nil {
		return err
	}
	ts.rp = rp
	ts.currentSlot = -1
	return nil
}

func (ts *TableScan) moveToNewBlock() error {
	if ts.rp != nil {
		ts.tx.Unpin(ts.rp.Block())
	}
	blk, err := ts.tx.Append(ts.filename)
	if err != nil {
		return err
	}
	rp, err := NewPage(ts.tx, blk, ts.layout)
	if err != nil {
		return err
	}
	ts.rp = rp
	if err := ts.rp.Format(); err != nil {
		return err
	}
	ts.currentSlot = -1
	return nil
}

// atLastBlock reports whether the current block is the file's last one.
// A Size error is propagated rather than swallowed, since treating an
// I/O failure as "yes, stop scanning" would silently truncate results.
func (ts *TableScan) atLastBlock() (bool, error) {
	n, err := ts.tx.Size(ts.filename)
	if err != nil {
		return false, err
	}
	return ts.rp.Block().Number() == n-1, nil
}
