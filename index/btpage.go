package index

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/page"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// btPage is the slotted layout shared by BTreeDir and BTreeLeaf blocks: an
// i32 header (directory level, unused/-1 for leaf blocks) followed by an
// i32 record count, then records packed contiguously from slot 0 with no
// per-slot flag — B-tree pages stay dense; entries leave via a split
// rewrite, never a tombstone (§4.9).
type btPage struct {
	tx     *tx.Transaction
	blk    block.ID
	sch    *record.Schema // the full slot schema (block[, id], dataval)
	off    map[string]int
	ssize  int
	isLeaf bool
}

const (
	headerFlagOffset  = 0
	headerCountOffset = page.Int32Size
	btPageHeaderSize  = 2 * page.Int32Size
)

func fieldWidth(sch *record.Schema, fldname string) int {
	switch sch.FieldType(fldname) {
	case record.Integer, record.Date:
		return page.Int32Size
	case record.Varchar:
		return page.MaxLength(sch.Length(fldname))
	case record.Int8, record.Bool:
		return 1
	case record.Int16:
		return 2
	default:
		return page.Int32Size
	}
}

func newBtPage(t *tx.Transaction, blk block.ID, ksch *record.Schema, isLeaf bool) (*btPage, error) {
	if err := t.Pin(blk); err != nil {
		return nil, err
	}
	sch := record.NewSchema()
	sch.AddInt32Field("block")
	if isLeaf {
		sch.AddInt32Field("id")
	}
	sch.Add("dataval", ksch)

	off := make(map[string]int, 3)
	pos := 0
	for _, f := range sch.Fields() {
		off[f] = pos
		pos += fieldWidth(sch, f)
	}
	return &btPage{tx: t, blk: blk, sch: sch, off: off, ssize: pos, isLeaf: isLeaf}, nil
}

func (p *btPage) close() { p.tx.Unpin(p.blk) }

func (p *btPage) slotPos(slot int) int32 { return int32(btPageHeaderSize + slot*p.ssize) }

func (p *btPage) getFlag() (int32, error)   { return p.tx.GetInt32(p.blk, headerFlagOffset) }
func (p *btPage) setFlag(v int32) error     { return p.tx.SetInt32(p.blk, headerFlagOffset, v, true) }
func (p *btPage) getNumRecs() (int, error) {
	n, err := p.tx.GetInt32(p.blk, headerCountOffset)
	return int(n), err
}
func (p *btPage) setNumRecs(n int) error {
	return p.tx.SetInt32(p.blk, headerCountOffset, int32(n), true)
}

// format initializes a brand-new block as an empty page with the given
// header flag (level for dir pages, unused for leaf pages).
func (p *btPage) format(flag int32) error {
	if err := p.tx.SetInt32(p.blk, headerFlagOffset, flag, false); err != nil {
		return err
	}
	return p.tx.SetInt32(p.blk, headerCountOffset, 0, false)
}

func (p *btPage) getInt32(slot int, fldname string) (int32, error) {
	return p.tx.GetInt32(p.blk, p.slotPos(slot)+int32(p.off[fldname]))
}
func (p *btPage) setInt32(slot int, fldname string, v int32) error {
	return p.tx.SetInt32(p.blk, p.slotPos(slot)+int32(p.off[fldname]), v, true)
}

func (p *btPage) getDataVal(slot int) (query.Constant, error) {
	switch p.sch.FieldType("dataval") {
	case record.Varchar:
		s, err := p.tx.GetString(p.blk, p.slotPos(slot)+int32(p.off["dataval"]))
		return query.NewString(s), err
	case record.Int8:
		v, err := p.tx.GetInt8(p.blk, p.slotPos(slot)+int32(p.off["dataval"]))
		return query.NewInt8(v), err
	case record.Int16:
		v, err := p.tx.GetInt16(p.blk, p.slotPos(slot)+int32(p.off["dataval"]))
		return query.NewInt16(v), err
	case record.Bool:
		v, err := p.tx.GetBool(p.blk, p.slotPos(slot)+int32(p.off["dataval"]))
		return query.NewBool(v), err
	default:
		v, err := p.getInt32(slot, "dataval")
		return query.NewInt32(v), err
	}
}

func (p *btPage) setDataVal(slot int, val query.Constant) error {
	pos := p.slotPos(slot) + int32(p.off["dataval"])
	switch p.sch.FieldType("dataval") {
	case record.Varchar:
		return p.tx.SetString(p.blk, pos, val.Str, true)
	case record.Int8:
		return p.tx.SetInt8(p.blk, pos, val.I8, true)
	case record.Int16:
		return p.tx.SetInt16(p.blk, pos, val.I16, true)
	case record.Bool:
		return p.tx.SetBool(p.blk, pos, val.Bool, true)
	default:
		return p.setInt32(slot, "dataval", val.I32)
	}
}

// findSlotBefore returns the last slot whose dataval < searchKey (-1 if
// none), by linear scan — adequate at the small, teaching-scale block
// counts this engine targets.
func (p *btPage) findSlotBefore(searchKey query.Constant) (int, error) {
	n, err := p.getNumRecs()
	if err != nil {
		return -1, err
	}
	slot := 0
	for slot < n {
		v, err := p.getDataVal(slot)
		if err != nil {
			return -1, err
		}
		if !v.Less(searchKey) {
			break
		}
		slot++
	}
	return slot - 1, nil
}

// isFull reports whether one more slot would overflow the block.
func (p *btPage) isFull() (bool, error) {
	n, err := p.getNumRecs()
	if err != nil {
		return false, err
	}
	return int(p.slotPos(n+1)) > p.tx.BlockSize(), nil
}

// insertLeaf inserts (val, blknum, id) at slot, shifting later records up.
func (p *btPage) insertLeaf(slot int, val query.Constant, blknum, id int) error {
	if err := p.insertSlotAt(slot); err != nil {
		return err
	}
	if err := p.setDataVal(slot, val); err != nil {
		return err
	}
	if err := p.setInt32(slot, "block", int32(blknum)); err != nil {
		return err
	}
	return p.setInt32(slot, "id", int32(id))
}

// insertDir inserts (val, childBlknum) at slot, shifting later records up.
func (p *btPage) insertDir(slot int, val query.Constant, childBlknum int) error {
	if err := p.insertSlotAt(slot); err != nil {
		return err
	}
	if err := p.setDataVal(slot, val); err != nil {
		return err
	}
	return p.setInt32(slot, "block", int32(childBlknum))
}

func (p *btPage) insertSlotAt(slot int) error {
	n, err := p.getNumRecs()
	if err != nil {
		return err
	}
	for i := n; i > slot; i-- {
		if err := p.copySlot(i-1, i); err != nil {
			return err
		}
	}
	return p.setNumRecs(n + 1)
}

func (p *btPage) copySlot(from, to int) error {
	for _, f := range p.sch.Fields() {
		if f == "dataval" {
			v, err := p.getDataVal(from)
			if err != nil {
				return err
			}
			if err := p.setDataVal(to, v); err != nil {
				return err
			}
			continue
		}
		v, err := p.getInt32(from, f)
		if err != nil {
			return err
		}
		if err := p.setInt32(to, f, v); err != nil {
			return err
		}
	}
	return nil
}

// split moves every record from splitPos onward into a freshly appended
// block (with the given header flag), returning the new block's number.
func (p *btPage) split(splitPos int, flag int32) (int, error) {
	newBlk, err := p.tx.Append(p.blk.Filename())
	if err != nil {
		return 0, err
	}
	newPage, err := newBtPage(p.tx, newBlk, singleFieldSchema(p.sch.FieldType("dataval"), p.sch.Length("dataval")), p.isLeaf)
	if err != nil {
		return 0, err
	}
	defer newPage.close()
	if err := newPage.format(flag); err != nil {
		return 0, err
	}
	if err := p.transferRecs(splitPos, newPage); err != nil {
		return 0, err
	}
	return newBlk.Number(), nil
}

func (p *btPage) transferRecs(fromSlot int, dest *btPage) error {
	destSlot := 0
	for {
		n, err := p.getNumRecs()
		if err != nil {
			return err
		}
		if fromSlot >= n {
			break
		}
		if err := dest.insertSlotAt(destSlot); err != nil {
			return err
		}
		for _, f := range p.sch.Fields() {
			if f == "dataval" {
				v, err := p.getDataVal(fromSlot)
				if err != nil {
					return err
				}
				if err := dest.setDataVal(destSlot, v); err != nil {
					return err
				}
				continue
			}
			v, err := p.getInt32(fromSlot, f)
			if err != nil {
				return err
			}
			if err := dest.setInt32(destSlot, f, v); err != nil {
				return err
			}
		}
		if err := p.deleteSlot(fromSlot); err != nil {
			return err
		}
		destSlot++
	}
	return nil
}

func (p *btPage) deleteSlot(slot int) error {
	n, err := p.getNumRecs()
	if err != nil {
		return err
	}
	for i := slot + 1; i < n; i++ {
		if err := p.copySlot(i, i-1); err != nil {
			return err
		}
	}
	return p.setNumRecs(n - 1)
}
