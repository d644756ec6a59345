package index

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// btreeDir navigates one directory block. Level 0 directory blocks point
// at leaf blocks; level > 0 point at other directory blocks (§4.9).
type btreeDir struct {
	t        *tx.Transaction
	filename string
	ksch     *record.Schema
	contents *btPage
}

func newBtreeDir(t *tx.Transaction, blk block.ID, ksch *record.Schema) (*btreeDir, error) {
	p, err := newBtPage(t, blk, ksch, false)
	if err != nil {
		return nil, err
	}
	return &btreeDir{t: t, filename: blk.Filename(), ksch: ksch, contents: p}, nil
}

func (d *btreeDir) close() { d.contents.close() }

// search descends from d's block to the leaf block that may contain
// searchKey.
func (d *btreeDir) search(searchKey query.Constant) (int, error) {
	childBlk, err := d.findChildBlock(searchKey)
	if err != nil {
		return 0, err
	}
	for {
		level, err := d.contents.getFlag()
		if err != nil {
			return 0, err
		}
		if level <= 0 {
			break
		}
		d.contents.close()
		p, err := newBtPage(d.t, block.New(d.filename, childBlk), d.ksch, false)
		if err != nil {
			return 0, err
		}
		d.contents = p
		childBlk, err = d.findChildBlock(searchKey)
		if err != nil {
			return 0, err
		}
	}
	return childBlk, nil
}

func (d *btreeDir) findChildBlock(searchKey query.Constant) (int, error) {
	slot, err := d.contents.findSlotBefore(searchKey)
	if err != nil {
		return 0, err
	}
	n, err := d.contents.getNumRecs()
	if err != nil {
		return 0, err
	}
	if slot+1 < n {
		v, err := d.contents.getDataVal(slot + 1)
		if err != nil {
			return 0, err
		}
		if v.Equals(searchKey) {
			slot++
		}
	}
	if slot < 0 {
		slot = 0
	}
	return int(mustInt32(d.contents.getInt32(slot, "block"))), nil
}

func mustInt32(v int32, err error) int32 {
	if err != nil {
		return 0
	}
	return v
}

// makeNewRoot replaces the root's contents (block 0 of the dir file) with
// a fresh entry pointing at it plus the propagated split entry, bumping
// the level by one.
func (d *btreeDir) makeNewRoot(entry DirEntry) error {
	firstVal, err := d.contents.getDataVal(0)
	if err != nil {
		return err
	}
	level, err := d.contents.getFlag()
	if err != nil {
		return err
	}
	newBlknum, err := d.contents.split(0, level)
	if err != nil {
		return err
	}
	oldRoot := newDirEntry(firstVal, newBlknum)
	if err := d.insertEntry(oldRoot); err != nil {
		return err
	}
	if err := d.insertEntry(entry); err != nil {
		return err
	}
	return d.contents.setFlag(level + 1)
}

// insert inserts entry into d's directory block, splitting and
// propagating a new DirEntry if the block overflows.
func (d *btreeDir) insert(entry DirEntry) (*DirEntry, error) {
	level, err := d.contents.getFlag()
	if err != nil {
		return nil, err
	}
	if level == 0 {
		return d.insertEntryWithSplit(entry)
	}
	childBlk, err := d.findChildBlock(entry.Val)
	if err != nil {
		return nil, err
	}
	child, err := newBtreeDir(d.t, block.New(d.filename, childBlk), d.ksch)
	if err != nil {
		return nil, err
	}
	propagated, err := child.insert(entry)
	child.close()
	if err != nil {
		return nil, err
	}
	if propagated == nil {
		return nil, nil
	}
	return d.insertEntryWithSplit(*propagated)
}

func (d *btreeDir) insertEntryWithSplit(entry DirEntry) (*DirEntry, error) {
	if err := d.insertEntry(entry); err != nil {
		return nil, err
	}
	full, err := d.contents.isFull()
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, nil
	}
	n, err := d.contents.getNumRecs()
	if err != nil {
		return nil, err
	}
	splitPos := n / 2
	splitVal, err := d.contents.getDataVal(splitPos)
	if err != nil {
		return nil, err
	}
	level, err := d.contents.getFlag()
	if err != nil {
		return nil, err
	}
	newBlknum, err := d.contents.split(splitPos, level)
	if err != nil {
		return nil, err
	}
	out := newDirEntry(splitVal, newBlknum)
	return &out, nil
}

func (d *btreeDir) insertEntry(entry DirEntry) error {
	slot, err := d.contents.findSlotBefore(entry.Val)
	if err != nil {
		return err
	}
	return d.contents.insertDir(slot+1, entry.Val, entry.Blknum)
}
