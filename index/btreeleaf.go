package index

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/rid"
	"github.com/cutsea110/simplego/tx"
)

// btreeLeaf positions within a single leaf block and advances across
// leaf-block boundaries as a plain forward scan — the engine has no
// overflow chains, so a leaf with duplicate keys simply spans multiple
// blocks linked by key order (§4.9).
type btreeLeaf struct {
	t         *tx.Transaction
	filename  string
	ksch      *record.Schema
	searchKey query.Constant
	contents  *btPage
	currentSlot int
}

func newBtreeLeaf(t *tx.Transaction, blk block.ID, ksch *record.Schema, searchKey query.Constant) (*btreeLeaf, error) {
	p, err := newBtPage(t, blk, ksch, true)
	if err != nil {
		return nil, err
	}
	l := &btreeLeaf{t: t, filename: blk.Filename(), ksch: ksch, searchKey: searchKey, contents: p}
	slot, err := p.findSlotBefore(searchKey)
	if err != nil {
		return nil, err
	}
	l.currentSlot = slot
	return l, nil
}

func (l *btreeLeaf) close() { l.contents.close() }

// next advances to the next slot whose key equals the search key,
// crossing into the next leaf block when the current one is exhausted.
func (l *btreeLeaf) next() (bool, error) {
	l.currentSlot++
	n, err := l.contents.getNumRecs()
	if err != nil {
		return false, err
	}
	if l.currentSlot >= n {
		return l.tryOverflow()
	}
	v, err := l.contents.getDataVal(l.currentSlot)
	if err != nil {
		return false, err
	}
	if !v.Equals(l.searchKey) {
		return l.tryOverflow()
	}
	return true, nil
}

func (l *btreeLeaf) tryOverflow() (bool, error) {
	nextBlk := l.contents.blk.Number() + 1
	numBlocks, err := l.t.Size(l.filename)
	if err != nil {
		return false, err
	}
	if nextBlk >= numBlocks {
		return false, nil
	}
	peek, err := newBtPage(l.t, block.New(l.filename, nextBlk), l.ksch, true)
	if err != nil {
		return false, err
	}
	n, err := peek.getNumRecs()
	if err != nil {
		peek.close()
		return false, err
	}
	if n == 0 {
		peek.close()
		return false, nil
	}
	first, err := peek.getDataVal(0)
	peek.close()
	if err != nil {
		return false, err
	}
	if !first.Equals(l.searchKey) {
		return false, nil
	}
	l.contents.close()
	p, err := newBtPage(l.t, block.New(l.filename, nextBlk), l.ksch, true)
	if err != nil {
		return false, err
	}
	l.contents = p
	l.currentSlot = 0
	return true, nil
}

func (l *btreeLeaf) getDataRID() (rid.ID, error) {
	blk, err := l.contents.getInt32(l.currentSlot, "block")
	if err != nil {
		return rid.ID{}, err
	}
	id, err := l.contents.getInt32(l.currentSlot, "id")
	if err != nil {
		return rid.ID{}, err
	}
	return rid.New(int(blk), int(id)), nil
}

func (l *btreeLeaf) delete(r rid.ID) error {
	for {
		ok, err := l.next()
		if err != nil || !ok {
			return err
		}
		got, err := l.getDataRID()
		if err != nil {
			return err
		}
		if got.Equals(r) {
			return l.contents.deleteSlot(l.currentSlot)
		}
	}
}

// insert adds (l.searchKey, r) in sorted position, splitting the block
// and returning the propagated DirEntry if the insert overflowed it.
func (l *btreeLeaf) insert(r rid.ID) (*DirEntry, error) {
	full, err := l.contents.isFull()
	if err != nil {
		return nil, err
	}
	if !full {
		l.currentSlot++
		if err := l.contents.insertLeaf(l.currentSlot, l.searchKey, r.Blknum, r.Slot); err != nil {
			return nil, err
		}
		return nil, nil
	}

	firstKey, err := l.contents.getDataVal(0)
	if err != nil {
		return nil, err
	}
	n, err := l.contents.getNumRecs()
	if err != nil {
		return nil, err
	}
	lastKey, err := l.contents.getDataVal(n - 1)
	if err != nil {
		return nil, err
	}
	if lastKey.Equals(firstKey) {
		// every key in the block is identical; split after the first
		// record so the new key has somewhere distinct to land.
		newBlknum, err := l.contents.split(1, -1)
		if err != nil {
			return nil, err
		}
		l.currentSlot++
		if err := l.contents.insertLeaf(l.currentSlot, l.searchKey, r.Blknum, r.Slot); err != nil {
			return nil, err
		}
		return entryForSplit(l.contents, newBlknum, l.searchKey, lastKey)
	}

	splitPos := n / 2
	splitKey, err := l.contents.getDataVal(splitPos)
	if err != nil {
		return nil, err
	}
	for splitKey.Equals(firstKey) {
		splitPos++
		splitKey, err = l.contents.getDataVal(splitPos)
		if err != nil {
			return nil, err
		}
	}
	newBlknum, err := l.contents.split(splitPos, -1)
	if err != nil {
		return nil, err
	}
	if l.searchKey.Less(splitKey) {
		l.currentSlot++
		if err := l.contents.insertLeaf(l.currentSlot, l.searchKey, r.Blknum, r.Slot); err != nil {
			return nil, err
		}
	} else {
		slot := l.currentSlot - splitPos
		newPage, err := newBtPage(l.t, block.New(l.filename, newBlknum), l.ksch, true)
		if err != nil {
			return nil, err
		}
		if err := newPage.insertLeaf(slot+1, l.searchKey, r.Blknum, r.Slot); err != nil {
			newPage.close()
			return nil, err
		}
		newPage.close()
	}
	entry := newDirEntry(splitKey, newBlknum)
	return &entry, nil
}

func entryForSplit(_ *btPage, newBlknum int, _ query.Constant, splitKey query.Constant) (*DirEntry, error) {
	entry := newDirEntry(splitKey, newBlknum)
	return &entry, nil
}
