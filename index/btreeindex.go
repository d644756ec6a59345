package index

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/rid"
	"github.com/cutsea110/simplego/tx"
)

// BTreeIndex is a B-tree secondary index spanning two files: `<idx>leaf`
// and `<idx>dir`. The directory's root lives at block 0 of the dir file,
// seeded with a sentinel {MIN-key -> leaf block 0} entry the first time
// the index is opened (§4.9).
type BTreeIndex struct {
	t            *tx.Transaction
	name         string
	ksch         *record.Schema
	leafFilename string
	dirFilename  string
	leaf         *btreeLeaf
	rootBlk      block.ID
}

var _ Index = (*BTreeIndex)(nil)

// NewBTreeIndex opens (creating if necessary) the two files backing
// idxname, whose indexed field has schema ksch (a single-field schema
// named "dataval").
func NewBTreeIndex(t *tx.Transaction, idxname string, ksch *record.Schema) (*BTreeIndex, error) {
	bi := &BTreeIndex{
		t:            t,
		name:         idxname,
		ksch:         ksch,
		leafFilename: idxname + "leaf",
		dirFilename:  idxname + "dir",
		rootBlk:      block.New(idxname+"dir", 0),
	}

	n, err := t.Size(bi.leafFilename)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		blk, err := t.Append(bi.leafFilename)
		if err != nil {
			return nil, err
		}
		p, err := newBtPage(t, blk, ksch, true)
		if err != nil {
			return nil, err
		}
		if err := p.format(-1); err != nil {
			p.close()
			return nil, err
		}
		p.close()
	}

	n, err = t.Size(bi.dirFilename)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		blk, err := t.Append(bi.dirFilename)
		if err != nil {
			return nil, err
		}
		p, err := newBtPage(t, blk, ksch, false)
		if err != nil {
			return nil, err
		}
		if err := p.format(0); err != nil {
			p.close()
			return nil, err
		}
		minVal := minConstant(ksch)
		if err := p.insertDir(0, minVal, 0); err != nil {
			p.close()
			return nil, err
		}
		p.close()
	}
	return bi, nil
}

func minConstant(ksch *record.Schema) query.Constant {
	switch ksch.FieldType("dataval") {
	case record.Varchar:
		return query.NewString("")
	case record.Int8:
		return query.NewInt8(-128)
	case record.Int16:
		return query.NewInt16(-32768)
	case record.Bool:
		return query.NewBool(false)
	default:
		return query.NewInt32(-1 << 31)
	}
}

// BeforeFirst descends the directory to the leaf block that may hold
// searchKey and opens a leaf cursor there.
func (bi *BTreeIndex) BeforeFirst(searchKey query.Constant) error {
	if err := bi.Close(); err != nil {
		return err
	}
	dir, err := newBtreeDir(bi.t, bi.rootBlk, bi.ksch)
	if err != nil {
		return err
	}
	leafBlk, err := dir.search(searchKey)
	dir.close()
	if err != nil {
		return err
	}
	leaf, err := newBtreeLeaf(bi.t, block.New(bi.leafFilename, leafBlk), bi.ksch, searchKey)
	if err != nil {
		return err
	}
	bi.leaf = leaf
	return nil
}

func (bi *BTreeIndex) Next() (bool, error) { return bi.leaf.next() }

func (bi *BTreeIndex) GetDataRID() (rid.ID, error) { return bi.leaf.getDataRID() }

// Insert adds (val, r), splitting leaves/directory blocks and growing the
// root as needed.
func (bi *BTreeIndex) Insert(val query.Constant, r rid.ID) error {
	if err := bi.BeforeFirst(val); err != nil {
		return err
	}
	entry, err := bi.leaf.insert(r)
	bi.leaf.close()
	bi.leaf = nil
	if err != nil || entry == nil {
		return err
	}
	dir, err := newBtreeDir(bi.t, bi.rootBlk, bi.ksch)
	if err != nil {
		return err
	}
	defer dir.close()
	propagated, err := dir.insert(*entry)
	if err != nil {
		return err
	}
	if propagated != nil {
		return dir.makeNewRoot(*propagated)
	}
	return nil
}

// Delete removes (val, r) from the leaf holding val, if present.
func (bi *BTreeIndex) Delete(val query.Constant, r rid.ID) error {
	if err := bi.BeforeFirst(val); err != nil {
		return err
	}
	defer func() {
		if bi.leaf != nil {
			bi.leaf.close()
			bi.leaf = nil
		}
	}()
	return bi.leaf.delete(r)
}

// Close releases the open leaf cursor, if any.
func (bi *BTreeIndex) Close() error {
	if bi.leaf != nil {
		bi.leaf.close()
		bi.leaf = nil
	}
	return nil
}

// BTreeSearchCost estimates block accesses for a lookup: 1 + ceil(log_rpb(B))
// (§4.9), rpb = records per block.
func BTreeSearchCost(numBlocks, rpb int) int {
	if rpb <= 1 || numBlocks <= 1 {
		return numBlocks
	}
	cost := 1
	n := numBlocks
	for n > 1 {
		n = (n + rpb - 1) / rpb
		cost++
	}
	return cost
}
