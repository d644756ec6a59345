package log

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/page"
)

// Iterator walks a log file in reverse chronological order: within a
// block, left-to-right from the boundary to the end; then to the
// previous block. This is the order recovery relies on (§4.6).
type Iterator struct {
	fm  *file.Mgr
	blk block.ID
	p   *page.Page

	currentPos int32
	boundary   int32
}

func newIterator(fm *file.Mgr, blk block.ID) (*Iterator, error) {
	p := page.New(fm.BlockSize())
	if err := fm.Read(blk, p); err != nil {
		return nil, err
	}
	boundary, err := p.GetInt32(0)
	if err != nil {
		return nil, err
	}
	return &Iterator{fm: fm, blk: blk, p: p, currentPos: boundary, boundary: boundary}, nil
}

// HasNext reports whether another record remains to be visited.
func (it *Iterator) HasNext() bool {
	return it.currentPos < int32(it.fm.BlockSize()) || it.blk.Number() > 0
}

// Next returns the next record's raw bytes, or nil, false once exhausted.
func (it *Iterator) Next() ([]byte, bool, error) {
	if !it.HasNext() {
		return nil, false, nil
	}

	if it.currentPos == int32(it.fm.BlockSize()) {
		it.blk = block.New(it.blk.Filename(), it.blk.Number()-1)
		if err := it.fm.Read(it.blk, it.p); err != nil {
			return nil, false, err
		}
		n, err := it.p.GetInt32(0)
		if err != nil {
			return nil, false, err
		}
		it.boundary = n
		it.currentPos = it.boundary
	}

	rec, err := it.p.GetBytes(int(it.currentPos))
	if err != nil {
		return nil, false, err
	}
	it.currentPos += page.Int32Size + int32(len(rec))
	return rec, true, nil
}
