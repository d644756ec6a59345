package multibuffer

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// ChunkScan iterates the fixed block range [startBlk, endBlk] of a file,
// keeping every block's record.Page pinned for the chunk's lifetime so
// repeated passes (one per left row) don't re-fault them from disk
// (§4.10).
type ChunkScan struct {
	t                   *tx.Transaction
	filename            string
	layout              *record.Layout
	startBlk, endBlk     int
	pages               []*record.Page
	currentBlk, currentSlot int
}

var _ query.Scan = (*ChunkScan)(nil)

// NewChunkScan pins every block in [startBlk, endBlk] of filename.
func NewChunkScan(t *tx.Transaction, filename string, layout *record.Layout, startBlk, endBlk int) (*ChunkScan, error) {
	cs := &ChunkScan{t: t, filename: filename, layout: layout, startBlk: startBlk, endBlk: endBlk}
	for b := startBlk; b <= endBlk; b++ {
		p, err := record.NewPage(t, block.New(filename, b), layout)
		if err != nil {
			cs.Close()
			return nil, err
		}
		cs.pages = append(cs.pages, p)
	}
	if err := cs.BeforeFirst(); err != nil {
		cs.Close()
		return nil, err
	}
	return cs, nil
}

func (cs *ChunkScan) page() *record.Page { return cs.pages[cs.currentBlk-cs.startBlk] }

func (cs *ChunkScan) BeforeFirst() error {
	cs.moveToBlock(cs.startBlk)
	return nil
}

func (cs *ChunkScan) moveToBlock(blknum int) {
	cs.currentBlk = blknum
	cs.currentSlot = -1
}

func (cs *ChunkScan) Next() (bool, error) {
	slot, ok, err := cs.page().NextAfter(cs.currentSlot)
	if err != nil {
		return false, err
	}
	for !ok {
		if cs.currentBlk >= cs.endBlk {
			return false, nil
		}
		cs.moveToBlock(cs.currentBlk + 1)
		slot, ok, err = cs.page().NextAfter(cs.currentSlot)
		if err != nil {
			return false, err
		}
	}
	cs.currentSlot = slot
	return true, nil
}

func (cs *ChunkScan) GetInt32(fldname string) (int32, error) {
	return cs.page().GetInt32(cs.currentSlot, fldname)
}

func (cs *ChunkScan) GetString(fldname string) (string, error) {
	return cs.page().GetString(cs.currentSlot, fldname)
}

func (cs *ChunkScan) GetVal(fldname string) (query.Constant, error) {
	switch cs.layout.Schema().FieldType(fldname) {
	case record.Integer, record.Date:
		v, err := cs.GetInt32(fldname)
		return query.NewInt32(v), err
	case record.Int8:
		v, err := cs.page().GetInt8(cs.currentSlot, fldname)
		return query.NewInt8(v), err
	case record.Int16:
		v, err := cs.page().GetInt16(cs.currentSlot, fldname)
		return query.NewInt16(v), err
	case record.Bool:
		v, err := cs.page().GetBool(cs.currentSlot, fldname)
		return query.NewBool(v), err
	default:
		v, err := cs.GetString(fldname)
		return query.NewString(v), err
	}
}

func (cs *ChunkScan) HasField(fldname string) bool { return cs.layout.Schema().HasField(fldname) }

func (cs *ChunkScan) Close() error {
	for _, p := range cs.pages {
		cs.t.Unpin(p.Block())
	}
	cs.pages = nil
	return nil
}
