package tx

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/buffer"
)

// bufferList tracks every buffer a single transaction currently has
// pinned, so it can guarantee everything is unpinned on commit/rollback
// regardless of how many times a block was pinned (§3 Transaction
// invariant P4).
type bufferList struct {
	bm      *buffer.Mgr
	buffers map[block.ID]*buffer.Buffer
	pins    []block.ID
}

func newBufferList(bm *buffer.Mgr) *bufferList {
	return &bufferList{bm: bm, buffers: make(map[block.ID]*buffer.Buffer)}
}

func (bl *bufferList) getBuffer(blk block.ID) *buffer.Buffer {
	return bl.buffers[blk]
}

func (bl *bufferList) pin(blk block.ID) error {
	buff, err := bl.bm.Pin(blk)
	if err != nil {
		return err
	}
	bl.buffers[blk] = buff
	bl.pins = append(bl.pins, blk)
	return nil
}

func (bl *bufferList) unpin(blk block.ID) {
	buff, ok := bl.buffers[blk]
	if !ok {
		return
	}
	bl.bm.Unpin(buff)
	for i, b := range bl.pins {
		if b.Equals(blk) {
			bl.pins = append(bl.pins[:i], bl.pins[i+1:]...)
			break
		}
	}
	stillPinned := false
	for _, b := range bl.pins {
		if b.Equals(blk) {
			stillPinned = true
			break
		}
	}
	if !stillPinned {
		delete(bl.buffers, blk)
	}
}

func (bl *bufferList) unpinAll() {
	for _, blk := range bl.pins {
		buff, ok := bl.buffers[blk]
		if ok {
			bl.bm.Unpin(buff)
		}
	}
	bl.buffers = make(map[block.ID]*buffer.Buffer)
	bl.pins = nil
}
