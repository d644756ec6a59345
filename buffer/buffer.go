// Package buffer implements the pinned-page cache between the heap/log
// layers and the file manager, with a pluggable eviction policy.
package buffer

import (
	"errors"
	"fmt"

	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/log"
	"github.com/cutsea110/simplego/page"
)

// ErrBlockNotFound is returned by Buffer.Flush when called on a dirty
// buffer that has no assigned block — a buffer-manager bug, never a user
// error.
var ErrBlockNotFound = errors.New("block not found")

// Buffer pairs a page with the metadata needed to know when it must be
// flushed before reassignment: its current block (if any), pin count,
// modifying transaction, and the LSN of the last change made to it.
type Buffer struct {
	fm *file.Mgr
	lm *log.Mgr

	contents *page.Page
	blk      block.ID
	assigned bool

	pins  int
	txnum int32
	lsn   int32
}

func newBuffer(fm *file.Mgr, lm *log.Mgr) *Buffer {
	return &Buffer{
		fm:       fm,
		lm:       lm,
		contents: page.New(fm.BlockSize()),
		txnum:    -1,
		lsn:      -1,
	}
}

// Contents returns the buffer's page for typed reads/writes.
func (b *Buffer) Contents() *page.Page { return b.contents }

// Block returns the block currently assigned to this buffer, if any.
func (b *Buffer) Block() (block.ID, bool) { return b.blk, b.assigned }

// IsPinned reports whether any caller currently holds a pin.
func (b *Buffer) IsPinned() bool { return b.pins > 0 }

// ModifyingTx returns the txnum that last modified this buffer, or -1.
func (b *Buffer) ModifyingTx() int32 { return b.txnum }

// SetModified records that txnum changed this buffer's page, with lsn the
// log record covering the change (lsn < 0 means "no new log record").
func (b *Buffer) SetModified(txnum, lsn int32) {
	b.txnum = txnum
	if lsn >= 0 {
		b.lsn = lsn
	}
}

func (b *Buffer) pin()   { b.pins++ }
func (b *Buffer) unpin() { b.pins-- }

// assignToBlock flushes any prior dirty contents, then reads blk into the
// buffer's page. Pin count resets to zero: the caller re-pins immediately.
func (b *Buffer) assignToBlock(blk block.ID) error {
	if err := b.Flush(); err != nil {
		return err
	}
	if err := b.fm.Read(blk, b.contents); err != nil {
		return err
	}
	b.blk = blk
	b.assigned = true
	b.pins = 0
	return nil
}

// Flush is the WAL gate: if this buffer is dirty, it forces the log up to
// this buffer's LSN durable *before* writing the page, then clears dirty
// state. Invariant (ii) of §4.4 depends on this ordering.
func (b *Buffer) Flush() error {
	if b.txnum < 0 {
		return nil
	}
	if err := b.lm.Flush(b.lsn); err != nil {
		return err
	}
	if !b.assigned {
		return fmt.Errorf("%w: buffer has no assigned block", ErrBlockNotFound)
	}
	if err := b.fm.Write(b.blk, b.contents); err != nil {
		return err
	}
	b.txnum = -1
	return nil
}
