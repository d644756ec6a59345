// Package tx binds the buffer, log, and concurrency layers behind a
// block-level transactional API: typed get/set with two-phase locking and
// undo-only write-ahead logging (§4.6, §4.7).
package tx

import (
	"fmt"

	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/page"
)

// RecType tags the kind of a log record on disk.
type RecType int32

const (
	Checkpoint RecType = 0
	Start      RecType = 1
	Commit     RecType = 2
	Rollback   RecType = 3
	SetI32     RecType = 4
	SetString  RecType = 5
	SetI8      RecType = 6
	SetI16     RecType = 7
	SetBool    RecType = 8
)

// Record is a parsed, typed log record. Only SET* records carry an Undo:
// the engine logs old values only (physiological UNDO, no redo).
type Record struct {
	Type   RecType
	Txnum  int32
	Blk    block.ID
	Offset int32

	OldI32    int32
	OldString string
	OldI8     int8
	OldI16    int16
	OldBool   bool
}

// Undo replays the inverse of a SET* record against ctx without generating
// a further log record. No-op for CHECKPOINT/START/COMMIT/ROLLBACK.
func (r Record) Undo(ctx UndoContext) error {
	switch r.Type {
	case SetI32:
		if err := ctx.Pin(r.Blk); err != nil {
			return err
		}
		defer ctx.Unpin(r.Blk)
		return ctx.SetInt32(r.Blk, r.Offset, r.OldI32, false)
	case SetString:
		if err := ctx.Pin(r.Blk); err != nil {
			return err
		}
		defer ctx.Unpin(r.Blk)
		return ctx.SetString(r.Blk, r.Offset, r.OldString, false)
	case SetI8:
		if err := ctx.Pin(r.Blk); err != nil {
			return err
		}
		defer ctx.Unpin(r.Blk)
		return ctx.SetInt8(r.Blk, r.Offset, r.OldI8, false)
	case SetI16:
		if err := ctx.Pin(r.Blk); err != nil {
			return err
		}
		defer ctx.Unpin(r.Blk)
		return ctx.SetInt16(r.Blk, r.Offset, r.OldI16, false)
	case SetBool:
		if err := ctx.Pin(r.Blk); err != nil {
			return err
		}
		defer ctx.Unpin(r.Blk)
		return ctx.SetBool(r.Blk, r.Offset, r.OldBool, false)
	default:
		return nil
	}
}

// UndoContext is the capability a RecoveryMgr needs to replay an undo: pin
// a block, write a raw value without further logging, unpin. It exists to
// break the RecoveryMgr <-> Transaction reference cycle the original
// source resolves with interior mutability: the Transaction hands the
// RecoveryMgr a thin view of itself instead of a back-reference.
type UndoContext interface {
	Pin(blk block.ID) error
	Unpin(blk block.ID)
	SetInt32(blk block.ID, offset, val int32, okToLog bool) error
	SetString(blk block.ID, offset int32, val string, okToLog bool) error
	SetInt8(blk block.ID, offset int32, val int8, okToLog bool) error
	SetInt16(blk block.ID, offset int32, val int16, okToLog bool) error
	SetBool(blk block.ID, offset int32, val bool, okToLog bool) error
}

// ParseRecord decodes a raw log record read off disk.
func ParseRecord(raw []byte) (Record, error) {
	p := page.NewFromBytes(raw)
	tagv, err := p.GetInt32(0)
	if err != nil {
		return Record{}, err
	}
	tag := RecType(tagv)

	switch tag {
	case Checkpoint:
		return Record{Type: Checkpoint, Txnum: -1}, nil
	case Start, Commit, Rollback:
		txnum, err := p.GetInt32(page.Int32Size)
		if err != nil {
			return Record{}, err
		}
		return Record{Type: tag, Txnum: txnum}, nil
	case SetI32, SetString, SetI8, SetI16, SetBool:
		return parseSetRecord(tag, p)
	default:
		return Record{}, fmt.Errorf("unknown log record tag %d", tagv)
	}
}

func parseSetRecord(tag RecType, p *page.Page) (Record, error) {
	tpos := page.Int32Size
	txnum, err := p.GetInt32(tpos)
	if err != nil {
		return Record{}, err
	}
	fpos := tpos + page.Int32Size
	filename, err := p.GetString(fpos)
	if err != nil {
		return Record{}, err
	}
	bpos := fpos + page.MaxLength(len(filename))
	blknum, err := p.GetInt32(bpos)
	if err != nil {
		return Record{}, err
	}
	opos := bpos + page.Int32Size
	offset, err := p.GetInt32(opos)
	if err != nil {
		return Record{}, err
	}
	vpos := opos + page.Int32Size
	blk := block.New(filename, int(blknum))

	rec := Record{Type: tag, Txnum: txnum, Blk: blk, Offset: offset}
	switch tag {
	case SetI32:
		v, err := p.GetInt32(vpos)
		if err != nil {
			return Record{}, err
		}
		rec.OldI32 = v
	case SetString:
		v, err := p.GetString(vpos)
		if err != nil {
			return Record{}, err
		}
		rec.OldString = v
	case SetI8:
		v, err := p.GetInt32(vpos)
		if err != nil {
			return Record{}, err
		}
		rec.OldI8 = int8(v)
	case SetI16:
		v, err := p.GetInt32(vpos)
		if err != nil {
			return Record{}, err
		}
		rec.OldI16 = int16(v)
	case SetBool:
		v, err := p.GetInt32(vpos)
		if err != nil {
			return Record{}, err
		}
		rec.OldBool = v != 0
	}
	return rec, nil
}

func writeStart(append func([]byte) (int32, error), txnum int32) (int32, error) {
	return writeTxOnly(append, Start, txnum)
}

func writeCommit(append func([]byte) (int32, error), txnum int32) (int32, error) {
	return writeTxOnly(append, Commit, txnum)
}

func writeRollback(append func([]byte) (int32, error), txnum int32) (int32, error) {
	return writeTxOnly(append, Rollback, txnum)
}

func writeTxOnly(appendFn func([]byte) (int32, error), tag RecType, txnum int32) (int32, error) {
	tpos := page.Int32Size
	reclen := tpos + page.Int32Size
	p := page.New(reclen)
	if err := p.SetInt32(0, int32(tag)); err != nil {
		return 0, err
	}
	if err := p.SetInt32(tpos, txnum); err != nil {
		return 0, err
	}
	return appendFn(p.Bytes())
}

func writeCheckpoint(appendFn func([]byte) (int32, error)) (int32, error) {
	p := page.New(page.Int32Size)
	if err := p.SetInt32(0, int32(Checkpoint)); err != nil {
		return 0, err
	}
	return appendFn(p.Bytes())
}

func writeSetI32(appendFn func([]byte) (int32, error), txnum int32, blk block.ID, offset, oldval int32) (int32, error) {
	tpos := page.Int32Size
	fpos := tpos + page.Int32Size
	bpos := fpos + page.MaxLength(len(blk.Filename()))
	opos := bpos + page.Int32Size
	vpos := opos + page.Int32Size
	reclen := vpos + page.Int32Size

	p := page.New(reclen)
	if err := p.SetInt32(0, int32(SetI32)); err != nil {
		return 0, err
	}
	if err := p.SetInt32(tpos, txnum); err != nil {
		return 0, err
	}
	if err := p.SetString(fpos, blk.Filename()); err != nil {
		return 0, err
	}
	if err := p.SetInt32(bpos, int32(blk.Number())); err != nil {
		return 0, err
	}
	if err := p.SetInt32(opos, offset); err != nil {
		return 0, err
	}
	if err := p.SetInt32(vpos, oldval); err != nil {
		return 0, err
	}
	return appendFn(p.Bytes())
}

func writeSetString(appendFn func([]byte) (int32, error), txnum int32, blk block.ID, offset int32, oldval string) (int32, error) {
	tpos := page.Int32Size
	fpos := tpos + page.Int32Size
	bpos := fpos + page.MaxLength(len(blk.Filename()))
	opos := bpos + page.Int32Size
	vpos := opos + page.Int32Size
	reclen := vpos + page.MaxLength(len(oldval))

	p := page.New(reclen)
	if err := p.SetInt32(0, int32(SetString)); err != nil {
		return 0, err
	}
	if err := p.SetInt32(tpos, txnum); err != nil {
		return 0, err
	}
	if err := p.SetString(fpos, blk.Filename()); err != nil {
		return 0, err
	}
	if err := p.SetInt32(bpos, int32(blk.Number())); err != nil {
		return 0, err
	}
	if err := p.SetInt32(opos, offset); err != nil {
		return 0, err
	}
	if err := p.SetString(vpos, oldval); err != nil {
		return 0, err
	}
	return appendFn(p.Bytes())
}

// writeSetSmall handles SETI8/SETI16/SETBOOL, which all store their old
// value as a plain i32 slot on disk (the narrow types never need more than
// 4 bytes, and reusing SetInt32 keeps the record layout uniform).
func writeSetSmall(appendFn func([]byte) (int32, error), tag RecType, txnum int32, blk block.ID, offset, oldval int32) (int32, error) {
	tpos := page.Int32Size
	fpos := tpos + page.Int32Size
	bpos := fpos + page.MaxLength(len(blk.Filename()))
	opos := bpos + page.Int32Size
	vpos := opos + page.Int32Size
	reclen := vpos + page.Int32Size

	p := page.New(reclen)
	if err := p.SetInt32(0, int32(tag)); err != nil {
		return 0, err
	}
	if err := p.SetInt32(tpos, txnum); err != nil {
		return 0, err
	}
	if err := p.SetString(fpos, blk.Filename()); err != nil {
		return 0, err
	}
	if err := p.SetInt32(bpos, int32(blk.Number())); err != nil {
		return 0, err
	}
	if err := p.SetInt32(opos, offset); err != nil {
		return 0, err
	}
	if err := p.SetInt32(vpos, oldval); err != nil {
		return 0, err
	}
	return appendFn(p.Bytes())
}
