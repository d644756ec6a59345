package tx

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/buffer"
	"github.com/cutsea110/simplego/log"
)

// RecoveryMgr implements ARIES-style undo-only recovery for one
// transaction (§4.6): it writes START on construction, SET* records on
// every typed write, and COMMIT/ROLLBACK at the end of the transaction's
// life. recover() is invoked once at startup to undo every SET* belonging
// to a transaction whose terminal record never made it to the log.
type RecoveryMgr struct {
	lm     *log.Mgr
	bm     *buffer.Mgr
	txnum  int32
	append func([]byte) (int32, error)
}

// NewRecoveryMgr creates the recovery manager for txnum and immediately
// logs its START record.
func NewRecoveryMgr(lm *log.Mgr, bm *buffer.Mgr, txnum int32) (*RecoveryMgr, error) {
	rm := &RecoveryMgr{lm: lm, bm: bm, txnum: txnum, append: lm.Append}
	if _, err := writeStart(rm.append, txnum); err != nil {
		return nil, err
	}
	return rm, nil
}

// Commit flushes every buffer this transaction modified, writes and
// flushes COMMIT (durability-on-commit, §5(ii)).
func (rm *RecoveryMgr) Commit() error {
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeCommit(rm.append, rm.txnum)
	if err != nil {
		return err
	}
	return rm.lm.Flush(lsn)
}

// Rollback undoes every change this transaction made (scanning the log
// backward to its START record), flushes, then writes and flushes
// ROLLBACK.
func (rm *RecoveryMgr) Rollback(ctx UndoContext) error {
	if err := rm.doRollback(ctx); err != nil {
		return err
	}
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeRollback(rm.append, rm.txnum)
	if err != nil {
		return err
	}
	return rm.lm.Flush(lsn)
}

func (rm *RecoveryMgr) doRollback(ctx UndoContext) error {
	it, err := rm.lm.Iterator()
	if err != nil {
		return err
	}
	for it.HasNext() {
		raw, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		rec, err := ParseRecord(raw)
		if err != nil {
			return err
		}
		if rec.Txnum != rm.txnum {
			continue
		}
		if rec.Type == Start {
			return nil
		}
		if err := rec.Undo(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Recover walks the whole log backward once at startup, undoing every
// SET* whose transaction never reached COMMIT or ROLLBACK, then writes a
// CHECKPOINT (§4.6 recover()).
func Recover(lm *log.Mgr, bm *buffer.Mgr, recoveryTxnum int32, ctx UndoContext) error {
	it, err := lm.Iterator()
	if err != nil {
		return err
	}
	finished := make(map[int32]bool)
	for it.HasNext() {
		raw, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		rec, err := ParseRecord(raw)
		if err != nil {
			return err
		}
		switch rec.Type {
		case Checkpoint:
			return finishRecovery(lm, bm, recoveryTxnum)
		case Commit, Rollback:
			finished[rec.Txnum] = true
		default:
			if !finished[rec.Txnum] {
				if err := rec.Undo(ctx); err != nil {
					return err
				}
			}
		}
	}
	return finishRecovery(lm, bm, recoveryTxnum)
}

func finishRecovery(lm *log.Mgr, bm *buffer.Mgr, recoveryTxnum int32) error {
	if err := bm.FlushAll(recoveryTxnum); err != nil {
		return err
	}
	lsn, err := writeCheckpoint(lm.Append)
	if err != nil {
		return err
	}
	return lm.Flush(lsn)
}

// logSetI32 writes a SETI32 record capturing buff's current value at
// offset as the undo target, and returns its LSN.
func (rm *RecoveryMgr) logSetI32(buff *buffer.Buffer, blk block.ID, offset int32) (int32, error) {
	old, err := buff.Contents().GetInt32(int(offset))
	if err != nil {
		return 0, err
	}
	return writeSetI32(rm.append, rm.txnum, blk, offset, old)
}

func (rm *RecoveryMgr) logSetString(buff *buffer.Buffer, blk block.ID, offset int32) (int32, error) {
	old, err := buff.Contents().GetString(int(offset))
	if err != nil {
		return 0, err
	}
	return writeSetString(rm.append, rm.txnum, blk, offset, old)
}

func (rm *RecoveryMgr) logSetI8(buff *buffer.Buffer, blk block.ID, offset int32) (int32, error) {
	old, err := buff.Contents().GetInt8(int(offset))
	if err != nil {
		return 0, err
	}
	return writeSetSmall(rm.append, SetI8, rm.txnum, blk, offset, int32(old))
}

func (rm *RecoveryMgr) logSetI16(buff *buffer.Buffer, blk block.ID, offset int32) (int32, error) {
	old, err := buff.Contents().GetInt16(int(offset))
	if err != nil {
		return 0, err
	}
	return writeSetSmall(rm.append, SetI16, rm.txnum, blk, offset, int32(old))
}

func (rm *RecoveryMgr) logSetBool(buff *buffer.Buffer, blk block.ID, offset int32) (int32, error) {
	old, err := buff.Contents().GetBool(int(offset))
	if err != nil {
		return 0, err
	}
	oldv := int32(0)
	if old {
		oldv = 1
	}
	return writeSetSmall(rm.append, SetBool, rm.txnum, blk, offset, oldv)
}
