package tx

import (
	"sync/atomic"

	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/buffer"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/log"
)

// endOfFile is the sentinel block number used to take a lock on "the end
// of a file" so that size() and append() serialize against each other
// (§4.7).
const endOfFile = -1

// TxNumSource is the process-wide, monotonically increasing transaction
// number source (§3 Transaction: "monotone ascending txnum across process
// lifetime"). It is owned by the DB root and shared by every Transaction
// constructed from it, never a package-level global (§9 design note).
type TxNumSource struct {
	next atomic.Int32
}

// NewTxNumSource returns a fresh counter starting at 0.
func NewTxNumSource() *TxNumSource { return &TxNumSource{} }

func (s *TxNumSource) next_() int32 { return s.next.Add(1) }

// Transaction binds the recovery manager, concurrency manager, and a
// private buffer list into the block-level typed API the rest of the
// engine uses (§4.7).
type Transaction struct {
	fm  *file.Mgr
	bm  *buffer.Mgr
	rm  *RecoveryMgr
	cm  *ConcurrencyMgr
	buf *bufferList

	txnum int32
}

// NewTransaction begins a new transaction: assigns it the next txnum,
// writes its START log record, and readies its buffer list.
func NewTransaction(fm *file.Mgr, lm *log.Mgr, bm *buffer.Mgr, locktbl *LockTable, txnums *TxNumSource) (*Transaction, error) {
	txnum := txnums.next_()
	rm, err := NewRecoveryMgr(lm, bm, txnum)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		fm:    fm,
		bm:    bm,
		rm:    rm,
		cm:    NewConcurrencyMgr(locktbl),
		buf:   newBufferList(bm),
		txnum: txnum,
	}, nil
}

// Txnum returns this transaction's number.
func (tx *Transaction) Txnum() int32 { return tx.txnum }

// Commit flushes and logs COMMIT, releases every lock, and unpins every
// buffer this transaction held.
func (tx *Transaction) Commit() error {
	if err := tx.rm.Commit(); err != nil {
		return err
	}
	tx.cm.Release()
	tx.buf.unpinAll()
	return nil
}

// Rollback undoes every change this transaction made, logs ROLLBACK,
// releases every lock, and unpins every buffer.
func (tx *Transaction) Rollback() error {
	if err := tx.rm.Rollback(tx); err != nil {
		return err
	}
	tx.cm.Release()
	tx.buf.unpinAll()
	return nil
}

// Pin acquires a buffer for blk on this transaction's behalf.
func (tx *Transaction) Pin(blk block.ID) error {
	return tx.buf.pin(blk)
}

// Unpin releases this transaction's claim on blk's buffer.
func (tx *Transaction) Unpin(blk block.ID) {
	tx.buf.unpin(blk)
}

// GetInt32 takes an S lock on blk and reads the i32 at offset.
func (tx *Transaction) GetInt32(blk block.ID, offset int32) (int32, error) {
	if err := tx.cm.SLock(blk); err != nil {
		return 0, err
	}
	return tx.buf.getBuffer(blk).Contents().GetInt32(int(offset))
}

// GetString takes an S lock on blk and reads the string at offset.
func (tx *Transaction) GetString(blk block.ID, offset int32) (string, error) {
	if err := tx.cm.SLock(blk); err != nil {
		return "", err
	}
	return tx.buf.getBuffer(blk).Contents().GetString(int(offset))
}

// GetInt8 takes an S lock on blk and reads the i8 at offset.
func (tx *Transaction) GetInt8(blk block.ID, offset int32) (int8, error) {
	if err := tx.cm.SLock(blk); err != nil {
		return 0, err
	}
	return tx.buf.getBuffer(blk).Contents().GetInt8(int(offset))
}

// GetInt16 takes an S lock on blk and reads the i16 at offset.
func (tx *Transaction) GetInt16(blk block.ID, offset int32) (int16, error) {
	if err := tx.cm.SLock(blk); err != nil {
		return 0, err
	}
	return tx.buf.getBuffer(blk).Contents().GetInt16(int(offset))
}

// GetBool takes an S lock on blk and reads the bool at offset.
func (tx *Transaction) GetBool(blk block.ID, offset int32) (bool, error) {
	if err := tx.cm.SLock(blk); err != nil {
		return false, err
	}
	return tx.buf.getBuffer(blk).Contents().GetBool(int(offset))
}

// SetInt32 takes an X lock on blk, optionally logs the old value, writes
// val, and marks the buffer modified by this transaction.
func (tx *Transaction) SetInt32(blk block.ID, offset, val int32, okToLog bool) error {
	if err := tx.cm.XLock(blk); err != nil {
		return err
	}
	buff := tx.buf.getBuffer(blk)
	lsn := int32(-1)
	if okToLog {
		l, err := tx.rm.logSetI32(buff, blk, offset)
		if err != nil {
			return err
		}
		lsn = l
	}
	if err := buff.Contents().SetInt32(int(offset), val); err != nil {
		return err
	}
	buff.SetModified(tx.txnum, lsn)
	return nil
}

// SetString takes an X lock on blk, optionally logs the old value, writes
// val, and marks the buffer modified.
func (tx *Transaction) SetString(blk block.ID, offset int32, val string, okToLog bool) error {
	if err := tx.cm.XLock(blk); err != nil {
		return err
	}
	buff := tx.buf.getBuffer(blk)
	lsn := int32(-1)
	if okToLog {
		l, err := tx.rm.logSetString(buff, blk, offset)
		if err != nil {
			return err
		}
		lsn = l
	}
	if err := buff.Contents().SetString(int(offset), val); err != nil {
		return err
	}
	buff.SetModified(tx.txnum, lsn)
	return nil
}

// SetInt8 takes an X lock on blk, optionally logs the old value, writes
// val, and marks the buffer modified.
func (tx *Transaction) SetInt8(blk block.ID, offset int32, val int8, okToLog bool) error {
	if err := tx.cm.XLock(blk); err != nil {
		return err
	}
	buff := tx.buf.getBuffer(blk)
	lsn := int32(-1)
	if okToLog {
		l, err := tx.rm.logSetI8(buff, blk, offset)
		if err != nil {
			return err
		}
		lsn = l
	}
	if err := buff.Contents().SetInt8(int(offset), val); err != nil {
		return err
	}
	buff.SetModified(tx.txnum, lsn)
	return nil
}

// SetInt16 takes an X lock on blk, optionally logs the old value, writes
// val, and marks the buffer modified.
func (tx *Transaction) SetInt16(blk block.ID, offset int32, val int16, okToLog bool) error {
	if err := tx.cm.XLock(blk); err != nil {
		return err
	}
	buff := tx.buf.getBuffer(blk)
	lsn := int32(-1)
	if okToLog {
		l, err := tx.rm.logSetI16(buff, blk, offset)
		if err != nil {
			return err
		}
		lsn = l
	}
	if err := buff.Contents().SetInt16(int(offset), val); err != nil {
		return err
	}
	buff.SetModified(tx.txnum, lsn)
	return nil
}

// SetBool takes an X lock on blk, optionally logs the old value, writes
// val, and marks the buffer modified.
func (tx *Transaction) SetBool(blk block.ID, offset int32, val bool, okToLog bool) error {
	if err := tx.cm.XLock(blk); err != nil {
		return err
	}
	buff := tx.buf.getBuffer(blk)
	lsn := int32(-1)
	if okToLog {
		l, err := tx.rm.logSetBool(buff, blk, offset)
		if err != nil {
			return err
		}
		lsn = l
	}
	if err := buff.Contents().SetBool(int(offset), val); err != nil {
		return err
	}
	buff.SetModified(tx.txnum, lsn)
	return nil
}

// Size takes an S lock on filename's EOF sentinel and returns its block
// count.
func (tx *Transaction) Size(filename string) (int, error) {
	dummy := block.New(filename, endOfFile)
	if err := tx.cm.SLock(dummy); err != nil {
		return 0, err
	}
	return tx.fm.Length(filename)
}

// Append takes an X lock on filename's EOF sentinel and extends the file
// by one block.
func (tx *Transaction) Append(filename string) (block.ID, error) {
	dummy := block.New(filename, endOfFile)
	if err := tx.cm.XLock(dummy); err != nil {
		return block.ID{}, err
	}
	return tx.fm.Append(filename)
}

// BlockSize returns the database's fixed block size.
func (tx *Transaction) BlockSize() int { return tx.fm.BlockSize() }

// AvailableBuffs returns the buffer manager's current unpinned count, used
// by multi-buffer scans to size chunks.
func (tx *Transaction) AvailableBuffs() int { return tx.bm.Available() }
