// Package log implements the write-ahead log: a single file written
// backwards within each block, with reverse-chronological iteration.
package log

import (
	"sync"

	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/page"
)

// Mgr appends log records to a single log file and flushes them to disk
// on demand. It is the only component that assigns LSNs.
type Mgr struct {
	mu sync.Mutex

	fm      *file.Mgr
	logfile string
	logpage *page.Page

	currentBlk block.ID
	latestLSN  int32
	lastSaved  int32
}

// NewMgr opens (or creates) logfile, positioning the log page at its last
// block so that appends continue from where a previous run left off.
func NewMgr(fm *file.Mgr, logfile string) (*Mgr, error) {
	lp := page.New(fm.BlockSize())

	n, err := fm.Length(logfile)
	if err != nil {
		return nil, err
	}

	var blk block.ID
	if n == 0 {
		blk, err = fm.Append(logfile)
		if err != nil {
			return nil, err
		}
		if err := lp.SetInt32(0, int32(fm.BlockSize())); err != nil {
			return nil, err
		}
		if err := fm.Write(blk, lp); err != nil {
			return nil, err
		}
	} else {
		blk = block.New(logfile, n-1)
		if err := fm.Read(blk, lp); err != nil {
			return nil, err
		}
	}

	return &Mgr{fm: fm, logfile: logfile, logpage: lp, currentBlk: blk}, nil
}

// Flush forces the current log page to disk if it might hold a record
// with LSN <= lsn that has not yet been saved.
func (lm *Mgr) Flush(lsn int32) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.flushLocked(lsn)
}

func (lm *Mgr) flushLocked(lsn int32) error {
	if lsn >= lm.lastSaved {
		return lm.flushToDisk()
	}
	return nil
}

func (lm *Mgr) flushToDisk() error {
	if err := lm.fm.Write(lm.currentBlk, lm.logpage); err != nil {
		return err
	}
	lm.lastSaved = lm.latestLSN
	return nil
}

// Append writes logrec into the current log block (allocating a new block
// first if it does not fit) and returns the LSN assigned to it.
func (lm *Mgr) Append(logrec []byte) (int32, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	boundary, err := lm.logpage.GetInt32(0)
	if err != nil {
		return 0, err
	}
	recsize := int32(len(logrec))
	needed := recsize + page.Int32Size

	if boundary-needed < page.Int32Size {
		if err := lm.flushToDisk(); err != nil {
			return 0, err
		}
		blk, err := lm.appendNewBlock()
		if err != nil {
			return 0, err
		}
		lm.currentBlk = blk
		boundary, err = lm.logpage.GetInt32(0)
		if err != nil {
			return 0, err
		}
	}

	recpos := boundary - needed
	if err := lm.logpage.SetBytes(int(recpos), logrec); err != nil {
		return 0, err
	}
	if err := lm.logpage.SetInt32(0, recpos); err != nil {
		return 0, err
	}
	lm.latestLSN++
	return lm.latestLSN, nil
}

func (lm *Mgr) appendNewBlock() (block.ID, error) {
	blk, err := lm.fm.Append(lm.logfile)
	if err != nil {
		return block.ID{}, err
	}
	if err := lm.logpage.SetInt32(0, int32(lm.fm.BlockSize())); err != nil {
		return block.ID{}, err
	}
	if err := lm.fm.Write(blk, lm.logpage); err != nil {
		return block.ID{}, err
	}
	return blk, nil
}

// Iterator flushes the current page and returns an iterator over every
// record in the log, newest first.
func (lm *Mgr) Iterator() (*Iterator, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if err := lm.flushToDisk(); err != nil {
		return nil, err
	}
	return newIterator(lm.fm, lm.currentBlk)
}
