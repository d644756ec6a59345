package tx

import (
	"github.com/cutsea110/simplego/block"
)

type lockMode int

const (
	noLock lockMode = iota
	sLock
	xLock
)

// ConcurrencyMgr is the per-transaction view of the single process-wide
// LockTable (§4.5): it tracks which mode this transaction already holds
// per block so it never re-requests a lock it has, and releases every
// held lock at commit/rollback (two-phase locking).
type ConcurrencyMgr struct {
	locktbl *LockTable
	locks   map[block.ID]lockMode
}

// NewConcurrencyMgr builds a concurrency manager bound to the shared
// lock table.
func NewConcurrencyMgr(locktbl *LockTable) *ConcurrencyMgr {
	return &ConcurrencyMgr{locktbl: locktbl, locks: make(map[block.ID]lockMode)}
}

// SLock acquires a shared lock on blk, a no-op if this transaction already
// holds S or X on it.
func (cm *ConcurrencyMgr) SLock(blk block.ID) error {
	if _, ok := cm.locks[blk]; ok {
		return nil
	}
	if err := cm.locktbl.SLock(blk); err != nil {
		return err
	}
	cm.locks[blk] = sLock
	return nil
}

// XLock acquires an exclusive lock on blk, upgrading through S first (the
// lock table's XLock precondition) if this transaction does not already
// hold X.
func (cm *ConcurrencyMgr) XLock(blk block.ID) error {
	if cm.hasXLock(blk) {
		return nil
	}
	if err := cm.SLock(blk); err != nil {
		return err
	}
	if err := cm.locktbl.XLock(blk); err != nil {
		return err
	}
	cm.locks[blk] = xLock
	return nil
}

func (cm *ConcurrencyMgr) hasXLock(blk block.ID) bool {
	return cm.locks[blk] == xLock
}

// Release unlocks every block this transaction holds a lock on. Called
// exactly once, from commit or rollback.
func (cm *ConcurrencyMgr) Release() {
	for blk := range cm.locks {
		cm.locktbl.Unlock(blk)
	}
	cm.locks = make(map[block.ID]lockMode)
}
