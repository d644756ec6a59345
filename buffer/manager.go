package buffer

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/log"
)

// ErrBufferAbort is returned when pin() could not find or assign a buffer
// within MaxWait — the engine's coarse, timeout-based deadlock avoidance
// in lieu of a real detector.
var ErrBufferAbort = errors.New("buffer abort: could not pin block")

// DefaultMaxWait is the default timeout a caller will block in Pin before
// giving up (§4.4).
const DefaultMaxWait = 10 * time.Second

// Mgr is a fixed-size pool of buffers shared by every transaction. All
// bookkeeping is guarded by a single mutex; a sync.Cond lets waiters block
// on pin/unpin activity instead of busy-polling.
type Mgr struct {
	mu     sync.Mutex
	cond   *sync.Cond
	pool   []*Buffer
	policy Policy

	available int
	maxWait   time.Duration

	pinCount      atomic.Int64
	unpinCount    atomic.Int64
	cacheHits     atomic.Int64
	bufferAssigns atomic.Int64
}

// NewMgr allocates numbuffs buffers over fm/lm and selects kind as the
// eviction policy.
func NewMgr(fm *file.Mgr, lm *log.Mgr, numbuffs int, kind Kind) *Mgr {
	pool := make([]*Buffer, numbuffs)
	for i := range pool {
		pool[i] = newBuffer(fm, lm)
	}
	m := &Mgr{
		pool:      pool,
		policy:    NewPolicy(kind, numbuffs),
		available: numbuffs,
		maxWait:   DefaultMaxWait,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Available returns the current count of unpinned buffers.
func (m *Mgr) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// Stats reports cumulative pin/unpin/hit/assign counters for observability.
type Stats struct {
	Pins, Unpins, CacheHits, BufferAssigns int64
}

// Stats returns a snapshot of the manager's cumulative counters.
func (m *Mgr) Stats() Stats {
	return Stats{
		Pins:          m.pinCount.Load(),
		Unpins:        m.unpinCount.Load(),
		CacheHits:     m.cacheHits.Load(),
		BufferAssigns: m.bufferAssigns.Load(),
	}
}

// FlushAll flushes every buffer currently modified by txnum.
func (m *Mgr) FlushAll(txnum int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.pool {
		if b.ModifyingTx() == txnum {
			if err := b.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Unpin decrements buff's pin count; once it reaches zero the buffer
// becomes eligible for replacement and waiters are woken.
func (m *Mgr) Unpin(buff *Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buff.unpin()
	m.unpinCount.Add(1)
	if !buff.IsPinned() {
		m.available++
		for i, b := range m.pool {
			if b == buff {
				m.policy.onUnpin(i)
				break
			}
		}
		m.cond.Broadcast()
	}
}

// Pin locates or assigns a buffer for blk, pinning it before returning.
// It blocks (releasing the pool lock) until a buffer becomes pinnable or
// MaxWait elapses, at which point it returns ErrBufferAbort.
func (m *Mgr) Pin(blk block.ID) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline := time.Now().Add(m.maxWait)
	for {
		buff, err := m.tryToPin(blk)
		if err == nil {
			return buff, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrBufferAbort
		}
		m.waitWithTimeout(remaining)
	}
}

// waitWithTimeout blocks on the condition variable for at most d, using a
// timer goroutine to force a spurious wakeup if nothing signals sooner.
func (m *Mgr) waitWithTimeout(d time.Duration) {
	timer := time.AfterFunc(d, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer timer.Stop()
	m.cond.Wait()
}

func (m *Mgr) tryToPin(blk block.ID) (*Buffer, error) {
	i := m.findExistingBuffer(blk)
	if i >= 0 {
		m.cacheHits.Add(1)
	} else {
		i = m.policy.choose(m.pool)
		if i < 0 {
			return nil, ErrBufferAbort
		}
		if err := m.pool[i].assignToBlock(blk); err != nil {
			return nil, err
		}
		m.bufferAssigns.Add(1)
	}

	b := m.pool[i]
	if !b.IsPinned() {
		m.available--
		m.policy.onPin(i)
	}
	b.pin()
	m.pinCount.Add(1)
	return b, nil
}

func (m *Mgr) findExistingBuffer(blk block.ID) int {
	for i, b := range m.pool {
		if cur, ok := b.Block(); ok && cur.Equals(blk) {
			return i
		}
	}
	return -1
}
