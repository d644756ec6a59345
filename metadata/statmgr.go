package metadata

import (
	"sync"

	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// StatInfo is the cost-model input a TablePlan reads (§4.11): estimated
// block and record counts for one table.
type StatInfo struct {
	NumBlocks int
	NumRecs   int
}

// BlocksAccessed is the stat's contribution to a plan's blocks_accessed.
func (si StatInfo) BlocksAccessed() int { return si.NumBlocks }

// RecordsOutput is the stat's contribution to a plan's records_output.
func (si StatInfo) RecordsOutput() int { return si.NumRecs }

// DistinctValues is a crude heuristic (1 + numRecs/3) used when no better
// statistic is available, matching the classic textbook estimate this
// engine's cost model is built on (§4.11).
func (si StatInfo) DistinctValues(string) int {
	return 1 + si.NumRecs/3
}

// statRefreshInterval bounds how many StatInfo calls StatMgr
// tolerates before it recomputes every table's statistics from scratch.
const statRefreshInterval = 100

// StatMgr caches per-table StatInfo, recomputed by a full table scan
// every statRefreshInterval calls (§4.11).
type StatMgr struct {
	mu        sync.Mutex
	tblMgr    *TableMgr
	tablestats map[string]StatInfo
	numCalls  int
}

// NewStatMgr builds the initial statistics by scanning every table named
// in tblcat.
func NewStatMgr(tblMgr *TableMgr, t *tx.Transaction) (*StatMgr, error) {
	sm := &StatMgr{tblMgr: tblMgr}
	if err := sm.refreshStatistics(t); err != nil {
		return nil, err
	}
	return sm, nil
}

// StatInfo returns tblname's cached statistics, recomputing all tables'
// statistics first if the refresh interval has elapsed.
func (sm *StatMgr) StatInfo(tblname string, layout *record.Layout, t *tx.Transaction) (StatInfo, error) {
	sm.mu.Lock()
	sm.numCalls++
	needsRefresh := sm.numCalls > statRefreshInterval
	sm.mu.Unlock()

	if needsRefresh {
		if err := sm.refreshStatistics(t); err != nil {
			return StatInfo{}, err
		}
	}

	sm.mu.Lock()
	si, ok := sm.tablestats[tblname]
	sm.mu.Unlock()
	if ok {
		return si, nil
	}
	si, err := sm.calcTableStats(tblname, layout, t)
	if err != nil {
		return StatInfo{}, err
	}
	sm.mu.Lock()
	sm.tablestats[tblname] = si
	sm.mu.Unlock()
	return si, nil
}

func (sm *StatMgr) refreshStatistics(t *tx.Transaction) error {
	stats := make(map[string]StatInfo)

	tcLayout, err := sm.tblMgr.Layout(tblCatTable, t)
	if err != nil {
		return err
	}
	tcat, err := record.NewTableScan(t, tblCatTable, tcLayout)
	if err != nil {
		return err
	}
	defer tcat.Close()
	for {
		ok, err := tcat.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		tblname, err := tcat.GetString("tblname")
		if err != nil {
			return err
		}
		layout, err := sm.tblMgr.Layout(tblname, t)
		if err != nil {
			return err
		}
		si, err := sm.calcTableStats(tblname, layout, t)
		if err != nil {
			return err
		}
		stats[tblname] = si
	}

	sm.mu.Lock()
	sm.tablestats = stats
	sm.numCalls = 0
	sm.mu.Unlock()
	return nil
}

func (sm *StatMgr) calcTableStats(tblname string, layout *record.Layout, t *tx.Transaction) (StatInfo, error) {
	ts, err := record.NewTableScan(t, tblname, layout)
	if err != nil {
		return StatInfo{}, err
	}
	defer ts.Close()

	numRecs := 0
	numBlocks := 0
	for {
		ok, err := ts.Next()
		if err != nil {
			return StatInfo{}, err
		}
		if !ok {
			break
		}
		numRecs++
		numBlocks = ts.GetRID().Blknum + 1
	}
	return StatInfo{NumBlocks: numBlocks, NumRecs: numRecs}, nil
}
