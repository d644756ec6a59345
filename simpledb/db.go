package simpledb

import (
	"github.com/cutsea110/simplego/buffer"
	"github.com/cutsea110/simplego/file"
	"github.com/cutsea110/simplego/indexplan"
	"github.com/cutsea110/simplego/log"
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/opt"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/tx"
)

const logFileName = "simpledb.log"

// DB represents an open database: the file, log and buffer managers, the
// shared lock table and transaction-number source, the metadata catalog
// and the query/update planners built on top of it.
type DB struct {
	config  Config
	fm      *file.Mgr
	lm      *log.Mgr
	bm      *buffer.Mgr
	locktbl *tx.LockTable
	txnums  *tx.TxNumSource
	mdm     *metadata.Mgr
	qplaner plan.QueryPlanner
	uplaner plan.UpdatePlanner
}

// Open opens (or creates) a database rooted at dir, wiring every storage
// layer in turn and running ARIES-style undo recovery before the catalog
// is loaded. isNew controls whether the metadata catalog's system tables
// are (re)created, mirroring SimpleDB's own "is this a fresh directory"
// bootstrap check.
func Open(dir string, isNew bool, config Config) (*DB, error) {
	config = config.withDefaults()

	fm, err := file.NewMgr(dir, config.BlockSize)
	if err != nil {
		return nil, err
	}
	lm, err := log.NewMgr(fm, logFileName)
	if err != nil {
		return nil, err
	}
	bm := buffer.NewMgr(fm, lm, config.NumBuffs, config.BufferPolicy)
	locktbl := tx.NewLockTable()
	txnums := tx.NewTxNumSource()

	recoveryTx, err := tx.NewTransaction(fm, lm, bm, locktbl, txnums)
	if err != nil {
		return nil, err
	}
	if err := tx.Recover(lm, bm, recoveryTx.Txnum(), recoveryTx); err != nil {
		return nil, err
	}
	if err := recoveryTx.Commit(); err != nil {
		return nil, err
	}

	mdmTx, err := tx.NewTransaction(fm, lm, bm, locktbl, txnums)
	if err != nil {
		return nil, err
	}
	mdm, err := metadata.New(isNew, config.IndexKind, config.HashAlgorithm, mdmTx)
	if err != nil {
		return nil, err
	}
	if err := mdmTx.Commit(); err != nil {
		return nil, err
	}

	var qplaner plan.QueryPlanner
	if config.QueryPlanner == QueryPlannerHeuristic {
		qplaner = opt.NewHeuristicQueryPlanner(mdm)
	} else {
		qplaner = plan.NewBasicQueryPlanner(mdm)
	}
	var uplaner plan.UpdatePlanner
	if config.MaintainIndexes {
		uplaner = indexplan.NewIndexUpdatePlanner(mdm)
	} else {
		uplaner = plan.NewBasicUpdatePlanner(mdm)
	}

	return &DB{
		config:  config,
		fm:      fm,
		lm:      lm,
		bm:      bm,
		locktbl: locktbl,
		txnums:  txnums,
		mdm:     mdm,
		qplaner: qplaner,
		uplaner: uplaner,
	}, nil
}

// NewTx starts a new transaction against this database.
func (db *DB) NewTx() (*tx.Transaction, error) {
	return tx.NewTransaction(db.fm, db.lm, db.bm, db.locktbl, db.txnums)
}

// FileMgr returns the database's file manager.
func (db *DB) FileMgr() *file.Mgr { return db.fm }

// LogMgr returns the database's log manager.
func (db *DB) LogMgr() *log.Mgr { return db.lm }

// BufferMgr returns the database's buffer manager.
func (db *DB) BufferMgr() *buffer.Mgr { return db.bm }

// MetadataMgr returns the database's catalog manager.
func (db *DB) MetadataMgr() *metadata.Mgr { return db.mdm }

// Config returns the (defaulted) configuration this database was opened
// with, so callers building their own plan trees (e.g. a MergeJoinPlan or
// GroupByPlan, neither of which the query planner picks automatically)
// can forward CompressSortRuns instead of hardcoding it.
func (db *DB) Config() Config { return db.config }

// Planner returns a facade over this database's query and update
// planners, suitable for running arbitrary SQL text.
func (db *DB) Planner() *Planner {
	return &Planner{qplaner: db.qplaner, uplaner: db.uplaner}
}
