// Package simpledb wires the file, log, buffer, transaction, metadata and
// planner layers into a single embeddable database, the way the teacher's
// folio.Open/DB pair wires handles, locks and a cached header into one
// struct (§ AMBIENT STACK).
package simpledb

import (
	"github.com/cutsea110/simplego/buffer"
	"github.com/cutsea110/simplego/index"
	"github.com/cutsea110/simplego/metadata"
)

// Default configuration constants, mirroring the classic SimpleDB
// defaults (400-byte blocks, 8 buffers).
const (
	DefaultBlockSize = 400
	DefaultNumBuffs  = 8
)

// QueryPlannerKind selects between the naive and heuristic query
// planners.
type QueryPlannerKind int

const (
	QueryPlannerBasic QueryPlannerKind = iota
	QueryPlannerHeuristic
)

// Config holds database configuration options. Zero-value fields are
// replaced with their defaults by Open, the way folio.Config's
// zero-valued HashAlgorithm/ReadBuffer/MaxRecordSize are defaulted.
type Config struct {
	BlockSize     int
	NumBuffs      int
	BufferPolicy  buffer.Kind
	QueryPlanner  QueryPlannerKind
	IndexKind     metadata.IndexKind
	HashAlgorithm index.HashAlgorithm

	// MaintainIndexes selects indexplan.IndexUpdatePlanner over
	// plan.BasicUpdatePlanner, so CREATE INDEX'd fields actually get
	// populated/updated as rows are inserted, deleted and modified.
	// Off by default to match BasicUpdatePlanner's historical behavior.
	MaintainIndexes bool

	// CompressSortRuns has SortPlan spill runs past spillThreshold rows
	// to a compressed on-disk blob instead of a plain TempTable,
	// decompressing them back on read during the merge phase.
	CompressSortRuns bool
}

func (c Config) withDefaults() Config {
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.NumBuffs == 0 {
		c.NumBuffs = DefaultNumBuffs
	}
	if c.HashAlgorithm == 0 {
		c.HashAlgorithm = index.AlgXXHash3
	}
	// BufferPolicy, QueryPlanner and IndexKind all default to their
	// zero value (Naive, Basic, Hash), which are valid selections.
	return c
}
