// Package index implements the engine's two secondary index kinds — a
// static hash index and a B-tree index (§4.9) — behind a shared contract
// the query and plan layers drive without knowing which kind they hold.
package index

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/rid"
)

// Index is the contract both HashIndex and BTreeIndex implement: position
// on a search key, iterate matching entries, and maintain the index as
// rows change underneath it.
type Index interface {
	BeforeFirst(searchKey query.Constant) error
	Next() (bool, error)
	GetDataRID() (rid.ID, error)
	Insert(val query.Constant, r rid.ID) error
	Delete(val query.Constant, r rid.ID) error
	Close() error
}
