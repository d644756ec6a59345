package index

import (
	"fmt"

	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/rid"
	"github.com/cutsea110/simplego/tx"
)

// NumBuckets is the fixed bucket count of every static hash index (§4.9).
const NumBuckets = 100

// HashIndex is a static hash index: each bucket is its own table file
// `idx<bucket>` with schema {block:i32, id:i32, dataval:<key-type>}, where
// (block, id) together encode the indexed record's RID.
type HashIndex struct {
	tx        *tx.Transaction
	idxname   string
	layout    *record.Layout
	alg       HashAlgorithm
	searchKey query.Constant
	ts        *record.TableScan
}

var _ Index = (*HashIndex)(nil)

// NewHashIndex opens idxname with layout (the bucket-file schema) using
// alg to select the bucket per key.
func NewHashIndex(t *tx.Transaction, idxname string, layout *record.Layout, alg HashAlgorithm) *HashIndex {
	return &HashIndex{tx: t, idxname: idxname, layout: layout, alg: alg}
}

// BucketSchema returns the schema every hash-index bucket file shares for
// an indexed field of type keyType/keyLen (keyLen only matters for
// Varchar).
func BucketSchema(keyType record.Type, keyLen int) *record.Schema {
	sch := record.NewSchema()
	sch.AddInt32Field("block")
	sch.AddInt32Field("id")
	switch keyType {
	case record.Varchar:
		sch.AddStringField("dataval", keyLen)
	default:
		sch.Add("dataval", singleFieldSchema(keyType, keyLen))
	}
	return sch
}

func singleFieldSchema(typ record.Type, length int) *record.Schema {
	s := record.NewSchema()
	s.AddField("dataval", typ, length)
	return s
}

func (hi *HashIndex) bucketTable() string {
	bucket := hashBucket(hi.searchKey.HashKey(), hi.alg, NumBuckets)
	return fmt.Sprintf("%s%d", hi.idxname, bucket)
}

// BeforeFirst opens the bucket table scan for searchKey's bucket and
// rewinds it.
func (hi *HashIndex) BeforeFirst(searchKey query.Constant) error {
	if err := hi.Close(); err != nil {
		return err
	}
	hi.searchKey = searchKey
	ts, err := record.NewTableScan(hi.tx, hi.bucketTable(), hi.layout)
	if err != nil {
		return err
	}
	hi.ts = ts
	return nil
}

// Next advances until dataval equals the search key.
func (hi *HashIndex) Next() (bool, error) {
	for {
		ok, err := hi.ts.Next()
		if err != nil || !ok {
			return false, err
		}
		v, err := hi.ts.GetVal("dataval")
		if err != nil {
			return false, err
		}
		if v.Equals(hi.searchKey) {
			return true, nil
		}
	}
}

// GetDataRID reconstructs the indexed record's RID from the current
// bucket entry.
func (hi *HashIndex) GetDataRID() (rid.ID, error) {
	blk, err := hi.ts.GetInt32("block")
	if err != nil {
		return rid.ID{}, err
	}
	id, err := hi.ts.GetInt32("id")
	if err != nil {
		return rid.ID{}, err
	}
	return rid.New(int(blk), int(id)), nil
}

// Insert appends a bucket entry for (val, r).
func (hi *HashIndex) Insert(val query.Constant, r rid.ID) error {
	if err := hi.BeforeFirst(val); err != nil {
		return err
	}
	if err := hi.ts.Insert(); err != nil {
		return err
	}
	if err := hi.ts.SetInt32("block", int32(r.Blknum)); err != nil {
		return err
	}
	if err := hi.ts.SetInt32("id", int32(r.Slot)); err != nil {
		return err
	}
	return hi.ts.SetVal("dataval", val)
}

// Delete removes the bucket entry for (val, r), if present.
func (hi *HashIndex) Delete(val query.Constant, r rid.ID) error {
	if err := hi.BeforeFirst(val); err != nil {
		return err
	}
	for {
		ok, err := hi.Next()
		if err != nil || !ok {
			return err
		}
		got, err := hi.GetDataRID()
		if err != nil {
			return err
		}
		if got.Equals(r) {
			return hi.ts.Delete()
		}
	}
}

// Close releases the bucket table scan, if one is open.
func (hi *HashIndex) Close() error {
	if hi.ts != nil {
		err := hi.ts.Close()
		hi.ts = nil
		return err
	}
	return nil
}

// SearchCost estimates block accesses for a lookup: B / NUM_BUCKETS
// (§4.9).
func SearchCost(numBlocks, rpb int) int {
	return numBlocks / NumBuckets
}
