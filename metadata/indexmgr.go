package metadata

import (
	"github.com/cutsea110/simplego/index"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

const idxCatTable = "idxcat"

// IndexKind selects which concrete Index a field's index is backed by.
type IndexKind int

const (
	IndexKindHash IndexKind = iota
	IndexKindBTree
)

// IndexMgr persists CREATE INDEX definitions as rows of idxcat and builds
// the IndexInfo the query planner needs to cost and open them (§4.9).
type IndexMgr struct {
	kind    IndexKind
	alg     index.HashAlgorithm
	layout  *record.Layout
	tblMgr  *TableMgr
	statMgr *StatMgr
}

// NewIndexMgr creates idxcat on first run.
func NewIndexMgr(isNew bool, kind IndexKind, alg index.HashAlgorithm, tblMgr *TableMgr, statMgr *StatMgr, t *tx.Transaction) (*IndexMgr, error) {
	if isNew {
		sch := record.NewSchema()
		sch.AddStringField("indexname", maxNameLength)
		sch.AddStringField("tablename", maxNameLength)
		sch.AddStringField("fieldname", maxNameLength)
		if err := tblMgr.CreateTable(idxCatTable, sch, t); err != nil {
			return nil, err
		}
	}
	layout, err := tblMgr.Layout(idxCatTable, t)
	if err != nil {
		return nil, err
	}
	return &IndexMgr{kind: kind, alg: alg, layout: layout, tblMgr: tblMgr, statMgr: statMgr}, nil
}

// CreateIndex records a new index on tblname.fldname.
func (im *IndexMgr) CreateIndex(idxname, tblname, fldname string, t *tx.Transaction) error {
	ts, err := record.NewTableScan(t, idxCatTable, im.layout)
	if err != nil {
		return err
	}
	defer ts.Close()
	if err := ts.Insert(); err != nil {
		return err
	}
	if err := ts.SetString("indexname", idxname); err != nil {
		return err
	}
	if err := ts.SetString("tablename", tblname); err != nil {
		return err
	}
	return ts.SetString("fieldname", fldname)
}

// IndexInfo describes one index: enough to cost it and to open it.
type IndexInfo struct {
	idxname  string
	fldname  string
	tx       *tx.Transaction
	tblSch   *record.Schema
	idxLayout *record.Layout
	statInfo StatInfo
	kind     IndexKind
	alg      index.HashAlgorithm
}

// Open returns a live handle on the index.
func (ii *IndexInfo) Open() (index.Index, error) {
	if ii.kind == IndexKindBTree {
		ksch := record.NewSchema()
		ksch.AddField("dataval", ii.tblSch.FieldType(ii.fldname), ii.tblSch.Length(ii.fldname))
		return index.NewBTreeIndex(ii.tx, ii.idxname, ksch)
	}
	return index.NewHashIndex(ii.tx, ii.idxname, ii.idxLayout, ii.alg), nil
}

// BlocksAccessed estimates the index's own block-access cost for a single
// lookup (§4.11).
func (ii *IndexInfo) BlocksAccessed() int {
	rpb := ii.tx.BlockSize() / ii.idxLayout.SlotSize()
	if rpb == 0 {
		rpb = 1
	}
	numBlocks := ii.statInfo.NumRecs / rpb
	if ii.kind == IndexKindBTree {
		return index.BTreeSearchCost(numBlocks, rpb)
	}
	return index.SearchCost(numBlocks, rpb)
}

// RecordsOutput estimates how many index entries match one search key.
func (ii *IndexInfo) RecordsOutput() int {
	return ii.statInfo.NumRecs / ii.statInfo.DistinctValues(ii.fldname)
}

// DistinctValues defers to the indexed field's table-level statistic.
func (ii *IndexInfo) DistinctValues(fldname string) int {
	return ii.statInfo.DistinctValues(fldname)
}

// IndexInfo maps every indexed field of tblname to its IndexInfo.
func (im *IndexMgr) IndexInfo(tblname string, tblSch *record.Schema, t *tx.Transaction) (map[string]*IndexInfo, error) {
	result := make(map[string]*IndexInfo)
	tblLayout, err := im.tblMgr.Layout(tblname, t)
	if err != nil {
		return nil, err
	}
	si, err := im.statMgr.StatInfo(tblname, tblLayout, t)
	if err != nil {
		return nil, err
	}

	ts, err := record.NewTableScan(t, idxCatTable, im.layout)
	if err != nil {
		return nil, err
	}
	defer ts.Close()
	for {
		ok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tn, err := ts.GetString("tablename")
		if err != nil {
			return nil, err
		}
		if tn != tblname {
			continue
		}
		idxname, err := ts.GetString("indexname")
		if err != nil {
			return nil, err
		}
		fldname, err := ts.GetString("fieldname")
		if err != nil {
			return nil, err
		}

		idxSch := index.BucketSchema(tblSch.FieldType(fldname), tblSch.Length(fldname))
		idxLayout := record.NewLayout(idxSch)
		result[fldname] = &IndexInfo{
			idxname: idxname, fldname: fldname, tx: t,
			tblSch: tblSch, idxLayout: idxLayout, statInfo: si,
			kind: im.kind, alg: im.alg,
		}
	}
	return result, nil
}
