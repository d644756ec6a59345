package metadata

import (
	json "github.com/goccy/go-json"

	"github.com/cutsea110/simplego/index"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// Mgr is the single entry point the plan layer uses to reach the
// catalog: table/view/index definitions and table statistics (§6).
type Mgr struct {
	tblMgr *TableMgr
	viewMgr *ViewMgr
	statMgr *StatMgr
	idxMgr  *IndexMgr
}

// New builds the catalog, creating its system tables on first run.
func New(isNew bool, idxKind IndexKind, hashAlg index.HashAlgorithm, t *tx.Transaction) (*Mgr, error) {
	tblMgr, err := NewTableMgr(isNew, t)
	if err != nil {
		return nil, err
	}
	viewMgr, err := NewViewMgr(isNew, tblMgr, t)
	if err != nil {
		return nil, err
	}
	statMgr, err := NewStatMgr(tblMgr, t)
	if err != nil {
		return nil, err
	}
	idxMgr, err := NewIndexMgr(isNew, idxKind, hashAlg, tblMgr, statMgr, t)
	if err != nil {
		return nil, err
	}
	return &Mgr{tblMgr: tblMgr, viewMgr: viewMgr, statMgr: statMgr, idxMgr: idxMgr}, nil
}

func (m *Mgr) CreateTable(tblname string, sch *record.Schema, t *tx.Transaction) error {
	return m.tblMgr.CreateTable(tblname, sch, t)
}

func (m *Mgr) Layout(tblname string, t *tx.Transaction) (*record.Layout, error) {
	return m.tblMgr.Layout(tblname, t)
}

func (m *Mgr) CreateView(viewname, viewdef string, t *tx.Transaction) error {
	return m.viewMgr.CreateView(viewname, viewdef, t)
}

func (m *Mgr) ViewDef(viewname string, t *tx.Transaction) (string, bool, error) {
	return m.viewMgr.ViewDef(viewname, t)
}

func (m *Mgr) StatInfo(tblname string, layout *record.Layout, t *tx.Transaction) (StatInfo, error) {
	return m.statMgr.StatInfo(tblname, layout, t)
}

func (m *Mgr) CreateIndex(idxname, tblname, fldname string, t *tx.Transaction) error {
	return m.idxMgr.CreateIndex(idxname, tblname, fldname, t)
}

func (m *Mgr) IndexInfo(tblname string, tblSch *record.Schema, t *tx.Transaction) (map[string]*IndexInfo, error) {
	return m.idxMgr.IndexInfo(tblname, tblSch, t)
}

// CatalogDump is a JSON-serializable snapshot of the requested tables'
// schemas and statistics, marshaled through goccy/go-json (§ DOMAIN STACK) exactly as
// the teacher's header.go marshals its document header.
type CatalogDump struct {
	Tables []TableDump `json:"tables"`
}

// TableDump is one table's fields and cached statistics.
type TableDump struct {
	Name      string      `json:"name"`
	Fields    []FieldDump `json:"fields"`
	NumBlocks int         `json:"numBlocks"`
	NumRecs   int         `json:"numRecs"`
}

// FieldDump is one field's type and byte offset within a slot.
type FieldDump struct {
	Name   string `json:"name"`
	Type   int    `json:"type"`
	Length int    `json:"length"`
	Offset int    `json:"offset"`
}

// Dump builds a CatalogDump for each table named in tblnames (in that
// order) and marshals it to JSON via goccy/go-json.
func (m *Mgr) Dump(tblnames []string, t *tx.Transaction) ([]byte, error) {
	dump := CatalogDump{}
	for _, name := range tblnames {
		layout, err := m.tblMgr.Layout(name, t)
		if err != nil {
			return nil, err
		}
		si, err := m.statMgr.StatInfo(name, layout, t)
		if err != nil {
			return nil, err
		}
		td := TableDump{Name: name, NumBlocks: si.NumBlocks, NumRecs: si.NumRecs}
		for _, f := range layout.Schema().Fields() {
			td.Fields = append(td.Fields, FieldDump{
				Name:   f,
				Type:   int(layout.Schema().FieldType(f)),
				Length: layout.Schema().Length(f),
				Offset: layout.Offset(f),
			})
		}
		dump.Tables = append(dump.Tables, td)
	}
	return json.Marshal(dump)
}
