package metadata

import (
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

const (
	maxViewDef = 100

	viewCatTable = "viewcat"
)

// ViewMgr persists CREATE VIEW definitions as rows of viewcat (§6,
// SUPPLEMENTED FEATURES: "CREATE VIEW expansion").
type ViewMgr struct {
	tblMgr *TableMgr
}

// NewViewMgr creates viewcat on first run.
func NewViewMgr(isNew bool, tblMgr *TableMgr, t *tx.Transaction) (*ViewMgr, error) {
	vm := &ViewMgr{tblMgr: tblMgr}
	if isNew {
		sch := record.NewSchema()
		sch.AddStringField("viewname", maxNameLength)
		sch.AddStringField("viewdef", maxViewDef)
		if err := tblMgr.CreateTable(viewCatTable, sch, t); err != nil {
			return nil, err
		}
	}
	return vm, nil
}

// CreateView stores viewname's SQL definition.
func (vm *ViewMgr) CreateView(viewname, viewdef string, t *tx.Transaction) error {
	layout, err := vm.tblMgr.Layout(viewCatTable, t)
	if err != nil {
		return err
	}
	ts, err := record.NewTableScan(t, viewCatTable, layout)
	if err != nil {
		return err
	}
	defer ts.Close()
	if err := ts.Insert(); err != nil {
		return err
	}
	if err := ts.SetString("viewname", viewname); err != nil {
		return err
	}
	return ts.SetString("viewdef", viewdef)
}

// ViewDef returns viewname's stored SQL definition, or ("", false) if it
// doesn't exist.
func (vm *ViewMgr) ViewDef(viewname string, t *tx.Transaction) (string, bool, error) {
	layout, err := vm.tblMgr.Layout(viewCatTable, t)
	if err != nil {
		return "", false, err
	}
	ts, err := record.NewTableScan(t, viewCatTable, layout)
	if err != nil {
		return "", false, err
	}
	defer ts.Close()
	for {
		ok, err := ts.Next()
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		name, err := ts.GetString("viewname")
		if err != nil {
			return "", false, err
		}
		if name == viewname {
			def, err := ts.GetString("viewdef")
			return def, true, err
		}
	}
}
