package plan

import (
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/parse"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/tx"
)

// UpdatePlanner executes the DML statements the parser produces,
// returning the number of affected rows (§4.12).
type UpdatePlanner interface {
	ExecuteInsert(data parse.InsertData, t *tx.Transaction) (int, error)
	ExecuteDelete(data parse.DeleteData, t *tx.Transaction) (int, error)
	ExecuteModify(data parse.ModifyData, t *tx.Transaction) (int, error)
	ExecuteCreateTable(data parse.CreateTableData, t *tx.Transaction) error
	ExecuteCreateView(data parse.CreateViewData, t *tx.Transaction) error
	ExecuteCreateIndex(data parse.CreateIndexData, t *tx.Transaction) error
}

// BasicUpdatePlanner executes DML directly against table scans, without
// maintaining any index (§4.12).
type BasicUpdatePlanner struct {
	mdm *metadata.Mgr
}

var _ UpdatePlanner = (*BasicUpdatePlanner)(nil)

// NewBasicUpdatePlanner returns a planner reading/writing through mdm.
func NewBasicUpdatePlanner(mdm *metadata.Mgr) *BasicUpdatePlanner {
	return &BasicUpdatePlanner{mdm: mdm}
}

func (up *BasicUpdatePlanner) ExecuteInsert(data parse.InsertData, t *tx.Transaction) (int, error) {
	p, err := NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	s, err := p.Open()
	if err != nil {
		return 0, err
	}
	us, _ := query.AsUpdateScan(s)
	defer us.Close()
	if err := us.Insert(); err != nil {
		return 0, err
	}
	for i, fld := range data.Fields {
		if err := us.SetVal(fld, data.Values[i]); err != nil {
			return 0, err
		}
	}
	return 1, nil
}

func (up *BasicUpdatePlanner) ExecuteDelete(data parse.DeleteData, t *tx.Transaction) (int, error) {
	tp, err := NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	sp := NewSelectPlan(tp, data.Pred)
	s, err := sp.Open()
	if err != nil {
		return 0, err
	}
	us, _ := query.AsUpdateScan(s)
	defer us.Close()
	count := 0
	for {
		ok, err := us.Next()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		if err := us.Delete(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (up *BasicUpdatePlanner) ExecuteModify(data parse.ModifyData, t *tx.Transaction) (int, error) {
	tp, err := NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	sp := NewSelectPlan(tp, data.Pred)
	s, err := sp.Open()
	if err != nil {
		return 0, err
	}
	us, _ := query.AsUpdateScan(s)
	defer us.Close()
	count := 0
	for {
		ok, err := us.Next()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		val, err := data.NewValue.Evaluate(us)
		if err != nil {
			return count, err
		}
		if err := us.SetVal(data.FieldName, val); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (up *BasicUpdatePlanner) ExecuteCreateTable(data parse.CreateTableData, t *tx.Transaction) error {
	return up.mdm.CreateTable(data.TableName, data.Schema, t)
}

func (up *BasicUpdatePlanner) ExecuteCreateView(data parse.CreateViewData, t *tx.Transaction) error {
	return up.mdm.CreateView(data.ViewName, data.Definition, t)
}

func (up *BasicUpdatePlanner) ExecuteCreateIndex(data parse.CreateIndexData, t *tx.Transaction) error {
	return up.mdm.CreateIndex(data.IndexName, data.TableName, data.FieldName, t)
}
