package indexplan

import (
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/parse"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/tx"
)

// IndexUpdatePlanner mirrors BasicUpdatePlanner's DML execution, additionally
// maintaining every affected index: on insert, `idx.Insert(val, rid)` for
// each indexed field; on delete, `idx.Delete(oldval, rid)` before the row
// disappears; modify is delete-then-reinsert on the single changed field
// (§4.12).
type IndexUpdatePlanner struct {
	mdm *metadata.Mgr
}

var _ plan.UpdatePlanner = (*IndexUpdatePlanner)(nil)

// NewIndexUpdatePlanner returns a planner reading/writing through mdm.
func NewIndexUpdatePlanner(mdm *metadata.Mgr) *IndexUpdatePlanner {
	return &IndexUpdatePlanner{mdm: mdm}
}

func (up *IndexUpdatePlanner) ExecuteInsert(data parse.InsertData, t *tx.Transaction) (int, error) {
	tp, err := plan.NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	s, err := tp.Open()
	if err != nil {
		return 0, err
	}
	us, _ := query.AsUpdateScan(s)
	defer us.Close()
	if err := us.Insert(); err != nil {
		return 0, err
	}
	r := us.GetRID()

	indexes, err := up.mdm.IndexInfo(data.TableName, tp.Schema(), t)
	if err != nil {
		return 0, err
	}
	for i, fld := range data.Fields {
		val := data.Values[i]
		if err := us.SetVal(fld, val); err != nil {
			return 0, err
		}
		if ii, ok := indexes[fld]; ok {
			idx, err := ii.Open()
			if err != nil {
				return 0, err
			}
			if err := idx.Insert(val, r); err != nil {
				idx.Close()
				return 0, err
			}
			idx.Close()
		}
	}
	return 1, nil
}

func (up *IndexUpdatePlanner) ExecuteDelete(data parse.DeleteData, t *tx.Transaction) (int, error) {
	tp, err := plan.NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	indexes, err := up.mdm.IndexInfo(data.TableName, tp.Schema(), t)
	if err != nil {
		return 0, err
	}
	sp := plan.NewSelectPlan(tp, data.Pred)
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
		r := us.GetRID()
		for fld, ii := range indexes {
			val, err := us.GetVal(fld)
			if err != nil {
				return count, err
			}
			idx, err := ii.Open()
			if err != nil {
				return count, err
			}
			if err := idx.Delete(val, r); err != nil {
				idx.Close()
				return count, err
			}
			idx.Close()
		}
		if err := us.Delete(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (up *IndexUpdatePlanner) ExecuteModify(data parse.ModifyData, t *tx.Transaction) (int, error) {
	tp, err := plan.NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	indexes, err := up.mdm.IndexInfo(data.TableName, tp.Schema(), t)
	ii, hasIndex := indexes[data.FieldName]

	sp := plan.NewSelectPlan(tp, data.Pred)
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
		newVal, err := data.NewValue.Evaluate(us)
		if err != nil {
			return count, err
		}
		if hasIndex {
			oldVal, err := us.GetVal(data.FieldName)
			if err != nil {
				return count, err
			}
			r := us.GetRID()
			idx, err := ii.Open()
			if err != nil {
				return count, err
			}
			if err := idx.Delete(oldVal, r); err != nil {
				idx.Close()
				return count, err
			}
			if err := us.SetVal(data.FieldName, newVal); err != nil {
				idx.Close()
				return count, err
			}
			if err := idx.Insert(newVal, r); err != nil {
				idx.Close()
				return count, err
			}
			idx.Close()
		} else {
			if err := us.SetVal(data.FieldName, newVal); err != nil {
				return count, err
			}
		}
		count++
	}
	return count, nil
}

func (up *IndexUpdatePlanner) ExecuteCreateTable(data parse.CreateTableData, t *tx.Transaction) error {
	return up.mdm.CreateTable(data.TableName, data.Schema, t)
}

func (up *IndexUpdatePlanner) ExecuteCreateView(data parse.CreateViewData, t *tx.Transaction) error {
	return up.mdm.CreateView(data.ViewName, data.Definition, t)
}

func (up *IndexUpdatePlanner) ExecuteCreateIndex(data parse.CreateIndexData, t *tx.Transaction) error {
	return up.mdm.CreateIndex(data.IndexName, data.TableName, data.FieldName, t)
}
