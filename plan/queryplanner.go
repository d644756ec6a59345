package plan

import (
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/parse"
	"github.com/cutsea110/simplego/tx"
)

// QueryPlanner turns a parsed SELECT into a Plan tree (§4.12).
type QueryPlanner interface {
	CreatePlan(data parse.QueryData, t *tx.Transaction) (Plan, error)
}

// BasicQueryPlanner builds, in FROM order, a TablePlan per table (view
// definitions are expanded by re-parsing their stored SQL), product-joins
// them, applies the full predicate, and projects the select list (§4.12).
type BasicQueryPlanner struct {
	mdm *metadata.Mgr
}

var _ QueryPlanner = (*BasicQueryPlanner)(nil)

// NewBasicQueryPlanner returns a planner reading the catalog through mdm.
func NewBasicQueryPlanner(mdm *metadata.Mgr) *BasicQueryPlanner {
	return &BasicQueryPlanner{mdm: mdm}
}

func (qp *BasicQueryPlanner) CreatePlan(data parse.QueryData, t *tx.Transaction) (Plan, error) {
	var plans []Plan
	for _, tblname := range data.Tables {
		if viewdef, ok, err := qp.mdm.ViewDef(tblname, t); err != nil {
			return nil, err
		} else if ok {
			viewData, err := parse.New(viewdef).Query()
			if err != nil {
				return nil, err
			}
			viewPlan, err := qp.CreatePlan(viewData, t)
			if err != nil {
				return nil, err
			}
			plans = append(plans, viewPlan)
		} else {
			tp, err := NewTablePlan(t, tblname, qp.mdm)
			if err != nil {
				return nil, err
			}
			plans = append(plans, tp)
		}
	}

	result := plans[0]
	for _, next := range plans[1:] {
		result = NewProductPlan(result, next)
	}

	result = NewSelectPlan(result, data.Pred)
	return NewProjectPlan(result, data.Fields), nil
}
