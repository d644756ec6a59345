// Package opt implements the heuristic query planner: a greedy
// table-ordering algorithm that, at each step, folds in whichever
// remaining table yields the fewest records, preferring an index join
// over a plain product whenever the incoming table's own join field is
// indexed; an index on the already-joined side is not used (§4.12,
// REDESIGN FLAGS).
package opt

import (
	"github.com/cutsea110/simplego/indexplan"
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/multibuffer"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// TablePlanner wraps one FROM-clause table (or expanded view), offering
// the three plan shapes the heuristic planner chooses between: a select
// (index-assisted when possible), an index join against an already-built
// plan, and a plain multibuffer product as the fallback.
type TablePlanner struct {
	myPlan   plan.Plan
	myPred   query.Predicate
	mySchema *record.Schema
	indexes  map[string]*metadata.IndexInfo
	t        *tx.Transaction
}

// NewTablePlanner builds the planner for tblname, reading its indexes
// from the catalog.
func NewTablePlanner(tblname string, pred query.Predicate, t *tx.Transaction, mdm *metadata.Mgr) (*TablePlanner, error) {
	tp, err := plan.NewTablePlan(t, tblname, mdm)
	if err != nil {
		return nil, err
	}
	indexes, err := mdm.IndexInfo(tblname, tp.Schema(), t)
	if err != nil {
		return nil, err
	}
	return &TablePlanner{myPlan: tp, myPred: pred, mySchema: tp.Schema(), indexes: indexes, t: t}, nil
}

// newTablePlannerFromPlan wraps an already-built plan (a view's expansion)
// with no index support — views aren't catalogued with indexes of their
// own.
func newTablePlannerFromPlan(p plan.Plan, pred query.Predicate, t *tx.Transaction) *TablePlanner {
	return &TablePlanner{myPlan: p, myPred: pred, mySchema: p.Schema(), t: t}
}

// MakeSelectPlan returns myPlan filtered by whatever predicate terms
// apply entirely within its schema, using an index lookup if the
// predicate equates an indexed field with a constant.
func (tp *TablePlanner) MakeSelectPlan() (plan.Plan, error) {
	p, err := tp.makeIndexSelect()
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = tp.myPlan
	}
	if sub, ok := tp.myPred.SelectSubPred(tp.mySchema.HasField); ok {
		return plan.NewSelectPlan(p, sub), nil
	}
	return p, nil
}

// MakeJoinPlan returns current joined to this table, or nil if no
// predicate term equates a field of current's schema with one of this
// table's fields (nothing to join on).
func (tp *TablePlanner) MakeJoinPlan(current plan.Plan) (plan.Plan, error) {
	currsch := current.Schema()
	if _, ok := tp.myPred.JoinSubPred(currsch.HasField, tp.mySchema.HasField); !ok {
		return nil, nil
	}
	p, err := tp.makeIndexJoin(current, currsch)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return tp.makeProductJoin(current, currsch)
}

// MakeProductPlan returns current producted with this table (selected
// first), via the multibuffer chunked cross product (§4.11).
func (tp *TablePlanner) MakeProductPlan(current plan.Plan) (plan.Plan, error) {
	sp, err := tp.MakeSelectPlan()
	if err != nil {
		return nil, err
	}
	return multibuffer.NewMultibufferProductPlan(tp.t, current, sp), nil
}

func (tp *TablePlanner) makeIndexSelect() (plan.Plan, error) {
	for fldname, ii := range tp.indexes {
		val, ok := tp.myPred.EquatesWithConstant(fldname)
		if ok {
			return indexplan.NewIndexSelectPlan(tp.myPlan, ii, val), nil
		}
	}
	return nil, nil
}

func (tp *TablePlanner) makeIndexJoin(current plan.Plan, currsch *record.Schema) (plan.Plan, error) {
	for fldname, ii := range tp.indexes {
		outerfield, ok := tp.myPred.EquatesWithField(fldname)
		if !ok || !currsch.HasField(outerfield) {
			continue
		}
		p := indexplan.NewIndexJoinPlan(current, tp.myPlan, ii, outerfield)
		if sub, ok := tp.myPred.SelectSubPred(tp.mySchema.HasField); ok {
			return plan.NewSelectPlan(p, sub), nil
		}
		return p, nil
	}
	return nil, nil
}

func (tp *TablePlanner) makeProductJoin(current plan.Plan, currsch *record.Schema) (plan.Plan, error) {
	p, err := tp.MakeProductPlan(current)
	if err != nil {
		return nil, err
	}
	if join, ok := tp.myPred.JoinSubPred(currsch.HasField, tp.mySchema.HasField); ok {
		return plan.NewSelectPlan(p, join), nil
	}
	return p, nil
}
