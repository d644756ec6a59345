package opt

import (
	"github.com/cutsea110/simplego/metadata"
	"github.com/cutsea110/simplego/parse"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/tx"
)

// HeuristicQueryPlanner greedily orders FROM-clause tables: pick the
// single-table select with fewest output records first, then repeatedly
// fold in whichever remaining table yields the fewest records when
// joined (preferring an index join), falling back to the remaining
// table with fewest records when producted directly (§4.12).
type HeuristicQueryPlanner struct {
	mdm *metadata.Mgr
}

var _ plan.QueryPlanner = (*HeuristicQueryPlanner)(nil)

// NewHeuristicQueryPlanner returns a planner reading the catalog through mdm.
func NewHeuristicQueryPlanner(mdm *metadata.Mgr) *HeuristicQueryPlanner {
	return &HeuristicQueryPlanner{mdm: mdm}
}

func (hp *HeuristicQueryPlanner) CreatePlan(data parse.QueryData, t *tx.Transaction) (plan.Plan, error) {
	var planners []*TablePlanner
	for _, tblname := range data.Tables {
		if viewdef, ok, err := hp.mdm.ViewDef(tblname, t); err != nil {
			return nil, err
		} else if ok {
			viewData, err := parse.New(viewdef).Query()
			if err != nil {
				return nil, err
			}
			viewPlan, err := hp.CreatePlan(viewData, t)
			if err != nil {
				return nil, err
			}
			planners = append(planners, newTablePlannerFromPlan(viewPlan, data.Pred, t))
		} else {
			tp, err := NewTablePlanner(tblname, data.Pred, t, hp.mdm)
			if err != nil {
				return nil, err
			}
			planners = append(planners, tp)
		}
	}

	current, planners, err := lowestSelectPlan(planners)
	if err != nil {
		return nil, err
	}
	for len(planners) > 0 {
		next, idx, err := lowestJoinPlan(planners, current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next, idx, err = lowestProductPlan(planners, current)
			if err != nil {
				return nil, err
			}
		}
		current = next
		planners = append(planners[:idx], planners[idx+1:]...)
	}

	return plan.NewProjectPlan(current, data.Fields), nil
}

// lowestSelectPlan picks the table whose own select plan (predicate terms
// confined to it, index-assisted where possible) has the fewest output
// records, and removes it from the candidate list.
func lowestSelectPlan(planners []*TablePlanner) (plan.Plan, []*TablePlanner, error) {
	bestIdx := -1
	var best plan.Plan
	for i, tp := range planners {
		p, err := tp.MakeSelectPlan()
		if err != nil {
			return nil, nil, err
		}
		if best == nil || p.RecordsOutput() < best.RecordsOutput() {
			best = p
			bestIdx = i
		}
	}
	return best, append(planners[:bestIdx:bestIdx], planners[bestIdx+1:]...), nil
}

// lowestJoinPlan returns the cheapest join of current with one of
// planners, or (nil, -1, nil) if none of them share a join predicate
// with current.
func lowestJoinPlan(planners []*TablePlanner, current plan.Plan) (plan.Plan, int, error) {
	bestIdx := -1
	var best plan.Plan
	for i, tp := range planners {
		p, err := tp.MakeJoinPlan(current)
		if err != nil {
			return nil, -1, err
		}
		if p == nil {
			continue
		}
		if best == nil || p.RecordsOutput() < best.RecordsOutput() {
			best = p
			bestIdx = i
		}
	}
	return best, bestIdx, nil
}

// lowestProductPlan is the fallback when nothing joins on a predicate:
// cross current with whichever remaining table yields the fewest rows.
func lowestProductPlan(planners []*TablePlanner, current plan.Plan) (plan.Plan, int, error) {
	bestIdx := 0
	var best plan.Plan
	for i, tp := range planners {
		p, err := tp.MakeProductPlan(current)
		if err != nil {
			return nil, -1, err
		}
		if best == nil || p.RecordsOutput() < best.RecordsOutput() {
			best = p
			bestIdx = i
		}
	}
	return best, bestIdx, nil
}
