package simpledb

import (
	"fmt"

	"github.com/cutsea110/simplego/parse"
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/tx"
)

// Planner runs SQL text against a transaction, dispatching SELECT to the
// query planner and every other statement to the update planner. It
// mirrors the classic SimpleDB Planner facade, which the original source
// stubs out entirely (left as a TODO) — the dispatch below is the
// implementation the stub's contract calls for.
type Planner struct {
	qplaner plan.QueryPlanner
	uplaner plan.UpdatePlanner
}

// CreateQueryPlan parses sql as a SELECT statement and builds its plan.
func (p *Planner) CreateQueryPlan(sql string, t *tx.Transaction) (plan.Plan, error) {
	data, err := parse.New(sql).Query()
	if err != nil {
		return nil, err
	}
	return p.qplaner.CreatePlan(data, t)
}

// ExecuteUpdate parses sql as an INSERT, DELETE, UPDATE or CREATE
// statement and runs it, returning the number of affected rows (0 for
// DDL statements).
func (p *Planner) ExecuteUpdate(sql string, t *tx.Transaction) (int, error) {
	cmd, err := parse.New(sql).UpdateCmd()
	if err != nil {
		return 0, err
	}
	switch data := cmd.(type) {
	case parse.InsertData:
		return p.uplaner.ExecuteInsert(data, t)
	case parse.DeleteData:
		return p.uplaner.ExecuteDelete(data, t)
	case parse.ModifyData:
		return p.uplaner.ExecuteModify(data, t)
	case parse.CreateTableData:
		return 0, p.uplaner.ExecuteCreateTable(data, t)
	case parse.CreateViewData:
		return 0, p.uplaner.ExecuteCreateView(data, t)
	case parse.CreateIndexData:
		return 0, p.uplaner.ExecuteCreateIndex(data, t)
	default:
		return 0, fmt.Errorf("simpledb: unrecognized update command %T", cmd)
	}
}

// Explain parses sql as a SELECT statement and returns its plan's cost
// tree without executing it.
func (p *Planner) Explain(sql string, t *tx.Transaction) (plan.Repr, error) {
	pl, err := p.CreateQueryPlan(sql, t)
	if err != nil {
		return plan.Repr{}, err
	}
	return pl.Repr(), nil
}
