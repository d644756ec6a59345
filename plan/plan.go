// Package plan implements the cost-annotated plan nodes the query and
// update planners build: each mirrors a query.Scan while additionally
// exposing the statistics the heuristic planner and Planner.Explain need
// (§4.11).
package plan

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// Plan is the contract every plan node implements, and — because its
// DistinctValues method matches query.DistinctValuesSource — every Plan
// also doubles as the cost-model input a Term.ReductionFactor needs.
type Plan interface {
	Open() (query.Scan, error)
	BlocksAccessed() int
	RecordsOutput() int
	DistinctValues(fldname string) int
	Schema() *record.Schema
	Repr() Repr
}

var _ query.DistinctValuesSource = Plan(nil)

// Repr is the JSON-serializable explain-tree shape Planner.Explain returns
// (§6, § DOMAIN STACK): operation name, estimated block reads and writes,
// and child plans.
type Repr struct {
	Operation string `json:"operation"`
	Reads     int    `json:"reads"`
	Writes    int    `json:"writes"`
	Children  []Repr `json:"children,omitempty"`
}
