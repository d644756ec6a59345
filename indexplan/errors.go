package indexplan

import "errors"

// errNotTableScan is returned when an index plan's child doesn't expose
// the UpdateScan capability IndexSelectScan/IndexJoinScan need to
// reposition by RID — both require rhs to be a TablePlan (§4.10).
var errNotTableScan = errors.New("indexplan: child plan is not a table scan")
