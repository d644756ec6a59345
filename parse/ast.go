package parse

import (
	"strings"

	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// QueryData is the parsed form of a SELECT statement.
type QueryData struct {
	Fields []string
	Tables []string
	Pred   query.Predicate
}

// String reconstructs SQL text equivalent to the statement this QueryData
// was parsed from — used to persist a CREATE VIEW's definition (stored
// re-parseable rather than as a raw source-text slice) and to re-derive
// it when the view is expanded (§6, SUPPLEMENTED FEATURES).
func (qd QueryData) String() string {
	var b strings.Builder
	b.WriteString("select ")
	b.WriteString(strings.Join(qd.Fields, ", "))
	b.WriteString(" from ")
	b.WriteString(strings.Join(qd.Tables, ", "))
	if !qd.Pred.IsEmpty() {
		b.WriteString(" where ")
		b.WriteString(qd.Pred.String())
	}
	return b.String()
}

// InsertData is the parsed form of an INSERT statement.
type InsertData struct {
	TableName string
	Fields    []string
	Values    []query.Constant
}

// DeleteData is the parsed form of a DELETE statement.
type DeleteData struct {
	TableName string
	Pred      query.Predicate
}

// ModifyData is the parsed form of an UPDATE statement (single-field SET).
type ModifyData struct {
	TableName string
	FieldName string
	NewValue  query.Expression
	Pred      query.Predicate
}

// CreateTableData is the parsed form of CREATE TABLE.
type CreateTableData struct {
	TableName string
	Schema    *record.Schema
}

// CreateViewData is the parsed form of CREATE VIEW; Definition is the
// SELECT's SQL text as rebuilt by QueryData.String, stored in viewcat and
// re-parsed whenever the view is used.
type CreateViewData struct {
	ViewName   string
	Definition string
}

// CreateIndexData is the parsed form of CREATE INDEX.
type CreateIndexData struct {
	IndexName string
	TableName string
	FieldName string
}
