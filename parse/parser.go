package parse

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
)

// Parser is a recursive-descent parser over the SQL subset (§4.12).
type Parser struct {
	lex *lexer
}

// New returns a parser positioned at the start of sql.
func New(sql string) *Parser {
	return &Parser{lex: newLexer(sql)}
}

func (p *Parser) field() (string, error) {
	return p.lex.eatIdentifier()
}

func (p *Parser) constant() (query.Constant, error) {
	if p.lex.matchStringConst() {
		s, err := p.lex.eatStringConst()
		return query.NewString(s), err
	}
	if p.lex.matchKeyword("true") {
		p.lex.advance()
		return query.NewBool(true), nil
	}
	if p.lex.matchKeyword("false") {
		p.lex.advance()
		return query.NewBool(false), nil
	}
	n, err := p.lex.eatIntConst()
	return query.NewInt32(n), err
}

func (p *Parser) expression() (query.Expression, error) {
	if p.lex.matchIdentifier() {
		f, err := p.field()
		return query.NewFieldExpression(f), err
	}
	c, err := p.constant()
	return query.NewConstExpression(c), err
}

func (p *Parser) term() (query.Term, error) {
	lhs, err := p.expression()
	if err != nil {
		return query.Term{}, err
	}
	if err := p.lex.eatDelim("="); err != nil {
		return query.Term{}, err
	}
	rhs, err := p.expression()
	if err != nil {
		return query.Term{}, err
	}
	return query.NewTerm(lhs, rhs), nil
}

func (p *Parser) predicate() (query.Predicate, error) {
	t, err := p.term()
	if err != nil {
		return query.Predicate{}, err
	}
	pred := query.NewPredicateFromTerm(t)
	if p.lex.matchKeyword("and") {
		p.lex.advance()
		rest, err := p.predicate()
		if err != nil {
			return query.Predicate{}, err
		}
		pred = pred.ConjoinWith(rest)
	}
	return pred, nil
}

func (p *Parser) selectList() ([]string, error) {
	var fields []string
	for {
		f, err := p.field()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if !p.lex.matchDelim(",") {
			return fields, nil
		}
		p.lex.advance()
	}
}

func (p *Parser) tableList() ([]string, error) {
	var tables []string
	for {
		t, err := p.lex.eatIdentifier()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		if !p.lex.matchDelim(",") {
			return tables, nil
		}
		p.lex.advance()
	}
}

// Query parses a SELECT statement.
func (p *Parser) Query() (QueryData, error) {
	if err := p.lex.eatKeyword("select"); err != nil {
		return QueryData{}, err
	}
	fields, err := p.selectList()
	if err != nil {
		return QueryData{}, err
	}
	if err := p.lex.eatKeyword("from"); err != nil {
		return QueryData{}, err
	}
	tables, err := p.tableList()
	if err != nil {
		return QueryData{}, err
	}
	pred := query.NewPredicate()
	if p.lex.matchKeyword("where") {
		p.lex.advance()
		pred, err = p.predicate()
		if err != nil {
			return QueryData{}, err
		}
	}
	return QueryData{Fields: fields, Tables: tables, Pred: pred}, nil
}

// UpdateCmd parses any non-SELECT statement, dispatching on its leading
// keyword.
func (p *Parser) UpdateCmd() (any, error) {
	switch {
	case p.lex.matchKeyword("insert"):
		return p.insert()
	case p.lex.matchKeyword("delete"):
		return p.delete()
	case p.lex.matchKeyword("update"):
		return p.modify()
	default:
		return p.create()
	}
}

func (p *Parser) delete() (DeleteData, error) {
	if err := p.lex.eatKeyword("delete"); err != nil {
		return DeleteData{}, err
	}
	if err := p.lex.eatKeyword("from"); err != nil {
		return DeleteData{}, err
	}
	tbl, err := p.lex.eatIdentifier()
	if err != nil {
		return DeleteData{}, err
	}
	pred := query.NewPredicate()
	if p.lex.matchKeyword("where") {
		p.lex.advance()
		pred, err = p.predicate()
		if err != nil {
			return DeleteData{}, err
		}
	}
	return DeleteData{TableName: tbl, Pred: pred}, nil
}

func (p *Parser) modify() (ModifyData, error) {
	if err := p.lex.eatKeyword("update"); err != nil {
		return ModifyData{}, err
	}
	tbl, err := p.lex.eatIdentifier()
	if err != nil {
		return ModifyData{}, err
	}
	if err := p.lex.eatKeyword("set"); err != nil {
		return ModifyData{}, err
	}
	fld, err := p.field()
	if err != nil {
		return ModifyData{}, err
	}
	if err := p.lex.eatDelim("="); err != nil {
		return ModifyData{}, err
	}
	newval, err := p.expression()
	if err != nil {
		return ModifyData{}, err
	}
	pred := query.NewPredicate()
	if p.lex.matchKeyword("where") {
		p.lex.advance()
		pred, err = p.predicate()
		if err != nil {
			return ModifyData{}, err
		}
	}
	return ModifyData{TableName: tbl, FieldName: fld, NewValue: newval, Pred: pred}, nil
}

func (p *Parser) insert() (InsertData, error) {
	if err := p.lex.eatKeyword("insert"); err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatKeyword("into"); err != nil {
		return InsertData{}, err
	}
	tbl, err := p.lex.eatIdentifier()
	if err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return InsertData{}, err
	}
	fields, err := p.selectList()
	if err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatKeyword("values"); err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return InsertData{}, err
	}
	var values []query.Constant
	for {
		c, err := p.constant()
		if err != nil {
			return InsertData{}, err
		}
		values = append(values, c)
		if !p.lex.matchDelim(",") {
			break
		}
		p.lex.advance()
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return InsertData{}, err
	}
	return InsertData{TableName: tbl, Fields: fields, Values: values}, nil
}

func (p *Parser) create() (any, error) {
	if err := p.lex.eatKeyword("create"); err != nil {
		return nil, err
	}
	switch {
	case p.lex.matchKeyword("table"):
		return p.createTable()
	case p.lex.matchKeyword("view"):
		return p.createView()
	case p.lex.matchKeyword("index"):
		return p.createIndex()
	default:
		return nil, errAt(p.lex, "expected table, view, or index")
	}
}

func (p *Parser) fieldType() (record.Type, int, error) {
	switch {
	case p.lex.matchKeyword("int"):
		p.lex.advance()
		return record.Integer, 0, nil
	case p.lex.matchKeyword("int8"):
		p.lex.advance()
		return record.Int8, 0, nil
	case p.lex.matchKeyword("int16"):
		p.lex.advance()
		return record.Int16, 0, nil
	case p.lex.matchKeyword("bool"):
		p.lex.advance()
		return record.Bool, 0, nil
	case p.lex.matchKeyword("date"):
		p.lex.advance()
		return record.Date, 0, nil
	case p.lex.matchKeyword("varchar"):
		p.lex.advance()
		if err := p.lex.eatDelim("("); err != nil {
			return 0, 0, err
		}
		n, err := p.lex.eatIntConst()
		if err != nil {
			return 0, 0, err
		}
		if err := p.lex.eatDelim(")"); err != nil {
			return 0, 0, err
		}
		return record.Varchar, int(n), nil
	default:
		return 0, 0, errAt(p.lex, "expected a field type")
	}
}

func (p *Parser) createTable() (CreateTableData, error) {
	if err := p.lex.eatKeyword("table"); err != nil {
		return CreateTableData{}, err
	}
	tbl, err := p.lex.eatIdentifier()
	if err != nil {
		return CreateTableData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return CreateTableData{}, err
	}
	sch := record.NewSchema()
	for {
		fld, err := p.field()
		if err != nil {
			return CreateTableData{}, err
		}
		typ, length, err := p.fieldType()
		if err != nil {
			return CreateTableData{}, err
		}
		sch.AddField(fld, typ, length)
		if !p.lex.matchDelim(",") {
			break
		}
		p.lex.advance()
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return CreateTableData{}, err
	}
	return CreateTableData{TableName: tbl, Schema: sch}, nil
}

func (p *Parser) createView() (CreateViewData, error) {
	if err := p.lex.eatKeyword("view"); err != nil {
		return CreateViewData{}, err
	}
	view, err := p.lex.eatIdentifier()
	if err != nil {
		return CreateViewData{}, err
	}
	if err := p.lex.eatKeyword("as"); err != nil {
		return CreateViewData{}, err
	}
	qd, err := p.Query()
	if err != nil {
		return CreateViewData{}, err
	}
	return CreateViewData{ViewName: view, Definition: qd.String()}, nil
}

func (p *Parser) createIndex() (CreateIndexData, error) {
	if err := p.lex.eatKeyword("index"); err != nil {
		return CreateIndexData{}, err
	}
	idx, err := p.lex.eatIdentifier()
	if err != nil {
		return CreateIndexData{}, err
	}
	if err := p.lex.eatKeyword("on"); err != nil {
		return CreateIndexData{}, err
	}
	tbl, err := p.lex.eatIdentifier()
	if err != nil {
		return CreateIndexData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return CreateIndexData{}, err
	}
	fld, err := p.field()
	if err != nil {
		return CreateIndexData{}, err
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return CreateIndexData{}, err
	}
	return CreateIndexData{IndexName: idx, TableName: tbl, FieldName: fld}, nil
}
