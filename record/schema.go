// Package record implements the slotted heap-file record layout: schema
// and layout derivation, slot-level record pages, and the forward-scanning
// table scan built on top of them (§4.8).
package record

import "github.com/cutsea110/simplego/page"

// Type enumerates the field types a Schema field may carry. The core
// i32/varchar pair is supplemented with the narrower fixed-width types the
// original implementation supports (§3 Schema/Layout: "in the extended
// variant i8/i16/bool/date").
type Type int

const (
	Integer Type = iota
	Varchar
	Int8
	Int16
	Bool
	Date
)

type fieldInfo struct {
	typ    Type
	length int // varchar max length in characters; unused otherwise
}

// Schema is an insertion-ordered list of field names with types. Two
// schemas with the same fields in the same order and identical types
// produce identical Layouts.
type Schema struct {
	fields []string
	info   map[string]fieldInfo
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{info: make(map[string]fieldInfo)}
}

// AddField appends fldname with the given type; length is only meaningful
// for Varchar (max character count).
func (s *Schema) AddField(fldname string, typ Type, length int) {
	s.fields = append(s.fields, fldname)
	s.info[fldname] = fieldInfo{typ: typ, length: length}
}

func (s *Schema) AddInt32Field(fldname string)  { s.AddField(fldname, Integer, 0) }
func (s *Schema) AddInt8Field(fldname string)   { s.AddField(fldname, Int8, 0) }
func (s *Schema) AddInt16Field(fldname string)  { s.AddField(fldname, Int16, 0) }
func (s *Schema) AddBoolField(fldname string)   { s.AddField(fldname, Bool, 0) }
func (s *Schema) AddDateField(fldname string)   { s.AddField(fldname, Date, 0) }
func (s *Schema) AddStringField(fldname string, length int) {
	s.AddField(fldname, Varchar, length)
}

// Add copies fldname's type/length from sch into s.
func (s *Schema) Add(fldname string, sch *Schema) {
	s.AddField(fldname, sch.FieldType(fldname), sch.Length(fldname))
}

// AddAll copies every field of sch into s, in order.
func (s *Schema) AddAll(sch *Schema) {
	for _, f := range sch.Fields() {
		s.Add(f, sch)
	}
}

// Fields returns the schema's fields in insertion order.
func (s *Schema) Fields() []string { return s.fields }

// HasField reports whether fldname is part of the schema.
func (s *Schema) HasField(fldname string) bool {
	_, ok := s.info[fldname]
	return ok
}

// FieldType returns fldname's declared type.
func (s *Schema) FieldType(fldname string) Type { return s.info[fldname].typ }

// Length returns fldname's declared varchar max length (0 for other types).
func (s *Schema) Length(fldname string) int { return s.info[fldname].length }

// lengthInBytes returns the on-page width of fldname's slot.
func lengthInBytes(sch *Schema, fldname string) int {
	switch sch.FieldType(fldname) {
	case Integer:
		return page.Int32Size
	case Varchar:
		return page.MaxLength(sch.Length(fldname))
	case Int8, Bool:
		return 1
	case Int16:
		return 2
	case Date:
		// stored as days-since-epoch, i32-width
		return page.Int32Size
	default:
		return page.Int32Size
	}
}
