// Package query implements the scan/plan algebra used to execute a single
// query: the Scan/UpdateScan contracts every operator implements, and the
// Select/Project/Product operators that compose over them (§4.10).
package query

import "fmt"

// Constant is a typed scalar value flowing through predicates and scans.
// Exactly one of the fields is meaningful, selected by Type.
type Constant struct {
	Type  ValueType
	I32   int32
	Str   string
	I8    int8
	I16   int16
	Bool  bool
}

// ValueType tags which field of a Constant holds the value.
type ValueType int

const (
	TypeInt32 ValueType = iota
	TypeString
	TypeInt8
	TypeInt16
	TypeBool
)

func NewInt32(v int32) Constant  { return Constant{Type: TypeInt32, I32: v} }
func NewString(v string) Constant { return Constant{Type: TypeString, Str: v} }
func NewInt8(v int8) Constant     { return Constant{Type: TypeInt8, I8: v} }
func NewInt16(v int16) Constant   { return Constant{Type: TypeInt16, I16: v} }
func NewBool(v bool) Constant     { return Constant{Type: TypeBool, Bool: v} }

// Equals reports whether c and other carry the same type and value.
func (c Constant) Equals(other Constant) bool {
	if c.Type != other.Type {
		return false
	}
	switch c.Type {
	case TypeInt32:
		return c.I32 == other.I32
	case TypeString:
		return c.Str == other.Str
	case TypeInt8:
		return c.I8 == other.I8
	case TypeInt16:
		return c.I16 == other.I16
	case TypeBool:
		return c.Bool == other.Bool
	default:
		return false
	}
}

// Less reports whether c sorts before other (same-type comparison only;
// used by sort/merge operators whose inputs are already type-homogeneous
// per field).
func (c Constant) Less(other Constant) bool {
	switch c.Type {
	case TypeInt32:
		return c.I32 < other.I32
	case TypeString:
		return c.Str < other.Str
	case TypeInt8:
		return c.I8 < other.I8
	case TypeInt16:
		return c.I16 < other.I16
	case TypeBool:
		return !c.Bool && other.Bool
	default:
		return false
	}
}

// SQLLiteral renders c as the parser would accept it back — string
// constants quoted, everything else as String().
func (c Constant) SQLLiteral() string {
	if c.Type == TypeString {
		return "'" + c.Str + "'"
	}
	return c.String()
}

func (c Constant) String() string {
	switch c.Type {
	case TypeInt32:
		return fmt.Sprintf("%d", c.I32)
	case TypeString:
		return c.Str
	case TypeInt8:
		return fmt.Sprintf("%d", c.I8)
	case TypeInt16:
		return fmt.Sprintf("%d", c.I16)
	case TypeBool:
		return fmt.Sprintf("%t", c.Bool)
	default:
		return "?"
	}
}

// HashKey returns a byte encoding suitable for feeding a hash function
// (used by the static hash index, §4.9).
func (c Constant) HashKey() []byte {
	switch c.Type {
	case TypeString:
		return []byte(c.Str)
	case TypeInt32:
		return []byte(fmt.Sprintf("i32:%d", c.I32))
	case TypeInt8:
		return []byte(fmt.Sprintf("i8:%d", c.I8))
	case TypeInt16:
		return []byte(fmt.Sprintf("i16:%d", c.I16))
	case TypeBool:
		return []byte(fmt.Sprintf("b:%t", c.Bool))
	default:
		return nil
	}
}
