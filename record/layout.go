package record

import "github.com/cutsea110/simplego/page"

// Layout derives per-field byte offsets and a total slot size from a
// Schema, deterministically: fields are laid out in declaration order
// starting just past the leading i32 empty/used flag.
type Layout struct {
	schema   *Schema
	offsets  map[string]int
	slotsize int
}

// NewLayout derives offsets and slot size from sch.
func NewLayout(sch *Schema) *Layout {
	offsets := make(map[string]int, len(sch.Fields()))
	pos := page.Int32Size // the flag
	for _, f := range sch.Fields() {
		offsets[f] = pos
		pos += lengthInBytes(sch, f)
	}
	return &Layout{schema: sch, offsets: offsets, slotsize: pos}
}

// NewLayoutWith reconstructs a layout from previously computed offsets,
// used when the metadata manager loads a table's layout from its catalog
// rows instead of recomputing it.
func NewLayoutWith(sch *Schema, offsets map[string]int, slotsize int) *Layout {
	return &Layout{schema: sch, offsets: offsets, slotsize: slotsize}
}

// Schema returns the layout's underlying schema.
func (l *Layout) Schema() *Schema { return l.schema }

// Offset returns fldname's byte offset within a slot.
func (l *Layout) Offset(fldname string) int { return l.offsets[fldname] }

// SlotSize returns the fixed size in bytes of one slot.
func (l *Layout) SlotSize() int { return l.slotsize }
