package record

import (
	"github.com/cutsea110/simplego/block"
	"github.com/cutsea110/simplego/tx"
)

// Flag values stored in each slot's leading i32.
type Flag int32

const (
	Empty Flag = 0
	Used  Flag = 1
)

// Page interprets one block as a slotted array of fixed-size slots, each
// layout.SlotSize() bytes, the first i32 of which is its Flag (§4.8).
type Page struct {
	tx     *tx.Transaction
	blk    block.ID
	layout *Layout
}

// NewPage pins blk for tx and wraps it as a slotted record page under
// layout.
func NewPage(t *tx.Transaction, blk block.ID, layout *Layout) (*Page, error) {
	if err := t.Pin(blk); err != nil {
		return nil, err
	}
	return &Page{tx: t, blk: blk, layout: layout}, nil
}

// Block returns the block this page is backed by.
func (rp *Page) Block() block.ID { return rp.blk }

func (rp *Page) offset(slot int) int32 { return int32(slot * rp.layout.SlotSize()) }

// GetInt32 reads fldname of slot.
func (rp *Page) GetInt32(slot int, fldname string) (int32, error) {
	return rp.tx.GetInt32(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)))
}

// GetString reads fldname of slot.
func (rp *Page) GetString(slot int, fldname string) (string, error) {
	return rp.tx.GetString(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)))
}

// GetInt8 reads fldname of slot.
func (rp *Page) GetInt8(slot int, fldname string) (int8, error) {
	return rp.tx.GetInt8(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)))
}

// GetInt16 reads fldname of slot.
func (rp *Page) GetInt16(slot int, fldname string) (int16, error) {
	return rp.tx.GetInt16(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)))
}

// GetBool reads fldname of slot.
func (rp *Page) GetBool(slot int, fldname string) (bool, error) {
	return rp.tx.GetBool(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)))
}

// SetInt32 writes fldname of slot, logging the change.
func (rp *Page) SetInt32(slot int, fldname string, val int32) error {
	return rp.tx.SetInt32(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)), val, true)
}

// SetString writes fldname of slot, logging the change.
func (rp *Page) SetString(slot int, fldname string, val string) error {
	return rp.tx.SetString(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)), val, true)
}

// SetInt8 writes fldname of slot, logging the change.
func (rp *Page) SetInt8(slot int, fldname string, val int8) error {
	return rp.tx.SetInt8(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)), val, true)
}

// SetInt16 writes fldname of slot, logging the change.
func (rp *Page) SetInt16(slot int, fldname string, val int16) error {
	return rp.tx.SetInt16(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)), val, true)
}

// SetBool writes fldname of slot, logging the change.
func (rp *Page) SetBool(slot int, fldname string, val bool) error {
	return rp.tx.SetBool(rp.blk, rp.offset(slot)+int32(rp.layout.Offset(fldname)), val, true)
}

// Delete flips slot's flag to Empty.
func (rp *Page) Delete(slot int) error {
	return rp.setFlag(slot, Empty)
}

// Format zero-initializes every slot in the block without logging (the
// block is either brand new or about to be reused wholesale).
func (rp *Page) Format() error {
	slot := 0
	for rp.IsValidSlot(slot) {
		if err := rp.tx.SetInt32(rp.blk, rp.offset(slot), int32(Empty), false); err != nil {
			return err
		}
		sch := rp.layout.Schema()
		for _, fldname := range sch.Fields() {
			fldpos := rp.offset(slot) + int32(rp.layout.Offset(fldname))
			switch sch.FieldType(fldname) {
			case Integer, Date:
				if err := rp.tx.SetInt32(rp.blk, fldpos, 0, false); err != nil {
					return err
				}
			case Varchar:
				if err := rp.tx.SetString(rp.blk, fldpos, "", false); err != nil {
					return err
				}
			case Int8:
				if err := rp.tx.SetInt8(rp.blk, fldpos, 0, false); err != nil {
					return err
				}
			case Int16:
				if err := rp.tx.SetInt16(rp.blk, fldpos, 0, false); err != nil {
					return err
				}
			case Bool:
				if err := rp.tx.SetBool(rp.blk, fldpos, false, false); err != nil {
					return err
				}
			}
		}
		slot++
	}
	return nil
}

// NextAfter returns the next Used slot after slot, or (-1, false).
func (rp *Page) NextAfter(slot int) (int, bool, error) {
	return rp.searchAfter(slot, Used)
}

// InsertAfter returns the next Empty slot after slot, marking it Used, or
// (-1, false) if the block is full.
func (rp *Page) InsertAfter(slot int) (int, bool, error) {
	newslot, ok, err := rp.searchAfter(slot, Empty)
	if err != nil || !ok {
		return -1, false, err
	}
	if err := rp.setFlag(newslot, Used); err != nil {
		return -1, false, err
	}
	return newslot, true, nil
}

func (rp *Page) setFlag(slot int, flag Flag) error {
	return rp.tx.SetInt32(rp.blk, rp.offset(slot), int32(flag), true)
}

func (rp *Page) searchAfter(slot int, flag Flag) (int, bool, error) {
	slot++
	for rp.IsValidSlot(slot) {
		v, err := rp.tx.GetInt32(rp.blk, rp.offset(slot))
		if err != nil {
			return -1, false, err
		}
		if Flag(v) == flag {
			return slot, true, nil
		}
		slot++
	}
	return -1, false, nil
}

// IsValidSlot reports whether slot fits entirely within one block.
func (rp *Page) IsValidSlot(slot int) bool {
	return (slot+1)*rp.layout.SlotSize() <= rp.tx.BlockSize()
}
