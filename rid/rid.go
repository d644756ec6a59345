// Package rid defines the persistent record identifier used across the
// table-scan, index, and query-scan layers.
package rid

import "fmt"

// ID identifies a record within a heap file by block number and slot.
type ID struct {
	Blknum int
	Slot   int
}

// New returns the RID for slot within block blknum.
func New(blknum, slot int) ID { return ID{Blknum: blknum, Slot: slot} }

// Equals reports whether id and other identify the same record.
func (id ID) Equals(other ID) bool {
	return id.Blknum == other.Blknum && id.Slot == other.Slot
}

func (id ID) String() string {
	return fmt.Sprintf("[%d, %d]", id.Blknum, id.Slot)
}
