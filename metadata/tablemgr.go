// Package metadata implements the self-hosted system catalog — the table,
// view, statistics, and index managers that store their own bookkeeping
// as ordinary heap-file tables (tblcat/fldcat/viewcat/idxcat, §6).
package metadata

import (
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

const (
	maxNameLength = 16

	tblCatTable = "tblcat"
	fldCatTable = "fldcat"
)

// TableMgr creates tables and recovers their Layout from the catalog.
type TableMgr struct {
	tblCatLayout *record.Layout
	fldCatLayout *record.Layout
}

// NewTableMgr returns the table manager, creating the tblcat/fldcat
// catalog tables on first run (isNew).
func NewTableMgr(isNew bool, t *tx.Transaction) (*TableMgr, error) {
	tcSch := record.NewSchema()
	tcSch.AddStringField("tblname", maxNameLength)
	tcSch.AddInt32Field("slotsize")
	tcLayout := record.NewLayout(tcSch)

	fcSch := record.NewSchema()
	fcSch.AddStringField("tblname", maxNameLength)
	fcSch.AddStringField("fldname", maxNameLength)
	fcSch.AddInt32Field("type")
	fcSch.AddInt32Field("length")
	fcSch.AddInt32Field("offset")
	fcLayout := record.NewLayout(fcSch)

	tm := &TableMgr{tblCatLayout: tcLayout, fldCatLayout: fcLayout}
	if isNew {
		if err := tm.CreateTable(tblCatTable, tcSch, t); err != nil {
			return nil, err
		}
		if err := tm.CreateTable(fldCatTable, fcSch, t); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// CreateTable persists tblname's schema into tblcat/fldcat as one tblcat
// row plus one fldcat row per field.
func (tm *TableMgr) CreateTable(tblname string, sch *record.Schema, t *tx.Transaction) error {
	layout := record.NewLayout(sch)

	tcat, err := record.NewTableScan(t, tblCatTable, tm.tblCatLayout)
	if err != nil {
		return err
	}
	defer tcat.Close()
	if err := tcat.Insert(); err != nil {
		return err
	}
	if err := tcat.SetString("tblname", tblname); err != nil {
		return err
	}
	if err := tcat.SetInt32("slotsize", int32(layout.SlotSize())); err != nil {
		return err
	}

	fcat, err := record.NewTableScan(t, fldCatTable, tm.fldCatLayout)
	if err != nil {
		return err
	}
	defer fcat.Close()
	for _, fldname := range sch.Fields() {
		if err := fcat.Insert(); err != nil {
			return err
		}
		if err := fcat.SetString("tblname", tblname); err != nil {
			return err
		}
		if err := fcat.SetString("fldname", fldname); err != nil {
			return err
		}
		if err := fcat.SetInt32("type", int32(sch.FieldType(fldname))); err != nil {
			return err
		}
		if err := fcat.SetInt32("length", int32(sch.Length(fldname))); err != nil {
			return err
		}
		if err := fcat.SetInt32("offset", int32(layout.Offset(fldname))); err != nil {
			return err
		}
	}
	return nil
}

// Layout reconstructs tblname's Layout by scanning tblcat/fldcat.
func (tm *TableMgr) Layout(tblname string, t *tx.Transaction) (*record.Layout, error) {
	slotsize := -1
	tcat, err := record.NewTableScan(t, tblCatTable, tm.tblCatLayout)
	if err != nil {
		return nil, err
	}
	for {
		ok, err := tcat.Next()
		if err != nil {
			tcat.Close()
			return nil, err
		}
		if !ok {
			break
		}
		name, err := tcat.GetString("tblname")
		if err != nil {
			tcat.Close()
			return nil, err
		}
		if name == tblname {
			s, err := tcat.GetInt32("slotsize")
			if err != nil {
				tcat.Close()
				return nil, err
			}
			slotsize = int(s)
			break
		}
	}
	tcat.Close()

	sch := record.NewSchema()
	offsets := make(map[string]int)
	fcat, err := record.NewTableScan(t, fldCatTable, tm.fldCatLayout)
	if err != nil {
		return nil, err
	}
	defer fcat.Close()
	for {
		ok, err := fcat.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		name, err := fcat.GetString("tblname")
		if err != nil {
			return nil, err
		}
		if name != tblname {
			continue
		}
		fldname, err := fcat.GetString("fldname")
		if err != nil {
			return nil, err
		}
		typ, err := fcat.GetInt32("type")
		if err != nil {
			return nil, err
		}
		length, err := fcat.GetInt32("length")
		if err != nil {
			return nil, err
		}
		offset, err := fcat.GetInt32("offset")
		if err != nil {
			return nil, err
		}
		sch.AddField(fldname, record.Type(typ), int(length))
		offsets[fldname] = int(offset)
	}
	return record.NewLayoutWith(sch, offsets, slotsize), nil
}
