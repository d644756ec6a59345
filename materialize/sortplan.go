package materialize

import (
	"github.com/cutsea110/simplego/plan"
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// SortPlan externally merge-sorts its source plan on sortFields (§4.10).
// When compressLargeRuns is set (Config.CompressSortRuns), any initial
// run longer than spillThreshold records is spilled into a compressed
// blob table instead of a plain TempTable, and decompressed back into a
// plain table lazily the first time the merge phase reads it — the same
// "compress before it leaves memory, decompress before use" shape the
// teacher applies to document bodies (§ DOMAIN STACK).
type SortPlan struct {
	t                 *tx.Transaction
	src               plan.Plan
	sch               *record.Schema
	comp              RecordComparator
	compressLargeRuns bool
}

var _ plan.Plan = (*SortPlan)(nil)

// NewSortPlan wraps src, sorting its output on sortFields.
func NewSortPlan(t *tx.Transaction, src plan.Plan, sortFields []string, compressLargeRuns bool) *SortPlan {
	return &SortPlan{t: t, src: src, sch: src.Schema(), comp: NewRecordComparator(sortFields), compressLargeRuns: compressLargeRuns}
}

// sortRun is one run produced by splitIntoRuns or produced by merging two
// earlier runs. A run spilled past spillThreshold rows is stored as a
// compressed blob table rather than a plain one; materialize decompresses
// it back into an ordinary TempTable the first time it's needed, so every
// downstream consumer (the merge loop, SortScan) only ever deals in plain
// tables.
type sortRun struct {
	t     *tx.Transaction
	sch   *record.Schema
	plain *TempTable
	blob  *TempTable
}

// materialize returns a plain TempTable holding this run's rows,
// decompressing from the blob on first use and caching the result.
func (r *sortRun) materialize() (*TempTable, error) {
	if r.plain != nil {
		return r.plain, nil
	}
	data, err := readBlob(r.blob)
	if err != nil {
		return nil, err
	}
	rows, err := decompressRun(data)
	if err != nil {
		return nil, err
	}
	tt := NewTempTable(r.t, r.sch)
	ts, err := tt.Open()
	if err != nil {
		return nil, err
	}
	defer ts.Close()
	for _, row := range rows {
		if err := ts.Insert(); err != nil {
			return nil, err
		}
		for _, f := range r.sch.Fields() {
			sv := row[f]
			v := query.Constant{Type: query.ValueType(sv.Type), I32: sv.I32, Str: sv.Str, I8: sv.I8, I16: sv.I16, Bool: sv.Bool}
			if err := ts.SetVal(f, v); err != nil {
				return nil, err
			}
		}
	}
	r.plain = tt
	return tt, nil
}

func (r *sortRun) Open() (*record.TableScan, error) {
	tt, err := r.materialize()
	if err != nil {
		return nil, err
	}
	return tt.Open()
}

func (sp *SortPlan) Open() (query.Scan, error) {
	s, err := sp.src.Open()
	if err != nil {
		return nil, err
	}
	runs, err := sp.splitIntoRuns(s)
	if err != nil {
		return nil, err
	}
	if err := s.Close(); err != nil {
		return nil, err
	}
	for len(runs) > 2 {
		runs, err = sp.doAMergeIteration(runs)
		if err != nil {
			return nil, err
		}
	}
	var t1, t2 *TempTable
	if len(runs) >= 1 {
		t1, err = runs[0].materialize()
		if err != nil {
			return nil, err
		}
	} else {
		t1 = NewTempTable(sp.t, sp.sch)
	}
	if len(runs) >= 2 {
		t2, err = runs[1].materialize()
		if err != nil {
			return nil, err
		}
	}
	return NewSortScan(t1, t2, sp.comp)
}

func (sp *SortPlan) splitIntoRuns(src query.Scan) ([]*sortRun, error) {
	var runs []*sortRun
	if err := src.BeforeFirst(); err != nil {
		return nil, err
	}
	ok, err := src.Next()
	if err != nil || !ok {
		return runs, err
	}

	currentTemp := NewTempTable(sp.t, sp.sch)
	currentScan, err := currentTemp.Open()
	if err != nil {
		return nil, err
	}
	runLen := 0
	if err := sp.copyRow(src, currentScan); err != nil {
		return nil, err
	}
	runLen++

	for {
		ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		cmp, err := sp.comp.Compare(src, currentScan)
		if err != nil {
			return nil, err
		}
		if cmp < 0 {
			run, err := sp.closeRun(currentScan, currentTemp, runLen)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run)
			currentTemp = NewTempTable(sp.t, sp.sch)
			currentScan, err = currentTemp.Open()
			if err != nil {
				return nil, err
			}
			runLen = 0
		}
		if err := sp.copyRow(src, currentScan); err != nil {
			return nil, err
		}
		runLen++
	}
	run, err := sp.closeRun(currentScan, currentTemp, runLen)
	if err != nil {
		return nil, err
	}
	runs = append(runs, run)
	return runs, nil
}

// closeRun closes currentScan and, once the run has grown past
// spillThreshold rows with compressLargeRuns set, spills it into a
// compressed blob table — from this point on the run is read only
// through that blob, decompressed back into a plain table on first use.
func (sp *SortPlan) closeRun(s *record.TableScan, tt *TempTable, runLen int) (*sortRun, error) {
	if err := s.Close(); err != nil {
		return nil, err
	}
	if sp.compressLargeRuns && runLen > spillThreshold {
		return sp.spillRun(tt)
	}
	return &sortRun{t: sp.t, sch: sp.sch, plain: tt}, nil
}

// spillRun reads tt's rows, compresses them, and writes the result into
// a chunked blob table, returning a run backed by that blob instead of
// tt's plain heap pages.
func (sp *SortPlan) spillRun(tt *TempTable) (*sortRun, error) {
	s, err := tt.Open()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	var rows []spilledRow
	for {
		ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		row := make(spilledRow, len(sp.sch.Fields()))
		for _, f := range sp.sch.Fields() {
			v, err := s.GetVal(f)
			if err != nil {
				return nil, err
			}
			row[f] = spilledVal{Type: int32(v.Type), I32: v.I32, Str: v.Str, I8: v.I8, I16: v.I16, Bool: v.Bool}
		}
		rows = append(rows, row)
	}
	compressed, err := compressRun(rows)
	if err != nil {
		return nil, err
	}
	blob, err := writeBlob(sp.t, compressed)
	if err != nil {
		return nil, err
	}
	return &sortRun{t: sp.t, sch: sp.sch, blob: blob}, nil
}

func (sp *SortPlan) copyRow(src query.Scan, dest *record.TableScan) error {
	if err := dest.Insert(); err != nil {
		return err
	}
	for _, fld := range sp.sch.Fields() {
		v, err := src.GetVal(fld)
		if err != nil {
			return err
		}
		if err := dest.SetVal(fld, v); err != nil {
			return err
		}
	}
	return nil
}

func (sp *SortPlan) doAMergeIteration(runs []*sortRun) ([]*sortRun, error) {
	var result []*sortRun
	for len(runs) > 1 {
		p1, p2 := runs[0], runs[1]
		runs = runs[2:]
		merged, err := sp.mergeTwoRuns(p1, p2)
		if err != nil {
			return nil, err
		}
		result = append(result, merged)
	}
	if len(runs) == 1 {
		result = append(result, runs[0])
	}
	return result, nil
}

func (sp *SortPlan) mergeTwoRuns(p1, p2 *sortRun) (*sortRun, error) {
	src1, err := p1.Open()
	if err != nil {
		return nil, err
	}
	defer src1.Close()
	src2, err := p2.Open()
	if err != nil {
		return nil, err
	}
	defer src2.Close()

	result := NewTempTable(sp.t, sp.sch)
	dest, err := result.Open()
	if err != nil {
		return nil, err
	}
	defer dest.Close()

	has1, err := src1.Next()
	if err != nil {
		return nil, err
	}
	has2, err := src2.Next()
	if err != nil {
		return nil, err
	}
	for has1 && has2 {
		cmp, err := sp.comp.Compare(src1, src2)
		if err != nil {
			return nil, err
		}
		if cmp < 0 {
			if err := sp.copyRow(src1, dest); err != nil {
				return nil, err
			}
			has1, err = src1.Next()
		} else {
			if err := sp.copyRow(src2, dest); err != nil {
				return nil, err
			}
			has2, err = src2.Next()
		}
		if err != nil {
			return nil, err
		}
	}
	for has1 {
		if err := sp.copyRow(src1, dest); err != nil {
			return nil, err
		}
		has1, err = src1.Next()
		if err != nil {
			return nil, err
		}
	}
	for has2 {
		if err := sp.copyRow(src2, dest); err != nil {
			return nil, err
		}
		has2, err = src2.Next()
		if err != nil {
			return nil, err
		}
	}
	return &sortRun{t: sp.t, sch: sp.sch, plain: result}, nil
}

func (sp *SortPlan) BlocksAccessed() int {
	mp := NewMaterializePlan(sp.t, sp.src)
	return mp.BlocksAccessed()
}

func (sp *SortPlan) RecordsOutput() int                { return sp.src.RecordsOutput() }
func (sp *SortPlan) DistinctValues(fldname string) int { return sp.src.DistinctValues(fldname) }
func (sp *SortPlan) Schema() *record.Schema            { return sp.sch }

func (sp *SortPlan) Repr() plan.Repr {
	return plan.Repr{Operation: "Sort", Reads: sp.BlocksAccessed(), Writes: sp.BlocksAccessed(), Children: []plan.Repr{sp.src.Repr()}}
}
