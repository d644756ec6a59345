package multibuffer

import (
	"github.com/cutsea110/simplego/query"
	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

// MultibufferProductScan computes a cross product where the right-hand
// side is a materialized file, pinned BestFactor blocks (one chunk) at a
// time (§4.10). For each left row it walks every chunk in turn and only
// then advances the left scan, so the left scan is read once and the
// right-hand file is re-read once per left row.
type MultibufferProductScan struct {
	t                  *tx.Transaction
	lhs                query.Scan
	rhsFilename        string
	rhsLayout          *record.Layout
	chunkSize          int
	fileSize           int
	nextBlk            int
	chunk              *ChunkScan
}

var _ query.Scan = (*MultibufferProductScan)(nil)

// NewMultibufferProductScan builds the scan; availableBuffs sizes the
// chunk via BestFactor.
func NewMultibufferProductScan(t *tx.Transaction, lhs query.Scan, rhsFilename string, rhsLayout *record.Layout, availableBuffs int) (*MultibufferProductScan, error) {
	size, err := t.Size(rhsFilename)
	if err != nil {
		return nil, err
	}
	s := &MultibufferProductScan{
		t: t, lhs: lhs, rhsFilename: rhsFilename, rhsLayout: rhsLayout,
		fileSize: size, chunkSize: BestFactor(availableBuffs, size),
	}
	if err := s.BeforeFirst(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MultibufferProductScan) BeforeFirst() error {
	if err := s.lhs.BeforeFirst(); err != nil {
		return err
	}
	if _, err := s.lhs.Next(); err != nil {
		return err
	}
	return s.useNextChunk()
}

func (s *MultibufferProductScan) useNextChunk() error {
	if s.chunk != nil {
		if err := s.chunk.Close(); err != nil {
			return err
		}
	}
	end := s.nextBlk + s.chunkSize - 1
	if end >= s.fileSize {
		end = s.fileSize - 1
	}
	chunk, err := NewChunkScan(s.t, s.rhsFilename, s.rhsLayout, s.nextBlk, end)
	if err != nil {
		return err
	}
	s.chunk = chunk
	s.nextBlk = end + 1
	return nil
}

func (s *MultibufferProductScan) Next() (bool, error) {
	for {
		ok, err := s.chunk.Next()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if s.nextBlk >= s.fileSize {
			ok, err := s.lhs.Next()
			if err != nil || !ok {
				return false, err
			}
			s.nextBlk = 0
		}
		if err := s.useNextChunk(); err != nil {
			return false, err
		}
	}
}

func (s *MultibufferProductScan) GetInt32(fldname string) (int32, error) {
	if s.chunk.HasField(fldname) {
		return s.chunk.GetInt32(fldname)
	}
	return s.lhs.GetInt32(fldname)
}

func (s *MultibufferProductScan) GetString(fldname string) (string, error) {
	if s.chunk.HasField(fldname) {
		return s.chunk.GetString(fldname)
	}
	return s.lhs.GetString(fldname)
}

func (s *MultibufferProductScan) GetVal(fldname string) (query.Constant, error) {
	if s.chunk.HasField(fldname) {
		return s.chunk.GetVal(fldname)
	}
	return s.lhs.GetVal(fldname)
}

func (s *MultibufferProductScan) HasField(fldname string) bool {
	return s.chunk.HasField(fldname) || s.lhs.HasField(fldname)
}

func (s *MultibufferProductScan) Close() error {
	if err := s.chunk.Close(); err != nil {
		return err
	}
	return s.lhs.Close()
}
