package materialize

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/cutsea110/simplego/record"
	"github.com/cutsea110/simplego/tx"
)

var (
	spillEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	spillDecoder, _ = zstd.NewReader(nil)
)

// spillThreshold is the row count past which a finished run is read back
// out of its plain TempTable, compressed, and rewritten as a blob table,
// following the teacher's
// compress.go "compress before writing, decompress on read back" shape
// (§ DOMAIN STACK). Below it the per-call zstd framing overhead isn't
// worth paying.
const spillThreshold = 64

// spilledRow is the JSON-friendly encoding of one run row's field values,
// keyed by field name.
type spilledRow map[string]spilledVal

type spilledVal struct {
	Type int32  `json:"t"`
	I32  int32  `json:"i,omitempty"`
	Str  string `json:"s,omitempty"`
	I8   int8   `json:"i8,omitempty"`
	I16  int16  `json:"i16,omitempty"`
	Bool bool   `json:"b,omitempty"`
}

// compressRun serializes rows to JSON and compresses the result; used by
// SortPlan.spillRun once a large run has been written to its plain
// TempTable and read back.
func compressRun(rows []spilledRow) ([]byte, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	return spillEncoder.EncodeAll(raw, nil), nil
}

// decompressRun reverses compressRun.
func decompressRun(compressed []byte) ([]spilledRow, error) {
	raw, err := spillDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, err
	}
	var rows []spilledRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

const (
	blobSeqField   = "seq"
	blobChunkField = "chunk"
)

// blobChunkSize sizes a blob chunk field at roughly half of t's block
// size, leaving headroom for the slot's empty/used flag, the chunk
// field's own length-prefix, and the seq field, so one chunk row never
// spans more than one block.
func blobChunkSize(t *tx.Transaction) int {
	n := t.BlockSize()/2 - 16
	if n < 32 {
		n = 32
	}
	return n
}

func blobSchema(chunkSize int) *record.Schema {
	sch := record.NewSchema()
	sch.AddInt32Field(blobSeqField)
	sch.AddStringField(blobChunkField, chunkSize)
	return sch
}

// writeBlob stores data as a sequence of chunk rows in a fresh TempTable,
// the same heap-file storage a sort run already uses — only the meaning
// of the bytes changes, not the mechanism.
func writeBlob(t *tx.Transaction, data []byte) (*TempTable, error) {
	chunkSize := blobChunkSize(t)
	tt := NewTempTable(t, blobSchema(chunkSize))
	ts, err := tt.Open()
	if err != nil {
		return nil, err
	}
	defer ts.Close()

	seq := int32(0)
	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := ts.Insert(); err != nil {
			return nil, err
		}
		if err := ts.SetInt32(blobSeqField, seq); err != nil {
			return nil, err
		}
		if err := ts.SetString(blobChunkField, string(data[off:end])); err != nil {
			return nil, err
		}
		seq++
	}
	return tt, nil
}

// readBlob reverses writeBlob, reassembling the chunks in seq order
// regardless of the physical order TableScan happens to visit them in.
func readBlob(tt *TempTable) ([]byte, error) {
	ts, err := tt.Open()
	if err != nil {
		return nil, err
	}
	defer ts.Close()

	type chunk struct {
		seq  int32
		data string
	}
	var chunks []chunk
	for {
		ok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		seq, err := ts.GetInt32(blobSeqField)
		if err != nil {
			return nil, err
		}
		data, err := ts.GetString(blobChunkField)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk{seq, data})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].seq < chunks[j].seq })

	var buf bytes.Buffer
	for _, c := range chunks {
		buf.WriteString(c.data)
	}
	return buf.Bytes(), nil
}
