package index

import "github.com/cutsea110/simplego/query"

// DirEntry is a (splitKey, blockNumber) pair propagated up from a leaf or
// directory split (§4.9).
type DirEntry struct {
	Val     query.Constant
	Blknum  int
}

func newDirEntry(val query.Constant, blknum int) DirEntry {
	return DirEntry{Val: val, Blknum: blknum}
}
