package index

import (
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm selects the bucket hash used by HashIndex, generalizing
// the teacher's Config.HashAlgorithm switch from document IDs to index
// keys (§ DOMAIN STACK).
type HashAlgorithm int

const (
	AlgXXHash3 HashAlgorithm = 1 // default, fastest
	AlgFNV1a   HashAlgorithm = 2 // no external dependencies
	AlgBlake2b HashAlgorithm = 3 // best distribution
)

// hashBucket returns key's bucket number in [0, numBuckets).
func hashBucket(key []byte, alg HashAlgorithm, numBuckets int) int {
	var h uint64
	switch alg {
	case AlgFNV1a:
		f := fnv.New64a()
		f.Write(key)
		h = f.Sum64()
	case AlgBlake2b:
		b, _ := blake2b.New(8, nil)
		b.Write(key)
		sum := b.Sum(nil)
		for _, by := range sum {
			h = h<<8 | uint64(by)
		}
	default: // AlgXXHash3
		h = xxh3.Hash(key)
	}
	return int(h % uint64(numBuckets))
}
