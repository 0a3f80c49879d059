package hashutil

import (
	"hash/fnv"

	"github.com/draftden/draftden/internal/bytespool"
)

// SeedFromParts derives a seed from several ids joined together, so the
// same draft id with a different salt yields an unrelated shuffle.
func SeedFromParts(parts ...string) int64 {
	buf := bytespool.Get()
	defer func() {
		buf.Reset()
		bytespool.Put(buf)
	}()

	for _, part := range parts {
		buf.WriteString(part)
		buf.WriteByte(0)
	}

	h := fnv.New64a()
	h.Write(buf.Bytes())
	return int64(h.Sum64())
}
