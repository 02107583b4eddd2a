package newsfeedddb

import (
	"encoding/binary"
	"hash/fnv"
)

// News rows sort within a topic by a composite binary key: 8 big-endian
// bytes of epoch seconds followed by 8 bytes of an FNV-1a hash of the
// posting user. Big-endian on the time prefix makes lexicographic byte
// order equal chronological order; the hash suffix keeps concurrent
// posters in the same second from colliding.
const (
	timeKeyWidth = 8
	hashKeyWidth = 8

	// RangeKeyWidth is the exact length of every news sort key.
	RangeKeyWidth = timeKeyWidth + hashKeyWidth
)

// RangeKey builds the composite sort key for a news row posted by userID at
// epochSecs. An empty userID yields an all-zero suffix, which makes the
// result the lower bound of every key with time >= epochSecs.
func RangeKey(epochSecs int64, userID string) []byte {
	key := make([]byte, RangeKeyWidth)
	binary.BigEndian.PutUint64(key[:timeKeyWidth], uint64(epochSecs))
	if userID != "" {
		h := fnv.New64a()
		h.Write([]byte(userID))
		binary.BigEndian.PutUint64(key[timeKeyWidth:], h.Sum64())
	}
	return key
}

// TimeFromRangeKey decodes the big-endian time prefix of a news sort key.
func TimeFromRangeKey(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[:timeKeyWidth]))
}
