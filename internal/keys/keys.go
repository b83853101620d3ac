// Package keys composes and splits delimited key values and computes write shards.
package keys

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Delimiter separates the segments of a composite key.
const Delimiter = "#"

// Join builds a composite key from its segments.
func Join(parts ...string) string {
	return strings.Join(parts, Delimiter)
}

// Split breaks a composite key into its segments. An empty key has none.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, Delimiter)
}

// Shard computes the write shard suffix for id.
// With numShards<=1 every id maps to shard "00".
func Shard(id string, numShards int) string {
	if numShards <= 1 {
		return "00"
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return fmt.Sprintf("%02x", h.Sum32()%uint32(numShards))
}

// Sharded returns base with the shard suffix for id appended.
func Sharded(base, id string, numShards int) string {
	return Join(base, Shard(id, numShards))
}

// All returns every sharded partition value for base, in shard order.
func All(base string, numShards int) []string {
	if numShards < 1 {
		numShards = 1
	}
	out := make([]string, numShards)
	for i := range out {
		out[i] = fmt.Sprintf("%s%s%02x", base, Delimiter, i)
	}
	return out
}
