package store

import "github.com/onmiddleground/core-dynamo/internal/keys"

// KeyDelimiter joins the segments of composite key values. Stored data depends on it.
const KeyDelimiter = keys.Delimiter

// KeyPair names a key attribute and its value, for targeted writes that do not
// need a full entity.
type KeyPair struct {
	KeyName  string
	KeyValue string
}

// CreateKey joins parts with KeyDelimiter.
func CreateKey(parts ...string) string { return keys.Join(parts...) }

// ParseKey splits a composite key into its parts.
func ParseKey(key string) []string { return keys.Split(key) }

// ShardedKey appends the write shard for id to base, spreading a hot partition
// over numShards partitions.
func ShardedKey(base, id string, numShards int) string {
	return keys.Sharded(base, id, numShards)
}

// ShardKeys returns every partition value ShardedKey can produce for base.
func ShardKeys(base string, numShards int) []string {
	return keys.All(base, numShards)
}
