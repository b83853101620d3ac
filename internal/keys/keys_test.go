package keys

import (
	"reflect"
	"strings"
	"testing"
)

func TestJoinSplit_RoundTrip(t *testing.T) {
	tests := []struct {
		parts    []string
		expected string
	}{
		{[]string{"A", "B", "C"}, "A#B#C"},
		{[]string{"TEST", "42"}, "TEST#42"},
		{[]string{"single"}, "single"},
		{[]string{"LIKTEST", "ST", ""}, "LIKTEST#ST#"},
	}

	for _, tt := range tests {
		key := Join(tt.parts...)
		if key != tt.expected {
			t.Errorf("Join(%v) = %q, want %q", tt.parts, key, tt.expected)
		}
		if got := Split(key); !reflect.DeepEqual(got, tt.parts) {
			t.Errorf("Split(%q) = %v, want %v", key, got, tt.parts)
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	if got := Split(""); got != nil {
		t.Errorf("expected nil for empty key, got %v", got)
	}
}

func TestShard_SingleShard(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if got := Shard("anything", n); got != "00" {
			t.Errorf("Shard(_, %d) = %q, want \"00\"", n, got)
		}
	}
}

func TestShard_Deterministic(t *testing.T) {
	first := Sharded("LIKES", "ST#123", 16)
	for i := 0; i < 10; i++ {
		if got := Sharded("LIKES", "ST#123", 16); got != first {
			t.Fatalf("expected stable shard %q, got %q", first, got)
		}
	}
	if !strings.HasPrefix(first, "LIKES#") {
		t.Errorf("expected LIKES# prefix, got %q", first)
	}
}

func TestShard_Distribution(t *testing.T) {
	numShards := 16
	seen := make(map[string]int)
	for i := 0; i < 1000; i++ {
		id := "student#" + string(rune('a'+i%26)) + string(rune('0'+i%10)) + string(rune('A'+i%7))
		seen[Shard(id, numShards)]++
	}
	if len(seen) < numShards/2 {
		t.Errorf("expected ids spread over at least %d shards, got %d", numShards/2, len(seen))
	}
	for s := range seen {
		if len(s) != 2 {
			t.Errorf("expected two hex digits, got %q", s)
		}
	}
}

func TestAll(t *testing.T) {
	got := All("TEST", 3)
	want := []string{"TEST#00", "TEST#01", "TEST#02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("All = %v, want %v", got, want)
	}

	if got := All("TEST", 0); !reflect.DeepEqual(got, []string{"TEST#00"}) {
		t.Errorf("expected single shard for zero count, got %v", got)
	}
}

func TestAll_ContainsEveryShard(t *testing.T) {
	numShards := 8
	all := make(map[string]bool)
	for _, pk := range All("P", numShards) {
		all[pk] = true
	}
	for i := 0; i < 200; i++ {
		pk := Sharded("P", string(rune('a'+i%26))+string(rune('0'+i%10)), numShards)
		if !all[pk] {
			t.Errorf("sharded key %q not in All()", pk)
		}
	}
}
