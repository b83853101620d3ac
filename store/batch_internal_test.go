package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []idxRange
	}{
		{"empty", 0, 100, nil},
		{"zero size", 5, 0, nil},
		{"single partial", 5, 100, []idxRange{{0, 5}}},
		{"exact", 200, 100, []idxRange{{0, 100}, {100, 200}}},
		{"remainder", 250, 100, []idxRange{{0, 100}, {100, 200}, {200, 250}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunks(tt.n, tt.size))
		})
	}
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "GSI1pk", placeholder("GSI1pk"))
	assert.Equal(t, "first_name", placeholder("first-name"))
	assert.Equal(t, "a_b_c", placeholder("a.b c"))
}
