package store

// AccessPatternOptions holds the optional parts of an access pattern. The zero
// value means no sort-key condition against the base table.
type AccessPatternOptions struct {
	// SortKey is the sort-key condition. Leave zero to match the whole partition.
	SortKey KeyExpression

	// IndexName selects a secondary index. Empty queries the base table.
	IndexName string
}

// AccessPattern is one fully specified retrieval shape.
type AccessPattern struct {
	partition KeyExpression
	sort      KeyExpression
	indexName string
}

// NewAccessPattern pairs a partition-key expression with the given options.
func NewAccessPattern(pk KeyExpression, opts AccessPatternOptions) AccessPattern {
	pk.kind = PartitionKey
	sk := opts.SortKey
	if !sk.IsZero() {
		sk.kind = SortKey
	}
	return AccessPattern{partition: pk, sort: sk, indexName: opts.IndexName}
}

// PartitionKey returns the partition-key expression.
func (a AccessPattern) PartitionKey() KeyExpression { return a.partition }

// IndexName returns the secondary index, or "" for the base table.
func (a AccessPattern) IndexName() string { return a.indexName }

// SortKey returns the sort-key expression and whether one is set.
func (a AccessPattern) SortKey() (KeyExpression, bool) {
	return a.sort, !a.sort.IsZero()
}

// Validate checks both key expressions.
func (a AccessPattern) Validate() error {
	errs := a.partition.Validate()
	if sk, ok := a.SortKey(); ok {
		errs = append(errs, sk.Validate()...)
	}
	if len(errs) > 0 {
		return &ValidationError{Message: "Invalid Access Pattern", Errors: errs}
	}
	return nil
}
