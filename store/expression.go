package store

// Operator is a key-condition comparator. The zero value is invalid.
type Operator int

// Key-condition comparators. OpBetween takes two operands.
const (
	OpEQ Operator = iota + 1
	OpGT
	OpLT
	OpGTE
	OpLTE
	OpBetween
	OpBeginsWith
)

// String returns the comparator as written in a key condition.
func (o Operator) String() string {
	switch o {
	case OpEQ:
		return "="
	case OpGT:
		return ">"
	case OpLT:
		return "<"
	case OpGTE:
		return ">="
	case OpLTE:
		return "<="
	case OpBetween:
		return "between"
	case OpBeginsWith:
		return "begins_with"
	default:
		return ""
	}
}

func (o Operator) valid() bool { return o >= OpEQ && o <= OpBeginsWith }

// KeyKind tells partition-key expressions from sort-key expressions.
type KeyKind int

// Key kinds.
const (
	PartitionKey KeyKind = iota
	SortKey
)

// KeyExpression is one key-condition fragment: a key name, a comparator and one
// or two operands. It is immutable once built and validated lazily.
type KeyExpression struct {
	kind    KeyKind
	keyName string
	op      Operator
	value1  string
	value2  string
}

// NewPartitionKey builds a partition-key expression. Partition keys are
// normally matched with OpEQ.
func NewPartitionKey(keyName string, op Operator, value string) KeyExpression {
	return KeyExpression{kind: PartitionKey, keyName: keyName, op: op, value1: value}
}

// NewSortKey builds a single-operand sort-key expression.
func NewSortKey(keyName string, op Operator, value string) KeyExpression {
	return KeyExpression{kind: SortKey, keyName: keyName, op: op, value1: value}
}

// NewSortKeyBetween builds a sort-key range expression.
func NewSortKeyBetween(keyName, low, high string) KeyExpression {
	return KeyExpression{kind: SortKey, keyName: keyName, op: OpBetween, value1: low, value2: high}
}

// Kind reports whether k addresses the partition or the sort key.
func (k KeyExpression) Kind() KeyKind { return k.kind }

// KeyName returns the attribute name the condition applies to.
func (k KeyExpression) KeyName() string { return k.keyName }

// Operator returns the comparator.
func (k KeyExpression) Operator() Operator { return k.op }

// Value1 returns the first operand.
func (k KeyExpression) Value1() string { return k.value1 }

// Value2 returns the upper bound of a between expression.
func (k KeyExpression) Value2() string { return k.value2 }

// IsZero reports whether k was never set.
func (k KeyExpression) IsZero() bool { return k == KeyExpression{} }

func (k KeyExpression) namePlaceholder() string { return "#" + placeholder(k.keyName) }
func (k KeyExpression) valuePlaceholder() string {
	return ":" + placeholder(k.keyName)
}

// Validate returns one FieldError per missing field; an empty result means valid.
func (k KeyExpression) Validate() []FieldError {
	var errs []FieldError
	if k.keyName == "" {
		errs = append(errs, FieldError{FieldName: "keyName", Message: "keyName is required"})
	}
	if !k.op.valid() {
		errs = append(errs, FieldError{FieldName: "comparator", Message: "comparator is required"})
	}
	if k.value1 == "" {
		errs = append(errs, FieldError{FieldName: "value1", Message: "value1 is required"})
	}
	if k.op == OpBetween && k.value2 == "" {
		errs = append(errs, FieldError{FieldName: "value2", Message: "value2 is required for between"})
	}
	return errs
}
