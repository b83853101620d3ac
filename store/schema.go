package store

// AttributeType is the declared wire type of an attribute.
type AttributeType int

// Attribute types. TypeDate is stored as an ISO-8601 string.
const (
	TypeString AttributeType = iota
	TypeNumber
	TypeDate
	TypeBinary
	TypeBoolean
	TypeMap
	TypeList
	TypeStringSet
	TypeNumberSet
	TypeBinarySet
	TypeNull
)

// String returns the wire type tag, with "D" for dates.
func (t AttributeType) String() string {
	switch t {
	case TypeString:
		return "S"
	case TypeNumber:
		return "N"
	case TypeDate:
		return "D"
	case TypeBinary:
		return "B"
	case TypeBoolean:
		return "BOOL"
	case TypeMap:
		return "M"
	case TypeList:
		return "L"
	case TypeStringSet:
		return "SS"
	case TypeNumberSet:
		return "NS"
	case TypeBinarySet:
		return "BS"
	case TypeNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// AttributeSchema describes one column: its wire name, short alias, value type
// and an optional validation rule. Schemas are immutable and compared by pointer.
type AttributeSchema struct {
	fullName string
	alias    string
	typ      AttributeType
	rule     *Rule
}

// SchemaOption configures an AttributeSchema at construction.
type SchemaOption func(*AttributeSchema)

// WithType sets the value type. The default is TypeString.
func WithType(t AttributeType) SchemaOption {
	return func(s *AttributeSchema) { s.typ = t }
}

// WithRule attaches a validation rule.
func WithRule(r *Rule) SchemaOption {
	return func(s *AttributeSchema) { s.rule = r }
}

// NewAttributeSchema creates a schema. It fails when both names are empty; when
// only one is given it is used for both.
func NewAttributeSchema(fullName, alias string, opts ...SchemaOption) (*AttributeSchema, error) {
	if fullName == "" && alias == "" {
		return nil, &ConfigurationError{Message: "attribute schema needs a full name or an alias"}
	}
	if alias == "" {
		alias = fullName
	}
	if fullName == "" {
		fullName = alias
	}

	s := &AttributeSchema{fullName: fullName, alias: alias, typ: TypeString}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustAttributeSchema is like NewAttributeSchema but panics on error.
// Intended for package-level schema declarations.
func MustAttributeSchema(fullName, alias string, opts ...SchemaOption) *AttributeSchema {
	s, err := NewAttributeSchema(fullName, alias, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// FullName returns the name used in records and validation messages.
func (s *AttributeSchema) FullName() string { return s.fullName }

// Alias returns the short attribute name stored in the table.
func (s *AttributeSchema) Alias() string { return s.alias }

// Type returns the wire type of the attribute.
func (s *AttributeSchema) Type() AttributeType { return s.typ }

// Rule returns the validation rule, or nil when the attribute is unchecked.
func (s *AttributeSchema) Rule() *Rule { return s.rule }

// IndexGSI1 is the global secondary index keyed by GSI1pk and GSI1sk.
const IndexGSI1 = "GSI1pk"

// SystemSchemas holds the attributes every entity carries. Build it once with
// NewSystemSchemas and share the pointer; it is never mutated.
type SystemSchemas struct {
	PK        *AttributeSchema
	SK        *AttributeSchema
	Type      *AttributeSchema
	CreatedAt *AttributeSchema
	UpdatedAt *AttributeSchema
	GSI1PK    *AttributeSchema
	GSI1SK    *AttributeSchema
}

// NewSystemSchemas builds the system attribute set.
func NewSystemSchemas() *SystemSchemas {
	return &SystemSchemas{
		PK:        MustAttributeSchema("pk", "pk", WithRule(Required("pk"))),
		SK:        MustAttributeSchema("sk", "sk", WithRule(Required("sk"))),
		Type:      MustAttributeSchema("type", "typ"),
		CreatedAt: MustAttributeSchema("createdAt", "cadt", WithType(TypeDate)),
		UpdatedAt: MustAttributeSchema("updatedAt", "uadt", WithType(TypeDate)),
		GSI1PK:    MustAttributeSchema("GSI1pk", "GSI1pk"),
		GSI1SK:    MustAttributeSchema("GSI1sk", "GSI1sk"),
	}
}

// All returns the system schemas in registration order.
func (s *SystemSchemas) All() []*AttributeSchema {
	return []*AttributeSchema{s.Type, s.PK, s.SK, s.CreatedAt, s.UpdatedAt, s.GSI1PK, s.GSI1SK}
}

// KeyColumns returns the table and index key schemas. TYPE is not a key column.
func (s *SystemSchemas) KeyColumns() []*AttributeSchema {
	return []*AttributeSchema{s.PK, s.SK, s.GSI1PK, s.GSI1SK}
}

// isKeyColumn matches by alias, so a schema from another SystemSchemas of the
// same table is recognised.
func (s *SystemSchemas) isKeyColumn(schema *AttributeSchema) bool {
	for _, k := range s.KeyColumns() {
		if k.alias == schema.alias {
			return true
		}
	}
	return false
}
