package store

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EntityAttribute is a mutable value bound to a schema. Its rule is checked on
// demand by Validate, not on every mutation.
type EntityAttribute struct {
	schema *AttributeSchema
	value  any
}

// NewEntityAttribute binds value to schema without registering it on an entity.
// Use it to build attribute lists for UpdateTemplate.
func NewEntityAttribute(schema *AttributeSchema, value any) *EntityAttribute {
	return &EntityAttribute{schema: schema, value: value}
}

// Schema returns the schema the value is bound to.
func (a *EntityAttribute) Schema() *AttributeSchema { return a.schema }

// Value returns the raw value.
func (a *EntityAttribute) Value() any { return a.value }

// SetValue replaces the value without validating it.
func (a *EntityAttribute) SetValue(v any) { a.value = v }

// IsSet reports whether the attribute holds a value.
func (a *EntityAttribute) IsSet() bool {
	switch v := a.value.(type) {
	case nil:
		return false
	case *time.Time:
		return v != nil
	default:
		return true
	}
}

// Validate returns the rule violation, or nil when the rule passes or there is none.
func (a *EntityAttribute) Validate() *FieldError {
	rule := a.schema.rule
	if rule == nil || rule.Valid == nil {
		return nil
	}
	if rule.Valid(a.value) {
		return nil
	}
	return &FieldError{FieldName: a.schema.fullName, Message: rule.Message}
}

// Wire encodes the value using the schema's declared type.
func (a *EntityAttribute) Wire() (types.AttributeValue, error) {
	return ToWire(a.schema.typ, a.value)
}
