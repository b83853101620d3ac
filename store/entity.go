package store

import (
	"time"
)

// KeyStyle selects whether an attribute is keyed by its alias or its full name.
type KeyStyle int

const (
	KeyByAlias KeyStyle = iota
	KeyByFullName
)

// KeyDefinition holds the key values SetCoreDefaults writes onto an entity.
// Empty index keys are left untouched.
type KeyDefinition struct {
	PK     string
	SK     string
	GSI1PK string
	GSI1SK string
}

// Entity is an ordered collection of attributes. Domain types compose an
// *Entity built with NewEntity and add their own schemas to it.
type Entity struct {
	sys   *SystemSchemas
	order []string
	attrs map[string]*EntityAttribute
}

// NewEntity creates an entity carrying the system attributes, unset, followed
// by the given domain schemas.
func NewEntity(sys *SystemSchemas, schemas ...*AttributeSchema) *Entity {
	e := &Entity{
		sys:   sys,
		attrs: make(map[string]*EntityAttribute, 7+len(schemas)),
	}
	for _, s := range sys.All() {
		e.RegisterAttribute(s, nil)
	}
	for _, s := range schemas {
		e.RegisterAttribute(s, nil)
	}
	return e
}

// System returns the system schemas the entity was built with.
func (e *Entity) System() *SystemSchemas { return e.sys }

// RegisterAttribute adds schema keyed by alias. Re-registering a key replaces
// the previous attribute in place.
func (e *Entity) RegisterAttribute(schema *AttributeSchema, value any) *EntityAttribute {
	return e.RegisterAttributeAs(schema, value, KeyByAlias)
}

// RegisterAttributeAs adds schema keyed by alias or full name.
func (e *Entity) RegisterAttributeAs(schema *AttributeSchema, value any, style KeyStyle) *EntityAttribute {
	key := keyFor(schema, style)
	attr := NewEntityAttribute(schema, value)
	if _, exists := e.attrs[key]; !exists {
		e.order = append(e.order, key)
	}
	e.attrs[key] = attr
	return attr
}

// Attribute looks schema up by alias.
func (e *Entity) Attribute(schema *AttributeSchema) (*EntityAttribute, bool) {
	return e.AttributeAs(schema, KeyByAlias)
}

// AttributeAs looks schema up by alias or full name.
func (e *Entity) AttributeAs(schema *AttributeSchema, style KeyStyle) (*EntityAttribute, bool) {
	attr, ok := e.attrs[keyFor(schema, style)]
	return attr, ok
}

// Attributes returns every attribute in registration order.
func (e *Entity) Attributes() []*EntityAttribute {
	out := make([]*EntityAttribute, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, e.attrs[key])
	}
	return out
}

// Get returns the value of schema, or nil when it is unset or unregistered.
func (e *Entity) Get(schema *AttributeSchema) any {
	if attr, ok := e.Attribute(schema); ok {
		return attr.value
	}
	return nil
}

// GetString returns the value of schema as a string, or "" when it is not one.
func (e *Entity) GetString(schema *AttributeSchema) string {
	s, _ := e.Get(schema).(string)
	return s
}

// Set assigns value to schema, registering it by alias first if needed.
func (e *Entity) Set(schema *AttributeSchema, value any) {
	if attr, ok := e.Attribute(schema); ok {
		attr.value = value
		return
	}
	e.RegisterAttribute(schema, value)
}

// PK returns the partition key.
func (e *Entity) PK() string { return e.GetString(e.sys.PK) }

// SetPK sets the partition key.
func (e *Entity) SetPK(v string) { e.Set(e.sys.PK, v) }

// SK returns the sort key.
func (e *Entity) SK() string { return e.GetString(e.sys.SK) }

// SetSK sets the sort key.
func (e *Entity) SetSK(v string) { e.Set(e.sys.SK, v) }

// Type returns the entity type discriminator.
func (e *Entity) Type() string { return e.GetString(e.sys.Type) }

// SetType sets the entity type discriminator.
func (e *Entity) SetType(v string) { e.Set(e.sys.Type, v) }

// GSI1PK returns the GSI1 partition key.
func (e *Entity) GSI1PK() string { return e.GetString(e.sys.GSI1PK) }

// SetGSI1PK sets the GSI1 partition key.
func (e *Entity) SetGSI1PK(v string) { e.Set(e.sys.GSI1PK, v) }

// GSI1SK returns the GSI1 sort key.
func (e *Entity) GSI1SK() string { return e.GetString(e.sys.GSI1SK) }

// SetGSI1SK sets the GSI1 sort key.
func (e *Entity) SetGSI1SK(v string) { e.Set(e.sys.GSI1SK, v) }

// CreatedAt returns the creation time, or the zero time when unset.
func (e *Entity) CreatedAt() time.Time { return e.timeOf(e.sys.CreatedAt) }

// SetCreatedAt sets the creation time.
func (e *Entity) SetCreatedAt(t time.Time) { e.Set(e.sys.CreatedAt, t) }

// UpdatedAt returns the last update time, or the zero time when unset.
func (e *Entity) UpdatedAt() time.Time { return e.timeOf(e.sys.UpdatedAt) }

// SetUpdatedAt sets the last update time.
func (e *Entity) SetUpdatedAt(t time.Time) { e.Set(e.sys.UpdatedAt, t) }

func (e *Entity) timeOf(schema *AttributeSchema) time.Time {
	switch v := e.Get(schema).(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := parseDate(v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Fields returns the aliases of schemas, for use as projected fields.
func (e *Entity) Fields(schemas ...*AttributeSchema) []string {
	out := make([]string, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.alias)
	}
	return out
}

// SetCoreDefaults writes the key values, the type discriminator and both
// timestamps.
func (e *Entity) SetCoreDefaults(def KeyDefinition, entityType string) {
	now := time.Now()
	e.SetPK(def.PK)
	e.SetSK(def.SK)
	if def.GSI1PK != "" {
		e.SetGSI1PK(def.GSI1PK)
	}
	if def.GSI1SK != "" {
		e.SetGSI1SK(def.GSI1SK)
	}
	e.SetType(entityType)
	e.SetCreatedAt(now)
	e.SetUpdatedAt(now)
}

// Validate checks every attribute rule and reports all failures at once.
func (e *Entity) Validate() error {
	var failures []FieldError
	for _, attr := range e.Attributes() {
		if fe := attr.Validate(); fe != nil {
			failures = append(failures, *fe)
		}
	}
	if len(failures) > 0 {
		return &ValidationError{Message: "Failed Validation", Errors: failures}
	}
	return nil
}

// schemaByAlias finds the registered schema whose alias is alias, whatever
// key style it was registered under.
func (e *Entity) schemaByAlias(alias string) (*AttributeSchema, bool) {
	if attr, ok := e.attrs[alias]; ok && attr.schema.alias == alias {
		return attr.schema, true
	}
	for _, key := range e.order {
		if s := e.attrs[key].schema; s.alias == alias {
			return s, true
		}
	}
	return nil, false
}

func keyFor(schema *AttributeSchema, style KeyStyle) string {
	if style == KeyByFullName {
		return schema.fullName
	}
	return schema.alias
}
