package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onmiddleground/core-dynamo/internal/fixture"
	"github.com/onmiddleground/core-dynamo/store"
)

func TestNewEntity_SystemAttributesExist(t *testing.T) {
	sys := store.NewSystemSchemas()
	e := store.NewEntity(sys)

	for _, s := range []*store.AttributeSchema{sys.PK, sys.SK, sys.Type, sys.CreatedAt, sys.UpdatedAt, sys.GSI1PK, sys.GSI1SK} {
		attr, ok := e.Attribute(s)
		require.True(t, ok, "missing %s", s.FullName())
		assert.False(t, attr.IsSet())
		assert.Same(t, s, attr.Schema())
	}
	assert.Len(t, e.Attributes(), 7)
}

func TestEntity_RegisterAttribute_LastWinsKeepsPosition(t *testing.T) {
	sys := store.NewSystemSchemas()
	name := store.MustAttributeSchema("name", "nm")
	other := store.MustAttributeSchema("other", "ot")
	e := store.NewEntity(sys, name, other)

	e.RegisterAttribute(name, "second")

	attrs := e.Attributes()
	require.Len(t, attrs, 9)
	assert.Same(t, name, attrs[7].Schema())
	assert.Equal(t, "second", attrs[7].Value())
	assert.Same(t, other, attrs[8].Schema())
}

func TestEntity_RegisterAttributeAs_FullName(t *testing.T) {
	sys := store.NewSystemSchemas()
	name := store.MustAttributeSchema("name", "nm")
	e := store.NewEntity(sys)

	e.RegisterAttributeAs(name, "value", store.KeyByFullName)

	_, ok := e.Attribute(name)
	assert.False(t, ok)
	attr, ok := e.AttributeAs(name, store.KeyByFullName)
	require.True(t, ok)
	assert.Equal(t, "value", attr.Value())
}

func TestEntity_SetRegistersUnknownSchema(t *testing.T) {
	sys := store.NewSystemSchemas()
	name := store.MustAttributeSchema("name", "nm")
	e := store.NewEntity(sys)

	e.Set(name, "Ada")
	assert.Equal(t, "Ada", e.Get(name))
	assert.Equal(t, "Ada", e.GetString(name))
	assert.Nil(t, e.Get(store.MustAttributeSchema("missing", "ms")))
}

func TestEntity_SystemAccessors(t *testing.T) {
	e := store.NewEntity(store.NewSystemSchemas())
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	e.SetPK("ST#1")
	e.SetSK("ST#1")
	e.SetType("ST")
	e.SetGSI1PK("ST")
	e.SetGSI1SK("ST#REGDT")
	e.SetCreatedAt(now)
	e.SetUpdatedAt(now)

	assert.Equal(t, "ST#1", e.PK())
	assert.Equal(t, "ST#1", e.SK())
	assert.Equal(t, "ST", e.Type())
	assert.Equal(t, "ST", e.GSI1PK())
	assert.Equal(t, "ST#REGDT", e.GSI1SK())
	assert.True(t, now.Equal(e.CreatedAt()))
	assert.True(t, now.Equal(e.UpdatedAt()))
}

func TestEntity_TimestampFromString(t *testing.T) {
	sys := store.NewSystemSchemas()
	e := store.NewEntity(sys)
	e.Set(sys.CreatedAt, "2024-01-02T03:04:05.000Z")

	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), e.CreatedAt().UTC())
	assert.True(t, e.UpdatedAt().IsZero())
}

func TestEntity_SetCoreDefaults(t *testing.T) {
	e := store.NewEntity(store.NewSystemSchemas())
	before := time.Now()

	e.SetCoreDefaults(store.KeyDefinition{PK: "TEST#1", SK: "TEST#1", GSI1PK: "TEST"}, "TEST")

	assert.Equal(t, "TEST#1", e.PK())
	assert.Equal(t, "TEST#1", e.SK())
	assert.Equal(t, "TEST", e.GSI1PK())
	assert.Equal(t, "", e.GSI1SK())
	assert.Equal(t, "TEST", e.Type())
	assert.False(t, e.CreatedAt().Before(before))
	assert.Equal(t, e.CreatedAt(), e.UpdatedAt())
}

func TestEntity_Fields(t *testing.T) {
	e := fixture.NewStudentEntity(store.NewSystemSchemas())
	assert.Equal(t, []string{"fn", "eml"}, e.Fields(fixture.FirstName, fixture.Email))
}

func TestEntity_ValidateReportsEveryFailure(t *testing.T) {
	e := fixture.NewStudentEntity(store.NewSystemSchemas())
	e.Set(fixture.Email, "nope")

	err := e.Validate()
	require.Error(t, err)

	var vErr *store.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Failed Validation", vErr.Message)

	fields := make([]string, 0, len(vErr.Errors))
	for _, fe := range vErr.Errors {
		fields = append(fields, fe.FieldName)
	}
	assert.Equal(t, []string{"pk", "sk", "firstName", "lastName", "email", "registered"}, fields)
	assert.Equal(t, 400, vErr.StatusCode())
}

func TestEntity_ValidateStudent(t *testing.T) {
	sys := store.NewSystemSchemas()
	e := fixture.NewStudent(sys, "Ada", "Lovelace", "ada@example.com", "ada", time.Now(), "")

	require.NoError(t, e.Validate())
	assert.NotEmpty(t, e.GetString(fixture.StudentID))
	assert.Equal(t, store.CreateKey(fixture.StudentType, e.GetString(fixture.StudentID)), e.PK())
}

func TestEntityAttribute(t *testing.T) {
	attr := store.NewEntityAttribute(fixture.Email, nil)
	assert.False(t, attr.IsSet())

	fe := attr.Validate()
	require.NotNil(t, fe)
	assert.Equal(t, "email", fe.FieldName)

	attr.SetValue("ada@example.com")
	assert.True(t, attr.IsSet())
	assert.Nil(t, attr.Validate())

	var nilTime *time.Time
	assert.False(t, store.NewEntityAttribute(fixture.Registered, nilTime).IsSet())
}
