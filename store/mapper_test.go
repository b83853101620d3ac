package store_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/onmiddleground/core-dynamo/internal/fixture"
	"github.com/onmiddleground/core-dynamo/store"
)

func testItem(id, name string, extra map[string]types.AttributeValue) map[string]types.AttributeValue {
	key := store.CreateKey(fixture.TestType, id)
	item := map[string]types.AttributeValue{
		"pk":      &types.AttributeValueMemberS{Value: key},
		"sk":      &types.AttributeValueMemberS{Value: key},
		"GSI1pk":  &types.AttributeValueMemberS{Value: fixture.TestType},
		"GSI1sk":  &types.AttributeValueMemberS{Value: key},
		"typ":     &types.AttributeValueMemberS{Value: fixture.TestType},
		"testid":  &types.AttributeValueMemberS{Value: id},
		"nm":      &types.AttributeValueMemberS{Value: name},
		"passmrk": &types.AttributeValueMemberN{Value: "70"},
	}
	for k, v := range extra {
		item[k] = v
	}
	return item
}

func newTestEntityFunc(sys *store.SystemSchemas) func() *store.Entity {
	return func() *store.Entity { return fixture.NewTestEntity(sys) }
}

func TestConvertToPlainRecords(t *testing.T) {
	sys := store.NewSystemSchemas()
	m := store.NewMapper(nil)
	resp := store.NewSuccessResponse([]map[string]types.AttributeValue{
		testItem("1", "Algebra", nil),
		testItem("2", "Geometry", nil),
	})
	resp.NextToken = "tok"

	out, err := m.ConvertToPlainRecords(newTestEntityFunc(sys), resp, store.ConvertOptions{})
	require.NoError(t, err)

	assert.Equal(t, 200, out.StatusCode)
	assert.Equal(t, "tok", out.NextToken)
	require.Len(t, out.Records, 2)
	assert.Equal(t, store.Record{
		"type":        fixture.TestType,
		"testid":      "1",
		"name":        "Algebra",
		"passingMark": int64(70),
	}, out.Records[0])
}

func TestConvertToPlainRecords_KeepKeyColumns(t *testing.T) {
	sys := store.NewSystemSchemas()
	m := store.NewMapper(nil)
	resp := store.NewSuccessResponse([]map[string]types.AttributeValue{testItem("1", "Algebra", nil)})

	out, err := m.ConvertToPlainRecords(newTestEntityFunc(sys), resp, store.ConvertOptions{KeepKeyColumns: true})
	require.NoError(t, err)

	rec := out.Records[0]
	assert.Equal(t, "TEST#1", rec["pk"])
	assert.Equal(t, "TEST#1", rec["sk"])
	assert.Equal(t, "TEST", rec["GSI1pk"])
	assert.Equal(t, "TEST#1", rec["GSI1sk"])
}

func TestConvertToPlainRecords_NumberDefaults(t *testing.T) {
	sys := store.NewSystemSchemas()
	m := store.NewMapper(nil)
	item := testItem("1", "Algebra", map[string]types.AttributeValue{
		"likcnt": &types.AttributeValueMemberNULL{Value: true},
	})
	resp := store.NewSuccessResponse([]map[string]types.AttributeValue{item})

	out, err := m.ConvertToPlainRecords(newTestEntityFunc(sys), resp, store.ConvertOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Records[0]["likeCount"])

	out, err = m.ConvertToPlainRecords(newTestEntityFunc(sys), resp, store.ConvertOptions{NoNullDefaults: true})
	require.NoError(t, err)
	assert.Contains(t, out.Records[0], "likeCount")
	assert.Nil(t, out.Records[0]["likeCount"])
}

func TestConvertToPlainRecords_UnknownFieldsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := store.NewMapper(zap.New(core))
	item := testItem("1", "Algebra", map[string]types.AttributeValue{
		"zzz": &types.AttributeValueMemberS{Value: "mystery"},
	})

	out, err := m.ConvertToPlainRecords(newTestEntityFunc(store.NewSystemSchemas()),
		store.NewSuccessResponse([]map[string]types.AttributeValue{item}), store.ConvertOptions{})
	require.NoError(t, err)

	assert.NotContains(t, out.Records[0], "zzz")
	entries := logs.FilterMessage("dropping unknown field").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "zzz", entries[0].ContextMap()["field"])
}

func TestConvertToPlainRecords_Filter(t *testing.T) {
	m := store.NewMapper(nil)
	resp := store.NewSuccessResponse([]map[string]types.AttributeValue{
		testItem("1", "Algebra", nil),
		testItem("2", "Geometry", nil),
	})

	out, err := m.ConvertToPlainRecords(newTestEntityFunc(store.NewSystemSchemas()), resp, store.ConvertOptions{
		Filter: func(r store.Record) bool { return r["name"] == "Geometry" },
	})
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "2", out.Records[0]["testid"])
}

func TestConvertToPlainRecords_EmptyAndNil(t *testing.T) {
	m := store.NewMapper(nil)
	newEntity := newTestEntityFunc(store.NewSystemSchemas())

	out, err := m.ConvertToPlainRecords(newEntity, store.NewEmptyResponse(), store.ConvertOptions{})
	require.NoError(t, err)
	assert.Equal(t, 204, out.StatusCode)
	assert.Equal(t, "No Data", out.Message)

	_, err = m.ConvertToPlainRecords(newEntity, nil, store.ConvertOptions{})
	var daoErr *store.DAOError
	assert.ErrorAs(t, err, &daoErr)
}

func TestToRecord_BadNumber(t *testing.T) {
	m := store.NewMapper(nil)
	item := testItem("1", "Algebra", map[string]types.AttributeValue{
		"passmrk": &types.AttributeValueMemberN{Value: "oops"},
	})

	_, err := m.ToRecord(fixture.NewTestEntity(store.NewSystemSchemas()), item, store.ConvertOptions{})
	var daoErr *store.DAOError
	assert.ErrorAs(t, err, &daoErr)
}
