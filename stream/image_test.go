package stream

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertImage_AllDataTypes(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"s":    events.NewStringAttribute("value"),
		"n":    events.NewNumberAttribute("42"),
		"b":    events.NewBinaryAttribute([]byte{1, 2}),
		"bool": events.NewBooleanAttribute(true),
		"null": events.NewNullAttribute(),
		"ss":   events.NewStringSetAttribute([]string{"a", "b"}),
		"ns":   events.NewNumberSetAttribute([]string{"1", "2.5"}),
		"bs":   events.NewBinarySetAttribute([][]byte{{1}, {2}}),
		"l": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewStringAttribute("x"),
			events.NewNumberAttribute("7"),
		}),
		"m": events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
			"inner": events.NewStringAttribute("y"),
		}),
	}

	out, err := ConvertImage(image)
	require.NoError(t, err)
	require.Len(t, out, len(image))

	assert.Equal(t, &types.AttributeValueMemberS{Value: "value"}, out["s"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "42"}, out["n"])
	assert.Equal(t, &types.AttributeValueMemberB{Value: []byte{1, 2}}, out["b"])
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, out["bool"])
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, out["null"])
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"a", "b"}}, out["ss"])
	assert.Equal(t, &types.AttributeValueMemberNS{Value: []string{"1", "2.5"}}, out["ns"])
	assert.Equal(t, &types.AttributeValueMemberBS{Value: [][]byte{{1}, {2}}}, out["bs"])
	assert.Equal(t, &types.AttributeValueMemberL{Value: []types.AttributeValue{
		&types.AttributeValueMemberS{Value: "x"},
		&types.AttributeValueMemberN{Value: "7"},
	}}, out["l"])
	assert.Equal(t, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		"inner": &types.AttributeValueMemberS{Value: "y"},
	}}, out["m"])
}

func TestConvertImage_Empty(t *testing.T) {
	out, err := ConvertImage(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = ConvertImage(map[string]events.DynamoDBAttributeValue{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestConvertImage_EmptyNestedMap(t *testing.T) {
	out, err := ConvertImage(map[string]events.DynamoDBAttributeValue{
		"m": events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{}),
	})
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}}, out["m"])
}

func TestStringAttr(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"typ":   events.NewStringAttribute("ST"),
		"count": events.NewNumberAttribute("3"),
		"empty": events.NewStringAttribute(""),
	}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"string", "typ", "ST"},
		{"missing", "other", ""},
		{"not a string", "count", ""},
		{"empty string", "empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringAttr(image, tt.key))
		})
	}

	assert.Equal(t, "", stringAttr(nil, "typ"))
}
