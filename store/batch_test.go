package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onmiddleground/core-dynamo/internal/fixture"
	"github.com/onmiddleground/core-dynamo/internal/mocks"
	"github.com/onmiddleground/core-dynamo/store"
)

func studentPatterns(n int) []store.AccessPattern {
	aps := make([]store.AccessPattern, n)
	for i := range aps {
		aps[i] = fixture.StudentByID(fmt.Sprintf("s%d", i))
	}
	return aps
}

func TestBatchGetTemplate(t *testing.T) {
	dao := newTestDAO(t)

	in, err := dao.BatchGetTemplate(studentPatterns(2), "fn", "ln")
	require.NoError(t, err)

	req, ok := in.RequestItems[testTable]
	require.True(t, ok)
	assert.Equal(t, []map[string]types.AttributeValue{
		{"pk": sAttr("ST#s0"), "sk": sAttr("ST#s0")},
		{"pk": sAttr("ST#s1"), "sk": sAttr("ST#s1")},
	}, req.Keys)
	assert.Equal(t, "#fn, #ln", aws.ToString(req.ProjectionExpression))
	assert.Equal(t, map[string]string{"#fn": "fn", "#ln": "ln"}, req.ExpressionAttributeNames)
	assert.Equal(t, types.ReturnConsumedCapacityTotal, in.ReturnConsumedCapacity)
}

func TestBatchGetTemplate_Rejects(t *testing.T) {
	dao := newTestDAO(t)
	var vErr *store.ValidationError

	_, err := dao.BatchGetTemplate(nil)
	require.ErrorAs(t, err, &vErr)

	_, err = dao.BatchGetTemplate(studentPatterns(store.MaxBatchGetKeys + 1))
	assert.ErrorIs(t, err, store.ErrTooManyItems)

	_, err = dao.BatchGetTemplate([]store.AccessPattern{fixture.StudentByID("s1"), fixture.StudentTests("s1")})
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Errors, 1)
	assert.Equal(t, "accessPatterns[1]", vErr.Errors[0].FieldName)

	_, err = dao.BatchGetTemplate([]store.AccessPattern{fixture.Tests()})
	require.ErrorAs(t, err, &vErr)

	_, err = dao.BatchGetTemplate(studentPatterns(1), "first-name", "first_name")
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors[0].Message, "collides")
}

func TestDAO_BatchGet_Chunks(t *testing.T) {
	dao, client := newMockDAO(t)
	var sizes []int
	client.On("BatchGetItem", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*dynamodb.BatchGetItemInput)
			sizes = append(sizes, len(in.RequestItems[testTable].Keys))
		}).
		Return(&dynamodb.BatchGetItemOutput{
			Responses: map[string][]map[string]types.AttributeValue{testTable: {{"pk": sAttr("ST#x")}}},
		}, nil).Twice()

	resp, err := dao.BatchGet(context.Background(), studentPatterns(150))
	require.NoError(t, err)

	assert.Equal(t, []int{100, 50}, sizes)
	assert.Len(t, resp.Items, 2)
}

func TestDAO_BatchGet_RetriesUnprocessedKeys(t *testing.T) {
	dao, client := newMockDAO(t)
	pending := map[string]types.KeysAndAttributes{
		testTable: {Keys: []map[string]types.AttributeValue{{"pk": sAttr("ST#s1"), "sk": sAttr("ST#s1")}}},
	}

	client.On("BatchGetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchGetItemInput) bool {
		return len(in.RequestItems[testTable].Keys) == 2
	}), mock.Anything).Return(&dynamodb.BatchGetItemOutput{
		Responses:       map[string][]map[string]types.AttributeValue{testTable: {{"pk": sAttr("ST#s0")}}},
		UnprocessedKeys: pending,
	}, nil).Once()
	client.On("BatchGetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchGetItemInput) bool {
		return len(in.RequestItems[testTable].Keys) == 1
	}), mock.Anything).Return(&dynamodb.BatchGetItemOutput{
		Responses: map[string][]map[string]types.AttributeValue{testTable: {{"pk": sAttr("ST#s1")}}},
	}, nil).Once()

	resp, err := dao.BatchGet(context.Background(), studentPatterns(2))
	require.NoError(t, err)
	assert.Equal(t, []map[string]types.AttributeValue{{"pk": sAttr("ST#s0")}, {"pk": sAttr("ST#s1")}}, resp.Items)
}

func TestDAO_BatchGet_GivesUp(t *testing.T) {
	client := new(mocks.MockClient)
	cfg := store.DefaultConfig(testTable)
	cfg.MaxBatchRetries = 1
	dao := store.New(client, cfg, nil)

	client.On("BatchGetItem", mock.Anything, mock.Anything, mock.Anything).Return(&dynamodb.BatchGetItemOutput{
		UnprocessedKeys: map[string]types.KeysAndAttributes{
			testTable: {Keys: []map[string]types.AttributeValue{{"pk": sAttr("ST#s0"), "sk": sAttr("ST#s0")}}},
		},
	}, nil).Twice()

	_, err := dao.BatchGet(context.Background(), studentPatterns(1))

	var daoErr *store.DAOError
	require.ErrorAs(t, err, &daoErr)
	assert.Equal(t, 503, daoErr.StatusCode())
	client.AssertExpectations(t)
}

func TestDAO_BatchGet_Cancelled(t *testing.T) {
	dao, client := newMockDAO(t)
	ctx, cancel := context.WithCancel(context.Background())

	client.On("BatchGetItem", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&dynamodb.BatchGetItemOutput{
			UnprocessedKeys: map[string]types.KeysAndAttributes{
				testTable: {Keys: []map[string]types.AttributeValue{{"pk": sAttr("ST#s0"), "sk": sAttr("ST#s0")}}},
			},
		}, nil).Once()

	_, err := dao.BatchGet(ctx, studentPatterns(1))
	assert.ErrorIs(t, err, context.Canceled)
}
