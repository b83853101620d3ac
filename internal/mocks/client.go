// Package mocks provides a testify mock of the DynamoDB operations the store
// package calls. MockClient satisfies store.Client; the store tests assert
// this at compile time.
//
// Example usage:
//
//	client := new(mocks.MockClient)
//	client.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)
//	dao := store.New(client, store.DefaultConfig("table"), nil)
package mocks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/mock"
)

// MockClient records every call and answers with the values given to On.
// Return a nil output to simulate a failed call.
type MockClient struct {
	mock.Mock
}

// output unpacks the (output, error) pair configured for a call. A non-nil
// output of the wrong type is a broken expectation and panics.
func output[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	out, ok := args.Get(0).(*T)
	if !ok {
		panic(fmt.Sprintf("mocks: expected %T, got %T", out, args.Get(0)))
	}
	return out, args.Error(1)
}

// Query records a query.
func (m *MockClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return output[dynamodb.QueryOutput](m.Called(ctx, params, optFns))
}

// PutItem records a put, as issued by DAO.Create.
func (m *MockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return output[dynamodb.PutItemOutput](m.Called(ctx, params, optFns))
}

// UpdateItem records an update or counter change.
func (m *MockClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return output[dynamodb.UpdateItemOutput](m.Called(ctx, params, optFns))
}

// DeleteItem records a delete.
func (m *MockClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return output[dynamodb.DeleteItemOutput](m.Called(ctx, params, optFns))
}

// TransactWriteItems records a transaction.
func (m *MockClient) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	return output[dynamodb.TransactWriteItemsOutput](m.Called(ctx, params, optFns))
}

// BatchGetItem records one batch-get round, including retries of unprocessed keys.
func (m *MockClient) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	return output[dynamodb.BatchGetItemOutput](m.Called(ctx, params, optFns))
}

// DescribeTable records a table lookup.
func (m *MockClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return output[dynamodb.DescribeTableOutput](m.Called(ctx, params, optFns))
}
