package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// MaxTransactionItems is the largest transaction the store accepts.
const MaxTransactionItems = 100

// TransactionKind is the operation a TransactionItem performs.
type TransactionKind int

// Transaction item kinds.
const (
	TxPut TransactionKind = iota + 1
	TxUpdate
	TxDelete
	TxConditionCheck
)

// String returns the kind in upper case.
func (k TransactionKind) String() string {
	switch k {
	case TxPut:
		return "PUT"
	case TxUpdate:
		return "UPDATE"
	case TxDelete:
		return "DELETE"
	case TxConditionCheck:
		return "CONDITION_CHECK"
	default:
		return "UNKNOWN"
	}
}

// TransactionItem is one compiled write inside a transaction.
type TransactionItem struct {
	Kind   TransactionKind
	put    *dynamodb.PutItemInput
	update *dynamodb.UpdateItemInput
	del    *dynamodb.DeleteItemInput
	check  *types.ConditionCheck
}

// PutTransactionItem wraps a compiled put, usually from CreateTemplate.
func PutTransactionItem(in *dynamodb.PutItemInput) TransactionItem {
	return TransactionItem{Kind: TxPut, put: in}
}

// UpdateTransactionItem wraps a compiled update.
func UpdateTransactionItem(in *dynamodb.UpdateItemInput) TransactionItem {
	return TransactionItem{Kind: TxUpdate, update: in}
}

// DeleteTransactionItem wraps a compiled delete.
func DeleteTransactionItem(in *dynamodb.DeleteItemInput) TransactionItem {
	return TransactionItem{Kind: TxDelete, del: in}
}

// ConditionCheckItem wraps a condition that must hold for the transaction to apply.
func ConditionCheckItem(check *types.ConditionCheck) TransactionItem {
	return TransactionItem{Kind: TxConditionCheck, check: check}
}

// BuildTransaction assembles items into one atomic write, preserving order.
func BuildTransaction(items []TransactionItem) (*dynamodb.TransactWriteItemsInput, error) {
	if len(items) == 0 {
		return nil, &ValidationError{
			Message: "Invalid Transaction",
			Errors:  []FieldError{{FieldName: "items", Message: "a transaction needs at least one item"}},
		}
	}
	if len(items) > MaxTransactionItems {
		return nil, &ValidationError{
			Message: "Invalid Transaction",
			Errors: []FieldError{{
				FieldName: "items",
				Message:   fmt.Sprintf("a transaction holds at most %d items, got %d", MaxTransactionItems, len(items)),
			}},
			Err: ErrTooManyItems,
		}
	}

	writes := make([]types.TransactWriteItem, 0, len(items))
	var failures []FieldError
	for i, item := range items {
		w, ok := item.toWrite()
		if !ok {
			failures = append(failures, FieldError{
				FieldName: fmt.Sprintf("items[%d]", i),
				Message:   fmt.Sprintf("%s item has no compiled request", item.Kind),
			})
			continue
		}
		writes = append(writes, w)
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Message: "Invalid Transaction", Errors: failures}
	}

	return &dynamodb.TransactWriteItemsInput{
		TransactItems:          writes,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}, nil
}

func (t TransactionItem) toWrite() (types.TransactWriteItem, bool) {
	switch t.Kind {
	case TxPut:
		if t.put == nil {
			return types.TransactWriteItem{}, false
		}
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                 t.put.TableName,
			Item:                      t.put.Item,
			ConditionExpression:       t.put.ConditionExpression,
			ExpressionAttributeNames:  t.put.ExpressionAttributeNames,
			ExpressionAttributeValues: t.put.ExpressionAttributeValues,
		}}, true
	case TxUpdate:
		if t.update == nil {
			return types.TransactWriteItem{}, false
		}
		return types.TransactWriteItem{Update: &types.Update{
			TableName:                 t.update.TableName,
			Key:                       t.update.Key,
			UpdateExpression:          t.update.UpdateExpression,
			ConditionExpression:       t.update.ConditionExpression,
			ExpressionAttributeNames:  t.update.ExpressionAttributeNames,
			ExpressionAttributeValues: t.update.ExpressionAttributeValues,
		}}, true
	case TxDelete:
		if t.del == nil {
			return types.TransactWriteItem{}, false
		}
		return types.TransactWriteItem{Delete: &types.Delete{
			TableName:                 t.del.TableName,
			Key:                       t.del.Key,
			ConditionExpression:       t.del.ConditionExpression,
			ExpressionAttributeNames:  t.del.ExpressionAttributeNames,
			ExpressionAttributeValues: t.del.ExpressionAttributeValues,
		}}, true
	case TxConditionCheck:
		if t.check == nil {
			return types.TransactWriteItem{}, false
		}
		return types.TransactWriteItem{ConditionCheck: t.check}, true
	default:
		return types.TransactWriteItem{}, false
	}
}

// Transaction executes items as one all-or-nothing write. When a member's
// condition fails the error wraps ErrConditionFailed and names its index.
func (d *DAO) Transaction(ctx context.Context, items []TransactionItem) (*ServiceResponse, error) {
	input, err := BuildTransaction(items)
	if err != nil {
		return nil, err
	}

	if _, err := d.client.TransactWriteItems(ctx, input); err != nil {
		d.logger.Error("transaction failed", zap.Int("items", len(items)), zap.Error(err))
		return nil, mapTransactionError(err)
	}

	return &ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("%d items written", len(items)),
	}, nil
}

// IncrementCount returns a transaction item adding one to fieldName.
func (d *DAO) IncrementCount(pk, sk KeyPair, fieldName string) TransactionItem {
	return UpdateTransactionItem(d.IncDecCount(pk, sk, fieldName, true))
}

// DecrementCount returns a transaction item subtracting one from fieldName.
func (d *DAO) DecrementCount(pk, sk KeyPair, fieldName string) TransactionItem {
	return UpdateTransactionItem(d.IncDecCount(pk, sk, fieldName, false))
}
