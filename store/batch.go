package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// MaxBatchGetKeys is the largest key set one BatchGetItem request accepts.
const MaxBatchGetKeys = 100

// batchRetryBase is the first backoff before resending unprocessed keys.
var batchRetryBase = 50 * time.Millisecond

// idxRange is the half-open bound [low, high) of one chunk.
type idxRange struct {
	low, high int
}

// chunks splits a collection of n elements into ranges of at most size.
func chunks(n, size int) []idxRange {
	if size <= 0 || n <= 0 {
		return nil
	}
	out := make([]idxRange, 0, (n+size-1)/size)
	for low := 0; low < n; low += size {
		high := low + size
		if high > n {
			high = n
		}
		out = append(out, idxRange{low: low, high: high})
	}
	return out
}

// BatchGetTemplate compiles a batch get of the items each access pattern
// addresses. Every pattern needs an equality partition key and an equality sort key.
func (d *DAO) BatchGetTemplate(aps []AccessPattern, fields ...string) (*dynamodb.BatchGetItemInput, error) {
	if len(aps) == 0 {
		return nil, &ValidationError{
			Message: "Invalid Batch Get",
			Errors:  []FieldError{{FieldName: "accessPatterns", Message: "at least one access pattern is required"}},
		}
	}
	if len(aps) > MaxBatchGetKeys {
		return nil, &ValidationError{
			Message: "Invalid Batch Get",
			Errors: []FieldError{{
				FieldName: "accessPatterns",
				Message:   fmt.Sprintf("a batch get holds at most %d keys, got %d", MaxBatchGetKeys, len(aps)),
			}},
			Err: ErrTooManyItems,
		}
	}

	var failures []FieldError
	keys := make([]map[string]types.AttributeValue, 0, len(aps))
	for i, ap := range aps {
		sk, ok := ap.SortKey()
		if !ok || ap.partition.op != OpEQ || sk.op != OpEQ {
			failures = append(failures, FieldError{
				FieldName: fmt.Sprintf("accessPatterns[%d]", i),
				Message:   "batch get needs an equality partition key and an equality sort key",
			})
			continue
		}
		if err := ap.Validate(); err != nil {
			failures = append(failures, err.(*ValidationError).Errors...)
			continue
		}
		keys = append(keys, keyItem(
			KeyPair{KeyName: ap.partition.keyName, KeyValue: ap.partition.value1},
			KeyPair{KeyName: sk.keyName, KeyValue: sk.value1},
		))
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Message: "Invalid Batch Get", Errors: failures}
	}

	request := types.KeysAndAttributes{Keys: keys}
	if len(fields) > 0 {
		names := make(map[string]string, len(fields))
		projected := make([]string, 0, len(fields))
		for _, f := range fields {
			ph := "#" + placeholder(f)
			if err := bindName(names, ph, f); err != nil {
				return nil, err
			}
			projected = append(projected, ph)
		}
		request.ProjectionExpression = aws.String(strings.Join(projected, ", "))
		request.ExpressionAttributeNames = names
	}

	return &dynamodb.BatchGetItemInput{
		RequestItems:           map[string]types.KeysAndAttributes{d.config.TableName: request},
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}, nil
}

// BatchGet fetches every item addressed by aps, splitting into requests of
// MaxBatchGetKeys and resending unprocessed keys with backoff.
func (d *DAO) BatchGet(ctx context.Context, aps []AccessPattern, fields ...string) (*ServiceResponse, error) {
	if len(aps) == 0 {
		_, err := d.BatchGetTemplate(aps, fields...)
		return nil, err
	}

	resp := NewEmptyResponse()
	for _, r := range chunks(len(aps), MaxBatchGetKeys) {
		input, err := d.BatchGetTemplate(aps[r.low:r.high], fields...)
		if err != nil {
			return nil, err
		}
		items, err := d.batchGet(ctx, input)
		if err != nil {
			return nil, err
		}
		resp.AddItems(items...)
	}
	return resp, nil
}

func (d *DAO) batchGet(ctx context.Context, input *dynamodb.BatchGetItemInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	request := input
	for attempt := 0; ; attempt++ {
		out, err := d.client.BatchGetItem(ctx, request)
		if err != nil {
			d.logger.Error("batch get failed", zap.Error(err))
			return nil, classifyError(err, "Batch Get Failed")
		}
		items = append(items, out.Responses[d.config.TableName]...)

		pending, ok := out.UnprocessedKeys[d.config.TableName]
		if !ok || len(pending.Keys) == 0 {
			return items, nil
		}
		if attempt >= d.config.MaxBatchRetries {
			d.logger.Warn("giving up on unprocessed keys",
				zap.Int("unprocessed", len(pending.Keys)),
				zap.Int("attempts", attempt+1),
			)
			return nil, &DAOError{
				Message: fmt.Sprintf("Batch Get Incomplete: %d keys unprocessed", len(pending.Keys)),
				Code:    http.StatusServiceUnavailable,
			}
		}

		d.logger.Warn("retrying unprocessed keys",
			zap.Int("unprocessed", len(pending.Keys)),
			zap.Int("attempt", attempt+1),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(batchRetryBase << attempt):
		}

		request = &dynamodb.BatchGetItemInput{
			RequestItems:           out.UnprocessedKeys,
			ReturnConsumedCapacity: input.ReturnConsumedCapacity,
		}
	}
}
