package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ShardPatternFunc builds the access pattern for one sharded partition value.
type ShardPatternFunc func(partitionValue string) AccessPattern

// FindAcrossShards queries every shard of base concurrently, reads each one
// to the end and returns the items in shard order. Items written with
// ShardedKey(base, id, numShards) are all found. The pagination token in opts
// is ignored.
func (d *DAO) FindAcrossShards(ctx context.Context, base string, numShards int, build ShardPatternFunc, opts QueryOptions) (*ServiceResponse, error) {
	partitions := ShardKeys(base, numShards)
	opts.NextPageToken = ""

	// Fast path for single shard
	if len(partitions) == 1 {
		items, err := d.queryAll(ctx, build(partitions[0]), opts)
		if err != nil {
			return nil, err
		}
		return NewSuccessResponse(items), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]map[string]types.AttributeValue, len(partitions))
	errs := make(chan error, len(partitions))
	var wg sync.WaitGroup

	for i, pk := range partitions {
		wg.Add(1)
		go func(i int, pk string) {
			defer wg.Done()

			items, err := d.queryAll(ctx, build(pk), opts)
			if err != nil {
				errs <- fmt.Errorf("shard %s: %w", pk, err)
				cancel()
				return
			}
			results[i] = items
		}(i, pk)
	}

	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		d.logger.Error("sharded query failed", zap.String("base", base), zap.Error(err))
		return nil, err
	}

	resp := NewEmptyResponse()
	for _, items := range results {
		resp.AddItems(items...)
	}
	return resp, nil
}

// queryAll pages through every result of ap.
func (d *DAO) queryAll(ctx context.Context, ap AccessPattern, opts QueryOptions) ([]map[string]types.AttributeValue, error) {
	input, err := d.FindByAccessPattern(ap, opts)
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError(err, "Query Failed")
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
