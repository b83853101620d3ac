package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DAO compiles access patterns and entities into DynamoDB requests and
// executes them against a single table. It is safe for concurrent use.
type DAO struct {
	client Client
	config Config
	logger *zap.Logger
	mapper *Mapper
}

// New creates a new DAO. A nil logger discards all logging.
func New(client Client, config Config, logger *zap.Logger) *DAO {
	config.validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("table", config.TableName))
	logger.Debug("dao initialized",
		zap.String("endpoint", describeEndpoint(config)),
		zap.Int32("maxLimit", config.MaxLimit),
	)
	return &DAO{
		client: client,
		config: config,
		logger: logger,
		mapper: NewMapper(logger),
	}
}

// Config returns the effective configuration.
func (d *DAO) Config() Config { return d.config }

// Schemas returns the system schemas entities of this DAO are built with.
func (d *DAO) Schemas() *SystemSchemas { return d.config.Schemas }

// Mapper returns the record mapper sharing the DAO's logger.
func (d *DAO) Mapper() *Mapper { return d.mapper }

// NewEntity creates an entity over the DAO's system schemas.
func (d *DAO) NewEntity(schemas ...*AttributeSchema) *Entity {
	return NewEntity(d.config.Schemas, schemas...)
}

// Query executes a compiled query and maps the result. A missing table is
// reported as a *NotFoundError.
func (d *DAO) Query(ctx context.Context, input *dynamodb.QueryInput, ap AccessPattern) (*ServiceResponse, error) {
	out, err := d.client.Query(ctx, input)
	if err != nil {
		d.logger.Error("query failed",
			zap.String("index", ap.IndexName()),
			zap.String("keyCondition", aws.ToString(input.KeyConditionExpression)),
			zap.Error(err),
		)
		return nil, classifyError(err, "Query Failed")
	}
	if out != nil && out.ConsumedCapacity != nil {
		d.logger.Debug("query consumed capacity",
			zap.Float64("capacityUnits", aws.ToFloat64(out.ConsumedCapacity.CapacityUnits)),
			zap.Int32("count", out.Count),
		)
	}
	return MapResponse(out, ap)
}

// Find compiles ap with opts and executes the query.
func (d *DAO) Find(ctx context.Context, ap AccessPattern, opts QueryOptions) (*ServiceResponse, error) {
	input, err := d.FindByAccessPattern(ap, opts)
	if err != nil {
		return nil, err
	}
	return d.Query(ctx, input, ap)
}

// FindByPrimaryKey fetches the item whose pk and sk both equal
// CreateKey(entityType, id).
func (d *DAO) FindByPrimaryKey(ctx context.Context, id, entityType string, opts QueryOptions) (*ServiceResponse, error) {
	key := CreateKey(entityType, id)
	sys := d.config.Schemas
	ap := NewAccessPattern(
		NewPartitionKey(sys.PK.alias, OpEQ, key),
		AccessPatternOptions{SortKey: NewSortKey(sys.SK.alias, OpEQ, key)},
	)
	return d.Find(ctx, ap, opts)
}

// Create puts e if no item with its partition key exists yet.
func (d *DAO) Create(ctx context.Context, e *Entity, opts CreateOptions) (*ServiceResponse, error) {
	input, err := d.CreateTemplate(e, opts)
	if err != nil {
		return nil, err
	}

	if _, err := d.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, &DAOError{
				Message: "Item Already Exists",
				Code:    http.StatusConflict,
				Err:     fmt.Errorf("%w: pk=%s sk=%s", ErrAlreadyExists, e.PK(), e.SK()),
			}
		}
		d.logger.Error("create failed", zap.String("pk", e.PK()), zap.String("sk", e.SK()), zap.Error(err))
		return nil, classifyError(err, "Create Failed")
	}

	resp := NewSuccessResponse([]map[string]types.AttributeValue{input.Item})
	resp.Message = "Created"
	return resp, nil
}

// Update applies attrs to an existing item. A missing item is a *NotFoundError.
func (d *DAO) Update(ctx context.Context, pk, sk KeyPair, attrs []*EntityAttribute) (*ServiceResponse, error) {
	input, err := d.UpdateTemplate(pk, sk, attrs)
	if err != nil {
		return nil, err
	}

	out, err := d.client.UpdateItem(ctx, input)
	if err != nil {
		return nil, d.updateError(err, pk, sk)
	}

	resp := NewSuccessResponse(nil)
	if out != nil && len(out.Attributes) > 0 {
		resp.AddItems(out.Attributes)
	}
	resp.Message = "Updated"
	return resp, nil
}

// UpdateCount executes IncDecCount.
func (d *DAO) UpdateCount(ctx context.Context, pk, sk KeyPair, fieldName string, increment bool) (*ServiceResponse, error) {
	out, err := d.client.UpdateItem(ctx, d.IncDecCount(pk, sk, fieldName, increment))
	if err != nil {
		return nil, d.updateError(err, pk, sk)
	}

	resp := NewSuccessResponse(nil)
	if out != nil && len(out.Attributes) > 0 {
		resp.AddItems(out.Attributes)
	}
	return resp, nil
}

func (d *DAO) updateError(err error, pk, sk KeyPair) error {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return &NotFoundError{Message: fmt.Sprintf("no item with %s=%s", pk.KeyName, pk.KeyValue), Err: err}
	}
	d.logger.Error("update failed", zap.String("pk", pk.KeyValue), zap.String("sk", sk.KeyValue), zap.Error(err))
	return classifyError(err, "Update Failed")
}

// Delete removes the item keyed by pk and sk. The response is 404 when there
// was nothing to delete and 200 with the prior attributes as JSON otherwise.
func (d *DAO) Delete(ctx context.Context, pk, sk KeyPair, conditionalFields ...string) (*ServiceResponse, error) {
	out, err := d.client.DeleteItem(ctx, d.DeleteParams(pk, sk, conditionalFields...))
	if err != nil {
		d.logger.Error("delete failed", zap.String("pk", pk.KeyValue), zap.String("sk", sk.KeyValue), zap.Error(err))
		return nil, classifyError(err, "Delete Failed")
	}

	if out == nil || len(out.Attributes) == 0 {
		return &ServiceResponse{StatusCode: http.StatusNotFound, Message: "Not found"}, nil
	}

	plain, err := FromWireMap(out.Attributes)
	if err != nil {
		return nil, HandleError(err, "Delete Failed", 0)
	}
	body, err := json.Marshal(plain)
	if err != nil {
		return nil, HandleError(err, "Delete Failed", 0)
	}

	resp := NewSuccessResponse([]map[string]types.AttributeValue{out.Attributes})
	resp.Message = string(body)
	return resp, nil
}

// TableMetadata describes the configured table.
func (d *DAO) TableMetadata(ctx context.Context) (*types.TableDescription, error) {
	out, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.config.TableName),
	})
	if err != nil {
		return nil, &NotFoundError{Message: fmt.Sprintf("table %s", d.config.TableName), Err: err}
	}
	return out.Table, nil
}

// TableExists reports whether the configured table exists. Failures other
// than a missing table are returned.
func (d *DAO) TableExists(ctx context.Context) (bool, error) {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.config.TableName),
	})
	if err == nil {
		return true, nil
	}

	classified := classifyError(err, "Describe Table Failed")
	var notFound *NotFoundError
	if errors.As(classified, &notFound) {
		return false, nil
	}
	return false, classified
}
