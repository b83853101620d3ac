// Package stream dispatches DynamoDB Streams events for single-table items to
// callbacks registered per entity type.
package stream

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/onmiddleground/core-dynamo/store"
)

// Stream event names.
const (
	EventInsert = "INSERT"
	EventModify = "MODIFY"
	EventRemove = "REMOVE"
)

// Change is one decoded stream record. Images are nil when the stream view
// type does not carry them, e.g. NewImage on REMOVE.
type Change struct {
	EventID    string
	EventName  string
	EntityType string
	Keys       map[string]types.AttributeValue
	NewItem    map[string]types.AttributeValue
	OldItem    map[string]types.AttributeValue

	// NewImage and OldImage are the items mapped through the entity's schemas,
	// keyed by full attribute name. Key columns are kept.
	NewImage store.Record
	OldImage store.Record
}

// ChangeFunc handles one change. A returned error fails the batch so Lambda
// retries it.
type ChangeFunc func(ctx context.Context, change Change) error

type route struct {
	newEntity func() *store.Entity
	fn        ChangeFunc
}

// Handler routes stream records by their TYPE attribute.
type Handler struct {
	sys    *store.SystemSchemas
	mapper *store.Mapper
	logger *zap.Logger
	routes map[string]route
}

// NewHandler creates a new stream handler. A nil sys uses the default system
// schemas and a nil logger discards logging.
func NewHandler(sys *store.SystemSchemas, logger *zap.Logger) *Handler {
	if sys == nil {
		sys = store.NewSystemSchemas()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sys:    sys,
		mapper: store.NewMapper(logger),
		logger: logger,
		routes: make(map[string]route),
	}
}

// Register routes records of entityType to fn. newEntity supplies the schemas
// used to map images. Register every type before the first Handle call.
func (h *Handler) Register(entityType string, newEntity func() *store.Entity, fn ChangeFunc) {
	h.routes[entityType] = route{newEntity: newEntity, fn: fn}
}

// Handle processes a batch of stream records in order and stops at the first
// failure. It is designed to be used as an AWS Lambda handler.
func (h *Handler) Handle(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				zap.String("eventID", record.EventID),
				zap.String("eventName", record.EventName),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	typeAlias := h.sys.Type.Alias()
	entityType := stringAttr(record.Change.NewImage, typeAlias)
	if entityType == "" {
		entityType = stringAttr(record.Change.OldImage, typeAlias)
	}

	r, ok := h.routes[entityType]
	if !ok {
		h.logger.Debug("skipping unregistered entity type",
			zap.String("eventID", record.EventID),
			zap.String("type", entityType),
		)
		return nil
	}

	change := Change{
		EventID:    record.EventID,
		EventName:  record.EventName,
		EntityType: entityType,
	}

	var err error
	if change.Keys, err = ConvertImage(record.Change.Keys); err != nil {
		return fmt.Errorf("convert keys: %w", err)
	}
	if change.NewItem, err = ConvertImage(record.Change.NewImage); err != nil {
		return fmt.Errorf("convert new image: %w", err)
	}
	if change.OldItem, err = ConvertImage(record.Change.OldImage); err != nil {
		return fmt.Errorf("convert old image: %w", err)
	}

	scratch := r.newEntity()
	opts := store.ConvertOptions{KeepKeyColumns: true}
	if change.NewItem != nil {
		if change.NewImage, err = h.mapper.ToRecord(scratch, change.NewItem, opts); err != nil {
			return fmt.Errorf("map new image: %w", err)
		}
	}
	if change.OldItem != nil {
		if change.OldImage, err = h.mapper.ToRecord(scratch, change.OldItem, opts); err != nil {
			return fmt.Errorf("map old image: %w", err)
		}
	}

	h.logger.Debug("dispatching change",
		zap.String("eventID", record.EventID),
		zap.String("eventName", record.EventName),
		zap.String("type", entityType),
	)
	return r.fn(ctx, change)
}
