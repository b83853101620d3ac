package store

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ConvertOptions tunes ConvertToPlainRecords. The zero value strips key
// columns and defaults non-numeric NUMBER values to zero.
type ConvertOptions struct {
	// KeepKeyColumns keeps PK, SK, GSI1PK and GSI1SK in the output.
	KeepKeyColumns bool

	// NoNullDefaults leaves NUMBER fields nil instead of 0 when the wire value
	// is not a number.
	NoNullDefaults bool

	// Filter drops records for which it returns false.
	Filter func(Record) bool
}

// Mapper converts raw items into records using entity schemas.
type Mapper struct {
	logger *zap.Logger
}

// NewMapper creates a Mapper. A nil logger discards diagnostics.
func NewMapper(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{logger: logger}
}

// ConvertToPlainRecords maps every raw item in resp onto records keyed by full
// attribute name, looking fields up by alias on a scratch entity from newEntity.
// Unknown fields are logged and dropped. An empty result yields 204.
func (m *Mapper) ConvertToPlainRecords(newEntity func() *Entity, resp *ServiceResponse, opts ConvertOptions) (*ServiceResponse, error) {
	if resp == nil {
		return nil, &DAOError{Message: "Dynamo Service Failed", Code: http.StatusInternalServerError}
	}

	records, err := m.ToRecords(newEntity, resp.Items, opts)
	if err != nil {
		return nil, err
	}

	out := &ServiceResponse{
		StatusCode: resp.StatusCode,
		Items:      resp.Items,
		Records:    records,
		NextToken:  resp.NextToken,
		Message:    resp.Message,
	}
	if len(records) == 0 {
		out.StatusCode = http.StatusNoContent
		out.Message = "No Data"
	}
	return out, nil
}

// ToRecords converts raw items without a response envelope.
func (m *Mapper) ToRecords(newEntity func() *Entity, items []map[string]types.AttributeValue, opts ConvertOptions) ([]Record, error) {
	scratch := newEntity()
	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := m.ToRecord(scratch, item, opts)
		if err != nil {
			return nil, err
		}
		if opts.Filter != nil && !opts.Filter(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ToRecord converts one raw item using the schemas registered on scratch.
func (m *Mapper) ToRecord(scratch *Entity, item map[string]types.AttributeValue, opts ConvertOptions) (Record, error) {
	sys := scratch.System()
	rec := make(Record, len(item))
	for key, av := range item {
		schema, ok := scratch.schemaByAlias(key)
		if !ok {
			m.logger.Debug("dropping unknown field", zap.String("field", key))
			continue
		}
		if !opts.KeepKeyColumns && sys.isKeyColumn(schema) {
			continue
		}

		value, err := fromWireAs(schema, av, !opts.NoNullDefaults)
		if err != nil {
			return nil, &DAOError{Message: "failed to convert field " + key, Code: http.StatusInternalServerError, Err: err}
		}
		rec[schema.fullName] = value
	}
	return rec, nil
}

func fromWireAs(schema *AttributeSchema, av types.AttributeValue, defaultOnNull bool) (any, error) {
	if schema.typ == TypeNumber {
		if _, ok := av.(*types.AttributeValueMemberN); !ok {
			if defaultOnNull {
				return int64(0), nil
			}
			return nil, nil
		}
	}
	return FromWire(av)
}
