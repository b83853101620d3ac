package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CreateOptions tunes CreateTemplate.
type CreateOptions struct {
	// UseSKInCondition also requires the sort key attribute to be absent.
	UseSKInCondition bool
}

// CreateTemplate compiles a conditional put for e. The entity is validated
// first and its timestamps are stamped with now when unset. The condition
// guarantees the item is created at most once.
func (d *DAO) CreateTemplate(e *Entity, opts CreateOptions) (*dynamodb.PutItemInput, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	sys := e.System()
	now := time.Now()
	for _, s := range []*AttributeSchema{sys.CreatedAt, sys.UpdatedAt} {
		if attr, ok := e.Attribute(s); !ok || !attr.IsSet() {
			e.Set(s, now)
		}
	}

	item := make(map[string]types.AttributeValue, len(e.order))
	var failures []FieldError
	for _, attr := range e.Attributes() {
		if !attr.IsSet() {
			continue
		}
		av, err := attr.Wire()
		if err != nil {
			failures = append(failures, FieldError{FieldName: attr.schema.fullName, Message: err.Error()})
			continue
		}
		item[attr.schema.alias] = av
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Message: "Failed Validation", Errors: failures}
	}

	names := make(map[string]string, 2)
	conditionAttrs := []string{sys.PK.alias}
	if opts.UseSKInCondition {
		conditionAttrs = append(conditionAttrs, sys.SK.alias)
	}

	return &dynamodb.PutItemInput{
		TableName:                aws.String(d.config.TableName),
		Item:                     item,
		ConditionExpression:      aws.String(existsCondition("attribute_not_exists", names, conditionAttrs...)),
		ExpressionAttributeNames: names,
		ReturnConsumedCapacity:   types.ReturnConsumedCapacityTotal,
	}, nil
}

// UpdateTemplate compiles a SET update of attrs on the item keyed by pk and sk.
// DATE attributes default to now, UPDATED_AT is appended when missing, and the
// condition requires the item to exist so an update never creates one.
func (d *DAO) UpdateTemplate(pk, sk KeyPair, attrs []*EntityAttribute) (*dynamodb.UpdateItemInput, error) {
	sys := d.config.Schemas

	// System attributes are matched by alias: schemas built by separate
	// NewSystemSchemas calls describe the same columns.
	failures := append(validateKeyPair("pk", pk), validateKeyPair("sk", sk)...)
	paths := map[string]string{placeholder(pk.KeyName): pk.KeyName, placeholder(sk.KeyName): sk.KeyName}
	for _, attr := range attrs {
		alias := attr.schema.alias
		if alias == sys.PK.alias || alias == sys.SK.alias || alias == pk.KeyName || alias == sk.KeyName {
			failures = append(failures, FieldError{
				FieldName: attr.schema.fullName,
				Message:   attr.schema.fullName + " is a key attribute and cannot be updated",
			})
			continue
		}
		ph := placeholder(alias)
		if prev, ok := paths[ph]; ok {
			failures = append(failures, FieldError{
				FieldName: attr.schema.fullName,
				Message:   fmt.Sprintf("%s updates the same path as %s", attr.schema.fullName, prev),
			})
			continue
		}
		paths[ph] = attr.schema.fullName
		if fe := attr.Validate(); fe != nil {
			failures = append(failures, *fe)
		}
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Message: "Failed Validation", Errors: failures}
	}

	now := time.Now()
	names := make(map[string]string, len(attrs)+3)
	values := make(map[string]types.AttributeValue, len(attrs)+1)
	sets := make([]string, 0, len(attrs)+1)

	hasUpdatedAt := false
	for _, attr := range attrs {
		if attr.schema.alias == sys.UpdatedAt.alias {
			hasUpdatedAt = true
		}
		value := attr.value
		if attr.schema.typ == TypeDate && !attr.IsSet() {
			value = now
		}
		av, err := ToWire(attr.schema.typ, value)
		if err != nil {
			failures = append(failures, FieldError{FieldName: attr.schema.fullName, Message: err.Error()})
			continue
		}
		sets = append(sets, bindSet(names, values, attr.schema.alias, av))
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Message: "Failed Validation", Errors: failures}
	}
	if !hasUpdatedAt {
		sets = append(sets, bindSet(names, values, sys.UpdatedAt.alias,
			&types.AttributeValueMemberS{Value: FormatDate(now)}))
	}

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.config.TableName),
		Key:                       keyItem(pk, sk),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String(existsCondition("attribute_exists", names, pk.KeyName, sk.KeyName)),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
		ReturnConsumedCapacity:    types.ReturnConsumedCapacityTotal,
	}, nil
}

// DeleteParams compiles a delete of the item keyed by pk and sk that returns
// the prior attributes. Each conditional field must exist for the delete to apply.
func (d *DAO) DeleteParams(pk, sk KeyPair, conditionalFields ...string) *dynamodb.DeleteItemInput {
	input := &dynamodb.DeleteItemInput{
		TableName:              aws.String(d.config.TableName),
		Key:                    keyItem(pk, sk),
		ReturnValues:           types.ReturnValueAllOld,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}
	if len(conditionalFields) > 0 {
		names := make(map[string]string, len(conditionalFields))
		input.ConditionExpression = aws.String(existsCondition("attribute_exists", names, conditionalFields...))
		input.ExpressionAttributeNames = names
	}
	return input
}

// IncDecCount compiles an atomic increment or decrement by one of fieldName.
// The item must already exist.
func (d *DAO) IncDecCount(pk, sk KeyPair, fieldName string, increment bool) *dynamodb.UpdateItemInput {
	op := "+"
	if !increment {
		op = "-"
	}
	field := "#" + placeholder(fieldName)
	names := map[string]string{field: fieldName}
	condition := existsCondition("attribute_exists", names, pk.KeyName)

	return &dynamodb.UpdateItemInput{
		TableName:                aws.String(d.config.TableName),
		Key:                      keyItem(pk, sk),
		UpdateExpression:         aws.String(fmt.Sprintf("SET %s = %s %s :inc", field, field, op)),
		ConditionExpression:      aws.String(condition),
		ExpressionAttributeNames: names,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues:           types.ReturnValueUpdatedNew,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}
}

func bindSet(names map[string]string, values map[string]types.AttributeValue, attr string, av types.AttributeValue) string {
	ph := placeholder(attr)
	names["#"+ph] = attr
	values[":"+ph] = av
	return fmt.Sprintf("#%s = :%s", ph, ph)
}

func validateKeyPair(field string, kp KeyPair) []FieldError {
	var errs []FieldError
	if kp.KeyName == "" {
		errs = append(errs, FieldError{FieldName: field + ".keyName", Message: field + " key name is required"})
	}
	if kp.KeyValue == "" {
		errs = append(errs, FieldError{FieldName: field + ".keyValue", Message: field + " key value is required"})
	}
	return errs
}
