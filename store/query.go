package store

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DefaultQueryLimit is the page size used when QueryOptions.Limit is unset.
const DefaultQueryLimit = 100

// QueryOptions controls projection, paging and direction of a query.
type QueryOptions struct {
	// Fields are the attribute names to project. Empty projects everything.
	Fields []string

	// Limit is the page size. Zero means DefaultQueryLimit; values above the
	// configured MaxLimit are capped.
	Limit int32

	// Descending walks the sort key backwards. The zero value is ascending.
	// Keep it constant across the pages of one sequence.
	Descending bool

	// NextPageToken resumes after the last item of a previous page.
	NextPageToken string

	// Filter is an optional condition on non-key attributes.
	Filter *expression.ConditionBuilder
}

// FindByAccessPattern compiles ap and opts into a query request. Compiling the
// same inputs twice yields equal requests.
func (d *DAO) FindByAccessPattern(ap AccessPattern, opts QueryOptions) (*dynamodb.QueryInput, error) {
	var token string
	if opts.NextPageToken != "" {
		decoded, err := DecodeToken(opts.NextPageToken)
		if err != nil {
			return nil, &ValidationError{
				Message: "Invalid Next Page Token",
				Errors:  []FieldError{{FieldName: "nextPageToken", Message: "nextPageToken must be a token returned by a previous page"}},
				Err:     err,
			}
		}
		token = decoded
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.config.TableName),
		Limit:                  aws.Int32(d.limit(opts.Limit)),
		ScanIndexForward:       aws.Bool(!opts.Descending),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityIndexes,
	}
	if ap.indexName != "" {
		input.IndexName = aws.String(ap.indexName)
	}

	if err := BuildExpression(&ap, input, token); err != nil {
		return nil, err
	}

	if err := d.applyProjection(input, opts.Fields); err != nil {
		return nil, err
	}

	if opts.Filter != nil {
		expr, err := expression.NewBuilder().WithFilter(*opts.Filter).Build()
		if err != nil {
			return nil, &ValidationError{Message: "Invalid Filter", Err: err}
		}
		input.FilterExpression = expr.Filter()
		for ph, name := range expr.Names() {
			if err := bindName(input.ExpressionAttributeNames, ph, name); err != nil {
				return nil, err
			}
		}
		for ph, av := range expr.Values() {
			if err := bindValue(input.ExpressionAttributeValues, ph, "filter", av); err != nil {
				return nil, err
			}
		}
	}

	return input, nil
}

func (d *DAO) limit(requested int32) int32 {
	if requested <= 0 {
		requested = DefaultQueryLimit
	}
	if requested > d.config.MaxLimit {
		return d.config.MaxLimit
	}
	return requested
}

func (d *DAO) applyProjection(input *dynamodb.QueryInput, fields []string) error {
	if len(fields) == 0 {
		d.logger.Warn("No ProjectionExpression was defined; projecting only the needed fields is strongly recommended",
			zap.String("table", d.config.TableName),
		)
		return nil
	}
	if input.ExpressionAttributeNames == nil {
		input.ExpressionAttributeNames = make(map[string]string, len(fields))
	}
	projected := make([]string, 0, len(fields))
	for _, f := range fields {
		ph := "#" + placeholder(f)
		if err := bindName(input.ExpressionAttributeNames, ph, f); err != nil {
			return err
		}
		projected = append(projected, ph)
	}
	input.ProjectionExpression = aws.String(strings.Join(projected, ", "))
	return nil
}

// cursorPlaceholder binds the decoded pagination token.
const cursorPlaceholder = ":token"

// BuildExpression validates ap and compiles its key conditions into input,
// partition key first. A nil ap leaves input untouched. A non-empty token
// replaces the sort-key condition with a strict comparison past the token in
// the direction of input.ScanIndexForward.
func BuildExpression(ap *AccessPattern, input *dynamodb.QueryInput, token string) error {
	if ap == nil {
		return nil
	}
	if err := ap.Validate(); err != nil {
		return err
	}

	if input.ExpressionAttributeNames == nil {
		input.ExpressionAttributeNames = make(map[string]string)
	}
	if input.ExpressionAttributeValues == nil {
		input.ExpressionAttributeValues = make(map[string]types.AttributeValue)
	}

	sk, hasSort := ap.SortKey()
	pkValue := ap.partition.valuePlaceholder()
	if token != "" && hasSort && pkValue == cursorPlaceholder {
		// A partition key named "token" must not share the cursor binding.
		pkValue = cursorPlaceholder + "_pk"
	}

	compileKeyCondition(input, ap.partition, pkValue, token)
	if err := compileAttributeBindings(input, ap.partition, pkValue, token); err != nil {
		return err
	}
	if hasSort {
		value := sk.valuePlaceholder()
		compileKeyCondition(input, sk, value, token)
		if err := compileAttributeBindings(input, sk, value, token); err != nil {
			return err
		}
	}
	return nil
}

func compileKeyCondition(input *dynamodb.QueryInput, expr KeyExpression, value, token string) {
	name := expr.namePlaceholder()

	var clause string
	switch {
	case expr.kind == SortKey && token != "":
		op := ">"
		if input.ScanIndexForward != nil && !*input.ScanIndexForward {
			op = "<"
		}
		clause = fmt.Sprintf("%s %s %s", name, op, cursorPlaceholder)
	case expr.op == OpBeginsWith:
		clause = fmt.Sprintf("begins_with(%s, %s)", name, value)
	case expr.op == OpBetween:
		clause = fmt.Sprintf("%s between %s1 and %s2", name, value, value)
	default:
		clause = fmt.Sprintf("%s %s %s", name, expr.op, value)
	}

	if current := aws.ToString(input.KeyConditionExpression); current != "" {
		clause = current + " and " + clause
	}
	input.KeyConditionExpression = aws.String(clause)
}

func compileAttributeBindings(input *dynamodb.QueryInput, expr KeyExpression, value, token string) error {
	if err := bindName(input.ExpressionAttributeNames, expr.namePlaceholder(), expr.keyName); err != nil {
		return err
	}

	values := input.ExpressionAttributeValues
	switch {
	case expr.kind == SortKey && token != "":
		return bindValue(values, cursorPlaceholder, expr.keyName, &types.AttributeValueMemberS{Value: token})
	case expr.op == OpBetween:
		if err := bindValue(values, value+"1", expr.keyName, &types.AttributeValueMemberS{Value: expr.value1}); err != nil {
			return err
		}
		return bindValue(values, value+"2", expr.keyName, &types.AttributeValueMemberS{Value: expr.value2})
	default:
		return bindValue(values, value, expr.keyName, &types.AttributeValueMemberS{Value: expr.value1})
	}
}
