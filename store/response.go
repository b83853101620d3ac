package store

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Record is an item converted to native values and keyed by full attribute name.
type Record map[string]any

// ServiceResponse is the paginated result envelope. StatusCode mirrors HTTP
// semantics: 200 success, 204 no data, 404 not found, 500 failure.
type ServiceResponse struct {
	StatusCode int
	Items      []map[string]types.AttributeValue
	Records    []Record
	NextToken  string
	Message    string
}

// NewSuccessResponse returns a 200 response holding items.
func NewSuccessResponse(items []map[string]types.AttributeValue) *ServiceResponse {
	return &ServiceResponse{StatusCode: http.StatusOK, Items: items}
}

// NewEmptyResponse returns a 200 response with no items.
func NewEmptyResponse() *ServiceResponse {
	return &ServiceResponse{StatusCode: http.StatusOK}
}

// NewFailedResponse returns a 500 response carrying message.
func NewFailedResponse(message string) *ServiceResponse {
	return &ServiceResponse{StatusCode: http.StatusInternalServerError, Message: message}
}

// AddItems appends raw items.
func (r *ServiceResponse) AddItems(items ...map[string]types.AttributeValue) {
	r.Items = append(r.Items, items...)
}

// HasData reports whether the response carries raw items or converted records.
func (r *ServiceResponse) HasData() bool {
	return r != nil && (len(r.Items) > 0 || len(r.Records) > 0)
}

// HasMore reports whether a further page can be requested with NextToken.
func (r *ServiceResponse) HasMore() bool {
	return r != nil && r.NextToken != ""
}

// HasResults reports whether resp succeeded and holds at least one item.
func HasResults(resp *ServiceResponse) bool {
	return resp != nil && resp.StatusCode == http.StatusOK && resp.HasData()
}

// MapResponse wraps a raw query result. When the store reports more data, the
// value of the pattern's sort key in LastEvaluatedKey becomes the next token.
func MapResponse(out *dynamodb.QueryOutput, ap AccessPattern) (*ServiceResponse, error) {
	if out == nil {
		return nil, &DAOError{Message: "Dynamo Service Failed", Code: http.StatusInternalServerError}
	}

	resp := NewEmptyResponse()
	resp.AddItems(out.Items...)

	if len(out.LastEvaluatedKey) > 0 {
		if sk, ok := ap.SortKey(); ok {
			switch v := out.LastEvaluatedKey[sk.keyName].(type) {
			case *types.AttributeValueMemberS:
				resp.NextToken = EncodeToken(v.Value)
			case *types.AttributeValueMemberN:
				resp.NextToken = EncodeToken(v.Value)
			}
		}
	}

	return resp, nil
}
