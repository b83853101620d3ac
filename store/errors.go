package store

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrAlreadyExists is wrapped when a create fails its attribute_not_exists condition.
	ErrAlreadyExists = errors.New("core-dynamo: item already exists")

	// ErrConditionFailed is wrapped when any other condition expression rejects a write.
	ErrConditionFailed = errors.New("core-dynamo: condition check failed")

	// ErrInvalidToken is wrapped when a pagination token is not valid base64.
	ErrInvalidToken = errors.New("core-dynamo: invalid pagination token")

	// ErrTooManyItems is wrapped when a transaction or batch exceeds the store limit.
	ErrTooManyItems = errors.New("core-dynamo: too many items")
)

// FieldError is a single failed rule.
type FieldError struct {
	FieldName string `json:"fieldName"`
	Message   string `json:"message"`
}

// ConfigurationError reports a malformed schema or option setup.
type ConfigurationError struct {
	Message string
	Err     error
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return "configuration error: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// StatusCode returns http.StatusInternalServerError.
func (e *ConfigurationError) StatusCode() int { return http.StatusInternalServerError }

// ValidationError carries every rule violation found, never just the first.
type ValidationError struct {
	Message string
	Errors  []FieldError
	Err     error
}

// Error implements error.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation error: " + e.Message
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Message, strings.Join(msgs, "; "))
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// StatusCode returns http.StatusBadRequest.
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// NotFoundError reports an absent table or keyed item.
type NotFoundError struct {
	Message string
	Err     error
}

// Error implements error.
func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not found: %s: %v", e.Message, e.Err)
	}
	return "not found: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *NotFoundError) Unwrap() error { return e.Err }

// StatusCode returns http.StatusNotFound.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// AuthError reports rejected or missing credentials.
type AuthError struct {
	Message string
	Err     error
}

// Error implements error.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not authorized: %s: %v", e.Message, e.Err)
	}
	return "not authorized: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error { return e.Err }

// StatusCode returns http.StatusForbidden.
func (e *AuthError) StatusCode() int { return http.StatusForbidden }

// DAOError is a generic store operation failure wrapping the underlying cause.
type DAOError struct {
	Message string
	Code    int
	Err     error
}

// Error implements error.
func (e *DAOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dao error (%d): %s: %v", e.StatusCode(), e.Message, e.Err)
	}
	return fmt.Sprintf("dao error (%d): %s", e.StatusCode(), e.Message)
}

// Unwrap returns the underlying cause.
func (e *DAOError) Unwrap() error { return e.Err }

// StatusCode returns Code, or 500 when Code is unset.
func (e *DAOError) StatusCode() int {
	if e.Code == 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// HandleError passes auth, not-found and validation errors through unchanged and
// wraps anything else into a *DAOError. A zero code means 500.
func HandleError(err error, message string, code int) error {
	if err == nil {
		return nil
	}
	var (
		authErr     *AuthError
		notFoundErr *NotFoundError
		validErr    *ValidationError
		daoErr      *DAOError
	)
	switch {
	case errors.As(err, &authErr), errors.As(err, &notFoundErr), errors.As(err, &validErr):
		return err
	case errors.As(err, &daoErr):
		return err
	}
	if code == 0 {
		code = http.StatusInternalServerError
	}
	return &DAOError{Message: message, Code: code, Err: err}
}

// classifyError maps SDK failures onto the error taxonomy at the call site.
func classifyError(err error, message string) error {
	if err == nil {
		return nil
	}

	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return &NotFoundError{Message: "Resource Not Found", Err: err}
	}

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return &DAOError{Message: message, Code: http.StatusConflict, Err: fmt.Errorf("%w: %w", ErrConditionFailed, err)}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException":
			return &NotFoundError{Message: "Resource Not Found", Err: err}
		case "AccessDeniedException", "UnrecognizedClientException",
			"MissingAuthenticationTokenException", "InvalidSignatureException",
			"ExpiredTokenException":
			return &AuthError{Message: message, Err: err}
		}
	}

	return HandleError(err, message, 0)
}

// mapTransactionError reports the first member whose condition failed.
func mapTransactionError(err error) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return &DAOError{
					Message: "Transaction Cancelled",
					Code:    http.StatusConflict,
					Err:     fmt.Errorf("item %d: %w: %w", i, ErrConditionFailed, err),
				}
			}
		}
		return &DAOError{Message: "Transaction Cancelled", Code: http.StatusConflict, Err: err}
	}

	return classifyError(err, "Transaction Failed")
}
