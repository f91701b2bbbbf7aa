package executor

import "errors"

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// extensionsError is implemented by errors that contribute to the
// "extensions" member of the reported GraphQL error.
type extensionsError interface {
	error
	Extensions() map[string]any
}

func newGraphQLError(err error, path Path) GraphQLError {
	gqlErr := GraphQLError{Message: err.Error(), Path: path}
	var ext extensionsError
	if errors.As(err, &ext) {
		gqlErr.Message = ext.Error()
		gqlErr.Extensions = ext.Extensions()
	}
	return gqlErr
}

// ExecutionResult represents the result of executing a GraphQL query
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
