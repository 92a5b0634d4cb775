package schema

var emptyMap = map[string]interface{}{}

var (
	ErrInternal = &Error{
		Type:    "generic.internal",
		Message: "An internal error occurred.",
		Details: emptyMap,
	}
	ErrNotFound = &Error{
		Type:    "generic.notFound",
		Message: "Resource not found.",
		Details: emptyMap,
	}
	ErrMethodNotAllowed = &Error{
		Type:    "generic.methodNotAllowed",
		Message: "Method not allowed.",
		Details: emptyMap,
	}
	ErrRequestBodyTooLarge = &Error{
		Type:    "validation.requestBody.tooLarge",
		Message: "The request body exceeds the maximum size.",
		Details: emptyMap,
	}
	ErrRequestBodyEmpty = &Error{
		Type:    "validation.requestBody.empty",
		Message: "The request body does not contain any value to apply.",
		Details: emptyMap,
	}
)

var (
	ErrUnsupportedURI = func(uri string) *Error {
		return &Error{
			Type:    "generic.notFound",
			Message: "The content URI does not address anything served here.",
			Details: map[string]interface{}{
				"uri": uri,
			},
		}
	}
	ErrInsertFailed = func(uri, reason string) *Error {
		return &Error{
			Type:    "content.insertFailed",
			Message: "The row could not be inserted.",
			Details: map[string]interface{}{
				"uri":    uri,
				"reason": reason,
			},
		}
	}
	ErrConstraintViolated = func(reason string) *Error {
		return &Error{
			Type:    "content.constraintViolated",
			Message: "The operation violates a constraint of the stored content.",
			Details: map[string]interface{}{
				"reason": reason,
			},
		}
	}
)

// ErrorResponse represents the response structure sent by the API whenever errors occurred
type ErrorResponse struct {
	Status int      `json:"status"`
	Errors []*Error `json:"errors"`
}

// Error represents a single error present in the ErrorResponse
type Error struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}
