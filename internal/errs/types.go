package errs

import (
	"net/http"
)

// Messages shared by every contact endpoint.
const (
	MessageMalformedID      = "Malformed ID"
	MessageFieldsRequired   = "Name and number required!"
	MessageUnknownEndpoint  = "Unknown endpoint"
	MessageValidationFailed = "Validation failed"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// Parameters:
//   - message: text to send to client
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional slice of field errors (validation errors)
func NewBadRequestError(message string, code *string, errors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	// The caller is expected to pass an already formatted code.
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusBadRequest,
		Errors:  errors,
	}
}

// NewMalformedIDError is the 400 returned when an identifier cannot be
// parsed into the store's identifier type.
func NewMalformedIDError() *HTTPError {
	code := "MALFORMED_ID"
	return NewBadRequestError(MessageMalformedID, &code, nil)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// Pass an empty message to answer with an empty body, which is what
// the contact endpoints do for a missing record.
func NewNotFoundError(message string, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewUnknownEndpointError is the 404 written for requests no route matches.
func NewUnknownEndpointError() *HTTPError {
	code := "UNKNOWN_ENDPOINT"
	return NewNotFoundError(MessageUnknownEndpoint, &code)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the underlying error.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message: http.StatusText(http.StatusInternalServerError),
		Status:  http.StatusInternalServerError,
	}
}
