package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/phonebook/internal/errs"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Validate may return validator.ValidationErrors or an *errs.HTTPError
// that is sent to the client unchanged.
type Validatable interface {
	Validate() error
}

// FailureMessager lets a payload choose the message sent when it cannot
// be bound or validated. err is the bind or validation error. Payloads
// without it get "Validation failed", or MessageMalformedBody when the
// body could not be decoded.
type FailureMessager interface {
	FailureMessage(err error) string
}

// BindAndValidate binds request data into payload and validates it.
//
// payload must be a pointer. Failures become a 400; validator field
// errors are listed under "errors".
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(payload, err)
	}

	if err := payload.Validate(); err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}

		msg, fieldErrors := extractValidationError(err)
		if m, ok := payload.(FailureMessager); ok {
			msg = m.FailureMessage(err)
		}
		return errs.NewBadRequestError(msg, nil, fieldErrors)
	}

	return nil
}

// MessageMalformedBody is sent when a body cannot be decoded and the
// payload has no message of its own.
const MessageMalformedBody = "Malformed request body"

// bindError never forwards echo's message: it names Go types and fields.
//
// Path params are bound before the body, so an *errs.HTTPError from
// Validate (a malformed id) still takes precedence over the body.
func bindError(payload Validatable, err error) *errs.HTTPError {
	m, ok := payload.(FailureMessager)
	if !ok {
		return errs.NewBadRequestError(MessageMalformedBody, nil, nil)
	}

	var httpErr *errs.HTTPError
	if errors.As(payload.Validate(), &httpErr) {
		return httpErr
	}
	return errs.NewBadRequestError(m.FailureMessage(err), nil, nil)
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs.MessageValidationFailed + ": " + err.Error(), nil
	}

	var fieldErrors []errs.FieldError
	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// strings count characters, numbers compare values
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return errs.MessageValidationFailed, fieldErrors
}

// uuidRegex matches standard UUID format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidUUID checks whether a string matches UUID format.
//
// Note: This validates format only. It does not validate UUID version/variant semantics.
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(uuid)
}
