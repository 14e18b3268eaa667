package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/validation"
)

var validate = validator.New()

// ContactInput is the body of create and update requests. The lengths
// match the contacts_name_check and contacts_number_check constraints.
type ContactInput struct {
	Name   string `json:"name" validate:"required,min=3"`
	Number string `json:"number" validate:"required,min=8"`
}

func (r *ContactInput) Validate() error {
	return validate.Struct(r)
}

// FailureMessage answers "Name and number required!" for absent fields
// and undecodable bodies. Values that are present but too short get a
// validation message naming the first offending field.
func (r *ContactInput) FailureMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errs.MessageFieldsRequired
	}

	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			return errs.MessageFieldsRequired
		}
	}

	fe := validationErrors[0]
	return fmt.Sprintf("Contact validation failed: %s must be at least %s characters", fe.Field(), fe.Param())
}

// IDParam is embedded by every request addressing a single contact.
// It must stay exported for echo to bind into it. The json tag keeps a
// body "id" from overwriting the path parameter.
type IDParam struct {
	ID string `param:"id" json:"-"`
}

func (r *IDParam) validateID() error {
	if !validation.IsValidUUID(r.ID) {
		return errs.NewMalformedIDError()
	}
	return nil
}

// ContactID is the parsed path identifier. Only call it after Validate.
func (r *IDParam) ContactID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type ListContactsRequest struct{}

func (r *ListContactsRequest) Validate() error {
	return nil
}

type GetContactRequest struct {
	IDParam
}

func (r *GetContactRequest) Validate() error {
	return r.validateID()
}

type CreateContactRequest struct {
	ContactInput
}

type UpdateContactRequest struct {
	IDParam
	ContactInput
}

// Validate reports a malformed id before any missing field.
func (r *UpdateContactRequest) Validate() error {
	if err := r.validateID(); err != nil {
		return err
	}
	return r.ContactInput.Validate()
}

type DeleteContactRequest struct {
	IDParam
}

func (r *DeleteContactRequest) Validate() error {
	return r.validateID()
}

type InfoRequest struct{}

func (r *InfoRequest) Validate() error {
	return nil
}
