package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/phonebook/internal/model"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
)

// ContactHandler serves /api/persons and /info.
type ContactHandler struct {
	Handler
	contacts *service.ContactService
}

func NewContactHandler(s *server.Server, contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{
		Handler:  NewHandler(s),
		contacts: contacts,
	}
}

func (h *ContactHandler) ListContacts(c echo.Context, _ *model.ListContactsRequest) ([]model.Contact, error) {
	return h.contacts.List(c.Request().Context())
}

func (h *ContactHandler) GetContact(c echo.Context, req *model.GetContactRequest) (*model.Contact, error) {
	return h.contacts.Get(c.Request().Context(), req.ContactID())
}

func (h *ContactHandler) CreateContact(c echo.Context, req *model.CreateContactRequest) (*model.Contact, error) {
	return h.contacts.Create(c.Request().Context(), req.ContactInput)
}

func (h *ContactHandler) UpdateContact(c echo.Context, req *model.UpdateContactRequest) (*model.Contact, error) {
	return h.contacts.Update(c.Request().Context(), req.ContactID(), req.ContactInput)
}

func (h *ContactHandler) DeleteContact(c echo.Context, req *model.DeleteContactRequest) error {
	return h.contacts.Delete(c.Request().Context(), req.ContactID())
}

func (h *ContactHandler) Info(c echo.Context, _ *model.InfoRequest) (string, error) {
	return h.contacts.Info(c.Request().Context())
}
