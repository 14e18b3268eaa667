package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/phonebook/internal/handler"
	"github.com/deppfellow/phonebook/internal/model"
)

// registerContactRoutes mounts the contact CRUD under /api/persons.
func registerContactRoutes(api *echo.Group, h *handler.Handlers) {
	contacts := api.Group("/persons")

	contacts.GET("", handler.Handle(
		h.Contact.Handler,
		h.Contact.ListContacts,
		http.StatusOK,
		&model.ListContactsRequest{},
	))

	contacts.GET("/:id", handler.Handle(
		h.Contact.Handler,
		h.Contact.GetContact,
		http.StatusOK,
		&model.GetContactRequest{},
	))

	contacts.POST("", handler.Handle(
		h.Contact.Handler,
		h.Contact.CreateContact,
		http.StatusOK,
		&model.CreateContactRequest{},
	))

	contacts.PUT("/:id", handler.Handle(
		h.Contact.Handler,
		h.Contact.UpdateContact,
		http.StatusOK,
		&model.UpdateContactRequest{},
	))

	contacts.DELETE("/:id", handler.HandleNoContent(
		h.Contact.Handler,
		h.Contact.DeleteContact,
		http.StatusNoContent,
		&model.DeleteContactRequest{},
	))
}
