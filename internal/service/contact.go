package service

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/lib/job"
	"github.com/deppfellow/phonebook/internal/model"
	"github.com/deppfellow/phonebook/internal/sqlerr"
)

// ContactStore persists contacts. *repository.ContactRepository implements it.
type ContactStore interface {
	List(ctx context.Context) ([]model.Contact, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	Create(ctx context.Context, input model.ContactInput) (*model.Contact, error)
	Update(ctx context.Context, id uuid.UUID, input model.ContactInput) (*model.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ChangeNotifier receives an event after every successful mutation.
type ChangeNotifier interface {
	EnqueueContactChanged(ctx context.Context, payload job.ContactChangedPayload) error
}

// InfoDateLayout renders the time the way a JavaScript Date prints itself.
const InfoDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

var infoTemplate = template.Must(template.New("info").Parse(
	`<p>Phonebook has info for {{.Count}} people</p><p>{{.Date}}</p>`,
))

type ContactService struct {
	store    ContactStore
	notifier ChangeNotifier
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewContactService builds the service. notifier may be nil.
func NewContactService(logger *zerolog.Logger, store ContactStore, notifier ChangeNotifier) *ContactService {
	return &ContactService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock used by Info and the change events.
func (s *ContactService) WithClock(now func() time.Time) *ContactService {
	s.now = now
	return s
}

func (s *ContactService) List(ctx context.Context) ([]model.Contact, error) {
	contacts, err := s.store.List(ctx)
	if err != nil {
		return nil, s.storeError(err, "list contacts")
	}
	return contacts, nil
}

func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "get contact")
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, input model.ContactInput) (*model.Contact, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	contact, err := s.store.Create(ctx, input)
	if err != nil {
		return nil, s.storeError(err, "create contact")
	}

	s.notify(ctx, job.ActionCreated, contact.ID, contact.Name)
	return contact, nil
}

// Update replaces name and number of an existing contact. A missing
// contact is a 404 with an empty body.
func (s *ContactService) Update(ctx context.Context, id uuid.UUID, input model.ContactInput) (*model.Contact, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	contact, err := s.store.Update(ctx, id, input)
	if err != nil {
		return nil, s.storeError(err, "update contact")
	}

	s.notify(ctx, job.ActionUpdated, contact.ID, contact.Name)
	return contact, nil
}

// Delete succeeds whether or not the contact existed.
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(err, "delete contact")
	}

	s.notify(ctx, job.ActionDeleted, id, "")
	return nil
}

// Info renders the HTML summary served at /info.
func (s *ContactService) Info(ctx context.Context) (string, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return "", s.storeError(err, "count contacts")
	}

	var buf bytes.Buffer
	err = infoTemplate.Execute(&buf, struct {
		Count int64
		Date  template.HTML
	}{
		Count: count,
		// The layout holds no markup; html/template would otherwise escape the "+".
		Date: template.HTML(s.now().Format(InfoDateLayout)),
	})
	if err != nil {
		return "", s.storeError(err, "render info")
	}

	return buf.String(), nil
}

// checkInput guards callers that skip request validation.
func checkInput(input model.ContactInput) error {
	if input.Name == "" || input.Number == "" {
		return errs.NewBadRequestError(errs.MessageFieldsRequired, nil, nil)
	}
	return nil
}

// storeError classifies err. Anything that becomes a 500 is logged
// here since the client never sees the cause.
func (s *ContactService) storeError(err error, op string) error {
	mapped := sqlerr.HandleError(err)

	var httpErr *errs.HTTPError
	if errors.As(mapped, &httpErr) && httpErr.Status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("operation", op).Msg("contact store failure")
	}

	return mapped
}

// notify never fails the request; enqueue errors are only logged.
func (s *ContactService) notify(ctx context.Context, action job.Action, id uuid.UUID, name string) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.EnqueueContactChanged(ctx, job.ContactChangedPayload{
		Action:     action,
		ContactID:  id.String(),
		Name:       name,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("action", string(action)).
			Str("contact_id", id.String()).
			Msg("failed to enqueue contact change")
	}
}
