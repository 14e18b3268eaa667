// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/phonebook/internal/lib/job"
	"github.com/deppfellow/phonebook/internal/repository"
	"github.com/deppfellow/phonebook/internal/server"
)

type Services struct {
	Contacts *ContactService
	Job      *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var notifier ChangeNotifier
	if s.Job != nil {
		notifier = s.Job
	}

	return &Services{
		Contacts: NewContactService(s.Logger, repos.Contacts, notifier),
		Job:      s.Job,
	}, nil
}
