package patient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ehr/fhir-api/internal/store"
	"github.com/ehr/fhir-api/pkg/pagination"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("patient not found")

// NotFoundError reports a patient id that is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Patient with ID %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type Service struct {
	data    *store.Collections
	resolve Resolver
}

type Option func(*Service)

// WithResolver replaces FindRelated as the relation lookup.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		s.resolve = r
	}
}

func NewService(data *store.Collections, opts ...Option) *Service {
	if data == nil {
		data = &store.Collections{}
	}
	s := &Service{data: data, resolve: FindRelated}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPatients maps every patient, applies the name filter and returns at most
// q.Limit views in store order.
func (s *Service) ListPatients(q ListQuery) []View {
	name := strings.ToLower(strings.TrimSpace(q.Name))
	views := make([]View, 0, len(s.data.Patients))
	for _, raw := range s.data.Patients {
		v := ToView(raw, q.Projection)
		if name != "" && !strings.Contains(strings.ToLower(v.FullName), name) {
			continue
		}
		views = append(views, v)
	}
	return pagination.Apply(views, pagination.Params{Limit: q.Limit})
}

// GetPatient returns the first patient with the given id together with its
// encounters and medication requests.
func (s *Service) GetPatient(id string) (*DetailView, error) {
	raw, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return &DetailView{
		View:        ToView(raw, ProjectionFull),
		Encounters:  s.resolve(id, s.data.Encounters),
		Medications: s.resolve(id, s.data.MedicationRequests),
	}, nil
}

func (s *Service) GetPatientEncounters(id string) ([]store.Record, error) {
	if _, err := s.find(id); err != nil {
		return nil, err
	}
	return s.resolve(id, s.data.Encounters), nil
}

func (s *Service) GetPatientMedications(id string) ([]store.Record, error) {
	if _, err := s.find(id); err != nil {
		return nil, err
	}
	return s.resolve(id, s.data.MedicationRequests), nil
}

// find returns the first patient with the given id.
func (s *Service) find(id string) (store.Record, error) {
	for _, p := range s.data.Patients {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, &NotFoundError{ID: id}
}
