package patient

import (
	"github.com/ehr/fhir-api/internal/platform/fhir"
	"github.com/ehr/fhir-api/internal/store"
)

// Resolver returns the records in collection that belong to a patient.
type Resolver func(patientID string, collection []store.Record) []store.Record

// FindRelated returns every record whose subject.reference is exactly
// "Patient/{patientID}", in collection order.
func FindRelated(patientID string, collection []store.Record) []store.Record {
	ref := fhir.PatientReference(patientID)
	related := make([]store.Record, 0)
	for _, r := range collection {
		if fhir.SubjectReference(r) == ref {
			related = append(related, r)
		}
	}
	return related
}
