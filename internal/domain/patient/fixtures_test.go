package patient

import (
	"github.com/ehr/fhir-api/internal/store"
)

func patientRecord(id, given, family string) store.Record {
	return store.Record{
		"resourceType": "Patient",
		"id":           id,
		"birthDate":    "1980-02-14",
		"gender":       "female",
		"name": []any{
			map[string]any{"family": family, "given": []any{given}},
		},
	}
}

func subjectRecord(resourceType, id, patientID string) store.Record {
	return store.Record{
		"resourceType": resourceType,
		"id":           id,
		"status":       "finished",
		"subject":      map[string]any{"reference": "Patient/" + patientID},
	}
}

func testCollections() *store.Collections {
	return &store.Collections{
		Patients: []store.Record{
			patientRecord("p1", "Ada", "Lovelace"),
			patientRecord("p2", "Alan", "Turing"),
			patientRecord("p3", "Grace", "Hopper"),
			patientRecord("p4", "Edsger", "Dijkstra"),
			patientRecord("p5", "Barbara", "Liskov"),
		},
		Encounters: []store.Record{
			subjectRecord("Encounter", "e1", "p1"),
			subjectRecord("Encounter", "e2", "p2"),
			subjectRecord("Encounter", "e3", "p1"),
		},
		MedicationRequests: []store.Record{
			subjectRecord("MedicationRequest", "m1", "p2"),
			subjectRecord("MedicationRequest", "m2", "p1"),
		},
	}
}

func ids(records []store.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}
