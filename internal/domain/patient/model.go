package patient

import "github.com/ehr/fhir-api/internal/store"

// View is the flattened display form of a FHIR Patient.
type View struct {
	ResourceType string  `json:"resourceType"`
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	BirthDate    string  `json:"birth_date"`
	Gender       *string `json:"gender"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
}

// DetailView is a patient view with the raw records that reference the patient.
type DetailView struct {
	View
	Encounters  []store.Record `json:"encounters"`
	Medications []store.Record `json:"medications"`
}

// Projection selects which derived fields ToView fills in.
type Projection int

const (
	// ProjectionSummary leaves address, phone and email empty.
	ProjectionSummary Projection = iota
	// ProjectionFull fills in every field.
	ProjectionFull
)

// ParseProjection maps the "view" query value to a Projection.
func ParseProjection(s string) (Projection, bool) {
	switch s {
	case "", "summary":
		return ProjectionSummary, true
	case "full":
		return ProjectionFull, true
	}
	return ProjectionSummary, false
}

// ListQuery controls ListPatients.
type ListQuery struct {
	Limit      int
	Name       string
	Projection Projection
}
