package fhir

// MIMEFHIRJSON is the media type for FHIR resources encoded as JSON.
const MIMEFHIRJSON = "application/fhir+json"

// FormatReference builds a literal relative reference such as "Patient/123".
func FormatReference(resourceType, id string) string {
	return resourceType + "/" + id
}

// PatientReference returns the subject reference that links a resource to the
// patient with the given id.
func PatientReference(id string) string {
	return FormatReference("Patient", id)
}

// SubjectReference returns resource.subject.reference, or "" when the field is
// absent or not a string.
func SubjectReference(resource map[string]any) string {
	subject, ok := resource["subject"].(map[string]any)
	if !ok {
		return ""
	}
	return String(subject, "reference")
}
