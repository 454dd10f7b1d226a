package fhir

import "testing"

func TestFormatReference(t *testing.T) {
	ref := FormatReference("Patient", "abc-123")
	if ref != "Patient/abc-123" {
		t.Errorf("expected Patient/abc-123, got %s", ref)
	}
}

func TestPatientReference(t *testing.T) {
	if got := PatientReference("42"); got != "Patient/42" {
		t.Errorf("expected Patient/42, got %s", got)
	}
}

func TestSubjectReference(t *testing.T) {
	tests := []struct {
		name     string
		resource map[string]interface{}
		want     string
	}{
		{"present", map[string]interface{}{"subject": map[string]interface{}{"reference": "Patient/1"}}, "Patient/1"},
		{"no subject", map[string]interface{}{"id": "enc-1"}, ""},
		{"subject not object", map[string]interface{}{"subject": "Patient/1"}, ""},
		{"reference not string", map[string]interface{}{"subject": map[string]interface{}{"reference": 7}}, ""},
		{"nil resource", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubjectReference(tt.resource); got != tt.want {
				t.Errorf("SubjectReference() = %q, want %q", got, tt.want)
			}
		})
	}
}
