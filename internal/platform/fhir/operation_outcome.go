package fhir

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Summary joins the diagnostics (or details text) of every issue.
func (o *OperationOutcome) Summary() string {
	var parts []string
	for _, issue := range o.Issue {
		switch {
		case issue.Diagnostics != "":
			parts = append(parts, issue.Diagnostics)
		case issue.Details != nil && issue.Details.Text != "":
			parts = append(parts, issue.Details.Text)
		}
	}
	return strings.Join(parts, "; ")
}

// ParseOperationOutcome decodes body as an OperationOutcome. It returns false
// when body is not JSON or declares a different resourceType.
func ParseOperationOutcome(body []byte) (*OperationOutcome, bool) {
	var oo OperationOutcome
	if err := json.Unmarshal(body, &oo); err != nil {
		return nil, false
	}
	if oo.ResourceType != "OperationOutcome" {
		return nil, false
	}
	return &oo, true
}
