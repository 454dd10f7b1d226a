package fhir

import (
	json "github.com/goccy/go-json"
)

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
	Suffix []string `json:"suffix,omitempty"`
}

type Address struct {
	Use        string   `json:"use,omitempty"`
	Type       string   `json:"type,omitempty"`
	Line       []string `json:"line,omitempty"`
	City       string   `json:"city,omitempty"`
	District   string   `json:"district,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Country    string   `json:"country,omitempty"`
}

// Telecom systems used by ContactPoint.System.
const (
	TelecomPhone = "phone"
	TelecomEmail = "email"
)

type ContactPoint struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
	Rank   int    `json:"rank,omitempty"`
}

// OperationOutcome represents a FHIR OperationOutcome for errors.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string           `json:"severity"`
	Code        string           `json:"code"`
	Details     *CodeableConcept `json:"details,omitempty"`
	Diagnostics string           `json:"diagnostics,omitempty"`
	Expression  []string         `json:"expression,omitempty"`
}

// Convert re-decodes a loosely typed JSON value (as produced by decoding into
// map[string]any) into a typed FHIR datatype.
func Convert(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// String returns m[key] when it holds a string, and "" otherwise.
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Strings returns the string elements of the array m[key]. Non-string
// elements are skipped; anything other than an array yields nil.
func Strings(m map[string]any, key string) []string {
	switch t := m[key].(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// HumanNameFrom reads a decoded HumanName field by field, so one malformed
// element only blanks itself.
func HumanNameFrom(m map[string]any) HumanName {
	return HumanName{
		Use:    String(m, "use"),
		Text:   String(m, "text"),
		Family: String(m, "family"),
		Given:  Strings(m, "given"),
		Prefix: Strings(m, "prefix"),
		Suffix: Strings(m, "suffix"),
	}
}

// AddressFrom reads a decoded Address field by field.
func AddressFrom(m map[string]any) Address {
	return Address{
		Use:        String(m, "use"),
		Type:       String(m, "type"),
		Line:       Strings(m, "line"),
		City:       String(m, "city"),
		District:   String(m, "district"),
		State:      String(m, "state"),
		PostalCode: String(m, "postalCode"),
		Country:    String(m, "country"),
	}
}

// ContactPointFrom reads a decoded ContactPoint field by field.
func ContactPointFrom(m map[string]any) ContactPoint {
	cp := ContactPoint{
		System: String(m, "system"),
		Value:  String(m, "value"),
		Use:    String(m, "use"),
	}
	if rank, ok := m["rank"].(float64); ok {
		cp.Rank = int(rank)
	}
	return cp
}
