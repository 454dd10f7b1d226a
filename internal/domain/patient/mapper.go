package patient

import (
	"strings"

	"github.com/ehr/fhir-api/internal/platform/fhir"
	"github.com/ehr/fhir-api/internal/store"
)

// ToView flattens a raw Patient record. Missing or malformed optional fields
// come out empty or nil; it never fails.
func ToView(raw store.Record, p Projection) View {
	v := View{
		ResourceType: raw.ResourceType(),
		ID:           raw.ID(),
		FullName:     FullName(raw),
		BirthDate:    fhir.String(raw, "birthDate"),
		Gender:       optional(fhir.String(raw, "gender")),
	}
	if p == ProjectionFull {
		v.Address = optional(FormatAddress(raw))
		v.Phone = optional(firstTelecom(raw, fhir.TelecomPhone))
		v.Email = optional(firstTelecom(raw, fhir.TelecomEmail))
	}
	return v
}

// FullName joins the given names and family name of the first name entry.
func FullName(raw store.Record) string {
	entry, ok := firstEntry(raw, "name")
	if !ok {
		return ""
	}
	name := fhir.HumanNameFrom(entry)
	return strings.TrimSpace(strings.Join(name.Given, " ") + " " + name.Family)
}

// FormatAddress renders the first address entry as a single comma separated
// line: lines, city, state, postal code, country. Empty parts are skipped.
func FormatAddress(raw store.Record) string {
	entry, ok := firstEntry(raw, "address")
	if !ok {
		return ""
	}
	addr := fhir.AddressFrom(entry)

	var parts []string
	if len(addr.Line) > 0 {
		parts = append(parts, strings.Join(addr.Line, ", "))
	}
	for _, s := range []string{addr.City, addr.State, addr.PostalCode, addr.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func firstTelecom(raw store.Record, system string) string {
	for _, e := range elements(raw["telecom"]) {
		entry, ok := object(e)
		if !ok {
			continue
		}
		cp := fhir.ContactPointFrom(entry)
		if cp.System == system && cp.Value != "" {
			return cp.Value
		}
	}
	return ""
}

// firstEntry returns raw[key][0] when it is a JSON object.
func firstEntry(raw store.Record, key string) (map[string]any, bool) {
	entries := elements(raw[key])
	if len(entries) == 0 {
		return nil, false
	}
	return object(entries[0])
}

func object(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case store.Record:
		return t, true
	}
	return nil, false
}

// elements returns v as a slice when it is a JSON array.
func elements(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	var out []any
	if err := fhir.Convert(v, &out); err != nil {
		return nil
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
