// Package store loads the flat FHIR record files served by the API. The
// collections are read once at startup and never written.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// File names inside the data directory.
const (
	PatientsFile           = "patients.json"
	EncountersFile         = "encounters.json"
	MedicationRequestsFile = "medication_requests.json"
)

// Record is a raw FHIR resource as decoded from JSON.
type Record map[string]any

// ResourceType returns the record's resourceType, or "".
func (r Record) ResourceType() string {
	s, _ := r["resourceType"].(string)
	return s
}

// ID returns the record's id, or "".
func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// LoadError reports a record file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Collections holds the three record sets served by the API.
type Collections struct {
	Patients           []Record
	Encounters         []Record
	MedicationRequests []Record
}

// Load reads a JSON array of objects from path.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	if records == nil {
		return nil, &LoadError{Path: path, Err: errors.New("expected a JSON array of resources")}
	}
	for i, r := range records {
		if r == nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("element %d is not an object", i)}
		}
	}
	return records, nil
}

// LoadDir loads every collection from dir. The first failure is returned.
func LoadDir(dir string, logger zerolog.Logger) (*Collections, error) {
	c := &Collections{}
	files := []struct {
		name string
		dst  *[]Record
	}{
		{PatientsFile, &c.Patients},
		{EncountersFile, &c.Encounters},
		{MedicationRequestsFile, &c.MedicationRequests},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		records, err := Load(path)
		if err != nil {
			return nil, err
		}
		*f.dst = records
		logger.Info().Str("file", path).Int("records", len(records)).Msg("loaded records")
	}
	return c, nil
}
