package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mdt-readiness-aggregator/internal/models"
)

// LoadDashboard reads a generated dashboard artifact.
func LoadDashboard(path string) (models.RosterDashboard, error) {
	var dashboard models.RosterDashboard

	data, err := os.ReadFile(path)
	if err != nil {
		return dashboard, fmt.Errorf("failed to read dashboard file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return dashboard, fmt.Errorf("failed to parse dashboard file %s: %w", path, err)
	}
	return dashboard, nil
}

// LoadExpectations reads the labeled test set. An expectations file with no
// patients is an error, there is nothing to score.
func LoadExpectations(path string) (Expectations, error) {
	var expectations Expectations

	data, err := os.ReadFile(path)
	if err != nil {
		return expectations, fmt.Errorf("failed to read expectations file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &expectations); err != nil {
		return expectations, fmt.Errorf("failed to parse expectations file %s: %w", path, err)
	}
	if len(expectations.Patients) == 0 {
		return expectations, fmt.Errorf("no patients found in expectations file %s", path)
	}
	return expectations, nil
}

// WriteMetrics writes the metrics artifact, creating parent directories as
// needed.
func WriteMetrics(path string, metrics Metrics) error {
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
