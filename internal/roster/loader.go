package roster

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
)

// Loader reads the MDT meeting roster.
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a roster loader for the given file path.
func NewLoader(path string, logger *zap.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Load reads and validates the roster file. A missing or malformed roster is
// an error; a roster with zero patients is valid and loads normally.
func (l *Loader) Load() (*models.Roster, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file %s: %w", l.path, err)
	}

	var roster models.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", l.path, err)
	}

	if err := validate(&roster); err != nil {
		return nil, fmt.Errorf("invalid roster file %s: %w", l.path, err)
	}

	l.logger.Info("Roster loaded",
		zap.String("path", l.path),
		zap.String("meeting_date", roster.MDTInfo.MeetingDate),
		zap.Int("patient_count", len(roster.Patients)),
	)

	return &roster, nil
}

func validate(roster *models.Roster) error {
	seen := make(map[string]bool, len(roster.Patients))
	for i, p := range roster.Patients {
		if p.PatientID == "" {
			return fmt.Errorf("patient at index %d has no patient_id", i)
		}
		if seen[p.PatientID] {
			return fmt.Errorf("duplicate patient_id: %s", p.PatientID)
		}
		seen[p.PatientID] = true
	}
	return nil
}
