package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
)

// clinicalRecord is one patient's entry in the clinical notes file. The file
// is keyed "patient_<id>".
type clinicalRecord struct {
	Demographics struct {
		Age              int    `json:"age"`
		Sex              string `json:"sex"`
		MenopausalStatus string `json:"menopausal_status"`
	} `json:"demographics"`
	Diagnosis struct {
		Primary string `json:"primary"`
		Stage   string `json:"stage"`
	} `json:"diagnosis"`
	Comorbidities      []string `json:"comorbidities"`
	CurrentMedications []string `json:"current_medications"`
	Allergies          []string `json:"allergies"`
	PerformanceStatus  struct {
		ECOG *int `json:"ecog"`
	} `json:"performance_status"`
}

// loadClinicalRecord reads the clinical notes file and returns the patient's
// record. The second return is false when the file has no entry for the
// patient. The file is re-read per call so polling runs pick up edits.
func loadClinicalRecord(path, patientID string) (*clinicalRecord, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read clinical notes file: %w", err)
	}

	var records map[string]clinicalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("failed to parse clinical notes file: %w", err)
	}

	record, ok := records["patient_"+patientID]
	if !ok {
		return nil, false, nil
	}
	return &record, true, nil
}

// ClinicalSource resolves the patient's clinical notes summary.
type ClinicalSource struct {
	path   string
	logger *zap.Logger
}

// NewClinicalSource creates the clinical notes resolver.
func NewClinicalSource(path string, logger *zap.Logger) *ClinicalSource {
	return &ClinicalSource{path: path, logger: logger}
}

func (s *ClinicalSource) Name() string {
	return "clinical"
}

func (s *ClinicalSource) Resolve(ctx context.Context, domain models.Domain, patient models.RosterPatient) models.DomainFinding {
	record, found, err := loadClinicalRecord(s.path, patient.PatientID)
	if err != nil {
		return models.NewErrorFinding(domain, s.Name(), err.Error())
	}
	if !found {
		return models.NewNotFoundFinding(domain, s.Name(),
			fmt.Sprintf("No clinical notes found for patient %s", patient.PatientID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%dyo %s, %s", record.Demographics.Age, record.Demographics.Sex, record.Demographics.MenopausalStatus)
	fmt.Fprintf(&b, "\nDiagnosis: %s (Stage %s)", record.Diagnosis.Primary, record.Diagnosis.Stage)
	if len(record.Comorbidities) > 0 {
		fmt.Fprintf(&b, "\nComorbidities: %s", strings.Join(record.Comorbidities, ", "))
	}
	if len(record.Allergies) > 0 {
		fmt.Fprintf(&b, "\nAllergies: %s", strings.Join(record.Allergies, ", "))
	}
	if record.PerformanceStatus.ECOG != nil {
		fmt.Fprintf(&b, "\nECOG: %d", *record.PerformanceStatus.ECOG)
	}

	return models.NewFoundFinding(domain, s.Name(), b.String())
}
