package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
)

// radiologyScan is one row of the radiology scans CSV.
type radiologyScan struct {
	PatientID       string
	ScanDate        string
	Modality        string
	BodyPart        string
	ReportStatus    string
	FindingsSummary string
}

// loadScans reads the scans CSV and returns the patient's rows in file order.
// Column order in the file is free; the header row names the columns.
func loadScans(path, patientID string) ([]radiologyScan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open radiology scans file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read radiology scans header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"patient_id", "scan_date", "modality", "body_part", "report_status"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("radiology scans file missing column: %s", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var scans []radiologyScan
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read radiology scans row: %w", err)
		}
		if field(row, "patient_id") != patientID {
			continue
		}
		scans = append(scans, radiologyScan{
			PatientID:       patientID,
			ScanDate:        field(row, "scan_date"),
			Modality:        field(row, "modality"),
			BodyPart:        field(row, "body_part"),
			ReportStatus:    field(row, "report_status"),
			FindingsSummary: field(row, "findings_summary"),
		})
	}

	return scans, nil
}

// RadiologyReportSource resolves the signed-report status of the patient's
// imaging. Any DRAFT row is a blocker: the case cannot be presented on an
// unsigned report.
type RadiologyReportSource struct {
	path   string
	logger *zap.Logger
}

// NewRadiologyReportSource creates the radiology report resolver.
func NewRadiologyReportSource(path string, logger *zap.Logger) *RadiologyReportSource {
	return &RadiologyReportSource{path: path, logger: logger}
}

func (s *RadiologyReportSource) Name() string {
	return "radiology_report"
}

func (s *RadiologyReportSource) Resolve(ctx context.Context, domain models.Domain, patient models.RosterPatient) models.DomainFinding {
	scans, err := loadScans(s.path, patient.PatientID)
	if err != nil {
		return models.NewErrorFinding(domain, s.Name(), err.Error())
	}
	if len(scans) == 0 {
		return models.NewNotFoundFinding(domain, s.Name(),
			fmt.Sprintf("No radiology scans found for patient %s", patient.PatientID))
	}

	var unsigned []radiologyScan
	for _, scan := range scans {
		if scan.ReportStatus == "DRAFT" {
			unsigned = append(unsigned, scan)
		}
	}
	if len(unsigned) > 0 {
		details := make([]string, 0, len(unsigned))
		for _, scan := range unsigned {
			details = append(details, fmt.Sprintf("%s %s (%s)", scan.ScanDate, scan.Modality, scan.BodyPart))
		}
		finding := models.NewBlockerFinding(domain, s.Name(),
			fmt.Sprintf("UNSIGNED REPORT(S) DETECTED: %s", strings.Join(details, ", ")))
		finding.Detail = map[string]interface{}{
			"alert":          fmt.Sprintf("Critical: %d radiology report(s) awaiting signature", len(unsigned)),
			"unsigned_count": len(unsigned),
		}
		return finding
	}

	var signed []radiologyScan
	for _, scan := range scans {
		if scan.ReportStatus == "SIGNED" {
			signed = append(signed, scan)
		}
	}
	if len(signed) == 0 {
		return models.NewNotFoundFinding(domain, s.Name(),
			fmt.Sprintf("No radiology reports available for patient %s", patient.PatientID))
	}

	mostRecent := signed[len(signed)-1]
	return models.NewFoundFinding(domain, s.Name(),
		fmt.Sprintf("%s %s: %s", mostRecent.ScanDate, mostRecent.Modality, mostRecent.FindingsSummary))
}

// RadiologyImagesSource resolves whether imaging studies exist for the
// patient, independent of report signature state.
type RadiologyImagesSource struct {
	path   string
	logger *zap.Logger
}

// NewRadiologyImagesSource creates the radiology images resolver.
func NewRadiologyImagesSource(path string, logger *zap.Logger) *RadiologyImagesSource {
	return &RadiologyImagesSource{path: path, logger: logger}
}

func (s *RadiologyImagesSource) Name() string {
	return "radiology_images"
}

func (s *RadiologyImagesSource) Resolve(ctx context.Context, domain models.Domain, patient models.RosterPatient) models.DomainFinding {
	scans, err := loadScans(s.path, patient.PatientID)
	if err != nil {
		return models.NewErrorFinding(domain, s.Name(), err.Error())
	}
	if len(scans) == 0 {
		return models.NewNotFoundFinding(domain, s.Name(),
			fmt.Sprintf("No radiology scans found for patient %s", patient.PatientID))
	}

	entries := make([]string, 0, len(scans))
	for _, scan := range scans {
		entries = append(entries, fmt.Sprintf("%s - %s - %s", scan.ScanDate, scan.Modality, scan.BodyPart))
	}
	return models.NewFoundFinding(domain, s.Name(),
		fmt.Sprintf("Available scans: %s", strings.Join(entries, ", ")))
}
