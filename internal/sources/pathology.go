package sources

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
	"mdt-readiness-aggregator/internal/repository"
)

// PathologyReader is the repository surface this resolver needs. Declared
// here so tests can mock it without a database.
type PathologyReader interface {
	GetLatestReport(ctx context.Context, patientID string) (*repository.PathologyReport, error)
}

// PathologySource resolves the patient's most recent signed pathology report.
type PathologySource struct {
	repo   PathologyReader
	logger *zap.Logger
}

// NewPathologySource creates the pathology resolver.
func NewPathologySource(repo PathologyReader, logger *zap.Logger) *PathologySource {
	return &PathologySource{repo: repo, logger: logger}
}

func (s *PathologySource) Name() string {
	return "pathology"
}

func (s *PathologySource) Resolve(ctx context.Context, domain models.Domain, patient models.RosterPatient) models.DomainFinding {
	report, err := s.repo.GetLatestReport(ctx, patient.PatientID)
	if err != nil {
		return models.NewErrorFinding(domain, s.Name(),
			fmt.Sprintf("failed to query pathology database: %v", err))
	}
	if report == nil {
		return models.NewNotFoundFinding(domain, s.Name(),
			fmt.Sprintf("No pathology report found for patient %s", patient.PatientID))
	}

	marker := func(v *string) string {
		if v == nil {
			return "Unknown"
		}
		return *v
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s, Grade %s, ER: %s, PR: %s, HER2: %s",
		report.Diagnosis, report.HistologicalType, report.Grade,
		marker(report.ERStatus), marker(report.PRStatus), marker(report.HER2Status))
	if report.NodesPositive != nil && report.NodesExamined != nil {
		fmt.Fprintf(&b, ", Nodes: %d/%d", *report.NodesPositive, *report.NodesExamined)
	}
	if report.Ki67Percentage != nil {
		fmt.Fprintf(&b, ", Ki67: %.1f%%", *report.Ki67Percentage)
	}

	finding := models.NewFoundFinding(domain, s.Name(), b.String())
	if report.Margins != nil {
		finding.Detail = map[string]interface{}{"margins": *report.Margins}
	}
	return finding
}
