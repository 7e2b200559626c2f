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

// TrialAnnotator adds recruiting-trial context to a genomics finding. The
// enrichment package provides the real implementation; a nil annotator
// disables annotation entirely.
type TrialAnnotator interface {
	Annotate(ctx context.Context, genes []string, condition string) (string, error)
}

// genomicsRecord is one patient's entry in the genomics data file, keyed
// "patient_<id>". A record can itself carry status NOT_FOUND when testing was
// never completed.
type genomicsRecord struct {
	Status         string `json:"status"`
	Reason         string `json:"reason"`
	Recommendation string `json:"recommendation"`
	TestInfo       struct {
		Assay       string `json:"assay"`
		ReportDate  string `json:"report_date"`
		SampleType  string `json:"sample_type"`
		TumorPurity string `json:"tumor_purity"`
	} `json:"test_info"`
	Mutations []struct {
		Gene           string `json:"gene"`
		Variant        string `json:"variant"`
		Interpretation string `json:"interpretation"`
	} `json:"mutations"`
	CopyNumberAlterations []struct {
		Gene       string `json:"gene"`
		Alteration string `json:"alteration"`
	} `json:"copy_number_alterations"`
	TMB struct {
		Value          *float64 `json:"value"`
		Classification string   `json:"classification"`
	} `json:"tmb"`
	MSIStatus string `json:"msi_status"`
}

// GenomicsSource resolves the patient's genomic profile.
type GenomicsSource struct {
	path      string
	annotator TrialAnnotator
	logger    *zap.Logger
}

// NewGenomicsSource creates the genomics resolver. annotator may be nil.
func NewGenomicsSource(path string, annotator TrialAnnotator, logger *zap.Logger) *GenomicsSource {
	return &GenomicsSource{path: path, annotator: annotator, logger: logger}
}

func (s *GenomicsSource) Name() string {
	return "genomics"
}

func (s *GenomicsSource) Resolve(ctx context.Context, domain models.Domain, patient models.RosterPatient) models.DomainFinding {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.NewErrorFinding(domain, s.Name(),
			fmt.Sprintf("failed to read genomics data file: %v", err))
	}

	var records map[string]genomicsRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return models.NewErrorFinding(domain, s.Name(),
			fmt.Sprintf("failed to parse genomics data file: %v", err))
	}

	record, ok := records["patient_"+patient.PatientID]
	if !ok {
		return models.NewNotFoundFinding(domain, s.Name(),
			fmt.Sprintf("No genomic data available for patient %s", patient.PatientID))
	}

	// Testing ordered but never completed
	if record.Status == "NOT_FOUND" {
		reason := record.Reason
		if reason == "" {
			reason = "Genomic testing not completed"
		}
		finding := models.NewNotFoundFinding(domain, s.Name(), reason)
		if record.Recommendation != "" {
			finding.Detail = map[string]interface{}{"recommendation": record.Recommendation}
		}
		return finding
	}

	var genes []string
	var mutations []string
	for _, m := range record.Mutations {
		genes = append(genes, m.Gene)
		mutations = append(mutations, fmt.Sprintf("%s %s (%s)", m.Gene, m.Variant, m.Interpretation))
	}

	var cnas []string
	for _, c := range record.CopyNumberAlterations {
		genes = append(genes, c.Gene)
		cnas = append(cnas, fmt.Sprintf("%s %s", c.Gene, c.Alteration))
	}

	var b strings.Builder
	if len(mutations) > 0 {
		fmt.Fprintf(&b, "Mutations: %s", strings.Join(mutations, ", "))
	} else {
		b.WriteString("Mutations: none detected")
	}
	if len(cnas) > 0 {
		fmt.Fprintf(&b, "\nCNAs: %s", strings.Join(cnas, ", "))
	}
	if record.TMB.Value != nil {
		fmt.Fprintf(&b, "\nTMB: %.1f mut/Mb (%s)", *record.TMB.Value, record.TMB.Classification)
	}
	msi := record.MSIStatus
	if msi == "" {
		msi = "Unknown"
	}
	fmt.Fprintf(&b, "\nMSI: %s", msi)

	summary := b.String()

	// Optional trial annotation. Failure degrades to the plain finding.
	if s.annotator != nil && len(genes) > 0 {
		line, err := s.annotator.Annotate(ctx, genes, patient.DiagnosisSummary)
		if err != nil {
			s.logger.Debug("Trial annotation skipped",
				zap.String("patient_id", patient.PatientID),
				zap.Error(err),
			)
		} else if line != "" {
			summary += "\n" + line
		}
	}

	finding := models.NewFoundFinding(domain, s.Name(), summary)
	if record.TestInfo.Assay != "" {
		finding.Detail = map[string]interface{}{
			"assay":       record.TestInfo.Assay,
			"report_date": record.TestInfo.ReportDate,
		}
	}
	return finding
}
