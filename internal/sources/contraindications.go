package sources

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
)

// drugSafetyRule flags a medication that conflicts with a documented
// comorbidity. Matching is case-insensitive substring on both sides.
type drugSafetyRule struct {
	Medication string
	Condition  string
	Risk       string
}

// defaultSafetyRules covers the agent/condition pairs an MDT routinely
// screens before treatment planning.
var defaultSafetyRules = []drugSafetyRule{
	{"doxorubicin", "heart failure", "anthracycline cardiotoxicity"},
	{"doxorubicin", "cardiomyopathy", "anthracycline cardiotoxicity"},
	{"epirubicin", "heart failure", "anthracycline cardiotoxicity"},
	{"epirubicin", "cardiomyopathy", "anthracycline cardiotoxicity"},
	{"trastuzumab", "heart failure", "HER2-therapy cardiotoxicity"},
	{"trastuzumab", "reduced ejection fraction", "HER2-therapy cardiotoxicity"},
	{"cisplatin", "chronic kidney disease", "platinum nephrotoxicity"},
	{"cisplatin", "renal impairment", "platinum nephrotoxicity"},
	{"carboplatin", "chronic kidney disease", "platinum nephrotoxicity"},
	{"tamoxifen", "deep vein thrombosis", "thromboembolic risk"},
	{"tamoxifen", "pulmonary embolism", "thromboembolic risk"},
	{"ibuprofen", "chronic kidney disease", "NSAID nephrotoxicity"},
}

// ContraindicationsSource screens the patient's current medications against
// documented allergies and comorbidity-based drug safety rules.
type ContraindicationsSource struct {
	clinicalPath string
	rules        []drugSafetyRule
	logger       *zap.Logger
}

// NewContraindicationsSource creates the contraindication screen resolver.
func NewContraindicationsSource(clinicalPath string, logger *zap.Logger) *ContraindicationsSource {
	return &ContraindicationsSource{
		clinicalPath: clinicalPath,
		rules:        defaultSafetyRules,
		logger:       logger,
	}
}

func (s *ContraindicationsSource) Name() string {
	return "contraindications"
}

func (s *ContraindicationsSource) Resolve(ctx context.Context, domain models.Domain, patient models.RosterPatient) models.DomainFinding {
	record, found, err := loadClinicalRecord(s.clinicalPath, patient.PatientID)
	if err != nil {
		return models.NewErrorFinding(domain, s.Name(), err.Error())
	}
	if !found {
		return models.NewNotFoundFinding(domain, s.Name(),
			fmt.Sprintf("No clinical notes found for patient %s, contraindication screen not possible", patient.PatientID))
	}

	var hits []string

	// Medication vs documented allergy
	for _, med := range record.CurrentMedications {
		for _, allergy := range record.Allergies {
			if containsFold(med, allergy) || containsFold(allergy, med) {
				hits = append(hits, fmt.Sprintf("%s conflicts with documented allergy (%s)", med, allergy))
			}
		}
	}

	// Medication vs comorbidity safety rules
	for _, med := range record.CurrentMedications {
		for _, rule := range s.rules {
			if !containsFold(med, rule.Medication) {
				continue
			}
			for _, comorbidity := range record.Comorbidities {
				if containsFold(comorbidity, rule.Condition) {
					hits = append(hits, fmt.Sprintf("%s with %s (%s)", med, comorbidity, rule.Risk))
				}
			}
		}
	}

	if len(hits) > 0 {
		return models.NewBlockerFinding(domain, s.Name(),
			fmt.Sprintf("CONTRAINDICATION: %s", strings.Join(hits, "; ")))
	}

	return models.NewFoundFinding(domain, s.Name(), "No contraindications identified")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
