package aggregator

import (
	"math"
	"time"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
)

// BuildDashboard rolls per-patient readiness into the roster-level dashboard.
// The roster is the source of truth for total_patients: a patient with no
// computed readiness still counts toward the denominator and surfaces as an
// ERROR row instead of being dropped. Apart from generated_at the output is a
// pure function of its inputs.
func (a *Aggregator) BuildDashboard(roster models.Roster, readinessByPatient map[string]models.PatientReadiness) models.RosterDashboard {
	summary := models.DashboardSummary{TotalPatients: len(roster.Patients)}
	blockers := make([]models.BlockerRecord, 0)
	details := make([]models.PatientDetail, 0, len(roster.Patients))

	for _, patient := range roster.Patients {
		readiness, ok := readinessByPatient[patient.PatientID]
		if !ok {
			readiness = a.missingReadiness(patient.PatientID)
		}

		switch readiness.OverallStatus {
		case models.StatusReady:
			summary.Ready++
		case models.StatusBlocked:
			summary.Blocked++
		case models.StatusError:
			summary.Errors++
		default:
			summary.InProgress++
		}

		blockers = append(blockers, readiness.Blockers...)
		details = append(details, models.PatientDetail{
			PatientID:     patient.PatientID,
			MRN:           patient.MRN,
			CasePriority:  patient.CasePriority,
			OverallStatus: readiness.OverallStatus,
			Checklist:     readiness.Checklist,
			Notes:         readiness.Notes,
			ElapsedMS:     readiness.ElapsedMS,
		})
	}

	if summary.TotalPatients > 0 {
		pct := float64(summary.Ready) / float64(summary.TotalPatients) * 100
		summary.ReadinessPercentage = math.Round(pct*10) / 10
	}

	a.logger.Debug("Built roster dashboard",
		zap.Int("total_patients", summary.TotalPatients),
		zap.Int("ready", summary.Ready),
		zap.Int("blocked", summary.Blocked),
		zap.Int("errors", summary.Errors),
		zap.Int("blocker_count", len(blockers)),
	)

	return models.RosterDashboard{
		GeneratedAt:    time.Now().UTC(),
		MDTInfo:        roster.MDTInfo,
		Summary:        summary,
		Blockers:       blockers,
		PatientDetails: details,
	}
}

// missingReadiness stands in for a roster patient whose gather stage produced
// no result at all.
func (a *Aggregator) missingReadiness(patientID string) models.PatientReadiness {
	return models.PatientReadiness{
		PatientID:     patientID,
		Checklist:     models.NewPatientChecklist(a.profile),
		Blockers:      make([]models.BlockerRecord, 0),
		OverallStatus: models.StatusError,
		Notes:         "Data retrieval failed: no readiness result was produced for this patient",
	}
}
