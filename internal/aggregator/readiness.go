package aggregator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
)

// Aggregator reduces a patient's collected domain findings into a readiness
// verdict and rolls per-patient results into the roster dashboard. It is a
// synchronous reduction over already-collected findings; all concurrency
// lives upstream in the collector.
type Aggregator struct {
	profile models.ChecklistProfile
	logger  *zap.Logger
}

// New creates an aggregator bound to one checklist profile. The profile's
// entry order is the reporting order for blockers and notes.
func New(profile models.ChecklistProfile, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		profile: profile,
		logger:  logger,
	}
}

// DeriveOverallStatus computes the patient-level verdict from the checklist.
// The rules apply in priority order and the first match wins:
//
//  1. any entry BLOCKER            -> BLOCKED
//  2. else any entry ERROR         -> ERROR
//  3. else every entry FOUND       -> READY
//  4. else                         -> IN_PROGRESS
//
// A patient with one blocker and other incomplete entries is BLOCKED, not
// IN_PROGRESS. Entries missing from the checklist read as PENDING.
func (a *Aggregator) DeriveOverallStatus(checklist models.PatientChecklist) models.OverallStatus {
	anyBlocker := false
	anyError := false
	allFound := true

	for _, entry := range a.profile.Entries {
		switch checklist.Get(entry.Key).State {
		case models.StateBlocker:
			anyBlocker = true
			allFound = false
		case models.StateError:
			anyError = true
			allFound = false
		case models.StateFound:
		default:
			allFound = false
		}
	}

	switch {
	case anyBlocker:
		return models.StatusBlocked
	case anyError:
		return models.StatusError
	case allFound:
		return models.StatusReady
	default:
		return models.StatusInProgress
	}
}

// ExtractBlockers returns one record per blocking checklist entry, in profile
// order. An entry blocks when its state is BLOCKER or ERROR, or when its
// summary contains the token "BLOCKER" in any letter case. Each entry yields
// at most one record no matter how many conditions its summary describes, and
// a token in one entry's text is never attributed to another entry.
func (a *Aggregator) ExtractBlockers(patientID string, checklist models.PatientChecklist) []models.BlockerRecord {
	records := make([]models.BlockerRecord, 0)

	for _, entry := range a.profile.Entries {
		finding := checklist.Get(entry.Key)
		if finding.State != models.StateBlocker && finding.State != models.StateError &&
			!containsBlockerToken(finding.Summary) {
			continue
		}
		records = append(records, models.BlockerRecord{
			PatientID: patientID,
			Category:  entry.Key,
			Issue:     finding.Summary,
		})
	}

	return records
}

// Finalize derives the patient's verdict, blocker list, and summary note from
// a checklist whose producers have all completed or timed out.
func (a *Aggregator) Finalize(patientID string, checklist models.PatientChecklist) models.PatientReadiness {
	status := a.DeriveOverallStatus(checklist)
	blockers := a.ExtractBlockers(patientID, checklist)

	return models.PatientReadiness{
		PatientID:     patientID,
		Checklist:     checklist,
		Blockers:      blockers,
		OverallStatus: status,
		Notes:         a.synthesizeNotes(status, checklist, blockers),
	}
}

// synthesizeNotes renders the one-line note shown on the dashboard row.
func (a *Aggregator) synthesizeNotes(status models.OverallStatus, checklist models.PatientChecklist, blockers []models.BlockerRecord) string {
	switch status {
	case models.StatusReady:
		return fmt.Sprintf("All %d checklist items resolved", len(a.profile.Entries))

	case models.StatusBlocked:
		if len(blockers) == 0 {
			return "Blocked"
		}
		return "Blocked: " + blockers[0].Issue

	case models.StatusError:
		for _, entry := range a.profile.Entries {
			if finding := checklist.Get(entry.Key); finding.State == models.StateError {
				return "Data retrieval failed: " + finding.Summary
			}
		}
		return "Data retrieval failed"

	default:
		waiting := make([]string, 0, len(a.profile.Entries))
		for _, entry := range a.profile.Entries {
			state := checklist.Get(entry.Key).State
			if state == models.StatePending || state == models.StateNotFound {
				waiting = append(waiting, entry.Key)
			}
		}
		return "Awaiting: " + strings.Join(waiting, ", ")
	}
}

func containsBlockerToken(summary string) bool {
	return strings.Contains(strings.ToUpper(summary), "BLOCKER")
}
