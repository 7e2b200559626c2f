package models

import "fmt"

// OverallStatus is the per-patient readiness verdict.
type OverallStatus string

const (
	StatusReady      OverallStatus = "READY"
	StatusInProgress OverallStatus = "IN_PROGRESS"
	StatusBlocked    OverallStatus = "BLOCKED"
	StatusError      OverallStatus = "ERROR"
)

// BlockerRecord is one condition preventing a case from being presented,
// attributed to the patient and checklist category it came from.
type BlockerRecord struct {
	PatientID string `json:"patient_id"`
	Category  string `json:"category"`
	Issue     string `json:"issue"`
}

// PatientChecklist maps checklist keys to their findings. Entry order for
// serialization and reporting comes from the active profile, not the map.
type PatientChecklist map[string]DomainFinding

// NewPatientChecklist creates a checklist with every profile entry PENDING.
func NewPatientChecklist(profile ChecklistProfile) PatientChecklist {
	cl := make(PatientChecklist, len(profile.Entries))
	for _, e := range profile.Entries {
		cl[e.Key] = NewPendingFinding(e.Domain)
	}
	return cl
}

// Set writes a finding into the checklist. Each entry is written at most once
// by exactly one producer; a second write is a programming error.
func (cl PatientChecklist) Set(key string, finding DomainFinding) error {
	existing, ok := cl[key]
	if !ok {
		return fmt.Errorf("unknown checklist key: %s", key)
	}
	if existing.Resolved() {
		return fmt.Errorf("checklist entry already resolved: %s", key)
	}
	cl[key] = finding
	return nil
}

// Get returns the finding for a key. Missing keys read as PENDING so a
// checklist built from a shorter profile still evaluates safely.
func (cl PatientChecklist) Get(key string) DomainFinding {
	if f, ok := cl[key]; ok {
		return f
	}
	return DomainFinding{State: StatePending}
}

// PatientReadiness is the finalized per-patient aggregation result.
type PatientReadiness struct {
	PatientID     string           `json:"patient_id"`
	Checklist     PatientChecklist `json:"checklist"`
	Blockers      []BlockerRecord  `json:"blockers"`
	OverallStatus OverallStatus    `json:"overall_status"`
	Notes         string           `json:"notes"`
	ElapsedMS     int64            `json:"elapsed_ms"`
}
