package models

import "time"

// DashboardSummary is the roster-level count block.
type DashboardSummary struct {
	TotalPatients       int     `json:"total_patients"`
	Ready               int     `json:"ready"`
	InProgress          int     `json:"in_progress"`
	Blocked             int     `json:"blocked"`
	Errors              int     `json:"errors"`
	ReadinessPercentage float64 `json:"readiness_percentage"`
}

// PatientDetail is one dashboard row: roster metadata joined with the
// patient's readiness result.
type PatientDetail struct {
	PatientID     string           `json:"patient_id"`
	MRN           string           `json:"mrn"`
	CasePriority  string           `json:"case_priority"`
	OverallStatus OverallStatus    `json:"overall_status"`
	Checklist     PatientChecklist `json:"checklist"`
	Notes         string           `json:"notes"`
	ElapsedMS     int64            `json:"elapsed_ms,omitempty"`
}

// RosterDashboard is the generated meeting readiness artifact. GeneratedAt is
// the only field that varies between runs over identical inputs.
type RosterDashboard struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	MDTInfo        MDTInfo          `json:"mdt_info"`
	Summary        DashboardSummary `json:"summary"`
	Blockers       []BlockerRecord  `json:"blockers"`
	PatientDetails []PatientDetail  `json:"patient_details"`
}
