package models

// MDTInfo is the meeting metadata block from the roster. It passes through to
// the dashboard unchanged.
type MDTInfo struct {
	MeetingDate string `json:"meeting_date"`
	Location    string `json:"location"`
	MeetingType string `json:"meeting_type,omitempty"`
}

// RosterPatient is one roster row. patient_id is the identity used everywhere
// else; the remaining fields are presentation metadata.
type RosterPatient struct {
	PatientID            string `json:"patient_id"`
	MRN                  string `json:"mrn"`
	CasePriority         string `json:"case_priority"`
	PatientName          string `json:"patient_name,omitempty"`
	Age                  int    `json:"age,omitempty"`
	DiagnosisSummary     string `json:"diagnosis_summary,omitempty"`
	PresentingOncologist string `json:"presenting_oncologist,omitempty"`
	CaseComplexity       string `json:"case_complexity,omitempty"`
}

// Roster is the meeting input: metadata plus the ordered patient list. The
// patient order here is the reporting order for the whole run.
type Roster struct {
	MDTInfo  MDTInfo         `json:"mdt_info"`
	Patients []RosterPatient `json:"patients"`
}
