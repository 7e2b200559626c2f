package models

// Domain is one of the specialist data categories tracked per patient.
type Domain string

const (
	DomainClinical          Domain = "Clinical"
	DomainPathology         Domain = "Pathology"
	DomainRadiology         Domain = "Radiology"
	DomainGenomics          Domain = "Genomics"
	DomainContraindications Domain = "Contraindications"
)

// FindingState is the resolution state of one checklist entry.
type FindingState string

const (
	StatePending  FindingState = "PENDING"
	StateFound    FindingState = "FOUND"
	StateNotFound FindingState = "NOT_FOUND"
	StateBlocker  FindingState = "BLOCKER"
	StateError    FindingState = "ERROR"
)

// DomainFinding is one specialist's result for one patient in one domain.
// State is derived from the finding's own content by the producing resolver,
// never guessed downstream.
type DomainFinding struct {
	Domain  Domain                 `json:"domain"`
	State   FindingState           `json:"state"`
	Summary string                 `json:"summary"`
	Source  string                 `json:"source,omitempty"`
	Detail  map[string]interface{} `json:"detail,omitempty"`
}

// NewPendingFinding is the initial placeholder for a checklist entry.
func NewPendingFinding(domain Domain) DomainFinding {
	return DomainFinding{Domain: domain, State: StatePending}
}

// NewFoundFinding reports successfully retrieved domain data.
func NewFoundFinding(domain Domain, source, summary string) DomainFinding {
	return DomainFinding{Domain: domain, State: StateFound, Source: source, Summary: summary}
}

// NewNotFoundFinding reports that no data exists for the patient in this domain.
func NewNotFoundFinding(domain Domain, source, summary string) DomainFinding {
	return DomainFinding{Domain: domain, State: StateNotFound, Source: source, Summary: summary}
}

// NewBlockerFinding reports a condition that must be resolved before the case
// can be presented. A blocker always carries a reason.
func NewBlockerFinding(domain Domain, source, reason string) DomainFinding {
	if reason == "" {
		reason = "unspecified blocking condition"
	}
	return DomainFinding{Domain: domain, State: StateBlocker, Source: source, Summary: reason}
}

// NewErrorFinding reports a retrieval or parse failure. Resolvers convert every
// failure into one of these instead of returning an error.
func NewErrorFinding(domain Domain, source, summary string) DomainFinding {
	if summary == "" {
		summary = "unspecified retrieval failure"
	}
	return DomainFinding{Domain: domain, State: StateError, Source: source, Summary: summary}
}

// Resolved reports whether the entry has been written by its producer.
func (f DomainFinding) Resolved() bool {
	return f.State != StatePending && f.State != ""
}
