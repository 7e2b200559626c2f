package aggregator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	agg "mdt-readiness-aggregator/internal/aggregator"
	"mdt-readiness-aggregator/internal/models"
)

func threePatientRoster() models.Roster {
	return models.Roster{
		MDTInfo: models.MDTInfo{
			MeetingDate: "2025-03-14",
			Location:    "Oncology Conference Room B",
			MeetingType: "Breast Cancer MDT",
		},
		Patients: []models.RosterPatient{
			{PatientID: "P001", MRN: "MRN-1001", CasePriority: "routine"},
			{PatientID: "P002", MRN: "MRN-1002", CasePriority: "urgent"},
			{PatientID: "P003", MRN: "MRN-1003", CasePriority: "routine"},
		},
	}
}

func TestBuildDashboard_ThreePatientScenario(t *testing.T) {
	a := newClassicAggregator()
	roster := threePatientRoster()

	blockedChecklist := allFoundChecklist(models.ClassicProfile())
	blockedChecklist["Radiology_Report"] = models.NewBlockerFinding(models.DomainRadiology, "radiology_report",
		"UNSIGNED REPORT(S) DETECTED: 2025-01-10 CT (Chest)")

	readiness := map[string]models.PatientReadiness{
		"P001": a.Finalize("P001", allFoundChecklist(models.ClassicProfile())),
		"P002": a.Finalize("P002", blockedChecklist),
		"P003": a.Finalize("P003", models.NewPatientChecklist(models.ClassicProfile())),
	}

	dashboard := a.BuildDashboard(roster, readiness)

	assert.Equal(t, 3, dashboard.Summary.TotalPatients)
	assert.Equal(t, 1, dashboard.Summary.Ready)
	assert.Equal(t, 1, dashboard.Summary.Blocked)
	assert.Equal(t, 1, dashboard.Summary.InProgress)
	assert.Equal(t, 0, dashboard.Summary.Errors)
	assert.Equal(t, 33.3, dashboard.Summary.ReadinessPercentage)

	require.Len(t, dashboard.Blockers, 1)
	assert.Equal(t, "P002", dashboard.Blockers[0].PatientID)
	assert.Equal(t, "Radiology_Report", dashboard.Blockers[0].Category)
	assert.Contains(t, dashboard.Blockers[0].Issue, "UNSIGNED REPORT(S) DETECTED")

	require.Len(t, dashboard.PatientDetails, 3)
	assert.Equal(t, "P001", dashboard.PatientDetails[0].PatientID)
	assert.Equal(t, models.StatusReady, dashboard.PatientDetails[0].OverallStatus)
	assert.Equal(t, models.StatusBlocked, dashboard.PatientDetails[1].OverallStatus)
	assert.Equal(t, models.StatusInProgress, dashboard.PatientDetails[2].OverallStatus)
	assert.Equal(t, "MRN-1002", dashboard.PatientDetails[1].MRN)
}

func TestBuildDashboard_EmptyRosterYieldsZeroPercent(t *testing.T) {
	a := newClassicAggregator()
	roster := models.Roster{
		MDTInfo: models.MDTInfo{MeetingDate: "2025-03-14", Location: "Room B"},
	}

	dashboard := a.BuildDashboard(roster, map[string]models.PatientReadiness{})

	assert.Equal(t, 0, dashboard.Summary.TotalPatients)
	assert.Equal(t, 0.0, dashboard.Summary.ReadinessPercentage)
	assert.Empty(t, dashboard.Blockers)
	assert.Empty(t, dashboard.PatientDetails)
}

func TestBuildDashboard_MissingReadinessCountsAsError(t *testing.T) {
	a := newClassicAggregator()
	roster := threePatientRoster()

	// Only P001 produced a result; P002 and P003 are still in the denominator.
	readiness := map[string]models.PatientReadiness{
		"P001": a.Finalize("P001", allFoundChecklist(models.ClassicProfile())),
	}

	dashboard := a.BuildDashboard(roster, readiness)

	assert.Equal(t, 3, dashboard.Summary.TotalPatients)
	assert.Equal(t, 1, dashboard.Summary.Ready)
	assert.Equal(t, 2, dashboard.Summary.Errors)
	assert.Equal(t, 33.3, dashboard.Summary.ReadinessPercentage)

	require.Len(t, dashboard.PatientDetails, 3)
	assert.Equal(t, models.StatusError, dashboard.PatientDetails[1].OverallStatus)
	assert.Contains(t, dashboard.PatientDetails[1].Notes, "no readiness result")
	assert.Empty(t, dashboard.Blockers)
}

func TestBuildDashboard_IdempotentModuloTimestamp(t *testing.T) {
	a := newClassicAggregator()
	roster := threePatientRoster()

	blockedChecklist := allFoundChecklist(models.ClassicProfile())
	blockedChecklist["Radiology_Report"] = models.NewBlockerFinding(models.DomainRadiology, "radiology_report",
		"UNSIGNED REPORT(S) DETECTED: 2025-01-10 CT (Chest)")
	readiness := map[string]models.PatientReadiness{
		"P001": a.Finalize("P001", allFoundChecklist(models.ClassicProfile())),
		"P002": a.Finalize("P002", blockedChecklist),
	}

	first := a.BuildDashboard(roster, readiness)
	second := a.BuildDashboard(roster, readiness)

	first.GeneratedAt = second.GeneratedAt
	assert.Equal(t, first, second)
}

func TestBuildDashboard_BlockersFollowRosterOrder(t *testing.T) {
	a := agg.New(models.MergedProfile(), zap.NewNop())
	roster := models.Roster{
		Patients: []models.RosterPatient{
			{PatientID: "P010", MRN: "MRN-10"},
			{PatientID: "P011", MRN: "MRN-11"},
		},
	}

	firstChecklist := allFoundChecklist(models.MergedProfile())
	firstChecklist["Radiology"] = models.NewBlockerFinding(models.DomainRadiology, "radiology_report",
		"UNSIGNED REPORT(S) DETECTED: 2025-02-01 MRI (Brain)")
	firstChecklist["Contraindications"] = models.NewBlockerFinding(models.DomainContraindications, "contraindications",
		"CONTRAINDICATION: Cisplatin with Chronic kidney disease (platinum nephrotoxicity)")

	secondChecklist := allFoundChecklist(models.MergedProfile())
	secondChecklist["Pathology"] = models.NewErrorFinding(models.DomainPathology, "pathology",
		"failed to query pathology database: connection refused")

	readiness := map[string]models.PatientReadiness{
		"P010": a.Finalize("P010", firstChecklist),
		"P011": a.Finalize("P011", secondChecklist),
	}

	dashboard := a.BuildDashboard(roster, readiness)

	require.Len(t, dashboard.Blockers, 3)
	assert.Equal(t, "P010", dashboard.Blockers[0].PatientID)
	assert.Equal(t, "Radiology", dashboard.Blockers[0].Category)
	assert.Equal(t, "P010", dashboard.Blockers[1].PatientID)
	assert.Equal(t, "Contraindications", dashboard.Blockers[1].Category)
	assert.Equal(t, "P011", dashboard.Blockers[2].PatientID)
	assert.Equal(t, "Pathology", dashboard.Blockers[2].Category)
}
